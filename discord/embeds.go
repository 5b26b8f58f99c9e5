package discord

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/foxhole-tools/shiptracker/internal/models"
)

// Embed colors by ship status.
const (
	colorParked    = 0x2ecc71 // green
	colorDeployed  = 0x3498db // blue
	colorRepairing = 0xe67e22 // orange
	colorDead      = 0x607d8b // grey
)

func colorForStatus(status string) int {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "deployed":
		return colorDeployed
	case "repairing":
		return colorRepairing
	case "dead":
		return colorDead
	default:
		return colorParked
	}
}

// shipCardEmbed renders the ship card:
//
//	Title: name
//	Row 1 (inline): Type / Status / Damage
//	Row 2 (inline): Location / Home Port / Regiment
//	Blocks: Keys, Squad Lock (as <t:..:f>), Notes
//	Image when set. Empty fields are skipped, no placeholders.
func shipCardEmbed(ship *models.Ship) *discordgo.MessageEmbed {
	title := strings.TrimSpace(ship.Name)
	if title == "" {
		title = "Unnamed Ship"
	}
	status := strings.TrimSpace(ship.Status)
	if status == "" {
		status = models.StatusParked
	}

	embed := &discordgo.MessageEmbed{
		Title: title,
		Color: colorForStatus(status),
	}

	addInline(embed, "Type", ship.Type)
	addInline(embed, "Status", status)
	addInline(embed, "Damage", fmt.Sprintf("%d", ship.Damage))
	addInline(embed, "Location", ship.Location)
	addInline(embed, "Home Port", ship.HomePort)
	addInline(embed, "Regiment", ship.Regiment)

	if keys := strings.TrimSpace(ship.Keys); keys != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "Keys", Value: keys,
		})
	}

	if ship.SquadLockUntil > 0 {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "Squad Lock", Value: fmt.Sprintf("<t:%d:f>", ship.SquadLockUntil),
		})
	}

	if notes := strings.TrimSpace(ship.Notes); notes != "" {
		// 1024 is Discord's embed field value limit, counted in characters.
		// Cutting on a rune boundary keeps the value valid UTF-8.
		if runes := []rune(notes); len(runes) > 1024 {
			notes = string(runes[:1023]) + "…"
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "Notes", Value: notes,
		})
	}

	if img := strings.TrimSpace(ship.ImageURL); img != "" {
		embed.Image = &discordgo.MessageEmbedImage{URL: img}
	}

	return embed
}

func addInline(embed *discordgo.MessageEmbed, name, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name: name, Value: value, Inline: true,
	})
}

// safeJoinLines joins bullet lines without blowing Discord's message limit.
func safeJoinLines(lines []string, maxChars int) string {
	var out []string
	total := 0
	for _, line := range lines {
		need := len(line) + 1
		if total+need > maxChars {
			break
		}
		out = append(out, line)
		total += need
	}
	return strings.Join(out, "\n")
}
