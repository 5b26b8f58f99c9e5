package discord

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/foxhole-tools/shiptracker/internal/models"
)

// Card button custom ids carry everything needed to route a press without
// server-side view state:
//
//	st:ship:{ship_id}:war:{war_id}:mode:{mode}:act:{action}
const cidPrefix = "st:ship:"

func makeCID(shipID, warID uint, mode, action string) string {
	return fmt.Sprintf("st:ship:%d:war:%d:mode:%s:act:%s", shipID, warID, mode, action)
}

type cardRef struct {
	ShipID uint
	WarID  uint
	Mode   string
	Action string
}

func parseCID(customID string) (cardRef, bool) {
	parts := strings.Split(customID, ":")
	if len(parts) != 8 || parts[0] != "st" || parts[1] != "ship" {
		return cardRef{}, false
	}
	shipID, err1 := strconv.ParseUint(parts[2], 10, 32)
	warID, err2 := strconv.ParseUint(parts[4], 10, 32)
	if err1 != nil || err2 != nil {
		return cardRef{}, false
	}
	return cardRef{
		ShipID: uint(shipID),
		WarID:  uint(warID),
		Mode:   parts[5],
		Action: parts[7],
	}, true
}

// Card modes. The main card shows status actions, manage shows destructive
// and sharing controls, info shows read-only history views.
const (
	modeMain   = "main"
	modeManage = "manage"
	modeInfo   = "info"
)

// shipCardComponents builds the button rows for one card mode. Button
// availability follows status: a deployed or repairing ship offers Return,
// a repairing one offers Finish Repairs.
func shipCardComponents(ship *models.Ship, mode string) []discordgo.MessageComponent {
	status := strings.ToLower(strings.TrimSpace(ship.Status))
	cid := func(m, act string) string { return makeCID(ship.ID, ship.WarID, m, act) }

	switch mode {
	case modeManage:
		return []discordgo.MessageComponent{
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				discordgo.Button{Label: "Edit", Style: discordgo.PrimaryButton, CustomID: cid(modeManage, "edit_modal")},
				discordgo.Button{Label: "Log", Style: discordgo.SecondaryButton, CustomID: cid(modeManage, "log_modal")},
				discordgo.Button{Label: "Share", Emoji: &discordgo.ComponentEmoji{Name: "🔗"}, Style: discordgo.SecondaryButton, CustomID: cid(modeManage, "share_code")},
				discordgo.Button{Label: "Add User", Emoji: &discordgo.ComponentEmoji{Name: "➕"}, Style: discordgo.SecondaryButton, CustomID: cid(modeManage, "add_user_modal")},
				discordgo.Button{Label: "Kill", Emoji: &discordgo.ComponentEmoji{Name: "💀"}, Style: discordgo.DangerButton, CustomID: cid(modeManage, "kill_confirm")},
			}},
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				discordgo.Button{Label: "◀ Back", Style: discordgo.SecondaryButton, CustomID: cid(modeManage, "switch_main")},
			}},
		}

	case modeInfo:
		return []discordgo.MessageComponent{
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				discordgo.Button{Label: "Actions", Style: discordgo.SecondaryButton, CustomID: cid(modeInfo, "show_actions")},
				discordgo.Button{Label: "Kill Log", Style: discordgo.SecondaryButton, CustomID: cid(modeInfo, "show_kills")},
				discordgo.Button{Label: "Op Log", Style: discordgo.SecondaryButton, CustomID: cid(modeInfo, "show_ops")},
				discordgo.Button{Label: "Supplies", Style: discordgo.SecondaryButton, CustomID: cid(modeInfo, "show_supplies")},
			}},
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				discordgo.Button{Label: "◀ Back", Style: discordgo.SecondaryButton, CustomID: cid(modeInfo, "switch_main")},
			}},
		}

	default: // main
		row0 := []discordgo.MessageComponent{}
		if status == "repairing" || status == "deployed" {
			row0 = append(row0, discordgo.Button{Label: "Return", Style: discordgo.PrimaryButton, CustomID: cid(modeMain, "return_modal")})
		} else {
			row0 = append(row0, discordgo.Button{Label: "Depart", Style: discordgo.PrimaryButton, CustomID: cid(modeMain, "depart")})
		}
		if status == "repairing" {
			row0 = append(row0, discordgo.Button{Label: "Finish Repairs", Style: discordgo.SuccessButton, CustomID: cid(modeMain, "finish_repairs_modal")})
		} else {
			row0 = append(row0, discordgo.Button{Label: "Repair", Style: discordgo.SecondaryButton, CustomID: cid(modeMain, "start_repairs_modal")})
		}
		row0 = append(row0,
			discordgo.Button{Emoji: &discordgo.ComponentEmoji{Name: "⏰"}, Style: discordgo.SecondaryButton, CustomID: cid(modeMain, "refresh_lock")},
			discordgo.Button{Emoji: &discordgo.ComponentEmoji{Name: "📝"}, Style: discordgo.SecondaryButton, CustomID: cid(modeMain, "notes_modal")},
		)

		return []discordgo.MessageComponent{
			discordgo.ActionsRow{Components: row0},
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				discordgo.Button{Label: "Manage", Style: discordgo.SecondaryButton, CustomID: cid(modeMain, "switch_manage")},
				discordgo.Button{Label: "Info", Style: discordgo.SecondaryButton, CustomID: cid(modeMain, "switch_info")},
			}},
		}
	}
}
