package discord

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/foxhole-tools/shiptracker/internal/models"
	"github.com/foxhole-tools/shiptracker/internal/security"
	"github.com/foxhole-tools/shiptracker/pkg/logger"
)

const maxImageBytes = 8 * 1024 * 1024

func optionMap(opts []*discordgo.ApplicationCommandInteractionDataOption) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	m := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(opts))
	for _, opt := range opts {
		m[opt.Name] = opt
	}
	return m
}

func stringOption(m map[string]*discordgo.ApplicationCommandInteractionDataOption, name string) string {
	opt, ok := m[name]
	if !ok {
		return ""
	}
	v, _ := opt.Value.(string)
	return v
}

// canActOnShip resolves the permission question for a named ship: a per-ship
// or guild-wide grant on an existing ship, or a guild-wide grant when the
// ship does not exist yet.
func (b *Bot) canActOnShip(guildID, shipName, userID string) (bool, error) {
	ok, err := b.auth.IsAuthorizedForShip(guildID, shipName, userID)
	if err != nil {
		return false, err
	}
	if ok {
		return true, nil
	}
	return b.auth.IsAuthorizedForGuild(guildID, userID)
}

func (b *Bot) handleShipCommand(s *discordgo.Session, i *discordgo.InteractionCreate, userID string, data discordgo.ApplicationCommandInteractionData) {
	if len(data.Options) == 0 {
		return
	}
	sub := data.Options[0]
	opts := optionMap(sub.Options)

	switch sub.Name {
	case "list":
		b.handleShipList(s, i)
	case "post":
		b.handleShipPost(s, i, userID, stringOption(opts, "name_or_code"))
	case "add":
		b.handleShipAdd(s, i, userID, stringOption(opts, "name"))
	case "update":
		b.handleShipUpdate(s, i, userID, stringOption(opts, "name"), stringOption(opts, "field"), stringOption(opts, "value"))
	case "supply":
		quantity := 0
		if opt, ok := opts["quantity"]; ok {
			quantity = int(opt.IntValue())
		}
		b.handleShipSupply(s, i, userID, stringOption(opts, "name"), stringOption(opts, "resource"), quantity)
	case "image":
		b.handleShipImage(s, i, userID, data, stringOption(opts, "name"), stringOption(opts, "file"))
	}
}

func (b *Bot) handleShipList(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ships, err := b.ships.ListShips(i.GuildID)
	if err != nil {
		respondError(s, i, err)
		return
	}
	if len(ships) == 0 {
		respondEphemeral(s, i, "No ships registered in this server yet. Use `/ship add` to create one.")
		return
	}

	lines := make([]string, 0, len(ships))
	for _, ship := range ships {
		line := fmt.Sprintf("**%s** — %s", ship.Name, ship.Status)
		if ship.Location != "" {
			line += " @ " + ship.Location
		}
		lines = append(lines, line)
	}
	respondEphemeral(s, i, safeJoinLines(lines, 1900))
}

func (b *Bot) handleShipPost(s *discordgo.Session, i *discordgo.InteractionCreate, userID, identifier string) {
	identifier = strings.TrimSpace(identifier)
	authorized, err := b.canActOnShip(i.GuildID, identifier, userID)
	if err != nil {
		respondError(s, i, err)
		return
	}
	if !authorized {
		respondEphemeral(s, i, "You are not authorized to post ships in this server.")
		return
	}

	ship, imported, err := b.ships.EnsureForPost(i.GuildID, userID, identifier)
	if err != nil {
		respondError(s, i, err)
		return
	}

	b.postShipCard(s, i, ship, !imported)
	if imported {
		// Sibling cards in other guilds learn about the new copy at once.
		b.updater.RefreshEverywhere(ship.ID)
	}
}

func (b *Bot) handleShipAdd(s *discordgo.Session, i *discordgo.InteractionCreate, userID, name string) {
	authorized, err := b.auth.IsAuthorizedForGuild(i.GuildID, userID)
	if err != nil {
		respondError(s, i, err)
		return
	}
	if !authorized {
		respondEphemeral(s, i, "You are not authorized to create ships in this server.")
		return
	}

	name, err = security.ValidateShipName(name)
	if err != nil {
		respondError(s, i, err)
		return
	}
	if _, err := b.ships.GetShip(i.GuildID, name); err == nil {
		respondEphemeral(s, i, fmt.Sprintf("A ship named **%s** already exists here. Use `/ship post %s`.", name, name))
		return
	}

	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: fmt.Sprintf("Pick a type for **%s**:", name),
			Flags:   discordgo.MessageFlagsEphemeral,
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{Components: []discordgo.MessageComponent{
					discordgo.SelectMenu{
						CustomID:    createTypeCID(name),
						Placeholder: "Ship type",
						Options:     shipTypeOptions(),
					},
				}},
			},
		},
	})
	if err != nil {
		logger.Warn("Failed to open type picker", "error", err)
	}
}

func (b *Bot) handleShipUpdate(s *discordgo.Session, i *discordgo.InteractionCreate, userID, name, field, value string) {
	authorized, err := b.auth.IsAuthorizedForShip(i.GuildID, name, userID)
	if err != nil {
		respondError(s, i, err)
		return
	}
	if !authorized {
		respondEphemeral(s, i, "You are not authorized to update this ship.")
		return
	}

	ship, err := b.ships.GetShip(i.GuildID, name)
	if err != nil {
		respondError(s, i, err)
		return
	}

	var updated *models.Ship
	err = b.locks.RunExclusive(b.ships.LockKey(ship.ID), func() error {
		var runErr error
		updated, runErr = b.ships.UpdateFieldByName(i.GuildID, name, userID, field, value)
		return runErr
	})
	if err != nil {
		respondError(s, i, err)
		return
	}

	respondEphemeral(s, i, fmt.Sprintf("**%s**: `%s` updated.", updated.Name, field))
	b.updater.RefreshEverywhere(updated.ID)
}

func (b *Bot) handleShipSupply(s *discordgo.Session, i *discordgo.InteractionCreate, userID, name, resource string, quantity int) {
	authorized, err := b.auth.IsAuthorizedForShip(i.GuildID, name, userID)
	if err != nil {
		respondError(s, i, err)
		return
	}
	if !authorized {
		respondEphemeral(s, i, "You are not authorized to update this ship.")
		return
	}

	supplies, err := b.ships.SetSupply(i.GuildID, name, userID, resource, quantity)
	if err != nil {
		respondError(s, i, err)
		return
	}
	respondEphemeral(s, i, formatSupplies(name, supplies))
}

func (b *Bot) handleShipImage(s *discordgo.Session, i *discordgo.InteractionCreate, userID string, data discordgo.ApplicationCommandInteractionData, name, attachmentID string) {
	authorized, err := b.auth.IsAuthorizedForShip(i.GuildID, name, userID)
	if err != nil {
		respondError(s, i, err)
		return
	}
	if !authorized {
		respondEphemeral(s, i, "You are not authorized to update this ship.")
		return
	}

	var attachment *discordgo.MessageAttachment
	if data.Resolved != nil {
		attachment = data.Resolved.Attachments[attachmentID]
	}
	if attachment == nil {
		respondEphemeral(s, i, "Attachment missing from the request.")
		return
	}
	if attachment.ContentType != "image/png" && !strings.HasSuffix(strings.ToLower(attachment.Filename), ".png") {
		respondEphemeral(s, i, "Only PNG images are supported.")
		return
	}
	if attachment.Size > maxImageBytes {
		respondEphemeral(s, i, "Image too large, the limit is 8 MB.")
		return
	}

	ship, err := b.ships.GetShip(i.GuildID, name)
	if err != nil {
		respondError(s, i, err)
		return
	}
	err = b.locks.RunExclusive(b.ships.LockKey(ship.ID), func() error {
		_, runErr := b.ships.UpdateFieldByName(i.GuildID, name, userID, "image_url", attachment.URL)
		return runErr
	})
	if err != nil {
		respondError(s, i, err)
		return
	}

	respondEphemeral(s, i, fmt.Sprintf("Image set for **%s**.", ship.Name))
	b.updater.RefreshEverywhere(ship.ID)
}

func (b *Bot) handleAuthCommand(s *discordgo.Session, i *discordgo.InteractionCreate, userID string, data discordgo.ApplicationCommandInteractionData) {
	if len(data.Options) == 0 {
		return
	}
	sub := data.Options[0]
	opts := optionMap(sub.Options)

	var err error
	switch sub.Name {
	case "add_user":
		target := stringOption(opts, "user")
		if err = b.auth.AddGuildAuthUser(i.GuildID, target); err == nil {
			respondEphemeral(s, i, fmt.Sprintf("<@%s> can now manage ships in this server.", target))
		}
	case "remove_user":
		target := stringOption(opts, "user")
		if err = b.auth.RemoveGuildAuthUser(i.GuildID, target); err == nil {
			respondEphemeral(s, i, fmt.Sprintf("<@%s> removed from the authorized users.", target))
		}
	case "add_role":
		target := stringOption(opts, "role")
		if err = b.auth.AddGuildAuthRole(i.GuildID, target); err == nil {
			respondEphemeral(s, i, fmt.Sprintf("Members of <@&%s> can now manage ships in this server.", target))
		}
	case "remove_role":
		target := stringOption(opts, "role")
		if err = b.auth.RemoveGuildAuthRole(i.GuildID, target); err == nil {
			respondEphemeral(s, i, fmt.Sprintf("<@&%s> removed from the authorized roles.", target))
		}
	case "list":
		var users, roles []string
		if users, roles, err = b.auth.ListGuildAuth(i.GuildID); err == nil {
			respondEphemeral(s, i, formatGuildAuth(users, roles))
		}
	}
	if err != nil {
		respondError(s, i, err)
	}
}

func (b *Bot) handleWarCommand(s *discordgo.Session, i *discordgo.InteractionCreate, data discordgo.ApplicationCommandInteractionData) {
	if len(data.Options) == 0 {
		return
	}

	switch data.Options[0].Name {
	case "info":
		war, err := b.ships.GetWar()
		if err != nil {
			respondError(s, i, err)
			return
		}
		state := fmt.Sprintf("started <t:%d:f>", war.StartedAt.Unix())
		if war.Ended() {
			state = fmt.Sprintf("ended <t:%d:f>", war.EndedAt.Unix())
		}
		respondEphemeral(s, i, fmt.Sprintf("War **%d**, %s.", war.ID, state))
	case "end":
		if err := b.ships.EndWar(); err != nil {
			respondError(s, i, err)
			return
		}
		respondEphemeral(s, i, "War ended. Start the next one by bumping the WAR setting and restarting the bot.")
	}
}

func (b *Bot) handleAutocomplete(s *discordgo.Session, i *discordgo.InteractionCreate) {
	data := i.ApplicationCommandData()
	if len(data.Options) == 0 {
		return
	}

	query := ""
	for _, opt := range data.Options[0].Options {
		if opt.Focused {
			query, _ = opt.Value.(string)
			break
		}
	}

	names, err := b.ships.SearchShipNames(i.GuildID, query, 25)
	if err != nil {
		logger.Warn("Autocomplete query failed", "error", err)
		names = nil
	}

	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(names))
	for _, name := range names {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{Name: name, Value: name})
	}
	if err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionApplicationCommandAutocompleteResult,
		Data: &discordgo.InteractionResponseData{Choices: choices},
	}); err != nil {
		logger.Warn("Failed to send autocomplete choices", "error", err)
	}
}

func formatSupplies(name string, supplies []models.ShipSupply) string {
	if len(supplies) == 0 {
		return fmt.Sprintf("**%s** has no recorded supplies.", name)
	}
	lines := make([]string, 0, len(supplies)+1)
	lines = append(lines, fmt.Sprintf("Supplies on **%s**:", name))
	for _, supply := range supplies {
		lines = append(lines, fmt.Sprintf("%s: %d", supply.Resource, supply.Quantity))
	}
	return safeJoinLines(lines, 1900)
}

func formatGuildAuth(users, roles []string) string {
	lines := []string{"Authorized for this server:"}
	if len(roles) == 0 && len(users) == 0 {
		return "Nobody is authorized yet. Add a role with `/auth add_role`."
	}
	for _, roleID := range roles {
		lines = append(lines, "role <@&"+roleID+">")
	}
	for _, uid := range users {
		lines = append(lines, "user <@"+uid+">")
	}
	return safeJoinLines(lines, 1900)
}
