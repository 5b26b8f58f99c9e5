package discord

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/foxhole-tools/shiptracker/internal/models"
	"github.com/foxhole-tools/shiptracker/pkg/logger"
)

const createTypePrefix = "st:addtype:"

func createTypeCID(name string) string {
	return createTypePrefix + name
}

var shipTypes = []string{
	"Freighter", "Frigate", "Destroyer", "Submarine",
	"Gunboat", "Barge", "Landing Ship", "Base Ship",
}

func shipTypeOptions() []discordgo.SelectMenuOption {
	options := make([]discordgo.SelectMenuOption, 0, len(shipTypes))
	for _, t := range shipTypes {
		options = append(options, discordgo.SelectMenuOption{Label: t, Value: t})
	}
	return options
}

func (b *Bot) handleComponent(s *discordgo.Session, i *discordgo.InteractionCreate, userID string) {
	customID := i.MessageComponentData().CustomID

	if strings.HasPrefix(customID, createTypePrefix) {
		b.handleCreateTypeSelect(s, i, userID, strings.TrimPrefix(customID, createTypePrefix))
		return
	}

	ref, ok := parseCID(customID)
	if !ok {
		respondEphemeral(s, i, "This button belongs to an old card. Re-post the ship with `/ship post`.")
		return
	}

	authorized, err := b.auth.IsAuthorizedForShipID(ref.ShipID, userID)
	if err != nil {
		respondError(s, i, err)
		return
	}
	if !authorized {
		respondEphemeral(s, i, "You are not authorized to use this ship's controls.")
		return
	}

	switch ref.Action {
	case "switch_main":
		b.respondCardUpdate(s, i, ref.ShipID, modeMain)
	case "switch_manage":
		b.respondCardUpdate(s, i, ref.ShipID, modeManage)
	case "switch_info":
		b.respondCardUpdate(s, i, ref.ShipID, modeInfo)

	case "depart":
		b.runCardMutation(s, i, ref.ShipID, func() error {
			return b.ships.Depart(ref.ShipID, userID)
		})
	case "refresh_lock":
		b.runCardMutation(s, i, ref.ShipID, func() error {
			_, err := b.ships.RefreshSquadLock(ref.ShipID, userID)
			return err
		})

	case "return_modal", "start_repairs_modal", "finish_repairs_modal",
		"notes_modal", "edit_modal", "log_modal", "add_user_modal":
		b.openShipModal(s, i, ref)

	case "share_code":
		b.handleShareCode(s, i, ref.ShipID, userID)

	case "kill_confirm":
		b.respondKillConfirm(s, i, ref)
	case "kill_yes":
		b.handleKillConfirmed(s, i, ref.ShipID, userID)
	case "kill_no":
		respondUpdateContent(s, i, "Cancelled.")

	case "show_actions":
		b.respondActionLog(s, i, ref.ShipID)
	case "show_kills":
		b.respondKillLog(s, i, ref.ShipID)
	case "show_ops":
		b.respondOpLog(s, i, ref.ShipID)
	case "show_supplies":
		b.respondSupplyView(s, i, ref.ShipID)

	default:
		respondEphemeral(s, i, "Unknown action.")
	}
}

// respondCardUpdate redraws the pressed card in place with a fresh snapshot.
func (b *Bot) respondCardUpdate(s *discordgo.Session, i *discordgo.InteractionCreate, shipID uint, mode string) {
	ship, err := b.ships.GetShipByID(shipID)
	if err != nil {
		respondError(s, i, err)
		return
	}
	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{shipCardEmbed(ship)},
			Components: shipCardComponents(ship, mode),
		},
	})
	if err != nil {
		logger.Warn("Failed to redraw card", "ship_id", shipID, "error", err)
	}
}

// runCardMutation applies fn under the per-ship lock, redraws the pressed
// card, then fans the change out to every other instance.
func (b *Bot) runCardMutation(s *discordgo.Session, i *discordgo.InteractionCreate, shipID uint, fn func() error) {
	if err := b.locks.RunExclusive(b.ships.LockKey(shipID), fn); err != nil {
		respondError(s, i, err)
		return
	}
	b.respondCardUpdate(s, i, shipID, modeMain)
	b.updater.RefreshEverywhere(shipID)
}

func (b *Bot) handleCreateTypeSelect(s *discordgo.Session, i *discordgo.InteractionCreate, userID, name string) {
	authorized, err := b.auth.IsAuthorizedForGuild(i.GuildID, userID)
	if err != nil {
		respondError(s, i, err)
		return
	}
	if !authorized {
		respondEphemeral(s, i, "You are not authorized to create ships in this server.")
		return
	}

	values := i.MessageComponentData().Values
	if len(values) == 0 {
		return
	}
	if err := s.InteractionRespond(i.Interaction, createShipModal(values[0], name)); err != nil {
		logger.Warn("Failed to open create modal", "error", err)
	}
}

func (b *Bot) handleShareCode(s *discordgo.Session, i *discordgo.InteractionCreate, shipID uint, userID string) {
	var code string
	err := b.locks.RunExclusive(b.ships.LockKey(shipID), func() error {
		var runErr error
		code, runErr = b.ships.GenerateShareCode(shipID, userID)
		return runErr
	})
	if err != nil {
		respondError(s, i, err)
		return
	}
	respondEphemeral(s, i, fmt.Sprintf(
		"One-time share code: **%s**\nAnother server imports this ship with `/ship post %s`. The code is dead after one use.", code, code))
}

func (b *Bot) respondKillConfirm(s *discordgo.Session, i *discordgo.InteractionCreate, ref cardRef) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: "Mark this ship **Dead**? Every linked card goes read-only and this cannot be undone.",
			Flags:   discordgo.MessageFlagsEphemeral,
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{Components: []discordgo.MessageComponent{
					discordgo.Button{Label: "Mark Dead", Style: discordgo.DangerButton, CustomID: makeCID(ref.ShipID, ref.WarID, modeManage, "kill_yes")},
					discordgo.Button{Label: "Cancel", Style: discordgo.SecondaryButton, CustomID: makeCID(ref.ShipID, ref.WarID, modeManage, "kill_no")},
				}},
			},
		},
	})
	if err != nil {
		logger.Warn("Failed to open kill confirmation", "error", err)
	}
}

func (b *Bot) handleKillConfirmed(s *discordgo.Session, i *discordgo.InteractionCreate, shipID uint, userID string) {
	err := b.locks.RunExclusive(b.ships.LockKey(shipID), func() error {
		return b.ships.MarkDead(shipID, userID)
	})
	if err != nil {
		respondError(s, i, err)
		return
	}
	respondUpdateContent(s, i, "Ship marked **Dead**. All cards are now read-only.")
	b.updater.RefreshEverywhere(shipID)
}

// respondUpdateContent replaces an ephemeral prompt with plain text and
// strips its buttons.
func respondUpdateContent(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Content:    content,
			Components: []discordgo.MessageComponent{},
		},
	})
	if err != nil {
		logger.Warn("Failed to update prompt", "error", err)
	}
}

func (b *Bot) respondActionLog(s *discordgo.Session, i *discordgo.InteractionCreate, shipID uint) {
	updates, err := b.ships.ListUpdates(shipID)
	if err != nil {
		respondError(s, i, err)
		return
	}
	if len(updates) == 0 {
		respondEphemeral(s, i, "No recorded actions yet.")
		return
	}
	lines := make([]string, 0, len(updates))
	for _, u := range updates {
		lines = append(lines, fmt.Sprintf("<t:%d:R> <@%s> set `%s` to %q", u.CreatedAt.Unix(), u.UserID, u.Field, u.NewValue))
	}
	respondEphemeral(s, i, safeJoinLines(lines, 1900))
}

func (b *Bot) respondKillLog(s *discordgo.Session, i *discordgo.InteractionCreate, shipID uint) {
	kills, err := b.ships.ListKills(shipID, 25)
	if err != nil {
		respondError(s, i, err)
		return
	}
	if len(kills) == 0 {
		respondEphemeral(s, i, "No kills logged yet.")
		return
	}
	lines := make([]string, 0, len(kills))
	for _, k := range kills {
		lines = append(lines, fmt.Sprintf("<t:%d:R> <@%s>: %s", k.CreatedAt.Unix(), k.UserID, k.KillsRaw))
	}
	respondEphemeral(s, i, safeJoinLines(lines, 1900))
}

func (b *Bot) respondOpLog(s *discordgo.Session, i *discordgo.InteractionCreate, shipID uint) {
	ops, err := b.ships.ListOps(shipID, 25)
	if err != nil {
		respondError(s, i, err)
		return
	}
	if len(ops) == 0 {
		respondEphemeral(s, i, "No op debriefs logged yet.")
		return
	}
	lines := make([]string, 0, len(ops))
	for _, op := range ops {
		lines = append(lines, fmt.Sprintf("<t:%d:R> <@%s>: %s", op.CreatedAt.Unix(), op.UserID, op.Debrief))
	}
	respondEphemeral(s, i, safeJoinLines(lines, 1900))
}

func (b *Bot) respondSupplyView(s *discordgo.Session, i *discordgo.InteractionCreate, shipID uint) {
	ship, err := b.ships.GetShipByID(shipID)
	if err != nil {
		respondError(s, i, err)
		return
	}
	var supplies []models.ShipSupply
	if supplies, err = b.ships.ListSupplies(shipID); err != nil {
		respondError(s, i, err)
		return
	}
	respondEphemeral(s, i, formatSupplies(ship.Name, supplies))
}
