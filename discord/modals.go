package discord

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/foxhole-tools/shiptracker/internal/models"
	"github.com/foxhole-tools/shiptracker/internal/services"
	"github.com/foxhole-tools/shiptracker/pkg/logger"
)

func shipModalCID(action string, shipID uint) string {
	return fmt.Sprintf("st:modal:%s:%d", action, shipID)
}

// createModalCID keeps the name last so names containing colons survive a
// bounded split on the way back in.
func createModalCID(shipType, name string) string {
	return fmt.Sprintf("st:modal:create:%s:%s", shipType, name)
}

func textInput(id, label, value, placeholder string, required, paragraph bool) discordgo.ActionsRow {
	style := discordgo.TextInputShort
	if paragraph {
		style = discordgo.TextInputParagraph
	}
	return discordgo.ActionsRow{Components: []discordgo.MessageComponent{
		discordgo.TextInput{
			CustomID:    id,
			Label:       label,
			Style:       style,
			Value:       value,
			Placeholder: placeholder,
			Required:    required,
			MaxLength:   500,
		},
	}}
}

func modalResponse(customID, title string, rows ...discordgo.ActionsRow) *discordgo.InteractionResponse {
	components := make([]discordgo.MessageComponent, 0, len(rows))
	for _, row := range rows {
		components = append(components, row)
	}
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID:   customID,
			Title:      title,
			Components: components,
		},
	}
}

func createShipModal(shipType, name string) *discordgo.InteractionResponse {
	return modalResponse(createModalCID(shipType, name), "New "+shipType,
		textInput("home_port", "Home port", "", "Where the ship usually docks", false, false),
		textInput("regiment", "Regiment", "", "Owning regiment tag", false, false),
		textInput("keys", "Keys", "", "Who holds the squad keys", false, false),
	)
}

// openShipModal builds the pre-filled modal for a card button press.
func (b *Bot) openShipModal(s *discordgo.Session, i *discordgo.InteractionCreate, ref cardRef) {
	ship, err := b.ships.GetShipByID(ref.ShipID)
	if err != nil {
		respondError(s, i, err)
		return
	}

	var resp *discordgo.InteractionResponse
	switch ref.Action {
	case "return_modal":
		resp = modalResponse(shipModalCID("return", ship.ID), "Return "+ship.Name,
			textInput("where", "Where is it parked?", "", ship.HomePort, true, false),
			textInput("smokes", "Smokes / munitions left", "", "", false, false),
			textInput("notes", "Notes", "", "Anything the next crew should know", false, true),
		)
	case "start_repairs_modal":
		resp = modalResponse(shipModalCID("start_repairs", ship.ID), "Repair "+ship.Name,
			textInput("where", "Which drydock?", "", "", true, false),
		)
	case "finish_repairs_modal":
		resp = modalResponse(shipModalCID("finish_repairs", ship.ID), "Finish repairs on "+ship.Name,
			textInput("where", "Where is it parked now?", "", ship.HomePort, true, false),
			textInput("notes", "Notes", "", "", false, true),
		)
	case "notes_modal":
		resp = modalResponse(shipModalCID("notes", ship.ID), "Notes for "+ship.Name,
			textInput("notes", "Notes", ship.Notes, "", false, true),
		)
	case "edit_modal":
		resp = modalResponse(shipModalCID("edit", ship.ID), "Edit "+ship.Name,
			textInput("name", "Name", ship.Name, "", true, false),
			textInput("status", "Status", ship.Status, "Parked, Deployed, Repairing", false, false),
			textInput("damage", "Damage (0-5)", strconv.Itoa(ship.Damage), "", false, false),
			textInput("location", "Location", ship.Location, "", false, false),
			textInput("keys", "Keys", ship.Keys, "", false, false),
		)
	case "log_modal":
		resp = modalResponse(shipModalCID("log", ship.ID), "Log for "+ship.Name,
			textInput("kills", "Kills", "", "One line per kill", false, true),
			textInput("debrief", "Op debrief", "", "", false, true),
		)
	case "add_user_modal":
		resp = modalResponse(shipModalCID("add_user", ship.ID), "Authorize a user for "+ship.Name,
			textInput("user", "User mention or id", "", "@someone or 123456789012345678", true, false),
		)
	default:
		respondEphemeral(s, i, "Unknown action.")
		return
	}

	if err := s.InteractionRespond(i.Interaction, resp); err != nil {
		logger.Warn("Failed to open modal", "action", ref.Action, "error", err)
	}
}

// splitCreateCID returns [type, name] from a create modal id, nil for any
// other id. The bounded split keeps colons inside the name intact.
func splitCreateCID(customID string) []string {
	parts := strings.SplitN(customID, ":", 5)
	if len(parts) != 5 || parts[0] != "st" || parts[1] != "modal" || parts[2] != "create" {
		return nil
	}
	return []string{parts[3], parts[4]}
}

// textInputValues flattens a modal submission into field id -> value.
func textInputValues(components []discordgo.MessageComponent) map[string]string {
	values := make(map[string]string)
	for _, component := range components {
		row, ok := component.(*discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, inner := range row.Components {
			if input, ok := inner.(*discordgo.TextInput); ok {
				values[input.CustomID] = strings.TrimSpace(input.Value)
			}
		}
	}
	return values
}

func (b *Bot) handleModalSubmit(s *discordgo.Session, i *discordgo.InteractionCreate, userID string) {
	data := i.ModalSubmitData()
	if !strings.HasPrefix(data.CustomID, "st:modal:") {
		return
	}
	values := textInputValues(data.Components)

	if create := splitCreateCID(data.CustomID); create != nil {
		b.handleCreateSubmit(s, i, userID, create[0], create[1], values)
		return
	}

	parts := strings.SplitN(data.CustomID, ":", 4)
	if len(parts) != 4 {
		return
	}
	action := parts[2]
	id, err := strconv.ParseUint(parts[3], 10, 32)
	if err != nil {
		return
	}
	shipID := uint(id)

	authorized, err := b.auth.IsAuthorizedForShipID(shipID, userID)
	if err != nil {
		respondError(s, i, err)
		return
	}
	if !authorized {
		respondEphemeral(s, i, "You are not authorized to use this ship's controls.")
		return
	}

	var confirmation string
	err = b.locks.RunExclusive(b.ships.LockKey(shipID), func() error {
		switch action {
		case "return":
			confirmation = "Ship returned to port."
			return b.ships.ReturnToPort(shipID, userID, values["where"], values["smokes"], values["notes"])
		case "start_repairs":
			confirmation = "Ship marked as repairing."
			return b.ships.StartRepairs(shipID, userID, values["where"])
		case "finish_repairs":
			confirmation = "Repairs finished, ship parked."
			return b.ships.FinishRepairs(shipID, userID, values["where"], values["notes"])
		case "notes":
			confirmation = "Notes updated."
			return b.ships.SetNotes(shipID, userID, values["notes"])
		case "edit":
			confirmation = "Ship updated."
			return b.ships.EditFieldsBulk(shipID, userID, editFields(values))
		case "log":
			confirmation = "Log recorded."
			return b.ships.LogKillAndOp(shipID, userID, values["kills"], values["debrief"])
		case "add_user":
			confirmation = "User authorized for this ship."
			return b.ships.AddShipAuthUser(shipID, values["user"], userID)
		default:
			confirmation = ""
			return nil
		}
	})
	if err != nil {
		respondError(s, i, err)
		return
	}
	if confirmation == "" {
		respondEphemeral(s, i, "Unknown action.")
		return
	}

	respondEphemeral(s, i, confirmation)
	b.updater.RefreshEverywhere(shipID)
}

// editFields drops blanks so an untouched optional input does not wipe the
// stored value.
func editFields(values map[string]string) map[string]string {
	fields := make(map[string]string, len(values))
	for _, key := range []string{"name", "status", "damage", "location", "keys"} {
		if v, ok := values[key]; ok && v != "" {
			fields[key] = v
		}
	}
	return fields
}

func (b *Bot) handleCreateSubmit(s *discordgo.Session, i *discordgo.InteractionCreate, userID, shipType, name string, values map[string]string) {
	authorized, err := b.auth.IsAuthorizedForGuild(i.GuildID, userID)
	if err != nil {
		respondError(s, i, err)
		return
	}
	if !authorized {
		respondEphemeral(s, i, "You are not authorized to create ships in this server.")
		return
	}

	ship, err := b.ships.GetOrCreateShip(i.GuildID, name, &services.ShipDefaults{
		Type:     shipType,
		HomePort: values["home_port"],
		Regiment: values["regiment"],
		Keys:     values["keys"],
	})
	if err != nil {
		respondError(s, i, err)
		return
	}
	b.postShipCard(s, i, ship, true)
}

// postShipCard posts a fresh card as the interaction response and registers
// the resulting message as an instance so fan-out can reach it.
func (b *Bot) postShipCard(s *discordgo.Session, i *discordgo.InteractionCreate, ship *models.Ship, isOriginal bool) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{shipCardEmbed(ship)},
			Components: shipCardComponents(ship, modeMain),
		},
	})
	if err != nil {
		logger.Error("Failed to post ship card", "ship_id", ship.ID, "error", err)
		return
	}

	// The card message id only comes back via the response fetch; without
	// it the instance cannot be refreshed later.
	msg, err := s.InteractionResponse(i.Interaction)
	if err != nil {
		logger.Error("Failed to fetch posted card message", "ship_id", ship.ID, "error", err)
		return
	}
	if err := b.ships.RegisterInstance(ship.ID, i.GuildID, msg.ChannelID, msg.ID, isOriginal); err != nil {
		logger.Error("Failed to register card instance", "ship_id", ship.ID, "error", err)
	}
	b.auth.InvalidateShipPresence(ship.ID)
}
