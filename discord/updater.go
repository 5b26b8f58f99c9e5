package discord

import (
	"net/http"

	"github.com/bwmarrin/discordgo"
	"github.com/foxhole-tools/shiptracker/internal/repositories"
	"github.com/foxhole-tools/shiptracker/pkg/logger"
)

// messageEditor is the slice of the session the updater needs. Tests swap
// in a fake the way the auth resolver swaps its RoleProvider.
type messageEditor interface {
	ChannelMessageEditComplex(m *discordgo.MessageEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Updater pushes a ship's canonical state to every registered card message.
// Fan-out is best effort: a dead target is logged and skipped, nothing is
// retried, and the originating mutation is already committed before this
// runs. The next mutation's fan-out re-converges any instance missed here.
type Updater struct {
	editor       messageEditor
	shipRepo     *repositories.ShipRepository
	instanceRepo *repositories.InstanceRepository
}

func NewUpdater(editor messageEditor, shipRepo *repositories.ShipRepository, instanceRepo *repositories.InstanceRepository) *Updater {
	return &Updater{
		editor:       editor,
		shipRepo:     shipRepo,
		instanceRepo: instanceRepo,
	}
}

// RefreshEverywhere re-renders every card of the ship's link group. Each
// row is loaded once and that single snapshot backs all of its instance
// edits, so a slow fan-out still shows one consistent state per row.
func (u *Updater) RefreshEverywhere(shipID uint) {
	ids, err := u.shipRepo.GetLinkedShipIDs(shipID)
	if err != nil {
		logger.Warn("Fan-out skipped: cannot resolve link group", "ship_id", shipID, "error", err)
		return
	}

	for _, id := range ids {
		u.refreshShipInstances(id)
	}
}

func (u *Updater) refreshShipInstances(shipID uint) {
	ship, err := u.shipRepo.GetShipByID(shipID)
	if err != nil {
		logger.Warn("Fan-out skipped: cannot load ship", "ship_id", shipID, "error", err)
		return
	}

	instances, err := u.instanceRepo.GetInstances(shipID)
	if err != nil {
		logger.Warn("Fan-out skipped: cannot list instances", "ship_id", shipID, "error", err)
		return
	}
	if len(instances) == 0 {
		return
	}

	embed := shipCardEmbed(ship)
	components := shipCardComponents(ship, modeMain)

	for _, inst := range instances {
		edit := discordgo.NewMessageEdit(inst.ChannelID, inst.MessageID)
		edit.Embeds = &[]*discordgo.MessageEmbed{embed}
		edit.Components = &components

		_, err := u.editor.ChannelMessageEditComplex(edit)
		switch {
		case err == nil:
		case isRESTStatus(err, http.StatusNotFound):
			logger.Info("Instance message no longer exists",
				"ship_id", shipID, "channel_id", inst.ChannelID, "message_id", inst.MessageID)
		case isRESTStatus(err, http.StatusForbidden):
			logger.Warn("No permission to edit instance message",
				"ship_id", shipID, "channel_id", inst.ChannelID, "message_id", inst.MessageID)
		default:
			logger.Error("Failed to update instance message",
				"ship_id", shipID, "channel_id", inst.ChannelID, "message_id", inst.MessageID, "error", err)
		}
	}
}
