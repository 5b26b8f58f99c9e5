package repositories

import (
	"github.com/foxhole-tools/shiptracker/internal/models"
	"github.com/foxhole-tools/shiptracker/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type InstanceRepository struct {
	db *gorm.DB
}

func NewInstanceRepository(db *gorm.DB) *InstanceRepository {
	return &InstanceRepository{db: db}
}

// RegisterInstance records one posted card message for a ship. Registering
// the same (ship, guild, channel, message) again is a no-op.
func (r *InstanceRepository) RegisterInstance(shipID uint, guildID, channelID, messageID string, isOriginal bool) error {
	inst := models.ShipInstance{
		ShipID:     shipID,
		GuildID:    guildID,
		ChannelID:  channelID,
		MessageID:  messageID,
		IsOriginal: isOriginal,
	}
	result := r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&inst)
	if result.Error != nil {
		return errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to register instance")
	}
	return nil
}

// GetInstances lists every registered card message for a ship, oldest first.
func (r *InstanceRepository) GetInstances(shipID uint) ([]models.ShipInstance, error) {
	var instances []models.ShipInstance
	result := r.db.Where("ship_id = ?", shipID).Order("id").Find(&instances)
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to list instances")
	}
	return instances, nil
}

// GetInstanceGuildIDs returns the distinct guilds holding at least one
// instance of the ship. Feeds the auth resolver's presence set.
func (r *InstanceRepository) GetInstanceGuildIDs(shipID uint) ([]string, error) {
	var guildIDs []string
	result := r.db.Model(&models.ShipInstance{}).
		Where("ship_id = ?", shipID).
		Distinct().
		Pluck("guild_id", &guildIDs)
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to list instance guilds")
	}
	return guildIDs, nil
}
