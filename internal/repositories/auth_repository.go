package repositories

import (
	"github.com/foxhole-tools/shiptracker/internal/models"
	"github.com/foxhole-tools/shiptracker/pkg/errors"
	"gorm.io/gorm"
)

type AuthRepository struct {
	db *gorm.DB
}

func NewAuthRepository(db *gorm.DB) *AuthRepository {
	return &AuthRepository{db: db}
}

// SetGuildAuthUsers replaces the guild's user allow-list wholesale.
func (r *AuthRepository) SetGuildAuthUsers(guildID string, userIDs []string) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if result := tx.Where("guild_id = ?", guildID).Delete(&models.GuildAuthUser{}); result.Error != nil {
			return result.Error
		}
		for _, uid := range userIDs {
			row := models.GuildAuthUser{GuildID: guildID, UserID: uid}
			if result := tx.Create(&row); result.Error != nil {
				return result.Error
			}
		}
		return nil
	})
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternalError, "failed to set guild auth users")
	}
	return nil
}

// SetGuildAuthRoles replaces the guild's role allow-list wholesale.
func (r *AuthRepository) SetGuildAuthRoles(guildID string, roleIDs []string) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if result := tx.Where("guild_id = ?", guildID).Delete(&models.GuildAuthRole{}); result.Error != nil {
			return result.Error
		}
		for _, rid := range roleIDs {
			row := models.GuildAuthRole{GuildID: guildID, RoleID: rid}
			if result := tx.Create(&row); result.Error != nil {
				return result.Error
			}
		}
		return nil
	})
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternalError, "failed to set guild auth roles")
	}
	return nil
}

// GetGuildAuthUsers returns the guild's authorized user ids.
func (r *AuthRepository) GetGuildAuthUsers(guildID string) ([]string, error) {
	var ids []string
	result := r.db.Model(&models.GuildAuthUser{}).
		Where("guild_id = ?", guildID).
		Order("user_id").
		Pluck("user_id", &ids)
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to get guild auth users")
	}
	return ids, nil
}

// GetGuildAuthRoles returns the guild's authorized role ids.
func (r *AuthRepository) GetGuildAuthRoles(guildID string) ([]string, error) {
	var ids []string
	result := r.db.Model(&models.GuildAuthRole{}).
		Where("guild_id = ?", guildID).
		Order("role_id").
		Pluck("role_id", &ids)
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to get guild auth roles")
	}
	return ids, nil
}

// GetGuildAuthRolesMany bulk-loads the role allow-lists for several guilds
// in one query, keyed by guild id.
func (r *AuthRepository) GetGuildAuthRolesMany(guildIDs []string) (map[string]map[string]struct{}, error) {
	out := make(map[string]map[string]struct{})
	if len(guildIDs) == 0 {
		return out, nil
	}

	var rows []models.GuildAuthRole
	result := r.db.Where("guild_id IN ?", guildIDs).Find(&rows)
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to bulk-load guild auth roles")
	}

	for _, row := range rows {
		set, ok := out[row.GuildID]
		if !ok {
			set = make(map[string]struct{})
			out[row.GuildID] = set
		}
		set[row.RoleID] = struct{}{}
	}
	return out, nil
}

// IsUserInGuildAuthUsersAny reports whether the user appears on the user
// allow-list of any of the given guilds, in a single query.
func (r *AuthRepository) IsUserInGuildAuthUsersAny(guildIDs []string, userID string) (bool, error) {
	if len(guildIDs) == 0 {
		return false, nil
	}
	var count int64
	result := r.db.Model(&models.GuildAuthUser{}).
		Where("user_id = ? AND guild_id IN ?", userID, guildIDs).
		Limit(1).
		Count(&count)
	if result.Error != nil {
		return false, errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to check guild auth users")
	}
	return count > 0, nil
}

// AddShipAuthUser grants a user access to one ship. Re-granting is a no-op.
func (r *AuthRepository) AddShipAuthUser(shipID uint, userID, authedBy string) error {
	var existing models.ShipAuthUser
	result := r.db.Where("ship_id = ? AND user_id = ?", shipID, userID).First(&existing)
	if result.Error == nil {
		return nil
	}
	if result.Error != gorm.ErrRecordNotFound {
		return errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to check ship grant")
	}

	grant := models.ShipAuthUser{ShipID: shipID, UserID: userID, AuthedBy: authedBy}
	if result := r.db.Create(&grant); result.Error != nil {
		return errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to add ship grant")
	}
	return nil
}

// IsUserAuthorizedForShip checks the per-ship grant set.
func (r *AuthRepository) IsUserAuthorizedForShip(shipID uint, userID string) (bool, error) {
	var count int64
	result := r.db.Model(&models.ShipAuthUser{}).
		Where("ship_id = ? AND user_id = ?", shipID, userID).
		Count(&count)
	if result.Error != nil {
		return false, errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to check ship grant")
	}
	return count > 0, nil
}
