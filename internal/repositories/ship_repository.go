package repositories

import (
	"fmt"
	"strings"

	"github.com/foxhole-tools/shiptracker/internal/models"
	"github.com/foxhole-tools/shiptracker/pkg/errors"
	"gorm.io/gorm"
)

type ShipRepository struct {
	db *gorm.DB
}

func NewShipRepository(db *gorm.DB) *ShipRepository {
	return &ShipRepository{db: db}
}

// CreateShip inserts a new ship row.
func (r *ShipRepository) CreateShip(ship *models.Ship) error {
	result := r.db.Create(ship)
	if result.Error != nil {
		return errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to create ship")
	}
	return nil
}

// GetShip looks a ship up by its (guild, war, name) scope.
func (r *ShipRepository) GetShip(guildID string, warID uint, name string) (*models.Ship, error) {
	var ship models.Ship
	result := r.db.Where("guild_id = ? AND war_id = ? AND name = ?", guildID, warID, name).First(&ship)

	if result.Error == gorm.ErrRecordNotFound {
		return nil, errors.New(errors.ErrCodeNotFound, "ship not found")
	}
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to get ship")
	}

	return &ship, nil
}

// GetShipByID retrieves a ship by primary key.
func (r *ShipRepository) GetShipByID(id uint) (*models.Ship, error) {
	var ship models.Ship
	result := r.db.First(&ship, id)

	if result.Error == gorm.ErrRecordNotFound {
		return nil, errors.New(errors.ErrCodeNotFound, "ship not found")
	}
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to get ship")
	}

	return &ship, nil
}

// ListShips returns every ship in a guild's current war, by name.
func (r *ShipRepository) ListShips(guildID string, warID uint) ([]models.Ship, error) {
	var ships []models.Ship
	result := r.db.Where("guild_id = ? AND war_id = ?", guildID, warID).Order("name").Find(&ships)
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to list ships")
	}
	return ships, nil
}

// SearchShipNames returns up to limit names matching query for autocomplete.
// Dead ships are filtered out when excludeDead is set.
func (r *ShipRepository) SearchShipNames(guildID string, warID uint, query string, limit int, excludeDead bool) ([]string, error) {
	q := r.db.Model(&models.Ship{}).
		Where("guild_id = ? AND war_id = ?", guildID, warID).
		Where("LOWER(name) LIKE ?", "%"+strings.ToLower(strings.TrimSpace(query))+"%")
	if excludeDead {
		q = q.Where("LOWER(status) != ?", "dead")
	}

	var names []string
	result := q.Order("name").Limit(limit).Pluck("name", &names)
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to search ships")
	}
	return names, nil
}

// GetLinkedShipIDs resolves the ship's link root and returns the root plus
// every ship linked to it. A lone ship yields just itself.
func (r *ShipRepository) GetLinkedShipIDs(shipID uint) ([]uint, error) {
	return linkedShipIDs(r.db, shipID)
}

// GetLinkRootID returns the id of the ship's link-group root, which is the
// ship itself when it is not linked.
func (r *ShipRepository) GetLinkRootID(shipID uint) (uint, error) {
	var ship models.Ship
	result := r.db.Select("id", "link_root_id").First(&ship, shipID)
	if result.Error == gorm.ErrRecordNotFound {
		return 0, errors.New(errors.ErrCodeNotFound, "ship not found")
	}
	if result.Error != nil {
		return 0, errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to resolve link root")
	}
	return ship.RootID(), nil
}

func linkedShipIDs(tx *gorm.DB, shipID uint) ([]uint, error) {
	var ship models.Ship
	result := tx.Select("id", "link_root_id").First(&ship, shipID)
	if result.Error == gorm.ErrRecordNotFound {
		return nil, errors.New(errors.ErrCodeNotFound, "ship not found")
	}
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to resolve link root")
	}

	rootID := ship.RootID()

	var ids []uint
	result = tx.Model(&models.Ship{}).
		Where("id = ? OR link_root_id = ?", rootID, rootID).
		Order("id").
		Pluck("id", &ids)
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to collect linked ships")
	}
	if len(ids) == 0 {
		ids = []uint{shipID}
	}
	return ids, nil
}

// UpdateFieldLinked applies one field change to the ship and every linked
// sibling, writing one audit row per affected ship. The whole fan-out is a
// single transaction so a failure part-way leaves nothing applied.
//
// The dead re-check runs inside the transaction: a kill that commits after
// a caller's guard read but before its write still blocks that write.
// Writing a Dead status is the one exception, so kills always land.
func (r *ShipRepository) UpdateFieldLinked(shipID uint, userID, field string, value any) error {
	spec, ok := shipFields[field]
	if !ok {
		return errors.New(errors.ErrCodeValidation, fmt.Sprintf("field %q is not updatable", field))
	}

	intoDead := false
	if field == "status" {
		if s, ok := value.(string); ok {
			intoDead = strings.EqualFold(strings.TrimSpace(s), models.StatusDead)
		}
	}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		ids, err := linkedShipIDs(tx, shipID)
		if err != nil {
			return err
		}
		if !intoDead {
			var dead int64
			result := tx.Model(&models.Ship{}).
				Where("id IN ?", ids).
				Where("LOWER(TRIM(status)) = ?", "dead").
				Count(&dead)
			if result.Error != nil {
				return errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to check ship status")
			}
			if dead > 0 {
				return errors.New(errors.ErrCodeReadOnly, "this ship is marked Dead and is read-only")
			}
		}
		for _, id := range ids {
			if err := applyFieldUpdate(tx, id, userID, field, spec, value); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	return nil
}

// UpdateField applies one field change to a single ship row, ignoring its
// link group. Share-code generation uses this: codes belong to one row.
func (r *ShipRepository) UpdateField(shipID uint, userID, field string, value any) error {
	spec, ok := shipFields[field]
	if !ok {
		return errors.New(errors.ErrCodeValidation, fmt.Sprintf("field %q is not updatable", field))
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		return applyFieldUpdate(tx, shipID, userID, field, spec, value)
	})
}

func applyFieldUpdate(tx *gorm.DB, shipID uint, userID, field string, spec shipField, value any) error {
	var current models.Ship
	result := tx.First(&current, shipID)
	if result.Error == gorm.ErrRecordNotFound {
		return errors.New(errors.ErrCodeNotFound, "ship not found")
	}
	if result.Error != nil {
		return errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to read ship")
	}

	old := spec.get(&current)

	result = tx.Model(&models.Ship{}).Where("id = ?", shipID).Update(spec.column, value)
	if result.Error != nil {
		return errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to update ship field")
	}

	audit := models.ShipUpdate{
		ShipID:   shipID,
		UserID:   userID,
		Field:    field,
		OldValue: old,
		NewValue: renderValue(value),
	}
	if result := tx.Create(&audit); result.Error != nil {
		return errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to append audit record")
	}
	return nil
}

// SetLinkRoot points a ship at its link-group root.
func (r *ShipRepository) SetLinkRoot(shipID, rootID uint) error {
	result := r.db.Model(&models.Ship{}).Where("id = ?", shipID).Update("link_root_id", rootID)
	if result.Error != nil {
		return errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to set link root")
	}
	return nil
}

// EnsureSelfRooted sets link_root_id to the ship's own id when unset and
// returns the root id either way, so future imports can link against it.
func (r *ShipRepository) EnsureSelfRooted(shipID uint) (uint, error) {
	ship, err := r.GetShipByID(shipID)
	if err != nil {
		return 0, err
	}
	if ship.LinkRootID != nil {
		return *ship.LinkRootID, nil
	}
	if err := r.SetLinkRoot(shipID, shipID); err != nil {
		return 0, err
	}
	return shipID, nil
}

// ConsumeShareCode atomically resolves a code to its ship and clears it.
// The conditional clear makes consumption exactly-once: a second caller
// matches zero rows and gets NOT_FOUND.
func (r *ShipRepository) ConsumeShareCode(code string) (uint, error) {
	var shipID uint
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var ship models.Ship
		result := tx.Select("id").Where("share_code = ?", code).First(&ship)
		if result.Error == gorm.ErrRecordNotFound {
			return errors.New(errors.ErrCodeNotFound, "invalid or already-used share code")
		}
		if result.Error != nil {
			return errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to look up share code")
		}

		result = tx.Model(&models.Ship{}).
			Where("id = ? AND share_code = ?", ship.ID, code).
			Update("share_code", nil)
		if result.Error != nil {
			return errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to clear share code")
		}
		if result.RowsAffected != 1 {
			// Lost the race to a concurrent consumer.
			return errors.New(errors.ErrCodeNotFound, "invalid or already-used share code")
		}

		shipID = ship.ID
		return nil
	})
	if err != nil {
		return 0, err
	}
	return shipID, nil
}

// ListUpdates returns the audit trail for one ship, oldest first.
func (r *ShipRepository) ListUpdates(shipID uint) ([]models.ShipUpdate, error) {
	var updates []models.ShipUpdate
	result := r.db.Where("ship_id = ?", shipID).Order("id").Find(&updates)
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to list updates")
	}
	return updates, nil
}

// AddKill appends a kill log entry.
func (r *ShipRepository) AddKill(shipID uint, userID, killsRaw string) error {
	kill := models.ShipKill{ShipID: shipID, UserID: userID, KillsRaw: killsRaw}
	if result := r.db.Create(&kill); result.Error != nil {
		return errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to log kill")
	}
	return nil
}

// AddOp appends an after-action debrief.
func (r *ShipRepository) AddOp(shipID uint, userID, debrief string) error {
	op := models.ShipOp{ShipID: shipID, UserID: userID, Debrief: debrief}
	if result := r.db.Create(&op); result.Error != nil {
		return errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to log op")
	}
	return nil
}

// ListKills returns a ship's kill log, newest first.
func (r *ShipRepository) ListKills(shipID uint, limit int) ([]models.ShipKill, error) {
	var kills []models.ShipKill
	result := r.db.Where("ship_id = ?", shipID).Order("id DESC").Limit(limit).Find(&kills)
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to list kills")
	}
	return kills, nil
}

// ListOps returns a ship's op log, newest first.
func (r *ShipRepository) ListOps(shipID uint, limit int) ([]models.ShipOp, error) {
	var ops []models.ShipOp
	result := r.db.Where("ship_id = ?", shipID).Order("id DESC").Limit(limit).Find(&ops)
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to list ops")
	}
	return ops, nil
}

func renderValue(value any) string {
	if value == nil {
		return ""
	}
	return fmt.Sprint(value)
}
