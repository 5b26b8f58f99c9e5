package repositories

import (
	"github.com/foxhole-tools/shiptracker/internal/models"
	"github.com/foxhole-tools/shiptracker/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SupplyRepository struct {
	db *gorm.DB
}

func NewSupplyRepository(db *gorm.DB) *SupplyRepository {
	return &SupplyRepository{db: db}
}

// SetSupply upserts one resource count, keyed by (ship, resource).
func (r *SupplyRepository) SetSupply(shipID uint, resource string, quantity int) error {
	supply := models.ShipSupply{ShipID: shipID, Resource: resource, Quantity: quantity}
	result := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "ship_id"}, {Name: "resource"}},
		DoUpdates: clause.AssignmentColumns([]string{"quantity", "updated_at"}),
	}).Create(&supply)
	if result.Error != nil {
		return errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to set supply")
	}
	return nil
}

// ListSupplies returns a ship's supplies ordered by resource name.
func (r *SupplyRepository) ListSupplies(shipID uint) ([]models.ShipSupply, error) {
	var supplies []models.ShipSupply
	result := r.db.Where("ship_id = ?", shipID).Order("resource").Find(&supplies)
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to list supplies")
	}
	return supplies, nil
}
