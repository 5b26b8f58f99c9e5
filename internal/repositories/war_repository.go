package repositories

import (
	"time"

	"github.com/foxhole-tools/shiptracker/internal/models"
	"github.com/foxhole-tools/shiptracker/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type WarRepository struct {
	db *gorm.DB
}

func NewWarRepository(db *gorm.DB) *WarRepository {
	return &WarRepository{db: db}
}

// EnsureWar creates the war row for the configured war number if missing.
func (r *WarRepository) EnsureWar(warID uint) error {
	war := models.War{ID: warID}
	result := r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&war)
	if result.Error != nil {
		return errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to ensure war")
	}
	return nil
}

// GetWar retrieves a war by number.
func (r *WarRepository) GetWar(warID uint) (*models.War, error) {
	var war models.War
	result := r.db.First(&war, warID)
	if result.Error == gorm.ErrRecordNotFound {
		return nil, errors.New(errors.ErrCodeNotFound, "war not found")
	}
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to get war")
	}
	return &war, nil
}

// EndWar stamps the war's end time. Ending an already-ended war keeps the
// original timestamp.
func (r *WarRepository) EndWar(warID uint) error {
	result := r.db.Model(&models.War{}).
		Where("id = ? AND ended_at IS NULL", warID).
		Update("ended_at", time.Now().UTC())
	if result.Error != nil {
		return errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to end war")
	}
	if result.RowsAffected == 0 {
		return errors.New(errors.ErrCodeAlreadyExists, "war already ended")
	}
	return nil
}
