package models

import "time"

// ShipUpdate is the append-only audit trail: one row per field change per
// ship row, including each member of a link group.
type ShipUpdate struct {
	ID       uint   `gorm:"primaryKey"`
	ShipID   uint   `gorm:"not null;index"`
	UserID   string `gorm:"type:varchar(32);not null"`
	Field    string `gorm:"type:varchar(32);not null"`
	OldValue string `gorm:"type:text"`
	NewValue string `gorm:"type:text"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (ShipUpdate) TableName() string {
	return "ship_updates"
}

// ShipKill records a kill log entry. Kept per ship row, not linked.
type ShipKill struct {
	ID       uint   `gorm:"primaryKey"`
	ShipID   uint   `gorm:"not null;index"`
	UserID   string `gorm:"type:varchar(32)"`
	KillsRaw string `gorm:"type:text;not null"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (ShipKill) TableName() string {
	return "ship_kills"
}

// ShipOp records an after-action debrief. Kept per ship row, not linked.
type ShipOp struct {
	ID      uint   `gorm:"primaryKey"`
	ShipID  uint   `gorm:"not null;index"`
	UserID  string `gorm:"type:varchar(32)"`
	Debrief string `gorm:"type:text;not null"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (ShipOp) TableName() string {
	return "ship_ops"
}
