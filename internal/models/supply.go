package models

import "time"

// ShipSupply is one resource count on one ship row. Supplies are stocked
// per posting guild, so they deliberately do not follow link groups.
type ShipSupply struct {
	ID       uint   `gorm:"primaryKey"`
	ShipID   uint   `gorm:"not null;uniqueIndex:idx_ship_supply"`
	Resource string `gorm:"type:varchar(64);not null;uniqueIndex:idx_ship_supply"`
	Quantity int    `gorm:"default:0;not null"`

	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (ShipSupply) TableName() string {
	return "ship_supplies"
}
