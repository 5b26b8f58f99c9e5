package models

import "time"

// ShipInstance binds a ship to one posted card message. Instances are only
// ever inserted and read; a deleted Discord message is discovered lazily
// when a fan-out edit fails.
type ShipInstance struct {
	ID         uint   `gorm:"primaryKey"`
	ShipID     uint   `gorm:"not null;index;uniqueIndex:idx_instance_message"`
	GuildID    string `gorm:"type:varchar(32);not null;uniqueIndex:idx_instance_message"`
	ChannelID  string `gorm:"type:varchar(32);not null;uniqueIndex:idx_instance_message"`
	MessageID  string `gorm:"type:varchar(32);not null;uniqueIndex:idx_instance_message"`
	IsOriginal bool   `gorm:"default:false;not null"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (ShipInstance) TableName() string {
	return "ship_instances"
}
