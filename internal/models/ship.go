package models

import (
	"strings"
	"time"
)

// Ship is the canonical entity behind every posted ship card. A ship
// imported into another guild via a share code becomes its own row linked
// back to the origin through LinkRootID; linked rows mutate in lockstep.
type Ship struct {
	ID      uint   `gorm:"primaryKey"`
	GuildID string `gorm:"type:varchar(32);not null;uniqueIndex:idx_ships_guild_war_name"`
	WarID   uint   `gorm:"not null;uniqueIndex:idx_ships_guild_war_name"`
	Name    string `gorm:"type:varchar(64);not null;uniqueIndex:idx_ships_guild_war_name"`

	Type     string `gorm:"type:varchar(64)"`
	Status   string `gorm:"type:varchar(32);default:'Parked'"`
	Damage   int    `gorm:"default:0;not null"`
	Location string `gorm:"type:varchar(100)"`
	HomePort string `gorm:"type:varchar(100)"`
	Regiment string `gorm:"type:varchar(100)"`
	Notes    string `gorm:"type:text"`
	Keys     string `gorm:"type:varchar(200)"`
	ImageURL string `gorm:"type:varchar(500)"`

	// One-time share code; NULL when unset or consumed.
	ShareCode *string `gorm:"type:varchar(8);uniqueIndex"`

	// Squad lock expiry as epoch seconds; 0 means no lock recorded.
	SquadLockUntil int64 `gorm:"default:0;not null"`

	// NULL for a self-rooted ship; otherwise the id of the origin ship all
	// linked copies mutate with.
	LinkRootID *uint `gorm:"index"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (Ship) TableName() string {
	return "ships"
}

// Ship status values. Status stays free text; these are the values the
// card buttons produce. StatusDead is terminal.
const (
	StatusParked    = "Parked"
	StatusDeployed  = "Deployed"
	StatusRepairing = "Repairing"
	StatusDead      = "Dead"
)

// Damage bounds for the 0-5 "smokes" scale.
const (
	DamageMin = 0
	DamageMax = 5
)

// IsDead reports whether the ship is in the terminal read-only state.
// The comparison is case-insensitive because status is free text.
func (s *Ship) IsDead() bool {
	return strings.EqualFold(strings.TrimSpace(s.Status), StatusDead)
}

// RootID is the ship's link-group root: itself when unlinked.
func (s *Ship) RootID() uint {
	if s.LinkRootID != nil {
		return *s.LinkRootID
	}
	return s.ID
}
