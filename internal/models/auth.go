package models

import "time"

// GuildAuthUser is one row of a guild's user allow-list. The list is
// replaced wholesale on every admin edit.
type GuildAuthUser struct {
	ID      uint   `gorm:"primaryKey"`
	GuildID string `gorm:"type:varchar(32);not null;uniqueIndex:idx_guild_auth_user"`
	UserID  string `gorm:"type:varchar(32);not null;uniqueIndex:idx_guild_auth_user"`
}

func (GuildAuthUser) TableName() string {
	return "guild_auth_users"
}

// GuildAuthRole is one row of a guild's role allow-list.
type GuildAuthRole struct {
	ID      uint   `gorm:"primaryKey"`
	GuildID string `gorm:"type:varchar(32);not null;uniqueIndex:idx_guild_auth_role"`
	RoleID  string `gorm:"type:varchar(32);not null;uniqueIndex:idx_guild_auth_role"`
}

func (GuildAuthRole) TableName() string {
	return "guild_auth_roles"
}

// ShipAuthUser grants one user access to one ship regardless of guild
// membership.
type ShipAuthUser struct {
	ID       uint   `gorm:"primaryKey"`
	ShipID   uint   `gorm:"not null;uniqueIndex:idx_ship_auth_user"`
	UserID   string `gorm:"type:varchar(32);not null;uniqueIndex:idx_ship_auth_user"`
	AuthedBy string `gorm:"type:varchar(32)"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (ShipAuthUser) TableName() string {
	return "ship_auth_users"
}
