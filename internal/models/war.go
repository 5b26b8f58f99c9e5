package models

import "time"

// War scopes every ship in the process; its ID is the war number from
// configuration, not an autoincrement.
type War struct {
	ID        uint       `gorm:"primaryKey;autoIncrement:false"`
	StartedAt time.Time  `gorm:"autoCreateTime"`
	EndedAt   *time.Time `gorm:"default:NULL"`
}

func (War) TableName() string {
	return "wars"
}

// Ended reports whether the war has been closed by an admin.
func (w *War) Ended() bool {
	return w.EndedAt != nil
}
