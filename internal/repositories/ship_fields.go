package repositories

import (
	"strconv"

	"github.com/foxhole-tools/shiptracker/internal/models"
)

// shipField maps an externally-supplied field name to its column and a
// typed reader for the audit old-value. Field names never reach SQL unless
// they match this table.
type shipField struct {
	column string
	get    func(*models.Ship) string
}

var shipFields = map[string]shipField{
	"name":     {"name", func(s *models.Ship) string { return s.Name }},
	"type":     {"type", func(s *models.Ship) string { return s.Type }},
	"status":   {"status", func(s *models.Ship) string { return s.Status }},
	"damage":   {"damage", func(s *models.Ship) string { return strconv.Itoa(s.Damage) }},
	"location": {"location", func(s *models.Ship) string { return s.Location }},
	"home_port": {"home_port", func(s *models.Ship) string { return s.HomePort }},
	"regiment": {"regiment", func(s *models.Ship) string { return s.Regiment }},
	"notes":    {"notes", func(s *models.Ship) string { return s.Notes }},
	"keys":     {"keys", func(s *models.Ship) string { return s.Keys }},
	"image_url": {"image_url", func(s *models.Ship) string { return s.ImageURL }},
	"share_code": {"share_code", func(s *models.Ship) string {
		if s.ShareCode == nil {
			return ""
		}
		return *s.ShareCode
	}},
	"squad_lock_until": {"squad_lock_until", func(s *models.Ship) string { return strconv.FormatInt(s.SquadLockUntil, 10) }},
}

// IsMutableField reports whether field is in the fixed update allow-list.
func IsMutableField(field string) bool {
	_, ok := shipFields[field]
	return ok
}
