package repositories

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/foxhole-tools/shiptracker/internal/models"
)

// newTestDB opens a fresh in-memory database per test. Max one open
// connection, or each new connection would see an empty database.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&models.War{},
		&models.Ship{},
		&models.ShipInstance{},
		&models.ShipUpdate{},
		&models.ShipKill{},
		&models.ShipOp{},
		&models.ShipSupply{},
		&models.ShipAuthUser{},
		&models.GuildAuthUser{},
		&models.GuildAuthRole{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

func createTestShip(t *testing.T, repo *ShipRepository, guildID string, warID uint, name string) *models.Ship {
	t.Helper()
	ship := &models.Ship{GuildID: guildID, WarID: warID, Name: name, Status: models.StatusParked}
	if err := repo.CreateShip(ship); err != nil {
		t.Fatalf("failed to create ship %q: %v", name, err)
	}
	return ship
}
