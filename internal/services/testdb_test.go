package services

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/foxhole-tools/shiptracker/internal/models"
	"github.com/foxhole-tools/shiptracker/internal/repositories"
)

const testWar = 117

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

func newTestShipService(t *testing.T, db *gorm.DB) *ShipService {
	t.Helper()
	return NewShipService(
		repositories.NewShipRepository(db),
		repositories.NewWarRepository(db),
		repositories.NewSupplyRepository(db),
		repositories.NewAuthRepository(db),
		repositories.NewInstanceRepository(db),
		testWar,
		2,
	)
}
