package database

import (
	"fmt"
	"time"

	"github.com/foxhole-tools/shiptracker/internal/config"
	"github.com/foxhole-tools/shiptracker/internal/models"
	"github.com/foxhole-tools/shiptracker/pkg/logger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func Connect(cfg *config.Config) (*gorm.DB, error) {
	dsn := cfg.GetDSN()

	var logLevel gormlogger.LogLevel
	if cfg.AppEnv == "development" {
		logLevel = gormlogger.Info
	} else {
		logLevel = gormlogger.Error
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(logLevel),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database handle: %w", err)
	}

	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetConnMaxLifetime(time.Hour)

	logger.Info("Database connected", "host", cfg.DBHost, "db", cfg.DBName)
	return db, nil
}

// AutoMigrate creates or updates every table the bot touches.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
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
}
