package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Discord
	BotToken   string
	DevGuildID string

	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Application
	AppEnv    string
	LogLevel  string
	WarNumber uint

	// Auth cache TTLs (seconds)
	AuthMemberTTL         int
	AuthRolesMapTTL       int
	AuthInstanceGuildsTTL int

	// Rate limiting
	RateLimitPerUser int

	// Squad lock
	SquadLockDays int
}

func LoadConfig() (*Config, error) {
	cfg := &Config{
		BotToken:   getEnv("DISCORD_TOKEN", ""),
		DevGuildID: getEnv("DEV_GUILD_ID", ""),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "shiptracker"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "shiptracker_db"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		AppEnv:   getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		AuthMemberTTL:         getEnvInt("AUTH_MEMBER_TTL", 60),
		AuthRolesMapTTL:       getEnvInt("AUTH_ROLES_MAP_TTL", 300),
		AuthInstanceGuildsTTL: getEnvInt("AUTH_INST_GUILDS_TTL", 60),

		RateLimitPerUser: getEnvInt("RATE_LIMIT_PER_USER", 20),

		SquadLockDays: getEnvInt("SQUAD_LOCK_DAYS", 2),
	}

	// Parse the war number; ships are scoped to this one war process-wide.
	warStr := getEnv("WAR", "0")
	war, err := strconv.ParseUint(warStr, 10, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid WAR: %w", err)
	}
	cfg.WarNumber = uint(war)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.BotToken == "" {
		return fmt.Errorf("DISCORD_TOKEN is required")
	}
	if c.DBPassword == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.WarNumber == 0 {
		return fmt.Errorf("WAR must be a positive integer")
	}
	return nil
}

func (c *Config) ValidateProductionSecurity() error {
	if c.AppEnv != "production" {
		return nil
	}
	if c.DBSSLMode != "require" {
		return fmt.Errorf("DB_SSLMODE must be 'require' in production")
	}
	return nil
}

func (c *Config) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

func (c *Config) MemberTTL() time.Duration {
	return time.Duration(c.AuthMemberTTL) * time.Second
}

func (c *Config) RolesMapTTL() time.Duration {
	return time.Duration(c.AuthRolesMapTTL) * time.Second
}

func (c *Config) InstanceGuildsTTL() time.Duration {
	return time.Duration(c.AuthInstanceGuildsTTL) * time.Second
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
