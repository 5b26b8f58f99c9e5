package config

import (
	"os"
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	os.Setenv("DISCORD_TOKEN", "test_token")
	os.Setenv("DB_PASSWORD", "test_password")
	os.Setenv("WAR", "117")
	t.Cleanup(func() {
		os.Unsetenv("DISCORD_TOKEN")
		os.Unsetenv("DB_PASSWORD")
		os.Unsetenv("WAR")
	})
}

func TestLoadConfig(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.BotToken != "test_token" {
		t.Errorf("BotToken = %q, want %q", cfg.BotToken, "test_token")
	}
	if cfg.WarNumber != 117 {
		t.Errorf("WarNumber = %d, want 117", cfg.WarNumber)
	}
	if cfg.DBHost != "localhost" {
		t.Errorf("DBHost = %q, want default localhost", cfg.DBHost)
	}
	if cfg.RateLimitPerUser != 20 {
		t.Errorf("RateLimitPerUser = %d, want default 20", cfg.RateLimitPerUser)
	}
	if cfg.MemberTTL() != 60*time.Second {
		t.Errorf("MemberTTL() = %v, want 60s", cfg.MemberTTL())
	}
	if cfg.RolesMapTTL() != 300*time.Second {
		t.Errorf("RolesMapTTL() = %v, want 300s", cfg.RolesMapTTL())
	}
}

func TestLoadConfig_MissingRequired(t *testing.T) {
	tests := []struct {
		name    string
		envVars map[string]string
	}{
		{
			name: "Missing DISCORD_TOKEN",
			envVars: map[string]string{
				"DB_PASSWORD": "password",
				"WAR":         "117",
			},
		},
		{
			name: "Missing DB_PASSWORD",
			envVars: map[string]string{
				"DISCORD_TOKEN": "token",
				"WAR":           "117",
			},
		},
		{
			name: "Missing WAR",
			envVars: map[string]string{
				"DISCORD_TOKEN": "token",
				"DB_PASSWORD":   "password",
			},
		},
		{
			name: "Non-numeric WAR",
			envVars: map[string]string{
				"DISCORD_TOKEN": "token",
				"DB_PASSWORD":   "password",
				"WAR":           "banana",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.envVars {
				os.Setenv(k, v)
			}
			defer func() {
				for k := range tt.envVars {
					os.Unsetenv(k)
				}
			}()

			if _, err := LoadConfig(); err == nil {
				t.Error("LoadConfig() succeeded, want error")
			}
		})
	}
}

func TestValidateProductionSecurity(t *testing.T) {
	cfg := &Config{AppEnv: "production", DBSSLMode: "disable"}
	if err := cfg.ValidateProductionSecurity(); err == nil {
		t.Error("production with sslmode=disable passed validation")
	}

	cfg.DBSSLMode = "require"
	if err := cfg.ValidateProductionSecurity(); err != nil {
		t.Errorf("production with sslmode=require failed: %v", err)
	}

	dev := &Config{AppEnv: "development", DBSSLMode: "disable"}
	if err := dev.ValidateProductionSecurity(); err != nil {
		t.Errorf("development config failed production check: %v", err)
	}
}

func TestGetDSN(t *testing.T) {
	cfg := &Config{
		DBHost: "db", DBPort: "5432", DBUser: "u",
		DBPassword: "p", DBName: "n", DBSSLMode: "require",
	}
	want := "host=db port=5432 user=u password=p dbname=n sslmode=require"
	if got := cfg.GetDSN(); got != want {
		t.Errorf("GetDSN() = %q, want %q", got, want)
	}
}
