package config

import (
	"os"
	"testing"
	"time"
)

// chdirTemp runs the test in an empty directory so no .env file is picked up
func chdirTemp(t *testing.T) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get working directory: %v", err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatalf("failed to change directory: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoad_Defaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Engine.Timezone != "UTC" {
		t.Errorf("expected timezone UTC, got %s", cfg.Engine.Timezone)
	}
	if cfg.API.CacheTTL != 2*time.Minute {
		t.Errorf("expected cache TTL 2m, got %v", cfg.API.CacheTTL)
	}
	if len(cfg.API.CORSOrigins) != 2 {
		t.Errorf("expected 2 default CORS origins, got %v", cfg.API.CORSOrigins)
	}
	if !cfg.Database.AutoMigrate {
		t.Error("expected migrations to run by default")
	}
	if cfg.Ingest.Workers != 4 {
		t.Errorf("expected 4 ingest workers, got %d", cfg.Ingest.Workers)
	}
}

func TestLoad_FromEnvironment(t *testing.T) {
	chdirTemp(t)
	t.Setenv("ENGINE_TIMEZONE", "Australia/Sydney")
	t.Setenv("API_CORS_ORIGINS", "https://dash.example")
	t.Setenv("DB_AUTO_MIGRATE", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Engine.Timezone != "Australia/Sydney" {
		t.Errorf("expected Australia/Sydney, got %s", cfg.Engine.Timezone)
	}
	if len(cfg.API.CORSOrigins) != 1 || cfg.API.CORSOrigins[0] != "https://dash.example" {
		t.Errorf("unexpected CORS origins %v", cfg.API.CORSOrigins)
	}
	if cfg.Database.AutoMigrate {
		t.Error("expected auto migrate to be disabled")
	}
}

func TestLoad_InvalidTimezone(t *testing.T) {
	chdirTemp(t)
	t.Setenv("ENGINE_TIMEZONE", "Mars/Olympus")

	if _, err := Load(); err == nil {
		t.Error("expected error for unknown timezone")
	}
}

func TestDatabaseConfig_Connection(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "db",
		Port:     5433,
		User:     "u",
		Password: "p",
		Name:     "wagers",
		SSLMode:  "disable",
	}

	if got := cfg.DSN(); got != "host=db port=5433 user=u password=p dbname=wagers sslmode=disable" {
		t.Errorf("unexpected DSN %s", got)
	}
	if got := cfg.URL(); got != "postgres://u:p@db:5433/wagers?sslmode=disable" {
		t.Errorf("unexpected URL %s", got)
	}
}
