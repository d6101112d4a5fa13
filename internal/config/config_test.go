package config

import (
	"path/filepath"
	"testing"
	"time"
)

func TestReadConfig(t *testing.T) {
	var (
		err         error
		projectRoot string
	)

	// Get the project root by going up from internal/config
	projectRoot, err = filepath.Abs("../../")
	if err != nil {
		t.Fatalf("failed to get project root: %v", err)
	}

	configPath := filepath.Join(projectRoot, "etc") + string(filepath.Separator)

	var cfg Config

	cfg, err = ReadConfig(configPath)
	if err != nil {
		t.Fatalf("ReadConfig() error = %v", err)
	}

	// Test basic config fields
	if cfg.Title == "" {
		t.Error("Config.Title should not be empty")
	}

	if cfg.Webserver.Port == 0 {
		t.Error("Webserver.Port should not be 0")
	}

	if cfg.Webserver.URL == "" {
		t.Error("Webserver.URL should not be empty")
	}

	if cfg.Webserver.Session.ExpiryTime != 24*time.Hour {
		t.Errorf("Session.ExpiryTime = %v, want 24h", cfg.Webserver.Session.ExpiryTime)
	}

	// Test DB config
	if cfg.DB.Host == "" {
		t.Error("DB.Host should not be empty")
	}

	// Test OAuth client settings
	if cfg.Auth.Discord.ClientID == "" {
		t.Error("Auth.Discord.ClientID should not be empty")
	}

	if cfg.Auth.Discord.RedirectURL == "" {
		t.Error("Auth.Discord.RedirectURL should not be empty")
	}
}

func TestReadConfigMissingFile(t *testing.T) {
	_, err := ReadConfig("/nonexistent/path/")
	if err == nil {
		t.Fatal("ReadConfig() with a missing file should fail")
	}
}

func TestReadConfigEnvOverride(t *testing.T) {
	var (
		err         error
		projectRoot string
	)

	projectRoot, err = filepath.Abs("../../")
	if err != nil {
		t.Fatalf("failed to get project root: %v", err)
	}

	configPath := filepath.Join(projectRoot, "etc") + string(filepath.Separator)

	t.Setenv("LOOTLEDGER_CONFIG_JSON", `{"Title":"Overridden"}`)

	cfg, err := ReadConfig(configPath)
	if err != nil {
		t.Fatalf("ReadConfig() error = %v", err)
	}

	if cfg.Title != "Overridden" {
		t.Errorf("Title = %q, want %q", cfg.Title, "Overridden")
	}
}

func TestDumpConfig(t *testing.T) {
	cfg := Config{Title: "Lootledger"}

	out, err := DumpConfig(cfg)
	if err != nil {
		t.Fatalf("DumpConfig() error = %v", err)
	}

	if out == "" {
		t.Error("DumpConfig() should not return an empty string")
	}
}
