package config

import (
	"errors"
	"testing"
)

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("BRIDGE_SERVER_URL", "https://app.example.com")
	t.Setenv("BRIDGE_ENABLE_CACHED_LOGINS", "false")
	t.Setenv("BRIDGE_LOG_LEVEL", "debug")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv failed: %v", err)
	}

	if cfg.ServerURL != "https://app.example.com" {
		t.Errorf("unexpected server URL: %q", cfg.ServerURL)
	}
	if cfg.EnableCachedLogins {
		t.Error("expected cached logins disabled")
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("unexpected log level: %q", cfg.LogLevel)
	}
}

func TestLoadFromEnv_Defaults(t *testing.T) {
	t.Setenv("BRIDGE_SERVER_URL", "https://app.example.com")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv failed: %v", err)
	}

	if !cfg.EnableCachedLogins {
		t.Error("expected cached logins enabled by default")
	}
	if cfg.LogLevel != "info" {
		t.Errorf("expected default log level info, got %q", cfg.LogLevel)
	}
}

func TestValidate(t *testing.T) {
	cfg := &Config{}
	if err := cfg.Validate(); !errors.Is(err, ErrMissingServerURL) {
		t.Errorf("expected ErrMissingServerURL, got %v", err)
	}

	cfg.ServerURL = "https://app.example.com"
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected valid config, got %v", err)
	}
}
