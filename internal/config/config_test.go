package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Guide.PollInterval != 5*time.Second {
		t.Errorf("Guide.PollInterval = %v, want 5s", cfg.Guide.PollInterval)
	}
	if cfg.Guide.PollTimeout != 300*time.Second {
		t.Errorf("Guide.PollTimeout = %v, want 300s", cfg.Guide.PollTimeout)
	}
	if cfg.Catalog.MaxResults != 10 {
		t.Errorf("Catalog.MaxResults = %d, want 10", cfg.Catalog.MaxResults)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("GUIDE_POLL_INTERVAL", "100ms")
	t.Setenv("CATALOG_CACHE_TTL", "1h")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Guide.PollInterval != 100*time.Millisecond {
		t.Errorf("Guide.PollInterval = %v, want 100ms", cfg.Guide.PollInterval)
	}
	if cfg.Catalog.CacheTTL != time.Hour {
		t.Errorf("Catalog.CacheTTL = %v, want 1h", cfg.Catalog.CacheTTL)
	}
}

func TestLoad_InvalidInt(t *testing.T) {
	t.Setenv("SERVER_PORT", "not-a-number")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for invalid SERVER_PORT")
	}
}

func TestValidate_Missing(t *testing.T) {
	cfg := &Config{}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing required vars")
	}
}
