package config

import (
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Env != "development" {
		t.Errorf("expected env=development, got %s", cfg.Env)
	}
	if cfg.DataDir != "datasets" {
		t.Errorf("expected data dir=datasets, got %s", cfg.DataDir)
	}
	if cfg.Meli.BaseURL != "https://api.mercadolibre.com" {
		t.Errorf("unexpected meli base url: %s", cfg.Meli.BaseURL)
	}
	if cfg.Meli.Site != "MLA" {
		t.Errorf("expected site=MLA, got %s", cfg.Meli.Site)
	}
	if cfg.UTCOffsetHours != -3 {
		t.Errorf("expected offset=-3, got %d", cfg.UTCOffsetHours)
	}
	if cfg.PriceWorkers < 1 {
		t.Errorf("expected at least one price worker, got %d", cfg.PriceWorkers)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("DATA_DIR", "/var/lib/ipcmeli")
	t.Setenv("CLOCK_UTC_OFFSET_HOURS", "-5")
	t.Setenv("YTD_START_YEAR", "2024")
	t.Setenv("PRICE_WORKERS", "8")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Env != "production" {
		t.Errorf("expected env=production, got %s", cfg.Env)
	}
	if cfg.DataDir != "/var/lib/ipcmeli" {
		t.Errorf("unexpected data dir: %s", cfg.DataDir)
	}
	if cfg.UTCOffsetHours != -5 {
		t.Errorf("expected offset=-5, got %d", cfg.UTCOffsetHours)
	}
	if cfg.YTDStartYear != 2024 {
		t.Errorf("expected ytd start year=2024, got %d", cfg.YTDStartYear)
	}
	if cfg.PriceWorkers != 8 {
		t.Errorf("expected 8 workers, got %d", cfg.PriceWorkers)
	}
}

func TestValidate(t *testing.T) {
	t.Setenv("ENV", "sandbox")

	if _, err := Load(); err == nil {
		t.Error("expected validation error for unknown ENV")
	}
}

func TestGetEnvAsIntFallback(t *testing.T) {
	t.Setenv("PRICE_WORKERS", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.PriceWorkers != 4 {
		t.Errorf("expected fallback to 4 workers, got %d", cfg.PriceWorkers)
	}
}
