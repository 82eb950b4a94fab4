package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("Port = %s, want 8080", cfg.Port)
	}
	if cfg.HistoryDepth != 10 {
		t.Errorf("HistoryDepth = %d, want 10", cfg.HistoryDepth)
	}
	if cfg.HTTPTimeout != 30*time.Second {
		t.Errorf("HTTPTimeout = %v", cfg.HTTPTimeout)
	}
	if cfg.CheckSchedule == "" {
		t.Error("CheckSchedule should have a default")
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("HISTORY_DEPTH", "3")
	t.Setenv("HTTP_TIMEOUT", "5s")
	t.Setenv("RATE_LIMIT_PER_SECOND", "2.5")

	cfg := Load()

	if cfg.Port != "9090" {
		t.Errorf("Port = %s", cfg.Port)
	}
	if cfg.HistoryDepth != 3 {
		t.Errorf("HistoryDepth = %d", cfg.HistoryDepth)
	}
	if cfg.HTTPTimeout != 5*time.Second {
		t.Errorf("HTTPTimeout = %v", cfg.HTTPTimeout)
	}
	if cfg.RateLimitPerSecond != 2.5 {
		t.Errorf("RateLimitPerSecond = %v", cfg.RateLimitPerSecond)
	}
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("HISTORY_DEPTH", "many")
	t.Setenv("HTTP_TIMEOUT", "soon")

	cfg := Load()

	if cfg.HistoryDepth != 10 {
		t.Errorf("HistoryDepth = %d, want default on parse failure", cfg.HistoryDepth)
	}
	if cfg.HTTPTimeout != 30*time.Second {
		t.Errorf("HTTPTimeout = %v, want default on parse failure", cfg.HTTPTimeout)
	}
}
