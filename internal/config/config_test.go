package config

import (
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost/fleet")
	t.Setenv("API_KEY_HASH", "abc123")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.HTTPPort != 7171 {
		t.Errorf("got port %d, want 7171", cfg.HTTPPort)
	}
	if cfg.RateLimit != 10.0 || cfg.RateLimitBurst != 20 {
		t.Errorf("got rate limit %v/%d, want 10/20", cfg.RateLimit, cfg.RateLimitBurst)
	}
	if cfg.SchedulerPollInterval != 30*time.Second {
		t.Errorf("got poll interval %v, want 30s", cfg.SchedulerPollInterval)
	}
	if cfg.ControllerURL != "http://localhost:7171" {
		t.Errorf("got controller url %q", cfg.ControllerURL)
	}
}

func TestLoad_MissingDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("API_KEY_HASH", "abc123")

	if _, err := Load(); err == nil {
		t.Error("expected error for missing DATABASE_URL")
	}
}

func TestLoad_MissingAPIKeyHash(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/fleet")
	t.Setenv("API_KEY_HASH", "")

	if _, err := Load(); err == nil {
		t.Error("expected error for missing API_KEY_HASH")
	}
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("PORT", "9000")
	t.Setenv("RATE_LIMIT", "2.5")
	t.Setenv("RATE_LIMIT_BURST", "5")
	t.Setenv("SCHEDULER_POLL_INTERVAL", "2m")
	t.Setenv("PROFILE_SYNC_URL", "http://sync.internal")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.HTTPPort != 9000 {
		t.Errorf("got port %d, want 9000", cfg.HTTPPort)
	}
	if cfg.RateLimit != 2.5 || cfg.RateLimitBurst != 5 {
		t.Errorf("got rate limit %v/%d, want 2.5/5", cfg.RateLimit, cfg.RateLimitBurst)
	}
	if cfg.SchedulerPollInterval != 2*time.Minute {
		t.Errorf("got poll interval %v, want 2m", cfg.SchedulerPollInterval)
	}
	if cfg.ProfileSyncURL != "http://sync.internal" {
		t.Errorf("got profile sync url %q", cfg.ProfileSyncURL)
	}
}

func TestLoad_InvalidPort(t *testing.T) {
	setRequired(t)
	t.Setenv("PORT", "not-a-number")

	if _, err := Load(); err == nil {
		t.Error("expected error for invalid PORT")
	}
}

func TestLoad_InvalidPollInterval(t *testing.T) {
	setRequired(t)
	t.Setenv("SCHEDULER_POLL_INTERVAL", "soon")

	if _, err := Load(); err == nil {
		t.Error("expected error for invalid SCHEDULER_POLL_INTERVAL")
	}
}
