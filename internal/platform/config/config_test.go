package config

import (
	"testing"
	"time"
)

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/punchclock")
	t.Setenv("RECONCILE_WORKERS", "8")
	t.Setenv("NIGHT_WORKER_CHECKIN_SHARE", "0.5")
	t.Setenv("RUN_MIGRATIONS", "false")
	t.Setenv("SHUTDOWN_TIMEOUT", "3s")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "not-a-number")

	cfg := Load()
	if cfg.ReconcileWorkers != 8 || cfg.NightWorkerCheckInShare != 0.5 || cfg.RunMigrations {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.ShutdownTimeout != 3*time.Second {
		t.Fatalf("expected 3s shutdown timeout, got %s", cfg.ShutdownTimeout)
	}
	if cfg.RateLimitPerMinute != 60 {
		t.Fatalf("expected fallback rate limit 60, got %d", cfg.RateLimitPerMinute)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	base := Config{
		DatabaseURL:               "postgres://localhost/punchclock",
		MaxBodyBytes:              1 << 20,
		MaxUploadBytes:            20 << 20,
		RateLimitPerMinute:        60,
		ReconcileWorkers:          1,
		NightWorkerCheckInShare:   0.3,
		NightWorkerEarlyCheckOuts: 2,
	}
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing database", func(c *Config) { c.DatabaseURL = "" }},
		{"weak production secret", func(c *Config) { c.Environment = "production"; c.JWTSecret = "short" }},
		{"tiny body limit", func(c *Config) { c.MaxBodyBytes = 10 }},
		{"upload below body limit", func(c *Config) { c.MaxUploadBytes = 1024 }},
		{"zero workers", func(c *Config) { c.ReconcileWorkers = 0 }},
		{"share above one", func(c *Config) { c.NightWorkerCheckInShare = 1.5 }},
	}
	if err := base.Validate(); err != nil {
		t.Fatalf("expected base config to be valid, got %v", err)
	}
	for _, tc := range cases {
		cfg := base
		tc.mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Fatalf("%s: expected validation error", tc.name)
		}
	}
}
