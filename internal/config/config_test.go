package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadUsesDefaultsAndYAMLOverrides(t *testing.T) {
	clearConfigEnv(t)

	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")
	yaml := `
matching:
  rematch_allowed: true
  timezone: Europe/Berlin
limits:
  rate_per_minute: 90
feed:
  age_min: 21
boost:
  duration: 45m
cleanup:
  quota_retention: 720h
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write temp config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if !cfg.Matching.RematchAllowed {
		t.Fatalf("expected rematch_allowed override")
	}
	if cfg.Matching.Timezone != "Europe/Berlin" {
		t.Fatalf("unexpected timezone: %s", cfg.Matching.Timezone)
	}
	if cfg.Limits.RatePerMinute != 90 {
		t.Fatalf("unexpected rate_per_minute: %d", cfg.Limits.RatePerMinute)
	}
	if cfg.Feed.AgeMin != 21 {
		t.Fatalf("unexpected age_min: %d", cfg.Feed.AgeMin)
	}
	if cfg.Boost.Duration.String() != "45m0s" {
		t.Fatalf("unexpected boost duration: %s", cfg.Boost.Duration)
	}
	if cfg.Cleanup.QuotaRetention.String() != "720h0m0s" {
		t.Fatalf("unexpected quota retention: %s", cfg.Cleanup.QuotaRetention)
	}

	if cfg.Limits.RatePer10Seconds != 15 {
		t.Fatalf("rate_per_10sec default should stay 15")
	}
	if cfg.Feed.AgeMax != 99 {
		t.Fatalf("age_max default should stay 99")
	}
	if cfg.HTTP.Addr != ":8080" {
		t.Fatalf("http addr default should stay :8080")
	}
}

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	clearConfigEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load config with missing file: %v", err)
	}

	if cfg.Matching.RematchAllowed {
		t.Fatalf("rematch must be disallowed by default")
	}
	if cfg.Matching.Timezone != "UTC" {
		t.Fatalf("unexpected default timezone: %s", cfg.Matching.Timezone)
	}
	if cfg.Boost.Duration.String() != "30m0s" {
		t.Fatalf("unexpected default boost duration: %s", cfg.Boost.Duration)
	}
	if cfg.Feed.RadiusDefaultKM != 25 || cfg.Feed.RadiusMaxKM != 200 {
		t.Fatalf("unexpected radius defaults: %d/%d", cfg.Feed.RadiusDefaultKM, cfg.Feed.RadiusMaxKM)
	}
}

func TestEnvOverridesWinOverYAML(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("MATCHING_REMATCH_ALLOWED", "true")
	t.Setenv("RATE_PER_MINUTE", "11")
	t.Setenv("POSTGRES_DSN", "postgres://env:env@db:5432/app")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if !cfg.Matching.RematchAllowed {
		t.Fatalf("expected env rematch override")
	}
	if cfg.Limits.RatePerMinute != 11 {
		t.Fatalf("unexpected env rate override: %d", cfg.Limits.RatePerMinute)
	}
	if cfg.Postgres.DSN != "postgres://env:env@db:5432/app" {
		t.Fatalf("unexpected env dsn override: %s", cfg.Postgres.DSN)
	}
}

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_ENV", "HTTP_ADDR", "HTTP_READ_TIMEOUT", "HTTP_WRITE_TIMEOUT", "HTTP_IDLE_TIMEOUT",
		"LOG_LEVEL", "POSTGRES_DSN", "REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB",
		"JWT_SECRET", "JWT_ACCESS_TTL", "MATCHING_REMATCH_ALLOWED", "MATCHING_TIMEZONE",
		"RATE_PER_MINUTE", "RATE_PER_10SEC", "RATE_SUPERLIKE_PER_MINUTE",
		"BOOST_DURATION", "CLEANUP_INTERVAL", "CLEANUP_QUOTA_RETENTION",
	} {
		t.Setenv(key, "")
	}
}
