package config_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/billwatch/internal/infrastructure/config"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("BOT_TOKEN", "123456:test-token")
	t.Setenv("TARGET_CHAT_ID", "-100200300")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	if cfg.DatabaseURL == "" {
		t.Fatalf("expected default database URL to be set")
	}

	if cfg.Timezone != "Asia/Makassar" {
		t.Fatalf("expected default timezone, got %s", cfg.Timezone)
	}

	if cfg.ReminderHour != 10 || cfg.ReminderMinute != 0 {
		t.Fatalf("expected 10:00 reminder default, got %d:%d", cfg.ReminderHour, cfg.ReminderMinute)
	}

	if !cfg.LowBalanceThreshold.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("expected low balance threshold 10, got %s", cfg.LowBalanceThreshold)
	}

	if !cfg.CalliiDailyCost.Equal(decimal.NewFromFloat(2.2)) {
		t.Fatalf("expected callii daily cost 2.2, got %s", cfg.CalliiDailyCost)
	}

	if cfg.HTTPPort != "8080" {
		t.Fatalf("expected default HTTP port 8080, got %s", cfg.HTTPPort)
	}
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("REDIS_URL", "redis://example")
	t.Setenv("POLL_INTERVAL", "30m")
	t.Setenv("MIN_TOP_UP_AMOUNT", "7.50")
	t.Setenv("ZADARMA_KEY", "k")
	t.Setenv("ZADARMA_SECRET", "s")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	if cfg.DatabaseURL != "postgres://example" {
		t.Fatalf("expected custom database URL, got %s", cfg.DatabaseURL)
	}

	if cfg.PollInterval != 30*time.Minute {
		t.Fatalf("expected poll interval override, got %s", cfg.PollInterval)
	}

	if !cfg.MinTopUpAmount.Equal(decimal.NewFromFloat(7.5)) {
		t.Fatalf("expected top-up amount override, got %s", cfg.MinTopUpAmount)
	}

	if cfg.ZadarmaKey != "k" || cfg.ZadarmaSecret != "s" {
		t.Fatalf("expected provider credentials to be set")
	}
}

func TestLoadRequiresBotSettings(t *testing.T) {
	t.Setenv("BOT_TOKEN", "")
	t.Setenv("TARGET_CHAT_ID", "0")

	if _, err := config.Load(); err == nil {
		t.Fatalf("expected error for missing bot settings")
	}
}

func TestLoadRejectsBadTimezone(t *testing.T) {
	setRequired(t)
	t.Setenv("TIMEZONE", "Mars/Olympus")

	if _, err := config.Load(); err == nil {
		t.Fatalf("expected error for unknown timezone")
	}
}

func TestLocation(t *testing.T) {
	setRequired(t)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	loc, err := cfg.Location()
	if err != nil {
		t.Fatalf("unexpected error resolving location: %v", err)
	}
	if loc.String() != "Asia/Makassar" {
		t.Fatalf("expected Asia/Makassar, got %s", loc)
	}
}
