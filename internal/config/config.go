package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config keeps runtime settings for the bot.
type Config struct {
	TelegramToken  string
	DatabaseURL    string
	ReportInterval time.Duration
	ReportWindow   time.Duration
}

// Load reads configuration from a local .env (if present) and environment
// variables with sane defaults. A missing bot token is fatal.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		TelegramToken:  strings.TrimSpace(os.Getenv("TG_BOT_TOKEN")),
		DatabaseURL:    strings.TrimSpace(os.Getenv("DATABASE_URL")),
		ReportInterval: parseHours(strings.TrimSpace(os.Getenv("REPORT_INTERVAL_HOURS"))),
		ReportWindow:   parseDays(strings.TrimSpace(os.Getenv("REPORT_WINDOW_DAYS"))),
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = "ledger.db"
	}

	if cfg.ReportWindow == 0 {
		cfg.ReportWindow = 30 * 24 * time.Hour
	}

	if cfg.TelegramToken == "" {
		return cfg, fmt.Errorf("TG_BOT_TOKEN is required")
	}

	return cfg, nil
}

// parseHours returns 0 for empty or invalid input, which disables the
// periodic digest.
func parseHours(raw string) time.Duration {
	if raw == "" {
		return 0
	}
	hours, err := time.ParseDuration(raw + "h")
	if err != nil || hours <= 0 {
		return 0
	}
	return hours
}

func parseDays(raw string) time.Duration {
	if raw == "" {
		return 0
	}
	days, err := time.ParseDuration(raw + "h")
	if err != nil || days <= 0 {
		return 0
	}
	return days * 24
}
