// Package config loads environment variables and provides a typed Config used across the service.
// It applies sensible defaults so the binary can run locally with minimal setup.
// The bot token is the only required credential; use ValidateBotReady before connecting.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Telegram
	BotToken string
	OwnerID  int64

	// Storage
	DataDir string

	// Delivery
	MaxFileBytes int64

	// Sweeper
	SweepInterval time.Duration
	SweepMaxAge   time.Duration

	// Concurrency
	MaxConcurrentJobs int

	// HTTP
	HTTPAddr string

	// Resolver passthrough flags, whitespace separated.
	YTDLPArgs []string
}

// Load reads environment variables and applies defaults. It doesn't fail if
// the bot token is missing; use ValidateBotReady() when you require the
// Telegram connection.
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.BotToken = os.Getenv("TELEGRAM_BOT_TOKEN")

	if v := os.Getenv("OWNER_ID"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid OWNER_ID: %w", err)
		}
		cfg.OwnerID = n
	}

	cfg.DataDir = os.Getenv("DATA_DIR")
	if cfg.DataDir == "" {
		cfg.DataDir = "data"
	}

	cfg.MaxFileBytes = 49_500_000
	if v := os.Getenv("MAX_FILE_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid MAX_FILE_BYTES: %q", v)
		}
		cfg.MaxFileBytes = n
	}

	cfg.SweepInterval = 5 * time.Minute
	if v := os.Getenv("SWEEP_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("invalid SWEEP_INTERVAL: %q", v)
		}
		cfg.SweepInterval = d
	}

	cfg.SweepMaxAge = 5 * time.Minute
	if v := os.Getenv("SWEEP_MAX_AGE"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("invalid SWEEP_MAX_AGE: %q", v)
		}
		cfg.SweepMaxAge = d
	}

	cfg.MaxConcurrentJobs = 4
	if v := os.Getenv("MAX_CONCURRENT_JOBS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("invalid MAX_CONCURRENT_JOBS: %q", v)
		}
		cfg.MaxConcurrentJobs = n
	}

	cfg.HTTPAddr = os.Getenv("HTTP_ADDR")
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}

	if v := os.Getenv("YTDLP_ARGS"); v != "" {
		cfg.YTDLPArgs = strings.Fields(v)
	}

	return cfg, nil
}

// ValidateBotReady checks required fields for connecting to Telegram.
func (c *Config) ValidateBotReady() error {
	if c.BotToken == "" {
		return fmt.Errorf("missing telegram env: require TELEGRAM_BOT_TOKEN")
	}
	return nil
}
