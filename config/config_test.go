package config

import (
	"os"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"TELEGRAM_BOT_TOKEN", "OWNER_ID", "DATA_DIR", "MAX_FILE_BYTES", "SWEEP_INTERVAL", "SWEEP_MAX_AGE", "MAX_CONCURRENT_JOBS", "HTTP_ADDR", "YTDLP_ARGS"} {
		t.Setenv(k, "")
		if err := os.Unsetenv(k); err != nil {
			t.Fatalf("unset %s: %v", k, err)
		}
	}
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.DataDir != "data" {
		t.Errorf("DataDir = %q, want data", cfg.DataDir)
	}
	if cfg.MaxFileBytes != 49_500_000 {
		t.Errorf("MaxFileBytes = %d, want 49500000", cfg.MaxFileBytes)
	}
	if cfg.SweepInterval != 5*time.Minute || cfg.SweepMaxAge != 5*time.Minute {
		t.Errorf("sweep defaults = %v / %v, want 5m / 5m", cfg.SweepInterval, cfg.SweepMaxAge)
	}
	if cfg.MaxConcurrentJobs != 4 {
		t.Errorf("MaxConcurrentJobs = %d, want 4", cfg.MaxConcurrentJobs)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q, want :8080", cfg.HTTPAddr)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("OWNER_ID", "12345")
	t.Setenv("MAX_FILE_BYTES", "1000")
	t.Setenv("SWEEP_INTERVAL", "1m")
	t.Setenv("SWEEP_MAX_AGE", "90s")
	t.Setenv("MAX_CONCURRENT_JOBS", "2")
	t.Setenv("YTDLP_ARGS", "--proxy socks5://localhost:9050")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.OwnerID != 12345 {
		t.Errorf("OwnerID = %d, want 12345", cfg.OwnerID)
	}
	if cfg.MaxFileBytes != 1000 {
		t.Errorf("MaxFileBytes = %d, want 1000", cfg.MaxFileBytes)
	}
	if cfg.SweepInterval != time.Minute || cfg.SweepMaxAge != 90*time.Second {
		t.Errorf("sweep = %v / %v", cfg.SweepInterval, cfg.SweepMaxAge)
	}
	if len(cfg.YTDLPArgs) != 2 || cfg.YTDLPArgs[0] != "--proxy" {
		t.Errorf("YTDLPArgs = %v", cfg.YTDLPArgs)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct{ key, val string }{
		{"OWNER_ID", "not-a-number"},
		{"MAX_FILE_BYTES", "-1"},
		{"SWEEP_INTERVAL", "soon"},
		{"MAX_CONCURRENT_JOBS", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			if _, err := Load(); err == nil {
				t.Errorf("Load() accepted %s=%q", tt.key, tt.val)
			}
		})
	}
}

func TestValidateBotReady(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	cfg, _ := Load()
	if err := cfg.ValidateBotReady(); err != nil {
		t.Errorf("expected valid bot config, got %v", err)
	}
	if err := os.Unsetenv("TELEGRAM_BOT_TOKEN"); err != nil {
		t.Fatalf("failed to unset TELEGRAM_BOT_TOKEN: %v", err)
	}
	cfg, _ = Load()
	if err := cfg.ValidateBotReady(); err == nil {
		t.Errorf("expected error when missing telegram env")
	}
}
