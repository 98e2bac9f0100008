package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse()
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Port != "5175" || cfg.Scoring != "simple" || cfg.RequestTimeout != 10*time.Second {
		t.Fatalf("cfg = %+v", cfg)
	}
	if cfg.TokenTTL() != 14*24*time.Hour {
		t.Fatalf("TokenTTL = %v", cfg.TokenTTL())
	}
	if cfg.RoundTTL != 30*time.Minute || cfg.SweepInterval != time.Minute {
		t.Fatalf("RoundTTL = %v, SweepInterval = %v", cfg.RoundTTL, cfg.SweepInterval)
	}
	if cfg.Addr() != ":5175" {
		t.Fatalf("Addr = %q", cfg.Addr())
	}
}

func TestParseOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("SCORING", "strict")
	t.Setenv("COOKIE_SECURE", "true")
	t.Setenv("SHUTDOWN_TIMEOUT", "3s")

	cfg, err := Parse()
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Port != "9000" || cfg.Scoring != "strict" || !cfg.CookieSecure || cfg.ShutdownTimeout != 3*time.Second {
		t.Fatalf("cfg = %+v", cfg)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		key, value, want string
	}{
		{"SCORING", "fuzzy", "SCORING"},
		{"LOG_LEVEL", "loud", "LOG_LEVEL"},
		{"JWT_EXPIRES_DAYS", "0", "JWT_EXPIRES_DAYS"},
		{"JWT_EXPIRES_DAYS", "soon", "parse env:"},
		{"ROUND_TTL", "0s", "ROUND_TTL"},
		{"SWEEP_INTERVAL", "-1m", "SWEEP_INTERVAL"},
	}
	for _, tc := range tests {
		t.Run(tc.key+"="+tc.value, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)
			_, err := Parse()
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("err = %v, want %q", err, tc.want)
			}
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("DAILY_SALT=from_dotenv\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("DAILY_SALT", "")
	os.Unsetenv("DAILY_SALT")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DailySalt != "from_dotenv" {
		t.Fatalf("DailySalt = %q", cfg.DailySalt)
	}
}
