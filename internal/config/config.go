// Package config loads server settings from the environment (and a .env
// file in development).
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/robalobadob/wordle/apps/round-server/internal/game"
)

// Config holds all application configuration.
type Config struct {
	Port            string        `env:"PORT" envDefault:"5175"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat       string        `env:"LOG_FORMAT" envDefault:"json"` // json | console
	DBPath          string        `env:"DB_PATH" envDefault:"./data/app.db"`
	WordsFile       string        `env:"WORDS_FILE"`
	Scoring         string        `env:"SCORING" envDefault:"simple"` // simple | strict
	JWTSecret       string        `env:"JWT_SECRET" envDefault:"dev_secret_change_me"`
	JWTExpiresDays  int           `env:"JWT_EXPIRES_DAYS" envDefault:"14"`
	CookieName      string        `env:"COOKIE_NAME" envDefault:"wordle_token"`
	CookieSecure    bool          `env:"COOKIE_SECURE" envDefault:"false"`
	ClientOrigin    string        `env:"CLIENT_ORIGIN" envDefault:"http://localhost:5173"`
	DailySalt       string        `env:"DAILY_SALT" envDefault:"local_dev_salt"`
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"15s"`
	RoundTTL        time.Duration `env:"ROUND_TTL" envDefault:"30m"`     // idle time before a normal round is evicted
	SweepInterval   time.Duration `env:"SWEEP_INTERVAL" envDefault:"1m"` // how often idle rounds are swept
}

// Load reads .env files (missing files are fine) and parses the environment.
func Load(files ...string) (*Config, error) {
	_ = godotenv.Load(files...)
	return Parse()
}

// Parse reads the process environment only.
func Parse() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values env tags cannot express.
func (c *Config) Validate() error {
	if _, err := game.ParseScoring(c.Scoring); err != nil {
		return fmt.Errorf("SCORING: %w", err)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("LOG_LEVEL: %w", err)
	}
	if c.JWTExpiresDays <= 0 {
		return errors.New("JWT_EXPIRES_DAYS must be positive")
	}
	if c.RoundTTL <= 0 || c.SweepInterval <= 0 {
		return errors.New("ROUND_TTL and SWEEP_INTERVAL must be positive")
	}
	return nil
}

// TokenTTL is the auth token lifetime.
func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.JWTExpiresDays) * 24 * time.Hour
}

// Addr is the HTTP listen address.
func (c *Config) Addr() string { return ":" + c.Port }
