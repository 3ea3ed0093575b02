// Package config reads runtime configuration from the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/julianstephens/riseroll/internal/constants"
)

// Config holds the values that may be set through RISEROLL_* variables.
// Command-line flags take precedence over these.
type Config struct {
	Database     string        `env:"RISEROLL_DB"`
	Debug        bool          `env:"RISEROLL_DEBUG"`
	MaxRerolls   int           `env:"RISEROLL_MAX_REROLLS"   envDefault:"2"`
	HistoryLimit int           `env:"RISEROLL_HISTORY_LIMIT" envDefault:"10"`
	FlushTimeout time.Duration `env:"RISEROLL_FLUSH_TIMEOUT" envDefault:"5s"`
}

// Load parses the environment and validates the result.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Default returns the configuration used when the environment is empty.
func Default() Config {
	return Config{
		MaxRerolls:   constants.DefaultMaxRerolls,
		HistoryLimit: constants.DefaultHistoryLimit,
		FlushTimeout: constants.DefaultFlushTimeout,
	}
}

// Validate rejects values the selection machine cannot work with.
func (c Config) Validate() error {
	if c.MaxRerolls < 0 {
		return fmt.Errorf("RISEROLL_MAX_REROLLS must be >= 0, got %d", c.MaxRerolls)
	}
	if c.HistoryLimit < 1 {
		return fmt.Errorf("RISEROLL_HISTORY_LIMIT must be >= 1, got %d", c.HistoryLimit)
	}
	if c.FlushTimeout <= 0 {
		return fmt.Errorf("RISEROLL_FLUSH_TIMEOUT must be positive, got %s", c.FlushTimeout)
	}
	return nil
}

// IsPostgres reports whether dsn is a PostgreSQL connection string rather than a file path.
func IsPostgres(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") ||
		strings.HasPrefix(dsn, "postgresql://") ||
		strings.Contains(dsn, "host=")
}

// ExpandPath resolves a leading ~ to the user's home directory.
func ExpandPath(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
