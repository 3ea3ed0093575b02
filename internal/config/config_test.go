package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("RISEROLL_DB", "")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.MaxRerolls != 2 {
		t.Errorf("expected MaxRerolls 2, got %d", cfg.MaxRerolls)
	}
	if cfg.HistoryLimit != 10 {
		t.Errorf("expected HistoryLimit 10, got %d", cfg.HistoryLimit)
	}
	if cfg.FlushTimeout != 5*time.Second {
		t.Errorf("expected FlushTimeout 5s, got %s", cfg.FlushTimeout)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("RISEROLL_DB", "/tmp/rr.db")
	t.Setenv("RISEROLL_DEBUG", "true")
	t.Setenv("RISEROLL_MAX_REROLLS", "4")
	t.Setenv("RISEROLL_HISTORY_LIMIT", "25")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Database != "/tmp/rr.db" {
		t.Errorf("expected database path from env, got %q", cfg.Database)
	}
	if !cfg.Debug {
		t.Error("expected debug to be enabled")
	}
	if cfg.MaxRerolls != 4 || cfg.HistoryLimit != 25 {
		t.Errorf("unexpected limits: %+v", cfg)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"negative rerolls", "RISEROLL_MAX_REROLLS", "-1"},
		{"zero history", "RISEROLL_HISTORY_LIMIT", "0"},
		{"not a number", "RISEROLL_MAX_REROLLS", "two"},
		{"bad duration", "RISEROLL_FLUSH_TIMEOUT", "soon"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); err == nil {
				t.Errorf("expected error for %s=%s", tt.key, tt.value)
			}
		})
	}
}

func TestIsPostgres(t *testing.T) {
	tests := []struct {
		dsn  string
		want bool
	}{
		{"postgres://user@localhost/riseroll", true},
		{"postgresql://user@localhost/riseroll", true},
		{"host=localhost dbname=riseroll", true},
		{"~/.config/riseroll/riseroll.db", false},
		{"/tmp/test.db", false},
	}
	for _, tt := range tests {
		if got := IsPostgres(tt.dsn); got != tt.want {
			t.Errorf("IsPostgres(%q) = %v, want %v", tt.dsn, got, tt.want)
		}
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory available")
	}

	got, err := ExpandPath("~/.config/riseroll/riseroll.db")
	if err != nil {
		t.Fatalf("ExpandPath failed: %v", err)
	}
	want := filepath.Join(home, ".config/riseroll/riseroll.db")
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}

	got, err = ExpandPath("/abs/path.db")
	if err != nil || got != "/abs/path.db" {
		t.Errorf("absolute paths should be unchanged, got %q (%v)", got, err)
	}
}
