package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/julianstephens/riseroll/internal/backup"
	"github.com/julianstephens/riseroll/internal/config"
	"github.com/julianstephens/riseroll/internal/instance"
	"github.com/julianstephens/riseroll/internal/logger"
	"github.com/julianstephens/riseroll/internal/models"
	"github.com/julianstephens/riseroll/internal/persist"
	"github.com/julianstephens/riseroll/internal/roller"
	"github.com/julianstephens/riseroll/internal/selection"
	"github.com/julianstephens/riseroll/internal/storage"
)

type Context struct {
	Store  storage.Provider
	Config config.Config

	roller *roller.Roller
	lock   *instance.Lock
}

// IsSQLite reports whether the store is a local database file.
func (c *Context) IsSQLite() bool {
	return !config.IsPostgres(c.Store.GetConfigPath())
}

// Roller returns the selection coordinator, loading the persisted state on
// first use. For a local database it also takes the single-writer lock.
func (c *Context) Roller(ctx context.Context) (*roller.Roller, error) {
	if c.roller != nil {
		return c.roller, nil
	}

	if c.IsSQLite() {
		lock, err := instance.Acquire(filepath.Dir(c.Store.GetConfigPath()))
		if err != nil {
			return nil, err
		}
		c.lock = lock
	}

	c.Store.SetHistoryLimit(c.Config.HistoryLimit)
	machine := selection.New(c.Config.MaxRerolls)
	adapter := persist.New(c.Store, c.Config.MaxRerolls)
	c.roller = roller.New(machine, adapter, c.Store, c.Store)
	c.roller.Load(ctx)
	return c.roller, nil
}

// Close flushes pending writes and releases the store.
func (c *Context) Close() error {
	var errs []error
	if c.roller != nil {
		timeout := c.Config.FlushTimeout
		if timeout <= 0 {
			timeout = 5 * time.Second
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := c.roller.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to flush pending writes: %w", err))
		}
		c.roller = nil
	}
	if err := c.lock.Release(); err != nil {
		errs = append(errs, fmt.Errorf("failed to release lock: %w", err))
	}
	c.lock = nil
	if err := c.Store.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// PerformAutomaticBackup creates a backup of a local database. Failures are
// logged only.
func (c *Context) PerformAutomaticBackup() {
	if !c.IsSQLite() {
		return
	}
	mgr := backup.NewManager(c.Store.GetConfigPath())
	if _, err := mgr.Create(); err != nil {
		logger.Warn("Automatic backup failed", "error", err)
	}
}

// FindActivity resolves ref to a live activity by ID or case-insensitive name.
func (c *Context) FindActivity(ctx context.Context, ref string) (models.Activity, error) {
	activities, err := c.Store.ListActivities(ctx)
	if err != nil {
		return models.Activity{}, err
	}
	key := storage.NameKey(ref)
	for _, a := range activities {
		if a.ID == ref || storage.NameKey(a.Name) == key {
			return a, nil
		}
	}
	return models.Activity{}, fmt.Errorf("activity %q: %w", ref, storage.ErrNotFound)
}

// FormatState renders the selection state for terminal output.
func FormatState(s models.SelectionState, maxRerolls int, countdown string) string {
	if !s.HasSelection() {
		return fmt.Sprintf("No activity picked yet.\n%s", countdown)
	}
	lock := "not locked in"
	if s.IsLockedIn {
		lock = "locked in"
	}
	return fmt.Sprintf("Today: %s\nRerolls left: %d/%d (%s)\n%s",
		s.SelectedActivity, s.RerollsLeft, maxRerolls, lock, countdown)
}
