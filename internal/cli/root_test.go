package cli

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/riseroll/internal/config"
	"github.com/julianstephens/riseroll/internal/models"
	"github.com/julianstephens/riseroll/internal/storage"
	"github.com/julianstephens/riseroll/internal/storage/sqlite"
)

func setupTestContext(t *testing.T) *Context {
	t.Helper()
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}
	ctx := &Context{Store: store, Config: config.Default()}
	t.Cleanup(func() {
		if err := ctx.Close(); err != nil {
			t.Errorf("close failed: %v", err)
		}
	})
	return ctx
}

func TestFindActivity(t *testing.T) {
	ctx := setupTestContext(t)
	bg := context.Background()
	added, err := ctx.Store.AddActivity(bg, "Morning Run")
	if err != nil {
		t.Fatal(err)
	}

	for _, ref := range []string{added.ID, "morning run", "  MORNING RUN "} {
		got, err := ctx.FindActivity(bg, ref)
		if err != nil {
			t.Errorf("FindActivity(%q) failed: %v", ref, err)
			continue
		}
		if got.ID != added.ID {
			t.Errorf("FindActivity(%q) = %s, want %s", ref, got.ID, added.ID)
		}
	}

	if _, err := ctx.FindActivity(bg, "swim"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRollerPickPersists(t *testing.T) {
	ctx := setupTestContext(t)
	bg := context.Background()
	if _, err := ctx.Store.AddActivity(bg, "Run"); err != nil {
		t.Fatal(err)
	}

	r, err := ctx.Roller(bg)
	if err != nil {
		t.Fatalf("Roller failed: %v", err)
	}
	again, err := ctx.Roller(bg)
	if err != nil || again != r {
		t.Fatalf("Roller should be reused, got %p/%p (%v)", again, r, err)
	}

	out, err := r.Pick(bg)
	if err != nil || !out.OK || out.Activity != "Run" {
		t.Fatalf("unexpected pick outcome %+v (%v)", out, err)
	}

	flushCtx, cancel := context.WithTimeout(bg, 5*time.Second)
	defer cancel()
	if err := r.Flush(flushCtx); err != nil {
		t.Fatal(err)
	}

	history, err := ctx.Store.ListHistory(bg, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 1 || history[0].Activity != "Run" {
		t.Errorf("unexpected history %+v", history)
	}
}

func TestFormatState(t *testing.T) {
	empty := FormatState(models.DefaultSelectionState(2), 2, "Ready to roll!")
	if !strings.Contains(empty, "No activity picked yet") {
		t.Errorf("unexpected output: %q", empty)
	}

	now := time.Now()
	locked := FormatState(models.SelectionState{
		SelectedActivity: "Run",
		RerollsLeft:      1,
		LastRollDate:     &now,
		IsLockedIn:       true,
	}, 2, "Resets in 3h 10m")
	for _, want := range []string{"Today: Run", "1/2", "locked in", "Resets in"} {
		if !strings.Contains(locked, want) {
			t.Errorf("output %q missing %q", locked, want)
		}
	}
}
