package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	rerrors "github.com/julianstephens/riseroll/internal/errors"
	"github.com/julianstephens/riseroll/internal/models"
	"github.com/julianstephens/riseroll/internal/storage"
)

var _ storage.Provider = (*Store)(nil)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	store := NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to initialize test store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestLoadUninitialized(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "missing.db"))
	err := store.Load()
	if !errors.Is(err, rerrors.ErrNotInitialized) {
		t.Fatalf("expected ErrNotInitialized, got %v", err)
	}
}

func TestLoadAfterInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	store := NewStore(path)
	if err := store.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	store.Close()

	reopened := NewStore(path)
	if err := reopened.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	defer reopened.Close()

	current, latest, err := reopened.SchemaStatus()
	if err != nil {
		t.Fatalf("SchemaStatus failed: %v", err)
	}
	if current != latest || current == 0 {
		t.Errorf("expected schema at latest version, got %d/%d", current, latest)
	}
}

func TestSettingInsertUpdateGet(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	if _, found, err := store.GetSetting(ctx, "rerollsLeft"); err != nil || found {
		t.Fatalf("expected missing setting, got found=%v err=%v", found, err)
	}

	if err := store.UpdateSetting(ctx, "rerollsLeft", "1"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound updating missing key, got %v", err)
	}

	if err := store.InsertSetting(ctx, "rerollsLeft", "2"); err != nil {
		t.Fatalf("InsertSetting failed: %v", err)
	}
	if err := store.InsertSetting(ctx, "rerollsLeft", "2"); err == nil {
		t.Error("expected duplicate insert to fail")
	}

	if err := store.UpdateSetting(ctx, "rerollsLeft", "1"); err != nil {
		t.Fatalf("UpdateSetting failed: %v", err)
	}

	setting, found, err := store.GetSetting(ctx, "rerollsLeft")
	if err != nil || !found {
		t.Fatalf("GetSetting failed: found=%v err=%v", found, err)
	}
	if setting.Value != "1" {
		t.Errorf("expected value 1, got %q", setting.Value)
	}
	if setting.UpdatedAt.IsZero() {
		t.Error("expected updated_at to be set")
	}
}

func TestUpsertSettings(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	if err := store.InsertSetting(ctx, "isLockedIn", "true"); err != nil {
		t.Fatalf("InsertSetting failed: %v", err)
	}

	err := store.UpsertSettings(ctx, []models.Setting{
		{Key: "selectedActivity", Value: "Run"},
		{Key: "isLockedIn", Value: "false"},
	})
	if err != nil {
		t.Fatalf("UpsertSettings failed: %v", err)
	}
	// Upserting again must not create duplicate keys.
	if err := store.UpsertSettings(ctx, []models.Setting{{Key: "selectedActivity", Value: "Read"}}); err != nil {
		t.Fatalf("second UpsertSettings failed: %v", err)
	}

	all, err := store.GetAllSettings(ctx)
	if err != nil {
		t.Fatalf("GetAllSettings failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 settings, got %d: %+v", len(all), all)
	}
	values := map[string]string{}
	for _, s := range all {
		values[s.Key] = s.Value
	}
	if values["selectedActivity"] != "Read" || values["isLockedIn"] != "false" {
		t.Errorf("unexpected values: %v", values)
	}
}

func TestActivityCRUD(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	run, err := store.AddActivity(ctx, "  Run  ")
	if err != nil {
		t.Fatalf("AddActivity failed: %v", err)
	}
	if run.Name != "Run" {
		t.Errorf("expected trimmed name, got %q", run.Name)
	}
	if run.ID == "" {
		t.Error("expected generated ID")
	}

	if _, err := store.AddActivity(ctx, "run"); !errors.Is(err, storage.ErrDuplicateActivity) {
		t.Errorf("expected case-insensitive duplicate error, got %v", err)
	}
	if _, err := store.AddActivity(ctx, "   "); !errors.Is(err, storage.ErrEmptyName) {
		t.Errorf("expected ErrEmptyName, got %v", err)
	}

	read, err := store.AddActivity(ctx, "Read")
	if err != nil {
		t.Fatalf("AddActivity failed: %v", err)
	}

	got, err := store.GetActivity(ctx, read.ID)
	if err != nil {
		t.Fatalf("GetActivity failed: %v", err)
	}
	if got.Name != "Read" {
		t.Errorf("expected Read, got %q", got.Name)
	}

	if _, err := store.RenameActivity(ctx, read.ID, "RUN"); !errors.Is(err, storage.ErrDuplicateActivity) {
		t.Errorf("expected duplicate error on rename, got %v", err)
	}
	renamed, err := store.RenameActivity(ctx, read.ID, "Read a book")
	if err != nil {
		t.Fatalf("RenameActivity failed: %v", err)
	}
	if renamed.Name != "Read a book" {
		t.Errorf("unexpected renamed activity: %+v", renamed)
	}
	// Renaming to a different casing of itself is allowed.
	if _, err := store.RenameActivity(ctx, read.ID, "read a book"); err != nil {
		t.Errorf("self-rename should be allowed: %v", err)
	}

	list, err := store.ListActivities(ctx)
	if err != nil {
		t.Fatalf("ListActivities failed: %v", err)
	}
	if len(list) != 2 || list[0].ID != run.ID || list[1].ID != read.ID {
		t.Errorf("expected activities in creation order, got %+v", list)
	}

	if _, err := store.GetActivity(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestActivitySoftDeleteAndUndo(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	run, _ := store.AddActivity(ctx, "Run")
	read, _ := store.AddActivity(ctx, "Read")

	if _, err := store.UndoDeleteActivity(ctx); !errors.Is(err, storage.ErrNothingToRestore) {
		t.Fatalf("expected ErrNothingToRestore, got %v", err)
	}

	deleted, err := store.DeleteActivity(ctx, run.ID)
	if err != nil {
		t.Fatalf("DeleteActivity failed: %v", err)
	}
	if deleted.DeletedAt == nil {
		t.Error("expected DeletedAt to be set")
	}
	time.Sleep(2 * time.Millisecond)
	if _, err := store.DeleteActivity(ctx, read.ID); err != nil {
		t.Fatalf("DeleteActivity failed: %v", err)
	}

	list, _ := store.ListActivities(ctx)
	if len(list) != 0 {
		t.Errorf("deleted activities should not be listed: %+v", list)
	}
	trash, _ := store.ListDeletedActivities(ctx)
	if len(trash) != 2 || trash[0].ID != read.ID {
		t.Errorf("expected most recently deleted first, got %+v", trash)
	}

	if _, err := store.DeleteActivity(ctx, run.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("deleting twice should report ErrNotFound, got %v", err)
	}

	restored, err := store.UndoDeleteActivity(ctx)
	if err != nil {
		t.Fatalf("UndoDeleteActivity failed: %v", err)
	}
	if restored.ID != read.ID || restored.DeletedAt != nil {
		t.Errorf("expected Read to be restored, got %+v", restored)
	}

	// A deleted name can be reused; restoring the old one then conflicts.
	if _, err := store.AddActivity(ctx, "run"); err != nil {
		t.Fatalf("re-adding a deleted name should succeed: %v", err)
	}
	if _, err := store.RestoreActivity(ctx, run.ID); !errors.Is(err, storage.ErrDuplicateActivity) {
		t.Errorf("expected duplicate error restoring shadowed name, got %v", err)
	}
}

func TestHistoryRetention(t *testing.T) {
	store := setupTestStore(t)
	store.SetHistoryLimit(3)
	ctx := context.Background()

	base := time.Date(2025, 3, 10, 9, 0, 0, 0, time.Local)
	names := []string{"Run", "Read", "Swim", "Cook", "Walk"}
	for i, name := range names {
		if err := store.AppendHistory(ctx, name, base.Add(time.Duration(i)*time.Hour)); err != nil {
			t.Fatalf("AppendHistory failed: %v", err)
		}
	}

	entries, err := store.ListHistory(ctx, 0)
	if err != nil {
		t.Fatalf("ListHistory failed: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 retained entries, got %d", len(entries))
	}
	want := []string{"Walk", "Cook", "Swim"}
	for i, e := range entries {
		if e.Activity != want[i] {
			t.Errorf("entry %d: expected %s, got %s", i, want[i], e.Activity)
		}
		if e.Day != "2025-03-10" {
			t.Errorf("entry %d: expected day 2025-03-10, got %s", i, e.Day)
		}
	}

	limited, err := store.ListHistory(ctx, 1)
	if err != nil || len(limited) != 1 || limited[0].Activity != "Walk" {
		t.Errorf("expected newest entry only, got %+v (%v)", limited, err)
	}
}

func TestHistoryDayUsesTimestampLocation(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	// 23:30 UTC is already the next day at UTC+14.
	at := time.Date(2025, 3, 10, 23, 30, 0, 0, time.UTC).In(time.FixedZone("LINT", 14*60*60))
	if err := store.AppendHistory(ctx, "Run", at); err != nil {
		t.Fatalf("AppendHistory failed: %v", err)
	}

	entries, err := store.ListHistory(ctx, 0)
	if err != nil {
		t.Fatalf("ListHistory failed: %v", err)
	}
	if len(entries) != 1 || entries[0].Day != "2025-03-11" {
		t.Errorf("expected day 2025-03-11, got %+v", entries)
	}
}
