package activities

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/julianstephens/riseroll/internal/models"
	"github.com/julianstephens/riseroll/internal/storage/sqlite"
)

func setupTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	src := setupTestStore(t)
	for _, name := range []string{"Run", "Read", "Swim"} {
		if _, err := src.AddActivity(ctx, name); err != nil {
			t.Fatal(err)
		}
	}
	activities, err := src.ListActivities(ctx)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := Export(&buf, activities); err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if strings.Contains(buf.String(), activities[0].ID) {
		t.Error("export should not include internal IDs")
	}

	dst := setupTestStore(t)
	if _, err := dst.AddActivity(ctx, "read"); err != nil {
		t.Fatal(err)
	}

	added, skipped, err := Import(ctx, dst, &buf)
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if added != 2 || skipped != 1 {
		t.Errorf("expected 2 added and 1 skipped, got %d/%d", added, skipped)
	}

	got, _ := dst.ListActivities(ctx)
	names := models.ActivityNames(got)
	if len(names) != 3 {
		t.Errorf("expected 3 activities, got %v", names)
	}
}

func TestImportHandWrittenFile(t *testing.T) {
	store := setupTestStore(t)
	input := `activities:
  - name: Walk the dog
  - name: "   "
  - name: Stretch
`
	added, skipped, err := Import(context.Background(), store, strings.NewReader(input))
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if added != 2 || skipped != 1 {
		t.Errorf("expected 2 added and 1 skipped, got %d/%d", added, skipped)
	}
}

func TestImportEmptyAndInvalid(t *testing.T) {
	store := setupTestStore(t)

	added, _, err := Import(context.Background(), store, strings.NewReader(""))
	if err != nil || added != 0 {
		t.Errorf("empty input should import nothing, got %d (%v)", added, err)
	}

	if _, _, err := Import(context.Background(), store, strings.NewReader("activities: [unclosed")); err == nil {
		t.Error("expected parse error")
	}
}
