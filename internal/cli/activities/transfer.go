package activities

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/julianstephens/riseroll/internal/cli"
	"github.com/julianstephens/riseroll/internal/models"
	"github.com/julianstephens/riseroll/internal/storage"
)

// activityFile is the YAML layout used by import and export.
type activityFile struct {
	Activities []models.Activity `yaml:"activities"`
}

type ActivityExportCmd struct {
	Output string `short:"o" help:"Write to this file instead of stdout."`
}

func (c *ActivityExportCmd) Run(ctx *cli.Context) error {
	activities, err := ctx.Store.ListActivities(context.Background())
	if err != nil {
		return fmt.Errorf("failed to list activities: %w", err)
	}

	var w io.Writer = os.Stdout
	if c.Output != "" {
		f, err := os.Create(c.Output)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", c.Output, err)
		}
		defer f.Close()
		w = f
	}

	if err := Export(w, activities); err != nil {
		return err
	}
	if c.Output != "" {
		fmt.Printf("Exported %d activities to %s\n", len(activities), c.Output)
	}
	return nil
}

// Export writes activities as YAML.
func Export(w io.Writer, activities []models.Activity) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(activityFile{Activities: activities}); err != nil {
		return fmt.Errorf("failed to encode activities: %w", err)
	}
	return enc.Close()
}

type ActivityImportCmd struct {
	File string `arg:"" type:"existingfile" help:"YAML file produced by 'activity export'."`
}

func (c *ActivityImportCmd) Run(ctx *cli.Context) error {
	f, err := os.Open(c.File)
	if err != nil {
		return err
	}
	defer f.Close()

	added, skipped, err := Import(context.Background(), ctx.Store, f)
	if err != nil {
		return err
	}
	fmt.Printf("Imported %d activities (%d already present)\n", added, skipped)
	return nil
}

type adder interface {
	AddActivity(ctx context.Context, name string) (models.Activity, error)
}

// Import adds every activity in r. Names that already exist are skipped.
func Import(ctx context.Context, store adder, r io.Reader) (added, skipped int, err error) {
	var file activityFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return 0, 0, fmt.Errorf("failed to parse activity file: %w", err)
	}

	for _, a := range file.Activities {
		_, err := store.AddActivity(ctx, a.Name)
		switch {
		case err == nil:
			added++
		case errors.Is(err, storage.ErrDuplicateActivity), errors.Is(err, storage.ErrEmptyName):
			skipped++
		default:
			return added, skipped, fmt.Errorf("failed to import %q: %w", a.Name, err)
		}
	}
	return added, skipped, nil
}
