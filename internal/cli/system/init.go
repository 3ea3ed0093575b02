package system

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/julianstephens/riseroll/internal/cli"
	"github.com/julianstephens/riseroll/internal/config"
	"github.com/julianstephens/riseroll/internal/constants"
	"github.com/julianstephens/riseroll/internal/models"
	"github.com/julianstephens/riseroll/internal/storage"
	"github.com/julianstephens/riseroll/internal/storage/postgres"
	"github.com/julianstephens/riseroll/internal/storage/sqlite"
)

type InitCmd struct {
	Force  bool   `help:"Delete an existing SQLite database before initializing."`
	Source string `help:"Database path or connection string to copy activities, history and selection state from."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	if c.Force && ctx.IsSQLite() {
		if err := c.removeExisting(ctx); err != nil {
			return err
		}
	}

	if err := ctx.Store.Init(); err != nil {
		return err
	}
	fmt.Printf("Initialized %s storage at: %s\n", constants.AppName, ctx.Store.GetConfigPath())

	if c.Source != "" {
		fmt.Printf("Copying data from: %s\n", c.Source)
		if err := c.copyFrom(ctx, c.Source); err != nil {
			return fmt.Errorf("copy failed: %w", err)
		}
		fmt.Println("Copy completed successfully!")
	}
	return nil
}

func (c *InitCmd) removeExisting(ctx *cli.Context) error {
	dbPath := ctx.Store.GetConfigPath()
	if c.Source != "" {
		absDB, err := filepath.Abs(dbPath)
		if err == nil {
			dbPath = absDB
		}
		if absSource, err := filepath.Abs(c.Source); err == nil && absSource == dbPath {
			return fmt.Errorf("cannot use --force when source and destination are the same: %s", dbPath)
		}
	}

	if _, err := os.Stat(dbPath); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to access existing database: %w", err)
	}
	if err := ctx.Store.Close(); err != nil {
		return fmt.Errorf("failed to close existing database: %w", err)
	}
	if err := os.Remove(dbPath); err != nil {
		return fmt.Errorf("failed to delete existing database: %w", err)
	}
	fmt.Printf("Deleted existing database at: %s\n", dbPath)
	return nil
}

func openSource(source string) (storage.Provider, error) {
	if !config.IsPostgres(source) {
		return sqlite.NewStore(source), nil
	}
	if valid, err := postgres.ValidateConnString(source); !valid {
		if errors.Is(err, postgres.ErrEmbeddedCredentials) {
			return nil, fmt.Errorf("PostgreSQL source connection string contains embedded credentials. Use environment variables or .pgpass instead")
		}
		return nil, err
	}
	return postgres.New(source), nil
}

func (c *InitCmd) copyFrom(ctx *cli.Context, source string) error {
	src, err := openSource(source)
	if err != nil {
		return err
	}
	if err := src.Load(); err != nil {
		return fmt.Errorf("failed to load source database: %w", err)
	}
	defer src.Close()

	bg := context.Background()
	dst := ctx.Store

	fmt.Println("  Copying activities...")
	activities, err := src.ListActivities(bg)
	if err != nil {
		return fmt.Errorf("failed to read activities from source: %w", err)
	}
	copied := 0
	for _, a := range activities {
		if _, err := dst.AddActivity(bg, a.Name); err != nil {
			if errors.Is(err, storage.ErrDuplicateActivity) {
				continue
			}
			return fmt.Errorf("failed to add activity %q: %w", a.Name, err)
		}
		copied++
	}
	fmt.Printf("    Copied %d activities\n", copied)

	fmt.Println("  Copying history...")
	entries, err := src.ListHistory(bg, 0)
	if err != nil {
		return fmt.Errorf("failed to read history from source: %w", err)
	}
	// Oldest first so pruning keeps the newest entries.
	for i := len(entries) - 1; i >= 0; i-- {
		if err := dst.AppendHistory(bg, entries[i].Activity, entries[i].Timestamp.Local()); err != nil {
			return fmt.Errorf("failed to append history: %w", err)
		}
	}
	fmt.Printf("    Copied %d history entries\n", len(entries))

	fmt.Println("  Copying selection state...")
	settings, err := src.GetAllSettings(bg)
	if err != nil {
		return fmt.Errorf("failed to read settings from source: %w", err)
	}
	var selection []models.Setting
	for _, s := range settings {
		for _, key := range constants.SelectionKeys {
			if s.Key == key {
				selection = append(selection, s)
			}
		}
	}
	if err := dst.UpsertSettings(bg, selection); err != nil {
		return fmt.Errorf("failed to save selection state: %w", err)
	}
	return nil
}
