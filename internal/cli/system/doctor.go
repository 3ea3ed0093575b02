package system

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/julianstephens/riseroll/internal/backup"
	"github.com/julianstephens/riseroll/internal/cli"
	"github.com/julianstephens/riseroll/internal/constants"
	"github.com/julianstephens/riseroll/internal/instance"
	"github.com/julianstephens/riseroll/internal/models"
	"github.com/julianstephens/riseroll/internal/persist"
	"github.com/julianstephens/riseroll/internal/storage"
)

type DoctorCmd struct{}

type check struct {
	name string
	// needsDB checks are skipped when the database cannot be reached.
	needsDB bool
	// warnOnly checks never fail the run.
	warnOnly bool
	run      func(ctx *cli.Context) error
}

func doctorChecks() []check {
	return []check{
		{name: "Schema version", needsDB: true, run: checkSchemaVersion},
		{name: "Selection state", needsDB: true, run: checkSelectionState},
		{name: "Activities", needsDB: true, run: checkActivities},
		{name: "Clock/timezone", run: func(*cli.Context) error { return checkClockTimezone(time.Now()) }},
		{name: "Single instance", run: checkInstance},
		{name: "Backups present", warnOnly: true, run: checkBackupsPresent},
	}
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	fmt.Println("Running diagnostics...")
	fmt.Println()

	hasError := false
	dbReachable := true

	if err := checkDBReachable(ctx); err != nil {
		fmt.Printf("❌ Database reachable: FAIL\n")
		fmt.Printf("   Error: %v\n", err)
		hasError = true
		dbReachable = false
	} else {
		fmt.Printf("✓ Database reachable: OK\n")
	}

	for _, c := range doctorChecks() {
		if c.needsDB && !dbReachable {
			fmt.Printf("⊘ %s: SKIPPED (database not reachable)\n", c.name)
			continue
		}
		err := c.run(ctx)
		switch {
		case err == nil:
			fmt.Printf("✓ %s: OK\n", c.name)
		case c.warnOnly:
			fmt.Printf("⚠ %s: WARNING\n", c.name)
			fmt.Printf("   %v\n", err)
		default:
			fmt.Printf("❌ %s: FAIL\n", c.name)
			fmt.Printf("   Error: %v\n", err)
			hasError = true
		}
	}

	fmt.Println()
	if hasError {
		fmt.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}

	fmt.Println("All diagnostics passed!")
	return nil
}

func checkDBReachable(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}

	if s, ok := ctx.Store.(interface{ GetDB() *sql.DB }); ok {
		db := s.GetDB()
		if db == nil {
			return fmt.Errorf("database connection is nil")
		}
		var result int
		if err := db.QueryRow("SELECT 1").Scan(&result); err != nil {
			return fmt.Errorf("failed to query database: %w", err)
		}
	}
	return nil
}

func checkSchemaVersion(ctx *cli.Context) error {
	m, ok := ctx.Store.(storage.Migrator)
	if !ok {
		return nil
	}
	current, latest, err := m.SchemaStatus()
	if err != nil {
		return err
	}
	if current > latest {
		return fmt.Errorf("database schema version (%d) is newer than supported version (%d)", current, latest)
	}
	if current < latest {
		return fmt.Errorf("migrations incomplete: current version %d, latest version %d (run 'riseroll migrate')", current, latest)
	}
	return nil
}

func checkSelectionState(ctx *cli.Context) error {
	settings, err := ctx.Store.GetAllSettings(context.Background())
	if err != nil {
		return fmt.Errorf("failed to read settings: %w", err)
	}
	return validateSelectionSettings(settings, ctx.Config.MaxRerolls)
}

// validateSelectionSettings reports the first stored selection value that
// Load would have to discard or repair.
func validateSelectionSettings(settings []models.Setting, maxRerolls int) error {
	raw := make(map[string]string, len(constants.SelectionKeys))
	for _, s := range settings {
		raw[s.Key] = s.Value
	}

	if v := raw[constants.SettingRerollsLeft]; v != "" {
		if _, err := strconv.Atoi(v); err != nil {
			return fmt.Errorf("%s is not an integer: %q", constants.SettingRerollsLeft, v)
		}
	}
	if v := raw[constants.SettingLastRollDate]; v != "" {
		if _, err := storage.ParseTimestamp(v); err != nil {
			return fmt.Errorf("%s: %w", constants.SettingLastRollDate, err)
		}
	}
	if v := raw[constants.SettingIsLockedIn]; v != "" {
		if _, err := strconv.ParseBool(v); err != nil {
			return fmt.Errorf("%s is not a boolean: %q", constants.SettingIsLockedIn, v)
		}
	}

	state := persist.Decode(raw, maxRerolls)
	if _, changed := persist.Reconcile(state, maxRerolls); changed {
		return fmt.Errorf("stored selection is inconsistent (selected=%q rerolls=%d locked=%t); it will be repaired on next start",
			state.SelectedActivity, state.RerollsLeft, state.IsLockedIn)
	}
	return nil
}

func checkActivities(ctx *cli.Context) error {
	activities, err := ctx.Store.ListActivities(context.Background())
	if err != nil {
		return fmt.Errorf("failed to list activities: %w", err)
	}
	seen := make(map[string]string, len(activities))
	for _, a := range activities {
		key := storage.NameKey(a.Name)
		if other, ok := seen[key]; ok {
			return fmt.Errorf("duplicate live activity name %q (ids %s, %s)", a.Name, other, a.ID)
		}
		seen[key] = a.ID
	}
	return nil
}

func checkClockTimezone(now time.Time) error {
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}
	if zone, _ := now.Zone(); zone == "" {
		return fmt.Errorf("local timezone has no name")
	}
	return nil
}

func checkInstance(ctx *cli.Context) error {
	if !ctx.IsSQLite() {
		return nil
	}
	owner, alive, err := instance.Inspect(filepath.Dir(ctx.Store.GetConfigPath()))
	if err != nil {
		return err
	}
	if alive && owner != nil && owner.PID != os.Getpid() {
		return fmt.Errorf("%w (pid %d, %s)", instance.ErrAlreadyRunning, owner.PID, owner.Executable)
	}
	return nil
}

func checkBackupsPresent(ctx *cli.Context) error {
	if !ctx.IsSQLite() {
		return nil
	}
	mgr := backup.NewManager(ctx.Store.GetConfigPath())
	backups, err := mgr.List()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if len(backups) == 0 {
		return fmt.Errorf("no backups found - consider creating one with 'riseroll backup create'")
	}
	return nil
}
