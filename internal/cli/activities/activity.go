package activities

import (
	"context"
	"errors"
	"fmt"

	"github.com/julianstephens/riseroll/internal/cli"
	"github.com/julianstephens/riseroll/internal/storage"
)

type ActivityAddCmd struct {
	Names []string `arg:"" help:"Activity names to add."`
}

func (c *ActivityAddCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	for _, name := range c.Names {
		a, err := ctx.Store.AddActivity(bg, name)
		if err != nil {
			return fmt.Errorf("failed to add %q: %w", name, err)
		}
		fmt.Printf("Added activity: %s\n", a.Name)
	}
	return nil
}

type ActivityListCmd struct {
	Deleted bool `help:"List deleted activities instead."`
	IDs     bool `help:"Show activity IDs." name:"ids"`
}

func (c *ActivityListCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	list := ctx.Store.ListActivities
	if c.Deleted {
		list = ctx.Store.ListDeletedActivities
	}
	activities, err := list(bg)
	if err != nil {
		return fmt.Errorf("failed to list activities: %w", err)
	}

	if len(activities) == 0 {
		if c.Deleted {
			fmt.Println("No deleted activities.")
		} else {
			fmt.Println("No activities yet. Add one with 'riseroll activity add <name>'.")
		}
		return nil
	}

	for _, a := range activities {
		if c.IDs {
			fmt.Printf("  %s  %s\n", a.ID, a.Name)
		} else {
			fmt.Printf("  %s\n", a.Name)
		}
	}
	return nil
}

type ActivityEditCmd struct {
	Activity string `arg:"" help:"Activity name or ID."`
	Name     string `arg:"" help:"New name."`
}

func (c *ActivityEditCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	a, err := ctx.FindActivity(bg, c.Activity)
	if err != nil {
		return err
	}
	renamed, err := ctx.Store.RenameActivity(bg, a.ID, c.Name)
	if err != nil {
		return fmt.Errorf("failed to rename activity: %w", err)
	}
	fmt.Printf("Renamed %s to %s\n", a.Name, renamed.Name)
	return nil
}

type ActivityDeleteCmd struct {
	Activity string `arg:"" help:"Activity name or ID."`
}

func (c *ActivityDeleteCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	a, err := ctx.FindActivity(bg, c.Activity)
	if err != nil {
		return err
	}
	if _, err := ctx.Store.DeleteActivity(bg, a.ID); err != nil {
		return fmt.Errorf("failed to delete activity: %w", err)
	}
	fmt.Printf("Deleted activity: %s (undo with 'riseroll activity undo')\n", a.Name)
	return nil
}

type ActivityUndoCmd struct{}

func (c *ActivityUndoCmd) Run(ctx *cli.Context) error {
	a, err := ctx.Store.UndoDeleteActivity(context.Background())
	if errors.Is(err, storage.ErrNothingToRestore) {
		fmt.Println("Nothing to undo.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to restore activity: %w", err)
	}
	fmt.Printf("Restored activity: %s\n", a.Name)
	return nil
}

type ActivityRestoreCmd struct {
	ID string `arg:"" help:"ID of the deleted activity (see 'activity list --deleted --ids')."`
}

func (c *ActivityRestoreCmd) Run(ctx *cli.Context) error {
	a, err := ctx.Store.RestoreActivity(context.Background(), c.ID)
	if err != nil {
		return fmt.Errorf("failed to restore activity: %w", err)
	}
	fmt.Printf("Restored activity: %s\n", a.Name)
	return nil
}
