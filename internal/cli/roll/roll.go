package roll

import (
	"context"
	"errors"
	"fmt"

	"github.com/julianstephens/riseroll/internal/cli"
)

var errNoActivities = errors.New("no activities to pick from. Add one with 'riseroll activity add <name>'")

type StatusCmd struct{}

func (c *StatusCmd) Run(ctx *cli.Context) error {
	r, err := ctx.Roller(context.Background())
	if err != nil {
		return err
	}
	fmt.Println(cli.FormatState(r.State(), r.MaxRerolls(), r.Countdown()))
	return nil
}

type PickCmd struct{}

func (c *PickCmd) Run(ctx *cli.Context) error {
	r, err := ctx.Roller(context.Background())
	if err != nil {
		return err
	}

	out, err := r.Pick(context.Background())
	if err != nil {
		return err
	}
	if !out.OK {
		return errNoActivities
	}

	if out.Picked {
		fmt.Printf("🎲 Today's activity: %s\n", out.Activity)
	} else {
		fmt.Printf("Already picked today: %s\n", out.Activity)
		fmt.Println(r.Countdown())
	}
	return nil
}

type RerollCmd struct{}

func (c *RerollCmd) Run(ctx *cli.Context) error {
	r, err := ctx.Roller(context.Background())
	if err != nil {
		return err
	}

	out, err := r.Reroll(context.Background())
	if err != nil {
		return err
	}
	if !out.OK {
		s := r.State()
		return rerollRefusal(s.HasSelection(), s.IsLockedIn, s.RerollsLeft)
	}

	fmt.Printf("🎲 Rerolled: %s (%d rerolls left)\n", out.Activity, r.State().RerollsLeft)
	return nil
}

func rerollRefusal(picked, locked bool, left int) error {
	switch {
	case !picked:
		return errors.New("nothing to reroll yet. Run 'riseroll pick' first")
	case locked:
		return errors.New("today's activity is locked in")
	case left <= 0:
		return errors.New("no rerolls left today")
	default:
		return errNoActivities
	}
}

type LockCmd struct{}

func (c *LockCmd) Run(ctx *cli.Context) error {
	r, err := ctx.Roller(context.Background())
	if err != nil {
		return err
	}

	out := r.LockIn()
	if !out.OK {
		s := r.State()
		switch {
		case !s.HasSelection():
			return errors.New("nothing to lock in yet. Run 'riseroll pick' first")
		case s.IsLockedIn:
			return errors.New("already locked in")
		default:
			return errors.New("cannot lock in without a reroll left")
		}
	}

	fmt.Printf("🔒 Locked in: %s\n", out.Activity)
	return nil
}

type ResetCmd struct{}

func (c *ResetCmd) Run(ctx *cli.Context) error {
	r, err := ctx.Roller(context.Background())
	if err != nil {
		return err
	}

	if out := r.Reset(); !out.Changed {
		fmt.Println("Nothing to reset.")
		return nil
	}
	fmt.Println("✓ Selection reset. You can pick again.")
	return nil
}
