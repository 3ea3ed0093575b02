package history

import (
	"context"
	"fmt"

	"github.com/julianstephens/riseroll/internal/cli"
	"github.com/julianstephens/riseroll/internal/constants"
)

type HistoryCmd struct {
	Limit int `short:"n" help:"Number of entries to show (0 for all retained)." default:"0"`
}

func (c *HistoryCmd) Run(ctx *cli.Context) error {
	entries, err := ctx.Store.ListHistory(context.Background(), c.Limit)
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}

	if len(entries) == 0 {
		fmt.Println("No picks yet.")
		return nil
	}

	for _, e := range entries {
		fmt.Printf("  %s %s  %s\n",
			e.Day, e.Timestamp.Local().Format(constants.TimeFormat), e.Activity)
	}
	return nil
}
