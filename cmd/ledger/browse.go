package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/ledger/internal/tui"
)

func browseCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "browse [records|investments]",
		Short:     "Page through the ledger interactively",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"records", "investments"},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			start := tui.ViewRecords
			if len(args) == 1 && args[0] == "investments" {
				start = tui.ViewInvestments
			}

			store, settings, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer closeStorage(store)

			if err := tui.Run(ctx, store, settings.PageSize, start); err != nil {
				return fmt.Errorf("failed to browse ledger: %w", err)
			}
			return nil
		},
	}
}
