package main

import (
	"fmt"
	"math/rand/v2"

	"github.com/spf13/cobra"

	"github.com/Veraticus/ledger/internal/cli"
	"github.com/Veraticus/ledger/internal/storage"
)

func seedCmd() *cobra.Command {
	var (
		records int
		rounds  int
		seed    uint64
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Fill the ledger with sample data",
		Long: `Add sample categories, random records over the last 100 days and a few
repeated investment lots. Useful for trying out browse and summary.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, _, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer closeStorage(store)

			opts := storage.SeedOptions{
				Rand:      rand.New(rand.NewPCG(seed, seed)),
				Records:   records,
				LotRounds: rounds,
			}
			bar := newProgressBar(cmd.ErrOrStderr(), storage.SeedTotal(opts), "Seeding ledger...")
			opts.Progress = advance(bar)

			result, err := store.SeedDummyData(ctx, opts)
			if err != nil {
				return fmt.Errorf("failed to seed ledger: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf(
				"Seeded %d categories, %d records and %d investments",
				result.Categories, result.Records, result.Investments)))
			return nil
		},
	}

	cmd.Flags().IntVar(&records, "records", 80, "Number of records to generate")
	cmd.Flags().IntVar(&rounds, "lot-rounds", 10, "Times to repeat the sample investment lots")
	cmd.Flags().Uint64Var(&seed, "seed", 1, "Random seed")
	return cmd
}
