package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Veraticus/ledger/internal/cli"
)

func totalsCmd() *cobra.Command {
	var from, to, category string

	cmd := &cobra.Command{
		Use:   "totals",
		Short: "Sum income and expenditure over a date range",
		Long: `Sum the records of income categories and of expenditure categories
between --from and --to, inclusive. Amounts are summed with their stored sign.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			start, err := parseDateFlag(from)
			if err != nil {
				return err
			}
			end, err := parseDateFlag(to)
			if err != nil {
				return err
			}

			store, _, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer closeStorage(store)

			income, err := store.SumIncome(ctx, start, end)
			if err != nil {
				return err
			}
			expenditure, err := store.SumExpenditure(ctx, start, end)
			if err != nil {
				return err
			}

			var b strings.Builder
			fmt.Fprintf(&b, "Income:       %s\n", cli.FormatMoney(income))
			fmt.Fprintf(&b, "Expenditure:  %s\n", cli.FormatMoney(expenditure))
			fmt.Fprintf(&b, "Net:          %s", cli.FormatMoney(income.Add(expenditure)))

			if category != "" {
				id, err := resolveCategory(ctx, store, category)
				if err != nil {
					return err
				}
				sum, err := store.SumCategory(ctx, id, start, end)
				if err != nil {
					return err
				}
				fmt.Fprintf(&b, "\nCategory %s: %s", category, cli.FormatMoney(sum))
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.RenderBox(cli.LedgerIcon+" Totals", b.String()))
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "Earliest date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "Latest date (YYYY-MM-DD)")
	cmd.Flags().StringVarP(&category, "category", "c", "", "Also sum one category (name or id)")
	return cmd
}
