package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/ledger/internal/cli"
	"github.com/Veraticus/ledger/internal/model"
	"github.com/Veraticus/ledger/internal/quote"
	"github.com/Veraticus/ledger/internal/service"
)

func investmentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "investments",
		Aliases: []string{"investment", "inv"},
		Short:   "Manage investment lots and view positions",
	}

	cmd.AddCommand(listInvestmentsCmd())
	cmd.AddCommand(addInvestmentCmd())
	cmd.AddCommand(filterInvestmentsCmd())
	cmd.AddCommand(updateInvestmentCmd())
	cmd.AddCommand(deleteInvestmentCmd())
	cmd.AddCommand(summaryCmd())

	return cmd
}

func listInvestmentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List one page of investment lots, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			page, err := pageIndex(cmd)
			if err != nil {
				return err
			}

			store, settings, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer closeStorage(store)

			pages, err := store.CountInvestmentPages(ctx, settings.PageSize)
			if err != nil {
				return err
			}
			lots, err := store.ListInvestmentsPage(ctx, page, settings.PageSize)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(lots) == 0 {
				fmt.Fprintln(out, cli.InfoStyle.Render("No investments on this page."))
				return nil
			}
			if err := cli.WriteInvestments(out, lots); err != nil {
				return err
			}
			fmt.Fprintln(out, cli.SubtleStyle.Render(fmt.Sprintf("Page %d of %d", page+1, pages)))
			return nil
		},
	}

	cmd.Flags().Int("page", 1, "Page number, starting at 1")
	return cmd
}

func addInvestmentCmd() *cobra.Command {
	var date, code, quantity, price string

	cmd := &cobra.Command{
		Use:     "add",
		Short:   "Record a trade lot",
		Long:    `Record a buy (positive quantity) or sell (negative quantity) of a ticker.`,
		Example: `  ledger investments add --code IVV --qty 10 --price 600`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			day, err := parseDateFlag(date)
			if err != nil {
				return err
			}
			if day.IsZero() {
				day = model.DateOf(time.Now())
			}
			qty, err := parseDecimal("qty", quantity)
			if err != nil {
				return err
			}
			unitPrice, err := parseDecimal("price", price)
			if err != nil {
				return err
			}

			store, _, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer closeStorage(store)

			lot, err := store.AddInvestment(ctx, day, code, qty, unitPrice)
			if err != nil {
				return fmt.Errorf("failed to add investment: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Added %s lot %d (cost %s)",
				lot.Code, lot.ID, lot.Cost().StringFixed(2))))
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Trade date as YYYY-MM-DD (default: today)")
	cmd.Flags().StringVar(&code, "code", "", "Ticker code")
	cmd.Flags().StringVarP(&quantity, "qty", "q", "", "Quantity")
	cmd.Flags().StringVarP(&price, "price", "p", "", "Unit price")
	_ = cmd.MarkFlagRequired("code")
	_ = cmd.MarkFlagRequired("qty")
	_ = cmd.MarkFlagRequired("price")
	return cmd
}

func filterInvestmentsCmd() *cobra.Command {
	var from, to, code string

	cmd := &cobra.Command{
		Use:   "filter",
		Short: "Find lots by cost, date and code",
		Long:  `Cost is quantity times unit price. All bounds are inclusive.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			var filter model.InvestmentFilter
			var err error
			if filter.MinCost, err = decimalFlag(cmd, "min"); err != nil {
				return err
			}
			if filter.MaxCost, err = decimalFlag(cmd, "max"); err != nil {
				return err
			}
			if filter.StartDate, err = parseDateFlag(from); err != nil {
				return err
			}
			if filter.EndDate, err = parseDateFlag(to); err != nil {
				return err
			}
			filter.Code = code

			store, _, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer closeStorage(store)

			lots, err := store.FilterInvestments(ctx, filter)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(lots) == 0 {
				fmt.Fprintln(out, cli.InfoStyle.Render("No matching investments."))
				return nil
			}
			return cli.WriteInvestments(out, lots)
		},
	}

	cmd.Flags().String("min", "", "Minimum cost")
	cmd.Flags().String("max", "", "Maximum cost")
	cmd.Flags().StringVar(&from, "from", "", "Earliest date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "Latest date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&code, "code", "", "Code substring")
	return cmd
}

func updateInvestmentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a trade lot",
		Long:  `Change fields of a lot. Only the given flags are changed.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			store, _, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer closeStorage(store)

			lot, err := store.GetInvestmentByID(ctx, id)
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("date") {
				raw, _ := flags.GetString("date")
				if lot.Date, err = model.ParseDate(raw); err != nil {
					return err
				}
			}
			if flags.Changed("code") {
				lot.Code, _ = flags.GetString("code")
			}
			if flags.Changed("qty") {
				raw, _ := flags.GetString("qty")
				if lot.Quantity, err = parseDecimal("qty", raw); err != nil {
					return err
				}
			}
			if flags.Changed("price") {
				raw, _ := flags.GetString("price")
				if lot.UnitPrice, err = parseDecimal("price", raw); err != nil {
					return err
				}
			}

			if err := store.UpdateInvestment(ctx, *lot); err != nil {
				return fmt.Errorf("failed to update investment: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Updated investment %d", id)))
			return nil
		},
	}

	cmd.Flags().String("date", "", "New trade date (YYYY-MM-DD)")
	cmd.Flags().String("code", "", "New ticker code")
	cmd.Flags().StringP("qty", "q", "", "New quantity")
	cmd.Flags().StringP("price", "p", "", "New unit price")
	return cmd
}

func deleteInvestmentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a trade lot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			store, _, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer closeStorage(store)

			if err := store.DeleteInvestment(ctx, id); err != nil {
				return fmt.Errorf("failed to delete investment: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Deleted investment %d", id)))
			return nil
		},
	}
}

func summaryCmd() *cobra.Command {
	var offline bool

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show positions valued at current prices",
		Long: `Aggregate lots per code and value each position at its latest quote.
Positions whose quote cannot be fetched are shown with n/a values.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, settings, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer closeStorage(store)

			// A nil source marks every quote unavailable.
			var prices service.PriceSource
			if !offline {
				prices = quote.NewClient(settings.QuoteConfig())
			}

			summaries, err := store.InvestmentPositionSummary(ctx, prices)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(summaries) == 0 {
				fmt.Fprintln(out, cli.InfoStyle.Render("No investments yet."))
				return nil
			}

			fmt.Fprintln(out, cli.FormatTitle(cli.ChartIcon+" Portfolio"))
			if err := cli.WriteSummary(out, summaries); err != nil {
				return err
			}

			if offline {
				return nil
			}
			for _, s := range summaries {
				if s.QuoteErr != nil {
					slog.Warn("quote unavailable", "code", s.Code, "error", s.QuoteErr)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&offline, "offline", false, "Skip quote lookups")
	return cmd
}
