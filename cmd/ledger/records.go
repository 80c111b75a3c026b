package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/ledger/internal/cli"
	"github.com/Veraticus/ledger/internal/model"
)

func recordsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "records",
		Aliases: []string{"record"},
		Short:   "Manage income and expenditure records",
	}

	cmd.AddCommand(listRecordsCmd())
	cmd.AddCommand(addRecordCmd())
	cmd.AddCommand(filterRecordsCmd())
	cmd.AddCommand(updateRecordCmd())
	cmd.AddCommand(deleteRecordCmd())

	return cmd
}

func listRecordsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List one page of records, newest first",
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

			pages, err := store.CountRecordPages(ctx, settings.PageSize)
			if err != nil {
				return err
			}
			records, err := store.ListRecordsPage(ctx, page, settings.PageSize)
			if err != nil {
				return err
			}
			names, err := categoryNames(ctx, store)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintln(out, cli.InfoStyle.Render("No records on this page."))
				return nil
			}
			if err := cli.WriteRecords(out, records, names); err != nil {
				return err
			}
			fmt.Fprintln(out, cli.SubtleStyle.Render(fmt.Sprintf("Page %d of %d", page+1, pages)))
			return nil
		},
	}

	cmd.Flags().Int("page", 1, "Page number, starting at 1")
	return cmd
}

func addRecordCmd() *cobra.Command {
	var date, description, amount, category string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a record",
		Long: `Add a record under a category. Whether it counts as income or
expenditure follows the category's kind.`,
		Example: `  ledger records add --amount -12.50 --description "Lunch" --category Groceries
  ledger records add --date 2024-11-01 --amount 3000 --description "Salary" --category 1`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			day, err := parseDateFlag(date)
			if err != nil {
				return err
			}
			if day.IsZero() {
				day = model.DateOf(time.Now())
			}
			value, err := parseDecimal("amount", amount)
			if err != nil {
				return err
			}

			store, _, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer closeStorage(store)

			categoryID, err := resolveCategory(ctx, store, category)
			if err != nil {
				return err
			}

			record, err := store.AddRecord(ctx, day, description, value, categoryID)
			if err != nil {
				return fmt.Errorf("failed to add record: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Added record %d", record.ID)))
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Date as YYYY-MM-DD (default: today)")
	cmd.Flags().StringVarP(&description, "description", "d", "", "Description")
	cmd.Flags().StringVarP(&amount, "amount", "a", "", "Amount")
	cmd.Flags().StringVarP(&category, "category", "c", "", "Category name or id")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("category")
	return cmd
}

func filterRecordsCmd() *cobra.Command {
	var from, to, contains, category string

	cmd := &cobra.Command{
		Use:   "filter",
		Short: "Find records by amount, date, description and category",
		Long:  `All bounds are inclusive. Without --category, records of any category match.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			var filter model.RecordFilter
			var err error
			if filter.MinAmount, err = decimalFlag(cmd, "min"); err != nil {
				return err
			}
			if filter.MaxAmount, err = decimalFlag(cmd, "max"); err != nil {
				return err
			}
			if filter.StartDate, err = parseDateFlag(from); err != nil {
				return err
			}
			if filter.EndDate, err = parseDateFlag(to); err != nil {
				return err
			}
			filter.Contains = contains

			store, _, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer closeStorage(store)

			if category != "" {
				if filter.CategoryID, err = resolveCategory(ctx, store, category); err != nil {
					return err
				}
			}

			records, err := store.FilterRecords(ctx, filter)
			if err != nil {
				return err
			}
			names, err := categoryNames(ctx, store)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintln(out, cli.InfoStyle.Render("No matching records."))
				return nil
			}
			return cli.WriteRecords(out, records, names)
		},
	}

	cmd.Flags().String("min", "", "Minimum amount")
	cmd.Flags().String("max", "", "Maximum amount")
	cmd.Flags().StringVar(&from, "from", "", "Earliest date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "Latest date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&contains, "contains", "", "Description substring")
	cmd.Flags().StringVarP(&category, "category", "c", "", "Category name or id")
	return cmd
}

func updateRecordCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a record",
		Long:  `Change fields of a record. Only the given flags are changed; --category none detaches it.`,
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

			record, err := store.GetRecordByID(ctx, id)
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("date") {
				raw, _ := flags.GetString("date")
				if record.Date, err = model.ParseDate(raw); err != nil {
					return err
				}
			}
			if flags.Changed("description") {
				record.Description, _ = flags.GetString("description")
			}
			if flags.Changed("amount") {
				raw, _ := flags.GetString("amount")
				if record.Amount, err = parseDecimal("amount", raw); err != nil {
					return err
				}
			}
			if flags.Changed("category") {
				raw, _ := flags.GetString("category")
				if strings.EqualFold(raw, "none") {
					record.CategoryID = 0
				} else if record.CategoryID, err = resolveCategory(ctx, store, raw); err != nil {
					return err
				}
			}

			if err := store.UpdateRecord(ctx, *record); err != nil {
				return fmt.Errorf("failed to update record: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Updated record %d", id)))
			return nil
		},
	}

	cmd.Flags().String("date", "", "New date (YYYY-MM-DD)")
	cmd.Flags().StringP("description", "d", "", "New description")
	cmd.Flags().StringP("amount", "a", "", "New amount")
	cmd.Flags().StringP("category", "c", "", "New category name or id, or none")
	return cmd
}

func deleteRecordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a record",
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

			if err := store.DeleteRecord(ctx, id); err != nil {
				return fmt.Errorf("failed to delete record: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Deleted record %d", id)))
			return nil
		},
	}
}
