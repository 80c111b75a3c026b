package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Veraticus/ledger/internal/cli"
	"github.com/Veraticus/ledger/internal/common"
	"github.com/Veraticus/ledger/internal/model"
	"github.com/Veraticus/ledger/internal/ofx"
)

func importOFXCmd() *cobra.Command {
	var (
		category       string
		incomeCategory string
		dryRun         bool
	)

	cmd := &cobra.Command{
		Use:   "import-ofx [files...]",
		Short: "Import records from OFX/QFX bank statements",
		Long: `Import statement transactions as ledger records. Debits are filed under
--category and credits under --income-category (default: --category).
Transactions already in the ledger with the same date, amount and
description are skipped.`,
		Example: `  ledger import-ofx ~/Downloads/checking_2024.qfx --category Groceries --income-category Work
  ledger import-ofx ~/Downloads/*.qfx --category 3 --dry-run`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := expandFiles(args)
			if err != nil {
				return err
			}

			handler := cli.NewInterruptHandler(cmd.ErrOrStderr(), "Import")
			ctx, stop := handler.HandleInterrupts(cmd.Context())
			defer stop()

			parser := ofx.NewParser()
			var entries []ofx.Entry
			for _, path := range files {
				parsed, err := parseOFXFile(ctx, parser, path)
				if err != nil {
					slog.Error("Failed to parse OFX file", "file", path, "error", err)
					continue
				}
				slog.Info("Processed file", "file", filepath.Base(path), "transactions", len(parsed))
				entries = append(entries, parsed...)
			}

			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, cli.FormatWarning("No transactions found in any file"))
				return nil
			}

			store, _, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer closeStorage(store)

			var assign ofx.Assignment
			if assign.ExpenseCategoryID, err = resolveCategory(ctx, store, category); err != nil {
				return err
			}
			assign.IncomeCategoryID = assign.ExpenseCategoryID
			if incomeCategory != "" {
				if assign.IncomeCategoryID, err = resolveCategory(ctx, store, incomeCategory); err != nil {
					return err
				}
			}

			if dryRun {
				names, err := categoryNames(ctx, store)
				if err != nil {
					return err
				}
				preview := make([]model.Record, 0, len(entries))
				for _, e := range entries {
					r := e.Record
					r.CategoryID = assign.CategoryFor(e)
					preview = append(preview, r)
				}
				if err := cli.WriteRecords(out, preview, names); err != nil {
					return err
				}
				fmt.Fprintln(out, cli.FormatInfo(fmt.Sprintf("Dry run: %d transactions parsed, nothing saved", len(entries))))
				return nil
			}

			bar := newProgressBar(cmd.ErrOrStderr(), len(entries), "Importing transactions...")
			result, err := ofx.Import(ctx, store, entries, assign, advance(bar))
			if err != nil {
				if handler.WasInterrupted() || errors.Is(err, context.Canceled) {
					fmt.Fprintln(out, cli.FormatWarning(fmt.Sprintf("Import stopped after %d records", result.Imported)))
					return nil
				}
				return err
			}

			common.LogInfo("ofx import finished", common.Fields{
				"files":      len(files),
				"imported":   result.Imported,
				"duplicates": result.Duplicates,
			})
			fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Imported %d records, skipped %d duplicates",
				result.Imported, result.Duplicates)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", "", "Category name or id for imported records")
	cmd.Flags().StringVar(&incomeCategory, "income-category", "", "Category name or id for credits")
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Preview import without saving")
	_ = cmd.MarkFlagRequired("category")
	return cmd
}

// expandFiles resolves globs, keeping literal paths that exist.
func expandFiles(patterns []string) ([]string, error) {
	var files []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
		}
		if len(matches) == 0 {
			if _, err := os.Stat(pattern); err == nil {
				files = append(files, pattern)
			} else {
				slog.Warn("No files found matching pattern", "pattern", pattern)
			}
			continue
		}
		files = append(files, matches...)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no files found to import")
	}
	return files, nil
}

func parseOFXFile(ctx context.Context, parser *ofx.Parser, path string) ([]ofx.Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return parser.ParseFile(ctx, f)
}
