package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/ledger/internal/common"
	"github.com/Veraticus/ledger/internal/config"
	"github.com/Veraticus/ledger/internal/model"
	"github.com/Veraticus/ledger/internal/storage"
)

// initStorage loads settings and opens the migrated ledger.
func initStorage(ctx context.Context) (*storage.SQLiteStorage, *config.Settings, error) {
	settings, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, nil, common.NewUserError("invalid configuration", err)
	}

	store, err := storage.Open(ctx, settings.DatabasePath, settings.StorageOptions())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open ledger at %s: %w", settings.DatabasePath, err)
	}
	return store, settings, nil
}

func closeStorage(store *storage.SQLiteStorage) {
	if err := store.Close(); err != nil {
		common.LogError(err, "failed to close ledger", common.Fields{"path": store.Path()})
	}
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %q is not a valid id", common.ErrValidation, s)
	}
	return id, nil
}

// parseDateFlag returns the zero time for an empty value.
func parseDateFlag(s string) (time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return time.Time{}, nil
	}
	return model.ParseDate(s)
}

func parseDecimal(name, s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s %q is not a number", common.ErrValidation, name, s)
	}
	return d, nil
}

// decimalFlag returns nil when the flag was not given.
func decimalFlag(cmd *cobra.Command, name string) (*decimal.Decimal, error) {
	if !cmd.Flags().Changed(name) {
		return nil, nil
	}
	raw, _ := cmd.Flags().GetString(name)
	d, err := parseDecimal(name, raw)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// resolveCategory accepts a category id or name.
func resolveCategory(ctx context.Context, store *storage.SQLiteStorage, ref string) (int64, error) {
	ref = strings.TrimSpace(ref)
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		return id, nil
	}
	category, err := store.GetCategoryByName(ctx, ref)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return 0, common.NewUserError(fmt.Sprintf("no category named %q", ref), err)
		}
		return 0, err
	}
	return category.ID, nil
}

func categoryNames(ctx context.Context, store *storage.SQLiteStorage) (map[int64]string, error) {
	categories, err := store.ListCategories(ctx, model.AllKinds)
	if err != nil {
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}
	names := make(map[int64]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}
	return names, nil
}

// pageIndex converts a one-based --page value to a storage page index.
func pageIndex(cmd *cobra.Command) (int, error) {
	page, _ := cmd.Flags().GetInt("page")
	if page < 1 {
		return 0, fmt.Errorf("%w: --page must be at least 1", common.ErrValidation)
	}
	return page - 1, nil
}

func newProgressBar(w io.Writer, total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]"+description+"[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			if _, err := fmt.Fprintln(w); err != nil {
				slog.Warn("Failed to write newline after progress bar", "error", err)
			}
		}),
	)
}

// advance returns a progress callback that moves bar by one step.
func advance(bar *progressbar.ProgressBar) func() {
	return func() {
		if err := bar.Add(1); err != nil {
			slog.Debug("failed to update progress bar", "error", err)
		}
	}
}
