// Package storage provides the data persistence layer for the ledger.
package storage

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/ledger/internal/common"
	"github.com/Veraticus/ledger/internal/model"
)

// Validation errors.
var (
	ErrNilContext       = errors.New("context cannot be nil")
	ErrEmptyString      = errors.New("string parameter cannot be empty")
	ErrInvalidDateRange = errors.New("start date must not be after end date")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %w: %s", common.ErrValidation, ErrEmptyString, paramName)
	}
	return nil
}

// validatePage checks zero-indexed pagination arguments.
func validatePage(page, pageSize int) error {
	if page < 0 {
		return fmt.Errorf("%w: page %d is negative", common.ErrValidation, page)
	}
	if pageSize <= 0 {
		return fmt.Errorf("%w: page size must be positive, got %d", common.ErrValidation, pageSize)
	}
	return nil
}

// validateDateRange rejects an end date before a start date; zero bounds are open.
func validateDateRange(start, end time.Time) error {
	if !start.IsZero() && !end.IsZero() && model.DateOf(end).Before(model.DateOf(start)) {
		return fmt.Errorf("%w: %w: %s > %s", common.ErrValidation, ErrInvalidDateRange,
			start.Format(model.DateLayout), end.Format(model.DateLayout))
	}
	return nil
}

func validateID(id int64, entity string) error {
	if id <= 0 {
		return fmt.Errorf("%w: %s id must be positive, got %d", common.ErrValidation, entity, id)
	}
	return nil
}

// dateArg formats a date the way it is stored.
func dateArg(t time.Time) string {
	return model.DateOf(t).Format(model.DateLayout)
}

// bindValue turns model values into SQLite bind arguments: dates as
// YYYY-MM-DD text, decimals through their driver.Valuer.
func bindValue(v any) any {
	if t, ok := v.(time.Time); ok {
		return dateArg(t)
	}
	return v
}

// withinBounds reports whether lo <= v <= hi, treating nil bounds as open.
func withinBounds(v decimal.Decimal, lo, hi *decimal.Decimal) bool {
	if lo != nil && v.LessThan(*lo) {
		return false
	}
	if hi != nil && v.GreaterThan(*hi) {
		return false
	}
	return true
}

func pageCount(rows, pageSize int) int {
	if rows == 0 {
		return 0
	}
	return int(math.Ceil(float64(rows) / float64(pageSize)))
}
