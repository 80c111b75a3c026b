// Package model defines the ledger's value types and their canonical
// field-order serialization.
package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/ledger/internal/common"
)

// DateLayout is the storage representation of a calendar date.
const DateLayout = time.DateOnly

// Entity is implemented by Category, Record and Investment. Fields returns
// column values in schema order; the matching XFromFields function inverts it.
type Entity interface {
	Table() string
	Fields(includeID bool) []any
	entity()
}

// DateOf truncates t to its calendar date at midnight UTC.
func DateOf(t time.Time) time.Time {
	if t.IsZero() {
		return time.Time{}
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q: expected YYYY-MM-DD", common.ErrValidation, s)
	}
	return t, nil
}

func idField(id int64) any {
	if id == 0 {
		return nil
	}
	return id
}

func checkArity(kind string, values []any, want int) error {
	if len(values) != want {
		return fmt.Errorf("%w: %s expects %d fields, got %d", common.ErrValidation, kind, want, len(values))
	}
	return nil
}

// asInt64 accepts the model's own int64 and the raw values SQL drivers return.
func asInt64(v any) (int64, error) {
	switch x := v.(type) {
	case nil:
		return 0, nil
	case int64:
		return x, nil
	case int:
		return int64(x), nil
	case float64:
		return int64(x), nil
	case []byte:
		return strconv.ParseInt(string(x), 10, 64)
	case string:
		return strconv.ParseInt(x, 10, 64)
	default:
		return 0, fmt.Errorf("%w: cannot use %T as integer", common.ErrValidation, v)
	}
}

func asString(v any) (string, error) {
	switch x := v.(type) {
	case nil:
		return "", nil
	case string:
		return x, nil
	case []byte:
		return string(x), nil
	default:
		return "", fmt.Errorf("%w: cannot use %T as text", common.ErrValidation, v)
	}
}

// AsDecimal converts a model or driver value into a decimal.
func AsDecimal(v any) (decimal.Decimal, error) {
	switch x := v.(type) {
	case nil:
		return decimal.Zero, nil
	case decimal.Decimal:
		return x, nil
	case int64:
		return decimal.NewFromInt(x), nil
	case int:
		return decimal.NewFromInt(int64(x)), nil
	case float64:
		return decimal.NewFromFloat(x), nil
	case string:
		return decimal.NewFromString(x)
	case []byte:
		return decimal.NewFromString(string(x))
	default:
		return decimal.Zero, fmt.Errorf("%w: cannot use %T as decimal", common.ErrValidation, v)
	}
}

func asDate(v any) (time.Time, error) {
	switch x := v.(type) {
	case time.Time:
		return DateOf(x), nil
	case string:
		return parseStoredDate(x)
	case []byte:
		return parseStoredDate(string(x))
	default:
		return time.Time{}, fmt.Errorf("%w: cannot use %T as date", common.ErrValidation, v)
	}
}

// parseStoredDate accepts a bare date or the timestamp forms drivers emit for DATE columns.
func parseStoredDate(s string) (time.Time, error) {
	if len(s) >= len(DateLayout) {
		if t, err := time.Parse(DateLayout, s[:len(DateLayout)]); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: date %q", common.ErrValidation, s)
}
