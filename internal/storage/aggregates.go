package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/ledger/internal/model"
)

// SumIncome totals records in income categories dated within [start, end].
func (s *SQLiteStorage) SumIncome(ctx context.Context, start, end time.Time) (decimal.Decimal, error) {
	return s.sumKind(ctx, model.KindIncome, start, end)
}

// SumExpenditure totals records in expenditure categories dated within
// [start, end]. Amounts keep their stored sign.
func (s *SQLiteStorage) SumExpenditure(ctx context.Context, start, end time.Time) (decimal.Decimal, error) {
	return s.sumKind(ctx, model.KindExpenditure, start, end)
}

func (s *SQLiteStorage) sumKind(ctx context.Context, kind model.CategoryKind, start, end time.Time) (decimal.Decimal, error) {
	if err := s.checkOpen(ctx); err != nil {
		return decimal.Zero, err
	}
	if err := validateDateRange(start, end); err != nil {
		return decimal.Zero, err
	}

	where, args := dateBounds("r.date", start, end)
	where = append(where, "c.kind = ?")
	args = append(args, string(kind))

	return s.sum(ctx,
		`SELECT IFNULL(ROUND(SUM(r.amount), 2), 0) FROM record r
		 JOIN category c ON c.id = r.category_id
		 WHERE `+strings.Join(where, " AND "), args...)
}

// SumCategory totals records of one category dated within [start, end].
func (s *SQLiteStorage) SumCategory(ctx context.Context, categoryID int64, start, end time.Time) (decimal.Decimal, error) {
	if err := s.checkOpen(ctx); err != nil {
		return decimal.Zero, err
	}
	if err := validateDateRange(start, end); err != nil {
		return decimal.Zero, err
	}

	where, args := dateBounds("date", start, end)
	where = append(where, "category_id = ?")
	args = append(args, categoryID)

	return s.sum(ctx,
		`SELECT IFNULL(ROUND(SUM(amount), 2), 0) FROM record WHERE `+strings.Join(where, " AND "), args...)
}

func (s *SQLiteStorage) sum(ctx context.Context, query string, args ...any) (decimal.Decimal, error) {
	var raw any
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&raw); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum amounts: %w", err)
	}
	total, err := model.AsDecimal(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to decode sum: %w", err)
	}
	return total.Round(2), nil
}
