package storage

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/ledger/internal/model"
)

const investmentColumns = "id, date, code, quantity, unit_price"

// AddInvestment inserts a trade lot. The code is stored upper-cased.
func (s *SQLiteStorage) AddInvestment(ctx context.Context, date time.Time, code string, quantity, unitPrice decimal.Decimal) (*model.Investment, error) {
	if err := s.checkOpen(ctx); err != nil {
		return nil, err
	}

	investment, err := model.NewInvestment(date, code, quantity, unitPrice)
	if err != nil {
		return nil, err
	}

	result, err := s.db.ExecContext(ctx,
		`INSERT INTO investment (date, code, quantity, unit_price) VALUES (?, ?, ?, ?)`,
		sqlArgs(investment.Fields(false))...)
	if err != nil {
		return nil, fmt.Errorf("failed to create investment: %w", classifyError(err))
	}

	investment.ID, err = result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get investment ID: %w", err)
	}

	slog.Debug("created investment", "id", investment.ID, "code", investment.Code, "quantity", investment.Quantity.String())
	return &investment, nil
}

// UpdateInvestment rewrites every column of an existing lot.
func (s *SQLiteStorage) UpdateInvestment(ctx context.Context, investment model.Investment) error {
	if err := s.checkOpen(ctx); err != nil {
		return err
	}
	if err := validateID(investment.ID, "investment"); err != nil {
		return err
	}

	updated, err := model.NewInvestment(investment.Date, investment.Code, investment.Quantity, investment.UnitPrice)
	if err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE investment SET date = ?, code = ?, quantity = ?, unit_price = ? WHERE id = ?`,
		append(sqlArgs(updated.Fields(false)), investment.ID)...)
	if err != nil {
		return fmt.Errorf("failed to update investment: %w", classifyError(err))
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return notFound("investment", investment.ID)
	}
	return nil
}

// DeleteInvestment removes a lot by id.
func (s *SQLiteStorage) DeleteInvestment(ctx context.Context, id int64) error {
	if err := s.checkOpen(ctx); err != nil {
		return err
	}
	if err := validateID(id, "investment"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM investment WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete investment: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return notFound("investment", id)
	}
	return nil
}

// GetInvestmentByID returns a lot by its id.
func (s *SQLiteStorage) GetInvestmentByID(ctx context.Context, id int64) (*model.Investment, error) {
	if err := s.checkOpen(ctx); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `SELECT `+investmentColumns+` FROM investment WHERE id = ?`, id)
	values, err := scanFields(row, 5)
	if isNoRows(err) {
		return nil, notFound("investment", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query investment: %w", err)
	}
	investment, err := model.InvestmentFromFields(values)
	if err != nil {
		return nil, fmt.Errorf("failed to decode investment %d: %w", id, err)
	}
	return &investment, nil
}

// ListInvestmentsPage returns the zero-indexed page of lots, most recent first.
func (s *SQLiteStorage) ListInvestmentsPage(ctx context.Context, page, pageSize int) ([]model.Investment, error) {
	if err := s.checkOpen(ctx); err != nil {
		return nil, err
	}
	if err := validatePage(page, pageSize); err != nil {
		return nil, err
	}

	return queryInvestments(ctx, s.db,
		`SELECT `+investmentColumns+` FROM investment ORDER BY date DESC, id DESC LIMIT ? OFFSET ?`,
		pageSize, page*pageSize)
}

// CountInvestmentPages returns how many pages of pageSize the lots fill.
func (s *SQLiteStorage) CountInvestmentPages(ctx context.Context, pageSize int) (int, error) {
	if err := s.checkOpen(ctx); err != nil {
		return 0, err
	}
	if err := validatePage(0, pageSize); err != nil {
		return 0, err
	}

	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM investment`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count investments: %w", err)
	}
	return pageCount(count, pageSize), nil
}

// FilterInvestments returns lots whose cost, date and code match filter,
// most recent first. Cost and date bounds are inclusive.
func (s *SQLiteStorage) FilterInvestments(ctx context.Context, filter model.InvestmentFilter) ([]model.Investment, error) {
	if err := s.checkOpen(ctx); err != nil {
		return nil, err
	}
	if err := validateDateRange(filter.StartDate, filter.EndDate); err != nil {
		return nil, err
	}

	where, args := dateBounds("date", filter.StartDate, filter.EndDate)
	if filter.Code != "" {
		where = append(where, "instr(code, ?) > 0")
		args = append(args, filter.Code)
	}

	query := `SELECT ` + investmentColumns + ` FROM investment WHERE ` + strings.Join(where, " AND ") +
		` ORDER BY date DESC, id DESC`
	lots, err := queryInvestments(ctx, s.db, query, args...)
	if err != nil {
		return nil, err
	}

	// Cost bounds are applied on the decimal product; SQLite REAL would round it.
	var investments []model.Investment
	for _, lot := range lots {
		if withinBounds(lot.Cost(), filter.MinCost, filter.MaxCost) {
			investments = append(investments, lot)
		}
	}

	slog.Debug("filtered investments", "count", len(investments))
	return investments, nil
}

func queryInvestments(ctx context.Context, q queryable, query string, args ...any) ([]model.Investment, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query investments: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var investments []model.Investment
	for rows.Next() {
		values, err := scanFields(rows, 5)
		if err != nil {
			return nil, fmt.Errorf("failed to scan investment: %w", err)
		}
		investment, err := model.InvestmentFromFields(values)
		if err != nil {
			return nil, fmt.Errorf("failed to decode investment: %w", err)
		}
		investments = append(investments, investment)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating investments: %w", err)
	}
	return investments, nil
}
