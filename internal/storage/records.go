package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/ledger/internal/common"
	"github.com/Veraticus/ledger/internal/model"
)

const recordColumns = "id, date, description, amount, category_id"

// AddRecord inserts a transaction against an existing category.
func (s *SQLiteStorage) AddRecord(ctx context.Context, date time.Time, description string, amount decimal.Decimal, categoryID int64) (*model.Record, error) {
	if err := s.checkOpen(ctx); err != nil {
		return nil, err
	}

	record, err := model.NewRecord(date, description, amount, categoryID)
	if err != nil {
		return nil, err
	}

	err = s.withTx(ctx, func(tx *sql.Tx) error {
		if err := requireCategory(ctx, tx, categoryID); err != nil {
			return err
		}

		result, err := tx.ExecContext(ctx,
			`INSERT INTO record (date, description, amount, category_id) VALUES (?, ?, ?, ?)`,
			sqlArgs(record.Fields(false))...)
		if err != nil {
			return fmt.Errorf("failed to create record: %w", classifyError(err))
		}

		record.ID, err = result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get record ID: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Debug("created record", "id", record.ID, "date", dateArg(record.Date), "amount", record.Amount.String())
	return &record, nil
}

// requireCategory fails with ErrConstraint unless id names a category.
func requireCategory(ctx context.Context, q queryable, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: record requires a category", common.ErrConstraint)
	}
	exists, err := categoryExists(ctx, q, id)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: category %d does not exist", common.ErrConstraint, id)
	}
	return nil
}

// UpdateRecord rewrites every column of an existing record. A zero
// CategoryID detaches it.
func (s *SQLiteStorage) UpdateRecord(ctx context.Context, record model.Record) error {
	if err := s.checkOpen(ctx); err != nil {
		return err
	}
	if err := validateID(record.ID, "record"); err != nil {
		return err
	}

	updated, err := model.NewRecord(record.Date, record.Description, record.Amount, record.CategoryID)
	if err != nil {
		return err
	}
	updated.ID = record.ID

	return s.withTx(ctx, func(tx *sql.Tx) error {
		if updated.CategoryID != 0 {
			if err := requireCategory(ctx, tx, updated.CategoryID); err != nil {
				return err
			}
		}

		result, err := tx.ExecContext(ctx,
			`UPDATE record SET date = ?, description = ?, amount = ?, category_id = ? WHERE id = ?`,
			append(sqlArgs(updated.Fields(false)), updated.ID)...)
		if err != nil {
			return fmt.Errorf("failed to update record: %w", classifyError(err))
		}
		if n, _ := result.RowsAffected(); n == 0 {
			return notFound("record", updated.ID)
		}
		return nil
	})
}

// DeleteRecord removes a record by id.
func (s *SQLiteStorage) DeleteRecord(ctx context.Context, id int64) error {
	if err := s.checkOpen(ctx); err != nil {
		return err
	}
	if err := validateID(id, "record"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM record WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return notFound("record", id)
	}
	return nil
}

// GetRecordByID returns a record by its id.
func (s *SQLiteStorage) GetRecordByID(ctx context.Context, id int64) (*model.Record, error) {
	if err := s.checkOpen(ctx); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM record WHERE id = ?`, id)
	values, err := scanFields(row, 5)
	if isNoRows(err) {
		return nil, notFound("record", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query record: %w", err)
	}
	record, err := model.RecordFromFields(values)
	if err != nil {
		return nil, fmt.Errorf("failed to decode record %d: %w", id, err)
	}
	return &record, nil
}

// ListRecordsPage returns the zero-indexed page of records, most recent first.
func (s *SQLiteStorage) ListRecordsPage(ctx context.Context, page, pageSize int) ([]model.Record, error) {
	if err := s.checkOpen(ctx); err != nil {
		return nil, err
	}
	if err := validatePage(page, pageSize); err != nil {
		return nil, err
	}

	return queryRecords(ctx, s.db,
		`SELECT `+recordColumns+` FROM record ORDER BY date DESC, id DESC LIMIT ? OFFSET ?`,
		pageSize, page*pageSize)
}

// CountRecordPages returns how many pages of pageSize the records fill.
func (s *SQLiteStorage) CountRecordPages(ctx context.Context, pageSize int) (int, error) {
	if err := s.checkOpen(ctx); err != nil {
		return 0, err
	}
	if err := validatePage(0, pageSize); err != nil {
		return 0, err
	}

	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM record`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	return pageCount(count, pageSize), nil
}

// FilterRecords returns records matching every predicate in filter, most
// recent first. Amount and date bounds are inclusive.
func (s *SQLiteStorage) FilterRecords(ctx context.Context, filter model.RecordFilter) ([]model.Record, error) {
	if err := s.checkOpen(ctx); err != nil {
		return nil, err
	}
	if err := validateDateRange(filter.StartDate, filter.EndDate); err != nil {
		return nil, err
	}

	where, args := dateBounds("date", filter.StartDate, filter.EndDate)
	if filter.Contains != "" {
		where = append(where, "instr(description, ?) > 0")
		args = append(args, filter.Contains)
	}
	if filter.CategoryID > 0 {
		where = append(where, "category_id = ?")
		args = append(args, filter.CategoryID)
	} else {
		where = append(where, "category_id IS NOT NULL")
	}

	query := `SELECT ` + recordColumns + ` FROM record WHERE ` + strings.Join(where, " AND ") +
		` ORDER BY date DESC, id DESC`
	candidates, err := queryRecords(ctx, s.db, query, args...)
	if err != nil {
		return nil, err
	}

	var records []model.Record
	for _, r := range candidates {
		if withinBounds(r.Amount, filter.MinAmount, filter.MaxAmount) {
			records = append(records, r)
		}
	}

	slog.Debug("filtered records", "count", len(records))
	return records, nil
}

func queryRecords(ctx context.Context, q queryable, query string, args ...any) ([]model.Record, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []model.Record
	for rows.Next() {
		values, err := scanFields(rows, 5)
		if err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		record, err := model.RecordFromFields(values)
		if err != nil {
			return nil, fmt.Errorf("failed to decode record: %w", err)
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating records: %w", err)
	}
	return records, nil
}

// dateBounds builds inclusive date predicates for the non-zero bounds.
func dateBounds(column string, start, end time.Time) ([]string, []any) {
	where := []string{"1 = 1"}
	var args []any
	if !start.IsZero() {
		where = append(where, column+" >= ?")
		args = append(args, dateArg(start))
	}
	if !end.IsZero() {
		where = append(where, column+" <= ?")
		args = append(args, dateArg(end))
	}
	return where, args
}
