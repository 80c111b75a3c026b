package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/Veraticus/ledger/internal/common"
	"github.com/Veraticus/ledger/internal/model"
)

const categoryColumns = "id, name, kind, description"

// AddCategory validates and inserts a new category.
func (s *SQLiteStorage) AddCategory(ctx context.Context, name, description, kind string) (*model.Category, error) {
	if err := s.checkOpen(ctx); err != nil {
		return nil, err
	}

	category, err := model.NewCategory(name, description, kind)
	if err != nil {
		return nil, err
	}

	result, err := s.db.ExecContext(ctx,
		`INSERT INTO category (name, kind, description) VALUES (?, ?, ?)`,
		sqlArgs(category.Fields(false))...)
	if err != nil {
		return nil, fmt.Errorf("failed to create category: %w", classifyError(err))
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get category ID: %w", err)
	}
	category.ID = id

	slog.Info("created new category", "name", category.Name, "id", id, "kind", category.Kind)
	return &category, nil
}

// UpdateCategory rewrites name, kind and description of an existing category.
// Under DeleteReassignDefault the fallback category keeps its name and kind.
func (s *SQLiteStorage) UpdateCategory(ctx context.Context, category model.Category) error {
	if err := s.checkOpen(ctx); err != nil {
		return err
	}
	if err := validateID(category.ID, "category"); err != nil {
		return err
	}
	category, err := category.Normalized()
	if err != nil {
		return err
	}

	err = s.withTx(ctx, func(tx *sql.Tx) error {
		existing, err := getCategoryByID(ctx, tx, category.ID)
		if err != nil {
			return err
		}
		if s.protectsFallback(existing) && (category.Name != existing.Name || category.Kind != existing.Kind) {
			return fmt.Errorf("%w: the fallback category %q cannot be renamed or change kind",
				common.ErrValidation, FallbackCategoryName)
		}

		result, err := tx.ExecContext(ctx,
			`UPDATE category SET name = ?, kind = ?, description = ? WHERE id = ?`,
			append(sqlArgs(category.Fields(false)), category.ID)...)
		if err != nil {
			return fmt.Errorf("failed to update category: %w", classifyError(err))
		}
		if n, err := result.RowsAffected(); err == nil && n == 0 {
			return notFound("category", category.ID)
		}
		return nil
	})
	if err != nil {
		return err
	}

	slog.Debug("updated category", "id", category.ID, "name", category.Name)
	return nil
}

// DeleteCategory removes a category and detaches its records according to
// the configured DeletePolicy. The fallback category is only created when
// records need reassigning.
func (s *SQLiteStorage) DeleteCategory(ctx context.Context, id int64) error {
	if err := s.checkOpen(ctx); err != nil {
		return err
	}
	if err := validateID(id, "category"); err != nil {
		return err
	}

	var detached int64
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		existing, err := getCategoryByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if s.protectsFallback(existing) {
			return fmt.Errorf("%w: the fallback category %q cannot be deleted", common.ErrValidation, FallbackCategoryName)
		}

		var referencing int64
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM record WHERE category_id = ?`, id).Scan(&referencing); err != nil {
			return fmt.Errorf("failed to count category records: %w", err)
		}

		if referencing > 0 {
			var result sql.Result
			switch s.opts.DeletePolicy {
			case DeleteReassignDefault:
				fallback, err := ensureFallbackCategory(ctx, tx)
				if err != nil {
					return err
				}
				result, err = tx.ExecContext(ctx, `UPDATE record SET category_id = ? WHERE category_id = ?`, fallback, id)
				if err != nil {
					return fmt.Errorf("failed to reassign records: %w", err)
				}
			default:
				result, err = tx.ExecContext(ctx, `UPDATE record SET category_id = NULL WHERE category_id = ?`, id)
				if err != nil {
					return fmt.Errorf("failed to detach records: %w", err)
				}
			}
			if detached, err = result.RowsAffected(); err != nil {
				detached = referencing
			}
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM category WHERE id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete category: %w", classifyError(err))
		}
		return nil
	})
	if err != nil {
		return err
	}

	slog.Info("deleted category", "id", id, "policy", s.opts.DeletePolicy, "records_detached", detached)
	return nil
}

// protectsFallback reports whether c is the fallback category under a
// policy that relies on it.
func (s *SQLiteStorage) protectsFallback(c *model.Category) bool {
	return s.opts.DeletePolicy == DeleteReassignDefault && c.Name == FallbackCategoryName
}

// ensureFallbackCategory returns the id of the fallback category, creating it if needed.
func ensureFallbackCategory(ctx context.Context, q queryable) (int64, error) {
	var id int64
	err := q.QueryRowContext(ctx, `SELECT id FROM category WHERE name = ? ORDER BY id LIMIT 1`, FallbackCategoryName).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !isNoRows(err) {
		return 0, fmt.Errorf("failed to look up fallback category: %w", err)
	}

	fallback := model.Category{Name: FallbackCategoryName, Kind: model.KindExpenditure, Description: "uncategorised"}
	result, err := q.ExecContext(ctx, `INSERT INTO category (name, kind, description) VALUES (?, ?, ?)`,
		sqlArgs(fallback.Fields(false))...)
	if err != nil {
		return 0, fmt.Errorf("failed to create fallback category: %w", err)
	}
	id, err = result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get fallback category ID: %w", err)
	}
	slog.Info("created fallback category", "id", id)
	return id, nil
}

// GetCategoryByID returns a category by its id.
func (s *SQLiteStorage) GetCategoryByID(ctx context.Context, id int64) (*model.Category, error) {
	if err := s.checkOpen(ctx); err != nil {
		return nil, err
	}
	return getCategoryByID(ctx, s.db, id)
}

func getCategoryByID(ctx context.Context, q queryable, id int64) (*model.Category, error) {
	row := q.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM category WHERE id = ?`, id)
	values, err := scanFields(row, 4)
	if isNoRows(err) {
		return nil, notFound("category", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query category: %w", err)
	}
	cat, err := model.CategoryFromFields(values)
	if err != nil {
		return nil, fmt.Errorf("failed to decode category %d: %w", id, err)
	}
	return &cat, nil
}

// GetCategoryByName returns the first category with the given name.
func (s *SQLiteStorage) GetCategoryByName(ctx context.Context, name string) (*model.Category, error) {
	if err := s.checkOpen(ctx); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM category WHERE name = ? ORDER BY id LIMIT 1`, name)
	values, err := scanFields(row, 4)
	if isNoRows(err) {
		return nil, fmt.Errorf("%w: category %q", common.ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query category: %w", err)
	}
	cat, err := model.CategoryFromFields(values)
	if err != nil {
		return nil, fmt.Errorf("failed to decode category %q: %w", name, err)
	}
	return &cat, nil
}

// ListCategories returns categories matching the kind filter in storage order.
func (s *SQLiteStorage) ListCategories(ctx context.Context, filter model.KindFilter) ([]model.Category, error) {
	if err := s.checkOpen(ctx); err != nil {
		return nil, err
	}

	query := `SELECT ` + categoryColumns + ` FROM category`
	var args []any
	switch filter {
	case model.IncomeOnly:
		query += ` WHERE kind = ?`
		args = append(args, string(model.KindIncome))
	case model.ExpenditureOnly:
		query += ` WHERE kind = ?`
		args = append(args, string(model.KindExpenditure))
	}
	query += ` ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var categories []model.Category
	for rows.Next() {
		values, err := scanFields(rows, 4)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		cat, err := model.CategoryFromFields(values)
		if err != nil {
			return nil, fmt.Errorf("failed to decode category: %w", err)
		}
		categories = append(categories, cat)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	slog.Debug("retrieved categories", "count", len(categories))
	return categories, nil
}

// categoryExists reports whether id names a category.
func categoryExists(ctx context.Context, q queryable, id int64) (bool, error) {
	var exists bool
	err := q.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM category WHERE id = ?)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check category existence: %w", err)
	}
	return exists, nil
}
