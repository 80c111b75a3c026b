package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/ledger/internal/common"
	"github.com/Veraticus/ledger/internal/model"
)

func TestMigrateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store, cleanup := createTestStorage(t)
	defer cleanup()

	require.NoError(t, store.Migrate(ctx))
	require.NoError(t, store.Migrate(ctx))

	version, err := store.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, ExpectedSchemaVersion, version)
}

func TestFreshDatabaseStartsAtVersionZero(t *testing.T) {
	ctx := context.Background()
	store, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "fresh.db"), Options{})
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	version, err := store.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Zero(t, version)

	require.NoError(t, store.Migrate(ctx))
	version, err = store.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, ExpectedSchemaVersion, version)
}

func TestSchemaColumnOrderMatchesFields(t *testing.T) {
	ctx := context.Background()
	store, cleanup := createTestStorage(t)
	defer cleanup()

	entities := []model.Entity{model.Category{}, model.Record{}, model.Investment{}}
	want := map[string][]string{
		"category":   {"id", "name", "kind", "description"},
		"record":     {"id", "date", "description", "amount", "category_id"},
		"investment": {"id", "date", "code", "quantity", "unit_price"},
	}

	for _, e := range entities {
		t.Run(e.Table(), func(t *testing.T) {
			rows, err := store.db.QueryContext(ctx, "SELECT name FROM pragma_table_info(?) ORDER BY cid", e.Table())
			require.NoError(t, err)
			defer func() { _ = rows.Close() }()

			var columns []string
			for rows.Next() {
				var name string
				require.NoError(t, rows.Scan(&name))
				columns = append(columns, name)
			}
			require.NoError(t, rows.Err())

			assert.Equal(t, want[e.Table()], columns)
			assert.Len(t, e.Fields(true), len(columns))
		})
	}
}

func TestIndexesCreated(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	for _, index := range []string{"idx_record_date", "idx_record_category", "idx_investment_date", "idx_investment_code"} {
		var count int
		err := store.db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'index' AND name = ?`, index).Scan(&count)
		require.NoError(t, err)
		assert.Equal(t, 1, count, "index %s", index)
	}
}

func TestKindCheckConstraint(t *testing.T) {
	ctx := context.Background()
	store, cleanup := createTestStorage(t)
	defer cleanup()

	_, err := store.db.ExecContext(ctx, `INSERT INTO category (name, kind) VALUES ('Bad', 'X')`)
	require.Error(t, err)
	assert.ErrorIs(t, classifyError(err), common.ErrValidation)
}
