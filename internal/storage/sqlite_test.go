package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/ledger/internal/common"
	"github.com/Veraticus/ledger/internal/model"
)

// Helper function to create test storage.
func createTestStorage(t *testing.T) (*SQLiteStorage, func()) {
	t.Helper()
	return createTestStorageWith(t, Options{})
}

func createTestStorageWith(t *testing.T, opts Options) (*SQLiteStorage, func()) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	store, err := Open(context.Background(), dbPath, opts)
	require.NoError(t, err)

	return store, func() { _ = store.Close() }
}

// createCategory adds a category or fails the test.
func createCategory(t *testing.T, store *SQLiteStorage, name string, kind model.CategoryKind) *model.Category {
	t.Helper()
	cat, err := store.AddCategory(context.Background(), name, name+" category", string(kind))
	require.NoError(t, err)
	return cat
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func TestOpenMigratesAndReopens(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "nested", "ledger.db")

	store, err := Open(ctx, dbPath, Options{})
	require.NoError(t, err)
	assert.Equal(t, dbPath, store.Path())

	cat, err := store.AddCategory(ctx, "Salary", "monthly pay", "I")
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := Open(ctx, dbPath, Options{})
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	version, err := reopened.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, ExpectedSchemaVersion, version)

	got, err := reopened.GetCategoryByID(ctx, cat.ID)
	require.NoError(t, err)
	assert.Equal(t, *cat, *got)
}

func TestClosedStorage(t *testing.T) {
	ctx := context.Background()
	store, _ := createTestStorage(t)

	require.NoError(t, store.Close())
	require.NoError(t, store.Close(), "second Close is a no-op")

	_, err := store.AddCategory(ctx, "Salary", "", "I")
	require.ErrorIs(t, err, common.ErrClosed)

	_, err = store.ListRecordsPage(ctx, 0, 10)
	require.ErrorIs(t, err, common.ErrClosed)

	_, err = store.SumIncome(ctx, time.Time{}, time.Time{})
	require.ErrorIs(t, err, common.ErrClosed)

	_, err = store.InvestmentPositionSummary(ctx, nil)
	require.ErrorIs(t, err, common.ErrClosed)
}

func TestNilContext(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	//nolint:staticcheck // nil context is the point of the test
	_, err := store.ListCategories(nil, model.AllKinds)
	require.ErrorIs(t, err, ErrNilContext)
}

func TestUnsupportedDriver(t *testing.T) {
	_, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "x.db"), Options{Driver: "postgres"})
	require.ErrorIs(t, err, common.ErrInvalidConfig)

	_, err = NewSQLiteStorage("  ", Options{})
	require.ErrorIs(t, err, common.ErrValidation)
}

func TestPureGoDriver(t *testing.T) {
	ctx := context.Background()
	store, cleanup := createTestStorageWith(t, Options{Driver: DriverPureGo})
	defer cleanup()

	income := createCategory(t, store, "Salary", model.KindIncome)
	_, err := store.AddRecord(ctx, day(2024, 3, 1), "March pay", dec("1250.50"), income.ID)
	require.NoError(t, err)
	_, err = store.AddInvestment(ctx, day(2024, 3, 2), "vwce", dec("3"), dec("110.25"))
	require.NoError(t, err)

	records, err := store.FilterRecords(ctx, model.RecordFilter{CategoryID: income.ID})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.True(t, records[0].Date.Equal(day(2024, 3, 1)))
	assert.True(t, records[0].Amount.Equal(dec("1250.50")))

	total, err := store.SumIncome(ctx, day(2024, 1, 1), day(2024, 12, 31))
	require.NoError(t, err)
	assert.True(t, total.Equal(dec("1250.5")), "got %s", total)

	positions, err := store.InvestmentPositions(ctx)
	require.NoError(t, err)
	require.Len(t, positions, 1)
	assert.Equal(t, "VWCE", positions[0].Code)
	assert.True(t, positions[0].CostBasis.Equal(dec("330.75")))
}

func TestParseDeletePolicy(t *testing.T) {
	tests := []struct {
		input   string
		want    DeletePolicy
		wantErr bool
	}{
		{input: "", want: DeleteSetNull},
		{input: "set-null", want: DeleteSetNull},
		{input: " Reassign-Default ", want: DeleteReassignDefault},
		{input: "cascade", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDeletePolicy(tt.input)
			if tt.wantErr {
				require.ErrorIs(t, err, common.ErrInvalidConfig)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
