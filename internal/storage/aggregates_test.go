package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/ledger/internal/common"
	"github.com/Veraticus/ledger/internal/model"
)

func TestSumsByKind(t *testing.T) {
	ctx := context.Background()
	store, cleanup := createTestStorage(t)
	defer cleanup()

	spend := createCategory(t, store, "Food", model.KindExpenditure)
	earn := createCategory(t, store, "Salary", model.KindIncome)

	_, err := store.AddRecord(ctx, day(2024, 1, 1), "Groceries", dec("-50"), spend.ID)
	require.NoError(t, err)
	_, err = store.AddRecord(ctx, day(2025, 1, 10), "Bonus", dec("500"), earn.ID)
	require.NoError(t, err)

	expenditure, err := store.SumExpenditure(ctx, day(2023, 1, 1), day(2030, 1, 1))
	require.NoError(t, err)
	assert.True(t, expenditure.Equal(dec("-50")), "got %s", expenditure)

	income, err := store.SumIncome(ctx, day(2023, 1, 1), day(2030, 1, 1))
	require.NoError(t, err)
	assert.True(t, income.Equal(dec("500")), "got %s", income)

	income, err = store.SumIncome(ctx, day(2020, 1, 1), day(2022, 12, 31))
	require.NoError(t, err)
	assert.True(t, income.IsZero())

	expenditure, err = store.SumExpenditure(ctx, day(2020, 1, 1), day(2022, 12, 31))
	require.NoError(t, err)
	assert.True(t, expenditure.IsZero())

	// Bounds are inclusive.
	income, err = store.SumIncome(ctx, day(2025, 1, 10), day(2025, 1, 10))
	require.NoError(t, err)
	assert.True(t, income.Equal(dec("500")))

	_, err = store.SumIncome(ctx, day(2025, 1, 1), day(2024, 1, 1))
	require.ErrorIs(t, err, common.ErrValidation)
}

func TestSumCategory(t *testing.T) {
	ctx := context.Background()
	store, cleanup := createTestStorage(t)
	defer cleanup()

	food := createCategory(t, store, "Food", model.KindExpenditure)
	rent := createCategory(t, store, "Rent", model.KindExpenditure)

	for _, amount := range []string{"-10.10", "-20.20", "-0.05"} {
		_, err := store.AddRecord(ctx, day(2024, 6, 1), "Market", dec(amount), food.ID)
		require.NoError(t, err)
	}
	_, err := store.AddRecord(ctx, day(2024, 6, 1), "June rent", dec("-900"), rent.ID)
	require.NoError(t, err)

	total, err := store.SumCategory(ctx, food.ID, time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.True(t, total.Equal(dec("-30.35")), "got %s", total)

	total, err = store.SumCategory(ctx, rent.ID, day(2024, 7, 1), time.Time{})
	require.NoError(t, err)
	assert.True(t, total.IsZero())

	total, err = store.SumCategory(ctx, 999, time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.True(t, total.IsZero())
}
