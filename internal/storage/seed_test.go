package storage

import (
	"context"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/ledger/internal/model"
)

func TestSeedDummyData(t *testing.T) {
	ctx := context.Background()
	store, cleanup := createTestStorage(t)
	defer cleanup()

	opts := SeedOptions{
		Now:       day(2025, 3, 1),
		Rand:      rand.New(rand.NewPCG(7, 7)),
		Records:   40,
		LotRounds: 2,
	}
	var ticks int
	opts.Progress = func() { ticks++ }

	result, err := store.SeedDummyData(ctx, opts)
	require.NoError(t, err)
	assert.Equal(t, SeedResult{Categories: 5, Records: 40, Investments: 6}, result)
	assert.Equal(t, SeedTotal(opts), ticks)

	incomes, err := store.ListCategories(ctx, model.IncomeOnly)
	require.NoError(t, err)
	assert.Len(t, incomes, 2)

	records, err := store.FilterRecords(ctx, model.RecordFilter{})
	require.NoError(t, err)
	require.Len(t, records, 40)

	kinds := make(map[int64]model.CategoryKind)
	all, err := store.ListCategories(ctx, model.AllKinds)
	require.NoError(t, err)
	for _, c := range all {
		kinds[c.ID] = c.Kind
	}
	for _, r := range records {
		assert.False(t, r.Date.Before(day(2024, 11, 21)), "date %s", r.Date)
		assert.True(t, r.Date.Before(day(2025, 3, 1)), "date %s", r.Date)
		if kinds[r.CategoryID] == model.KindIncome {
			assert.True(t, r.Amount.IsPositive())
		} else {
			assert.True(t, r.Amount.IsNegative())
		}
	}

	income, err := store.SumIncome(ctx, time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.False(t, income.IsNegative())

	positions, err := store.InvestmentPositions(ctx)
	require.NoError(t, err)
	require.Len(t, positions, 2)
	assert.Equal(t, "IVV", positions[0].Code)
	assert.True(t, positions[0].Quantity.Equal(dec("40")))
}
