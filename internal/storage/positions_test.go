package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/ledger/internal/common"
	"github.com/Veraticus/ledger/internal/service"
)

func addLots(t *testing.T, store *SQLiteStorage) {
	t.Helper()
	ctx := context.Background()
	for _, lot := range []struct{ code, qty, price string }{
		{"MSFT", "3", "300"},
		{"AAPL", "10", "100"},
		{"AAPL", "5", "130"},
	} {
		_, err := store.AddInvestment(ctx, day(2024, 1, 1), lot.code, dec(lot.qty), dec(lot.price))
		require.NoError(t, err)
	}
}

func TestInvestmentPositions(t *testing.T) {
	ctx := context.Background()
	store, cleanup := createTestStorage(t)
	defer cleanup()

	positions, err := store.InvestmentPositions(ctx)
	require.NoError(t, err)
	assert.Empty(t, positions)

	addLots(t, store)

	positions, err = store.InvestmentPositions(ctx)
	require.NoError(t, err)
	require.Len(t, positions, 2)

	assert.Equal(t, "AAPL", positions[0].Code)
	assert.Equal(t, 2, positions[0].Lots)
	assert.True(t, positions[0].Quantity.Equal(dec("15")))
	assert.True(t, positions[0].CostBasis.Equal(dec("1650")))
	assert.True(t, positions[0].AverageBuyPrice().Decimal.Equal(dec("110")))

	assert.Equal(t, "MSFT", positions[1].Code)
	assert.True(t, positions[1].CostBasis.Equal(dec("900")))
}

func TestInvestmentPositionSummaryDegradesPerRow(t *testing.T) {
	ctx := context.Background()
	store, cleanup := createTestStorageWith(t, Options{QuoteConcurrency: 2})
	defer cleanup()

	addLots(t, store)

	errDown := errors.New("quote service down")
	prices := service.PriceSourceFunc(func(_ context.Context, symbol string) (decimal.Decimal, error) {
		if symbol == "MSFT" {
			return decimal.Zero, errDown
		}
		return dec("120"), nil
	})

	summaries, err := store.InvestmentPositionSummary(ctx, prices)
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	aapl := summaries[0]
	require.NoError(t, aapl.QuoteErr)
	assert.True(t, aapl.CurrentPrice.Decimal.Equal(dec("120")))
	assert.True(t, aapl.CurrentValue.Decimal.Equal(dec("1800")))
	assert.True(t, aapl.Profit.Decimal.Equal(dec("150")))
	assert.True(t, aapl.ProfitPercent.Decimal.Equal(dec("9.09")), "got %s", aapl.ProfitPercent.Decimal)

	msft := summaries[1]
	require.ErrorIs(t, msft.QuoteErr, common.ErrQuoteUnavailable)
	require.ErrorIs(t, msft.QuoteErr, errDown)
	assert.False(t, msft.CurrentPrice.Valid)
	assert.False(t, msft.Profit.Valid)
	assert.True(t, msft.AvgBuyPrice.Valid)
	assert.True(t, msft.CostBasis.Equal(dec("900")))
}

func TestInvestmentPositionSummaryWithoutSource(t *testing.T) {
	ctx := context.Background()
	store, cleanup := createTestStorage(t)
	defer cleanup()

	addLots(t, store)

	summaries, err := store.InvestmentPositionSummary(ctx, nil)
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	for _, s := range summaries {
		assert.ErrorIs(t, s.QuoteErr, common.ErrQuoteUnavailable)
	}
}

func TestZeroQuantityPosition(t *testing.T) {
	ctx := context.Background()
	store, cleanup := createTestStorage(t)
	defer cleanup()

	_, err := store.AddInvestment(ctx, day(2024, 1, 1), "GME", dec("5"), dec("20"))
	require.NoError(t, err)
	_, err = store.AddInvestment(ctx, day(2024, 2, 1), "GME", dec("-5"), dec("30"))
	require.NoError(t, err)

	positions, err := store.InvestmentPositions(ctx)
	require.NoError(t, err)
	require.Len(t, positions, 1)
	assert.True(t, positions[0].Quantity.IsZero())
	assert.False(t, positions[0].AverageBuyPrice().Valid)
}
