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

func TestAddInvestment(t *testing.T) {
	ctx := context.Background()
	store, cleanup := createTestStorage(t)
	defer cleanup()

	inv, err := store.AddInvestment(ctx, day(2024, 4, 2), " aapl ", dec("10"), dec("170.25"))
	require.NoError(t, err)
	assert.Equal(t, "AAPL", inv.Code)

	got, err := store.GetInvestmentByID(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, "AAPL", got.Code)
	assert.True(t, got.Date.Equal(day(2024, 4, 2)))
	assert.True(t, got.Quantity.Equal(dec("10")))
	assert.True(t, got.UnitPrice.Equal(dec("170.25")))

	_, err = store.AddInvestment(ctx, day(2024, 4, 2), "", dec("1"), dec("1"))
	require.ErrorIs(t, err, common.ErrValidation)
}

func TestFilterInvestmentsDateBoundsInclusive(t *testing.T) {
	ctx := context.Background()
	store, cleanup := createTestStorage(t)
	defer cleanup()

	for _, d := range []time.Time{
		day(2023, 12, 31),
		day(2024, 1, 1),
		day(2024, 1, 10),
		day(2024, 1, 20),
		day(2024, 1, 21),
	} {
		_, err := store.AddInvestment(ctx, d, "VWCE", dec("1"), dec("100"))
		require.NoError(t, err)
	}

	investments, err := store.FilterInvestments(ctx, model.InvestmentFilter{
		StartDate: day(2024, 1, 1),
		EndDate:   day(2024, 1, 20),
	})
	require.NoError(t, err)
	require.Len(t, investments, 3)
	assert.True(t, investments[0].Date.Equal(day(2024, 1, 20)))
	assert.True(t, investments[2].Date.Equal(day(2024, 1, 1)))
}

func TestFilterInvestments(t *testing.T) {
	ctx := context.Background()
	store, cleanup := createTestStorage(t)
	defer cleanup()

	for _, lot := range []struct {
		code, qty, price string
		date             time.Time
	}{
		{"AAPL", "10", "5", day(2024, 1, 1)},
		{"AAPL", "2", "100", day(2024, 1, 2)},
		{"MSFT", "1", "300", day(2024, 1, 3)},
	} {
		_, err := store.AddInvestment(ctx, lot.date, lot.code, dec(lot.qty), dec(lot.price))
		require.NoError(t, err)
	}

	tests := []struct {
		name   string
		filter model.InvestmentFilter
		want   int
	}{
		{name: "unbounded", filter: model.InvestmentFilter{}, want: 3},
		{name: "exact cost", filter: model.InvestmentFilter{MinCost: decPtr("50"), MaxCost: decPtr("50")}, want: 1},
		{name: "cost range", filter: model.InvestmentFilter{MinCost: decPtr("50"), MaxCost: decPtr("200")}, want: 2},
		{name: "min cost only", filter: model.InvestmentFilter{MinCost: decPtr("201")}, want: 1},
		{name: "code substring", filter: model.InvestmentFilter{Code: "AP"}, want: 2},
		{name: "code is case-sensitive", filter: model.InvestmentFilter{Code: "ap"}, want: 0},
		{name: "all predicates", filter: model.InvestmentFilter{Code: "AAPL", MinCost: decPtr("100"), StartDate: day(2024, 1, 2), EndDate: day(2024, 1, 2)}, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			investments, err := store.FilterInvestments(ctx, tt.filter)
			require.NoError(t, err)
			assert.Len(t, investments, tt.want)
		})
	}
}

func TestFilterInvestmentsCostBoundIsExact(t *testing.T) {
	ctx := context.Background()
	store, cleanup := createTestStorage(t)
	defer cleanup()

	// 3 x 0.1 is 0.30000000000000004 in binary floating point.
	lot, err := store.AddInvestment(ctx, day(2024, 1, 1), "ABC", dec("3"), dec("0.1"))
	require.NoError(t, err)
	require.True(t, lot.Cost().Equal(dec("0.3")))

	tests := []struct {
		name   string
		filter model.InvestmentFilter
		want   int
	}{
		{name: "exact bound", filter: model.InvestmentFilter{MinCost: decPtr("0.3"), MaxCost: decPtr("0.3")}, want: 1},
		{name: "max only", filter: model.InvestmentFilter{MaxCost: decPtr("0.3")}, want: 1},
		{name: "min only", filter: model.InvestmentFilter{MinCost: decPtr("0.3")}, want: 1},
		{name: "just above", filter: model.InvestmentFilter{MinCost: decPtr("0.3000001")}, want: 0},
		{name: "just below", filter: model.InvestmentFilter{MaxCost: decPtr("0.2999999")}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			investments, err := store.FilterInvestments(ctx, tt.filter)
			require.NoError(t, err)
			assert.Len(t, investments, tt.want)
		})
	}
}

func TestInvestmentPagination(t *testing.T) {
	ctx := context.Background()
	store, cleanup := createTestStorage(t)
	defer cleanup()

	pages, err := store.CountInvestmentPages(ctx, 15)
	require.NoError(t, err)
	assert.Zero(t, pages)

	for i := 1; i <= 16; i++ {
		_, err := store.AddInvestment(ctx, day(2024, 2, i), "VWCE", dec("1"), dec("100"))
		require.NoError(t, err)
	}

	pages, err = store.CountInvestmentPages(ctx, 15)
	require.NoError(t, err)
	assert.Equal(t, 2, pages)

	first, err := store.ListInvestmentsPage(ctx, 0, 15)
	require.NoError(t, err)
	require.Len(t, first, 15)
	assert.True(t, first[0].Date.Equal(day(2024, 2, 16)))

	second, err := store.ListInvestmentsPage(ctx, 1, 15)
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.True(t, second[0].Date.Equal(day(2024, 2, 1)))
}

func TestUpdateAndDeleteInvestment(t *testing.T) {
	ctx := context.Background()
	store, cleanup := createTestStorage(t)
	defer cleanup()

	inv, err := store.AddInvestment(ctx, day(2024, 1, 1), "AAPL", dec("1"), dec("150"))
	require.NoError(t, err)

	inv.Code = "msft"
	inv.Quantity = dec("4")
	require.NoError(t, store.UpdateInvestment(ctx, *inv))

	got, err := store.GetInvestmentByID(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, "MSFT", got.Code)
	assert.True(t, got.Quantity.Equal(dec("4")))

	require.NoError(t, store.DeleteInvestment(ctx, inv.ID))
	require.ErrorIs(t, store.DeleteInvestment(ctx, inv.ID), common.ErrNotFound)
	require.ErrorIs(t, store.UpdateInvestment(ctx, *inv), common.ErrNotFound)

	_, err = store.GetInvestmentByID(ctx, inv.ID)
	require.ErrorIs(t, err, common.ErrNotFound)
}
