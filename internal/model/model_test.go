package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/ledger/internal/common"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNewCategoryKindGuard(t *testing.T) {
	tests := []struct {
		kind    string
		want    CategoryKind
		wantErr bool
	}{
		{kind: "I", want: KindIncome},
		{kind: "i", want: KindIncome},
		{kind: "E", want: KindExpenditure},
		{kind: "e", want: KindExpenditure},
		{kind: "Income", want: KindIncome},
		{kind: "expenditure", want: KindExpenditure},
		{kind: "X", wantErr: true},
		{kind: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			cat, err := NewCategory("Work", "salary", tt.kind)
			if tt.wantErr {
				assert.ErrorIs(t, err, common.ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, cat.Kind)
		})
	}
}

func TestNewCategoryRequiresName(t *testing.T) {
	_, err := NewCategory("   ", "", "I")
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestCategoryNormalized(t *testing.T) {
	cat, err := Category{ID: 3, Name: "  Salary ", Kind: "income", Description: " pay "}.Normalized()
	require.NoError(t, err)
	assert.Equal(t, Category{ID: 3, Name: "Salary", Kind: KindIncome, Description: "pay"}, cat)

	_, err = Category{Name: "Salary", Kind: "Z"}.Normalized()
	assert.ErrorIs(t, err, common.ErrValidation)

	_, err = Category{Name: " ", Kind: KindIncome}.Normalized()
	assert.ErrorIs(t, err, common.ErrValidation)
	assert.ErrorIs(t, Category{Name: " ", Kind: KindIncome}.Validate(), common.ErrValidation)
}

func TestEntityRoundTrip(t *testing.T) {
	entities := []Entity{
		Category{ID: 3, Name: "Groceries", Description: "food", Kind: KindExpenditure},
		Category{Name: "Uncreated", Kind: KindIncome},
		Record{ID: 7, Date: day(2024, 1, 1), Description: "shop", Amount: decimal.RequireFromString("-50.25"), CategoryID: 3},
		Record{ID: 8, Date: day(2024, 2, 1), Description: "detached", Amount: decimal.NewFromInt(10)},
		Investment{ID: 2, Date: day(2025, 1, 10), Code: "IVV", Quantity: decimal.RequireFromString("1.5"), UnitPrice: decimal.NewFromInt(600)},
	}

	for _, e := range entities {
		t.Run(e.Table(), func(t *testing.T) {
			fields := e.Fields(true)
			var got Entity
			var err error
			switch e.(type) {
			case Category:
				got, err = CategoryFromFields(fields)
			case Record:
				got, err = RecordFromFields(fields)
			case Investment:
				got, err = InvestmentFromFields(fields)
			}
			require.NoError(t, err)
			assert.Equal(t, e, got)
		})
	}
}

func TestFieldsOrder(t *testing.T) {
	cat := Category{ID: 1, Name: "Work", Kind: KindIncome, Description: "pay"}
	assert.Equal(t, []any{int64(1), "Work", "I", "pay"}, cat.Fields(true))
	assert.Equal(t, []any{"Work", "I", "pay"}, cat.Fields(false))

	rec := Record{Date: day(2024, 1, 1), Description: "x", Amount: decimal.NewFromInt(5), CategoryID: 2}
	assert.Equal(t, []any{nil, day(2024, 1, 1), "x", decimal.NewFromInt(5), int64(2)}, rec.Fields(true))
	assert.Len(t, rec.Fields(false), 4)

	inv := Investment{ID: 9, Date: day(2024, 1, 1), Code: "VGS.AX", Quantity: decimal.NewFromInt(5), UnitPrice: decimal.NewFromInt(100)}
	assert.Equal(t, "VGS.AX", inv.Fields(false)[1])
}

func TestFromFieldsAcceptsDriverValues(t *testing.T) {
	rec, err := RecordFromFields([]any{int64(4), "2024-03-05 00:00:00+00:00", []byte("coffee"), float64(-3.5), nil})
	require.NoError(t, err)
	assert.Equal(t, day(2024, 3, 5), rec.Date)
	assert.Equal(t, "coffee", rec.Description)
	assert.True(t, rec.Amount.Equal(decimal.RequireFromString("-3.5")))
	assert.Zero(t, rec.CategoryID)

	inv, err := InvestmentFromFields([]any{int64(1), time.Date(2024, 3, 5, 13, 0, 0, 0, time.UTC), "IVV", int64(10), "600.5"})
	require.NoError(t, err)
	assert.Equal(t, day(2024, 3, 5), inv.Date)
	assert.True(t, inv.Cost().Equal(decimal.NewFromInt(6005)))

	_, err = CategoryFromFields([]any{int64(1), "Bad", "X", nil})
	assert.ErrorIs(t, err, common.ErrValidation)

	_, err = CategoryFromFields([]any{int64(1), "Short"})
	assert.ErrorIs(t, err, common.ErrValidation)

	_, err = RecordFromFields([]any{int64(1), 3.14, "x", 1, nil})
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestNewInvestmentNormalizesCode(t *testing.T) {
	inv, err := NewInvestment(time.Date(2024, 5, 1, 15, 30, 0, 0, time.Local), "  ivv ", decimal.NewFromInt(1), decimal.NewFromInt(2))
	require.NoError(t, err)
	assert.Equal(t, "IVV", inv.Code)
	assert.Equal(t, day(2024, 5, 1), inv.Date)

	_, err = NewInvestment(day(2024, 5, 1), " ", decimal.NewFromInt(1), decimal.NewFromInt(2))
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestNewRecordValidation(t *testing.T) {
	_, err := NewRecord(time.Time{}, "x", decimal.Zero, 1)
	assert.ErrorIs(t, err, common.ErrValidation)

	_, err = NewRecord(day(2024, 1, 1), "  ", decimal.Zero, 1)
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestKindFilter(t *testing.T) {
	f, err := ParseKindFilter("income")
	require.NoError(t, err)
	assert.True(t, f.Matches(KindIncome))
	assert.False(t, f.Matches(KindExpenditure))

	f, err = ParseKindFilter("")
	require.NoError(t, err)
	assert.True(t, f.Matches(KindExpenditure))

	_, err = ParseKindFilter("both")
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestSummarize(t *testing.T) {
	price := decimal.NewFromInt(700)

	t.Run("values a position", func(t *testing.T) {
		p := Position{Code: "IVV", Quantity: decimal.NewFromInt(20), CostBasis: decimal.NewFromInt(12000)}
		s := Summarize(p, &price, nil)
		assert.True(t, s.AvgBuyPrice.Valid)
		assert.True(t, s.AvgBuyPrice.Decimal.Equal(decimal.NewFromInt(600)))
		assert.True(t, s.CurrentValue.Decimal.Equal(decimal.NewFromInt(14000)))
		assert.True(t, s.Profit.Decimal.Equal(decimal.NewFromInt(2000)))
		assert.True(t, s.ProfitPercent.Decimal.Equal(decimal.RequireFromString("16.67")))
	})

	t.Run("zero quantity does not divide", func(t *testing.T) {
		p := Position{Code: "IVV", Quantity: decimal.Zero, CostBasis: decimal.Zero}
		s := Summarize(p, &price, nil)
		assert.False(t, s.AvgBuyPrice.Valid)
		assert.False(t, s.ProfitPercent.Valid)
		assert.True(t, s.CurrentValue.Valid)
	})

	t.Run("quote failure degrades the row", func(t *testing.T) {
		p := Position{Code: "IVV", Quantity: decimal.NewFromInt(1), CostBasis: decimal.NewFromInt(5)}
		s := Summarize(p, nil, common.ErrQuoteUnavailable)
		assert.ErrorIs(t, s.QuoteErr, common.ErrQuoteUnavailable)
		assert.False(t, s.CurrentPrice.Valid)
		assert.True(t, s.AvgBuyPrice.Valid)
	})
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, day(2024, 2, 29), d)

	_, err = ParseDate("29/02/2024")
	assert.ErrorIs(t, err, common.ErrValidation)
}
