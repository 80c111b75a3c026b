package cli

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/ledger/internal/model"
)

func TestFormatHelpers(t *testing.T) {
	assert.Contains(t, FormatMoney(decimal.RequireFromString("12.5")), "12.50")
	assert.Contains(t, FormatMoney(decimal.RequireFromString("-3")), "-3.00")
	assert.Contains(t, FormatNull(decimal.NullDecimal{}, 2), Unavailable)
	assert.Contains(t, FormatNull(decimal.NewNullDecimal(decimal.RequireFromString("1.234")), 2), "1.23")
	assert.Contains(t, FormatProfit(decimal.NewNullDecimal(decimal.RequireFromString("9.09")), 2, "%"), "9.09%")
	assert.Contains(t, FormatSuccess("saved"), "saved")
	assert.Contains(t, FormatError("failed"), "failed")
	assert.Contains(t, RenderBox("Totals", "income 10"), "income 10")
}

func TestWriteRecords(t *testing.T) {
	var buf bytes.Buffer
	records := []model.Record{
		{ID: 2, Date: model.DateOf(testDate()), Description: "Groceries", Amount: decimal.RequireFromString("-42.1"), CategoryID: 7},
		{ID: 1, Date: model.DateOf(testDate()), Description: "Orphan", Amount: decimal.NewFromInt(5)},
		{ID: 3, Date: model.DateOf(testDate()), Description: "Unknown", Amount: decimal.NewFromInt(5), CategoryID: 99},
	}

	require.NoError(t, WriteRecords(&buf, records, map[int64]string{7: "Food"}))

	out := buf.String()
	assert.Contains(t, out, "Description")
	assert.Contains(t, out, "2024-03-09")
	assert.Contains(t, out, "-42.10")
	assert.Contains(t, out, "Food")
	assert.Contains(t, out, "(none)")
	assert.Contains(t, out, "#99")
	assert.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 5)
}

func TestWriteSummary(t *testing.T) {
	price := decimal.NewFromInt(120)
	pos := model.Position{Code: "AAPL", Quantity: decimal.NewFromInt(15), CostBasis: decimal.NewFromInt(1650), Lots: 2}
	summaries := []model.PositionSummary{
		model.Summarize(pos, &price, nil),
		model.Summarize(model.Position{Code: "MSFT", Quantity: decimal.NewFromInt(1), CostBasis: decimal.NewFromInt(300)}, nil, errors.New("down")),
	}

	var buf bytes.Buffer
	require.NoError(t, WriteSummary(&buf, summaries))

	out := buf.String()
	for _, want := range []string{"Avg Buy Price", "%P/L", "AAPL", "110.00", "1800.00", "150.00", "9.09%", "MSFT", Unavailable} {
		assert.Contains(t, out, want)
	}
}

func TestWriteCategoriesAndInvestments(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCategories(&buf, []model.Category{
		{ID: 1, Name: "Salary", Kind: model.KindIncome},
	}))
	assert.Contains(t, buf.String(), "Salary")
	assert.Contains(t, buf.String(), "(no description)")

	buf.Reset()
	require.NoError(t, WriteInvestments(&buf, []model.Investment{
		{ID: 1, Date: model.DateOf(testDate()), Code: "VWCE", Quantity: decimal.NewFromInt(3), UnitPrice: decimal.RequireFromString("110.25")},
	}))
	assert.Contains(t, buf.String(), "VWCE")
	assert.Contains(t, buf.String(), "330.75")
}

func TestInterruptHandlerMessage(t *testing.T) {
	var buf bytes.Buffer
	h := NewInterruptHandler(&buf, "Import")
	assert.False(t, h.WasInterrupted())

	h.markInterrupted()
	h.markInterrupted()

	assert.True(t, h.WasInterrupted())
	assert.Equal(t, 1, strings.Count(buf.String(), "Import interrupted!"))
}

func testDate() time.Time {
	return time.Date(2024, 3, 9, 15, 4, 0, 0, time.UTC)
}
