package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/ledger/internal/model"
)

// Unavailable is printed in place of a value that could not be computed.
const Unavailable = "n/a"

// FormatMoney renders an amount with two decimals, red when negative.
func FormatMoney(d decimal.Decimal) string {
	s := d.StringFixed(2)
	if d.IsNegative() {
		return LossStyle.Render(s)
	}
	return s
}

// FormatNull renders an optional value with the given decimals, or Unavailable.
func FormatNull(d decimal.NullDecimal, places int32) string {
	if !d.Valid {
		return SubtleStyle.Render(Unavailable)
	}
	return d.Decimal.StringFixed(places)
}

// FormatProfit renders an optional profit figure colored by sign.
func FormatProfit(d decimal.NullDecimal, places int32, suffix string) string {
	if !d.Valid {
		return SubtleStyle.Render(Unavailable)
	}
	s := d.Decimal.StringFixed(places) + suffix
	if d.Decimal.IsNegative() {
		return LossStyle.Render(s)
	}
	return GainStyle.Render(s)
}

func newTable(w io.Writer, headers ...string) *tabwriter.Writer {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	styled := make([]string, len(headers))
	rules := make([]string, len(headers))
	for i, h := range headers {
		styled[i] = HeaderStyle.Render(h)
		rules[i] = strings.Repeat("-", max(len(h), 4))
	}
	fmt.Fprintln(tw, strings.Join(styled, "\t"))
	fmt.Fprintln(tw, strings.Join(rules, "\t"))
	return tw
}

// WriteCategories prints categories as a table.
func WriteCategories(w io.Writer, categories []model.Category) error {
	tw := newTable(w, "ID", "Name", "Kind", "Description")
	for _, c := range categories {
		desc := c.Description
		if desc == "" {
			desc = SubtleStyle.Render("(no description)")
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", c.ID, c.Name, c.Kind, desc)
	}
	return tw.Flush()
}

// WriteRecords prints records as a table, resolving category names through names.
func WriteRecords(w io.Writer, records []model.Record, names map[int64]string) error {
	tw := newTable(w, "ID", "Date", "Description", "Amount", "Category")
	for _, r := range records {
		category := names[r.CategoryID]
		switch {
		case r.CategoryID == 0:
			category = SubtleStyle.Render("(none)")
		case category == "":
			category = fmt.Sprintf("#%d", r.CategoryID)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
			r.ID, r.Date.Format(model.DateLayout), r.Description, FormatMoney(r.Amount), category)
	}
	return tw.Flush()
}

// WriteInvestments prints trade lots as a table.
func WriteInvestments(w io.Writer, investments []model.Investment) error {
	tw := newTable(w, "ID", "Date", "Code", "Quantity", "Unit Price", "Cost")
	for _, i := range investments {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			i.ID, i.Date.Format(model.DateLayout), i.Code, i.Quantity.String(),
			i.UnitPrice.StringFixed(2), FormatMoney(i.Cost()))
	}
	return tw.Flush()
}

// WriteSummary prints valued positions, one row per code.
func WriteSummary(w io.Writer, summaries []model.PositionSummary) error {
	tw := newTable(w, "Code", "Qty", "Avg Buy Price", "Current Price", "Total In", "Current Value", "P/L", "%P/L")
	for _, s := range summaries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			s.Code,
			s.Quantity.String(),
			FormatNull(s.AvgBuyPrice, 2),
			FormatNull(s.CurrentPrice, 2),
			s.CostBasis.StringFixed(2),
			FormatNull(s.CurrentValue, 2),
			FormatProfit(s.Profit, 2, ""),
			FormatProfit(s.ProfitPercent, 2, "%"))
	}
	return tw.Flush()
}
