package model

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Position aggregates every lot sharing a code.
type Position struct {
	Code      string
	Quantity  decimal.Decimal
	CostBasis decimal.Decimal
	Lots      int
}

// AverageBuyPrice is cost basis over quantity; invalid when quantity is zero.
func (p Position) AverageBuyPrice() decimal.NullDecimal {
	if p.Quantity.IsZero() {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(p.CostBasis.DivRound(p.Quantity, 4))
}

// PositionSummary is a position valued at a live price. The price-derived
// fields are invalid when QuoteErr is set.
type PositionSummary struct {
	QuoteErr      error
	AvgBuyPrice   decimal.NullDecimal
	CurrentPrice  decimal.NullDecimal
	CurrentValue  decimal.NullDecimal
	Profit        decimal.NullDecimal
	ProfitPercent decimal.NullDecimal
	Position
}

// Summarize values p at price. A nil price leaves the live fields invalid.
func Summarize(p Position, price *decimal.Decimal, quoteErr error) PositionSummary {
	s := PositionSummary{
		Position:    p,
		AvgBuyPrice: p.AverageBuyPrice(),
		QuoteErr:    quoteErr,
	}
	if price == nil || quoteErr != nil {
		return s
	}

	value := p.Quantity.Mul(*price)
	profit := value.Sub(p.CostBasis)
	s.CurrentPrice = decimal.NewNullDecimal(*price)
	s.CurrentValue = decimal.NewNullDecimal(value)
	s.Profit = decimal.NewNullDecimal(profit)
	if !p.CostBasis.IsZero() {
		s.ProfitPercent = decimal.NewNullDecimal(profit.Mul(hundred).DivRound(p.CostBasis.Abs(), 2))
	}
	return s
}
