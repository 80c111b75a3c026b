package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/ledger/internal/common"
)

// Investment is one trade lot. Positions are derived by grouping lots by code.
type Investment struct {
	Date      time.Time
	Code      string
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
	ID        int64
}

// NewInvestment builds an uncreated lot with an upper-cased code.
func NewInvestment(date time.Time, code string, quantity, unitPrice decimal.Decimal) (Investment, error) {
	if date.IsZero() {
		return Investment{}, fmt.Errorf("%w: investment date is required", common.ErrValidation)
	}
	code = NormalizeCode(code)
	if code == "" {
		return Investment{}, fmt.Errorf("%w: investment code is required", common.ErrValidation)
	}
	return Investment{
		Date:      DateOf(date),
		Code:      code,
		Quantity:  quantity,
		UnitPrice: unitPrice,
	}, nil
}

// NormalizeCode trims and upper-cases a ticker symbol.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Cost is quantity times unit price.
func (i Investment) Cost() decimal.Decimal {
	return i.Quantity.Mul(i.UnitPrice)
}

// Table implements Entity.
func (Investment) Table() string { return "investment" }

// Fields returns id, date, code, quantity, unit_price.
func (i Investment) Fields(includeID bool) []any {
	fields := []any{i.Date, i.Code, i.Quantity, i.UnitPrice}
	if includeID {
		return append([]any{idField(i.ID)}, fields...)
	}
	return fields
}

func (Investment) entity() {}

// InvestmentFromFields rebuilds a lot from id, date, code, quantity, unit_price.
func InvestmentFromFields(values []any) (Investment, error) {
	if err := checkArity("investment", values, 5); err != nil {
		return Investment{}, err
	}
	id, err := asInt64(values[0])
	if err != nil {
		return Investment{}, fmt.Errorf("investment id: %w", err)
	}
	date, err := asDate(values[1])
	if err != nil {
		return Investment{}, fmt.Errorf("investment date: %w", err)
	}
	code, err := asString(values[2])
	if err != nil {
		return Investment{}, fmt.Errorf("investment code: %w", err)
	}
	qty, err := AsDecimal(values[3])
	if err != nil {
		return Investment{}, fmt.Errorf("investment quantity: %w", err)
	}
	price, err := AsDecimal(values[4])
	if err != nil {
		return Investment{}, fmt.Errorf("investment unit price: %w", err)
	}
	return Investment{ID: id, Date: date, Code: code, Quantity: qty, UnitPrice: price}, nil
}

// InvestmentFilter narrows FilterInvestments. Nil or zero bounds are
// unbounded; Code is a case-sensitive substring.
type InvestmentFilter struct {
	MinCost   *decimal.Decimal
	MaxCost   *decimal.Decimal
	StartDate time.Time
	EndDate   time.Time
	Code      string
}
