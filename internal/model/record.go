package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/ledger/internal/common"
)

// Record is a single ledger transaction. Whether it counts as income or
// expenditure is decided by its category's kind, not by the amount's sign.
// CategoryID is zero when the category has been detached.
type Record struct {
	Date        time.Time
	Description string
	Amount      decimal.Decimal
	ID          int64
	CategoryID  int64
}

// NewRecord builds an uncreated record.
func NewRecord(date time.Time, description string, amount decimal.Decimal, categoryID int64) (Record, error) {
	if date.IsZero() {
		return Record{}, fmt.Errorf("%w: record date is required", common.ErrValidation)
	}
	description = strings.TrimSpace(description)
	if description == "" {
		return Record{}, fmt.Errorf("%w: record description is required", common.ErrValidation)
	}
	return Record{
		Date:        DateOf(date),
		Description: description,
		Amount:      amount,
		CategoryID:  categoryID,
	}, nil
}

// Table implements Entity.
func (Record) Table() string { return "record" }

// Fields returns id, date, description, amount, category_id.
func (r Record) Fields(includeID bool) []any {
	fields := []any{r.Date, r.Description, r.Amount, idField(r.CategoryID)}
	if includeID {
		return append([]any{idField(r.ID)}, fields...)
	}
	return fields
}

func (Record) entity() {}

// RecordFromFields rebuilds a record from id, date, description, amount, category_id.
func RecordFromFields(values []any) (Record, error) {
	if err := checkArity("record", values, 5); err != nil {
		return Record{}, err
	}
	id, err := asInt64(values[0])
	if err != nil {
		return Record{}, fmt.Errorf("record id: %w", err)
	}
	date, err := asDate(values[1])
	if err != nil {
		return Record{}, fmt.Errorf("record date: %w", err)
	}
	desc, err := asString(values[2])
	if err != nil {
		return Record{}, fmt.Errorf("record description: %w", err)
	}
	amount, err := AsDecimal(values[3])
	if err != nil {
		return Record{}, fmt.Errorf("record amount: %w", err)
	}
	catID, err := asInt64(values[4])
	if err != nil {
		return Record{}, fmt.Errorf("record category: %w", err)
	}
	return Record{ID: id, Date: date, Description: desc, Amount: amount, CategoryID: catID}, nil
}

// RecordFilter narrows FilterRecords. Nil or zero bounds are unbounded; a
// non-positive CategoryID matches any assigned category.
type RecordFilter struct {
	MinAmount  *decimal.Decimal
	MaxAmount  *decimal.Decimal
	StartDate  time.Time
	EndDate    time.Time
	Contains   string
	CategoryID int64
}
