// Package service defines the interfaces shared by the ledger's components.
package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/ledger/internal/model"
)

// PriceSource returns the current price of a ticker symbol.
type PriceSource interface {
	Price(ctx context.Context, symbol string) (decimal.Decimal, error)
}

// PriceSourceFunc adapts a function to PriceSource.
type PriceSourceFunc func(ctx context.Context, symbol string) (decimal.Decimal, error)

// Price implements PriceSource.
func (f PriceSourceFunc) Price(ctx context.Context, symbol string) (decimal.Decimal, error) {
	return f(ctx, symbol)
}

// Categories covers category mutations and lookups.
type Categories interface {
	AddCategory(ctx context.Context, name, description, kind string) (*model.Category, error)
	UpdateCategory(ctx context.Context, category model.Category) error
	DeleteCategory(ctx context.Context, id int64) error
	GetCategoryByID(ctx context.Context, id int64) (*model.Category, error)
	GetCategoryByName(ctx context.Context, name string) (*model.Category, error)
	ListCategories(ctx context.Context, filter model.KindFilter) ([]model.Category, error)
}

// Records covers ledger transactions.
type Records interface {
	AddRecord(ctx context.Context, date time.Time, description string, amount decimal.Decimal, categoryID int64) (*model.Record, error)
	UpdateRecord(ctx context.Context, record model.Record) error
	DeleteRecord(ctx context.Context, id int64) error
	GetRecordByID(ctx context.Context, id int64) (*model.Record, error)
	ListRecordsPage(ctx context.Context, page, pageSize int) ([]model.Record, error)
	CountRecordPages(ctx context.Context, pageSize int) (int, error)
	FilterRecords(ctx context.Context, filter model.RecordFilter) ([]model.Record, error)
}

// Investments covers trade lots and derived positions.
type Investments interface {
	AddInvestment(ctx context.Context, date time.Time, code string, quantity, unitPrice decimal.Decimal) (*model.Investment, error)
	UpdateInvestment(ctx context.Context, investment model.Investment) error
	DeleteInvestment(ctx context.Context, id int64) error
	GetInvestmentByID(ctx context.Context, id int64) (*model.Investment, error)
	ListInvestmentsPage(ctx context.Context, page, pageSize int) ([]model.Investment, error)
	CountInvestmentPages(ctx context.Context, pageSize int) (int, error)
	FilterInvestments(ctx context.Context, filter model.InvestmentFilter) ([]model.Investment, error)
	InvestmentPositions(ctx context.Context) ([]model.Position, error)
	InvestmentPositionSummary(ctx context.Context, prices PriceSource) ([]model.PositionSummary, error)
}

// Totals covers the scalar aggregations.
type Totals interface {
	SumIncome(ctx context.Context, start, end time.Time) (decimal.Decimal, error)
	SumExpenditure(ctx context.Context, start, end time.Time) (decimal.Decimal, error)
	SumCategory(ctx context.Context, categoryID int64, start, end time.Time) (decimal.Decimal, error)
}

// Ledger is the full surface the presentation layer may call.
type Ledger interface {
	Categories
	Records
	Investments
	Totals

	Migrate(ctx context.Context) error
	Close() error
}
