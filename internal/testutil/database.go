// Package testutil provides a seeded ledger for tests in higher packages.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/ledger/internal/model"
	"github.com/Veraticus/ledger/internal/storage"
)

// Category names seeded by SetupTestDB.
const (
	CategorySalary    = "Salary"
	CategoryGroceries = "Groceries"
	CategoryRent      = "Rent"
)

// TestDB is an in-memory ledger with a known set of categories.
type TestDB struct {
	Ledger     *storage.SQLiteStorage
	Categories map[string]model.Category
	t          *testing.T
}

// SetupTestDB creates a migrated in-memory ledger holding one income and two
// expenditure categories. It is closed when the test ends.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()
	return SetupTestDBWithOptions(t, storage.Options{})
}

// SetupTestDBWithOptions is SetupTestDB with explicit storage options.
func SetupTestDBWithOptions(t *testing.T, opts storage.Options) *TestDB {
	t.Helper()
	ctx := context.Background()

	ledger, err := storage.Open(ctx, ":memory:", opts)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		_ = ledger.Close()
	})

	db := &TestDB{
		Ledger:     ledger,
		Categories: make(map[string]model.Category),
		t:          t,
	}

	for _, c := range []struct{ name, kind string }{
		{CategorySalary, "I"},
		{CategoryGroceries, "E"},
		{CategoryRent, "E"},
	} {
		cat, err := ledger.AddCategory(ctx, c.name, c.name, c.kind)
		if err != nil {
			t.Fatalf("failed to seed category %q: %v", c.name, err)
		}
		db.Categories[c.name] = *cat
	}

	return db
}

// MustCategoryID returns the id of a seeded category or fails the test.
func (db *TestDB) MustCategoryID(name string) int64 {
	db.t.Helper()
	cat, ok := db.Categories[name]
	if !ok {
		db.t.Fatalf("category %q not seeded", name)
	}
	return cat.ID
}

// AddRecord inserts a record against a seeded category or fails the test.
func (db *TestDB) AddRecord(date time.Time, description, amount, category string) model.Record {
	db.t.Helper()
	rec, err := db.Ledger.AddRecord(context.Background(), date, description,
		decimal.RequireFromString(amount), db.MustCategoryID(category))
	if err != nil {
		db.t.Fatalf("failed to add record %q: %v", description, err)
	}
	return *rec
}

// AddInvestment inserts a lot or fails the test.
func (db *TestDB) AddInvestment(date time.Time, code, quantity, unitPrice string) model.Investment {
	db.t.Helper()
	inv, err := db.Ledger.AddInvestment(context.Background(), date, code,
		decimal.RequireFromString(quantity), decimal.RequireFromString(unitPrice))
	if err != nil {
		db.t.Fatalf("failed to add investment %q: %v", code, err)
	}
	return *inv
}

// Day returns midnight UTC on the given date.
func Day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
