package storage

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/ledger/internal/model"
)

// SeedOptions configures SeedDummyData.
type SeedOptions struct {
	// Now anchors generated dates; zero means time.Now.
	Now time.Time
	// Rand drives amounts and dates; nil uses a fixed seed.
	Rand *rand.Rand
	// Progress, if set, is called after every inserted row.
	Progress func()
	// Records is the number of records to generate.
	Records int
	// LotRounds repeats the sample trade lots this many times.
	LotRounds int
}

// SeedResult counts the rows SeedDummyData inserted.
type SeedResult struct {
	Categories  int
	Records     int
	Investments int
}

var seedCategories = []struct{ name, kind, description string }{
	{"Work", "I", "income from work"},
	{"Allowance", "I", "allowance from parents"},
	{"Groceries", "E", "groceries"},
	{"Entertainment", "E", "eating out, experiences, spending for fun"},
	{"Gifts", "E", "buying presents for others"},
}

var seedLots = []struct {
	code            string
	quantity, price int64
}{
	{"IVV", 10, 600},
	{"VGS.AX", 5, 600},
	{"IVV", 10, 600},
}

// SeedTotal returns how many rows SeedDummyData will insert for opts.
func SeedTotal(opts SeedOptions) int {
	return len(seedCategories) + opts.Records + opts.LotRounds*len(seedLots)
}

// SeedDummyData fills the ledger with sample categories, records and lots.
// Income records are positive and expenditure records negative.
func (s *SQLiteStorage) SeedDummyData(ctx context.Context, opts SeedOptions) (SeedResult, error) {
	var result SeedResult
	if err := s.checkOpen(ctx); err != nil {
		return result, err
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewPCG(1, 2))
	}
	tick := func() {
		if opts.Progress != nil {
			opts.Progress()
		}
	}

	categories := make([]model.Category, 0, len(seedCategories))
	for _, c := range seedCategories {
		cat, err := s.AddCategory(ctx, c.name, c.description, c.kind)
		if err != nil {
			return result, fmt.Errorf("failed to seed category %q: %w", c.name, err)
		}
		categories = append(categories, *cat)
		result.Categories++
		tick()
	}

	start := model.DateOf(opts.Now).AddDate(0, 0, -100)
	for i := range opts.Records {
		cat := categories[opts.Rand.IntN(len(categories))]
		amount := decimal.New(opts.Rand.Int64N(100000)+1, -2)
		if cat.Kind == model.KindExpenditure {
			amount = amount.Neg()
		}
		date := start.AddDate(0, 0, opts.Rand.IntN(100))
		if _, err := s.AddRecord(ctx, date, fmt.Sprintf("test data record %d", i), amount, cat.ID); err != nil {
			return result, fmt.Errorf("failed to seed record %d: %w", i, err)
		}
		result.Records++
		tick()
	}

	lotDate := model.DateOf(opts.Now).AddDate(0, -1, 0)
	for range opts.LotRounds {
		for _, lot := range seedLots {
			if _, err := s.AddInvestment(ctx, lotDate, lot.code,
				decimal.NewFromInt(lot.quantity), decimal.NewFromInt(lot.price)); err != nil {
				return result, fmt.Errorf("failed to seed investment %s: %w", lot.code, err)
			}
			result.Investments++
			tick()
		}
	}

	slog.Info("seeded dummy data",
		"categories", result.Categories,
		"records", result.Records,
		"investments", result.Investments)
	return result, nil
}
