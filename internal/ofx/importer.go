package ofx

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Veraticus/ledger/internal/model"
	"github.com/Veraticus/ledger/internal/service"
)

// Assignment chooses a category for each imported entry by the sign of its amount.
type Assignment struct {
	IncomeCategoryID  int64
	ExpenseCategoryID int64
}

// CategoryFor returns the income category for positive amounts and the
// expense category otherwise.
func (a Assignment) CategoryFor(e Entry) int64 {
	if e.Record.Amount.IsPositive() {
		return a.IncomeCategoryID
	}
	return a.ExpenseCategoryID
}

// ImportResult counts what Import did.
type ImportResult struct {
	Imported   int
	Duplicates int
}

// Import adds entries to the ledger, skipping any record already present with
// the same date, description and amount. progress, if set, is called once
// per entry.
func Import(ctx context.Context, records service.Records, entries []Entry, assign Assignment, progress func()) (ImportResult, error) {
	var result ImportResult
	for _, e := range entries {
		dup, err := isDuplicate(ctx, records, e.Record)
		if err != nil {
			return result, err
		}
		if dup {
			result.Duplicates++
			slog.Debug("skipping duplicate entry", "fitid", e.FITID, "description", e.Record.Description)
		} else {
			if _, err := records.AddRecord(ctx, e.Record.Date, e.Record.Description, e.Record.Amount, assign.CategoryFor(e)); err != nil {
				return result, fmt.Errorf("failed to import %s: %w", e.FITID, err)
			}
			result.Imported++
		}
		if progress != nil {
			progress()
		}
	}
	return result, nil
}

func isDuplicate(ctx context.Context, records service.Records, r model.Record) (bool, error) {
	amount := r.Amount
	existing, err := records.FilterRecords(ctx, model.RecordFilter{
		StartDate: r.Date,
		EndDate:   r.Date,
		MinAmount: &amount,
		MaxAmount: &amount,
		Contains:  r.Description,
	})
	if err != nil {
		return false, fmt.Errorf("failed to check for duplicates: %w", err)
	}
	for _, e := range existing {
		if e.Description == r.Description {
			return true, nil
		}
	}
	return false, nil
}
