package storage

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/Veraticus/ledger/internal/common"
	"github.com/Veraticus/ledger/internal/model"
	"github.com/Veraticus/ledger/internal/service"
)

// InvestmentPositions groups every lot by code, ordered by code.
func (s *SQLiteStorage) InvestmentPositions(ctx context.Context) ([]model.Position, error) {
	if err := s.checkOpen(ctx); err != nil {
		return nil, err
	}

	lots, err := queryInvestments(ctx, s.db,
		`SELECT `+investmentColumns+` FROM investment ORDER BY code, date, id`)
	if err != nil {
		return nil, err
	}

	var positions []model.Position
	for _, lot := range lots {
		if n := len(positions); n == 0 || positions[n-1].Code != lot.Code {
			positions = append(positions, model.Position{Code: lot.Code})
		}
		p := &positions[len(positions)-1]
		p.Quantity = p.Quantity.Add(lot.Quantity)
		p.CostBasis = p.CostBasis.Add(lot.Cost())
		p.Lots++
	}
	return positions, nil
}

// InvestmentPositionSummary values each position at the price reported by
// prices. A failed quote degrades only its own row.
func (s *SQLiteStorage) InvestmentPositionSummary(ctx context.Context, prices service.PriceSource) ([]model.PositionSummary, error) {
	positions, err := s.InvestmentPositions(ctx)
	if err != nil {
		return nil, err
	}

	summaries := make([]model.PositionSummary, len(positions))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.QuoteConcurrency)

	for i, p := range positions {
		g.Go(func() error {
			if prices == nil {
				summaries[i] = model.Summarize(p, nil, fmt.Errorf("%w: no price source", common.ErrQuoteUnavailable))
				return nil
			}
			price, err := prices.Price(gctx, p.Code)
			if err != nil {
				slog.Warn("quote unavailable", "code", p.Code, "error", err)
				summaries[i] = model.Summarize(p, nil, fmt.Errorf("%w: %s: %w", common.ErrQuoteUnavailable, p.Code, err))
				return nil
			}
			summaries[i] = model.Summarize(p, &price, nil)
			return nil
		})
	}

	// Workers never fail; quote errors are recorded per row.
	_ = g.Wait()

	return summaries, nil
}
