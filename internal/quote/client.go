// Package quote fetches live prices from a Yahoo-finance style chart API.
package quote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/ledger/internal/common"
	"github.com/Veraticus/ledger/internal/model"
	"github.com/Veraticus/ledger/internal/service"
)

// DefaultBaseURL is the public chart endpoint.
const DefaultBaseURL = "https://query1.finance.yahoo.com/v8/finance/chart"

const userAgent = "Mozilla/5.0 (X11; Linux x86_64) ledger"

// Client implements service.PriceSource over HTTP.
type Client struct {
	httpClient *http.Client
	baseURL    string
	retry      common.RetryOptions
}

var _ service.PriceSource = (*Client)(nil)

// Config configures a Client. Zero values fall back to defaults.
type Config struct {
	HTTPClient *http.Client
	BaseURL    string
	Retry      common.RetryOptions
	Timeout    time.Duration
}

// NewClient builds a quote client.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}
	if cfg.Retry.MaxAttempts == 0 {
		cfg.Retry = common.RetryOptions{
			MaxAttempts:  3,
			InitialDelay: 200 * time.Millisecond,
			MaxDelay:     5 * time.Second,
			Multiplier:   2.0,
		}
	}
	return &Client{
		httpClient: cfg.HTTPClient,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		retry:      cfg.Retry,
	}
}

type chartResponse struct {
	Chart struct {
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
		Result []chartResult `json:"result"`
	} `json:"chart"`
}

type chartResult struct {
	Meta struct {
		Bid                *float64 `json:"bid"`
		Ask                *float64 `json:"ask"`
		RegularMarketPrice *float64 `json:"regularMarketPrice"`
		Symbol             string   `json:"symbol"`
	} `json:"meta"`
	Indicators struct {
		AdjClose []struct {
			AdjClose []*float64 `json:"adjclose"`
		} `json:"adjclose"`
	} `json:"indicators"`
}

// Price returns the current price of symbol: the bid/ask midpoint when both
// are quoted, else the regular market price, else the latest adjusted close.
func (c *Client) Price(ctx context.Context, symbol string) (decimal.Decimal, error) {
	symbol = model.NormalizeCode(symbol)
	if symbol == "" {
		return decimal.Zero, fmt.Errorf("%w: empty symbol", common.ErrQuoteUnavailable)
	}

	var result *chartResult
	err := common.WithRetry(ctx, func() error {
		var fetchErr error
		result, fetchErr = c.fetch(ctx, symbol)
		return fetchErr
	}, c.retry)
	if err != nil {
		slog.Debug("quote lookup failed", "symbol", symbol, "transient", common.IsRetryable(err), "error", err)
		return decimal.Zero, fmt.Errorf("%w: %s: %w", common.ErrQuoteUnavailable, symbol, err)
	}

	price, ok := pickPrice(result)
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %s: no price in response", common.ErrQuoteUnavailable, symbol)
	}

	slog.Debug("fetched quote", "symbol", symbol, "price", price.String())
	return price, nil
}

func (c *Client) fetch(ctx context.Context, symbol string) (*chartResult, error) {
	u := c.baseURL + "/" + url.PathEscape(symbol) + "?range=5d&interval=1d"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, &common.RetryableError{Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, &common.RetryableError{Err: ctx.Err()}
		}
		return nil, &common.RetryableError{Err: fmt.Errorf("request failed: %w", err), Retryable: true}
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, common.ErrRateLimit
	case resp.StatusCode >= 500:
		return nil, &common.RetryableError{Err: fmt.Errorf("server error: %d", resp.StatusCode), Retryable: true}
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &common.RetryableError{Err: fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))}
	}

	var chart chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&chart); err != nil {
		return nil, &common.RetryableError{Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	if chart.Chart.Error != nil {
		return nil, &common.RetryableError{Err: fmt.Errorf("%s: %s", chart.Chart.Error.Code, chart.Chart.Error.Description)}
	}
	if len(chart.Chart.Result) == 0 {
		return nil, &common.RetryableError{Err: fmt.Errorf("empty result for %s", symbol)}
	}
	return &chart.Chart.Result[0], nil
}

func pickPrice(r *chartResult) (decimal.Decimal, bool) {
	meta := r.Meta
	if meta.Bid != nil && meta.Ask != nil && *meta.Bid > 0 && *meta.Ask > 0 {
		mid := decimal.NewFromFloat(*meta.Bid).Add(decimal.NewFromFloat(*meta.Ask)).Div(decimal.NewFromInt(2))
		return mid, true
	}
	if meta.RegularMarketPrice != nil {
		return decimal.NewFromFloat(*meta.RegularMarketPrice), true
	}
	for _, series := range r.Indicators.AdjClose {
		for i := len(series.AdjClose) - 1; i >= 0; i-- {
			if v := series.AdjClose[i]; v != nil {
				return decimal.NewFromFloat(*v), true
			}
		}
	}
	return decimal.Zero, false
}
