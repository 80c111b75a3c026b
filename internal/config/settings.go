package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/Veraticus/ledger/internal/common"
	"github.com/Veraticus/ledger/internal/quote"
	"github.com/Veraticus/ledger/internal/storage"
)

// Configuration keys.
const (
	KeyDatabasePath     = "database.path"
	KeyDatabaseDriver   = "database.driver"
	KeyPageSize         = "ledger.page_size"
	KeyOnCategoryDelete = "ledger.on_category_delete"
	KeyQuotesBaseURL    = "quotes.base_url"
	KeyQuotesTimeout    = "quotes.timeout"
	KeyQuotesParallel   = "quotes.concurrency"
)

// DefaultPageSize is the number of rows a listing page shows.
const DefaultPageSize = 15

// Settings is the validated runtime configuration.
type Settings struct {
	DatabasePath     string
	Driver           string
	DeletePolicy     storage.DeletePolicy
	QuotesBaseURL    string
	PageSize         int
	QuoteConcurrency int
	QuotesTimeout    time.Duration
}

// SetDefaults registers default values for every key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyDatabasePath, filepath.Join("~", ".local", "share", "ledger", "ledger.db"))
	v.SetDefault(KeyDatabaseDriver, storage.DriverCGO)
	v.SetDefault(KeyPageSize, DefaultPageSize)
	v.SetDefault(KeyOnCategoryDelete, string(storage.DeleteSetNull))
	v.SetDefault(KeyQuotesBaseURL, quote.DefaultBaseURL)
	v.SetDefault(KeyQuotesTimeout, 10*time.Second)
	v.SetDefault(KeyQuotesParallel, 4)
}

// Load reads and validates settings from v.
func Load(v *viper.Viper) (*Settings, error) {
	s := &Settings{
		DatabasePath:     ExpandPath(strings.TrimSpace(v.GetString(KeyDatabasePath))),
		Driver:           strings.TrimSpace(v.GetString(KeyDatabaseDriver)),
		PageSize:         v.GetInt(KeyPageSize),
		QuotesBaseURL:    strings.TrimSpace(v.GetString(KeyQuotesBaseURL)),
		QuotesTimeout:    v.GetDuration(KeyQuotesTimeout),
		QuoteConcurrency: v.GetInt(KeyQuotesParallel),
	}

	if s.DatabasePath == "" {
		return nil, fmt.Errorf("%w: %s", common.ErrMissingConfig, KeyDatabasePath)
	}

	switch s.Driver {
	case "":
		s.Driver = storage.DriverCGO
	case storage.DriverCGO, storage.DriverPureGo:
	default:
		return nil, fmt.Errorf("%w: %s must be %q or %q, got %q",
			common.ErrInvalidConfig, KeyDatabaseDriver, storage.DriverCGO, storage.DriverPureGo, s.Driver)
	}

	policy, err := storage.ParseDeletePolicy(v.GetString(KeyOnCategoryDelete))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", KeyOnCategoryDelete, err)
	}
	s.DeletePolicy = policy

	if s.PageSize <= 0 {
		return nil, fmt.Errorf("%w: %s must be positive, got %d", common.ErrInvalidConfig, KeyPageSize, s.PageSize)
	}
	if s.QuoteConcurrency <= 0 {
		return nil, fmt.Errorf("%w: %s must be positive, got %d", common.ErrInvalidConfig, KeyQuotesParallel, s.QuoteConcurrency)
	}
	if s.QuotesTimeout <= 0 {
		return nil, fmt.Errorf("%w: %s must be positive", common.ErrInvalidConfig, KeyQuotesTimeout)
	}

	return s, nil
}

// StorageOptions returns the options storage.Open expects.
func (s *Settings) StorageOptions() storage.Options {
	return storage.Options{
		Driver:           s.Driver,
		DeletePolicy:     s.DeletePolicy,
		QuoteConcurrency: s.QuoteConcurrency,
	}
}

// QuoteConfig returns the quote client configuration.
func (s *Settings) QuoteConfig() quote.Config {
	return quote.Config{
		BaseURL: s.QuotesBaseURL,
		Timeout: s.QuotesTimeout,
	}
}
