package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/Veraticus/ledger/internal/common"
	"github.com/Veraticus/ledger/internal/service"

	_ "github.com/mattn/go-sqlite3" // SQLite driver (cgo)
	_ "modernc.org/sqlite"          // SQLite driver (pure Go)
)

// Supported database/sql driver names.
const (
	DriverCGO    = "sqlite3"
	DriverPureGo = "sqlite"
)

// DeletePolicy decides what happens to records whose category is deleted.
type DeletePolicy string

const (
	// DeleteSetNull clears the category reference of affected records.
	DeleteSetNull DeletePolicy = "set-null"
	// DeleteReassignDefault moves affected records to the fallback category.
	DeleteReassignDefault DeletePolicy = "reassign-default"
)

// FallbackCategoryName names the category DeleteReassignDefault reassigns to.
const FallbackCategoryName = "-/-"

// ParseDeletePolicy validates a configured delete policy.
func ParseDeletePolicy(s string) (DeletePolicy, error) {
	switch DeletePolicy(strings.ToLower(strings.TrimSpace(s))) {
	case DeleteSetNull, "":
		return DeleteSetNull, nil
	case DeleteReassignDefault:
		return DeleteReassignDefault, nil
	default:
		return "", fmt.Errorf("%w: delete policy %q", common.ErrInvalidConfig, s)
	}
}

// Options configures a ledger connection.
type Options struct {
	Driver           string
	DeletePolicy     DeletePolicy
	QuoteConcurrency int
}

func (o Options) withDefaults() Options {
	if o.Driver == "" {
		o.Driver = DriverCGO
	}
	if o.DeletePolicy == "" {
		o.DeletePolicy = DeleteSetNull
	}
	if o.QuoteConcurrency <= 0 {
		o.QuoteConcurrency = 4
	}
	return o
}

// SQLiteStorage is the ledger backed by a single SQLite file.
type SQLiteStorage struct {
	db     *sql.DB
	dbPath string
	opts   Options
	closed atomic.Bool
}

var _ service.Ledger = (*SQLiteStorage)(nil)

// Open connects to the ledger at dbPath and brings its schema up to date.
func Open(ctx context.Context, dbPath string, opts Options) (*SQLiteStorage, error) {
	store, err := NewSQLiteStorage(dbPath, opts)
	if err != nil {
		return nil, err
	}
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return store, nil
}

// NewSQLiteStorage opens the database without migrating it.
func NewSQLiteStorage(dbPath string, opts Options) (*SQLiteStorage, error) {
	if err := validateString(dbPath, "dbPath"); err != nil {
		return nil, err
	}
	opts = opts.withDefaults()

	dsn, err := dataSourceName(opts.Driver, dbPath)
	if err != nil {
		return nil, err
	}

	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open(opts.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One connection for the process lifetime.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	slog.Debug("opened ledger database", "path", dbPath, "driver", opts.Driver)

	return &SQLiteStorage{
		db:     db,
		dbPath: dbPath,
		opts:   opts,
	}, nil
}

func dataSourceName(driver, dbPath string) (string, error) {
	switch driver {
	case DriverCGO:
		return dbPath + "?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on", nil
	case DriverPureGo:
		return dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", nil
	default:
		return "", fmt.Errorf("%w: unsupported driver %q", common.ErrInvalidConfig, driver)
	}
}

// Path returns the database file path.
func (s *SQLiteStorage) Path() string {
	return s.dbPath
}

// Close releases the connection. Calling it again is a no-op.
func (s *SQLiteStorage) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	return s.db.Close()
}

// checkOpen guards every operation against use after Close.
func (s *SQLiteStorage) checkOpen(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if s.closed.Load() {
		return common.ErrClosed
	}
	return nil
}

// withTx runs fn as one unit of work, committing on success.
func (s *SQLiteStorage) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// queryable is an interface satisfied by both *sql.DB and *sql.Tx.
type queryable interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type scanner interface {
	Scan(dest ...any) error
}

// scanFields reads a row as raw driver values for the model's FromFields functions.
func scanFields(row scanner, n int) ([]any, error) {
	values := make([]any, n)
	ptrs := make([]any, n)
	for i := range values {
		ptrs[i] = &values[i]
	}
	if err := row.Scan(ptrs...); err != nil {
		return nil, err
	}
	return values, nil
}

// sqlArgs converts model field values into bind arguments.
func sqlArgs(fields []any) []any {
	args := make([]any, len(fields))
	for i, f := range fields {
		args[i] = bindValue(f)
	}
	return args
}

// classifyError maps SQLite constraint failures onto ledger errors.
func classifyError(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return fmt.Errorf("%w: %w", common.ErrConstraint, err)
	case strings.Contains(msg, "CHECK constraint failed"),
		strings.Contains(msg, "NOT NULL constraint failed"):
		return fmt.Errorf("%w: %w", common.ErrValidation, err)
	default:
		return err
	}
}

func notFound(entity string, id int64) error {
	return fmt.Errorf("%w: %s %d", common.ErrNotFound, entity, id)
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
