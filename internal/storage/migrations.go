package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
// If the database cannot be migrated to this version, it's a fatal error.
const ExpectedSchemaVersion = 2

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

// Column order in these tables is the order model.Entity.Fields produces.
var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial ledger schema",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS category (
					id          INTEGER      NOT NULL PRIMARY KEY,
					name        VARCHAR(20)  NOT NULL,
					kind        CHAR(1)      NOT NULL CHECK (kind IN ('I', 'E')),
					description VARCHAR(40)
				)`,
				`CREATE TABLE IF NOT EXISTS record (
					id          INTEGER      NOT NULL PRIMARY KEY,
					date        DATE         NOT NULL,
					description VARCHAR(50)  NOT NULL,
					amount      NUMERIC      NOT NULL,
					category_id INTEGER,
					CONSTRAINT category_record_fk FOREIGN KEY (category_id)
						REFERENCES category (id) ON UPDATE CASCADE ON DELETE SET NULL
				)`,
				`CREATE TABLE IF NOT EXISTS investment (
					id          INTEGER      NOT NULL PRIMARY KEY,
					date        DATE         NOT NULL,
					code        VARCHAR(10)  NOT NULL,
					quantity    NUMERIC      NOT NULL,
					unit_price  NUMERIC      NOT NULL
				)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     2,
		Description: "Index dates, codes and category references",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE INDEX IF NOT EXISTS idx_record_date ON record(date)`,
				`CREATE INDEX IF NOT EXISTS idx_record_category ON record(category_id)`,
				`CREATE INDEX IF NOT EXISTS idx_investment_date ON investment(date)`,
				`CREATE INDEX IF NOT EXISTS idx_investment_code ON investment(code)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query '%s': %w", query, err)
				}
			}
			return nil
		},
	},
}

// SchemaVersion reports the database's current schema version.
func (s *SQLiteStorage) SchemaVersion(ctx context.Context) (int, error) {
	if err := s.checkOpen(ctx); err != nil {
		return 0, err
	}
	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get schema version: %w", err)
	}
	return version, nil
}

// Migrate applies all pending database migrations. It is safe to call on
// every start.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	currentVersion, err := s.SchemaVersion(ctx)
	if err != nil {
		return err
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		slog.Info("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	finalVersion, err := s.SchemaVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}

	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}
