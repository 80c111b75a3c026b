package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// BackupManager writes consistent copies of the ledger next to the database.
type BackupManager struct {
	store      *SQLiteStorage
	backupsDir string
}

// BackupMetadata is persisted alongside each backup file.
type BackupMetadata struct {
	CreatedAt     time.Time      `json:"created_at"`
	RowCounts     map[string]int `json:"row_counts"`
	ID            string         `json:"id"`
	Description   string         `json:"description"`
	FileSize      int64          `json:"file_size"`
	SchemaVersion int            `json:"schema_version"`
}

// BackupInfo summarizes a backup for listing.
type BackupInfo struct {
	CreatedAt     time.Time
	ID            string
	Description   string
	FileSize      int64
	Categories    int
	Records       int
	Investments   int
	SchemaVersion int
}

// Backup errors.
var (
	ErrBackupExists   = errors.New("backup already exists")
	ErrBackupNotFound = errors.New("backup not found")
	ErrInvalidBackup  = errors.New("invalid backup tag")
)

// Backups returns a manager writing into a "backups" directory beside the database.
func (s *SQLiteStorage) Backups() (*BackupManager, error) {
	if s.dbPath == ":memory:" {
		return nil, fmt.Errorf("%w: in-memory databases cannot be backed up", ErrInvalidBackup)
	}
	dir, err := filepath.Abs(filepath.Join(filepath.Dir(s.dbPath), "backups"))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve backups directory: %w", err)
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create backups directory: %w", err)
	}
	return &BackupManager{store: s, backupsDir: dir}, nil
}

// Dir returns the directory backups are written to.
func (bm *BackupManager) Dir() string {
	return bm.backupsDir
}

// Create snapshots the database with VACUUM INTO and records its metadata.
// An empty tag is replaced by a timestamped one.
func (bm *BackupManager) Create(ctx context.Context, tag, description string) (*BackupInfo, error) {
	if err := bm.store.checkOpen(ctx); err != nil {
		return nil, err
	}
	if tag == "" {
		tag = fmt.Sprintf("backup-%s", time.Now().Format("2006-01-02-150405"))
	}
	if err := validateTag(tag); err != nil {
		return nil, err
	}

	backupPath := filepath.Join(bm.backupsDir, tag+".db")
	if _, err := os.Stat(backupPath); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrBackupExists, tag)
	}

	schemaVersion, err := bm.store.SchemaVersion(ctx)
	if err != nil {
		return nil, err
	}

	rowCounts, err := bm.collectRowCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to collect row counts: %w", err)
	}

	// VACUUM INTO takes a string literal, so the path is quoted rather than bound.
	if strings.ContainsAny(backupPath, `'";`) {
		return nil, fmt.Errorf("%w: path contains forbidden characters", ErrInvalidBackup)
	}
	// #nosec G201 - backupPath is validated above
	if _, err := bm.store.db.ExecContext(ctx, fmt.Sprintf("VACUUM INTO '%s'", backupPath)); err != nil {
		return nil, fmt.Errorf("failed to back up database: %w", err)
	}

	stat, err := os.Stat(backupPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat backup: %w", err)
	}

	metadata := BackupMetadata{
		ID:            tag,
		CreatedAt:     time.Now(),
		Description:   description,
		FileSize:      stat.Size(),
		RowCounts:     rowCounts,
		SchemaVersion: schemaVersion,
	}

	if err := saveMetadata(filepath.Join(bm.backupsDir, tag+".meta.json"), metadata); err != nil {
		if rmErr := os.Remove(backupPath); rmErr != nil {
			slog.Error("failed to remove backup file after metadata save failure", "error", rmErr)
		}
		return nil, fmt.Errorf("failed to save metadata: %w", err)
	}

	slog.Info("created backup", "id", tag, "path", backupPath, "size", stat.Size())
	info := metadata.info()
	return &info, nil
}

// List returns every readable backup, newest first.
func (bm *BackupManager) List(_ context.Context) ([]BackupInfo, error) {
	entries, err := os.ReadDir(bm.backupsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read backups directory: %w", err)
	}

	backups := make([]BackupInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".meta.json") {
			continue
		}
		metadata, err := loadMetadata(filepath.Join(bm.backupsDir, entry.Name()))
		if err != nil {
			slog.Debug("skipping unreadable backup metadata", "file", entry.Name(), "error", err)
			continue
		}
		backups = append(backups, metadata.info())
	}

	sort.Slice(backups, func(i, j int) bool {
		return backups[i].CreatedAt.After(backups[j].CreatedAt)
	})
	return backups, nil
}

// Delete removes a backup and its metadata.
func (bm *BackupManager) Delete(_ context.Context, tag string) error {
	if err := validateTag(tag); err != nil {
		return err
	}

	backupPath := filepath.Join(bm.backupsDir, tag+".db")
	if _, err := os.Stat(backupPath); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrBackupNotFound, tag)
		}
		return fmt.Errorf("failed to access backup: %w", err)
	}
	if err := os.Remove(backupPath); err != nil {
		return fmt.Errorf("failed to remove backup file: %w", err)
	}
	if err := os.Remove(filepath.Join(bm.backupsDir, tag+".meta.json")); err != nil {
		slog.Debug("failed to remove metadata file", "id", tag, "error", err)
	}
	return nil
}

func (bm *BackupManager) collectRowCounts(ctx context.Context) (map[string]int, error) {
	tableQueries := map[string]string{
		"category":   "SELECT COUNT(*) FROM category",
		"record":     "SELECT COUNT(*) FROM record",
		"investment": "SELECT COUNT(*) FROM investment",
	}

	counts := make(map[string]int, len(tableQueries))
	for table, query := range tableQueries {
		var count int
		if err := bm.store.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
			return nil, fmt.Errorf("count %s: %w", table, err)
		}
		counts[table] = count
	}
	return counts, nil
}

func (m BackupMetadata) info() BackupInfo {
	return BackupInfo{
		ID:            m.ID,
		CreatedAt:     m.CreatedAt,
		Description:   m.Description,
		FileSize:      m.FileSize,
		Categories:    m.RowCounts["category"],
		Records:       m.RowCounts["record"],
		Investments:   m.RowCounts["investment"],
		SchemaVersion: m.SchemaVersion,
	}
}

func validateTag(tag string) error {
	if strings.ContainsAny(tag, `/\`) || strings.Contains(tag, "..") {
		return fmt.Errorf("%w: %q cannot contain path separators", ErrInvalidBackup, tag)
	}
	return nil
}

func saveMetadata(path string, metadata BackupMetadata) error {
	data, err := json.MarshalIndent(metadata, "", "  ")
	if err != nil {
		return err
	}
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}

func loadMetadata(path string) (*BackupMetadata, error) {
	// #nosec G304 - path is built from the backups directory listing
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var metadata BackupMetadata
	if err := json.Unmarshal(data, &metadata); err != nil {
		return nil, err
	}
	return &metadata, nil
}
