package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Veraticus/calcman/internal/model"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteStorage implements service.Storage using SQLite.
type SQLiteStorage struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteStorage creates a new SQLite storage instance.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if err := validateString(dbPath, "dbPath"); err != nil {
		return nil, err
	}

	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A single connection also keeps an in-memory database alive.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteStorage{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *SQLiteStorage) Path() string {
	return s.dbPath
}

// Load returns every stored calculator in insertion order together with the
// global formulas. A database that never saved formulas yields the defaults.
// ExportedAt is the export time of the last imported snapshot, zero if the
// catalog was never imported.
func (s *SQLiteStorage) Load(ctx context.Context) (model.Snapshot, error) {
	if err := validateContext(ctx); err != nil {
		return model.Snapshot{}, err
	}

	defs, err := s.loadDefinitions(ctx)
	if err != nil {
		return model.Snapshot{}, err
	}

	formulas, err := s.loadGlobalFormulas(ctx)
	if err != nil {
		return model.Snapshot{}, err
	}

	importedAt, err := s.loadImportedAt(ctx)
	if err != nil {
		return model.Snapshot{}, err
	}

	return model.Snapshot{
		Version:     model.SnapshotVersion,
		ExportedAt:  importedAt,
		Calculators: defs,
		Formulas:    formulas,
	}, nil
}

func (s *SQLiteStorage) loadImportedAt(ctx context.Context) (time.Time, error) {
	var value sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM catalog_meta WHERE key = ?`, metaImportedAt,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to query import time: %w", err)
	}
	return parseTime(value)
}

func (s *SQLiteStorage) loadGlobalFormulas(ctx context.Context) (model.GlobalFormulas, error) {
	var f model.GlobalFormulas
	err := s.db.QueryRowContext(ctx, `
		SELECT title, description, h1
		FROM seo_formulas
		WHERE id = 1`,
	).Scan(&f.Title, &f.Description, &f.H1)

	if errors.Is(err, sql.ErrNoRows) {
		return model.DefaultGlobalFormulas(), nil
	}
	if err != nil {
		return model.GlobalFormulas{}, fmt.Errorf("failed to query global formulas: %w", err)
	}
	return f, nil
}

// SaveGlobalFormulas stores the single global formulas row.
func (s *SQLiteStorage) SaveGlobalFormulas(ctx context.Context, formulas model.GlobalFormulas) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return saveGlobalFormulasTx(ctx, s.db, formulas)
}

// ReplaceAll discards every stored calculator and the formulas, then writes
// snap in a single transaction.
func (s *SQLiteStorage) ReplaceAll(ctx context.Context, snap model.Snapshot) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	for i, def := range snap.Calculators {
		if err := validateDefinition(def); err != nil {
			return fmt.Errorf("calculator at index %d: %w", i, err)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM calculators`); err != nil {
		return fmt.Errorf("failed to clear calculators: %w", err)
	}

	for i, def := range snap.Calculators {
		if err = insertDefinitionTx(ctx, tx, def, i); err != nil {
			return err
		}
	}

	if err = saveGlobalFormulasTx(ctx, tx, snap.Formulas); err != nil {
		return err
	}

	if err = saveImportedAtTx(ctx, tx, snap.ExportedAt); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit import: %w", err)
	}
	return nil
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func saveGlobalFormulasTx(ctx context.Context, db execer, f model.GlobalFormulas) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO seo_formulas (id, title, description, h1, updated_at)
		VALUES (1, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			h1 = excluded.h1,
			updated_at = excluded.updated_at`,
		f.Title, f.Description, f.H1, formatTime(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("failed to save global formulas: %w", err)
	}
	return nil
}

const metaImportedAt = "imported_at"

func saveImportedAtTx(ctx context.Context, db execer, exportedAt time.Time) error {
	var err error
	if exportedAt.IsZero() {
		_, err = db.ExecContext(ctx, `DELETE FROM catalog_meta WHERE key = ?`, metaImportedAt)
	} else {
		_, err = db.ExecContext(ctx, `
			INSERT INTO catalog_meta (key, value) VALUES (?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
			metaImportedAt, formatTime(exportedAt).String,
		)
	}
	if err != nil {
		return fmt.Errorf("failed to save import time: %w", err)
	}
	return nil
}

func formatTime(t time.Time) sql.NullString {
	if t.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: t.UTC().Format(time.RFC3339Nano), Valid: true}
}

func parseTime(s sql.NullString) (time.Time, error) {
	if !s.Valid || s.String == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s.String)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", s.String, err)
	}
	return t.UTC(), nil
}
