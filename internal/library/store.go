// Package library is the SQLite persistence layer for registered series and
// volumes. The schema is created on open; no separate migration step exists.
package library

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// Index creation runs after duplicate-series cleanup so the unique identity
// index can be applied to databases created before it existed.
const indexSQL = `
CREATE INDEX IF NOT EXISTS idx_series_title ON series(title);
CREATE INDEX IF NOT EXISTS idx_series_author ON series(author);
CREATE UNIQUE INDEX IF NOT EXISTS idx_series_identity
ON series(title, COALESCE(author, ''), COALESCE(publisher, ''));
CREATE UNIQUE INDEX IF NOT EXISTS idx_volume_isbn ON volume(isbn);
CREATE INDEX IF NOT EXISTS idx_volume_series_id ON volume(series_id);
`

var (
	// ErrSeriesNotFound indicates a series id with no row.
	ErrSeriesNotFound = errors.New("series not found")
	// ErrVolumeNotFound indicates an ISBN with no registered volume.
	ErrVolumeNotFound = errors.New("volume not found")
	// ErrVolumeExists indicates an ISBN that is already registered.
	ErrVolumeExists = errors.New("volume already exists")
	// ErrConstraint indicates any other database constraint violation.
	ErrConstraint = errors.New("database constraint violated")
)

// Store manages series/volume persistence backed by SQLite.
type Store struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

// Open connects to (or creates) the database at path and ensures the schema.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure db directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path, logger: logger}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Ping verifies connectivity with a lightweight query.
func (s *Store) Ping(ctx context.Context) error {
	var one int
	return s.db.QueryRowContext(ctx, "SELECT 1").Scan(&one)
}

func (s *Store) initSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if err := s.mergeDuplicateSeries(ctx); err != nil {
		return fmt.Errorf("merge duplicate series: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, indexSQL); err != nil {
		return fmt.Errorf("create indexes: %w", err)
	}
	return nil
}

// mergeDuplicateSeries collapses series rows sharing (title, author,
// publisher) onto the lowest id and repoints their volumes. Databases
// created before the unique identity index can contain such rows; the index
// cannot be created until they are gone.
func (s *Store) mergeDuplicateSeries(ctx context.Context) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, COALESCE(author, ''), COALESCE(publisher, '')
		FROM series
		ORDER BY id ASC`)
	if err != nil {
		return err
	}
	defer rows.Close()

	type identity struct{ title, author, publisher string }
	canonical := make(map[identity]int64)
	var merges [][2]int64 // duplicate id, canonical id

	for rows.Next() {
		var id int64
		var key identity
		if err := rows.Scan(&id, &key.title, &key.author, &key.publisher); err != nil {
			return err
		}
		if canonicalID, ok := canonical[key]; ok {
			merges = append(merges, [2]int64{id, canonicalID})
			continue
		}
		canonical[key] = id
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, pair := range merges {
		duplicateID, canonicalID := pair[0], pair[1]
		if _, err := s.db.ExecContext(ctx,
			"UPDATE volume SET series_id = ? WHERE series_id = ?", canonicalID, duplicateID); err != nil {
			return err
		}
		if _, err := s.db.ExecContext(ctx,
			"DELETE FROM series WHERE id = ?", duplicateID); err != nil {
			return err
		}
	}

	if len(merges) > 0 {
		s.logger.Warn("merged duplicate series rows", slog.Int("merged_count", len(merges)))
	}
	return nil
}

// classifyConstraintError maps SQLite constraint failures onto the store's
// sentinel errors. The driver reports them as plain error strings.
func classifyConstraintError(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed: volume.isbn"):
		return fmt.Errorf("%w: %v", ErrVolumeExists, err)
	case strings.Contains(msg, "constraint failed"):
		return fmt.Errorf("%w: %v", ErrConstraint, err)
	default:
		return err
	}
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func emptyIfNull(ns sql.NullString) string {
	if !ns.Valid {
		return ""
	}
	return ns.String
}
