package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/geolens-ai/geolens/libs/competitive-engine/internal/report"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS analyses (
	id         TEXT PRIMARY KEY,
	created_at TEXT NOT NULL,
	payload    TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_analyses_created_at ON analyses(created_at DESC);
`

// SQLiteStore persists analyses in a local SQLite database, one row per
// analysis with the full result as a JSON payload column.
type SQLiteStore struct {
	db         *sql.DB
	maxEntries int
}

// NewSQLiteStore opens (or creates) the database at path and ensures the
// schema exists.
func NewSQLiteStore(path string, maxEntries int) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite store path is required")
	}
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// SQLite handles one writer at a time.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLiteStore{db: db, maxEntries: maxEntries}, nil
}

// List returns the cached analyses, newest first.
func (s *SQLiteStore) List(ctx context.Context) ([]report.CompetitiveAnalysisResult, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT payload FROM analyses ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("query analyses: %w", err)
	}
	defer rows.Close()

	var results []report.CompetitiveAnalysisResult
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan analysis row: %w", err)
		}
		var result report.CompetitiveAnalysisResult
		if err := json.Unmarshal([]byte(payload), &result); err != nil {
			return nil, fmt.Errorf("unmarshal analysis payload: %w", err)
		}
		results = append(results, result)
	}
	return results, rows.Err()
}

// Save upserts result and evicts the oldest rows beyond the cap in the same
// transaction.
func (s *SQLiteStore) Save(ctx context.Context, result report.CompetitiveAnalysisResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal analysis: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO analyses (id, created_at, payload) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET created_at = excluded.created_at, payload = excluded.payload`,
		result.ID, result.Timestamp.UTC().Format(time.RFC3339Nano), string(payload)); err != nil {
		return fmt.Errorf("insert analysis: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM analyses WHERE id NOT IN (
			SELECT id FROM analyses ORDER BY created_at DESC, rowid DESC LIMIT ?
		 )`, s.maxEntries); err != nil {
		return fmt.Errorf("evict old analyses: %w", err)
	}

	return tx.Commit()
}

// Delete removes the analysis with the given ID if present.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM analyses WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete analysis: %w", err)
	}
	return nil
}

// Clear drops every cached analysis.
func (s *SQLiteStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM analyses`); err != nil {
		return fmt.Errorf("clear analyses: %w", err)
	}
	return nil
}

// Close closes the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

var _ Store = (*SQLiteStore)(nil)
