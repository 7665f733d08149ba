// Package history records completed renders for the /renders inspection
// endpoint. The store is append-only; retention is the operator's concern.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Record is one completed render.
type Record struct {
	ID         string    `json:"id"`
	Template   string    `json:"template"`
	OutputName string    `json:"outputName"`
	ConvertTo  string    `json:"convertTo"`
	Hash       string    `json:"hash,omitempty"`
	Delivery   string    `json:"delivery"`
	Emailed    bool      `json:"emailed"`
	DurationMS int64     `json:"durationMs"`
	CreatedAt  time.Time `json:"createdAt"`
}

// SQLiteStore implements the render history using SQLite.
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteStore opens (or creates) the history database. Use ":memory:"
// for an in-memory database, or a file path for persistent storage.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS renders (
		id TEXT PRIMARY KEY,
		template TEXT NOT NULL,
		output_name TEXT NOT NULL,
		convert_to TEXT NOT NULL,
		hash TEXT,
		delivery TEXT NOT NULL,
		emailed INTEGER NOT NULL DEFAULT 0,
		duration_ms INTEGER NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_renders_created_at ON renders(created_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Append adds a completed render to the history.
func (s *SQLiteStore) Append(ctx context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	emailed := 0
	if rec.Emailed {
		emailed = 1
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO renders (id, template, output_name, convert_to, hash, delivery, emailed, duration_ms, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		rec.ID, rec.Template, rec.OutputName, rec.ConvertTo, rec.Hash, rec.Delivery, emailed, rec.DurationMS, rec.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert render record: %w", err)
	}
	return nil
}

// Recent returns the newest records, most recent first.
func (s *SQLiteStore) Recent(ctx context.Context, limit int) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, template, output_name, convert_to, hash, delivery, emailed, duration_ms, created_at FROM renders ORDER BY created_at DESC, id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query renders: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		var emailed int
		var createdAt int64
		if err := rows.Scan(&rec.ID, &rec.Template, &rec.OutputName, &rec.ConvertTo, &rec.Hash, &rec.Delivery, &emailed, &rec.DurationMS, &createdAt); err != nil {
			return nil, fmt.Errorf("scan render record: %w", err)
		}
		rec.Emailed = emailed != 0
		rec.CreatedAt = time.Unix(createdAt, 0)
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
