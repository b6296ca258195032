// Package history keeps a local SQLite log of produced estimates so the CLI
// can list recent valuations.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/goliatone/go-carvalue/pkg/model"
	"github.com/goliatone/go-carvalue/pkg/record"
)

// DefaultLimit caps Recent when the caller passes a non-positive limit.
const DefaultLimit = 20

// ErrPathRequired is returned by Open for an empty path.
var ErrPathRequired = errors.New("history: storage path is required")

// Entry is one stored estimate. Record keeps the harvested columns in order.
type Entry struct {
	ID         int64
	CreatedAt  time.Time
	Prediction float64
	Formatted  string
	Record     json.RawMessage
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces time.Now for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// Store is a SQLite-backed estimate log.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens and migrates the database at path.
func Open(ctx context.Context, path string, options ...Option) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, ErrPathRequired
	}

	dsn := filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("history: open sqlite db: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("history: ping sqlite db: %w", err)
	}

	store := &Store{db: db, now: time.Now}
	for _, opt := range options {
		if opt != nil {
			opt(store)
		}
	}

	if err := applyMigrations(ctx, db, store.now); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("history: run migrations: %w", err)
	}
	return store, nil
}

// Close releases the underlying connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// RecordEstimate stores a successful estimate. Error estimates are skipped.
func (s *Store) RecordEstimate(ctx context.Context, rec record.Record, estimate model.Estimate) error {
	if !estimate.OK() {
		return nil
	}
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("history: encode record: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO estimates (created_at, prediction, formatted, record_json) VALUES (?, ?, ?, ?)`,
		s.now().UTC().UnixMilli(), estimate.Prediction, estimate.Formatted, string(payload),
	)
	if err != nil {
		return fmt.Errorf("history: insert estimate: %w", err)
	}
	return nil
}

// Recent returns up to limit estimates, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, prediction, formatted, record_json
		 FROM estimates
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("history: list estimates: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			entry     Entry
			createdAt int64
			payload   string
		)
		if err := rows.Scan(&entry.ID, &createdAt, &entry.Prediction, &entry.Formatted, &payload); err != nil {
			return nil, fmt.Errorf("history: scan estimate: %w", err)
		}
		entry.CreatedAt = time.UnixMilli(createdAt).UTC()
		entry.Record = json.RawMessage(payload)
		out = append(out, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history: list estimates: %w", err)
	}
	return out, nil
}
