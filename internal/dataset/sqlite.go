// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dataset

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/qa-synth/pkg/types"
)

// SQLiteStore keeps accepted items in a SQLite database. Item ids are
// indexed but not unique: a resumed run with a stale start id still appends
// rather than overwriting.
type SQLiteStore struct {
	db    *sql.DB
	runID sql.NullString
}

// OpenSQLite opens or creates the database at path and ensures the schema.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			topic TEXT NOT NULL,
			provider TEXT,
			started_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS items (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			id INTEGER NOT NULL,
			run_id TEXT REFERENCES runs(id),
			topic TEXT NOT NULL,
			difficulty TEXT NOT NULL,
			input TEXT NOT NULL,
			output TEXT NOT NULL,
			teaching_note TEXT,
			review TEXT,
			score REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_items_id ON items(id)`,
		`CREATE INDEX IF NOT EXISTS idx_items_difficulty ON items(difficulty)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// BeginRun records a run and tags every item appended afterwards with it.
func (s *SQLiteStore) BeginRun(runID, topic, provider string) error {
	_, err := s.db.Exec(
		`INSERT INTO runs (id, topic, provider, started_at) VALUES (?, ?, ?, ?)`,
		runID, topic, provider, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("recording run: %w", err)
	}
	s.runID = sql.NullString{String: runID, Valid: true}
	return nil
}

// Reset deletes every item and run.
func (s *SQLiteStore) Reset() error {
	for _, stmt := range []string{`DELETE FROM items`, `DELETE FROM runs`} {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("resetting dataset: %w", err)
		}
	}
	return nil
}

// Append inserts items in one transaction, preserving their order.
func (s *SQLiteStore) Append(items []types.QAItem) error {
	ctx := context.Background()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO items (id, run_id, topic, difficulty, input, output, teaching_note, review, score)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, it := range items {
		_, err := stmt.ExecContext(ctx,
			it.ID, s.runID, it.Topic, string(it.Difficulty), it.Input, it.Output,
			nullString(it.TeachingNote), nullString(it.Review), nullFloat(it.Score),
		)
		if err != nil {
			return fmt.Errorf("inserting item %d: %w", it.ID, err)
		}
	}
	return tx.Commit()
}

// LastID returns the highest stored id, or 0 when empty.
func (s *SQLiteStore) LastID() (int, error) {
	var id int
	if err := s.db.QueryRow(`SELECT COALESCE(MAX(id), 0) FROM items`).Scan(&id); err != nil {
		return 0, fmt.Errorf("querying last id: %w", err)
	}
	return id, nil
}

// Count returns the number of stored items.
func (s *SQLiteStore) Count() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT count(*) FROM items`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting items: %w", err)
	}
	return n, nil
}

// Filter narrows a Query. Zero values match everything.
type Filter struct {
	Difficulty types.Difficulty
	MinScore   *float64
	RunID      string
	Limit      int
}

// All returns every item in insertion order.
func (s *SQLiteStore) All() ([]types.QAItem, error) {
	return s.Query(context.Background(), Filter{})
}

// Query returns items matching f in insertion order.
func (s *SQLiteStore) Query(ctx context.Context, f Filter) ([]types.QAItem, error) {
	q := `SELECT id, topic, difficulty, input, output, teaching_note, review, score
		FROM items WHERE 1=1`
	var args []any
	if f.Difficulty != "" {
		q += ` AND difficulty = ?`
		args = append(args, string(f.Difficulty))
	}
	if f.MinScore != nil {
		q += ` AND score >= ?`
		args = append(args, *f.MinScore)
	}
	if f.RunID != "" {
		q += ` AND run_id = ?`
		args = append(args, f.RunID)
	}
	q += ` ORDER BY rowid`
	if f.Limit > 0 {
		q += ` LIMIT ?`
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("querying items: %w", err)
	}
	defer rows.Close()

	var items []types.QAItem
	for rows.Next() {
		var (
			it         types.QAItem
			difficulty string
			note       sql.NullString
			review     sql.NullString
			score      sql.NullFloat64
		)
		if err := rows.Scan(&it.ID, &it.Topic, &difficulty, &it.Input, &it.Output, &note, &review, &score); err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		it.Difficulty = types.Difficulty(difficulty)
		if note.Valid {
			it.TeachingNote = &note.String
		}
		if review.Valid {
			it.Review = &review.String
		}
		if score.Valid {
			it.Score = &score.Float64
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func nullString(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

func nullFloat(p *float64) sql.NullFloat64 {
	if p == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *p, Valid: true}
}
