// internal/history/store.go

// Package history persists network class transitions in SQLite (WAL mode).
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/tamzrod/netclass/internal/netclass"
)

// Transition is one recorded class change.
// Previous is empty for the first row ever recorded.
type Transition struct {
	ID       int64          `json:"id"`
	Class    netclass.Class `json:"class"`
	Previous netclass.Class `json:"previous,omitempty"`
	At       time.Time      `json:"at"`
}

// DB wraps *sql.DB with history helpers.
type DB struct {
	*sql.DB
}

// Open opens (or creates) the SQLite file at path with WAL journal mode.
func Open(path string) (*DB, error) {
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000", path)
	raw, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("history: open %s: %w", path, err)
	}
	if err := raw.Ping(); err != nil {
		_ = raw.Close()
		return nil, fmt.Errorf("history: ping: %w", err)
	}
	// single writer; WAL keeps readers concurrent
	raw.SetMaxOpenConns(1)
	return &DB{raw}, nil
}

// Migrate applies the schema. Idempotent.
func Migrate(db *DB) error {
	if _, err := db.Exec(ddlTransitions); err != nil {
		return fmt.Errorf("history: migrate: %w", err)
	}
	return nil
}

const ddlTransitions = `
CREATE TABLE IF NOT EXISTS transitions (
    id       INTEGER PRIMARY KEY AUTOINCREMENT,
    class    TEXT    NOT NULL,
    previous TEXT    NOT NULL DEFAULT '',
    at       INTEGER NOT NULL              -- Unix milliseconds
);
CREATE INDEX IF NOT EXISTS idx_transitions_at ON transitions (at DESC);
`

// Insert stores t and returns its row id.
func (db *DB) Insert(ctx context.Context, t Transition) (int64, error) {
	res, err := db.ExecContext(ctx,
		`INSERT INTO transitions (class, previous, at) VALUES (?, ?, ?)`,
		string(t.Class), string(t.Previous), t.At.UnixMilli(),
	)
	if err != nil {
		return 0, fmt.Errorf("history: insert: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("history: insert: %w", err)
	}
	return id, nil
}

// List returns up to limit transitions, newest first.
func (db *DB) List(ctx context.Context, limit int) ([]Transition, error) {
	if limit <= 0 {
		return []Transition{}, nil
	}

	rows, err := db.QueryContext(ctx,
		`SELECT id, class, previous, at FROM transitions ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("history: list: %w", err)
	}
	defer rows.Close()

	out := make([]Transition, 0, limit)
	for rows.Next() {
		t, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history: list: %w", err)
	}
	return out, nil
}

// Last returns the newest transition. ok is false when the table is empty.
func (db *DB) Last(ctx context.Context) (t Transition, ok bool, err error) {
	row := db.QueryRowContext(ctx,
		`SELECT id, class, previous, at FROM transitions ORDER BY id DESC LIMIT 1`)
	t, err = scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Transition{}, false, nil
	}
	if err != nil {
		return Transition{}, false, err
	}
	return t, true, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(s scanner) (Transition, error) {
	var (
		t              Transition
		class, prev    string
		atMilliseconds int64
	)
	if err := s.Scan(&t.ID, &class, &prev, &atMilliseconds); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Transition{}, err
		}
		return Transition{}, fmt.Errorf("history: scan: %w", err)
	}
	t.Class = netclass.Class(class)
	t.Previous = netclass.Class(prev)
	t.At = time.UnixMilli(atMilliseconds).UTC()
	return t, nil
}
