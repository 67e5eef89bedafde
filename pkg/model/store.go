// Package model persists the tickers currently shown on the chart page.
package model

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// ErrEmptyTicker is returned when adding a blank ticker.
var ErrEmptyTicker = errors.New("empty ticker")

const schema = `
CREATE TABLE IF NOT EXISTS displayed_tickers (
	position INTEGER PRIMARY KEY AUTOINCREMENT,
	ticker   TEXT NOT NULL UNIQUE,
	added_at TIMESTAMP NOT NULL
)`

// Store is an ordered, duplicate-free list of displayed tickers.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the store at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite allows one writer; a single connection also keeps ordering simple.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	for _, stmt := range []string{"PRAGMA journal_mode=WAL", "PRAGMA busy_timeout=5000", schema} {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
	}
	return &Store{db: db}, nil
}

// Normalize trims and uppercases a ticker.
func Normalize(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}

// Add appends ticker and reports whether it was not already displayed.
func (s *Store) Add(ctx context.Context, ticker string) (bool, error) {
	ticker = Normalize(ticker)
	if ticker == "" {
		return false, ErrEmptyTicker
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO displayed_tickers (ticker, added_at) VALUES (?, ?)`,
		ticker, time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("failed to add %s: %w", ticker, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to add %s: %w", ticker, err)
	}
	return n == 1, nil
}

// DeleteLast removes the most recently added ticker. An empty store is left as is.
func (s *Store) DeleteLast(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM displayed_tickers WHERE position = (SELECT MAX(position) FROM displayed_tickers)`)
	if err != nil {
		return fmt.Errorf("failed to delete last ticker: %w", err)
	}
	return nil
}

// ClearAll removes every ticker.
func (s *Store) ClearAll(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM displayed_tickers`); err != nil {
		return fmt.Errorf("failed to clear tickers: %w", err)
	}
	return nil
}

// Tickers returns the displayed tickers, oldest first.
func (s *Store) Tickers(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT ticker FROM displayed_tickers ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tickers: %w", err)
	}
	defer rows.Close()

	tickers := []string{}
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("failed to scan ticker: %w", err)
		}
		tickers = append(tickers, t)
	}
	return tickers, rows.Err()
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
