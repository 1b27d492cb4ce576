// Package sqlitestore keeps quotes in a local SQLite file.
package sqlitestore

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/trogers1052/gold-quote-crawler/internal/models"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

//go:embed schema.sql
var schema string

// Store is a SQLite-backed quote store
type Store struct {
	conn *sql.DB
}

// Open opens (or creates) the database at path and applies the schema
func Open(path string) (*Store, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// a single connection keeps :memory: databases shared and writes serialized
	conn.SetMaxOpenConns(1)

	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return &Store{conn: conn}, nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.conn.Close()
}

// UpsertQuote inserts q or replaces the amounts stored for its date
func (s *Store) UpsertQuote(ctx context.Context, q models.Quote) (bool, error) {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists bool
	if err := tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM quotes WHERE date = ?)`, q.Date).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check quote %s: %w", q.Date, err)
	}

	now := time.Now().UTC()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO quotes (date, buy_pure_375g, sell_pure_375g, sell_18k_375g, sell_14k_375g, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (date) DO UPDATE SET
			buy_pure_375g = excluded.buy_pure_375g,
			sell_pure_375g = excluded.sell_pure_375g,
			sell_18k_375g = excluded.sell_18k_375g,
			sell_14k_375g = excluded.sell_14k_375g,
			updated_at = excluded.updated_at
	`, q.Date, q.BuyPure375g, q.SellPure375g, q.Sell18K375g, q.Sell14K375g, now, now)
	if err != nil {
		return false, wrapError(fmt.Sprintf("failed to upsert quote %s", q.Date), err)
	}

	if err := tx.Commit(); err != nil {
		return false, wrapError("failed to commit quote", err)
	}
	return !exists, nil
}

// GetQuoteByDate retrieves the quote stored for date
func (s *Store) GetQuoteByDate(ctx context.Context, date string) (*models.StoredQuote, error) {
	var q models.StoredQuote
	err := s.conn.QueryRowContext(ctx, `
		SELECT date, buy_pure_375g, sell_pure_375g, sell_18k_375g, sell_14k_375g, created_at, updated_at
		FROM quotes WHERE date = ?
	`, date).Scan(&q.Date, &q.BuyPure375g, &q.SellPure375g, &q.Sell18K375g, &q.Sell14K375g, &q.CreatedAt, &q.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", models.ErrQuoteNotFound, date)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get quote: %w", err)
	}
	return &q, nil
}

// CountQuotes returns the number of stored quotes
func (s *Store) CountQuotes(ctx context.Context) (int64, error) {
	var n int64
	if err := s.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM quotes`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count quotes: %w", err)
	}
	return n, nil
}

func wrapError(msg string, err error) error {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return fmt.Errorf("%s: %w: %v", msg, models.ErrDuplicateQuote, err)
		}
	}
	return fmt.Errorf("%s: %w", msg, err)
}
