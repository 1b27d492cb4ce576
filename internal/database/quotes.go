package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/trogers1052/gold-quote-crawler/internal/models"
)

// Sort orders accepted by GetQuotes
const (
	SortDateDesc  = "date_desc"
	SortDateAsc   = "date_asc"
	SortPriceDesc = "price_desc"
	SortPriceAsc  = "price_asc"
)

var orderClauses = map[string]string{
	SortDateDesc:  "date DESC",
	SortDateAsc:   "date ASC",
	SortPriceDesc: "sell_pure_375g DESC NULLS LAST, date DESC",
	SortPriceAsc:  "sell_pure_375g ASC NULLS LAST, date DESC",
}

// ValidSort reports whether sort is a known order
func ValidSort(sort string) bool {
	_, ok := orderClauses[sort]
	return ok
}

// QuoteFilter narrows GetQuotes. Days <= 0 means no period filter.
type QuoteFilter struct {
	Days  int
	Sort  string
	Limit int
	Now   time.Time
}

const quoteColumns = `date::text, buy_pure_375g, sell_pure_375g, sell_18k_375g, sell_14k_375g, created_at, updated_at`

// UpsertQuote inserts q or updates the row with the same date. created is
// true when the date was new.
func (db *DB) UpsertQuote(ctx context.Context, q models.Quote) (bool, error) {
	query := `
		INSERT INTO quotes (date, buy_pure_375g, sell_pure_375g, sell_18k_375g, sell_14k_375g, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		ON CONFLICT (date) DO UPDATE SET
			buy_pure_375g = EXCLUDED.buy_pure_375g,
			sell_pure_375g = EXCLUDED.sell_pure_375g,
			sell_18k_375g = EXCLUDED.sell_18k_375g,
			sell_14k_375g = EXCLUDED.sell_14k_375g,
			updated_at = EXCLUDED.updated_at
		RETURNING (xmax = 0) AS inserted
	`
	var inserted bool
	err := db.conn.QueryRowContext(ctx, query,
		q.Date, q.BuyPure375g, q.SellPure375g, q.Sell18K375g, q.Sell14K375g, time.Now(),
	).Scan(&inserted)
	if err != nil {
		return false, wrapError(fmt.Sprintf("failed to upsert quote %s", q.Date), err)
	}
	return inserted, nil
}

// GetQuoteByDate retrieves the quote stored for date
func (db *DB) GetQuoteByDate(ctx context.Context, date string) (*models.StoredQuote, error) {
	query := `SELECT ` + quoteColumns + ` FROM quotes WHERE date = $1`

	q, err := scanQuote(db.conn.QueryRowContext(ctx, query, date))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", models.ErrQuoteNotFound, date)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get quote: %w", err)
	}
	return q, nil
}

// GetLatestQuote retrieves the most recent quote
func (db *DB) GetLatestQuote(ctx context.Context) (*models.StoredQuote, error) {
	query := `SELECT ` + quoteColumns + ` FROM quotes ORDER BY date DESC LIMIT 1`

	q, err := scanQuote(db.conn.QueryRowContext(ctx, query))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrQuoteNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest quote: %w", err)
	}
	return q, nil
}

// GetQuotes lists quotes within the filter's period in the requested order
func (db *DB) GetQuotes(ctx context.Context, f QuoteFilter) ([]*models.StoredQuote, error) {
	order, ok := orderClauses[f.Sort]
	if !ok {
		if f.Sort != "" {
			return nil, fmt.Errorf("unknown sort %q", f.Sort)
		}
		order = orderClauses[SortDateDesc]
	}

	query := `SELECT ` + quoteColumns + ` FROM quotes`
	var args []interface{}
	if f.Days > 0 {
		now := f.Now
		if now.IsZero() {
			now = time.Now()
		}
		args = append(args, now.AddDate(0, 0, -f.Days).Format(models.DateLayout))
		query += ` WHERE date >= $1`
	}
	query += ` ORDER BY ` + order
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(` LIMIT $%d`, len(args))
	}

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get quotes: %w", err)
	}
	defer rows.Close()

	var quotes []*models.StoredQuote
	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan quote: %w", err)
		}
		quotes = append(quotes, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate quotes: %w", err)
	}
	return quotes, nil
}

// CountQuotes returns the number of stored quotes
func (db *DB) CountQuotes(ctx context.Context) (int64, error) {
	var n int64
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM quotes`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count quotes: %w", err)
	}
	return n, nil
}

// DeleteQuotesOlderThan removes quotes dated before date
func (db *DB) DeleteQuotesOlderThan(ctx context.Context, date time.Time) (int64, error) {
	result, err := db.conn.ExecContext(ctx, `DELETE FROM quotes WHERE date < $1`, date.Format(models.DateLayout))
	if err != nil {
		return 0, fmt.Errorf("failed to delete old quotes: %w", err)
	}
	return result.RowsAffected()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanQuote(s scanner) (*models.StoredQuote, error) {
	var q models.StoredQuote
	err := s.Scan(
		&q.Date, &q.BuyPure375g, &q.SellPure375g, &q.Sell18K375g, &q.Sell14K375g, &q.CreatedAt, &q.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &q, nil
}
