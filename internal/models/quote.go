package models

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the canonical quote date form
const DateLayout = "2006-01-02"

// Event types published for quotes
const (
	EventQuoteSynced = "QUOTE_SYNCED"
)

// RawRow is the trimmed cell text of one rendered table row
type RawRow []string

// Quote represents one day's buy/sell prices per 3.75g unit.
// Date holds the raw source text when it could not be parsed.
type Quote struct {
	Date         string              `json:"date"`
	BuyPure375g  decimal.NullDecimal `json:"buy_pure_375g"`
	SellPure375g decimal.NullDecimal `json:"sell_pure_375g"`
	Sell18K375g  decimal.NullDecimal `json:"sell_18k_375g"`
	Sell14K375g  decimal.NullDecimal `json:"sell_14k_375g"`
}

// HasISODate reports whether Date is in canonical form
func (q Quote) HasISODate() bool {
	_, err := time.Parse(DateLayout, q.Date)
	return err == nil
}

// Amounts returns the price columns in export order
func (q Quote) Amounts() []decimal.NullDecimal {
	return []decimal.NullDecimal{q.BuyPure375g, q.SellPure375g, q.Sell18K375g, q.Sell14K375g}
}

// StoredQuote is a quote as persisted by a store, with bookkeeping timestamps
type StoredQuote struct {
	Quote
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// QuoteTable is the finalized result of one extraction run: unique dates,
// ordered newest first.
type QuoteTable struct {
	Quotes []Quote `json:"quotes"`
}

// NewQuoteTable sorts quotes descending by date and wraps them
func NewQuoteTable(quotes []Quote) *QuoteTable {
	sorted := make([]Quote, len(quotes))
	copy(sorted, quotes)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date > sorted[j].Date
	})
	return &QuoteTable{Quotes: sorted}
}

// Len returns the number of quotes
func (t *QuoteTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Quotes)
}

// Latest returns the newest quote
func (t *QuoteTable) Latest() (Quote, bool) {
	if t.Len() == 0 {
		return Quote{}, false
	}
	return t.Quotes[0], true
}

// Head returns at most n quotes from the top of the table
func (t *QuoteTable) Head(n int) []Quote {
	if t.Len() < n {
		n = t.Len()
	}
	if n <= 0 {
		return nil
	}
	return t.Quotes[:n]
}

// QuoteEvent represents a Kafka event for a synced quote
type QuoteEvent struct {
	EventType string    `json:"event_type"`
	Date      string    `json:"date"`
	Quote     *Quote    `json:"quote,omitempty"`
	Created   bool      `json:"created"`
	Timestamp time.Time `json:"timestamp"`
}
