package crawler

import "github.com/trogers1052/gold-quote-crawler/internal/models"

// Accumulator collects quotes for one run, keeping the first quote seen for
// each date.
type Accumulator struct {
	cap    int
	seen   map[string]struct{}
	quotes []models.Quote
}

// NewAccumulator creates an Accumulator whose finalized table holds at most rowCap quotes
func NewAccumulator(rowCap int) *Accumulator {
	return &Accumulator{
		cap:  rowCap,
		seen: make(map[string]struct{}),
	}
}

// Offer appends q unless its date was already collected
func (a *Accumulator) Offer(q models.Quote) bool {
	if _, ok := a.seen[q.Date]; ok {
		return false
	}
	a.seen[q.Date] = struct{}{}
	a.quotes = append(a.quotes, q)
	return true
}

// Len returns the number of distinct dates collected
func (a *Accumulator) Len() int {
	return len(a.quotes)
}

// Full reports whether the row cap has been reached
func (a *Accumulator) Full() bool {
	return len(a.quotes) >= a.cap
}

// Finalize truncates to the cap in arrival order, then sorts newest first
func (a *Accumulator) Finalize() *models.QuoteTable {
	quotes := a.quotes
	if len(quotes) > a.cap {
		quotes = quotes[:a.cap]
	}
	return models.NewQuoteTable(quotes)
}
