// Package reconcile upserts a finalized quote table into a keyed store one
// row at a time.
package reconcile

import (
	"context"
	"errors"
	"strings"

	"github.com/trogers1052/gold-quote-crawler/internal/models"
	"go.uber.org/zap"
)

// QuoteStore defines the upsert a store backend must provide. created
// reports whether the date was new to the store.
type QuoteStore interface {
	UpsertQuote(ctx context.Context, q models.Quote) (created bool, err error)
}

// Listener is notified after each row the store accepted
type Listener interface {
	QuoteSynced(ctx context.Context, q models.Quote, created bool) error
}

// Result counts per-row outcomes of one sync
type Result struct {
	Uploaded int `json:"uploaded"`
	Updated  int `json:"updated"`
	Skipped  int `json:"skipped"`
	Errored  int `json:"errored"`
}

// Total returns the number of rows attempted
func (r Result) Total() int {
	return r.Uploaded + r.Updated + r.Skipped + r.Errored
}

// Reconciler syncs quote tables into a QuoteStore
type Reconciler struct {
	store     QuoteStore
	listeners []Listener
	logger    *zap.Logger
}

// New creates a Reconciler
func New(store QuoteStore, logger *zap.Logger, listeners ...Listener) *Reconciler {
	return &Reconciler{store: store, listeners: listeners, logger: logger}
}

// Sync attempts every row independently and never retries. A failing row is
// counted and logged; the rest of the batch still runs.
func (r *Reconciler) Sync(ctx context.Context, table *models.QuoteTable) Result {
	var result Result
	if table == nil {
		return result
	}

	for _, q := range table.Quotes {
		created, err := r.store.UpsertQuote(ctx, q)
		switch {
		case err == nil && created:
			result.Uploaded++
		case err == nil:
			result.Updated++
		case IsConflict(err):
			result.Skipped++
			r.logger.Debug("duplicate quote skipped", zap.String("date", q.Date))
			continue
		default:
			result.Errored++
			r.logger.Error("failed to upsert quote", zap.String("date", q.Date), zap.Error(err))
			continue
		}
		r.notify(ctx, q, created)
	}

	r.logger.Info("sync complete",
		zap.Int("uploaded", result.Uploaded),
		zap.Int("updated", result.Updated),
		zap.Int("skipped", result.Skipped),
		zap.Int("errored", result.Errored))
	return result
}

func (r *Reconciler) notify(ctx context.Context, q models.Quote, created bool) {
	for _, l := range r.listeners {
		if err := l.QuoteSynced(ctx, q, created); err != nil {
			r.logger.Warn("quote listener failed", zap.String("date", q.Date), zap.Error(err))
		}
	}
}

var conflictMarkers = []string{"duplicate", "unique", "23505"}

// IsConflict reports whether err is a uniqueness conflict on the date key.
// Backends wrap their native errors in models.ErrDuplicateQuote; the message
// check only covers errors that carry no kind.
func IsConflict(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, models.ErrDuplicateQuote) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range conflictMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
