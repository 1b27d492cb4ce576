package crawler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/trogers1052/gold-quote-crawler/internal/config"
	"github.com/trogers1052/gold-quote-crawler/internal/models"
	"github.com/trogers1052/gold-quote-crawler/internal/normalize"
	"go.uber.org/zap"
)

// State is a step of the pagination walk
type State int

const (
	StateInit State = iota
	StateLoadingPage
	StateExtracting
	StateAdvancing
	StateDone
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateLoadingPage:
		return "loading_page"
	case StateExtracting:
		return "extracting"
	case StateAdvancing:
		return "advancing"
	case StateDone:
		return "done"
	case StateTerminated:
		return "terminated"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// StopReason records why a walk ended
type StopReason string

const (
	StopRowCap        StopReason = "row_cap"
	StopPageCap       StopReason = "page_cap"
	StopNoNextControl StopReason = "no_next_control"
	StopNextDisabled  StopReason = "next_disabled"
	StopAdvanceFailed StopReason = "advance_failed"
)

// Stats summarizes one walk
type Stats struct {
	Pages      int
	RowsRead   int
	Accepted   int
	Duplicates int
	Short      int
	Invalid    int
	StopReason StopReason
}

// Walker drives a Driver across the paginated quote table
type Walker struct {
	driver    Driver
	cfg       config.CrawlerConfig
	extractor *Extractor
	acc       *Accumulator
	logger    *zap.Logger
	sleep     func(ctx context.Context, d time.Duration) error

	state State
	rows  []Element
	stats Stats
}

// NewWalker creates a Walker over driver
func NewWalker(driver Driver, cfg config.CrawlerConfig, logger *zap.Logger) *Walker {
	return &Walker{
		driver:    driver,
		cfg:       cfg,
		extractor: NewExtractor(cfg.CellSelector, logger),
		acc:       NewAccumulator(cfg.RowCap),
		logger:    logger,
		sleep:     sleepContext,
	}
}

// State returns the current state
func (w *Walker) State() State {
	return w.state
}

// Walk runs the state machine to completion. Only failures of the session
// itself (navigation, row lookup, cancelled waits) are returned; pagination
// problems end the walk with what has been collected.
func (w *Walker) Walk(ctx context.Context) (*models.QuoteTable, Stats, error) {
	w.state = StateInit
	for w.state != StateTerminated {
		from := w.state
		var err error
		switch w.state {
		case StateInit:
			err = w.init(ctx)
		case StateLoadingPage:
			err = w.loadPage(ctx)
		case StateExtracting:
			w.extract(ctx)
		case StateAdvancing:
			err = w.advance(ctx)
		case StateDone:
			w.state = StateTerminated
		}
		if err != nil {
			return nil, w.stats, err
		}
		w.logger.Debug("walker transition",
			zap.Stringer("from", from),
			zap.Stringer("to", w.state),
			zap.Int("page", w.stats.Pages))
	}

	table := w.acc.Finalize()
	w.logger.Info("pagination finished",
		zap.Int("pages", w.stats.Pages),
		zap.Int("collected", w.acc.Len()),
		zap.Int("kept", table.Len()),
		zap.String("stop_reason", string(w.stats.StopReason)))
	return table, w.stats, nil
}

func (w *Walker) init(ctx context.Context) error {
	w.logger.Info("loading page", zap.String("url", w.cfg.URL))
	if err := w.driver.Navigate(ctx, w.cfg.URL); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", w.cfg.URL, err)
	}
	if err := w.sleep(ctx, w.cfg.InitialSettle); err != nil {
		return err
	}

	if err := w.driver.WaitFor(ctx, w.cfg.TableSelector, w.cfg.WaitTimeout); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		w.logger.Warn("table wait timed out, continuing",
			zap.String("selector", w.cfg.TableSelector),
			zap.Duration("timeout", w.cfg.WaitTimeout),
			zap.Error(err))
	}
	if err := w.sleep(ctx, w.cfg.RenderSettle); err != nil {
		return err
	}

	w.state = StateLoadingPage
	return nil
}

func (w *Walker) loadPage(ctx context.Context) error {
	w.stats.Pages++
	rows, err := w.driver.FindElements(ctx, w.cfg.RowSelector)
	if err != nil {
		return fmt.Errorf("failed to find rows on page %d: %w", w.stats.Pages, err)
	}
	w.rows = rows
	w.logger.Info("extracting page", zap.Int("page", w.stats.Pages), zap.Int("rows", len(rows)))
	w.state = StateExtracting
	return nil
}

func (w *Walker) extract(ctx context.Context) {
	page := w.extractor.Extract(ctx, w.rows)
	w.rows = nil
	w.stats.RowsRead += len(page.Rows)
	w.stats.Short += page.Short
	w.stats.Invalid += page.Invalid

	for _, raw := range page.Rows {
		q, err := normalize.Quote(raw)
		if err != nil {
			w.stats.Invalid++
			w.logger.Warn("failed to normalize row", zap.Strings("cells", raw), zap.Error(err))
			continue
		}
		if !w.acc.Offer(q) {
			w.stats.Duplicates++
			continue
		}
		w.stats.Accepted++
		w.logger.Debug("quote collected",
			zap.Int("n", w.acc.Len()),
			zap.String("date", q.Date),
			zap.String("buy_pure", raw[1]))
	}

	switch {
	case w.acc.Full():
		w.stop(StopRowCap)
	case w.cfg.MaxPages > 0 && w.stats.Pages >= w.cfg.MaxPages:
		w.stop(StopPageCap)
	default:
		w.state = StateAdvancing
	}
}

// advance treats a missing next control like a disabled one. A control
// that has not rendered yet looks the same as the last page.
func (w *Walker) advance(ctx context.Context) error {
	controls, err := w.driver.FindElements(ctx, w.cfg.NextSelector)
	if err != nil {
		w.logger.Warn("failed to find next control", zap.Error(err))
		w.stop(StopAdvanceFailed)
		return nil
	}
	if len(controls) == 0 {
		w.stop(StopNoNextControl)
		return nil
	}

	next := controls[0]
	value, present, err := next.Attribute(ctx, "disabled")
	if err != nil {
		w.logger.Warn("failed to inspect next control", zap.Error(err))
		w.stop(StopAdvanceFailed)
		return nil
	}
	if present && !strings.EqualFold(value, "false") {
		w.stop(StopNextDisabled)
		return nil
	}

	if err := w.driver.Click(ctx, next); err != nil {
		w.logger.Warn("failed to advance to next page", zap.Int("page", w.stats.Pages), zap.Error(err))
		w.stop(StopAdvanceFailed)
		return nil
	}
	if err := w.sleep(ctx, w.cfg.PageSettle); err != nil {
		return err
	}

	w.state = StateLoadingPage
	return nil
}

func (w *Walker) stop(reason StopReason) {
	w.stats.StopReason = reason
	w.logger.Info("stopping pagination", zap.String("reason", string(reason)), zap.Int("collected", w.acc.Len()))
	w.state = StateDone
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
