// Package pipeline runs one crawl: extract, export, then sync.
package pipeline

import (
	"context"
	"path/filepath"
	"time"

	"github.com/trogers1052/gold-quote-crawler/internal/config"
	"github.com/trogers1052/gold-quote-crawler/internal/crawler"
	"github.com/trogers1052/gold-quote-crawler/internal/export"
	"github.com/trogers1052/gold-quote-crawler/internal/models"
	"github.com/trogers1052/gold-quote-crawler/internal/reconcile"
	"go.uber.org/zap"
)

// PreviewRows is the number of quotes kept for the summary preview
const PreviewRows = 5

// Extractor produces the quote table of one run
type Extractor interface {
	Crawl(ctx context.Context) (*models.QuoteTable, crawler.Stats)
}

// Syncer pushes a quote table to the remote store
type Syncer interface {
	Sync(ctx context.Context, table *models.QuoteTable) reconcile.Result
}

// Writer writes a quote table to a file
type Writer func(table *models.QuoteTable, path string) error

// ExportTarget is one export file and how to write it
type ExportTarget struct {
	Format string
	Path   string
	Write  Writer
}

// ExportResult records the outcome of one export
type ExportResult struct {
	Format string
	Path   string
	Err    error
}

// Summary describes one run for the console report
type Summary struct {
	Found    bool
	Quotes   int
	Stats    crawler.Stats
	Preview  []models.Quote
	Exports  []ExportResult
	Sync     *reconcile.Result
	Backend  string
	Duration time.Duration
}

// Pipeline wires the extractor to its export and sync collaborators
type Pipeline struct {
	extractor Extractor
	syncer    Syncer
	backend   string
	exports   []ExportTarget
	logger    *zap.Logger
	now       func() time.Time
}

// Option configures a Pipeline
type Option func(*Pipeline)

// WithSyncer syncs each found table through s. backend names it in the summary.
func WithSyncer(s Syncer, backend string) Option {
	return func(p *Pipeline) {
		p.syncer = s
		p.backend = backend
	}
}

// WithExports writes each found table to targets
func WithExports(targets ...ExportTarget) Option {
	return func(p *Pipeline) {
		p.exports = append(p.exports, targets...)
	}
}

// DefaultExports returns the spreadsheet and CSV targets configured in cfg,
// leaving out formats whose name is "none"
func DefaultExports(cfg config.ExportConfig) []ExportTarget {
	var targets []ExportTarget
	if cfg.Enabled(cfg.XLSXName) {
		targets = append(targets, ExportTarget{Format: "xlsx", Path: filepath.Join(cfg.Dir, cfg.XLSXName), Write: export.WriteXLSX})
	}
	if cfg.Enabled(cfg.CSVName) {
		targets = append(targets, ExportTarget{Format: "csv", Path: filepath.Join(cfg.Dir, cfg.CSVName), Write: export.WriteCSV})
	}
	return targets
}

// New creates a Pipeline
func New(extractor Extractor, logger *zap.Logger, opts ...Option) *Pipeline {
	p := &Pipeline{extractor: extractor, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run executes one crawl. It never fails: missing data and collaborator
// errors are reported in the Summary.
func (p *Pipeline) Run(ctx context.Context) Summary {
	start := p.now()
	var s Summary

	table, stats := p.extractor.Crawl(ctx)
	s.Stats = stats
	if table.Len() == 0 {
		p.logger.Warn("no data extracted")
		s.Duration = p.now().Sub(start)
		return s
	}
	s.Found = true
	s.Quotes = table.Len()
	s.Preview = table.Head(PreviewRows)

	for _, target := range p.exports {
		err := target.Write(table, target.Path)
		if err != nil {
			p.logger.Error("export failed", zap.String("format", target.Format), zap.String("path", target.Path), zap.Error(err))
		} else {
			p.logger.Info("exported quotes", zap.String("format", target.Format), zap.String("path", target.Path))
		}
		s.Exports = append(s.Exports, ExportResult{Format: target.Format, Path: target.Path, Err: err})
	}

	if p.syncer != nil {
		result := p.syncer.Sync(ctx, table)
		s.Sync = &result
		s.Backend = p.backend
	}

	s.Duration = p.now().Sub(start)
	return s
}
