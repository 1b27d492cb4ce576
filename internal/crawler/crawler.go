// Package crawler walks the paginated quote table and collects a
// deduplicated QuoteTable.
package crawler

import (
	"context"

	"github.com/trogers1052/gold-quote-crawler/internal/config"
	"github.com/trogers1052/gold-quote-crawler/internal/models"
	"go.uber.org/zap"
)

// Crawler owns one browser session per Crawl call
type Crawler struct {
	factory DriverFactory
	cfg     config.CrawlerConfig
	logger  *zap.Logger
}

// New creates a Crawler
func New(factory DriverFactory, cfg config.CrawlerConfig, logger *zap.Logger) *Crawler {
	return &Crawler{factory: factory, cfg: cfg, logger: logger}
}

// Crawl extracts the quote table. Any failure of the session is logged and
// reported as a nil table; the session is always closed before returning.
func (c *Crawler) Crawl(ctx context.Context) (table *models.QuoteTable, stats Stats) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("crawl aborted", zap.Any("panic", r))
			table = nil
		}
	}()

	c.logger.Info("starting browser session")
	driver, err := c.factory(ctx)
	if err != nil {
		c.logger.Error("failed to start browser session", zap.Error(err))
		return nil, stats
	}
	defer func() {
		if err := driver.Close(); err != nil {
			c.logger.Warn("failed to close browser session", zap.Error(err))
		}
	}()

	table, stats, err = NewWalker(driver, c.cfg, c.logger).Walk(ctx)
	if err != nil {
		c.logger.Error("crawl failed", zap.Error(err))
		return nil, stats
	}
	if table.Len() == 0 {
		c.logger.Warn("no quotes extracted")
		return nil, stats
	}

	c.logger.Info("crawl complete", zap.Int("quotes", table.Len()))
	return table, stats
}
