package crawler

import (
	"context"
	"fmt"
	"strings"

	"github.com/trogers1052/gold-quote-crawler/internal/models"
	"github.com/trogers1052/gold-quote-crawler/internal/normalize"
	"go.uber.org/zap"
)

// PageResult is what one page yielded
type PageResult struct {
	Rows    []models.RawRow
	Short   int // rows with fewer than the required cells
	Invalid int // rows whose cells could not be read
}

// Extractor reads raw rows out of rendered row elements
type Extractor struct {
	cellSelector string
	logger       *zap.Logger
}

// NewExtractor creates an Extractor that locates cells with cellSelector
func NewExtractor(cellSelector string, logger *zap.Logger) *Extractor {
	return &Extractor{cellSelector: cellSelector, logger: logger}
}

// Extract reads every row independently. A row that fails is logged and
// skipped so one bad row never costs the rest of the page.
func (e *Extractor) Extract(ctx context.Context, rows []Element) PageResult {
	var result PageResult
	for i, row := range rows {
		cells, err := row.FindElements(ctx, e.cellSelector)
		if err != nil {
			result.Invalid++
			e.logger.Warn("failed to find row cells", zap.Int("row", i), zap.Error(err))
			continue
		}
		if len(cells) < normalize.MinCells {
			result.Short++
			continue
		}

		raw, err := readCells(ctx, cells)
		if err != nil {
			result.Invalid++
			e.logger.Warn("failed to parse row", zap.Int("row", i), zap.Error(err))
			continue
		}
		result.Rows = append(result.Rows, raw)
	}
	return result
}

func readCells(ctx context.Context, cells []Element) (models.RawRow, error) {
	raw := make(models.RawRow, 0, len(cells))
	for i, cell := range cells {
		text, err := cell.Text(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to read cell %d: %w", i, err)
		}
		raw = append(raw, strings.TrimSpace(text))
	}
	return raw, nil
}
