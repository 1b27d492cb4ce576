// Package normalize converts localized table text into typed quote fields.
package normalize

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/trogers1052/gold-quote-crawler/internal/models"
)

// SourceDateLayout is the dotted date form used by the quote table
const SourceDateLayout = "2006.01.02"

var sourceDateLayouts = []string{SourceDateLayout, "2006.1.2"}

// MinCells is the number of cells a row needs to describe a quote
const MinCells = 5

// ErrShortRow is returned for rows with fewer than MinCells cells
var ErrShortRow = errors.New("row has too few cells")

// Amount strips grouping separators and parses the remainder as a decimal.
// Anything that is not numeric yields an invalid NullDecimal.
func Amount(text string) decimal.NullDecimal {
	cleaned := strings.TrimSpace(strings.ReplaceAll(text, ",", ""))
	if cleaned == "" {
		return decimal.NullDecimal{}
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}

// Date rewrites YYYY.MM.DD as YYYY-MM-DD. Text that does not parse is
// returned unchanged.
// Single-digit months and days are accepted.
func Date(text string) string {
	trimmed := strings.TrimSpace(text)
	for _, layout := range sourceDateLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t.Format(models.DateLayout)
		}
	}
	return text
}

// Quote builds a typed quote from a raw row
func Quote(row models.RawRow) (models.Quote, error) {
	if len(row) < MinCells {
		return models.Quote{}, fmt.Errorf("%w: got %d, want %d", ErrShortRow, len(row), MinCells)
	}
	return models.Quote{
		Date:         Date(row[0]),
		BuyPure375g:  Amount(row[1]),
		SellPure375g: Amount(row[2]),
		Sell18K375g:  Amount(row[3]),
		Sell14K375g:  Amount(row[4]),
	}, nil
}
