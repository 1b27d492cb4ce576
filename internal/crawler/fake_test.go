package crawler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/trogers1052/gold-quote-crawler/internal/config"
)

const (
	testTable = "#example-table"
	testRows  = "#example-table .tabulator-row"
	testCells = ".tabulator-cell"
	testNext  = `button[data-page="next"]`
)

func testConfig() config.CrawlerConfig {
	return config.CrawlerConfig{
		URL:           "https://example.test/price/gold",
		TableSelector: testTable,
		RowSelector:   testRows,
		CellSelector:  testCells,
		NextSelector:  testNext,
		RowCap:        100,
		MaxPages:      10,
		WaitTimeout:   10 * time.Second,
	}
}

// fakeElement is an in-memory rendered node
type fakeElement struct {
	text     string
	textErr  error
	attrs    map[string]string
	children []Element
	findErr  error
}

func (e *fakeElement) Text(ctx context.Context) (string, error) {
	return e.text, e.textErr
}

func (e *fakeElement) Attribute(ctx context.Context, name string) (string, bool, error) {
	v, ok := e.attrs[name]
	return v, ok, nil
}

func (e *fakeElement) FindElements(ctx context.Context, selector string) ([]Element, error) {
	if e.findErr != nil {
		return nil, e.findErr
	}
	return e.children, nil
}

func row(cells ...string) Element {
	children := make([]Element, len(cells))
	for i, c := range cells {
		children[i] = &fakeElement{text: c}
	}
	return &fakeElement{children: children}
}

// fakePaginator renders a fixed list of pages and a next control
type fakePaginator struct {
	pages [][]Element
	page  int

	disabledFrom int // 1-based page on which next reports disabled; 0 never
	missingFrom  int // 1-based page on which next is absent; 0 never
	clickErr     error
	rowsErr      error
	navErr       error
	waitErr      error
	panicOnRows  bool

	navigated string
	clicks    int
	closed    int
}

func (f *fakePaginator) Navigate(ctx context.Context, url string) error {
	f.navigated = url
	return f.navErr
}

func (f *fakePaginator) WaitFor(ctx context.Context, selector string, timeout time.Duration) error {
	return f.waitErr
}

func (f *fakePaginator) FindElements(ctx context.Context, selector string) ([]Element, error) {
	current := f.page + 1
	switch selector {
	case testRows:
		if f.panicOnRows {
			panic("renderer crashed")
		}
		if f.rowsErr != nil {
			return nil, f.rowsErr
		}
		if f.page >= len(f.pages) {
			return nil, nil
		}
		return f.pages[f.page], nil
	case testNext:
		if f.missingFrom > 0 && current >= f.missingFrom {
			return nil, nil
		}
		next := &fakeElement{attrs: map[string]string{}}
		if f.disabledFrom > 0 && current >= f.disabledFrom {
			next.attrs["disabled"] = ""
		}
		return []Element{next}, nil
	}
	return nil, fmt.Errorf("unexpected selector %q", selector)
}

func (f *fakePaginator) Click(ctx context.Context, el Element) error {
	if f.clickErr != nil {
		return f.clickErr
	}
	f.clicks++
	if f.page < len(f.pages)-1 {
		f.page++
	}
	return nil
}

func (f *fakePaginator) Close() error {
	f.closed++
	return nil
}

var errRender = errors.New("render failed")

// uniquePages builds n pages of perPage rows with strictly descending dates
func uniquePages(n, perPage int) [][]Element {
	base := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)
	pages := make([][]Element, n)
	day := 0
	for p := range pages {
		for r := 0; r < perPage; r++ {
			date := base.AddDate(0, 0, -day).Format("2006.01.02")
			pages[p] = append(pages[p], row(date, "1,234,500", "1,050,000", "771,800", "598,500"))
			day++
		}
	}
	return pages
}
