// Package report prints crawl summaries to the console.
package report

import (
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/shopspring/decimal"
	"github.com/trogers1052/gold-quote-crawler/internal/export"
	"github.com/trogers1052/gold-quote-crawler/internal/pipeline"
)

// Render writes the run summary and, when data was found, a preview of the
// newest quotes
func Render(w io.Writer, s pipeline.Summary) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle("Gold quote crawl")
	t.AppendHeader(table.Row{"Stage", "Result"})

	t.AppendRow(table.Row{"pages", s.Stats.Pages})
	t.AppendRow(table.Row{"rows read", s.Stats.RowsRead})
	t.AppendRow(table.Row{"duplicates", s.Stats.Duplicates})
	t.AppendRow(table.Row{"skipped rows", s.Stats.Short + s.Stats.Invalid})
	t.AppendRow(table.Row{"stop reason", orDash(string(s.Stats.StopReason))})

	if !s.Found {
		t.AppendSeparator()
		t.AppendRow(table.Row{"quotes", "no data found"})
		t.SetStyle(table.StyleRounded)
		t.Render()
		return
	}
	t.AppendRow(table.Row{"quotes", s.Quotes})

	t.AppendSeparator()
	for _, e := range s.Exports {
		status := e.Path
		if e.Err != nil {
			status = "failed: " + e.Err.Error()
		}
		t.AppendRow(table.Row{"export " + e.Format, status})
	}

	t.AppendSeparator()
	if s.Sync == nil {
		t.AppendRow(table.Row{"sync", "disabled"})
	} else {
		t.AppendRow(table.Row{"sync backend", s.Backend})
		t.AppendRow(table.Row{"uploaded", s.Sync.Uploaded})
		t.AppendRow(table.Row{"updated", s.Sync.Updated})
		t.AppendRow(table.Row{"skipped", s.Sync.Skipped})
		t.AppendRow(table.Row{"errors", s.Sync.Errored})
	}
	t.AppendFooter(table.Row{"duration", s.Duration.Round(time.Millisecond).String()})
	t.SetStyle(table.StyleRounded)
	t.Render()

	renderPreview(w, s)
}

func renderPreview(w io.Writer, s pipeline.Summary) {
	if len(s.Preview) == 0 {
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle(fmt.Sprintf("Latest %d quotes", len(s.Preview)))
	header := table.Row{}
	for _, c := range export.Columns {
		header = append(header, c)
	}
	t.AppendHeader(header)

	for _, q := range s.Preview {
		row := table.Row{q.Date}
		for _, amount := range q.Amounts() {
			row = append(row, formatAmount(amount))
		}
		t.AppendRow(row)
	}

	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
	})
	t.SetStyle(table.StyleRounded)
	t.Render()
}

func formatAmount(amount decimal.NullDecimal) string {
	if !amount.Valid {
		return "-"
	}
	return amount.Decimal.StringFixedBank(0)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
