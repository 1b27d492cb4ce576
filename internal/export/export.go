// Package export writes quote tables to spreadsheet and CSV files.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/trogers1052/gold-quote-crawler/internal/models"
	"github.com/xuri/excelize/v2"
)

// SheetName is the single worksheet of the XLSX export
const SheetName = "gold_prices"

// Columns is the fixed export column order
var Columns = []string{"date", "buy_pure_375g", "sell_pure_375g", "sell_18k_375g", "sell_14k_375g"}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// WriteXLSX writes table to path as one sheet with a header row. Amounts are
// numeric cells; missing amounts are left empty.
func WriteXLSX(table *models.QuoteTable, path string) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	if err := f.SetSheetRow(SheetName, "A1", &Columns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, q := range quotes(table) {
		if err := setCell(f, 1, i+2, q.Date); err != nil {
			return err
		}
		for j, amount := range q.Amounts() {
			if !amount.Valid {
				continue
			}
			if err := setCell(f, j+2, i+2, amount.Decimal.InexactFloat64()); err != nil {
				return err
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}

// WriteCSV writes table to path with a UTF-8 byte order mark and a header row
func WriteCSV(table *models.QuoteTable, path string) (err error) {
	if err := ensureDir(path); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("failed to close %s: %w", path, cerr)
		}
	}()

	if _, err := f.Write(utf8BOM); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(Columns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, q := range quotes(table) {
		record := []string{q.Date}
		for _, amount := range q.Amounts() {
			if amount.Valid {
				record = append(record, amount.Decimal.String())
			} else {
				record = append(record, "")
			}
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("failed to write quote %s: %w", q.Date, err)
		}
	}
	w.Flush()
	return w.Error()
}

func setCell(f *excelize.File, col, row int, value interface{}) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	if err := f.SetCellValue(SheetName, cell, value); err != nil {
		return fmt.Errorf("failed to write %s: %w", cell, err)
	}
	return nil
}

func quotes(table *models.QuoteTable) []models.Quote {
	if table == nil {
		return nil
	}
	return table.Quotes
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}
	return nil
}
