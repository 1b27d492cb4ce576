package export

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trogers1052/gold-quote-crawler/internal/models"
	"github.com/xuri/excelize/v2"
)

func testTable() *models.QuoteTable {
	amount := func(s string) decimal.NullDecimal {
		return decimal.NewNullDecimal(decimal.RequireFromString(s))
	}
	return models.NewQuoteTable([]models.Quote{
		{Date: "2024-03-04", BuyPure375g: amount("1230000"), SellPure375g: amount("1045000"), Sell18K375g: amount("768100"), Sell14K375g: amount("595600")},
		{Date: "2024-03-05", BuyPure375g: amount("1234500"), SellPure375g: amount("1050000")},
	})
}

func TestWriteCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "gold_prices.csv")
	require.NoError(t, WriteCSV(testTable(), path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(data, utf8BOM))

	want := "date,buy_pure_375g,sell_pure_375g,sell_18k_375g,sell_14k_375g\n" +
		"2024-03-05,1234500,1050000,,\n" +
		"2024-03-04,1230000,1045000,768100,595600\n"
	assert.Equal(t, want, string(data[len(utf8BOM):]))
}

func TestWriteCSVEmptyTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	require.NoError(t, WriteCSV(nil, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "date,buy_pure_375g,sell_pure_375g,sell_18k_375g,sell_14k_375g\n", string(data[len(utf8BOM):]))
}

func TestWriteXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gold_prices.xlsx")
	require.NoError(t, WriteXLSX(testTable(), path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetName}, f.GetSheetList())

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, Columns, rows[0])
	assert.Equal(t, []string{"2024-03-05", "1234500", "1050000"}, rows[1])
	assert.Equal(t, []string{"2024-03-04", "1230000", "1045000", "768100", "595600"}, rows[2])

	value, err := f.GetCellValue(SheetName, "D2")
	require.NoError(t, err)
	assert.Empty(t, value)
}
