package testutil

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
)

// Sheet describes one worksheet of a fixture workbook. The first row is the header.
type Sheet struct {
	Name string
	Rows [][]any
}

// BuildWorkbook creates an in-memory workbook with the given sheets in order.
func BuildWorkbook(t *testing.T, sheets ...Sheet) *excelize.File {
	t.Helper()

	f := excelize.NewFile()
	t.Cleanup(func() { _ = f.Close() })

	for i, sheet := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet.Name); err != nil {
				t.Fatalf("rename sheet: %v", err)
			}
		} else if _, err := f.NewSheet(sheet.Name); err != nil {
			t.Fatalf("create sheet %s: %v", sheet.Name, err)
		}

		for r, row := range sheet.Rows {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			if err != nil {
				t.Fatalf("cell name: %v", err)
			}
			values := row
			if err := f.SetSheetRow(sheet.Name, cell, &values); err != nil {
				t.Fatalf("write row %d of %s: %v", r+1, sheet.Name, err)
			}
		}
	}
	return f
}

// WriteWorkbook saves a fixture workbook into t.TempDir and returns its path.
func WriteWorkbook(t *testing.T, name string, sheets ...Sheet) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := BuildWorkbook(t, sheets...).SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
	return path
}

// WorkbookBytes serializes a fixture workbook, for upload tests.
func WorkbookBytes(t *testing.T, sheets ...Sheet) []byte {
	t.Helper()

	var buf bytes.Buffer
	if _, err := BuildWorkbook(t, sheets...).WriteTo(&buf); err != nil {
		t.Fatalf("serialize workbook: %v", err)
	}
	return buf.Bytes()
}

// TradingSheets returns a small Price/Contracts pair. Valued as of
// 2024-01-15, C-001 is worth 9261, C-002 is worth 1200 and C-003 has no price.
func TradingSheets() []Sheet {
	day := func(m time.Month, d int) time.Time { return time.Date(2024, m, d, 0, 0, 0, 0, time.UTC) }
	return []Sheet{
		{Name: "Price", Rows: [][]any{
			{"Price Date", "Index Name", "Tenor", "Price"},
			{day(1, 1), "IODEX", "Feb-24", 100},
			{day(2, 1), "IODEX", "Feb-24", 110},
			{day(1, 10), "MB65", "Feb-24", 120},
		}},
		{Name: "Contracts", Rows: [][]any{
			{"Contract_Ref", "Counterparty", "Base Index", "Tenor", "Typical Fe", "Fe Adj Flag", "Cost", "Discount", "Quantity", "Unit", "Moisture"},
			{"C-001", "Acme", "IODEX", "Feb-24", 62, "", 5, 0.98, 100, "WMT", 0.1},
			{"C-002", "Bolt", "MB65", "Feb-24", 55.8, "NoAdj", nil, nil, 10, "DMT", nil},
			{"C-003", "", "PLATTS", "Feb-24", 62, "", 5, 1, 10, "DMT", nil},
		}},
	}
}
