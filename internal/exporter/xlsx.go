package exporter

import (
	"fmt"
	"io"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"sheetcalc/pkg/contracts/domain"
)

// ExcelOptions configures Excel export behavior
type ExcelOptions struct {
	SheetName    string // falls back to the table title, then "Report"
	FreezeHeader bool
	AutoFilter   bool
	AutoWidth    bool
	HeaderFill   string
	HeaderFont   string
}

// DefaultExcelOptions returns default Excel export options
func DefaultExcelOptions() ExcelOptions {
	return ExcelOptions{
		FreezeHeader: true,
		AutoFilter:   true,
		AutoWidth:    true,
		HeaderFill:   "4472C4",
		HeaderFont:   "FFFFFF",
	}
}

// ExcelWriter writes tables as a single-sheet workbook.
type ExcelWriter struct {
	options ExcelOptions
}

// NewExcelWriter creates an xlsx writer.
func NewExcelWriter(options ExcelOptions) *ExcelWriter {
	return &ExcelWriter{options: options}
}

// Format implements Writer.
func (w *ExcelWriter) Format() domain.ReportFormat {
	return domain.ReportFormatExcel
}

// Write renders t into a new workbook and streams it to out.
func (w *ExcelWriter) Write(out io.Writer, t *domain.Table) error {
	f, err := w.Build(t)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(out); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// Build renders t into a new workbook. The caller closes it.
func (w *ExcelWriter) Build(t *domain.Table) (*excelize.File, error) {
	sheet := w.sheetName(t)

	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to name sheet %q: %w", sheet, err)
	}

	if err := w.writeHeader(f, sheet, t.Columns); err != nil {
		f.Close()
		return nil, err
	}
	if err := w.writeRows(f, sheet, t); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

func (w *ExcelWriter) sheetName(t *domain.Table) string {
	name := w.options.SheetName
	if name == "" {
		name = t.Title
	}
	if name == "" {
		name = "Report"
	}
	// Excel caps sheet names at 31 characters.
	if utf8.RuneCountInString(name) > 31 {
		name = string([]rune(name)[:31])
	}
	return name
}

func (w *ExcelWriter) writeHeader(f *excelize.File, sheet string, columns []string) error {
	if len(columns) == 0 {
		return nil
	}

	header := make([]any, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	style := &excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	}
	if w.options.HeaderFont != "" {
		style.Font.Color = w.options.HeaderFont
	}
	if w.options.HeaderFill != "" {
		style.Fill = excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{w.options.HeaderFill}}
	}
	styleID, err := f.NewStyle(style)
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(len(columns), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, styleID); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	if w.options.FreezeHeader {
		if err := f.SetPanes(sheet, &excelize.Panes{
			Freeze:      true,
			YSplit:      1,
			TopLeftCell: "A2",
			ActivePane:  "bottomLeft",
		}); err != nil {
			return fmt.Errorf("failed to freeze header: %w", err)
		}
	}
	if w.options.AutoFilter {
		if err := f.AutoFilter(sheet, "A1:"+last, nil); err != nil {
			return fmt.Errorf("failed to add auto filter: %w", err)
		}
	}
	return nil
}

func (w *ExcelWriter) writeRows(f *excelize.File, sheet string, t *domain.Table) error {
	dateStyle, err := f.NewStyle(&excelize.Style{NumFmt: 14})
	if err != nil {
		return fmt.Errorf("failed to create date style: %w", err)
	}

	widths := make([]int, len(t.Columns))
	for i, c := range t.Columns {
		widths[i] = utf8.RuneCountInString(c)
	}

	for r, row := range t.Rows {
		values := make([]any, len(t.Columns))
		for c := range values {
			if c < len(row) {
				values[c] = excelValue(row[c])
			}
			if n := utf8.RuneCountInString(formatCell(values[c])); n > widths[c] {
				widths[c] = n
			}
		}

		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", r+2, err)
		}
		for c, v := range values {
			if _, ok := v.(time.Time); !ok {
				continue
			}
			ref, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellStyle(sheet, ref, ref, dateStyle); err != nil {
				return fmt.Errorf("failed to style date cell %s: %w", ref, err)
			}
		}
	}

	if w.options.AutoWidth {
		for i, width := range widths {
			col, err := excelize.ColumnNumberToName(i + 1)
			if err != nil {
				return err
			}
			// Min width 10, max width 50
			if err := f.SetColWidth(sheet, col, col, float64(min(max(width+2, 10), 50))); err != nil {
				return fmt.Errorf("failed to set column width: %w", err)
			}
		}
	}
	return nil
}

// excelValue converts a table cell into something excelize stores natively.
// Nulls become empty cells.
func excelValue(v any) any {
	switch c := v.(type) {
	case decimal.Decimal:
		return c.InexactFloat64()
	case decimal.NullDecimal:
		if !c.Valid {
			return nil
		}
		return c.Decimal.InexactFloat64()
	case *int:
		if c == nil {
			return nil
		}
		return *c
	case time.Time:
		if c.IsZero() {
			return nil
		}
		return c
	}
	return v
}
