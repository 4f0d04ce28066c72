package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Table is an ordered, column-named result set shared by the MTM report and
// weather answers. Cells hold string, int, decimal.Decimal,
// decimal.NullDecimal, time.Time or nil.
type Table struct {
	Title   string   `json:"title,omitempty"`
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

// NewTable creates an empty table with the given columns.
func NewTable(title string, columns ...string) *Table {
	return &Table{Title: title, Columns: columns, Rows: make([][]any, 0)}
}

// Append adds a row. Missing trailing cells are padded with nil.
func (t *Table) Append(cells ...any) {
	row := make([]any, len(t.Columns))
	copy(row, cells)
	t.Rows = append(t.Rows, row)
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Records converts the table into a JSON friendly list of column->value maps.
func (t *Table) Records() []map[string]any {
	if t == nil {
		return nil
	}
	records := make([]map[string]any, 0, len(t.Rows))
	for _, row := range t.Rows {
		record := make(map[string]any, len(t.Columns))
		for i, col := range t.Columns {
			var cell any
			if i < len(row) {
				cell = row[i]
			}
			record[col] = JSONValue(cell)
		}
		records = append(records, record)
	}
	return records
}

// JSONValue maps a table cell onto a value encoding/json renders naturally:
// decimals become numbers, null decimals and empty times become null.
func JSONValue(cell any) any {
	switch v := cell.(type) {
	case decimal.Decimal:
		return v.InexactFloat64()
	case decimal.NullDecimal:
		if !v.Valid {
			return nil
		}
		return v.Decimal.InexactFloat64()
	case *decimal.Decimal:
		if v == nil {
			return nil
		}
		return v.InexactFloat64()
	case time.Time:
		if v.IsZero() {
			return nil
		}
		return v.Format("2006-01-02T15:04:05")
	case *int:
		if v == nil {
			return nil
		}
		return *v
	default:
		return v
	}
}
