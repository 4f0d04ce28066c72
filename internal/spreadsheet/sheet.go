package spreadsheet

import (
	"strings"

	apperrors "sheetcalc/internal/errors"
)

// Row is one data row of a sheet.
type Row struct {
	// Number is the 1-based row number in the sheet, for error messages.
	Number int
	cells  []string
}

// Cell returns the raw text at column index col, or "" when the row is short.
func (r Row) Cell(col int) string {
	if col < 0 || col >= len(r.cells) {
		return ""
	}
	return r.cells[col]
}

// Sheet is a header-addressed view of a worksheet.
type Sheet struct {
	Name    string
	Headers []string
	Rows    []Row

	exact map[string]int
	loose map[string]int

	// typer is set for sheets read from a workbook; nil for raw rows.
	typer *cellTyper
}

// NewSheet builds a sheet from raw rows; rows[0] is the header.
func NewSheet(name string, rows [][]string) *Sheet {
	s := &Sheet{
		Name:  name,
		exact: make(map[string]int),
		loose: make(map[string]int),
	}
	if len(rows) == 0 {
		return s
	}

	s.Headers = append([]string(nil), rows[0]...)
	for i, header := range s.Headers {
		if _, dup := s.exact[header]; !dup {
			s.exact[header] = i
		}
		key := normalizeHeader(header)
		if _, dup := s.loose[key]; !dup && key != "" {
			s.loose[key] = i
		}
	}

	s.Rows = make([]Row, 0, len(rows)-1)
	for i, cells := range rows[1:] {
		if isBlank(cells) {
			continue
		}
		s.Rows = append(s.Rows, Row{Number: i + 2, cells: cells})
	}
	return s
}

// Column resolves a header name to its index.
func (s *Sheet) Column(name string) (int, bool) {
	if name == "" {
		return -1, false
	}
	if idx, ok := s.exact[name]; ok {
		return idx, true
	}
	idx, ok := s.loose[normalizeHeader(name)]
	if !ok {
		return -1, false
	}
	return idx, true
}

// Require resolves a mandatory column, failing with a schema error that
// names the logical field.
func (s *Sheet) Require(field, column string) (int, error) {
	idx, ok := s.Column(column)
	if !ok {
		return -1, apperrors.NewSchemaError(s.Name, field, column)
	}
	return idx, nil
}

// Optional resolves a column that may be absent; -1 means not present.
func (s *Sheet) Optional(column string) int {
	idx, _ := s.Column(column)
	return idx
}

// Value returns the cell at col converted to its stored type: time.Time for
// date-formatted cells, decimal.Decimal for numbers, trimmed text otherwise,
// and nil for an empty cell. Sheets built from raw rows treat numeric text
// as a number.
func (s *Sheet) Value(row Row, col int) any {
	raw := strings.TrimSpace(row.Cell(col))
	if raw == "" {
		return nil
	}

	kind := kindUnknown
	if s.typer != nil {
		kind = s.typer.kind(row.Number, col)
	}
	switch kind {
	case kindText:
		return raw
	case kindDate:
		if t, ok, err := Date(raw); err == nil && ok {
			return t
		}
		return raw
	}

	if d := Decimal(raw); d.Valid {
		return d.Decimal
	}
	return raw
}

// Len returns the number of data rows.
func (s *Sheet) Len() int {
	return len(s.Rows)
}

func normalizeHeader(h string) string {
	return strings.ToLower(strings.TrimSpace(h))
}

func isBlank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
