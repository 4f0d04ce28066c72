package spreadsheet

import (
	"strings"

	"github.com/xuri/excelize/v2"
)

// cellKind is the stored type of a cell as excelize sees it.
type cellKind int

const (
	kindUnknown cellKind = iota
	kindText
	kindNumber
	kindDate
)

// cellTyper inspects cell types and number formats of one sheet. Style
// lookups are cached per style index.
type cellTyper struct {
	file   *excelize.File
	sheet  string
	styles map[int]bool
}

func newCellTyper(f *excelize.File, sheet string) *cellTyper {
	return &cellTyper{file: f, sheet: sheet, styles: make(map[int]bool)}
}

// kind reports the type of the cell at the 1-based row and 0-based column.
func (c *cellTyper) kind(rowNum, col int) cellKind {
	axis, err := excelize.CoordinatesToCellName(col+1, rowNum)
	if err != nil {
		return kindUnknown
	}
	typ, err := c.file.GetCellType(c.sheet, axis)
	if err != nil {
		return kindUnknown
	}
	switch typ {
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString, excelize.CellTypeFormula:
		return kindText
	case excelize.CellTypeDate:
		return kindDate
	}

	idx, err := c.file.GetCellStyle(c.sheet, axis)
	if err != nil || idx == 0 {
		return kindNumber
	}
	date, ok := c.styles[idx]
	if !ok {
		style, err := c.file.GetStyle(idx)
		date = err == nil && isDateStyle(style)
		c.styles[idx] = date
	}
	if date {
		return kindDate
	}
	return kindNumber
}

// isDateStyle reports whether a number format renders a serial as a date or
// time: the built-in date formats or a custom code with date tokens.
func isDateStyle(style *excelize.Style) bool {
	if style.CustomNumFmt != nil {
		return isDateFormatCode(*style.CustomNumFmt)
	}
	switch n := style.NumFmt; {
	case n >= 14 && n <= 22, n >= 27 && n <= 36, n >= 45 && n <= 47, n >= 50 && n <= 58:
		return true
	}
	return false
}

func isDateFormatCode(code string) bool {
	var b strings.Builder
	quoted, bracket, escaped := false, false, false
	for _, r := range strings.ToLower(code) {
		switch {
		case escaped:
			escaped = false
		case r == '\\':
			escaped = true
		case r == '"':
			quoted = !quoted
		case quoted:
		case r == '[':
			bracket = true
		case r == ']':
			bracket = false
		case bracket:
		default:
			b.WriteRune(r)
		}
	}
	return strings.ContainsAny(b.String(), "ydhs")
}
