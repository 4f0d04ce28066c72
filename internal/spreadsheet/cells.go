package spreadsheet

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// Serial numbers outside this window are not treated as Excel dates
// (1 = 1900-01-01, 2958465 = 9999-12-31).
const (
	minExcelSerial = 1
	maxExcelSerial = 2958465
)

// dateLayouts are tried in order for text date cells.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"01-02-2006",
	"02-Jan-2006",
	"2-Jan-2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 January 2006",
}

// Text returns the trimmed cell text.
func Text(raw string) string {
	return strings.TrimSpace(raw)
}

// Decimal parses a numeric cell. Empty or non-numeric content yields an
// invalid (null) value, never an error. Thousands separators are ignored.
func Decimal(raw string) decimal.NullDecimal {
	s := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if s == "" {
		return decimal.NullDecimal{}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}

// Int parses an integral numeric cell such as a year or month number.
// It returns nil for empty, non-numeric or fractional content.
func Int(raw string) *int {
	d := Decimal(raw)
	if !d.Valid || !d.Decimal.Equal(d.Decimal.Truncate(0)) {
		return nil
	}
	v := int(d.Decimal.IntPart())
	return &v
}

// Date parses a date cell. ok is false for an empty cell. A non-empty cell
// that matches neither an Excel serial number nor a known layout is an error.
func Date(raw string) (t time.Time, ok bool, err error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false, nil
	}

	if serial, perr := strconv.ParseFloat(s, 64); perr == nil {
		if !(serial >= minExcelSerial && serial <= maxExcelSerial) {
			return time.Time{}, false, fmt.Errorf("serial %s outside the Excel date range", s)
		}
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return time.Time{}, false, err
		}
		return t.UTC(), true, nil
	}

	for _, layout := range dateLayouts {
		if t, perr := time.Parse(layout, s); perr == nil {
			return t.UTC(), true, nil
		}
	}
	return time.Time{}, false, fmt.Errorf("no known date layout matches %q", s)
}

// Midnight truncates t to the start of its calendar day in UTC.
func Midnight(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
