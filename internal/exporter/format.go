package exporter

import (
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is used for date cells in text exports.
const DateLayout = "2006-01-02"

// formatCell renders a table cell as text. Nulls become empty strings and
// decimals keep their full precision.
func formatCell(v any) string {
	switch c := v.(type) {
	case nil:
		return ""
	case string:
		return c
	case decimal.Decimal:
		return c.String()
	case decimal.NullDecimal:
		if !c.Valid {
			return ""
		}
		return c.Decimal.String()
	case time.Time:
		return formatTime(c)
	case int:
		return strconv.Itoa(c)
	case *int:
		if c == nil {
			return ""
		}
		return strconv.Itoa(*c)
	case int64:
		return strconv.FormatInt(c, 10)
	case float64:
		return strconv.FormatFloat(c, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(c)
	default:
		return fmt.Sprint(c)
	}
}

// formatTime prints midnight values as plain dates.
func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Format(DateLayout)
	}
	return t.Format("2006-01-02 15:04:05")
}

// formatDecimal2 renders a numeric cell with two decimals for on-screen
// tables; other cells fall back to formatCell.
func formatDecimal2(v any) string {
	switch c := v.(type) {
	case decimal.Decimal:
		return c.StringFixed(2)
	case decimal.NullDecimal:
		if !c.Valid {
			return ""
		}
		return c.Decimal.StringFixed(2)
	}
	return formatCell(v)
}
