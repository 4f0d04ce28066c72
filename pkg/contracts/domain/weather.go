package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DailyRecord is one row of the Daily precipitation sheet.
type DailyRecord struct {
	Date          time.Time       `json:"date"`
	State         string          `json:"state"`
	District      string          `json:"district"`
	Precipitation decimal.Decimal `json:"precipitation"`
}

// MonthlyRecord is one row of the Monthly precipitation sheet.
// Year and Month are nil when the cell could not be read as an integer.
type MonthlyRecord struct {
	Year          *int            `json:"year"`
	Month         *int            `json:"month"`
	State         string          `json:"state"`
	District      string          `json:"district"`
	Precipitation decimal.Decimal `json:"precipitation"`
}

// Intent identifies which question template matched.
type Intent string

const (
	IntentMonthlyDistrictTotal Intent = "monthly_district_total"
	IntentWeeklyStateCompare   Intent = "weekly_state_compare"
	IntentUnknown              Intent = "unknown"
)

// WeatherAnswer is the reply to a precipitation question.
// Table is nil when the question was not understood or no rows matched.
type WeatherAnswer struct {
	Text   string `json:"answer"`
	Intent Intent `json:"intent"`
	Table  *Table `json:"-"`
}
