package weather

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"sheetcalc/pkg/contracts/domain"
)

// MonthlyByDistrict returns the Monthly rows of district (case-insensitive)
// whose month is in months and whose year lies in [startYear, endYear],
// ordered by year then month. Rows with an unreadable year or month never
// match.
func MonthlyByDistrict(monthly []domain.MonthlyRecord, district string, months []int, startYear, endYear int) []domain.MonthlyRecord {
	wanted := make(map[int]bool, len(months))
	for _, m := range months {
		wanted[m] = true
	}
	district = strings.TrimSpace(district)

	var rows []domain.MonthlyRecord
	for _, r := range monthly {
		if r.Year == nil || r.Month == nil {
			continue
		}
		if !strings.EqualFold(r.District, district) || !wanted[*r.Month] {
			continue
		}
		if *r.Year < startYear || *r.Year > endYear {
			continue
		}
		rows = append(rows, r)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if *rows[i].Year != *rows[j].Year {
			return *rows[i].Year < *rows[j].Year
		}
		return *rows[i].Month < *rows[j].Month
	})
	return rows
}

// WeeklyTotal sums the Daily precipitation of state (case-insensitive) over
// the days of calendar year whose ISO week number is week. found is false
// when no day matched.
func WeeklyTotal(daily []domain.DailyRecord, state string, year, week int) (total decimal.Decimal, found bool) {
	state = strings.TrimSpace(state)
	total = decimal.Zero
	for _, r := range daily {
		if r.Date.IsZero() || !strings.EqualFold(r.State, state) {
			continue
		}
		if r.Date.Year() != year {
			continue
		}
		if _, w := r.Date.ISOWeek(); w != week {
			continue
		}
		total = total.Add(r.Precipitation)
		found = true
	}
	return total, found
}

// SumPrecipitation totals the precipitation of monthly rows.
func SumPrecipitation(rows []domain.MonthlyRecord) decimal.Decimal {
	sum := decimal.Zero
	for _, r := range rows {
		sum = sum.Add(r.Precipitation)
	}
	return sum
}
