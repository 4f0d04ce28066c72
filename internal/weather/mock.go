package weather

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"sheetcalc/internal/config"
)

type mockDay struct {
	date     string
	state    string
	district string
	precip   float64
}

type mockMonth struct {
	year     int
	month    int
	state    string
	district string
	precip   float64
}

var mockDaily = []mockDay{
	{"2000-01-01", "Uttar Pradesh", "Lucknow", 2.40},
	{"2000-01-01", "Uttar Pradesh", "Kanpur", 2.35},
	{"2000-01-01", "Maharashtra", "Mumbai", 1.87},
	{"2000-01-01", "Maharashtra", "Pune", 6.52},
	{"2000-08-05", "Uttar Pradesh", "Lucknow", 10.0},
	{"2000-08-06", "Uttar Pradesh", "Lucknow", 12.5},
	{"2000-09-10", "Uttar Pradesh", "Lucknow", 5.0},
	{"2005-11-08", "Uttar Pradesh", "Lucknow", 3.0},
	{"2005-11-09", "Maharashtra", "Mumbai", 8.0},
}

var mockMonthly = []mockMonth{
	{2000, 1, "Uttar Pradesh", "Lucknow", 138.47},
	{2000, 1, "Uttar Pradesh", "Kanpur", 127.21},
	{2000, 1, "Maharashtra", "Mumbai", 192.72},
	{2000, 1, "Maharashtra", "Pune", 154.38},
	{2001, 8, "Uttar Pradesh", "Lucknow", 210.0},
	{2001, 9, "Uttar Pradesh", "Lucknow", 180.0},
	{2002, 8, "Uttar Pradesh", "Lucknow", 220.0},
	{2002, 9, "Uttar Pradesh", "Lucknow", 190.0},
	{2003, 8, "Uttar Pradesh", "Lucknow", 230.0},
	{2003, 9, "Uttar Pradesh", "Lucknow", 200.0},
	{2004, 8, "Uttar Pradesh", "Lucknow", 240.0},
	{2004, 9, "Uttar Pradesh", "Lucknow", 210.0},
	{2005, 8, "Uttar Pradesh", "Lucknow", 250.0},
	{2005, 9, "Uttar Pradesh", "Lucknow", 220.0},
}

// MockWorkbook builds a small demo workbook with Daily and Monthly sheets laid
// out as cfg describes. The caller closes the returned file.
func MockWorkbook(cfg config.WeatherConfig) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", cfg.DailySheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("rename daily sheet: %w", err)
	}
	if _, err := f.NewSheet(cfg.MonthlySheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("create monthly sheet: %w", err)
	}

	dateStyle, err := f.NewStyle(&excelize.Style{NumFmt: 14})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("create date style: %w", err)
	}

	daily := [][]any{{cfg.DailyDateColumn, cfg.DailyStateColumn, cfg.DailyDistrictColumn, cfg.DailyPrecipColumn}}
	for _, d := range mockDaily {
		date, err := time.Parse("2006-01-02", d.date)
		if err != nil {
			f.Close()
			return nil, err
		}
		daily = append(daily, []any{date, d.state, d.district, d.precip})
	}
	if err := writeRows(f, cfg.DailySheet, daily); err != nil {
		f.Close()
		return nil, err
	}
	last := fmt.Sprintf("A%d", len(daily))
	if err := f.SetCellStyle(cfg.DailySheet, "A2", last, dateStyle); err != nil {
		f.Close()
		return nil, fmt.Errorf("style daily dates: %w", err)
	}

	monthly := [][]any{{
		cfg.MonthlyYearColumn, cfg.MonthlyMonthColumn, cfg.MonthlyStateColumn,
		cfg.MonthlyDistrictColumn, cfg.MonthlyPrecipColumn,
	}}
	for _, m := range mockMonthly {
		monthly = append(monthly, []any{m.year, m.month, m.state, m.district, m.precip})
	}
	if err := writeRows(f, cfg.MonthlySheet, monthly); err != nil {
		f.Close()
		return nil, err
	}

	return f, nil
}

// WriteMockWorkbook saves the demo workbook to path.
func WriteMockWorkbook(path string, cfg config.WeatherConfig) error {
	f, err := MockWorkbook(cfg)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save mock workbook %s: %w", path, err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		values := row
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}
