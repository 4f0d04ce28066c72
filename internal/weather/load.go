package weather

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"sheetcalc/internal/config"
	apperrors "sheetcalc/internal/errors"
	"sheetcalc/internal/spreadsheet"
	"sheetcalc/pkg/contracts/domain"
)

// Tables holds both precipitation sheets of a workbook.
type Tables struct {
	Daily   []domain.DailyRecord
	Monthly []domain.MonthlyRecord
}

// LoadTables reads the Daily and Monthly sheets named by cfg.
func LoadTables(wb *spreadsheet.Workbook, cfg config.WeatherConfig) (*Tables, error) {
	dailySheet, err := wb.Sheet(cfg.DailySheet)
	if err != nil {
		return nil, err
	}
	daily, err := LoadDaily(dailySheet, cfg)
	if err != nil {
		return nil, err
	}

	monthlySheet, err := wb.Sheet(cfg.MonthlySheet)
	if err != nil {
		return nil, err
	}
	monthly, err := LoadMonthly(monthlySheet, cfg)
	if err != nil {
		return nil, err
	}

	return &Tables{Daily: daily, Monthly: monthly}, nil
}

// LoadDaily normalizes the Daily sheet. Dates must parse; precipitation that
// does not parse counts as zero.
func LoadDaily(sheet *spreadsheet.Sheet, cfg config.WeatherConfig) ([]domain.DailyRecord, error) {
	dateCol, err := sheet.Require("date", cfg.DailyDateColumn)
	if err != nil {
		return nil, err
	}
	stateCol, err := sheet.Require("state", cfg.DailyStateColumn)
	if err != nil {
		return nil, err
	}
	districtCol, err := sheet.Require("district", cfg.DailyDistrictColumn)
	if err != nil {
		return nil, err
	}
	precipCol, err := sheet.Require("precipitation", cfg.DailyPrecipColumn)
	if err != nil {
		return nil, err
	}

	records := make([]domain.DailyRecord, 0, sheet.Len())
	for _, row := range sheet.Rows {
		raw := row.Cell(dateCol)
		date, _, err := spreadsheet.Date(raw)
		if err != nil {
			location := fmt.Sprintf("sheet %q row %d column %q", sheet.Name, row.Number, cfg.DailyDateColumn)
			return nil, apperrors.NewDataFormatError(location, strings.TrimSpace(raw), err)
		}

		records = append(records, domain.DailyRecord{
			Date:          date,
			State:         spreadsheet.Text(row.Cell(stateCol)),
			District:      spreadsheet.Text(row.Cell(districtCol)),
			Precipitation: orZero(spreadsheet.Decimal(row.Cell(precipCol))),
		})
	}
	return records, nil
}

// LoadMonthly normalizes the Monthly sheet. Year and month cells that are
// not integers are kept as nil.
func LoadMonthly(sheet *spreadsheet.Sheet, cfg config.WeatherConfig) ([]domain.MonthlyRecord, error) {
	yearCol, err := sheet.Require("year", cfg.MonthlyYearColumn)
	if err != nil {
		return nil, err
	}
	monthCol, err := sheet.Require("month", cfg.MonthlyMonthColumn)
	if err != nil {
		return nil, err
	}
	stateCol, err := sheet.Require("state", cfg.MonthlyStateColumn)
	if err != nil {
		return nil, err
	}
	districtCol, err := sheet.Require("district", cfg.MonthlyDistrictColumn)
	if err != nil {
		return nil, err
	}
	precipCol, err := sheet.Require("precipitation", cfg.MonthlyPrecipColumn)
	if err != nil {
		return nil, err
	}

	records := make([]domain.MonthlyRecord, 0, sheet.Len())
	for _, row := range sheet.Rows {
		records = append(records, domain.MonthlyRecord{
			Year:          spreadsheet.Int(row.Cell(yearCol)),
			Month:         spreadsheet.Int(row.Cell(monthCol)),
			State:         spreadsheet.Text(row.Cell(stateCol)),
			District:      spreadsheet.Text(row.Cell(districtCol)),
			Precipitation: orZero(spreadsheet.Decimal(row.Cell(precipCol))),
		})
	}
	return records, nil
}

func orZero(d decimal.NullDecimal) decimal.Decimal {
	if !d.Valid {
		return decimal.Zero
	}
	return d.Decimal
}
