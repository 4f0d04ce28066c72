package weather

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"sheetcalc/internal/config"
	"sheetcalc/internal/spreadsheet"
	"sheetcalc/pkg/contracts/domain"
)

// Fixed replies.
const (
	UnknownQuestionText = "I could not understand this question with the simple patterns I support. " +
		"Please try phrasing it like the examples in the assessment."
	NoWeeklyDataText = "No weekly precipitation data found for the requested states/week."
)

// Column names of the weekly comparison table.
const (
	ColumnState             = "State"
	ColumnTotalWeeklyPrecip = "Total Weekly Precipitation"
	ColumnYear              = "Year"
	ColumnISOWeek           = "ISO_Week"
)

// Assistant answers precipitation questions.
type Assistant struct {
	cfg    config.WeatherConfig
	logger *slog.Logger
}

// NewAssistant creates an assistant for workbooks laid out as cfg describes.
func NewAssistant(cfg config.WeatherConfig, logger *slog.Logger) *Assistant {
	if logger == nil {
		logger = slog.Default()
	}
	return &Assistant{
		cfg:    cfg,
		logger: logger.With(slog.String("component", "weather_assistant")),
	}
}

// AnswerWorkbook loads both sheets from wb and answers question.
func (a *Assistant) AnswerWorkbook(ctx context.Context, wb *spreadsheet.Workbook, question string) (domain.WeatherAnswer, error) {
	tables, err := LoadTables(wb, a.cfg)
	if err != nil {
		return domain.WeatherAnswer{}, err
	}
	return a.Answer(ctx, question, tables), nil
}

// Answer parses question and computes the reply from tables.
func (a *Assistant) Answer(ctx context.Context, question string, tables *Tables) domain.WeatherAnswer {
	q := ParseQuestion(question)
	if tables == nil {
		tables = &Tables{}
	}

	var answer domain.WeatherAnswer
	switch q.Intent {
	case domain.IntentMonthlyDistrictTotal:
		answer = a.monthlyDistrictTotal(q, tables.Monthly)
	case domain.IntentWeeklyStateCompare:
		answer = a.weeklyStateCompare(q, tables.Daily)
	default:
		answer = domain.WeatherAnswer{Text: UnknownQuestionText, Intent: domain.IntentUnknown}
	}

	a.logger.InfoContext(ctx, "weather question answered",
		slog.String("intent", string(answer.Intent)),
		slog.Int("rows", answer.Table.Len()),
	)
	return answer
}

func (a *Assistant) monthlyDistrictTotal(q Query, monthly []domain.MonthlyRecord) domain.WeatherAnswer {
	rows := MonthlyByDistrict(monthly, q.District, q.Months, q.StartYear, q.EndYear)
	if len(rows) == 0 {
		return domain.WeatherAnswer{
			Text:   fmt.Sprintf("No monthly precipitation data found for district %s in the requested period.", q.District),
			Intent: q.Intent,
		}
	}

	table := domain.NewTable("Monthly Precipitation",
		a.cfg.MonthlyYearColumn,
		a.cfg.MonthlyMonthColumn,
		a.cfg.MonthlyStateColumn,
		a.cfg.MonthlyDistrictColumn,
		a.cfg.MonthlyPrecipColumn,
	)
	for _, r := range rows {
		table.Append(*r.Year, *r.Month, r.State, r.District, r.Precipitation)
	}

	text := fmt.Sprintf(
		"Total precipitation in district %s for months %s from %d to %d is %s units. See table for yearly/monthly breakdown.",
		q.District, formatMonths(q.Months), q.StartYear, q.EndYear, SumPrecipitation(rows).StringFixedBank(2),
	)
	return domain.WeatherAnswer{Text: text, Intent: q.Intent, Table: table}
}

func (a *Assistant) weeklyStateCompare(q Query, daily []domain.DailyRecord) domain.WeatherAnswer {
	totalA, foundA := WeeklyTotal(daily, q.StateA, q.Year, q.Week)
	totalB, foundB := WeeklyTotal(daily, q.StateB, q.Year, q.Week)
	if !foundA && !foundB {
		return domain.WeatherAnswer{Text: NoWeeklyDataText, Intent: q.Intent}
	}

	table := domain.NewTable("Weekly Precipitation", ColumnState, ColumnTotalWeeklyPrecip, ColumnYear, ColumnISOWeek)
	table.Append(q.StateA, totalA, q.Year, q.Week)
	table.Append(q.StateB, totalB, q.Year, q.Week)

	text := fmt.Sprintf(
		"In week %d of %d, state %s had %s units of precipitation, while state %s had %s units.",
		q.Week, q.Year, q.StateA, totalA.StringFixedBank(2), q.StateB, totalB.StringFixedBank(2),
	)
	return domain.WeatherAnswer{Text: text, Intent: q.Intent, Table: table}
}

// formatMonths renders month numbers as "[8, 9]".
func formatMonths(months []int) string {
	parts := make([]string, len(months))
	for i, m := range months {
		parts[i] = fmt.Sprint(m)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
