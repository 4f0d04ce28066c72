package weather

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sheetcalc/internal/config"
	apperrors "sheetcalc/internal/errors"
	"sheetcalc/internal/shared/testutil"
	"sheetcalc/internal/spreadsheet"
	"sheetcalc/pkg/contracts/domain"
)

const lucknowQuestion = "What is the total precipitation amount of district Lucknow in each August and September from year 2001 to 2005?"

func mockTables(t *testing.T) *Tables {
	t.Helper()

	f, err := MockWorkbook(config.DefaultWeatherConfig())
	require.NoError(t, err)
	wb := spreadsheet.FromFile(f, "mock", nil)
	defer wb.Close()

	tables, err := LoadTables(wb, config.DefaultWeatherConfig())
	require.NoError(t, err)
	return tables
}

func TestParseQuestion(t *testing.T) {
	tests := []struct {
		name     string
		question string
		want     Query
	}{
		{
			name:     "district months and years",
			question: lucknowQuestion,
			want: Query{
				Intent:    domain.IntentMonthlyDistrictTotal,
				District:  "Lucknow",
				Months:    []int{8, 9},
				StartYear: 2001,
				EndYear:   2005,
			},
		},
		{
			name:     "multi word district and comma list",
			question: "  Total rain of DISTRICT new delhi in each june, july and   august from year 1999 to 2000",
			want: Query{
				Intent:    domain.IntentMonthlyDistrictTotal,
				District:  "New Delhi",
				Months:    []int{6, 7, 8},
				StartYear: 1999,
				EndYear:   2000,
			},
		},
		{
			name:     "state comparison",
			question: "Compare the precipitation amount of state Uttar Pradesh and state Maharashtra in the second week of November 2005",
			want: Query{
				Intent: domain.IntentWeeklyStateCompare,
				StateA: "Uttar Pradesh",
				StateB: "Maharashtra",
				Week:   2,
				Month:  11,
				Year:   2005,
			},
		},
		{
			name:     "unknown ordinal defaults to second week",
			question: "state kerala and state goa in the last week of nov 2024",
			want: Query{
				Intent: domain.IntentWeeklyStateCompare,
				StateA: "Kerala",
				StateB: "Goa",
				Week:   2,
				Month:  0,
				Year:   2024,
			},
		},
		{
			name:     "unsupported question",
			question: "How hot was it yesterday?",
			want:     Query{Intent: domain.IntentUnknown},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseQuestion(tt.question))
		})
	}
}

func TestAnswerMonthlyDistrictTotal(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	assistant := NewAssistant(config.DefaultWeatherConfig(), logger)

	answer := assistant.Answer(context.Background(), lucknowQuestion, mockTables(t))

	assert.Equal(t, domain.IntentMonthlyDistrictTotal, answer.Intent)
	assert.Equal(t,
		"Total precipitation in district Lucknow for months [8, 9] from 2001 to 2005 is 2150.00 units. See table for yearly/monthly breakdown.",
		answer.Text)

	require.NotNil(t, answer.Table)
	assert.Equal(t, []string{"Year", "Month", "State", "District", "Monthly Precipitation"}, answer.Table.Columns)
	require.Equal(t, 10, answer.Table.Len())

	prevYear, prevMonth := 0, 0
	for _, row := range answer.Table.Rows {
		year, month := row[0].(int), row[1].(int)
		assert.True(t, year > prevYear || (year == prevYear && month > prevMonth), "rows sorted by year and month")
		assert.Contains(t, []int{8, 9}, month)
		assert.Equal(t, "Lucknow", row[3])
		prevYear, prevMonth = year, month
	}
	first := answer.Table.Rows[0]
	assert.Equal(t, []any{2001, 8, "Uttar Pradesh", "Lucknow"}, first[:4])
	assert.True(t, decimal.NewFromInt(210).Equal(first[4].(decimal.Decimal)))

	testutil.AssertLogAttr(t, logs, "intent", string(domain.IntentMonthlyDistrictTotal))
}

func TestAnswerMonthlyDistrictNoRows(t *testing.T) {
	assistant := NewAssistant(config.DefaultWeatherConfig(), nil)

	answer := assistant.Answer(context.Background(),
		"district pune in each august from year 2001 to 2005", mockTables(t))

	assert.Equal(t, domain.IntentMonthlyDistrictTotal, answer.Intent)
	assert.Equal(t, "No monthly precipitation data found for district Pune in the requested period.", answer.Text)
	assert.Nil(t, answer.Table)
}

func TestAnswerUnknownQuestion(t *testing.T) {
	assistant := NewAssistant(config.DefaultWeatherConfig(), nil)

	answer := assistant.Answer(context.Background(), "Will it rain tomorrow in Lucknow?", mockTables(t))

	assert.Equal(t, domain.IntentUnknown, answer.Intent)
	assert.Equal(t, UnknownQuestionText, answer.Text)
	assert.Nil(t, answer.Table)
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAnswerWeeklyStateCompare(t *testing.T) {
	daily := []domain.DailyRecord{
		// ISO week 1 of 2024 runs from Monday 2024-01-01.
		{Date: day(2024, 1, 1), State: "Kerala", Precipitation: decimal.RequireFromString("3.5")},
		{Date: day(2024, 1, 7), State: "kerala", Precipitation: decimal.RequireFromString("1.25")},
		{Date: day(2024, 1, 8), State: "Kerala", Precipitation: decimal.RequireFromString("100")},
		// Calendar 2024 but ISO week 1 of 2025: still counted for 2024.
		{Date: day(2024, 12, 30), State: "Kerala", Precipitation: decimal.RequireFromString("2")},
		// Different calendar year.
		{Date: day(2023, 12, 31), State: "Kerala", Precipitation: decimal.RequireFromString("50")},
	}
	assistant := NewAssistant(config.DefaultWeatherConfig(), nil)

	answer := assistant.Answer(context.Background(),
		"Compare state Kerala and state Goa in the first week of March 2024", &Tables{Daily: daily})

	assert.Equal(t, domain.IntentWeeklyStateCompare, answer.Intent)
	assert.Equal(t,
		"In week 1 of 2024, state Kerala had 6.75 units of precipitation, while state Goa had 0.00 units.",
		answer.Text)
	require.NotNil(t, answer.Table)
	assert.Equal(t, []string{"State", "Total Weekly Precipitation", "Year", "ISO_Week"}, answer.Table.Columns)
	require.Equal(t, 2, answer.Table.Len())
	assert.Equal(t, "Kerala", answer.Table.Rows[0][0])
	assert.True(t, decimal.RequireFromString("6.75").Equal(answer.Table.Rows[0][1].(decimal.Decimal)))
	assert.Equal(t, "Goa", answer.Table.Rows[1][0])
	assert.True(t, answer.Table.Rows[1][1].(decimal.Decimal).IsZero())
	assert.Equal(t, 2024, answer.Table.Rows[1][2])
	assert.Equal(t, 1, answer.Table.Rows[1][3])
}

func TestAnswerRoundsHalfToEven(t *testing.T) {
	daily := []domain.DailyRecord{
		{Date: day(2024, 1, 2), State: "Kerala", Precipitation: decimal.RequireFromString("0.125")},
		{Date: day(2024, 1, 3), State: "Goa", Precipitation: decimal.RequireFromString("0.375")},
	}
	assistant := NewAssistant(config.DefaultWeatherConfig(), nil)

	answer := assistant.Answer(context.Background(),
		"Compare state Kerala and state Goa in the first week of January 2024", &Tables{Daily: daily})

	assert.Equal(t,
		"In week 1 of 2024, state Kerala had 0.12 units of precipitation, while state Goa had 0.38 units.",
		answer.Text)
}

func TestAnswerWeeklyNoData(t *testing.T) {
	assistant := NewAssistant(config.DefaultWeatherConfig(), nil)

	answer := assistant.Answer(context.Background(),
		"Compare the precipitation amount of state Uttar Pradesh and state Maharashtra in the second week of November 2005",
		mockTables(t))

	assert.Equal(t, domain.IntentWeeklyStateCompare, answer.Intent)
	assert.Equal(t, NoWeeklyDataText, answer.Text)
	assert.Nil(t, answer.Table)
}

func TestLoadTablesFromMock(t *testing.T) {
	tables := mockTables(t)

	require.Len(t, tables.Daily, 9)
	require.Len(t, tables.Monthly, 14)
	assert.Equal(t, day(2000, 1, 1), tables.Daily[0].Date)
	assert.Equal(t, "Uttar Pradesh", tables.Daily[0].State)
	assert.True(t, decimal.RequireFromString("2.4").Equal(tables.Daily[0].Precipitation))
	require.NotNil(t, tables.Monthly[4].Year)
	assert.Equal(t, 2001, *tables.Monthly[4].Year)
	assert.Equal(t, 8, *tables.Monthly[4].Month)
}

func TestLoadTablesCoercion(t *testing.T) {
	data := testutil.WorkbookBytes(t,
		testutil.Sheet{Name: "Daily", Rows: [][]any{
			{"Date", "State", "District", "Daily Precipitation"},
			{"2024-01-02", " Goa ", "North Goa", "n/a"},
		}},
		testutil.Sheet{Name: "Monthly", Rows: [][]any{
			{"Year", "Month", "State", "District", "Monthly Precipitation"},
			{"twenty", 8, "Goa", "North Goa", 10},
		}},
	)
	wb := openBytes(t, data)

	tables, err := LoadTables(wb, config.DefaultWeatherConfig())
	require.NoError(t, err)
	assert.Equal(t, "Goa", tables.Daily[0].State)
	assert.True(t, tables.Daily[0].Precipitation.IsZero())
	assert.Nil(t, tables.Monthly[0].Year)

	rows := MonthlyByDistrict(tables.Monthly, "north goa", []int{8}, 0, 9999)
	assert.Empty(t, rows, "rows without a year never match")
}

func TestLoadTablesErrors(t *testing.T) {
	t.Run("malformed daily date", func(t *testing.T) {
		wb := openBytes(t, testutil.WorkbookBytes(t,
			testutil.Sheet{Name: "Daily", Rows: [][]any{
				{"Date", "State", "District", "Daily Precipitation"},
				{"yesterday", "Goa", "North Goa", 1},
			}},
			testutil.Sheet{Name: "Monthly", Rows: [][]any{{"Year", "Month", "State", "District", "Monthly Precipitation"}}},
		))
		_, err := LoadTables(wb, config.DefaultWeatherConfig())
		require.Error(t, err)
		assert.True(t, apperrors.IsDataFormatError(err))
	})

	t.Run("missing monthly sheet", func(t *testing.T) {
		wb := openBytes(t, testutil.WorkbookBytes(t,
			testutil.Sheet{Name: "Daily", Rows: [][]any{{"Date", "State", "District", "Daily Precipitation"}}},
		))
		_, err := LoadTables(wb, config.DefaultWeatherConfig())
		require.Error(t, err)
		assert.True(t, apperrors.IsSchemaError(err))
	})

	t.Run("missing column", func(t *testing.T) {
		wb := openBytes(t, testutil.WorkbookBytes(t,
			testutil.Sheet{Name: "Daily", Rows: [][]any{{"Date", "State", "District"}}},
			testutil.Sheet{Name: "Monthly", Rows: [][]any{{"Year", "Month", "State", "District", "Monthly Precipitation"}}},
		))
		_, err := LoadTables(wb, config.DefaultWeatherConfig())
		require.Error(t, err)
		assert.True(t, apperrors.IsSchemaError(err))
		assert.Contains(t, err.Error(), "Daily Precipitation")
	})
}

func TestAnswerWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weather.xlsx")
	require.NoError(t, WriteMockWorkbook(path, config.DefaultWeatherConfig()))
	wb, err := spreadsheet.OpenFile(path, nil)
	require.NoError(t, err)
	defer wb.Close()

	answer, err := NewAssistant(config.DefaultWeatherConfig(), nil).AnswerWorkbook(context.Background(), wb, lucknowQuestion)
	require.NoError(t, err)
	assert.Contains(t, answer.Text, "2150.00")
}

func openBytes(t *testing.T, data []byte) *spreadsheet.Workbook {
	t.Helper()
	wb, err := spreadsheet.Open(bytes.NewReader(data), "weather.xlsx", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = wb.Close() })
	return wb
}
