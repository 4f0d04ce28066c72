package mtm

import (
	"bytes"
	"context"
	"log/slog"
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

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func nd(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(dec(s))
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func price(date time.Time, index, tenor, value string) domain.PriceRecord {
	p := domain.PriceRecord{Date: date, IndexName: index, Tenor: tenor}
	if value != "" {
		p.Price = nd(value)
	}
	return p
}

func TestLatestPricesAsOf(t *testing.T) {
	prices := []domain.PriceRecord{
		price(day(2024, 1, 1), "IndexA", "TenorX", "100"),
		price(day(2024, 2, 1), "IndexA", "TenorX", "110"),
	}
	key := domain.PriceKey{IndexName: "IndexA", Tenor: "TenorX"}

	tests := []struct {
		name string
		asOf time.Time
		want decimal.NullDecimal
	}{
		{"between prices", day(2024, 1, 15), nd("100")},
		{"after last price", day(2024, 2, 15), nd("110")},
		{"on price date", day(2024, 2, 1), nd("110")},
		{"before first price", day(2023, 12, 31), decimal.NullDecimal{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LatestPrices(prices, tt.asOf).Resolve(key)
			assert.Equal(t, tt.want.Valid, got.Valid)
			if tt.want.Valid {
				assert.True(t, tt.want.Decimal.Equal(got.Decimal), "got %s", got.Decimal)
			}
		})
	}
}

func TestLatestPricesTiesAndGaps(t *testing.T) {
	key := domain.PriceKey{IndexName: "IODEX", Tenor: "Mar-24"}

	t.Run("later row wins a tie", func(t *testing.T) {
		ix := LatestPrices([]domain.PriceRecord{
			price(day(2024, 3, 1), "IODEX", "Mar-24", "101"),
			price(day(2024, 3, 1), "IODEX", "Mar-24", "102"),
		}, day(2024, 3, 31))
		assert.True(t, ix.Resolve(key).Decimal.Equal(dec("102")))
	})

	t.Run("undated rows are ignored", func(t *testing.T) {
		ix := LatestPrices([]domain.PriceRecord{
			price(day(2024, 3, 1), "IODEX", "Mar-24", "101"),
			price(time.Time{}, "IODEX", "Mar-24", "999"),
		}, day(2024, 3, 31))
		assert.True(t, ix.Resolve(key).Decimal.Equal(dec("101")))
		assert.Equal(t, 1, ix.Len())
	})

	t.Run("latest record with null price resolves null", func(t *testing.T) {
		ix := LatestPrices([]domain.PriceRecord{
			price(day(2024, 3, 1), "IODEX", "Mar-24", "101"),
			price(day(2024, 3, 5), "IODEX", "Mar-24", ""),
		}, day(2024, 3, 31))
		assert.False(t, ix.Resolve(key).Valid)
		rec, ok := ix.Lookup(key)
		require.True(t, ok)
		assert.Equal(t, day(2024, 3, 5), rec.Date)
	})

	t.Run("key match is exact", func(t *testing.T) {
		ix := LatestPrices([]domain.PriceRecord{
			price(day(2024, 3, 1), "iodex", "Mar-24", "101"),
		}, day(2024, 3, 31))
		assert.False(t, ix.Resolve(key).Valid)
	})
}

func TestInferValuationDate(t *testing.T) {
	got, err := InferValuationDate([]domain.PriceRecord{
		price(day(2024, 1, 1), "A", "X", "1"),
		price(time.Time{}, "A", "X", "1"),
		price(day(2024, 2, 1), "A", "X", "1"),
	})
	require.NoError(t, err)
	assert.Equal(t, day(2024, 2, 1), got)

	_, err = InferValuationDate(nil)
	require.Error(t, err)
	assert.True(t, apperrors.IsConfigurationError(err))
	assert.Contains(t, err.Error(), "cannot infer valuation date: no prices")
}

func TestFeAdjustmentRatio(t *testing.T) {
	tests := []struct {
		name string
		fe   decimal.NullDecimal
		flag string
		want string
	}{
		{"reference grade", nd("62"), "", "1"},
		{"lower grade", nd("55.8"), "", "0.9"},
		{"no adjust flag", nd("55.8"), "NOADJ", "1"},
		{"no adjust flag any case", nd("55.8"), "NoAdj", "1"},
		{"other flag", nd("55.8"), "ADJ", "0.9"},
		{"missing typical fe", decimal.NullDecimal{}, "", "1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FeAdjustmentRatio(domain.ContractRecord{TypicalFe: tt.fe, FeAdjFlag: tt.flag})
			assert.True(t, dec(tt.want).Equal(got), "got %s", got)
		})
	}
}

func TestQuantityDMT(t *testing.T) {
	tests := []struct {
		name     string
		quantity decimal.NullDecimal
		unit     string
		moisture decimal.NullDecimal
		want     decimal.NullDecimal
	}{
		{"wet tonnes", nd("100"), "WMT", nd("0.1"), nd("90")},
		{"wet tonnes lower case", nd("100"), "wmt", nd("0.1"), nd("90")},
		{"wet tonnes without moisture", nd("100"), "WMT", decimal.NullDecimal{}, nd("100")},
		{"dry tonnes ignore moisture", nd("100"), "DMT", nd("0.1"), nd("100")},
		{"no unit", nd("100"), "", nd("0.1"), nd("100")},
		{"missing quantity", decimal.NullDecimal{}, "WMT", nd("0.1"), decimal.NullDecimal{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := QuantityDMT(domain.ContractRecord{Quantity: tt.quantity, Unit: tt.unit, Moisture: tt.moisture})
			require.Equal(t, tt.want.Valid, got.Valid)
			if tt.want.Valid {
				assert.True(t, tt.want.Decimal.Equal(got.Decimal), "got %s", got.Decimal)
			}
		})
	}
}

func TestComposeValue(t *testing.T) {
	got := ComposeValue(nd("100"), dec("1"), nd("5"), nd("0.98"), nd("90"))
	require.True(t, got.Valid)
	assert.True(t, dec("9261").Equal(got.Decimal), "got %s", got.Decimal)

	got = ComposeValue(nd("100"), dec("1"), decimal.NullDecimal{}, decimal.NullDecimal{}, nd("2"))
	require.True(t, got.Valid)
	assert.True(t, dec("200").Equal(got.Decimal), "null cost is 0 and null discount is 1")

	assert.False(t, ComposeValue(decimal.NullDecimal{}, dec("1"), nd("5"), nd("1"), nd("90")).Valid)
	assert.False(t, ComposeValue(nd("100"), dec("1"), nd("5"), nd("1"), decimal.NullDecimal{}).Valid)
}

func tradingSheets() []testutil.Sheet {
	return []testutil.Sheet{
		{Name: "Price", Rows: [][]any{
			{"Price Date", "Index Name", "Tenor", "Price"},
			{day(2024, 1, 1), "IODEX", "Feb-24", 100},
			{day(2024, 2, 1), "IODEX", "Feb-24", 110},
			{day(2024, 1, 10), "MB65", "Feb-24", 120},
		}},
		{Name: "Contracts", Rows: [][]any{
			{"Contract_Ref", "Counterparty", "Base Index", "Tenor", "Typical Fe", "Fe Adj Flag", "Cost", "Discount", "Quantity", "Unit", "Moisture"},
			{"C-001", "Acme", "IODEX", "Feb-24", 62, "", 5, 0.98, 100, "WMT", 0.1},
			{"C-002", "Bolt", "MB65", "Feb-24", 55.8, "NoAdj", nil, nil, 10, "DMT", nil},
			{"C-003", "", "PLATTS", "Feb-24", 62, "", 5, 1, 10, "DMT", nil},
		}},
	}
}

func openTrading(t *testing.T, sheets ...testutil.Sheet) *spreadsheet.Workbook {
	t.Helper()
	wb, err := spreadsheet.Open(bytes.NewReader(testutil.WorkbookBytes(t, sheets...)), "trading.xlsx", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = wb.Close() })
	return wb
}

func TestValueWorkbook(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	engine := NewEngine(config.DefaultMTMConfig(), logger)
	wb := openTrading(t, tradingSheets()...)

	report, err := engine.ValueWorkbook(context.Background(), wb, "2024-01-15")
	require.NoError(t, err)
	require.Equal(t, 3, report.Len())
	assert.Equal(t, day(2024, 1, 15), report.ValuationDate)

	first := report.Contracts[0]
	assert.Equal(t, "C-001", first.ContractID)
	assert.True(t, first.BaseIndexPrice.Decimal.Equal(dec("100")))
	assert.True(t, first.FeAdjustmentRatio.Equal(dec("1")))
	assert.True(t, first.QuantityDMT.Decimal.Equal(dec("90")))
	assert.True(t, first.MTMValue.Decimal.Equal(dec("9261")), "got %s", first.MTMValue.Decimal)
	assert.Equal(t, "Acme", first.Attributes["Counterparty"])

	second := report.Contracts[1]
	assert.True(t, second.FeAdjustmentRatio.Equal(dec("1")))
	assert.True(t, second.MTMValue.Decimal.Equal(dec("1200")))

	third := report.Contracts[2]
	assert.False(t, third.Priced())
	assert.False(t, third.BaseIndexPrice.Valid)
	assert.False(t, third.MTMValue.Valid)
	assert.Equal(t, day(2024, 1, 15), third.ValuationDate)

	summary := report.Summary()
	assert.Equal(t, 3, summary.Contracts)
	assert.Equal(t, 2, summary.Priced)
	assert.Equal(t, 1, summary.Unpriced)
	assert.True(t, summary.TotalMTM.Equal(dec("10461")))

	testutil.AssertLogContains(t, logs, slog.LevelInfo, "contracts valued")
	testutil.AssertLogAttr(t, logs, "unpriced", int64(1))
}

func TestValueWorkbookInfersValuationDate(t *testing.T) {
	engine := NewEngine(config.DefaultMTMConfig(), nil)
	wb := openTrading(t, tradingSheets()...)

	report, err := engine.ValueWorkbook(context.Background(), wb, "")
	require.NoError(t, err)
	assert.Equal(t, day(2024, 2, 1), report.ValuationDate)
	assert.True(t, report.Contracts[0].BaseIndexPrice.Decimal.Equal(dec("110")))
}

func TestComputeKeepsTimeOfDayForFilter(t *testing.T) {
	engine := NewEngine(config.DefaultMTMConfig(), nil)
	prices := []domain.PriceRecord{
		price(time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC), "IODEX", "Feb-24", "100"),
	}
	contracts := NewContractSheet([]domain.ContractRecord{
		{ContractID: "C-1", IndexName: "IODEX", Tenor: "Feb-24", Quantity: nd("1")},
	}, config.DefaultMTMConfig())

	asOf := time.Date(2024, 1, 15, 8, 0, 0, 0, time.UTC)
	report, err := engine.Compute(context.Background(), prices, contracts, &asOf)
	require.NoError(t, err)
	assert.False(t, report.Contracts[0].BaseIndexPrice.Valid)
	assert.Equal(t, day(2024, 1, 15), report.ValuationDate)
}

func TestComputeRowCountPreserved(t *testing.T) {
	engine := NewEngine(config.DefaultMTMConfig(), nil)
	contracts := NewContractSheet([]domain.ContractRecord{
		{ContractID: "A"}, {ContractID: "B"}, {ContractID: "C"},
	}, config.DefaultMTMConfig())
	asOf := day(2024, 1, 1)

	report, err := engine.Compute(context.Background(), nil, contracts, &asOf)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Len())
	for _, c := range report.Contracts {
		assert.False(t, c.MTMValue.Valid)
	}
}

func TestComputeErrors(t *testing.T) {
	cfg := config.DefaultMTMConfig()
	engine := NewEngine(cfg, nil)
	contracts := NewContractSheet([]domain.ContractRecord{{ContractID: "A"}}, cfg)

	t.Run("no prices and no date", func(t *testing.T) {
		_, err := engine.Compute(context.Background(), nil, contracts, nil)
		require.ErrorIs(t, err, ErrNoPrices)
		assert.True(t, apperrors.IsConfigurationError(err))
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		asOf := day(2024, 1, 1)
		_, err := engine.Compute(ctx, nil, contracts, &asOf)
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestValueWorkbookErrors(t *testing.T) {
	engine := NewEngine(config.DefaultMTMConfig(), nil)
	sheets := tradingSheets()

	t.Run("missing contracts sheet", func(t *testing.T) {
		wb := openTrading(t, sheets[0])
		_, err := engine.ValueWorkbook(context.Background(), wb, "2024-01-15")
		require.Error(t, err)
		assert.True(t, apperrors.IsSchemaError(err))
		assert.Contains(t, err.Error(), `"Contracts"`)
	})

	t.Run("missing required column", func(t *testing.T) {
		contracts := testutil.Sheet{Name: "Contracts", Rows: [][]any{
			{"Contract_Ref", "Base Index", "Tenor", "Quantity"},
			{"C-001", "IODEX", "Feb-24", 100},
		}}
		wb := openTrading(t, sheets[0], contracts)
		_, err := engine.ValueWorkbook(context.Background(), wb, "2024-01-15")
		require.Error(t, err)
		assert.True(t, apperrors.IsSchemaError(err))
		assert.Contains(t, err.Error(), "Typical Fe")
	})

	t.Run("malformed price date", func(t *testing.T) {
		prices := testutil.Sheet{Name: "Price", Rows: [][]any{
			{"Price Date", "Index Name", "Tenor", "Price"},
			{"not a date", "IODEX", "Feb-24", 100},
		}}
		wb := openTrading(t, prices, sheets[1])
		_, err := engine.ValueWorkbook(context.Background(), wb, "2024-01-15")
		require.Error(t, err)
		assert.True(t, apperrors.IsDataFormatError(err))
	})

	t.Run("malformed valuation date", func(t *testing.T) {
		wb := openTrading(t, sheets...)
		_, err := engine.ValueWorkbook(context.Background(), wb, "15th of never")
		require.Error(t, err)
		assert.True(t, apperrors.IsDataFormatError(err))
	})

	t.Run("empty price sheet and no date", func(t *testing.T) {
		prices := testutil.Sheet{Name: "Price", Rows: [][]any{{"Price Date", "Index Name", "Tenor", "Price"}}}
		wb := openTrading(t, prices, sheets[1])
		_, err := engine.ValueWorkbook(context.Background(), wb, "")
		require.ErrorIs(t, err, ErrNoPrices)
	})
}

func TestValueWorkbookOptionalColumnsAbsent(t *testing.T) {
	wb := openTrading(t,
		testutil.Sheet{Name: "Price", Rows: [][]any{
			{"Price Date", "Index Name", "Tenor", "Price"},
			{day(2024, 1, 1), "IODEX", "Feb-24", 100},
		}},
		testutil.Sheet{Name: "Contracts", Rows: [][]any{
			{"Contract_Ref", "Base Index", "Tenor", "Typical Fe", "Quantity"},
			{"C-001", "IODEX", "Feb-24", 55.8, 100},
		}},
	)

	report, err := NewEngine(config.DefaultMTMConfig(), nil).ValueWorkbook(context.Background(), wb, "2024-01-15")
	require.NoError(t, err)
	require.Equal(t, 1, report.Len())

	c := report.Contracts[0]
	assert.Empty(t, c.FeAdjFlag)
	assert.Empty(t, c.Unit)
	assert.False(t, c.Cost.Valid)
	assert.False(t, c.Discount.Valid)
	assert.False(t, c.Moisture.Valid)
	assert.True(t, c.FeAdjustmentRatio.Equal(dec("0.9")), "got %s", c.FeAdjustmentRatio)
	assert.True(t, c.QuantityDMT.Decimal.Equal(dec("100")))
	assert.True(t, c.MTMValue.Decimal.Equal(dec("9000")), "got %s", c.MTMValue.Decimal)

	assert.Equal(t, []string{
		"Contract_Ref", "Base Index", "Tenor", "Typical Fe", "Quantity",
		"Base Index Price", "Fe Adjustment Ratio", "Quantity (DMT)", "MTM Value", "Valuation Date",
	}, report.Table().Columns)
}

func TestValueWorkbookEmptyContracts(t *testing.T) {
	sheets := tradingSheets()
	sheets[1].Rows = sheets[1].Rows[:1]

	report, err := NewEngine(config.DefaultMTMConfig(), nil).ValueWorkbook(context.Background(), openTrading(t, sheets...), "2024-01-15")
	require.NoError(t, err)
	assert.Zero(t, report.Len())

	table := report.Table()
	assert.Equal(t, report.Columns(), table.Columns)
	records := table.Records()
	assert.NotNil(t, records)
	assert.Empty(t, records)

	summary := report.Summary()
	assert.Zero(t, summary.Contracts)
	assert.True(t, summary.TotalMTM.IsZero())
}

func TestReportTable(t *testing.T) {
	cfg := config.DefaultMTMConfig()
	sheets := tradingSheets()
	sheets[1].Rows[0] = append(sheets[1].Rows[0], "MTM Value")
	sheets[1].Rows[1] = append(sheets[1].Rows[1], "stale")

	report, err := NewEngine(cfg, nil).ValueWorkbook(context.Background(), openTrading(t, sheets...), "2024-01-15")
	require.NoError(t, err)

	table := report.Table()
	assert.Equal(t, "MTM Report", table.Title)
	assert.Equal(t, []string{
		"Contract_Ref", "Counterparty", "Base Index", "Tenor", "Typical Fe", "Fe Adj Flag",
		"Cost", "Discount", "Quantity", "Unit", "Moisture",
		"Base Index Price", "Fe Adjustment Ratio", "Quantity (DMT)", "MTM Value", "Valuation Date",
	}, table.Columns)
	require.Equal(t, 3, table.Len())

	records := table.Records()
	assert.Equal(t, "C-001", records[0]["Contract_Ref"])
	assert.Equal(t, "Acme", records[0]["Counterparty"])
	assert.Equal(t, 9261.0, records[0]["MTM Value"])
	assert.Equal(t, "2024-01-15T00:00:00", records[0]["Valuation Date"])
	assert.Nil(t, records[2]["Counterparty"])
	assert.Nil(t, records[2]["Base Index Price"])
	assert.Nil(t, records[2]["MTM Value"])
}

func TestReportTableKeepsSourceCellTypes(t *testing.T) {
	sheets := tradingSheets()
	contracts := sheets[1].Rows
	contracts[0] = append(contracts[0], "Delivery Date", "Lot Size", "Lot Code")
	contracts[1] = append(contracts[1], day(2024, 3, 1), 2.5, "007")
	contracts[2] = append(contracts[2], day(2024, 3, 15), 4, "012")

	report, err := NewEngine(config.DefaultMTMConfig(), nil).ValueWorkbook(context.Background(), openTrading(t, sheets...), "2024-01-15")
	require.NoError(t, err)

	first := report.Contracts[0]
	assert.Equal(t, day(2024, 3, 1), first.Attributes["Delivery Date"])
	require.IsType(t, decimal.Decimal{}, first.Attributes["Lot Size"])
	assert.True(t, first.Attributes["Lot Size"].(decimal.Decimal).Equal(dec("2.5")))
	assert.Equal(t, "007", first.Attributes["Lot Code"], "text cells stay text")
	assert.Nil(t, report.Contracts[2].Attributes["Delivery Date"])

	records := report.Table().Records()
	assert.Equal(t, "2024-03-01T00:00:00", records[0]["Delivery Date"])
	assert.Equal(t, 2.5, records[0]["Lot Size"])
	assert.Equal(t, "007", records[0]["Lot Code"])
	assert.Equal(t, "2024-03-15T00:00:00", records[1]["Delivery Date"])
	assert.Equal(t, 4.0, records[1]["Lot Size"])
	assert.Nil(t, records[2]["Lot Size"])
	assert.Equal(t, 62.0, records[0]["Typical Fe"])
}
