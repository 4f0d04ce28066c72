package services

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"sheetcalc/internal/config"
	apperrors "sheetcalc/internal/errors"
	"sheetcalc/internal/exporter"
	"sheetcalc/internal/infrastructure"
	"sheetcalc/internal/mtm"
	"sheetcalc/internal/shared/testutil"
	"sheetcalc/internal/weather"
	"sheetcalc/pkg/contracts/domain"
)

type telemetry struct {
	spans   *tracetest.InMemoryExporter
	reader  *sdkmetric.ManualReader
	tp      *sdktrace.TracerProvider
	metrics *infrastructure.Metrics
}

func newTelemetry(t *testing.T) *telemetry {
	t.Helper()

	spans := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(spans))
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		_ = mp.Shutdown(context.Background())
	})

	metrics, err := infrastructure.NewMetrics(mp.Meter("test"))
	require.NoError(t, err)
	return &telemetry{spans: spans, reader: reader, tp: tp, metrics: metrics}
}

// counter sums every data point of the named int64 counter.
func (tel *telemetry) counter(t *testing.T, name string) int64 {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, tel.reader.Collect(context.Background(), &rm))
	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok, "%s is not an int64 sum", name)
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
		}
	}
	return total
}

func newValuationService(t *testing.T, tel *telemetry) *ValuationService {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	engine := mtm.NewEngine(config.DefaultMTMConfig(), logger)
	return NewValuationService(engine, exporter.DefaultOptions(), tel.tp.Tracer("test"), tel.metrics, logger)
}

func TestValuationServiceValueUpload(t *testing.T) {
	tel := newTelemetry(t)
	svc := newValuationService(t, tel)
	data := testutil.WorkbookBytes(t, testutil.TradingSheets()...)

	report, err := svc.ValueUpload(context.Background(), bytes.NewReader(data), "trading.xlsx", "2024-01-15")
	require.NoError(t, err)

	summary := report.Summary()
	assert.Equal(t, 3, summary.Contracts)
	assert.Equal(t, 1, summary.Unpriced)
	assert.True(t, summary.TotalMTM.Equal(decimal.NewFromInt(10461)), "got %s", summary.TotalMTM)

	spans := tel.spans.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "mtm.value", spans[0].Name)

	assert.Equal(t, int64(1), tel.counter(t, "mtm_valuations_total"))
	assert.Equal(t, int64(3), tel.counter(t, "mtm_contracts_valued_total"))
	assert.Equal(t, int64(1), tel.counter(t, "mtm_contracts_unpriced_total"))
}

func TestValuationServiceErrors(t *testing.T) {
	tel := newTelemetry(t)
	svc := newValuationService(t, tel)

	t.Run("malformed upload", func(t *testing.T) {
		_, err := svc.ValueUpload(context.Background(), strings.NewReader("not a workbook"), "bad.xlsx", "")
		require.Error(t, err)
	})

	t.Run("missing contracts sheet", func(t *testing.T) {
		data := testutil.WorkbookBytes(t, testutil.TradingSheets()[0])
		_, err := svc.ValueUpload(context.Background(), bytes.NewReader(data), "prices.xlsx", "")
		require.Error(t, err)
		assert.True(t, apperrors.IsSchemaError(err), "got %v", err)
	})

	t.Run("missing file", func(t *testing.T) {
		missing := filepath.Join(t.TempDir(), "none.xlsx")
		_, err := svc.ValueFile(context.Background(), missing, "")
		require.Error(t, err)
		assert.True(t, apperrors.IsNotFoundError(err), "got %v", err)
		assert.Contains(t, err.Error(), missing)
	})
}

func TestValuationServiceExport(t *testing.T) {
	tel := newTelemetry(t)
	svc := newValuationService(t, tel)
	path := testutil.WriteWorkbook(t, "trading.xlsx", testutil.TradingSheets()...)

	report, err := svc.ValueFile(context.Background(), path, "2024-01-15")
	require.NoError(t, err)

	var csv bytes.Buffer
	require.NoError(t, svc.Export(context.Background(), report, domain.ReportFormatCSV, &csv))
	assert.Contains(t, csv.String(), "MTM Value")
	assert.Contains(t, csv.String(), "C-001")

	var pdf bytes.Buffer
	require.NoError(t, svc.Export(context.Background(), report, domain.ReportFormatPDF, &pdf))
	assert.True(t, bytes.HasPrefix(pdf.Bytes(), []byte("%PDF-")))

	out := filepath.Join(t.TempDir(), "reports", "trading_MTM.xlsx")
	require.NoError(t, svc.ExportFile(context.Background(), report, out))
	assert.FileExists(t, out)

	err = svc.Export(context.Background(), report, domain.ReportFormat("html"), &bytes.Buffer{})
	assert.Error(t, err)

	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))
	err = svc.ExportFile(context.Background(), report, filepath.Join(blocker, "trading_MTM.csv"))
	require.Error(t, err)
	assert.True(t, apperrors.IsStorageError(err), "got %v", err)

	assert.Equal(t, int64(5), tel.counter(t, "report_exports_total"))
}

func TestWeatherServiceAnswer(t *testing.T) {
	tel := newTelemetry(t)
	logger, _ := testutil.NewTestLogger(t)
	cfg := config.DefaultWeatherConfig()
	svc := NewWeatherService(weather.NewAssistant(cfg, logger), tel.tp.Tracer("test"), tel.metrics, logger)

	path := filepath.Join(t.TempDir(), "weather.xlsx")
	require.NoError(t, weather.WriteMockWorkbook(path, cfg))

	answer, err := svc.AnswerFile(context.Background(), path,
		"What is the total precipitation amount of district Lucknow in each August and September from year 2001 to 2005?")
	require.NoError(t, err)
	assert.Equal(t, domain.IntentMonthlyDistrictTotal, answer.Intent)
	assert.Equal(t, 10, answer.Table.Len())

	answer, err = svc.AnswerFile(context.Background(), path, "will it rain tomorrow?")
	require.NoError(t, err)
	assert.Equal(t, domain.IntentUnknown, answer.Intent)
	assert.Nil(t, answer.Table)

	assert.Equal(t, int64(2), tel.counter(t, "weather_questions_total"))
	assert.Len(t, tel.spans.GetSpans(), 2)

	_, err = svc.AnswerFile(context.Background(), filepath.Join(t.TempDir(), "none.xlsx"), "x")
	assert.True(t, apperrors.IsNotFoundError(err), "got %v", err)
}

func TestHealthService(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	dir := t.TempDir()

	t.Run("health", func(t *testing.T) {
		hs := NewHealthService("1.2.3", config.PathsConfig{DataDir: dir}, logger)
		status := hs.HealthCheck(context.Background())
		assert.Equal(t, "ok", status.Status)
		assert.Equal(t, "1.2.3", status.Version)
	})

	t.Run("ready", func(t *testing.T) {
		hs := NewHealthService("1.2.3", config.PathsConfig{DataDir: dir, ReportsDir: dir}, logger)
		status := hs.ReadinessCheck(context.Background())
		assert.Equal(t, "ready", status.Status)
		assert.Len(t, status.Checks, 2)
	})

	t.Run("not ready", func(t *testing.T) {
		hs := NewHealthService("1.2.3", config.PathsConfig{DataDir: filepath.Join(dir, "missing")}, logger)
		status := hs.ReadinessCheck(context.Background())
		assert.Equal(t, "not_ready", status.Status)
		assert.Equal(t, "not_ready", status.Checks["data_dir"].Status)
		assert.Equal(t, "not_ready", status.Checks["reports_dir"].Status)
	})

	t.Run("liveness and version", func(t *testing.T) {
		hs := NewHealthService("1.2.3", config.PathsConfig{}, nil)
		assert.Equal(t, "alive", hs.LivenessCheck(context.Background()).Status)
		assert.Equal(t, "1.2.3", hs.Version()["version"])
	})
}
