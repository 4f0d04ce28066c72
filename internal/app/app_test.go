package app

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sheetcalc/internal/config"
	"sheetcalc/internal/shared/testutil"
	"sheetcalc/internal/weather"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()

	dir := t.TempDir()
	cfg := config.Default()
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = 0
	cfg.Server.ShutdownTimeout = 5 * time.Second
	cfg.Security.RateLimit.Enabled = false
	cfg.Paths = config.PathsConfig{
		DataDir:    filepath.Join(dir, "data"),
		ReportsDir: filepath.Join(dir, "reports"),
		LogsDir:    filepath.Join(dir, "logs"),
	}
	cfg.Reports.InputDir = filepath.Join(dir, "inbox")
	cfg.Reports.OutputDir = cfg.Paths.ReportsDir
	require.NoError(t, cfg.Paths.EnsureDirectories())
	return cfg
}

func newTestApp(t *testing.T, cfg *config.Config) *Application {
	t.Helper()

	logger, _ := testutil.NewTestLogger(t)
	app, err := New(cfg, logger)
	require.NoError(t, err)
	return app
}

func uploadRequest(t *testing.T, target, filename string, content []byte, fields map[string]string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func serve(app *Application, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

func TestNew(t *testing.T) {
	t.Run("requires configuration", func(t *testing.T) {
		_, err := New(nil, nil)
		assert.Error(t, err)
	})

	t.Run("wires services and server", func(t *testing.T) {
		cfg := testConfig(t)
		app := newTestApp(t, cfg)

		require.NotNil(t, app.Services)
		assert.NotNil(t, app.Services.Valuation)
		assert.NotNil(t, app.Services.Weather)
		assert.NotNil(t, app.Services.Health)
		assert.NotNil(t, app.Services.Reports)
		assert.Nil(t, app.Scheduler)

		assert.Equal(t, "127.0.0.1:0", app.Server.Addr)
		assert.Equal(t, cfg.Server.ReadTimeout, app.Server.ReadTimeout)
		assert.Equal(t, cfg.Server.WriteTimeout, app.Server.WriteTimeout)
		assert.Equal(t, app.Router, app.Server.Handler)
	})

	t.Run("creates scheduler when a schedule is set", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Reports.Schedule = "0 6 * * *"
		app := newTestApp(t, cfg)
		assert.NotNil(t, app.Scheduler)
	})

	t.Run("rejects invalid schedule", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Reports.Schedule = "every morning"
		logger, _ := testutil.NewTestLogger(t)
		_, err := New(cfg, logger)
		assert.Error(t, err)
	})
}

func TestRouter_Health(t *testing.T) {
	app := newTestApp(t, testConfig(t))

	rec := serve(app, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))

	rec = serve(app, httptest.NewRequest(http.MethodGet, "/api/health/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(app, httptest.NewRequest(http.MethodGet, "/api/health/live", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(app, httptest.NewRequest(http.MethodGet, "/api/version", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_TradingMTM(t *testing.T) {
	app := newTestApp(t, testConfig(t))
	content := testutil.WorkbookBytes(t, testutil.TradingSheets()...)

	req := uploadRequest(t, "/api/trading/mtm", "trades.xlsx", content, map[string]string{
		"valuation_date": "2024-01-15",
	})
	rec := serve(app, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body struct {
		Rows []map[string]any `json:"rows"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Rows, 3)
	assert.Equal(t, "C-001", body.Rows[0]["Contract_Ref"])
	assert.InDelta(t, 9261.0, body.Rows[0]["MTM Value"], 1e-9)
	assert.Nil(t, body.Rows[2]["MTM Value"])
}

func TestRouter_TradingMTMRejectsNonWorkbook(t *testing.T) {
	app := newTestApp(t, testConfig(t))

	req := uploadRequest(t, "/api/trading/mtm", "notes.txt", []byte("hello"), nil)
	rec := serve(app, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
}

func TestRouter_WeatherAnswer(t *testing.T) {
	cfg := testConfig(t)
	app := newTestApp(t, cfg)

	path := filepath.Join(t.TempDir(), "weather.xlsx")
	require.NoError(t, weather.WriteMockWorkbook(path, cfg.Weather))
	content, err := os.ReadFile(path)
	require.NoError(t, err)

	req := uploadRequest(t, "/api/weather/answer", "weather.xlsx", content, map[string]string{
		"question": "What is the total precipitation amount of district Lucknow in each August and September from year 2001 to 2005?",
	})
	rec := serve(app, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body struct {
		Answer string           `json:"answer"`
		Table  []map[string]any `json:"table"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body.Answer, "Lucknow")
	assert.Len(t, body.Table, 10)
}

func TestRouter_WeatherShortQuestionGetsFallback(t *testing.T) {
	cfg := testConfig(t)
	app := newTestApp(t, cfg)

	path := filepath.Join(t.TempDir(), "weather.xlsx")
	require.NoError(t, weather.WriteMockWorkbook(path, cfg.Weather))
	content, err := os.ReadFile(path)
	require.NoError(t, err)

	req := uploadRequest(t, "/api/weather/answer", "weather.xlsx", content, map[string]string{"question": "hi"})
	rec := serve(app, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body struct {
		Answer string `json:"answer"`
		Intent string `json:"intent"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, weather.UnknownQuestionText, body.Answer)
	assert.Equal(t, "unknown", body.Intent)
}

func TestRouter_NotFound(t *testing.T) {
	app := newTestApp(t, testConfig(t))

	rec := serve(app, httptest.NewRequest(http.MethodGet, "/api/nothing-here", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
}

func TestRouter_CORSPreflight(t *testing.T) {
	app := newTestApp(t, testConfig(t))

	tests := []struct {
		name        string
		origin      string
		allowOrigin string
	}{
		{"vite dev server", "http://localhost:5173", "http://localhost:5173"},
		{"loopback vite", "http://127.0.0.1:5173", "http://127.0.0.1:5173"},
		{"react dev server", "http://localhost:3000", "http://localhost:3000"},
		{"unknown origin", "http://evil.example", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodOptions, "/api/trading/mtm", nil)
			req.Header.Set("Origin", tt.origin)
			req.Header.Set("Access-Control-Request-Method", http.MethodPost)

			rec := serve(app, req)

			assert.Equal(t, http.StatusNoContent, rec.Code)
			assert.Equal(t, tt.allowOrigin, rec.Header().Get("Access-Control-Allow-Origin"))
			if tt.allowOrigin != "" {
				assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
			}
		})
	}
}

func TestRouter_Metrics(t *testing.T) {
	app := newTestApp(t, testConfig(t))

	serve(app, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	rec := serve(app, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")
}

func TestRouter_MetricsDisabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.Telemetry.EnableMetrics = false
	app := newTestApp(t, cfg)

	rec := serve(app, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRouter_RateLimit(t *testing.T) {
	cfg := testConfig(t)
	cfg.Security.RateLimit = config.RateLimitConfig{Enabled: true, RPS: 1, Burst: 1}
	app := newTestApp(t, cfg)

	first := serve(app, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	second := serve(app, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "1", second.Header().Get("Retry-After"))
}

func TestApplication_StartStop(t *testing.T) {
	cfg := testConfig(t)
	cfg.Reports.Schedule = "0 6 * * *"
	app := newTestApp(t, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, app.Start(ctx, cancel))

	require.NoError(t, app.Stop(context.Background()))
	assert.NoError(t, ctx.Err(), "a clean shutdown must not cancel the run context")
}
