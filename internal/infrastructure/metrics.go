package infrastructure

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds the application instruments. A nil *Metrics records nothing.
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   metric.Int64Counter
	HTTPRequestDuration metric.Float64Histogram
	HTTPActiveRequests  metric.Int64UpDownCounter

	// Valuation metrics
	ValuationsTotal    metric.Int64Counter
	ValuationDuration  metric.Float64Histogram
	ContractsValued    metric.Int64Counter
	ContractsUnpriced  metric.Int64Counter
	WeatherQuestions   metric.Int64Counter
	ExportsTotal       metric.Int64Counter
	ScheduledRunsTotal metric.Int64Counter
}

// NewMetrics creates the application instruments on meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	var err error

	if m.HTTPRequestsTotal, err = meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
	); err != nil {
		return nil, err
	}
	if m.HTTPRequestDuration, err = meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}
	if m.HTTPActiveRequests, err = meter.Int64UpDownCounter(
		"http_active_requests",
		metric.WithDescription("Number of active HTTP requests"),
	); err != nil {
		return nil, err
	}

	if m.ValuationsTotal, err = meter.Int64Counter(
		"mtm_valuations_total",
		metric.WithDescription("Total number of MTM valuations by outcome"),
	); err != nil {
		return nil, err
	}
	if m.ValuationDuration, err = meter.Float64Histogram(
		"mtm_valuation_duration_seconds",
		metric.WithDescription("MTM valuation duration in seconds"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}
	if m.ContractsValued, err = meter.Int64Counter(
		"mtm_contracts_valued_total",
		metric.WithDescription("Total number of contracts valued"),
	); err != nil {
		return nil, err
	}
	if m.ContractsUnpriced, err = meter.Int64Counter(
		"mtm_contracts_unpriced_total",
		metric.WithDescription("Total number of contracts without a resolvable index price"),
	); err != nil {
		return nil, err
	}
	if m.WeatherQuestions, err = meter.Int64Counter(
		"weather_questions_total",
		metric.WithDescription("Total number of weather questions by intent"),
	); err != nil {
		return nil, err
	}
	if m.ExportsTotal, err = meter.Int64Counter(
		"report_exports_total",
		metric.WithDescription("Total number of report exports by format"),
	); err != nil {
		return nil, err
	}
	if m.ScheduledRunsTotal, err = meter.Int64Counter(
		"scheduled_report_runs_total",
		metric.WithDescription("Total number of scheduled batch report runs by status"),
	); err != nil {
		return nil, err
	}

	return m, nil
}

func status(err error) attribute.KeyValue {
	if err != nil {
		return attribute.String("status", "failure")
	}
	return attribute.String("status", "success")
}

// RecordValuation records one valuation call.
func (m *Metrics) RecordValuation(ctx context.Context, contracts, unpriced int, duration time.Duration, err error) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(status(err))
	m.ValuationsTotal.Add(ctx, 1, attrs)
	m.ValuationDuration.Record(ctx, duration.Seconds(), attrs)
	if err == nil {
		m.ContractsValued.Add(ctx, int64(contracts))
		m.ContractsUnpriced.Add(ctx, int64(unpriced))
	}
}

// RecordWeatherQuestion counts an answered question by intent.
func (m *Metrics) RecordWeatherQuestion(ctx context.Context, intent string) {
	if m == nil {
		return
	}
	m.WeatherQuestions.Add(ctx, 1, metric.WithAttributes(attribute.String("intent", intent)))
}

// RecordExport counts a rendered report by format.
func (m *Metrics) RecordExport(ctx context.Context, format string, err error) {
	if m == nil {
		return
	}
	m.ExportsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("format", format), status(err)))
}

// RecordScheduledRun counts a batch run started by the scheduler.
func (m *Metrics) RecordScheduledRun(ctx context.Context, err error) {
	if m == nil {
		return
	}
	m.ScheduledRunsTotal.Add(ctx, 1, metric.WithAttributes(status(err)))
}

// RecordHTTPRequest records a completed request.
func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, route string, statusCode int, duration time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("route", route),
		attribute.Int("status_code", statusCode),
	)
	m.HTTPRequestsTotal.Add(ctx, 1, attrs)
	m.HTTPRequestDuration.Record(ctx, duration.Seconds(), attrs)
}

// AddActiveRequests moves the in-flight request gauge by delta.
func (m *Metrics) AddActiveRequests(ctx context.Context, delta int64) {
	if m == nil {
		return
	}
	m.HTTPActiveRequests.Add(ctx, delta)
}
