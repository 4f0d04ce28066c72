package http

import (
	"context"
	"io"

	"sheetcalc/internal/mtm"
	"sheetcalc/internal/services"
	"sheetcalc/pkg/contracts/domain"
)

// ValuationService values uploaded trading workbooks.
type ValuationService interface {
	ValueUpload(ctx context.Context, r io.Reader, name, valuationDate string) (*mtm.Report, error)
	Export(ctx context.Context, report *mtm.Report, format domain.ReportFormat, out io.Writer) error
}

// WeatherService answers questions over uploaded weather workbooks.
type WeatherService interface {
	AnswerUpload(ctx context.Context, r io.Reader, name, question string) (domain.WeatherAnswer, error)
}

// HealthChecker reports service health.
type HealthChecker interface {
	HealthCheck(ctx context.Context) services.HealthStatus
	ReadinessCheck(ctx context.Context) services.HealthStatus
	LivenessCheck(ctx context.Context) services.HealthStatus
	Version() map[string]interface{}
}

var (
	_ ValuationService = (*services.ValuationService)(nil)
	_ WeatherService   = (*services.WeatherService)(nil)
	_ HealthChecker    = (*services.HealthService)(nil)
)
