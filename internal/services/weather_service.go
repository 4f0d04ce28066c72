package services

import (
	"context"
	"io"
	"log/slog"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	apperrors "sheetcalc/internal/errors"
	"sheetcalc/internal/infrastructure"
	"sheetcalc/internal/spreadsheet"
	"sheetcalc/internal/weather"
	"sheetcalc/pkg/contracts/domain"
)

// WeatherService answers precipitation questions over uploaded workbooks.
type WeatherService struct {
	assistant *weather.Assistant
	tracer    trace.Tracer
	metrics   *infrastructure.Metrics
	logger    *slog.Logger
}

// NewWeatherService creates a weather service. tracer and metrics may be nil.
func NewWeatherService(assistant *weather.Assistant, tracer trace.Tracer, metrics *infrastructure.Metrics, logger *slog.Logger) *WeatherService {
	if tracer == nil {
		tracer = otel.Tracer(infrastructure.MeterName)
	}
	return &WeatherService{
		assistant: assistant,
		tracer:    tracer,
		metrics:   metrics,
		logger:    infrastructure.WithComponent(logger, "weather_service"),
	}
}

// AnswerUpload answers question from a workbook read from r.
func (s *WeatherService) AnswerUpload(ctx context.Context, r io.Reader, name, question string) (domain.WeatherAnswer, error) {
	wb, err := spreadsheet.Open(r, name, s.logger)
	if err != nil {
		return domain.WeatherAnswer{}, err
	}
	defer wb.Close()

	return s.Answer(ctx, wb, question)
}

// AnswerFile answers question from the workbook at path.
func (s *WeatherService) AnswerFile(ctx context.Context, path, question string) (domain.WeatherAnswer, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return domain.WeatherAnswer{}, apperrors.NewNotFoundError("input workbook " + path)
		}
		return domain.WeatherAnswer{}, err
	}

	wb, err := spreadsheet.OpenFile(path, s.logger)
	if err != nil {
		return domain.WeatherAnswer{}, err
	}
	defer wb.Close()

	return s.Answer(ctx, wb, question)
}

// Answer loads both precipitation sheets and answers question.
func (s *WeatherService) Answer(ctx context.Context, wb *spreadsheet.Workbook, question string) (domain.WeatherAnswer, error) {
	ctx, span := s.tracer.Start(ctx, "weather.answer",
		trace.WithAttributes(attribute.String("workbook", wb.Name())))
	defer span.End()

	answer, err := s.assistant.AnswerWorkbook(ctx, wb, question)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		s.logger.WarnContext(ctx, "weather question failed",
			slog.String("workbook", wb.Name()),
			slog.String("error", err.Error()))
		return domain.WeatherAnswer{}, err
	}

	span.SetAttributes(
		attribute.String("intent", string(answer.Intent)),
		attribute.Int("rows", answer.Table.Len()),
	)
	s.metrics.RecordWeatherQuestion(ctx, string(answer.Intent))
	return answer, nil
}
