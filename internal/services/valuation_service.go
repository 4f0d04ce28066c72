package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	apperrors "sheetcalc/internal/errors"
	"sheetcalc/internal/exporter"
	"sheetcalc/internal/infrastructure"
	"sheetcalc/internal/mtm"
	"sheetcalc/internal/spreadsheet"
	"sheetcalc/pkg/contracts/domain"
)

// ValuationService runs MTM valuations and renders their reports.
type ValuationService struct {
	engine  *mtm.Engine
	export  exporter.Options
	tracer  trace.Tracer
	metrics *infrastructure.Metrics
	logger  *slog.Logger
}

// NewValuationService creates a valuation service. tracer and metrics may be nil.
func NewValuationService(engine *mtm.Engine, export exporter.Options, tracer trace.Tracer, metrics *infrastructure.Metrics, logger *slog.Logger) *ValuationService {
	if tracer == nil {
		tracer = otel.Tracer(infrastructure.MeterName)
	}
	return &ValuationService{
		engine:  engine,
		export:  export,
		tracer:  tracer,
		metrics: metrics,
		logger:  infrastructure.WithComponent(logger, "valuation_service"),
	}
}

// ValueUpload values a workbook read from r. name is only used in logs and
// error messages.
func (s *ValuationService) ValueUpload(ctx context.Context, r io.Reader, name, valuationDate string) (*mtm.Report, error) {
	wb, err := spreadsheet.Open(r, name, s.logger)
	if err != nil {
		return nil, err
	}
	defer wb.Close()

	return s.Value(ctx, wb, valuationDate)
}

// ValueFile values the workbook at path.
func (s *ValuationService) ValueFile(ctx context.Context, path, valuationDate string) (*mtm.Report, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.NewNotFoundError("input workbook " + path)
		}
		return nil, err
	}

	wb, err := spreadsheet.OpenFile(path, s.logger)
	if err != nil {
		return nil, err
	}
	defer wb.Close()

	return s.Value(ctx, wb, valuationDate)
}

// Value runs the engine on an open workbook.
func (s *ValuationService) Value(ctx context.Context, wb *spreadsheet.Workbook, valuationDate string) (*mtm.Report, error) {
	ctx, span := s.tracer.Start(ctx, "mtm.value",
		trace.WithAttributes(
			attribute.String("workbook", wb.Name()),
			attribute.String("valuation_date.requested", valuationDate),
		))
	defer span.End()

	start := time.Now()
	report, err := s.engine.ValueWorkbook(ctx, wb, valuationDate)
	duration := time.Since(start)

	if err != nil {
		infrastructure.RecordError(ctx, err)
		s.metrics.RecordValuation(ctx, 0, 0, duration, err)
		s.logger.WarnContext(ctx, "valuation failed",
			slog.String("workbook", wb.Name()),
			slog.String("error", err.Error()))
		return nil, err
	}

	summary := report.Summary()
	span.SetAttributes(
		attribute.String("valuation_date", report.ValuationDate.Format("2006-01-02")),
		attribute.Int("contracts", summary.Contracts),
		attribute.Int("unpriced", summary.Unpriced),
	)
	s.metrics.RecordValuation(ctx, summary.Contracts, summary.Unpriced, duration, nil)
	s.logger.InfoContext(ctx, "valuation completed",
		slog.String("workbook", wb.Name()),
		slog.Time("valuation_date", report.ValuationDate),
		slog.Int("contracts", summary.Contracts),
		slog.Int("priced", summary.Priced),
		slog.String("total_mtm", summary.TotalMTM.StringFixed(2)),
		slog.Duration("duration", duration))
	return report, nil
}

// Export renders report in format to out.
func (s *ValuationService) Export(ctx context.Context, report *mtm.Report, format domain.ReportFormat, out io.Writer) error {
	w, err := exporter.New(format, s.exportOptions(report))
	if err == nil {
		err = w.Write(out, report.Table())
	}
	s.metrics.RecordExport(ctx, string(format), err)
	if err != nil {
		return fmt.Errorf("export %s report: %w", format, err)
	}
	return nil
}

// ExportFile renders report into path, choosing the format from its extension.
func (s *ValuationService) ExportFile(ctx context.Context, report *mtm.Report, path string) error {
	format := domain.FormatFromPath(path)
	err := exporter.WriteFile(path, report.Table(), s.exportOptions(report))
	s.metrics.RecordExport(ctx, string(format), err)
	if err != nil {
		return apperrors.NewStorageError(fmt.Sprintf("export %s report to %s", format, path), err)
	}
	s.logger.InfoContext(ctx, "report written",
		slog.String("path", path),
		slog.String("format", string(format)),
		slog.Int("rows", report.Len()))
	return nil
}

func (s *ValuationService) exportOptions(report *mtm.Report) exporter.Options {
	opts := s.export
	opts.PDF.Subtitle = "Valuation date: " + report.ValuationDate.Format("2006-01-02")
	return opts
}
