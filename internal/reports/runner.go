// Package reports values every workbook of an input directory and writes one
// MTM report per workbook.
package reports

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"sheetcalc/internal/config"
	"sheetcalc/internal/files"
	"sheetcalc/internal/infrastructure"
	"sheetcalc/internal/services"
	"sheetcalc/pkg/contracts/domain"
)

// RunOptions selects the inputs and outputs of one batch run.
type RunOptions struct {
	InputDir      string
	OutputDir     string
	Format        domain.ReportFormat
	ValuationDate string
	Concurrency   int
}

// OptionsFromConfig builds RunOptions from the reports section of the config.
// An empty format means xlsx.
func OptionsFromConfig(cfg config.ReportsConfig) (RunOptions, error) {
	format := domain.ReportFormatExcel
	if cfg.Format != "" {
		f, ok := domain.ParseReportFormat(cfg.Format)
		if !ok {
			return RunOptions{}, fmt.Errorf("unsupported report format %q", cfg.Format)
		}
		format = f
	}
	return RunOptions{
		InputDir:    cfg.InputDir,
		OutputDir:   cfg.OutputDir,
		Format:      format,
		Concurrency: cfg.Concurrency,
	}, nil
}

// Result describes the outcome for one input workbook.
type Result struct {
	Input         string        `json:"input"`
	Output        string        `json:"output,omitempty"`
	ValuationDate time.Time     `json:"valuation_date,omitempty"`
	Contracts     int           `json:"contracts"`
	Unpriced      int           `json:"unpriced"`
	Duration      time.Duration `json:"duration"`
	Err           error         `json:"-"`
}

// Summary collects the results of a batch run in input order.
type Summary struct {
	Results   []Result `json:"results"`
	Succeeded int      `json:"succeeded"`
	Failed    int      `json:"failed"`
}

// Runner values workbooks concurrently. The engine itself stays
// single-threaded: each workbook gets its own goroutine and its own tables.
type Runner struct {
	valuation *services.ValuationService
	discovery *files.Discovery
	logger    *slog.Logger
}

// NewRunner creates a batch runner.
func NewRunner(valuation *services.ValuationService, discovery *files.Discovery, logger *slog.Logger) *Runner {
	if discovery == nil {
		discovery = files.NewDiscovery("")
	}
	return &Runner{
		valuation: valuation,
		discovery: discovery,
		logger:    infrastructure.WithComponent(logger, "report_runner"),
	}
}

// Run values every workbook in opts.InputDir. A workbook that fails is
// recorded in the summary and does not stop the others; the returned error is
// reserved for an unreadable input directory or a cancelled context.
func (r *Runner) Run(ctx context.Context, opts RunOptions) (Summary, error) {
	ctx = infrastructure.EnsureTraceID(ctx)

	workbooks, err := r.discovery.FindWorkbooks(opts.InputDir)
	if err != nil {
		return Summary{}, err
	}
	if opts.Format == "" {
		opts.Format = domain.ReportFormatExcel
	}

	r.logger.InfoContext(ctx, "batch run started",
		slog.String("input_dir", opts.InputDir),
		slog.String("output_dir", opts.OutputDir),
		slog.Int("workbooks", len(workbooks)))

	results := make([]Result, len(workbooks))
	g, gctx := errgroup.WithContext(ctx)
	if opts.Concurrency > 0 {
		g.SetLimit(opts.Concurrency)
	}
	for i, wb := range workbooks {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = r.runOne(gctx, wb.Path, opts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Summary{}, err
	}

	summary := Summary{Results: results}
	for _, res := range results {
		if res.Err != nil {
			summary.Failed++
		} else {
			summary.Succeeded++
		}
	}

	r.logger.InfoContext(ctx, "batch run completed",
		slog.Int("succeeded", summary.Succeeded),
		slog.Int("failed", summary.Failed))
	return summary, nil
}

func (r *Runner) runOne(ctx context.Context, input string, opts RunOptions) Result {
	start := time.Now()
	res := Result{Input: input}

	report, err := r.valuation.ValueFile(ctx, input, opts.ValuationDate)
	if err != nil {
		res.Err = err
		res.Duration = time.Since(start)
		r.logger.WarnContext(ctx, "workbook skipped",
			slog.String("input", input),
			slog.String("error", err.Error()))
		return res
	}

	summary := report.Summary()
	res.ValuationDate = report.ValuationDate
	res.Contracts = summary.Contracts
	res.Unpriced = summary.Unpriced
	res.Output = files.ReportPath(opts.OutputDir, input, report.ValuationDate, opts.Format)

	if err := r.valuation.ExportFile(ctx, report, res.Output); err != nil {
		res.Err = err
		res.Output = ""
	}
	res.Duration = time.Since(start)
	return res
}
