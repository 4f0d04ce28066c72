package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"sheetcalc/internal/config"
	apperrors "sheetcalc/internal/errors"
	"sheetcalc/internal/exporter"
	"sheetcalc/internal/files"
	"sheetcalc/internal/reports"
	"sheetcalc/internal/validation"
	"sheetcalc/pkg/contracts/domain"
)

func newMTMCmd(c *cli) *cobra.Command {
	var input, output, date string

	cmd := &cobra.Command{
		Use:   "mtm",
		Short: "Generate the daily MTM valuation report",
		Long: `Value every contract of a trading workbook (sheets "Price" and
"Contracts") against the latest index prices known on the valuation date.

The report format follows the output extension: .xlsx, .csv, .json or .pdf.

Examples:
  sheetcalc mtm
  sheetcalc mtm -i trades.xlsx -o report.csv -d 2024-01-15`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			report, err := c.valuation.ValueFile(ctx, input, date)
			switch {
			case apperrors.IsNotFoundError(err):
				return failf("Input Excel file not found: %s", input)
			case err != nil:
				return failf("Failed to generate MTM report: %v", err)
			}
			if err := validation.NewFileValidator(c.logger).ValidateOutputPath(output); err != nil {
				return failf("Failed to generate MTM report: %v", err)
			}
			if err := c.valuation.ExportFile(ctx, report, output); err != nil {
				return failf("Failed to generate MTM report: %v", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "MTM report generated: %s (%d rows)\n", output, report.Len())
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", config.DefaultTradingWorkbook, "Path to input Excel file containing Price and Contracts sheets")
	cmd.Flags().StringVarP(&output, "output", "o", config.DefaultMTMReportFile, "Path to output report file")
	cmd.Flags().StringVarP(&date, "date", "d", "", "Valuation date (YYYY-MM-DD); defaults to the latest price date")

	cmd.AddCommand(newMTMBatchCmd(c))
	return cmd
}

func newMTMBatchCmd(c *cli) *cobra.Command {
	var opts reports.RunOptions
	var format string

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Value every workbook in a directory",
		Long: `Value every .xlsx workbook of a directory concurrently and write one
report per workbook, named <workbook>_MTM_<yyyymmdd>.<ext>.

Directories default to reports.input_dir and reports.output_dir.

Examples:
  sheetcalc mtm batch --dir data/inbox --out data/reports
  sheetcalc mtm batch --format csv --date 2024-01-15`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.InputDir == "" {
				opts.InputDir = c.cfg.Reports.InputDir
			}
			if opts.OutputDir == "" {
				opts.OutputDir = c.cfg.Reports.OutputDir
			}
			if opts.Concurrency <= 0 {
				opts.Concurrency = c.cfg.Reports.Concurrency
			}
			if format == "" {
				format = c.cfg.Reports.Format
			}
			f, ok := domain.ParseReportFormat(format)
			if !ok {
				return failf("Unsupported report format: %s", format)
			}
			opts.Format = f

			validator := validation.NewFileValidator(c.logger)
			if _, err := validator.ValidateInputDirectory(opts.InputDir, validation.WorkbookPattern); err != nil {
				return failf("Batch run failed: %v", err)
			}
			if err := validator.ValidateOutputDirectory(opts.OutputDir); err != nil {
				return failf("Batch run failed: %v", err)
			}

			runner := reports.NewRunner(c.valuation, files.NewDiscovery(opts.InputDir), c.logger)
			summary, err := runner.Run(cmd.Context(), opts)
			if err != nil {
				return failf("Batch run failed: %v", err)
			}

			out := cmd.OutOrStdout()
			if len(summary.Results) == 0 {
				fmt.Fprintf(out, "No workbooks found in %s\n", opts.InputDir)
				return nil
			}
			if err := exporter.WriteText(out, summaryTable(summary)); err != nil {
				return err
			}
			fmt.Fprintf(out, "\n%d succeeded, %d failed\n", summary.Succeeded, summary.Failed)

			if summary.Failed > 0 {
				return failf("%d of %d workbooks failed", summary.Failed, len(summary.Results))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.InputDir, "dir", "", "Directory containing trading workbooks")
	cmd.Flags().StringVar(&opts.OutputDir, "out", "", "Directory receiving the reports")
	cmd.Flags().StringVarP(&opts.ValuationDate, "date", "d", "", "Valuation date (YYYY-MM-DD) applied to every workbook")
	cmd.Flags().StringVar(&format, "format", "", "Report format: xlsx, csv, json or pdf")
	cmd.Flags().IntVar(&opts.Concurrency, "concurrency", 0, "Workbooks valued in parallel")
	return cmd
}

func summaryTable(summary reports.Summary) *domain.Table {
	t := domain.NewTable("Batch", "Workbook", "Report", "Contracts", "Unpriced", "Status")
	for _, r := range summary.Results {
		status, report := "ok", ""
		if r.Err != nil {
			status = r.Err.Error()
		}
		if r.Output != "" {
			report = filepath.Base(r.Output)
		}
		t.Append(filepath.Base(r.Input), report, r.Contracts, r.Unpriced, status)
	}
	return t
}
