package exporter

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"sheetcalc/pkg/contracts/domain"
)

// Writer renders a table in one output format.
type Writer interface {
	Format() domain.ReportFormat
	Write(out io.Writer, t *domain.Table) error
}

// Options carries per-format settings.
type Options struct {
	CSV   CSVOptions
	Excel ExcelOptions
	PDF   PDFOptions
}

// DefaultOptions returns the settings used by the CLI and the HTTP API.
func DefaultOptions() Options {
	return Options{
		CSV:   CSVOptions{BOMPrefix: true},
		Excel: DefaultExcelOptions(),
		PDF:   DefaultPDFOptions(),
	}
}

// New returns the writer for format.
func New(format domain.ReportFormat, opts Options) (Writer, error) {
	switch format {
	case domain.ReportFormatCSV:
		return NewCSVWriter(opts.CSV), nil
	case domain.ReportFormatExcel:
		return NewExcelWriter(opts.Excel), nil
	case domain.ReportFormatJSON:
		return JSONWriter{}, nil
	case domain.ReportFormatPDF:
		return NewPDFWriter(opts.PDF), nil
	}
	return nil, fmt.Errorf("unsupported export format %q", format)
}

// WriteFile renders t into path, creating parent directories. The format is
// chosen from the file extension.
func WriteFile(path string, t *domain.Table, opts Options) error {
	w, err := New(domain.FormatFromPath(path), opts)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	if err := w.Write(file, t); err != nil {
		file.Close()
		os.Remove(path)
		return err
	}
	return file.Close()
}
