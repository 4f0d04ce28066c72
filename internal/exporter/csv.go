package exporter

import (
	"encoding/csv"
	"fmt"
	"io"

	"sheetcalc/pkg/contracts/domain"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVOptions configures CSV writing behavior
type CSVOptions struct {
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// CSVWriter writes tables as comma separated values.
type CSVWriter struct {
	options CSVOptions
}

// NewCSVWriter creates a new CSV writer instance
func NewCSVWriter(options CSVOptions) *CSVWriter {
	return &CSVWriter{options: options}
}

// Format implements Writer.
func (w *CSVWriter) Format() domain.ReportFormat {
	return domain.ReportFormatCSV
}

// Write writes the header row followed by every table row.
func (w *CSVWriter) Write(out io.Writer, t *domain.Table) error {
	if w.options.BOMPrefix {
		if _, err := out.Write(utf8BOM); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(out)
	if err := writer.Write(t.Columns); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}

	record := make([]string, len(t.Columns))
	for i, row := range t.Rows {
		for j := range record {
			record[j] = ""
			if j < len(row) {
				record[j] = formatCell(row[j])
			}
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}
