package exporter

import (
	"encoding/json"
	"fmt"
	"io"

	"sheetcalc/pkg/contracts/domain"
)

// JSONWriter writes tables as {"rows": [...]} with one object per row.
type JSONWriter struct{}

// Format implements Writer.
func (JSONWriter) Format() domain.ReportFormat {
	return domain.ReportFormatJSON
}

// Write encodes the table rows.
func (JSONWriter) Write(out io.Writer, t *domain.Table) error {
	rows := t.Records()
	if rows == nil {
		rows = []map[string]any{}
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(map[string]any{"rows": rows}); err != nil {
		return fmt.Errorf("failed to encode rows: %w", err)
	}
	return nil
}
