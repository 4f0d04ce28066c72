package domain

import "strings"

// ReportFormat defines the output format of a table export
type ReportFormat string

const (
	ReportFormatJSON  ReportFormat = "json"
	ReportFormatExcel ReportFormat = "xlsx"
	ReportFormatCSV   ReportFormat = "csv"
	ReportFormatPDF   ReportFormat = "pdf"
)

// ContentType returns the MIME type used when serving the format.
func (f ReportFormat) ContentType() string {
	switch f {
	case ReportFormatExcel:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case ReportFormatCSV:
		return "text/csv; charset=utf-8"
	case ReportFormatPDF:
		return "application/pdf"
	default:
		return "application/json"
	}
}

// Extension returns the file extension including the dot.
func (f ReportFormat) Extension() string {
	return "." + string(f)
}

// FormatFromPath picks the export format from a file name extension.
// Unknown extensions fall back to xlsx.
func FormatFromPath(path string) ReportFormat {
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".csv"):
		return ReportFormatCSV
	case strings.HasSuffix(lower, ".json"):
		return ReportFormatJSON
	case strings.HasSuffix(lower, ".pdf"):
		return ReportFormatPDF
	default:
		return ReportFormatExcel
	}
}

// ParseReportFormat accepts a format name in any case; empty means json.
func ParseReportFormat(s string) (ReportFormat, bool) {
	switch f := ReportFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return ReportFormatJSON, true
	case ReportFormatJSON, ReportFormatExcel, ReportFormatCSV, ReportFormatPDF:
		return f, true
	}
	return "", false
}
