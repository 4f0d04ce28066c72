package exporter

import (
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"

	"sheetcalc/pkg/contracts/domain"
)

// PDFColor represents an RGB color
type PDFColor struct {
	R, G, B int
}

// PDFOptions configures PDF generation
type PDFOptions struct {
	Orientation    string // "L" or "P"
	PageSize       string
	Title          string // falls back to the table title
	Subtitle       string
	FontFamily     string
	FontSize       float64
	HeaderColor    PDFColor
	AlternateColor PDFColor
	Margin         float64
	Now            func() time.Time
}

// DefaultPDFOptions returns a landscape A4 layout.
func DefaultPDFOptions() PDFOptions {
	return PDFOptions{
		Orientation:    "L",
		PageSize:       "A4",
		FontFamily:     "Arial",
		FontSize:       7,
		HeaderColor:    PDFColor{R: 68, G: 114, B: 196},
		AlternateColor: PDFColor{R: 242, G: 242, B: 242},
		Margin:         10,
		Now:            time.Now,
	}
}

// PDFWriter renders tables as a paginated PDF report.
type PDFWriter struct {
	options PDFOptions
}

// NewPDFWriter creates a PDF writer.
func NewPDFWriter(options PDFOptions) *PDFWriter {
	if options.Now == nil {
		options.Now = time.Now
	}
	return &PDFWriter{options: options}
}

// Format implements Writer.
func (w *PDFWriter) Format() domain.ReportFormat {
	return domain.ReportFormatPDF
}

// Write renders t and streams the document to out.
func (w *PDFWriter) Write(out io.Writer, t *domain.Table) error {
	o := w.options
	pdf := gofpdf.New(o.Orientation, "mm", o.PageSize, "")
	pdf.SetMargins(o.Margin, o.Margin, o.Margin)
	pdf.SetAutoPageBreak(false, o.Margin)
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-o.Margin)
		pdf.SetFont(o.FontFamily, "", 7)
		pdf.SetTextColor(128, 128, 128)
		pdf.CellFormat(0, 5, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()
	w.addTitle(pdf, t)

	widths := w.columnWidths(pdf, t)
	w.addTableHeader(pdf, t.Columns, widths)

	_, pageHeight := pdf.GetPageSize()
	pdf.SetFont(o.FontFamily, "", o.FontSize)
	for i, row := range t.Rows {
		if pdf.GetY()+6 > pageHeight-2*o.Margin {
			pdf.AddPage()
			w.addTableHeader(pdf, t.Columns, widths)
			pdf.SetFont(o.FontFamily, "", o.FontSize)
		}

		if i%2 == 1 {
			pdf.SetFillColor(o.AlternateColor.R, o.AlternateColor.G, o.AlternateColor.B)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}
		pdf.SetTextColor(0, 0, 0)
		for j, width := range widths {
			var cell any
			if j < len(row) {
				cell = row[j]
			}
			text := fitText(pdf, formatCell(cell), width-2)
			pdf.CellFormat(width, 6, text, "1", 0, alignFor(cell), true, 0, "")
		}
		pdf.Ln(-1)
	}

	if err := pdf.Output(out); err != nil {
		return fmt.Errorf("failed to render pdf: %w", err)
	}
	return nil
}

func (w *PDFWriter) addTitle(pdf *gofpdf.Fpdf, t *domain.Table) {
	o := w.options
	title := o.Title
	if title == "" {
		title = t.Title
	}

	pdf.SetFont(o.FontFamily, "B", 14)
	pdf.SetTextColor(0, 0, 0)
	pdf.CellFormat(0, 8, title, "", 1, "C", false, 0, "")
	if o.Subtitle != "" {
		pdf.SetFont(o.FontFamily, "", 10)
		pdf.SetTextColor(100, 100, 100)
		pdf.CellFormat(0, 6, o.Subtitle, "", 1, "C", false, 0, "")
	}
	pdf.SetFont(o.FontFamily, "", 8)
	pdf.SetTextColor(128, 128, 128)
	pdf.CellFormat(0, 5, "Generated: "+o.Now().Format("2006-01-02 15:04"), "", 1, "R", false, 0, "")
	pdf.Ln(3)
}

func (w *PDFWriter) addTableHeader(pdf *gofpdf.Fpdf, columns []string, widths []float64) {
	o := w.options
	pdf.SetFont(o.FontFamily, "B", o.FontSize)
	pdf.SetFillColor(o.HeaderColor.R, o.HeaderColor.G, o.HeaderColor.B)
	pdf.SetTextColor(255, 255, 255)
	for i, c := range columns {
		pdf.CellFormat(widths[i], 7, fitText(pdf, c, widths[i]-2), "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)
}

// columnWidths sizes columns to their content, sampling the first 100 rows,
// then scales them to the printable width.
func (w *PDFWriter) columnWidths(pdf *gofpdf.Fpdf, t *domain.Table) []float64 {
	o := w.options
	pageWidth, _ := pdf.GetPageSize()
	available := pageWidth - 2*o.Margin

	widths := make([]float64, len(t.Columns))
	if len(widths) == 0 {
		return widths
	}

	pdf.SetFont(o.FontFamily, "B", o.FontSize)
	for i, c := range t.Columns {
		widths[i] = pdf.GetStringWidth(c) + 4
	}

	pdf.SetFont(o.FontFamily, "", o.FontSize)
	sample := t.Rows
	if len(sample) > 100 {
		sample = sample[:100]
	}
	for _, row := range sample {
		for i := range widths {
			if i >= len(row) {
				break
			}
			if width := pdf.GetStringWidth(formatCell(row[i])) + 4; width > widths[i] {
				widths[i] = width
			}
		}
	}

	total := 0.0
	for _, width := range widths {
		total += width
	}
	scale := available / total
	for i := range widths {
		widths[i] *= scale
	}
	return widths
}

// fitText truncates s with an ellipsis until it fits width.
func fitText(pdf *gofpdf.Fpdf, s string, width float64) string {
	if pdf.GetStringWidth(s) <= width {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 {
		runes = runes[:len(runes)-1]
		candidate := string(runes) + "..."
		if pdf.GetStringWidth(candidate) <= width {
			return candidate
		}
	}
	return ""
}

func alignFor(cell any) string {
	switch cell.(type) {
	case string, nil:
		return "L"
	}
	return "R"
}
