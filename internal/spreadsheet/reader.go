package spreadsheet

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/xuri/excelize/v2"

	apperrors "sheetcalc/internal/errors"
)

// Workbook is an opened spreadsheet file.
type Workbook struct {
	file   *excelize.File
	name   string
	logger *slog.Logger
}

// Open reads a workbook from r. name is used in logs and error messages.
func Open(r io.Reader, name string, logger *slog.Logger) (*Workbook, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, apperrors.NewParsingError(fmt.Sprintf("failed to open workbook %s", name), err)
	}
	return newWorkbook(f, name, logger), nil
}

// OpenFile opens the workbook at path.
func OpenFile(path string, logger *slog.Logger) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, apperrors.NewParsingError(fmt.Sprintf("failed to open workbook %s", path), err)
	}
	return newWorkbook(f, path, logger), nil
}

// FromFile wraps an already opened excelize file.
func FromFile(f *excelize.File, name string, logger *slog.Logger) *Workbook {
	return newWorkbook(f, name, logger)
}

func newWorkbook(f *excelize.File, name string, logger *slog.Logger) *Workbook {
	if logger == nil {
		logger = slog.Default()
	}
	return &Workbook{
		file:   f,
		name:   name,
		logger: logger.With(slog.String("component", "spreadsheet"), slog.String("workbook", name)),
	}
}

// Name returns the name the workbook was opened with.
func (w *Workbook) Name() string {
	return w.name
}

// Close releases the underlying file.
func (w *Workbook) Close() error {
	return w.file.Close()
}

// SheetNames lists the sheets in workbook order.
func (w *Workbook) SheetNames() []string {
	return w.file.GetSheetList()
}

// HasSheet reports whether a sheet with exactly this name exists.
func (w *Workbook) HasSheet(name string) bool {
	idx, err := w.file.GetSheetIndex(name)
	return err == nil && idx >= 0
}

// Sheet loads a sheet. The first row is the header; fully empty rows are skipped.
// A missing sheet is a schema error.
func (w *Workbook) Sheet(name string) (*Sheet, error) {
	if !w.HasSheet(name) {
		return nil, apperrors.NewSchemaError(name, "", "")
	}

	rows, err := w.file.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, apperrors.NewParsingError(fmt.Sprintf("failed to read sheet %s", name), err)
	}

	sheet := NewSheet(name, rows)
	sheet.typer = newCellTyper(w.file, name)
	w.logger.Debug("sheet loaded",
		slog.String("sheet", name),
		slog.Int("columns", len(sheet.Headers)),
		slog.Int("rows", len(sheet.Rows)))

	return sheet, nil
}
