package validation

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// WorkbookPattern matches the workbooks the batch runner picks up.
const WorkbookPattern = "*.xlsx"

// FileValidator checks command line input and output paths.
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger: logger.With(slog.String("component", "file_validator")),
	}
}

// ValidateInputDirectory checks that dir exists and reports how many files
// match pattern. A directory without matches is not an error.
func (v *FileValidator) ValidateInputDirectory(dir string, pattern string) (int, error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		v.logger.Error("Input directory does not exist",
			slog.String("directory", dir))
		return 0, fmt.Errorf("input directory %s does not exist", dir)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to stat directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		v.logger.Error("Input path is not a directory",
			slog.String("path", dir))
		return 0, fmt.Errorf("%s is not a directory", dir)
	}

	if pattern == "" {
		return 0, nil
	}
	count, err := v.CountFiles(dir, pattern)
	if err != nil {
		return 0, err
	}
	if count == 0 {
		v.logger.Warn("No files matching pattern found",
			slog.String("directory", dir),
			slog.String("pattern", pattern))
	}
	return count, nil
}

// ValidateOutputDirectory ensures output directory exists or can be created
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	// Verify it's writable by creating a probe file
	probe := filepath.Join(dir, ".write_test")
	file, err := os.Create(probe)
	if err != nil {
		return fmt.Errorf("output directory %s is not writable: %w", dir, err)
	}
	file.Close()
	os.Remove(probe)
	return nil
}

// ValidateFile checks if a specific file exists and is readable
func (v *FileValidator) ValidateFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return fmt.Errorf("file %s does not exist", path)
	}
	if err != nil {
		return fmt.Errorf("failed to stat file %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory, not a file", path)
	}

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("file %s is not readable: %w", path, err)
	}
	file.Close()

	v.logger.Debug("File validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// CountFiles counts regular files matching pattern in dir, ignoring Excel
// lock files.
func (v *FileValidator) CountFiles(dir string, pattern string) (int, error) {
	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return 0, fmt.Errorf("failed to count files: %w", err)
	}

	count := 0
	for _, match := range matches {
		if IsTempWorkbook(match) {
			continue
		}
		if info, err := os.Stat(match); err == nil && !info.IsDir() {
			count++
		}
	}
	return count, nil
}

// ValidateWorkbookFile checks that path is an existing .xlsx workbook.
func (v *FileValidator) ValidateWorkbookFile(path string) error {
	if err := v.ValidateFile(path); err != nil {
		return err
	}

	if err := CheckWorkbookName(path); err != nil {
		v.logger.Error("File is not an xlsx workbook",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return err
	}
	return nil
}

// ValidateOutputPath checks the extension of a report destination and makes
// sure its directory exists.
func (v *FileValidator) ValidateOutputPath(path string) error {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".xlsx", ".csv", ".json", ".pdf":
	default:
		return fmt.Errorf("unsupported output format %q: use .xlsx, .csv, .json or .pdf", ext)
	}
	return v.ValidateOutputDirectory(filepath.Dir(path))
}

// IsTempWorkbook reports whether path is an Excel lock file such as "~$book.xlsx".
func IsTempWorkbook(path string) bool {
	return strings.HasPrefix(filepath.Base(path), "~$")
}

// CheckWorkbookName rejects names that are not .xlsx workbooks.
func CheckWorkbookName(name string) error {
	if ext := strings.ToLower(filepath.Ext(name)); ext != ".xlsx" {
		return fmt.Errorf("%s is not an xlsx workbook (extension: %q)", filepath.Base(name), ext)
	}
	if IsTempWorkbook(name) {
		return fmt.Errorf("%s is a temporary Excel file", filepath.Base(name))
	}
	return nil
}
