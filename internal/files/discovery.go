package files

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"sheetcalc/pkg/contracts/domain"
)

// ReportSuffix is inserted between the input name and the valuation date of a
// generated report.
const ReportSuffix = "_MTM_"

// FileInfo represents information about a discovered file
type FileInfo struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
}

// Discovery provides file discovery operations
type Discovery struct {
	basePath string
}

// NewDiscovery creates a discovery rooted at basePath. Relative directories
// passed to its methods are resolved against it.
func NewDiscovery(basePath string) *Discovery {
	return &Discovery{basePath: basePath}
}

// FindWorkbooks lists the .xlsx files in dir sorted by name. Excel lock files
// and previously generated reports are skipped.
func (d *Discovery) FindWorkbooks(dir string) ([]FileInfo, error) {
	fullPath := d.resolve(dir)

	entries, err := os.ReadDir(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", fullPath, err)
	}

	var files []FileInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		if !strings.EqualFold(filepath.Ext(name), ".xlsx") || strings.HasPrefix(name, "~$") || IsReport(name) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}

		files = append(files, FileInfo{
			Path:    filepath.Join(fullPath, name),
			Name:    name,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Name < files[j].Name
	})
	return files, nil
}

func (d *Discovery) resolve(dir string) string {
	if filepath.IsAbs(dir) || d.basePath == "" {
		return dir
	}
	return filepath.Join(d.basePath, dir)
}

// ReportName returns "<input stem>_MTM_<yyyymmdd><ext>".
func ReportName(input string, valuationDate time.Time, format domain.ReportFormat) string {
	stem := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	return stem + ReportSuffix + valuationDate.Format("20060102") + format.Extension()
}

// ReportPath joins outputDir and ReportName.
func ReportPath(outputDir, input string, valuationDate time.Time, format domain.ReportFormat) string {
	return filepath.Join(outputDir, ReportName(input, valuationDate, format))
}

// IsReport reports whether name looks like a file produced by ReportName.
func IsReport(name string) bool {
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	i := strings.LastIndex(stem, ReportSuffix)
	if i < 0 {
		return false
	}
	_, err := time.Parse("20060102", stem[i+len(ReportSuffix):])
	return err == nil
}

// GetLatestFile returns the most recently modified file from a list
func GetLatestFile(files []FileInfo) (FileInfo, bool) {
	if len(files) == 0 {
		return FileInfo{}, false
	}

	latest := files[0]
	for _, file := range files[1:] {
		if file.ModTime.After(latest.ModTime) {
			latest = file
		}
	}
	return latest, true
}
