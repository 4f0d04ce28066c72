package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"time"

	"sheetcalc/internal/config"
	"sheetcalc/pkg/contracts"
)

// HealthService provides health check functionality
type HealthService struct {
	version   string
	paths     config.PathsConfig
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                   `json:"status"`
	Timestamp time.Time                `json:"timestamp"`
	Version   string                   `json:"version"`
	Uptime    string                   `json:"uptime,omitempty"`
	Runtime   map[string]interface{}   `json:"runtime,omitempty"`
	Checks    map[string]ServiceHealth `json:"checks,omitempty"`
}

// ServiceHealth represents individual dependency health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// NewHealthService creates a new health service
func NewHealthService(version string, paths config.PathsConfig, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthService{
		version:   version,
		paths:     paths,
		startTime: time.Now(),
		logger:    logger.With(slog.String("component", "health_service")),
	}
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   hs.version,
		Uptime:    time.Since(hs.startTime).Round(time.Second).String(),
	}
	hs.logger.DebugContext(ctx, "health check", slog.String("status", status.Status))
	return status
}

// ReadinessCheck reports whether the working directories are usable.
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ready",
		Timestamp: time.Now(),
		Version:   hs.version,
		Checks: map[string]ServiceHealth{
			"data_dir":    checkDir(hs.paths.DataDir),
			"reports_dir": checkDir(hs.paths.ReportsDir),
		},
	}

	for name, check := range status.Checks {
		if check.Status != "ready" {
			status.Status = "not_ready"
			hs.logger.WarnContext(ctx, "readiness check failed",
				slog.String("check", name),
				slog.String("message", check.Message))
		}
	}
	return status
}

// LivenessCheck returns liveness status
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "alive",
		Timestamp: time.Now(),
		Version:   hs.version,
		Runtime: map[string]interface{}{
			"uptime":     time.Since(hs.startTime).Seconds(),
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
		},
	}
}

// Version returns version information
func (hs *HealthService) Version() map[string]interface{} {
	info := contracts.GetVersionInfo()
	return map[string]interface{}{
		"version":       hs.version,
		"api_version":   info.APIVersion,
		"build_time":    info.BuildTime,
		"git_commit":    info.GitCommit,
		"go_version":    runtime.Version(),
		"os":            runtime.GOOS,
		"arch":          runtime.GOARCH,
		"uptime":        time.Since(hs.startTime).Seconds(),
		"start_time":    hs.startTime.Format(time.RFC3339),
		"report_format": info.ReportFormat,
	}
}

func checkDir(dir string) ServiceHealth {
	if dir == "" {
		return ServiceHealth{Status: "not_ready", Message: "directory not configured"}
	}
	info, err := os.Stat(dir)
	if err != nil {
		return ServiceHealth{Status: "not_ready", Message: fmt.Sprintf("directory not accessible: %v", err)}
	}
	if !info.IsDir() {
		return ServiceHealth{Status: "not_ready", Message: fmt.Sprintf("%s is not a directory", dir)}
	}
	return ServiceHealth{Status: "ready"}
}
