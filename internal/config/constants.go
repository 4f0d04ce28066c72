package config

import "time"

// Application constants
const (
	AppName = "sheetcalc"

	// HTTP limits
	DefaultRateLimit      = 20 // requests per second
	DefaultBurstSize      = 40
	DefaultRequestTimeout = 60 * time.Second
	DefaultMaxUploadBytes = 32 << 20

	// File paths (relative to the working directory)
	DefaultDataDir    = "data"
	DefaultInboxDir   = "data/inbox"
	DefaultReportsDir = "data/reports"
	DefaultLogsDir    = "logs"

	// Default workbook names used by the CLI
	DefaultTradingWorkbook = "Trading Case Example Data.xlsx"
	DefaultMTMReportFile   = "MTM_valuation_report.xlsx"
	DefaultWeatherWorkbook = "Weather Data Example.xlsx"

	// Log settings
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)
