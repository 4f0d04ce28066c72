// Package app wires the sheetcalc HTTP server together and manages its
// lifecycle.
//
// # Initialization Flow
//
//	1. Load configuration (defaults, YAML file, .env, SHEETCALC_* env vars)
//	2. Initialize the slog logger and OpenTelemetry providers
//	3. Build the MTM engine, the weather assistant and their services
//	4. Build the batch report runner and, when reports.schedule is set,
//	   the cron scheduler
//	5. Mount handlers behind the middleware chain
//
// # Middleware Order
//
//	RequestID → RealIP → Telemetry → StructuredLogger → Recoverer →
//	SecurityHeaders → CORS → RateLimiter → (upload routes) Timeout → MaxBodyBytes
//
// # Routes
//
//	POST /api/trading/mtm      value an uploaded trading workbook
//	POST /api/weather/answer   answer a precipitation question
//	GET  /api/health           liveness summary
//	GET  /api/health/ready     directory checks
//	GET  /api/health/live      runtime info
//	GET  /api/version          build information
//	GET  /metrics              Prometheus exposition
//
// # Graceful Shutdown
//
// Run blocks until SIGINT or SIGTERM, or until the listener fails, then
// stops the scheduler (waiting for a running batch), drains in-flight
// requests within server.shutdown_timeout and flushes telemetry.
//
// The package never calls os.Exit; errors are returned to main.
package app
