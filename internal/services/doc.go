// Package services implements the application layer between the transports
// (HTTP handlers, CLI, scheduler) and the calculation packages.
//
// Services open uploaded workbooks, call the MTM engine or the weather
// assistant, render exports, and own the cross-cutting concerns around those
// calls: spans, metrics and structured logs. Calculation errors are returned
// unchanged so each transport can map them onto its own error surface.
//
//	ValuationService  MTM valuation of trading workbooks and report export
//	WeatherService    precipitation questions over weather workbooks
//	HealthService     liveness, readiness and version information
package services
