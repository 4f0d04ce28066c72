// Package http implements the HTTP handlers of the sheetcalc API. Handlers
// stay thin: they parse multipart uploads and form fields, delegate to the
// services, and render JSON, file downloads, or RFC 7807 problems.
//
// # Routes
//
//	POST /api/trading/mtm      workbook upload, optional valuation_date and format
//	POST /api/weather/answer   workbook upload and question
//	GET  /api/health           liveness summary
//	GET  /api/health/ready     data and reports directories
//	GET  /api/health/live      runtime details
//	GET  /api/version          build information
//	GET  /metrics              Prometheus exposition
//
// # Errors
//
// Every failure raised while reading or computing over an uploaded workbook
// becomes a 400 problem carrying an "error" member with the message and an
// "error_code" member:
//
//	{
//	    "type": "/errors/workbook/schema",
//	    "title": "Bad Request",
//	    "status": 400,
//	    "detail": "[SCHEMA] sheet \"Contracts\" not found in workbook",
//	    "error": "[SCHEMA] sheet \"Contracts\" not found in workbook",
//	    "error_code": "SCHEMA_ERROR",
//	    "trace_id": "..."
//	}
//
// # Testing
//
// Handlers depend on the small interfaces in services.go so tests can
// substitute testify mocks and drive them with httptest.
package http
