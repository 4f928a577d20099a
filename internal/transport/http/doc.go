// Package http implements the HTTP handlers of the hospital report service.
//
// Handlers stay thin: they parse the request, call the report or health
// service and render JSON. Failures are converted to RFC 7807 problem
// documents by the shared errors.ErrorHandler, so a missing source file
// becomes a 503 and a schema problem becomes a 422.
//
// Routes mounted under /api:
//
//	GET  /health             readiness with per-source status
//	GET  /health/live        liveness
//	GET  /version            build information
//	GET  /answers            the eight analytical answers
//	GET  /units              per-unit summaries
//	GET  /units/{unit}       one unit
//	GET  /charts             chart inputs as JSON
//	GET  /charts/workbook    chart workbook as xlsx
//	GET  /table              window over the unified table (offset, limit)
//	POST /refresh            re-run the pipeline
package http
