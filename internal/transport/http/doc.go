// Package http implements the HTTP handlers of the bhavcopy report service.
// Handlers stay thin: they decode and validate requests, call the services
// layer and render JSON. Errors are rendered as RFC 7807 problem details
// through errors.ErrorHandler.
//
// Routes:
//
//	GET  /api/health                             liveness summary
//	GET  /api/health/ready                       readiness of report directories
//	GET  /api/version                            build information
//	POST /api/v1/reports                         generate reports for a date
//	GET  /api/v1/reports                         list written reports
//	GET  /api/v1/reports/latest                  most recently written report
//	GET  /api/v1/reports/{filename}              download a workbook
//	GET  /api/v1/reports/{filename}/sheets       sheet names and row counts
//	GET  /api/v1/reports/{filename}/sheets/{sheet}/csv  one sheet as CSV
//	GET  /metrics                                Prometheus metrics
package http
