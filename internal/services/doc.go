// Package services holds the business logic between the transports (CLI and
// HTTP) and the pipeline packages.
//
// ReportService runs a report: it loads the client registry once, then for
// each requested exchange resolves the bhavcopy (a local file or a download),
// extracts its records, builds the per-client sheets and writes the
// workbook. Exchanges run in parallel and fail independently; their results
// come back as Outcomes on a RunResult.
//
// HealthService backs the health endpoints.
package services
