package api

import (
	"time"
)

// SheetSummary describes one worksheet of a report.
type SheetSummary struct {
	Name string `json:"name"`
	Rows int    `json:"rows"`
}

// OutcomeResponse is the result of one exchange within a run.
type OutcomeResponse struct {
	Exchange string         `json:"exchange"`
	Status   string         `json:"status"`
	FileName string         `json:"file_name,omitempty"`
	Rows     int            `json:"rows"`
	Sheets   []SheetSummary `json:"sheets,omitempty"`
	Error    string         `json:"error,omitempty"`
}

// GenerateReportResponse is returned by POST /api/v1/reports.
type GenerateReportResponse struct {
	RunID    string            `json:"run_id"`
	Date     string            `json:"date"`
	Outcomes []OutcomeResponse `json:"outcomes"`
	Notices  []string          `json:"notices,omitempty"`
}

// ReportInfo describes one workbook in the reports directory.
type ReportInfo struct {
	FileName   string    `json:"file_name"`
	Exchange   string    `json:"exchange"`
	Date       string    `json:"date"`
	Size       int64     `json:"size"`
	ModifiedAt time.Time `json:"modified_at"`
}

// ReportListResponse is returned by GET /api/v1/reports.
type ReportListResponse struct {
	Reports []ReportInfo `json:"reports"`
	Count   int          `json:"count"`
}

// SheetListResponse is returned by GET /api/v1/reports/{filename}/sheets.
type SheetListResponse struct {
	FileName string         `json:"file_name"`
	Sheets   []SheetSummary `json:"sheets"`
}

// HealthResponse is returned by GET /api/health.
type HealthResponse struct {
	Status    string            `json:"status"`
	Version   string            `json:"version"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}
