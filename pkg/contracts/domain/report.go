package domain

import (
	"time"
)

// AggregateSheetName is the name of the first sheet of every report.
const AggregateSheetName = "ALL SCRIPS"

// SheetHeader is the bold header row written at the top of every sheet.
var SheetHeader = []string{"SCRIP NAME", "OPEN", "HIGH", "LOW", "CLOSE"}

// Sheet is one worksheet of a report.
type Sheet struct {
	Name string        `json:"name"`
	Rows []ScripRecord `json:"rows"`
}

// Report is the in-memory form of one exchange's workbook. The first sheet
// is always the aggregate; the rest follow the client registry order.
type Report struct {
	Exchange Exchange  `json:"exchange"`
	Date     time.Time `json:"date"`
	Sheets   []Sheet   `json:"sheets"`
}

// Aggregate returns the ALL SCRIPS sheet.
func (r *Report) Aggregate() Sheet {
	if len(r.Sheets) == 0 {
		return Sheet{Name: AggregateSheetName}
	}
	return r.Sheets[0]
}

// SheetNames returns the sheet names in workbook order.
func (r *Report) SheetNames() []string {
	names := make([]string, 0, len(r.Sheets))
	for _, s := range r.Sheets {
		names = append(names, s.Name)
	}
	return names
}

// Sheet looks up a sheet by name.
func (r *Report) Sheet(name string) (Sheet, bool) {
	for _, s := range r.Sheets {
		if s.Name == name {
			return s, true
		}
	}
	return Sheet{}, false
}

// ReportStatus is the outcome of building one exchange's report.
type ReportStatus string

const (
	ReportStatusWritten ReportStatus = "written"
	ReportStatusSkipped ReportStatus = "skipped"
	ReportStatusFailed  ReportStatus = "failed"
)

// ReportFile describes a workbook present in the reports directory.
type ReportFile struct {
	FileName   string    `json:"file_name"`
	Exchange   Exchange  `json:"exchange"`
	Date       time.Time `json:"date"`
	Size       int64     `json:"size"`
	ModifiedAt time.Time `json:"modified_at"`
}
