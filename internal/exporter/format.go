package exporter

import (
	"fmt"
	"path/filepath"
	"regexp"
	"time"

	"github.com/BasioMeusPuga/BhavCopyParser/pkg/contracts/domain"
)

const fileDateLayout = "02-01-2006"

var reportFilePattern = regexp.MustCompile(`^\(([A-Z]+)\) (\d{2}-\d{2}-\d{4})\.xlsx$`)

// ReportFileName returns the workbook file name for an exchange and date,
// for example "(A) 15-01-2026.xlsx".
func ReportFileName(ex domain.Exchange, date time.Time) string {
	return fmt.Sprintf("(%s) %s.xlsx", ex, date.Format(fileDateLayout))
}

// ParseReportFileName recovers the exchange and date from a name produced by
// ReportFileName. Directory components are ignored.
func ParseReportFileName(name string) (domain.Exchange, time.Time, bool) {
	m := reportFilePattern.FindStringSubmatch(filepath.Base(name))
	if m == nil {
		return "", time.Time{}, false
	}
	ex, err := domain.ParseExchange(m[1])
	if err != nil {
		return "", time.Time{}, false
	}
	date, err := time.Parse(fileDateLayout, m[2])
	if err != nil {
		return "", time.Time{}, false
	}
	return ex, date, true
}

func sheetRow(rec domain.ScripRecord) []interface{} {
	ohlc := rec.OHLC()
	return []interface{}{
		rec.Name,
		ohlc[0].InexactFloat64(),
		ohlc[1].InexactFloat64(),
		ohlc[2].InexactFloat64(),
		ohlc[3].InexactFloat64(),
	}
}
