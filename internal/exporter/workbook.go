package exporter

import (
	stderrors "errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/BasioMeusPuga/BhavCopyParser/internal/errors"
	"github.com/BasioMeusPuga/BhavCopyParser/pkg/contracts/domain"
)

// ColumnWidth is the width applied to columns A through E of every sheet.
const ColumnWidth = 20.0

// WorkbookWriter persists reports as .xlsx workbooks.
type WorkbookWriter struct {
	logger *slog.Logger
}

// NewWorkbookWriter creates a workbook writer.
func NewWorkbookWriter(logger *slog.Logger) *WorkbookWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &WorkbookWriter{logger: logger.With(slog.String("component", "workbook_writer"))}
}

// Write stores report at path. The workbook is written to a temporary file
// in the destination directory and renamed over path only once complete, so
// a failed write leaves nothing behind.
func (w *WorkbookWriter) Write(report *domain.Report, path string) (err error) {
	if report == nil || len(report.Sheets) == 0 {
		return errors.NewAppValidationError("report has no sheets")
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.NewStorageError("failed to create output directory", err).WithContext("path", dir)
	}

	tmp, err := os.CreateTemp(dir, ".bhavcopy-*.xlsx.tmp")
	if err != nil {
		return errors.NewStorageError("failed to create temporary workbook", err).WithContext("path", dir)
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	f := excelize.NewFile()
	defer f.Close()

	if err := w.fill(f, report); err != nil {
		return err
	}
	if err := f.Write(tmp); err != nil {
		return errors.NewStorageError("failed to write workbook", err).WithContext("path", path)
	}
	if err := tmp.Close(); err != nil {
		return errors.NewStorageError("failed to close workbook", err).WithContext("path", path)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return errors.NewStorageError("failed to move workbook into place", err).WithContext("path", path)
	}

	w.logger.Info("workbook written",
		slog.String("path", path),
		slog.String("exchange", report.Exchange.String()),
		slog.Int("sheets", len(report.Sheets)),
		slog.Int("aggregate_rows", len(report.Aggregate().Rows)))
	return nil
}

func (w *WorkbookWriter) fill(f *excelize.File, report *domain.Report) error {
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	header := make([]interface{}, len(domain.SheetHeader))
	for i, h := range domain.SheetHeader {
		header[i] = h
	}
	lastCol, _ := excelize.ColumnNumberToName(len(domain.SheetHeader))

	for i, sheet := range report.Sheets {
		if i == 0 {
			err = f.SetSheetName(f.GetSheetName(0), sheet.Name)
		} else {
			_, err = f.NewSheet(sheet.Name)
		}
		if err != nil {
			return fmt.Errorf("failed to add sheet %q: %w", sheet.Name, err)
		}

		if err := f.SetColWidth(sheet.Name, "A", lastCol, ColumnWidth); err != nil {
			return fmt.Errorf("failed to set column width on %q: %w", sheet.Name, err)
		}
		if err := f.SetSheetRow(sheet.Name, "A1", &header); err != nil {
			return fmt.Errorf("failed to write header on %q: %w", sheet.Name, err)
		}
		if err := f.SetCellStyle(sheet.Name, "A1", lastCol+"1", bold); err != nil {
			return fmt.Errorf("failed to style header on %q: %w", sheet.Name, err)
		}
		if _, err := writeRows(f, sheet.Name, 2, sheet.Rows); err != nil {
			return err
		}
	}
	f.SetActiveSheet(0)
	return nil
}

// writeRows writes rows starting at the 1-based startRow and returns the
// row index following the last one written.
func writeRows(f *excelize.File, sheet string, startRow int, rows []domain.ScripRecord) (int, error) {
	row := startRow
	for _, rec := range rows {
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return row, err
		}
		values := sheetRow(rec)
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return row, fmt.Errorf("failed to write row %d on %q: %w", row, sheet, err)
		}
		row++
	}
	return row, nil
}

// ReadWorkbook loads a workbook written by WorkbookWriter back into a
// report. Exchange and date come from the file name when it follows
// ReportFileName.
func ReadWorkbook(path string) (*domain.Report, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		if stderrors.Is(err, os.ErrNotExist) {
			return nil, &errors.InputNotFoundError{Path: path, Cause: err}
		}
		return nil, errors.NewParsingError("failed to open workbook", err).WithContext("path", path)
	}
	defer f.Close()

	report := &domain.Report{}
	if ex, date, ok := ParseReportFileName(path); ok {
		report.Exchange, report.Date = ex, date
	}

	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, errors.NewParsingError(fmt.Sprintf("failed to read sheet %q", name), err)
		}

		sheet := domain.Sheet{Name: name}
		for i, cells := range rows {
			if i == 0 || len(cells) == 0 {
				continue
			}
			rec, err := recordFromCells(i, cells)
			if err != nil {
				return nil, fmt.Errorf("sheet %q: %w", name, err)
			}
			sheet.Rows = append(sheet.Rows, rec)
		}
		report.Sheets = append(report.Sheets, sheet)
	}
	return report, nil
}

func recordFromCells(row int, cells []string) (domain.ScripRecord, error) {
	if len(cells) < len(domain.SheetHeader) {
		return domain.ScripRecord{}, &errors.MalformedRowError{Row: row, Columns: len(cells), Required: len(domain.SheetHeader)}
	}
	rec := domain.ScripRecord{Name: cells[0]}
	dst := []*decimal.Decimal{&rec.Open, &rec.High, &rec.Low, &rec.Close}
	for i, d := range dst {
		v, err := decimal.NewFromString(strings.TrimSpace(cells[i+1]))
		if err != nil {
			return domain.ScripRecord{}, &errors.NumericParseError{Row: row, Field: domain.SheetHeader[i+1], Value: cells[i+1], Cause: err}
		}
		*d = v
	}
	return rec, nil
}
