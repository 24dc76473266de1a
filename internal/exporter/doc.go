// Package exporter turns extracted scrip records into client reports.
//
// Builder assembles a domain.Report in memory: an "ALL SCRIPS" sheet with
// every record, then one sheet per client holding only that client's
// scrips. WorkbookWriter saves the report as an .xlsx file named by
// ReportFileName, and ReadWorkbook loads one back.
//
// Example usage:
//
//	report, err := exporter.NewBuilder(logger).Build(domain.ExchangeA, date, records, reg.Portfolios)
//	if err != nil {
//	    return err
//	}
//	path := filepath.Join(outDir, exporter.ReportFileName(domain.ExchangeA, date))
//	err = exporter.NewWorkbookWriter(logger).Write(report, path)
//
// Client names become sheet names after SanitizeSheetName. Two clients that
// end up with the same sheet name, ignoring case, are rejected with
// *errors.DuplicateClientNameError.
package exporter
