package exporter

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/BasioMeusPuga/BhavCopyParser/pkg/contracts/domain"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVOptions configures WriteSheetCSV.
type CSVOptions struct {
	BOMPrefix bool // UTF-8 BOM so Excel detects the encoding
}

// WriteSheetCSV writes one report sheet as CSV with the standard header.
// Decimals are written exactly as parsed.
func WriteSheetCSV(w io.Writer, sheet domain.Sheet, opts CSVOptions) error {
	if opts.BOMPrefix {
		if _, err := w.Write(utf8BOM); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(domain.SheetHeader); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}
	for i, rec := range sheet.Rows {
		ohlc := rec.OHLC()
		record := []string{rec.Name, ohlc[0].String(), ohlc[1].String(), ohlc[2].String(), ohlc[3].String()}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
