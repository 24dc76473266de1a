package dataprocessing

import (
	"context"
	"encoding/csv"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/BasioMeusPuga/BhavCopyParser/internal/errors"
	"github.com/BasioMeusPuga/BhavCopyParser/pkg/contracts/domain"
)

var errOutOfRange = stderrors.New("value out of range")

// Extractor turns a comma-delimited bhavcopy into ScripRecords.
type Extractor struct {
	logger *slog.Logger
}

// NewExtractor creates an extractor. A nil logger falls back to slog.Default.
func NewExtractor(logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{
		logger: logger.With(slog.String("component", "extractor")),
	}
}

// ExtractFile opens path and extracts its records.
func (e *Extractor) ExtractFile(ctx context.Context, path string, ex domain.Exchange) ([]domain.ScripRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		if stderrors.Is(err, os.ErrNotExist) {
			return nil, &errors.InputNotFoundError{Path: path, Cause: err}
		}
		return nil, errors.NewStorageError("failed to open input file", err).WithContext("path", path)
	}
	defer f.Close()

	records, err := e.Extract(ctx, f, ex)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

// Extract reads every row of r after the first and maps it through the
// layout of ex. The first row is always treated as a header.
// The first bad row aborts extraction; no partial result is returned.
func (e *Extractor) Extract(ctx context.Context, r io.Reader, ex domain.Exchange) ([]domain.ScripRecord, error) {
	layout, ok := LayoutFor(ex)
	if !ok {
		return nil, errors.NewAppValidationError(fmt.Sprintf("unknown exchange %q", string(ex)))
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.ReuseRecord = true

	var (
		records []domain.ScripRecord
		row     int
		width   = layout.Width()
	)
	for ; ; row++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.NewParsingError(fmt.Sprintf("row %d: unreadable csv", row), err)
		}
		if row == 0 {
			continue
		}

		if len(fields) < width {
			return nil, &errors.MalformedRowError{Row: row, Columns: len(fields), Required: width}
		}

		rec, err := toRecord(row, fields, layout)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	e.logger.DebugContext(ctx, "bhavcopy extracted",
		slog.String("exchange", ex.String()),
		slog.Int("rows_read", row),
		slog.Int("records", len(records)),
	)
	return records, nil
}

func toRecord(row int, fields []string, layout ColumnLayout) (domain.ScripRecord, error) {
	rec := domain.ScripRecord{Name: strings.TrimSpace(fields[layout.Name])}

	for _, f := range []struct {
		name string
		idx  int
		dst  *decimal.Decimal
	}{
		{"OPEN", layout.Open, &rec.Open},
		{"HIGH", layout.High, &rec.High},
		{"LOW", layout.Low, &rec.Low},
		{"CLOSE", layout.Close, &rec.Close},
	} {
		raw := strings.TrimSpace(fields[f.idx])
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return domain.ScripRecord{}, &errors.NumericParseError{Row: row, Field: f.name, Value: fields[f.idx], Cause: err}
		}
		// Cells hold float64, so the value must fit one.
		if math.IsInf(d.InexactFloat64(), 0) {
			return domain.ScripRecord{}, &errors.NumericParseError{Row: row, Field: f.name, Value: fields[f.idx], Cause: errOutOfRange}
		}
		*f.dst = d
	}
	return rec, nil
}
