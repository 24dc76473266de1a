package exporter

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/BasioMeusPuga/BhavCopyParser/internal/errors"
	"github.com/BasioMeusPuga/BhavCopyParser/pkg/contracts/domain"
)

// Builder assembles the in-memory report for one exchange and date. It does
// no I/O.
type Builder struct {
	logger *slog.Logger
}

// NewBuilder creates a report builder.
func NewBuilder(logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{logger: logger.With(slog.String("component", "report_builder"))}
}

// Build returns a report whose first sheet holds every record in source
// order, followed by one sheet per portfolio in the given order. A client
// sheet keeps the aggregate order and holds only the records whose name the
// portfolio lists; a client with no matches gets an empty sheet.
func (b *Builder) Build(ex domain.Exchange, date time.Time, records []domain.ScripRecord, portfolios []domain.ClientPortfolio) (*domain.Report, error) {
	aggregate := make([]domain.ScripRecord, len(records))
	copy(aggregate, records)

	report := &domain.Report{
		Exchange: ex,
		Date:     date,
		Sheets:   make([]domain.Sheet, 0, len(portfolios)+1),
	}
	report.Sheets = append(report.Sheets, domain.Sheet{Name: domain.AggregateSheetName, Rows: aggregate})

	used := map[string]string{sheetKey(domain.AggregateSheetName): domain.AggregateSheetName}
	for _, p := range portfolios {
		name := SanitizeSheetName(p.Name)
		if name == "" {
			return nil, errors.NewAppValidationError(fmt.Sprintf("client name %q is empty after removing characters not allowed in sheet names", p.Name))
		}
		if _, taken := used[sheetKey(name)]; taken {
			return nil, &errors.DuplicateClientNameError{Name: p.Name, SheetName: name}
		}
		used[sheetKey(name)] = p.Name

		var rows []domain.ScripRecord
		for _, rec := range records {
			if p.Holds(rec.Name) {
				rows = append(rows, rec)
			}
		}
		if len(rows) == 0 {
			b.logger.Debug("client holds no scrips in this bhavcopy",
				slog.String("client", p.Name),
				slog.String("exchange", ex.String()))
		}
		report.Sheets = append(report.Sheets, domain.Sheet{Name: name, Rows: rows})
	}

	return report, nil
}
