package services

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/sync/errgroup"

	"github.com/BasioMeusPuga/BhavCopyParser/internal/config"
	"github.com/BasioMeusPuga/BhavCopyParser/internal/dataprocessing"
	"github.com/BasioMeusPuga/BhavCopyParser/internal/errors"
	"github.com/BasioMeusPuga/BhavCopyParser/internal/exporter"
	"github.com/BasioMeusPuga/BhavCopyParser/internal/files"
	"github.com/BasioMeusPuga/BhavCopyParser/internal/infrastructure"
	"github.com/BasioMeusPuga/BhavCopyParser/internal/registry"
	"github.com/BasioMeusPuga/BhavCopyParser/internal/validation"
	"github.com/BasioMeusPuga/BhavCopyParser/pkg/contracts/domain"
)

// Fetcher retrieves bhavcopies from their publishers. Both methods return
// "" and a nil error when nothing has been published for the date.
type Fetcher interface {
	Fetch(ctx context.Context, ex domain.Exchange, date time.Time) (string, error)
	FetchURL(ctx context.Context, rawURL string, date time.Time) (string, error)
}

// GenerateRequest describes one report run.
type GenerateRequest struct {
	// RunID tags every log line of the run. Generated when empty.
	RunID string
	// Date is the trading date. It may be zero when CustomURL is set, in
	// which case it is derived from the URL's file name.
	Date      time.Time
	Exchanges []domain.Exchange
	// Inputs maps an exchange to a local bhavcopy. Exchanges without an
	// input are fetched when Fetch is set and skipped otherwise.
	Inputs map[domain.Exchange]string
	Fetch  bool
	// CustomURL replaces the configured source. Only valid for a single
	// exchange.
	CustomURL    string
	RegistryPath string
	OutputDir    string
}

// SheetSummary is the name and body row count of one written sheet.
type SheetSummary struct {
	Name string `json:"name"`
	Rows int    `json:"rows"`
}

// Outcome is the result of one exchange within a run.
type Outcome struct {
	Exchange domain.Exchange
	Status   domain.ReportStatus
	Source   string
	Path     string
	Sheets   []SheetSummary
	Rows     int
	Err      error
}

// RunResult collects the outcomes of a run in exchange order.
type RunResult struct {
	RunID    string
	Date     time.Time
	Outcomes []Outcome
	// Notices are informational conditions such as a freshly created
	// client registry.
	Notices  []error
	Registry *registry.Registry
}

// Err joins the errors of every failed exchange, or returns nil.
func (r *RunResult) Err() error {
	var errs []error
	for _, o := range r.Outcomes {
		if o.Status == domain.ReportStatusFailed {
			errs = append(errs, fmt.Errorf("exchange %s: %w", o.Exchange, o.Err))
		}
	}
	return stderrors.Join(errs...)
}

// Count returns how many outcomes have the given status.
func (r *RunResult) Count(status domain.ReportStatus) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status == status {
			n++
		}
	}
	return n
}

// ReportService runs the extract, build and write pipeline for each
// requested exchange.
type ReportService struct {
	extractor *dataprocessing.Extractor
	loader    *registry.Loader
	builder   *exporter.Builder
	writer    *exporter.WorkbookWriter
	validator *validation.FileValidator
	fetcher   Fetcher
	tracer    trace.Tracer
	metrics   *infrastructure.ReportMetrics
	logger    *slog.Logger
}

// ReportServiceOptions carries the optional collaborators of a ReportService.
type ReportServiceOptions struct {
	Fetcher Fetcher
	Tracer  trace.Tracer
	Metrics *infrastructure.ReportMetrics
}

// NewReportService creates a report service. Missing options disable
// fetching, tracing and metrics respectively.
func NewReportService(opts ReportServiceOptions, logger *slog.Logger) *ReportService {
	if logger == nil {
		logger = slog.Default()
	}
	tracer := opts.Tracer
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer(infrastructure.InstrumentationName)
	}
	return &ReportService{
		extractor: dataprocessing.NewExtractor(logger),
		loader:    registry.NewLoader(logger),
		builder:   exporter.NewBuilder(logger),
		writer:    exporter.NewWorkbookWriter(logger),
		validator: validation.NewFileValidator(logger),
		fetcher:   opts.Fetcher,
		tracer:    tracer,
		metrics:   opts.Metrics,
		logger:    infrastructure.WithComponent(logger, "report_service"),
	}
}

// Generate loads the client registry once and builds each exchange's
// workbook in parallel. A failing exchange does not stop the others; its
// error is carried in its Outcome. The returned error covers problems that
// affect the whole run, such as an invalid request or a duplicate client.
func (s *ReportService) Generate(ctx context.Context, req GenerateRequest) (*RunResult, error) {
	if req.RunID == "" {
		ctx = infrastructure.EnsureTraceID(ctx)
		req.RunID = infrastructure.GetTraceID(ctx)
	} else {
		ctx = infrastructure.WithTraceID(ctx, req.RunID)
	}

	if err := s.prepare(&req); err != nil {
		return nil, err
	}

	ctx, span := s.tracer.Start(ctx, "report.generate", trace.WithAttributes(
		attribute.String("run.id", req.RunID),
		attribute.String("report.date", req.Date.Format("2006-01-02")),
		attribute.Int("report.exchanges", len(req.Exchanges)),
	))
	defer span.End()

	if err := s.validator.ValidateOutputDirectory(req.OutputDir); err != nil {
		infrastructure.RecordError(ctx, err)
		return nil, err
	}

	reg, err := s.loader.Load(req.RegistryPath)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return nil, err
	}

	result := &RunResult{
		RunID:    req.RunID,
		Date:     req.Date,
		Outcomes: make([]Outcome, len(req.Exchanges)),
		Registry: reg,
	}
	if notice := reg.Notice(); notice != nil {
		result.Notices = append(result.Notices, notice)
	}

	s.logger.InfoContext(ctx, "report run started",
		slog.String("date", req.Date.Format("02-01-2006")),
		slog.Int("exchanges", len(req.Exchanges)),
		slog.Int("clients", len(reg.Portfolios)))

	var g errgroup.Group
	for i, ex := range req.Exchanges {
		g.Go(func() error {
			result.Outcomes[i] = s.runExchange(ctx, req, ex, reg.Portfolios)
			return nil
		})
	}
	_ = g.Wait()

	s.logger.InfoContext(ctx, "report run finished",
		slog.Int("written", result.Count(domain.ReportStatusWritten)),
		slog.Int("skipped", result.Count(domain.ReportStatusSkipped)),
		slog.Int("failed", result.Count(domain.ReportStatusFailed)))

	return result, nil
}

// prepare fills defaults and checks the request before any file is touched.
func (s *ReportService) prepare(req *GenerateRequest) error {
	if len(req.Exchanges) == 0 {
		req.Exchanges = append([]domain.Exchange(nil), domain.Exchanges...)
	}
	seen := make(map[domain.Exchange]struct{}, len(req.Exchanges))
	for _, ex := range req.Exchanges {
		if !ex.Valid() {
			return errors.NewAppValidationError(fmt.Sprintf("unsupported exchange %q", ex))
		}
		if _, dup := seen[ex]; dup {
			return errors.NewAppValidationError(fmt.Sprintf("exchange %s requested twice", ex))
		}
		seen[ex] = struct{}{}
	}
	for ex := range req.Inputs {
		if _, ok := seen[ex]; !ok {
			return errors.NewAppValidationError(fmt.Sprintf("input given for exchange %s which was not requested", ex))
		}
	}

	if req.CustomURL != "" {
		if len(req.Exchanges) != 1 {
			return errors.NewAppValidationError("a custom URL needs exactly one exchange")
		}
		if req.Date.IsZero() {
			date, err := files.DateFromFileName(req.CustomURL)
			if err != nil {
				return err
			}
			req.Date = date
		}
	}
	if req.Date.IsZero() {
		return errors.NewAppValidationError("report date is required")
	}
	if req.OutputDir == "" {
		return errors.NewAppValidationError("output directory is required")
	}
	if req.RegistryPath == "" {
		return errors.NewAppValidationError("client registry path is required")
	}
	if req.Fetch && s.fetcher == nil {
		return errors.NewConfigError("fetching requested but no fetcher is configured", nil)
	}
	return nil
}

func (s *ReportService) runExchange(ctx context.Context, req GenerateRequest, ex domain.Exchange, portfolios []domain.ClientPortfolio) Outcome {
	ctx, span := s.tracer.Start(ctx, "report.exchange",
		trace.WithAttributes(attribute.String("exchange", ex.String())))
	defer span.End()

	start := time.Now()
	attrs := metric.WithAttributes(attribute.String("exchange", ex.String()))
	logger := s.logger.With(slog.String("exchange", ex.String()))
	out := Outcome{Exchange: ex}

	fail := func(err error) Outcome {
		out.Status = domain.ReportStatusFailed
		out.Err = err
		infrastructure.RecordError(ctx, err)
		if s.metrics != nil {
			s.metrics.Failures.Add(ctx, 1, attrs)
		}
		logger.ErrorContext(ctx, "report failed", slog.String("error", err.Error()))
		return out
	}

	source, err := s.resolveInput(ctx, req, ex)
	if err != nil {
		return fail(err)
	}
	if source == "" {
		out.Status = domain.ReportStatusSkipped
		if s.metrics != nil {
			s.metrics.ReportsSkipped.Add(ctx, 1, attrs)
		}
		logger.WarnContext(ctx, "no bhavcopy available, exchange skipped")
		return out
	}
	out.Source = source

	if err := s.validator.ValidateInputFile(source); err != nil {
		return fail(err)
	}

	records, err := s.extractor.ExtractFile(ctx, source, ex)
	if err != nil {
		return fail(err)
	}
	if s.metrics != nil {
		s.metrics.RowsExtracted.Add(ctx, int64(len(records)), attrs)
	}

	report, err := s.builder.Build(ex, req.Date, records, portfolios)
	if err != nil {
		return fail(err)
	}

	path := filepath.Join(req.OutputDir, exporter.ReportFileName(ex, req.Date))
	if err := s.writer.Write(report, path); err != nil {
		return fail(err)
	}

	out.Status = domain.ReportStatusWritten
	out.Path = path
	out.Rows = len(records)
	for _, sheet := range report.Sheets {
		out.Sheets = append(out.Sheets, SheetSummary{Name: sheet.Name, Rows: len(sheet.Rows)})
	}

	elapsed := time.Since(start)
	if s.metrics != nil {
		s.metrics.ReportsWritten.Add(ctx, 1, attrs)
		s.metrics.BuildDuration.Record(ctx, elapsed.Seconds(), attrs)
	}
	span.SetAttributes(
		attribute.Int("report.rows", out.Rows),
		attribute.Int("report.sheets", len(out.Sheets)))

	logger.InfoContext(ctx, "report written",
		slog.String("path", path),
		slog.Int("rows", out.Rows),
		slog.Int("sheets", len(out.Sheets)),
		slog.Duration("duration", elapsed))
	return out
}

// resolveInput returns the local bhavcopy for ex, fetching it when asked.
// An empty path means there is nothing to build.
func (s *ReportService) resolveInput(ctx context.Context, req GenerateRequest, ex domain.Exchange) (string, error) {
	if path := req.Inputs[ex]; path != "" {
		return path, nil
	}
	if !req.Fetch {
		return "", nil
	}
	if req.CustomURL != "" {
		return s.fetcher.FetchURL(ctx, req.CustomURL, req.Date)
	}
	return s.fetcher.Fetch(ctx, ex, req.Date)
}

// ListReports returns the workbooks in dir whose names follow the report
// naming scheme, newest trading date first.
func (s *ReportService) ListReports(dir string) ([]domain.ReportFile, error) {
	found, err := files.NewDiscovery(dir).FindWorkbooks("")
	if err != nil {
		return nil, errors.NewStorageError("failed to list reports", err).WithContext("path", dir)
	}

	reports := make([]domain.ReportFile, 0, len(found))
	for _, f := range found {
		ex, date, ok := exporter.ParseReportFileName(f.Name)
		if !ok {
			continue
		}
		reports = append(reports, domain.ReportFile{
			FileName:   f.Name,
			Exchange:   ex,
			Date:       date,
			Size:       f.Size,
			ModifiedAt: f.ModTime,
		})
	}

	sort.SliceStable(reports, func(i, j int) bool {
		if !reports[i].Date.Equal(reports[j].Date) {
			return reports[i].Date.After(reports[j].Date)
		}
		return reports[i].Exchange < reports[j].Exchange
	})
	return reports, nil
}

// LatestReport returns the most recently written report in dir.
func (s *ReportService) LatestReport(dir string) (domain.ReportFile, bool, error) {
	found, err := files.NewDiscovery(dir).FindWorkbooks("")
	if err != nil {
		return domain.ReportFile{}, false, errors.NewStorageError("failed to list reports", err).WithContext("path", dir)
	}

	reports := found[:0]
	for _, f := range found {
		if _, _, ok := exporter.ParseReportFileName(f.Name); ok {
			reports = append(reports, f)
		}
	}
	latest, ok := files.GetLatestFile(reports)
	if !ok {
		return domain.ReportFile{}, false, nil
	}
	ex, date, _ := exporter.ParseReportFileName(latest.Name)
	return domain.ReportFile{
		FileName:   latest.Name,
		Exchange:   ex,
		Date:       date,
		Size:       latest.Size,
		ModifiedAt: latest.ModTime,
	}, true, nil
}

// ReportPath resolves a report file name inside dir. The name must be a bare
// workbook name and the file must exist.
func (s *ReportService) ReportPath(dir, name string) (string, error) {
	if err := s.validator.ValidateReportFileName(name); err != nil {
		return "", err
	}
	path := filepath.Join(dir, name)
	if !config.FileExists(path) {
		return "", errors.NewNotFoundError(fmt.Sprintf("report %s", name))
	}
	return path, nil
}

// ReadReport loads a written report back from dir.
func (s *ReportService) ReadReport(dir, name string) (*domain.Report, error) {
	path, err := s.ReportPath(dir, name)
	if err != nil {
		return nil, err
	}
	return exporter.ReadWorkbook(path)
}
