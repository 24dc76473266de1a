package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	apierrors "github.com/BasioMeusPuga/BhavCopyParser/internal/errors"
	"github.com/BasioMeusPuga/BhavCopyParser/internal/exporter"
	"github.com/BasioMeusPuga/BhavCopyParser/internal/files"
	bhavmw "github.com/BasioMeusPuga/BhavCopyParser/internal/middleware"
	"github.com/BasioMeusPuga/BhavCopyParser/internal/services"
	"github.com/BasioMeusPuga/BhavCopyParser/internal/validation"
	api "github.com/BasioMeusPuga/BhavCopyParser/pkg/contracts/api/v1"
	"github.com/BasioMeusPuga/BhavCopyParser/pkg/contracts/domain"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ReportsHandlerConfig locates the files the report endpoints work on.
type ReportsHandlerConfig struct {
	ReportsDir   string
	RegistryFile string
	// InputDir confines request inputs. Relative inputs resolve against it.
	InputDir string
	// SourceHosts are the hosts a custom_url may point at.
	SourceHosts []string
}

// ReportsHandler serves report generation, listing and download.
type ReportsHandler struct {
	service      ReportServiceInterface
	validator    *validation.RequestValidator
	files        *validation.FileValidator
	cfg          ReportsHandlerConfig
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewReportsHandler creates a reports handler with RFC 7807 error handling
func NewReportsHandler(service ReportServiceInterface, cfg ReportsHandlerConfig, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ReportsHandler {
	return &ReportsHandler{
		service:      service,
		validator:    validation.NewRequestValidator(),
		files:        validation.NewFileValidator(logger),
		cfg:          cfg,
		logger:       logger.With(slog.String("component", "reports_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the report routes, mounted at /api/v1/reports.
func (h *ReportsHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.With(bhavmw.ContentTypeValidator("application/json")).Post("/", h.Generate)
	r.Get("/", h.List)
	r.Get("/latest", h.Latest)

	r.Route("/{filename}", func(r chi.Router) {
		r.Use(h.ReportCtx)
		r.Get("/", h.Download)
		r.Get("/sheets", h.Sheets)
		r.Get("/sheets/{sheet}/csv", h.SheetCSV)
	})

	return r
}

type ctxKey string

const reportNameKey ctxKey = "report_name"

// ReportCtx decodes the {filename} parameter and rejects names outside the
// reports directory before any handler sees them.
func (h *ReportsHandler) ReportCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name, err := url.PathUnescape(chi.URLParam(r, "filename"))
		if err != nil {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("filename", "File name is not properly escaped"))
			return
		}
		path, err := h.service.ReportPath(h.cfg.ReportsDir, name)
		if err != nil {
			h.errorHandler.HandleError(w, r, err)
			return
		}
		ctx := withReportPath(r.Context(), name, path)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Generate handles POST /api/v1/reports
func (h *ReportsHandler) Generate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.GenerateReportRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	genReq, err := h.toGenerateRequest(r, req)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(ctx, "report generation requested",
		slog.String("request_id", middleware.GetReqID(ctx)),
		slog.String("date", req.Date),
		slog.Int("exchanges", len(genReq.Exchanges)),
		slog.Bool("fetch", req.Fetch))

	result, err := h.service.Generate(ctx, genReq)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	resp := api.GenerateReportResponse{
		RunID:    result.RunID,
		Date:     result.Date.Format("02-01-2006"),
		Outcomes: make([]api.OutcomeResponse, 0, len(result.Outcomes)),
	}
	for _, o := range result.Outcomes {
		resp.Outcomes = append(resp.Outcomes, toOutcomeResponse(o))
	}
	for _, n := range result.Notices {
		resp.Notices = append(resp.Notices, n.Error())
	}

	if result.Count(domain.ReportStatusFailed) > 0 {
		render.Status(r, http.StatusUnprocessableEntity)
	}
	render.JSON(w, r, resp)
}

func (h *ReportsHandler) toGenerateRequest(r *http.Request, req api.GenerateReportRequest) (services.GenerateRequest, error) {
	date, err := files.ParseBhavDate(req.Date)
	if err != nil {
		return services.GenerateRequest{}, err
	}

	if req.CustomURL != "" {
		if err := h.checkSourceURL(req.CustomURL); err != nil {
			return services.GenerateRequest{}, err
		}
	}

	genReq := services.GenerateRequest{
		RunID:        middleware.GetReqID(r.Context()),
		Date:         date,
		Fetch:        req.Fetch,
		CustomURL:    req.CustomURL,
		RegistryPath: h.cfg.RegistryFile,
		OutputDir:    h.cfg.ReportsDir,
	}
	for _, tag := range req.Exchanges {
		ex, err := domain.ParseExchange(tag)
		if err != nil {
			return services.GenerateRequest{}, apierrors.ErrValidation("exchanges", err.Error())
		}
		genReq.Exchanges = append(genReq.Exchanges, ex)
	}
	if len(req.Inputs) > 0 {
		genReq.Inputs = make(map[domain.Exchange]string, len(req.Inputs))
		for tag, path := range req.Inputs {
			ex, err := domain.ParseExchange(tag)
			if err != nil {
				return services.GenerateRequest{}, apierrors.ErrValidation("inputs", err.Error())
			}
			resolved, err := h.files.ResolveWithin(path, h.cfg.InputDir)
			if err != nil {
				return services.GenerateRequest{}, apierrors.ErrValidation("inputs", fmt.Sprintf("input for %s must be inside the downloads directory", ex))
			}
			genReq.Inputs[ex] = resolved
		}
	}
	return genReq, nil
}

// checkSourceURL accepts only http(s) URLs on one of the configured source
// hosts.
func (h *ReportsHandler) checkSourceURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return apierrors.ErrValidation("custom_url", "custom_url must be an http or https URL")
	}
	for _, host := range h.cfg.SourceHosts {
		if strings.EqualFold(u.Hostname(), host) {
			return nil
		}
	}
	return apierrors.ErrValidation("custom_url", fmt.Sprintf("host %q is not a configured bhavcopy source", u.Hostname()))
}

func toOutcomeResponse(o services.Outcome) api.OutcomeResponse {
	resp := api.OutcomeResponse{
		Exchange: o.Exchange.String(),
		Status:   string(o.Status),
		Rows:     o.Rows,
	}
	if o.Path != "" {
		resp.FileName = filepath.Base(o.Path)
	}
	for _, s := range o.Sheets {
		resp.Sheets = append(resp.Sheets, api.SheetSummary{Name: s.Name, Rows: s.Rows})
	}
	if o.Err != nil {
		resp.Error = o.Err.Error()
	}
	return resp
}

// List handles GET /api/v1/reports
func (h *ReportsHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := api.ListReportsRequest{Exchange: r.URL.Query().Get("exchange")}
	if err := h.validator.ValidateStruct(filter); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	reports, err := h.service.ListReports(h.cfg.ReportsDir)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	resp := api.ReportListResponse{Reports: make([]api.ReportInfo, 0, len(reports))}
	for _, rf := range reports {
		if filter.Exchange != "" {
			if ex, _ := domain.ParseExchange(filter.Exchange); rf.Exchange != ex {
				continue
			}
		}
		resp.Reports = append(resp.Reports, toReportInfo(rf))
	}
	resp.Count = len(resp.Reports)

	render.JSON(w, r, resp)
}

// Latest handles GET /api/v1/reports/latest
func (h *ReportsHandler) Latest(w http.ResponseWriter, r *http.Request) {
	rf, ok, err := h.service.LatestReport(h.cfg.ReportsDir)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	if !ok {
		h.errorHandler.HandleError(w, r, apierrors.ErrReportNotFound)
		return
	}
	render.JSON(w, r, toReportInfo(rf))
}

func toReportInfo(rf domain.ReportFile) api.ReportInfo {
	return api.ReportInfo{
		FileName:   rf.FileName,
		Exchange:   rf.Exchange.String(),
		Date:       rf.Date.Format("02-01-2006"),
		Size:       rf.Size,
		ModifiedAt: rf.ModifiedAt,
	}
}

// Download handles GET /api/v1/reports/{filename}
func (h *ReportsHandler) Download(w http.ResponseWriter, r *http.Request) {
	name, path := reportPathFrom(r.Context())

	h.logger.InfoContext(r.Context(), "downloading report",
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("filename", name))

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", strconv.Quote(name)))
	http.ServeFile(w, r, path)
}

// Sheets handles GET /api/v1/reports/{filename}/sheets
func (h *ReportsHandler) Sheets(w http.ResponseWriter, r *http.Request) {
	name, _ := reportPathFrom(r.Context())

	report, err := h.service.ReadReport(h.cfg.ReportsDir, name)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	resp := api.SheetListResponse{FileName: name, Sheets: make([]api.SheetSummary, 0, len(report.Sheets))}
	for _, s := range report.Sheets {
		resp.Sheets = append(resp.Sheets, api.SheetSummary{Name: s.Name, Rows: len(s.Rows)})
	}
	render.JSON(w, r, resp)
}

// SheetCSV handles GET /api/v1/reports/{filename}/sheets/{sheet}/csv. Pass
// bom=true for a UTF-8 byte order mark.
func (h *ReportsHandler) SheetCSV(w http.ResponseWriter, r *http.Request) {
	name, _ := reportPathFrom(r.Context())
	sheetName, err := url.PathUnescape(chi.URLParam(r, "sheet"))
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("sheet", "Sheet name is not properly escaped"))
		return
	}

	report, err := h.service.ReadReport(h.cfg.ReportsDir, name)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	sheet, ok := report.Sheet(sheetName)
	if !ok {
		h.errorHandler.HandleError(w, r, apierrors.NotFoundError(fmt.Sprintf("sheet %q", sheetName)))
		return
	}

	bom, _ := strconv.ParseBool(r.URL.Query().Get("bom"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", strconv.Quote(sheet.Name+".csv")))
	if err := exporter.WriteSheetCSV(w, sheet, exporter.CSVOptions{BOMPrefix: bom}); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to stream sheet",
			slog.String("filename", name),
			slog.String("sheet", sheet.Name),
			slog.String("error", err.Error()))
	}
}
