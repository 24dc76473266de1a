package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "github.com/BasioMeusPuga/BhavCopyParser/internal/errors"
	bhavmw "github.com/BasioMeusPuga/BhavCopyParser/internal/middleware"
	"github.com/BasioMeusPuga/BhavCopyParser/internal/services"
	"github.com/BasioMeusPuga/BhavCopyParser/internal/shared/testutil"
	api "github.com/BasioMeusPuga/BhavCopyParser/pkg/contracts/api/v1"
)

const reportA = "(A) 15-01-2026.xlsx"

// escapedReportA is reportA as it appears in a request path.
const escapedReportA = "%28A%29%2015-01-2026.xlsx"

type reportsFixture struct {
	router     chi.Router
	reportsDir string
	inputDir   string
	registry   string
}

func newReportsFixture(t *testing.T, registryLines ...string) *reportsFixture {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)

	f := &reportsFixture{
		reportsDir: filepath.Join(t.TempDir(), "reports"),
		inputDir:   t.TempDir(),
		registry:   testutil.WriteRegistry(t, registryLines...),
	}
	svc := services.NewReportService(services.ReportServiceOptions{}, logger)
	h := NewReportsHandler(svc, ReportsHandlerConfig{
		ReportsDir:   f.reportsDir,
		RegistryFile: f.registry,
		InputDir:     f.inputDir,
		SourceHosts:  []string{"www.bseindia.com"},
	}, logger, apierrors.NewErrorHandler(logger, false))

	r := chi.NewRouter()
	r.Use(bhavmw.RequestID)
	r.Mount("/api/v1/reports", h.Routes())
	f.router = r
	return f
}

func (f *reportsFixture) do(t *testing.T, method, target string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

// writeInput writes a bhavcopy inside the fixture's input directory and
// returns its name relative to it.
func (f *reportsFixture) writeInput(t *testing.T, rows []string) string {
	t.Helper()
	name := "EQ_ISINCODE_150126.CSV"
	require.NoError(t, os.WriteFile(filepath.Join(f.inputDir, name), []byte(strings.Join(rows, "\n")+"\n"), 0644))
	return name
}

func (f *reportsFixture) generate(t *testing.T) api.GenerateReportResponse {
	t.Helper()
	rec := f.do(t, http.MethodPost, "/api/v1/reports", api.GenerateReportRequest{
		Date:      "15/01/26",
		Exchanges: []string{"a"},
		Inputs:    map[string]string{"A": f.writeInput(t, testutil.SampleRowsA)},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp api.GenerateReportResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func decodeProblem(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var problem map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem), rec.Body.String())
	return problem
}

func TestGenerateReport(t *testing.T) {
	f := newReportsFixture(t, "Alpha:AAA;CCC")

	resp := f.generate(t)
	assert.NotEmpty(t, resp.RunID)
	assert.Equal(t, "15-01-2026", resp.Date)
	require.Len(t, resp.Outcomes, 1)

	out := resp.Outcomes[0]
	assert.Equal(t, "A", out.Exchange)
	assert.Equal(t, "written", out.Status)
	assert.Equal(t, reportA, out.FileName)
	assert.Equal(t, 3, out.Rows)
	assert.Equal(t, []api.SheetSummary{{Name: "ALL SCRIPS", Rows: 3}, {Name: "Alpha", Rows: 2}}, out.Sheets)
	assert.FileExists(t, filepath.Join(f.reportsDir, reportA))
}

func TestGenerateReportRunIDFollowsRequestID(t *testing.T) {
	f := newReportsFixture(t, "Alpha:AAA")

	data, err := json.Marshal(api.GenerateReportRequest{Date: "150126"})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/reports", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(bhavmw.RequestIDHeader, "run-42")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp api.GenerateReportResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "run-42", resp.RunID)
	for _, o := range resp.Outcomes {
		assert.Equal(t, "skipped", o.Status)
	}
}

func TestGenerateReportMissingRegistryNotice(t *testing.T) {
	f := newReportsFixture(t)
	require.NoError(t, os.Remove(f.registry))

	resp := f.generate(t)
	require.Len(t, resp.Notices, 1)
	assert.Contains(t, resp.Notices[0], "created a template")
	assert.Equal(t, []api.SheetSummary{{Name: "ALL SCRIPS", Rows: 3}}, resp.Outcomes[0].Sheets)
}

func TestGenerateReportFailures(t *testing.T) {
	tests := []struct {
		name     string
		registry []string
		body     interface{}
		want     int
		wantType string
	}{
		{
			name:     "invalid json",
			registry: []string{"Alpha:AAA"},
			body:     `{"date":`,
			want:     http.StatusBadRequest,
			wantType: apierrors.TypeValidation,
		},
		{
			name:     "bad date",
			registry: []string{"Alpha:AAA"},
			body:     api.GenerateReportRequest{Date: "2026-01-15"},
			want:     http.StatusBadRequest,
			wantType: apierrors.TypeValidation,
		},
		{
			name:     "unknown exchange",
			registry: []string{"Alpha:AAA"},
			body:     api.GenerateReportRequest{Date: "150126", Exchanges: []string{"Z"}},
			want:     http.StatusBadRequest,
			wantType: apierrors.TypeValidation,
		},
		{
			name:     "duplicate client",
			registry: []string{"Alpha:AAA", "Alpha:BBB"},
			body:     api.GenerateReportRequest{Date: "150126"},
			want:     http.StatusConflict,
			wantType: apierrors.TypeDuplicateName,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newReportsFixture(t, tt.registry...)
			rec := f.do(t, http.MethodPost, "/api/v1/reports", tt.body)
			assert.Equal(t, tt.want, rec.Code)
			assert.Equal(t, tt.wantType, decodeProblem(t, rec)["type"])
		})
	}
}

func TestGenerateReportRejectsNonJSON(t *testing.T) {
	f := newReportsFixture(t, "Alpha:AAA")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/reports", strings.NewReader("date=150126"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestGenerateReportExchangeFailure(t *testing.T) {
	f := newReportsFixture(t, "Alpha:AAA")
	rows := append(append([]string{}, testutil.SampleRowsA...), "500009,DDD,A")

	rec := f.do(t, http.MethodPost, "/api/v1/reports", api.GenerateReportRequest{
		Date:   "150126",
		Inputs: map[string]string{"A": f.writeInput(t, rows)},
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var resp api.GenerateReportResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Outcomes, 2)
	assert.Equal(t, "failed", resp.Outcomes[0].Status)
	assert.Contains(t, resp.Outcomes[0].Error, "row 4")
	assert.Equal(t, "skipped", resp.Outcomes[1].Status)
	assert.NoFileExists(t, filepath.Join(f.reportsDir, reportA))
}

func TestListAndLatestReports(t *testing.T) {
	f := newReportsFixture(t, "Alpha:AAA")

	rec := f.do(t, http.MethodGet, "/api/v1/reports/latest", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	f.generate(t)

	rec = f.do(t, http.MethodGet, "/api/v1/reports", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list api.ReportListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Equal(t, 1, list.Count)
	assert.Equal(t, reportA, list.Reports[0].FileName)
	assert.Equal(t, "A", list.Reports[0].Exchange)
	assert.Equal(t, "15-01-2026", list.Reports[0].Date)

	rec = f.do(t, http.MethodGet, "/api/v1/reports?exchange=B", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Zero(t, list.Count)

	rec = f.do(t, http.MethodGet, "/api/v1/reports?exchange=Q", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/v1/reports/latest", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var latest api.ReportInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &latest))
	assert.Equal(t, reportA, latest.FileName)
}

func TestDownloadReport(t *testing.T) {
	f := newReportsFixture(t, "Alpha:AAA")
	f.generate(t)

	rec := f.do(t, http.MethodGet, "/api/v1/reports/"+escapedReportA, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), reportA)
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")), "workbook is a zip container")
}

func TestDownloadReportErrors(t *testing.T) {
	f := newReportsFixture(t, "Alpha:AAA")
	f.generate(t)

	tests := []struct {
		name   string
		target string
		want   int
	}{
		{"unknown report", "/api/v1/reports/%28B%29%2015-01-2026.xlsx", http.StatusNotFound},
		{"traversal", "/api/v1/reports/..%2FClients.xlsx", http.StatusBadRequest},
		{"not a workbook", "/api/v1/reports/Clients.txt", http.StatusBadRequest},
		{"unknown sheet", "/api/v1/reports/" + escapedReportA + "/sheets/Gamma/csv", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(t, http.MethodGet, tt.target, nil)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}
}

func TestReportSheets(t *testing.T) {
	f := newReportsFixture(t, "Alpha:AAA;CCC", "Beta:ZZZ")
	f.generate(t)

	rec := f.do(t, http.MethodGet, "/api/v1/reports/"+escapedReportA+"/sheets", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp api.SheetListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, reportA, resp.FileName)
	assert.Equal(t, []api.SheetSummary{
		{Name: "ALL SCRIPS", Rows: 3},
		{Name: "Alpha", Rows: 2},
		{Name: "Beta", Rows: 0},
	}, resp.Sheets)
}

func TestReportSheetCSV(t *testing.T) {
	f := newReportsFixture(t, "Alpha:AAA;CCC")
	f.generate(t)

	rec := f.do(t, http.MethodGet, "/api/v1/reports/"+escapedReportA+"/sheets/Alpha/csv", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "SCRIP NAME,OPEN,HIGH,LOW,CLOSE\nAAA,10,12,9,11\nCCC,20,21,19,20\n", rec.Body.String())

	rec = f.do(t, http.MethodGet, "/api/v1/reports/"+escapedReportA+"/sheets/ALL%20SCRIPS/csv?bom=true", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte{0xEF, 0xBB, 0xBF}))
	assert.Equal(t, 4, strings.Count(rec.Body.String(), "\n"))
}

func TestGenerateReportRejectsInputOutsideInputDir(t *testing.T) {
	f := newReportsFixture(t, "Alpha:AAA")
	outside := testutil.WriteBhavcopy(t, testutil.SampleRowsA)

	for _, input := range []string{outside, "../" + filepath.Base(outside), "/etc/passwd"} {
		t.Run(input, func(t *testing.T) {
			rec := f.do(t, http.MethodPost, "/api/v1/reports", api.GenerateReportRequest{
				Date:   "150126",
				Inputs: map[string]string{"A": input},
			})
			require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			assert.Contains(t, rec.Body.String(), "inside the downloads directory")
			assert.NoFileExists(t, filepath.Join(f.reportsDir, reportA))
		})
	}
}

func TestGenerateReportCustomURLHost(t *testing.T) {
	f := newReportsFixture(t, "Alpha:AAA")

	tests := []struct {
		name string
		url  string
		want string
	}{
		{"unknown host", "http://169.254.169.254/latest/EQ_ISINCODE_150126.zip", "not a configured bhavcopy source"},
		{"file scheme", "file:///etc/EQ_ISINCODE_150126.zip", "http or https"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(t, http.MethodPost, "/api/v1/reports", api.GenerateReportRequest{
				Date:      "150126",
				Exchanges: []string{"A"},
				Fetch:     true,
				CustomURL: tt.url,
			})
			require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			assert.Contains(t, rec.Body.String(), tt.want)
		})
	}
}
