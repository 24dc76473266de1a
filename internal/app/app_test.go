package app

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BasioMeusPuga/BhavCopyParser/internal/config"
	"github.com/BasioMeusPuga/BhavCopyParser/internal/infrastructure"
	"github.com/BasioMeusPuga/BhavCopyParser/internal/shared/testutil"
	api "github.com/BasioMeusPuga/BhavCopyParser/pkg/contracts/api/v1"
)

func newTestApplication(t *testing.T, mutate func(*config.Config)) *Application {
	t.Helper()
	cfg := config.Default()
	cfg.Paths.BaseDir = t.TempDir()
	cfg.Server.ShutdownTimeout = 5 * time.Second
	if mutate != nil {
		mutate(cfg)
	}
	logger, _ := testutil.NewTestLogger(t)

	a, err := New(cfg, logger)
	require.NoError(t, err)
	t.Cleanup(func() { a.Close(context.Background()) })
	return a
}

func serve(a *Application, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	a.Router.ServeHTTP(rec, req)
	return rec
}

func TestNewCreatesDirectories(t *testing.T) {
	a := newTestApplication(t, nil)

	assert.DirExists(t, a.Paths.DownloadsDir)
	assert.DirExists(t, a.Paths.ReportsDir)
	assert.DirExists(t, a.Paths.LogsDir)
	assert.NotNil(t, a.ReportService)
	assert.NotNil(t, a.HealthService)
	assert.NotNil(t, a.Fetcher)
	assert.Equal(t, ":8080", a.Server.Addr)
	assert.Equal(t, a.Config.Server.WriteTimeout, a.Server.WriteTimeout)
}

func TestRoutes(t *testing.T) {
	a := newTestApplication(t, nil)

	tests := []struct {
		name       string
		method     string
		target     string
		wantStatus int
		wantBody   string
	}{
		{"health", http.MethodGet, "/api/health", http.StatusOK, `"status":"ok"`},
		{"liveness", http.MethodGet, "/api/health/live", http.StatusOK, "alive"},
		{"readiness", http.MethodGet, "/api/health/ready", http.StatusOK, "ready"},
		{"version", http.MethodGet, "/api/version", http.StatusOK, `"version":"1.0.0"`},
		{"empty report list", http.MethodGet, "/api/v1/reports", http.StatusOK, `"count":0`},
		{"no latest report", http.MethodGet, "/api/v1/reports/latest", http.StatusNotFound, "not-found"},
		{"unknown route", http.MethodGet, "/api/nope", http.StatusNotFound, "/errors/not-found"},
		{"wrong method", http.MethodDelete, "/api/v1/reports", http.StatusMethodNotAllowed, "Method Not Allowed"},
		{"metrics", http.MethodGet, "/metrics", http.StatusOK, "http_requests_total"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(a, tt.method, tt.target, "")
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			assert.Contains(t, rec.Body.String(), tt.wantBody)
		})
	}
}

func TestRequestIDHeaderIsSet(t *testing.T) {
	a := newTestApplication(t, nil)

	rec := serve(a, http.MethodGet, "/api/health", "")
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestMetricsDisabled(t *testing.T) {
	a := newTestApplication(t, func(cfg *config.Config) {
		cfg.Telemetry.MetricsEnabled = false
	})

	rec := serve(a, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRateLimitApplies(t *testing.T) {
	a := newTestApplication(t, func(cfg *config.Config) {
		cfg.Server.RateLimit = config.RateLimitConfig{Enabled: true, RPS: 0.001, Burst: 1}
	})

	assert.Equal(t, http.StatusOK, serve(a, http.MethodGet, "/api/health", "").Code)
	rec := serve(a, http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
}

func TestGenerateThroughRouter(t *testing.T) {
	a := newTestApplication(t, nil)
	input := filepath.Join(a.Paths.DownloadsDir, "150126", "EQ_ISINCODE_150126.CSV")
	require.NoError(t, os.MkdirAll(filepath.Dir(input), 0755))
	require.NoError(t, os.WriteFile(input, []byte(strings.Join(testutil.SampleRowsA, "\n")+"\n"), 0644))

	body, err := json.Marshal(api.GenerateReportRequest{
		Date:      "150126",
		Exchanges: []string{"A"},
		Inputs:    map[string]string{"A": input},
	})
	require.NoError(t, err)

	rec := serve(a, http.MethodPost, "/api/v1/reports", string(body))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp api.GenerateReportResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Outcomes, 1)
	assert.Equal(t, "written", resp.Outcomes[0].Status)
	assert.Equal(t, "(A) 15-01-2026.xlsx", resp.Outcomes[0].FileName)
	// No Clients.txt in the base dir: a template is created and reported.
	assert.NotEmpty(t, resp.Notices)
	assert.FileExists(t, a.Paths.RegistryFile)
	assert.FileExists(t, a.Paths.GetReportPath("(A) 15-01-2026.xlsx"))

	list := serve(a, http.MethodGet, "/api/v1/reports", "")
	assert.Contains(t, list.Body.String(), `"count":1`)
}

func TestGenerateRejectsInputOutsideDownloads(t *testing.T) {
	a := newTestApplication(t, nil)
	outside := testutil.WriteBhavcopy(t, testutil.SampleRowsA)

	body, err := json.Marshal(api.GenerateReportRequest{
		Date:   "150126",
		Inputs: map[string]string{"A": outside},
	})
	require.NoError(t, err)

	rec := serve(a, http.MethodPost, "/api/v1/reports", string(body))
	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	assert.NoFileExists(t, a.Paths.GetReportPath("(A) 15-01-2026.xlsx"))
}

func TestServeAndStop(t *testing.T) {
	a := newTestApplication(t, nil)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, a.Serve(ctx, ln, cancel))

	resp, err := http.Get("http://" + ln.Addr().String() + "/api/health/live")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, a.Stop(context.Background()))
	assert.NoError(t, ctx.Err(), "a clean shutdown must not cancel the caller")
}

func TestNewApplicationRejectsInvalidConfig(t *testing.T) {
	t.Setenv("BHAV_SERVER_PORT", "70000")

	_, err := NewApplication("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load configuration")
}

func TestInitializeLoggerResolvesLogFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.BaseDir = t.TempDir()
	cfg.Logging.Output = "file"
	cfg.Logging.FilePath = "bhavcopy.log"
	defer slog.SetDefault(slog.Default())

	logger, err := InitializeLogger(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = infrastructure.CloseLogFile() })

	logger.Info("hello")
	want := filepath.Join(cfg.Paths.BaseDir, "logs", "bhavcopy.log")
	assert.Equal(t, want, cfg.Logging.FilePath)
	assert.FileExists(t, want)
}
