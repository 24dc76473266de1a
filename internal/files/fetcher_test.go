package files

import (
	"archive/zip"
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BasioMeusPuga/BhavCopyParser/internal/errors"
	"github.com/BasioMeusPuga/BhavCopyParser/internal/shared/testutil"
	"github.com/BasioMeusPuga/BhavCopyParser/pkg/contracts/domain"
)

var fetchDate = time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)

func zipOf(t *testing.T, entries ...string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for i := 0; i+1 < len(entries); i += 2 {
		w, err := zw.Create(entries[i])
		require.NoError(t, err)
		_, err = w.Write([]byte(entries[i+1]))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func newTestFetcher(t *testing.T, srv *httptest.Server) (*Fetcher, string) {
	t.Helper()
	dir := t.TempDir()
	cfg := FetcherConfig{
		URLTemplates: map[domain.Exchange]string{
			domain.ExchangeA: srv.URL + "/download/EQ_ISINCODE_{ddmmyy}.zip",
		},
		DownloadDir: dir,
		UserAgent:   "bhavcopy-test",
	}
	logger, _ := testutil.NewTestLogger(t)
	return NewFetcher(cfg, srv.Client(), logger), dir
}

func TestFetchUnpacksFirstEntry(t *testing.T) {
	csv := strings.Join(testutil.SampleRowsA, "\n")
	body := zipOf(t, "EQ_ISINCODE_150126.CSV", csv, "README.txt", "ignored")

	var gotPath, gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUA = r.UserAgent()
		w.Write(body)
	}))
	defer srv.Close()

	f, dir := newTestFetcher(t, srv)

	path, err := f.Fetch(context.Background(), domain.ExchangeA, fetchDate)
	require.NoError(t, err)

	assert.Equal(t, "/download/EQ_ISINCODE_150126.zip", gotPath)
	assert.Equal(t, "bhavcopy-test", gotUA)
	assert.Equal(t, filepath.Join(dir, "150126", "EQ_ISINCODE_150126.CSV"), path)
	assert.FileExists(t, filepath.Join(dir, "150126", "EQ_ISINCODE_150126.zip"))
	assert.NoFileExists(t, filepath.Join(dir, "150126", "README.txt"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, csv, string(data))
}

func TestFetchNotFoundIsAbsent(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	f, dir := newTestFetcher(t, srv)

	path, err := f.Fetch(context.Background(), domain.ExchangeA, fetchDate)
	require.NoError(t, err)
	assert.Empty(t, path)
	assert.NoDirExists(t, filepath.Join(dir, "150126"))
}

func TestFetchServerError(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	f, _ := newTestFetcher(t, srv)

	_, err := f.Fetch(context.Background(), domain.ExchangeA, fetchDate)
	require.Error(t, err)
	assert.Equal(t, errors.ErrTypeNetwork, errors.Classify(err))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "a failed download is not retried")
}

func TestFetchUnknownExchange(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	f, _ := newTestFetcher(t, srv)

	_, err := f.Fetch(context.Background(), domain.ExchangeB, fetchDate)
	require.Error(t, err)
	assert.Equal(t, errors.ErrTypeConfig, errors.Classify(err))
}

func TestFetchURLPlainCSV(t *testing.T) {
	csv := strings.Join(testutil.SampleRowsB, "\n")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(csv))
	}))
	defer srv.Close()

	f, dir := newTestFetcher(t, srv)

	path, err := f.FetchURL(context.Background(), srv.URL+"/files/custom_150126.csv", fetchDate)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "150126", "custom_150126.csv"), path)
}

func TestFetchURLEmptyZip(t *testing.T) {
	body := zipOf(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(body)
	}))
	defer srv.Close()

	f, _ := newTestFetcher(t, srv)

	_, err := f.FetchURL(context.Background(), srv.URL+"/EQ_ISINCODE_150126.zip", fetchDate)
	require.Error(t, err)
	assert.Equal(t, errors.ErrTypeParsing, errors.Classify(err))
}

func TestHasZipMagic(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    bool
	}{
		{"local file header", "PK\x03\x04rest", true},
		{"empty archive", "PK\x05\x06rest", true},
		{"spanned archive", "PK\x07\x08rest", true},
		{"csv", "SC_CODE,SC_NAME", false},
		{"too short", "PK", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := filepath.Join(t.TempDir(), "download")
			require.NoError(t, os.WriteFile(p, []byte(tt.content), 0644))

			got, err := hasZipMagic(p)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFetchURLInvalid(t *testing.T) {
	f := NewFetcher(FetcherConfig{DownloadDir: t.TempDir()}, nil, nil)

	for _, raw := range []string{"not a url", "/relative/path.zip", "https://example.com/"} {
		_, err := f.FetchURL(context.Background(), raw, fetchDate)
		assert.Error(t, err, raw)
	}
}

func TestFetchCancelled(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	f, _ := newTestFetcher(t, srv)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.Fetch(ctx, domain.ExchangeA, fetchDate)
	assert.Error(t, err)
}
