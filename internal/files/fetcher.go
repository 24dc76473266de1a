package files

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"time"

	"golang.org/x/time/rate"

	"github.com/BasioMeusPuga/BhavCopyParser/internal/errors"
	"github.com/BasioMeusPuga/BhavCopyParser/pkg/contracts/domain"
)

// Zip signatures: local file header, end of central directory (empty
// archive) and spanned archive marker.
var zipMagics = [][]byte{
	[]byte("PK\x03\x04"),
	[]byte("PK\x05\x06"),
	[]byte("PK\x07\x08"),
}

// FetcherConfig configures where bhavcopies come from and where they land.
type FetcherConfig struct {
	URLTemplates      map[domain.Exchange]string
	DownloadDir       string
	RequestsPerSecond float64
	Timeout           time.Duration
	UserAgent         string
}

// Fetcher downloads bhavcopy archives and unpacks them. Each call makes a
// single attempt.
type Fetcher struct {
	cfg     FetcherConfig
	client  *http.Client
	limiter *rate.Limiter
	logger  *slog.Logger
}

// NewFetcher creates a fetcher. A nil client uses a client with cfg.Timeout.
func NewFetcher(cfg FetcherConfig, client *http.Client, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	return &Fetcher{
		cfg:     cfg,
		client:  client,
		limiter: rate.NewLimiter(limit, 1),
		logger:  logger.With(slog.String("component", "fetcher")),
	}
}

// SourceURL returns the download URL for an exchange and date.
func (f *Fetcher) SourceURL(ex domain.Exchange, date time.Time) (string, error) {
	tmpl, ok := f.cfg.URLTemplates[ex]
	if !ok || tmpl == "" {
		return "", errors.NewConfigError(fmt.Sprintf("no source URL configured for exchange %s", ex), nil)
	}
	return ExpandURLTemplate(tmpl, date), nil
}

// Fetch downloads the bhavcopy for ex on date and returns the path of the
// unpacked CSV. It returns "" and a nil error when the source has nothing
// for that date (HTTP 404).
func (f *Fetcher) Fetch(ctx context.Context, ex domain.Exchange, date time.Time) (string, error) {
	src, err := f.SourceURL(ex, date)
	if err != nil {
		return "", err
	}
	return f.FetchURL(ctx, src, date)
}

// FetchURL downloads rawURL into the download directory for date.
func (f *Fetcher) FetchURL(ctx context.Context, rawURL string, date time.Time) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", errors.NewAppValidationError(fmt.Sprintf("invalid source URL %q", rawURL))
	}
	name := path.Base(u.Path)
	if name == "." || name == "/" {
		return "", errors.NewAppValidationError(fmt.Sprintf("source URL %q has no file name", rawURL))
	}

	if err := f.limiter.Wait(ctx); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", errors.NewNetworkError("failed to create request", err).WithContext("url", rawURL)
	}
	if f.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", f.cfg.UserAgent)
	}

	f.logger.InfoContext(ctx, "downloading bhavcopy", slog.String("url", rawURL))
	resp, err := f.client.Do(req)
	if err != nil {
		return "", errors.NewNetworkError("failed to download bhavcopy", err).WithContext("url", rawURL)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		f.logger.WarnContext(ctx, "bhavcopy not found", slog.String("url", rawURL))
		return "", nil
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return "", errors.NewNetworkError(fmt.Sprintf("unexpected status %d", resp.StatusCode), nil).WithContext("url", rawURL)
	}

	dir := filepath.Join(f.cfg.DownloadDir, DirStamp(date))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", errors.NewStorageError("failed to create download directory", err).WithContext("path", dir)
	}

	archive := filepath.Join(dir, name)
	size, err := saveBody(resp.Body, archive)
	if err != nil {
		return "", err
	}
	f.logger.InfoContext(ctx, "download complete",
		slog.String("path", archive),
		slog.Int64("size_bytes", size))

	isZip, err := hasZipMagic(archive)
	if err != nil {
		return "", err
	}
	if !isZip {
		return archive, nil
	}
	return extractFirstEntry(archive, dir)
}

func saveBody(body io.Reader, dst string) (int64, error) {
	tmp, err := os.CreateTemp(filepath.Dir(dst), ".download-*")
	if err != nil {
		return 0, errors.NewStorageError("failed to create download file", err).WithContext("path", dst)
	}
	n, err := io.Copy(tmp, body)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmp.Name())
		return 0, errors.NewNetworkError("failed to read response body", err).WithContext("path", dst)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		os.Remove(tmp.Name())
		return 0, errors.NewStorageError("failed to store download", err).WithContext("path", dst)
	}
	return n, nil
}

func hasZipMagic(p string) (bool, error) {
	file, err := os.Open(p)
	if err != nil {
		return false, errors.NewStorageError("failed to open download", err).WithContext("path", p)
	}
	defer file.Close()

	head := make([]byte, 4)
	if _, err := io.ReadFull(file, head); err != nil {
		return false, nil
	}
	for _, magic := range zipMagics {
		if bytes.Equal(head, magic) {
			return true, nil
		}
	}
	return false, nil
}

// extractFirstEntry unpacks the first entry of the archive into dir and
// returns its path. Other entries are ignored.
func extractFirstEntry(archive, dir string) (string, error) {
	r, err := zip.OpenReader(archive)
	if err != nil {
		return "", errors.NewParsingError("failed to open zip archive", err).WithContext("path", archive)
	}
	defer r.Close()

	if len(r.File) == 0 {
		return "", errors.NewParsingError("zip archive is empty", nil).WithContext("path", archive)
	}
	entry := r.File[0]

	src, err := entry.Open()
	if err != nil {
		return "", errors.NewParsingError("failed to open zip entry", err).WithContext("entry", entry.Name)
	}
	defer src.Close()

	// Entry names are reduced to their base name so nothing escapes dir.
	out := filepath.Join(dir, filepath.Base(filepath.FromSlash(entry.Name)))
	if _, err := saveBody(src, out); err != nil {
		return "", err
	}
	return out, nil
}
