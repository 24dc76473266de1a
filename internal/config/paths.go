package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths holds the resolved, absolute locations the application reads and
// writes.
type Paths struct {
	BaseDir      string
	DownloadsDir string
	ReportsDir   string
	LogsDir      string
	RegistryFile string
}

// GetPaths resolves cfg against its base directory. An empty base directory
// means the current working directory.
func GetPaths(cfg PathsConfig) (*Paths, error) {
	base := cfg.BaseDir
	if base == "" {
		base = "."
	}
	base, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base directory: %w", err)
	}

	resolve := func(p, fallback string) string {
		if p == "" {
			p = fallback
		}
		if filepath.IsAbs(p) {
			return filepath.Clean(p)
		}
		return filepath.Join(base, p)
	}

	return &Paths{
		BaseDir:      base,
		DownloadsDir: resolve(cfg.DownloadsDir, DefaultDownloadsDir),
		ReportsDir:   resolve(cfg.ReportsDir, DefaultReportsDir),
		LogsDir:      resolve(cfg.LogsDir, DefaultLogsDir),
		RegistryFile: resolve(cfg.RegistryFile, DefaultRegistryFile),
	}, nil
}

// EnsureDirectories creates the downloads, reports and logs directories.
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.DownloadsDir, p.ReportsDir, p.LogsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// GetReportPath returns a path inside the reports directory.
func (p *Paths) GetReportPath(filename string) string {
	return filepath.Join(p.ReportsDir, filename)
}

// GetLogPath returns a path inside the logs directory.
func (p *Paths) GetLogPath(filename string) string {
	return filepath.Join(p.LogsDir, filename)
}

// LogPathResolution logs every resolved path at debug level.
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	logger.Debug("paths resolved",
		slog.String("base_dir", p.BaseDir),
		slog.String("downloads_dir", p.DownloadsDir),
		slog.String("reports_dir", p.ReportsDir),
		slog.String("logs_dir", p.LogsDir),
		slog.String("registry_file", p.RegistryFile))
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
