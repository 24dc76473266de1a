package infrastructure

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/BasioMeusPuga/BhavCopyParser/internal/config"
)

var (
	loggerMu  sync.Mutex
	logCloser io.Closer
)

// InitializeLogger builds the application logger from cfg, installs it as
// the slog default and returns it. Call CloseLogFile on shutdown when the
// output includes a file.
func InitializeLogger(cfg config.LoggingConfig) (*slog.Logger, error) {
	logger, closer, err := NewLogger(cfg, os.Stderr)
	if err != nil {
		return nil, err
	}

	loggerMu.Lock()
	if logCloser != nil {
		logCloser.Close()
	}
	logCloser = closer
	loggerMu.Unlock()

	slog.SetDefault(logger)
	return logger, nil
}

// NewLogger creates a logger writing to console, the configured file, or
// both. The returned closer is nil unless a file was opened.
func NewLogger(cfg config.LoggingConfig, console io.Writer) (*slog.Logger, io.Closer, error) {
	var (
		output io.Writer
		closer io.Closer
	)
	switch cfg.Output {
	case "file", "both":
		file, err := openLogFile(cfg.FilePath)
		if err != nil {
			return nil, nil, err
		}
		closer = file
		output = file
		if cfg.Output == "both" {
			output = io.MultiWriter(console, file)
		}
	default:
		output = console
	}

	opts := &slog.HandlerOptions{
		AddSource: cfg.Development,
		Level:     cfg.SlogLevel(),
	}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(output, opts)
	} else {
		handler = slog.NewJSONHandler(output, opts)
	}
	return slog.New(&traceHandler{Handler: handler}), closer, nil
}

// traceHandler adds the context's trace_id to every record.
type traceHandler struct {
	slog.Handler
}

func (h *traceHandler) Handle(ctx context.Context, r slog.Record) error {
	if traceID := GetTraceID(ctx); traceID != "" {
		r.AddAttrs(slog.String("trace_id", traceID))
	}
	return h.Handler.Handle(ctx, r)
}

func (h *traceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &traceHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *traceHandler) WithGroup(name string) slog.Handler {
	return &traceHandler{Handler: h.Handler.WithGroup(name)}
}

// CloseLogFile closes the log file opened by InitializeLogger, if any.
func CloseLogFile() error {
	loggerMu.Lock()
	defer loggerMu.Unlock()

	if logCloser == nil {
		return nil
	}
	err := logCloser.Close()
	logCloser = nil
	return err
}

func openLogFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return nil, fmt.Errorf("log file path is empty")
	}
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory %s: %w", dir, err)
	}
	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", filePath, err)
	}
	return file, nil
}
