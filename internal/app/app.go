package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/BasioMeusPuga/BhavCopyParser/internal/config"
	apierrors "github.com/BasioMeusPuga/BhavCopyParser/internal/errors"
	"github.com/BasioMeusPuga/BhavCopyParser/internal/files"
	"github.com/BasioMeusPuga/BhavCopyParser/internal/infrastructure"
	bhavmw "github.com/BasioMeusPuga/BhavCopyParser/internal/middleware"
	"github.com/BasioMeusPuga/BhavCopyParser/internal/services"
	handlers "github.com/BasioMeusPuga/BhavCopyParser/internal/transport/http"
	"github.com/BasioMeusPuga/BhavCopyParser/pkg/contracts"
)

// Application represents the main application container
type Application struct {
	Config        *config.Config
	Paths         *config.Paths
	Router        *chi.Mux
	Server        *http.Server
	Fetcher       *files.Fetcher
	ReportService *services.ReportService
	HealthService *services.HealthService
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders

	errorHandler *apierrors.ErrorHandler
}

// NewApplication loads configuration from configFile and the environment,
// initializes logging and builds the application.
func NewApplication(configFile string) (*Application, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := InitializeLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return New(cfg, logger)
}

// InitializeLogger resolves a relative log file against the logs directory
// and installs the application logger.
func InitializeLogger(cfg *config.Config) (*slog.Logger, error) {
	if cfg.Logging.Output != "console" && !filepath.IsAbs(cfg.Logging.FilePath) {
		paths, err := config.GetPaths(cfg.Paths)
		if err != nil {
			return nil, fmt.Errorf("failed to get paths: %w", err)
		}
		cfg.Logging.FilePath = paths.GetLogPath(cfg.Logging.FilePath)
	}
	return infrastructure.InitializeLogger(cfg.Logging)
}

// New builds the application from an already loaded configuration.
func New(cfg *config.Config, logger *slog.Logger) (*Application, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("application starting",
		slog.String("name", config.AppName),
		slog.String("version", contracts.GetFullVersionString()))

	paths, err := config.GetPaths(cfg.Paths)
	if err != nil {
		return nil, fmt.Errorf("failed to get paths: %w", err)
	}
	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}
	paths.LogPathResolution(logger)

	providers, err := infrastructure.InitializeOTel(cfg.Telemetry, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Paths:         paths,
		Logger:        logger,
		OTelProviders: providers,
		errorHandler:  apierrors.NewErrorHandler(logger, cfg.Logging.Development),
	}

	if err := app.initializeServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}
	if err := app.setupRouter(); err != nil {
		return nil, fmt.Errorf("failed to setup router: %w", err)
	}
	app.createServer()

	return app, nil
}

// initializeServices initializes all application services
func (a *Application) initializeServices() error {
	metrics, err := infrastructure.NewReportMetrics(a.OTelProviders.Meter)
	if err != nil {
		return fmt.Errorf("failed to create report metrics: %w", err)
	}

	a.Fetcher = files.NewFetcher(files.FetcherConfig{
		URLTemplates:      a.Config.URLTemplates(),
		DownloadDir:       a.Paths.DownloadsDir,
		RequestsPerSecond: a.Config.Fetch.RequestsPerSecond,
		Timeout:           a.Config.Fetch.Timeout,
		UserAgent:         a.Config.Fetch.UserAgent,
	}, nil, a.Logger)

	a.ReportService = services.NewReportService(services.ReportServiceOptions{
		Fetcher: a.Fetcher,
		Tracer:  a.OTelProviders.Tracer,
		Metrics: metrics,
	}, a.Logger)
	a.HealthService = services.NewHealthService(contracts.Version, a.Paths, a.Logger)

	a.Logger.Info("services initialized")
	return nil
}

// setupRouter configures the HTTP router
func (a *Application) setupRouter() error {
	r := chi.NewRouter()

	otelMiddleware, err := bhavmw.NewOTelMiddleware(a.OTelProviders)
	if err != nil {
		return fmt.Errorf("failed to create OTel middleware: %w", err)
	}

	r.Use(bhavmw.RequestID)
	r.Use(bhavmw.RealIP)
	r.Use(otelMiddleware.Handler)
	r.Use(bhavmw.StructuredLogger(a.Logger))
	r.Use(apierrors.RecoveryMiddleware(a.errorHandler))
	if a.Config.Server.RateLimit.Enabled {
		limiter := bhavmw.NewRateLimiter(a.Config.Server.RateLimit.RPS, a.Config.Server.RateLimit.Burst, a.Logger)
		r.Use(limiter.Handler)
	}

	r.NotFound(a.errorHandler.NotFound)
	r.MethodNotAllowed(a.errorHandler.MethodNotAllowed)

	r.Method(http.MethodGet, "/metrics", handlers.NewMetricsHandler(a.OTelProviders.PrometheusHTTP))

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		a.setupAPIRoutes(r)
	})

	a.Router = r
	return nil
}

// setupAPIRoutes mounts the versioned API and the health endpoints.
func (a *Application) setupAPIRoutes(r chi.Router) {
	healthHandler := handlers.NewHealthHandler(a.HealthService, a.Logger)
	r.Mount("/health", healthHandler.Routes())
	r.Get("/version", healthHandler.Version)

	reportsHandler := handlers.NewReportsHandler(a.ReportService, handlers.ReportsHandlerConfig{
		ReportsDir:   a.Paths.ReportsDir,
		RegistryFile: a.Paths.RegistryFile,
		InputDir:     a.Paths.DownloadsDir,
		SourceHosts:  a.Config.SourceHosts(),
	}, a.Logger, a.errorHandler)

	r.Route("/v1", func(r chi.Router) {
		// Generation can run long; only the v1 routes get the request timeout.
		r.Use(bhavmw.Timeout(a.Config.Server.RequestTimeout))
		r.Mount("/reports", reportsHandler.Routes())
	})
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:      a.Router,
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
		IdleTimeout:  a.Config.Server.IdleTimeout,
	}
}

// Start begins serving in the background. A listen failure is logged and
// cancels the context owned by the caller.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	ln, err := net.Listen("tcp", a.Server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.Server.Addr, err)
	}
	return a.Serve(ctx, ln, cancel)
}

// Serve serves on ln in the background.
func (a *Application) Serve(ctx context.Context, ln net.Listener, cancel context.CancelFunc) error {
	go func() {
		if err := a.Server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.ErrorContext(ctx, "server error", slog.String("error", err.Error()))
			if cancel != nil {
				cancel()
			}
		}
	}()

	a.Logger.InfoContext(ctx, "application started",
		slog.String("address", ln.Addr().String()),
		slog.String("reports_dir", a.Paths.ReportsDir))
	return nil
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	a.Close(shutdownCtx)
	a.Logger.InfoContext(ctx, "application shutdown complete")
	return nil
}

// Close flushes telemetry and releases the log file. Commands that never
// start the server call it directly.
func (a *Application) Close(ctx context.Context) {
	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(ctx); err != nil {
			a.Logger.ErrorContext(ctx, "error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}
	if err := infrastructure.CloseLogFile(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to close log file: %v\n", err)
	}
}

// Run runs the application until interrupted
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case sig := <-sigChan:
		a.Logger.InfoContext(ctx, "received shutdown signal", slog.String("signal", sig.String()))
	case <-ctx.Done():
		a.Logger.InfoContext(ctx, "context cancelled")
	}

	return a.Stop(context.Background())
}
