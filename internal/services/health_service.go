package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/BasioMeusPuga/BhavCopyParser/internal/config"
	"github.com/BasioMeusPuga/BhavCopyParser/internal/infrastructure"
)

// HealthService provides health check functionality
type HealthService struct {
	version   string
	paths     *config.Paths
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                   `json:"status"`
	Timestamp time.Time                `json:"timestamp"`
	Version   string                   `json:"version"`
	Runtime   map[string]interface{}   `json:"runtime,omitempty"`
	Services  map[string]ServiceHealth `json:"services,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// NewHealthService creates a new health service
func NewHealthService(version string, paths *config.Paths, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthService{
		version:   version,
		paths:     paths,
		startTime: time.Now(),
		logger:    infrastructure.WithComponent(logger, "health_service"),
	}
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	hs.logger.DebugContext(ctx, "performing health check",
		slog.String("uptime", time.Since(hs.startTime).String()))

	return HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   hs.version,
	}
}

// ReadinessCheck reports whether the directories a run needs are usable.
// A missing client registry is reported but does not make the service
// unready, since a run creates it from the template.
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ready",
		Timestamp: time.Now(),
		Version:   hs.version,
		Services: map[string]ServiceHealth{
			"reports":   checkDirectory(hs.paths.ReportsDir),
			"downloads": checkDirectory(hs.paths.DownloadsDir),
			"registry":  checkRegistry(hs.paths.RegistryFile),
		},
	}

	for name, service := range status.Services {
		if service.Status != "ready" {
			status.Status = "not_ready"
			hs.logger.WarnContext(ctx, "readiness check failed",
				slog.String("service", name),
				slog.String("message", service.Message))
		}
	}
	return status
}

// LivenessCheck returns liveness status
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "alive",
		Timestamp: time.Now(),
		Version:   hs.version,
		Runtime: map[string]interface{}{
			"uptime":     time.Since(hs.startTime).Seconds(),
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
		},
	}
}

func checkDirectory(dir string) ServiceHealth {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return ServiceHealth{Status: "not_ready", Message: fmt.Sprintf("cannot create %s: %v", dir, err)}
	}
	probe, err := os.CreateTemp(dir, ".health-*")
	if err != nil {
		return ServiceHealth{Status: "not_ready", Message: fmt.Sprintf("cannot write to %s: %v", dir, err)}
	}
	probe.Close()
	os.Remove(probe.Name())
	return ServiceHealth{Status: "ready"}
}

func checkRegistry(path string) ServiceHealth {
	if !config.FileExists(path) {
		return ServiceHealth{Status: "ready", Message: "client registry missing, template will be created on first run"}
	}
	return ServiceHealth{Status: "ready"}
}
