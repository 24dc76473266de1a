package infrastructure

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.28.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/BasioMeusPuga/BhavCopyParser/internal/config"
	"github.com/BasioMeusPuga/BhavCopyParser/pkg/contracts"
)

// InstrumentationName names the tracer and meter of this module.
const InstrumentationName = "github.com/BasioMeusPuga/BhavCopyParser"

// OTelProviders holds the OpenTelemetry providers
type OTelProviders struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	Tracer         trace.Tracer
	Meter          metric.Meter
	// PrometheusHTTP serves the metrics registry; nil when metrics are off.
	PrometheusHTTP http.Handler
	Logger         *slog.Logger
}

// InitializeOTel sets up tracing and metrics as cfg asks. Disabled signals
// fall back to no-op implementations so callers never check for nil.
func InitializeOTel(cfg config.TelemetryConfig, logger *slog.Logger) (*OTelProviders, error) {
	if logger == nil {
		logger = slog.Default()
	}
	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(contracts.Version),
		attribute.String("service.instance.id", instanceID()),
	)

	providers := &OTelProviders{Logger: logger}

	switch cfg.TraceExporter {
	case "stdout":
		exporter, err := stdouttrace.New(stdouttrace.WithWriter(os.Stderr))
		if err != nil {
			return nil, fmt.Errorf("failed to create trace exporter: %w", err)
		}
		tp := sdktrace.NewTracerProvider(
			sdktrace.WithBatcher(exporter),
			sdktrace.WithResource(res),
		)
		otel.SetTracerProvider(tp)
		providers.TracerProvider = tp
		providers.Tracer = tp.Tracer(InstrumentationName)
	case "none", "":
		providers.Tracer = otel.Tracer(InstrumentationName)
	default:
		return nil, fmt.Errorf("unsupported trace exporter: %s", cfg.TraceExporter)
	}

	if cfg.MetricsEnabled {
		registry := promclient.NewRegistry()
		exporter, err := prometheus.New(prometheus.WithRegisterer(registry))
		if err != nil {
			return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
		}
		mp := sdkmetric.NewMeterProvider(
			sdkmetric.WithResource(res),
			sdkmetric.WithReader(exporter),
		)
		otel.SetMeterProvider(mp)
		providers.MeterProvider = mp
		providers.Meter = mp.Meter(InstrumentationName)
		providers.PrometheusHTTP = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	} else {
		providers.Meter = noop.NewMeterProvider().Meter(InstrumentationName)
	}

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	logger.Info("telemetry initialized",
		slog.String("trace_exporter", cfg.TraceExporter),
		slog.Bool("metrics_enabled", cfg.MetricsEnabled))
	return providers, nil
}

// Shutdown flushes and stops the providers.
func (p *OTelProviders) Shutdown(ctx context.Context) error {
	var errs []error
	if p.TracerProvider != nil {
		if err := p.TracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider shutdown: %w", err))
		}
	}
	if p.MeterProvider != nil {
		if err := p.MeterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter provider shutdown: %w", err))
		}
	}
	return stderrors.Join(errs...)
}

func instanceID() string {
	hostname, _ := os.Hostname()
	return fmt.Sprintf("%s-%d", hostname, os.Getpid())
}

// ReportMetrics are the instruments recorded while generating reports.
type ReportMetrics struct {
	RowsExtracted  metric.Int64Counter
	ReportsWritten metric.Int64Counter
	ReportsSkipped metric.Int64Counter
	Failures       metric.Int64Counter
	BuildDuration  metric.Float64Histogram
}

// NewReportMetrics creates the report instruments on meter.
func NewReportMetrics(meter metric.Meter) (*ReportMetrics, error) {
	rows, err := meter.Int64Counter("bhavcopy_rows_extracted_total",
		metric.WithDescription("Scrip records extracted from bhavcopies"))
	if err != nil {
		return nil, err
	}
	written, err := meter.Int64Counter("bhavcopy_reports_written_total",
		metric.WithDescription("Workbooks written"))
	if err != nil {
		return nil, err
	}
	skipped, err := meter.Int64Counter("bhavcopy_reports_skipped_total",
		metric.WithDescription("Exchanges skipped because no bhavcopy was available"))
	if err != nil {
		return nil, err
	}
	failures, err := meter.Int64Counter("bhavcopy_report_failures_total",
		metric.WithDescription("Exchanges whose report could not be produced"))
	if err != nil {
		return nil, err
	}
	duration, err := meter.Float64Histogram("bhavcopy_report_build_duration_seconds",
		metric.WithDescription("Time to extract, build and write one exchange's report"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}
	return &ReportMetrics{
		RowsExtracted:  rows,
		ReportsWritten: written,
		ReportsSkipped: skipped,
		Failures:       failures,
		BuildDuration:  duration,
	}, nil
}

// HTTPMetrics are the instruments recorded by the HTTP middleware.
type HTTPMetrics struct {
	RequestsTotal   metric.Int64Counter
	RequestDuration metric.Float64Histogram
}

// NewHTTPMetrics creates the HTTP instruments on meter.
func NewHTTPMetrics(meter metric.Meter) (*HTTPMetrics, error) {
	total, err := meter.Int64Counter("http_requests_total",
		metric.WithDescription("Total number of HTTP requests"))
	if err != nil {
		return nil, err
	}
	duration, err := meter.Float64Histogram("http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}
	return &HTTPMetrics{RequestsTotal: total, RequestDuration: duration}, nil
}

// RecordError records err on the span in ctx.
func RecordError(ctx context.Context, err error) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
