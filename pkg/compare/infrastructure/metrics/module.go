package metrics

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/fx"

	"github.com/tigerroll/sqlcompare/pkg/compare/core/config"
	metrics "github.com/tigerroll/sqlcompare/pkg/compare/core/metrics"
	"github.com/tigerroll/sqlcompare/pkg/compare/support/util/logger"
)

// NewMetricRecorder selects the recorder named by telemetry.metrics_exporter.
// The Prometheus recorder also starts a /metrics server when metrics_addr is set.
func NewMetricRecorder(lc fx.Lifecycle, cfg *config.TelemetryConfig) (metrics.MetricRecorder, error) {
	switch cfg.MetricsExporter {
	case ExporterPrometheus:
		recorder := NewPrometheusRecorder()
		if cfg.MetricsAddr != "" {
			server := NewMetricsServer(cfg.MetricsAddr, recorder)
			lc.Append(fx.Hook{OnStart: server.Start, OnStop: server.Stop})
		}
		return recorder, nil
	case ExporterOTLPGRPC, ExporterOTLPHTTP:
		provider, err := NewMeterProvider(context.Background(), cfg)
		if err != nil {
			return nil, err
		}
		lc.Append(fx.Hook{OnStop: provider.Shutdown})
		otel.SetMeterProvider(provider)
		return NewOtelRecorder(provider)
	case ExporterNone, "":
		return metrics.NewNoOpMetricRecorder(), nil
	default:
		logger.Warnf("Unknown metrics exporter '%s'. Metrics are disabled.", cfg.MetricsExporter)
		return metrics.NewNoOpMetricRecorder(), nil
	}
}

// NewTracer selects the tracer named by telemetry.traces_exporter.
func NewTracer(lc fx.Lifecycle, cfg *config.TelemetryConfig) (metrics.Tracer, error) {
	switch cfg.TracesExporter {
	case ExporterOTLPGRPC, ExporterOTLPHTTP:
		provider, err := NewTracerProvider(context.Background(), cfg)
		if err != nil {
			return nil, err
		}
		lc.Append(fx.Hook{OnStop: provider.Shutdown})
		otel.SetTracerProvider(provider)
		return NewOpenTelemetryTracer(provider), nil
	case ExporterNone, "":
		return NewOpenTelemetryTracer(noop.NewTracerProvider()), nil
	default:
		logger.Warnf("Unknown traces exporter '%s'. Tracing is disabled.", cfg.TracesExporter)
		return metrics.NewNoOpTracer(), nil
	}
}

// Module provides the configured MetricRecorder and Tracer.
var Module = fx.Options(
	fx.Provide(NewMetricRecorder),
	fx.Provide(NewTracer),
)
