package metrics

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/tigerroll/sqlcompare/pkg/compare/core/domain/model"
	metrics "github.com/tigerroll/sqlcompare/pkg/compare/core/metrics"
)

const instrumentationName = "github.com/tigerroll/sqlcompare"

// OtelRecorder is an OpenTelemetry metrics implementation of metrics.MetricRecorder.
type OtelRecorder struct {
	queryDuration metric.Int64Histogram
	queries       metric.Int64Counter
	rows          metric.Int64Counter
	comparisons   metric.Int64Counter
	operation     metric.Float64Histogram
}

// NewOtelRecorder creates the instruments on a meter of provider.
func NewOtelRecorder(provider metric.MeterProvider) (*OtelRecorder, error) {
	meter := provider.Meter(instrumentationName)

	queryDuration, err := meter.Int64Histogram("sqlcompare.query.duration",
		metric.WithUnit("ms"),
		metric.WithDescription("Wall-clock duration of successful query executions."))
	if err != nil {
		return nil, err
	}
	queries, err := meter.Int64Counter("sqlcompare.queries",
		metric.WithDescription("Query executions by platform and status."))
	if err != nil {
		return nil, err
	}
	rows, err := meter.Int64Counter("sqlcompare.rows",
		metric.WithDescription("Rows fetched by platform."))
	if err != nil {
		return nil, err
	}
	comparisons, err := meter.Int64Counter("sqlcompare.comparisons",
		metric.WithDescription("Comparisons by winning platform."))
	if err != nil {
		return nil, err
	}
	operation, err := meter.Float64Histogram("sqlcompare.operation.duration",
		metric.WithUnit("s"),
		metric.WithDescription("Duration of named operations."))
	if err != nil {
		return nil, err
	}
	return &OtelRecorder{
		queryDuration: queryDuration,
		queries:       queries,
		rows:          rows,
		comparisons:   comparisons,
		operation:     operation,
	}, nil
}

// RecordQuery implements metrics.MetricRecorder.
func (r *OtelRecorder) RecordQuery(ctx context.Context, result model.ExecutionResult) {
	platform := attribute.String("platform", result.Platform.String())
	r.queries.Add(ctx, 1, metric.WithAttributes(platform, attribute.String("status", string(result.Status))))
	if result.Succeeded() {
		r.queryDuration.Record(ctx, *result.ExecutionTimeMs, metric.WithAttributes(platform))
	}
	if result.RowCount != nil {
		r.rows.Add(ctx, *result.RowCount, metric.WithAttributes(platform))
	}
}

// RecordComparison implements metrics.MetricRecorder.
func (r *OtelRecorder) RecordComparison(ctx context.Context, report *model.ComparisonReport) {
	winner := "none"
	if report != nil && report.PerformanceWinner != nil {
		winner = string(*report.PerformanceWinner)
	}
	r.comparisons.Add(ctx, 1, metric.WithAttributes(attribute.String("winner", winner)))
}

// RecordDuration implements metrics.MetricRecorder.
func (r *OtelRecorder) RecordDuration(ctx context.Context, name string, duration time.Duration, tags map[string]string) {
	attrs := []attribute.KeyValue{attribute.String("operation", name)}
	for k, v := range tags {
		attrs = append(attrs, attribute.String(k, v))
	}
	r.operation.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

var _ metrics.MetricRecorder = (*OtelRecorder)(nil)
