package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tigerroll/sqlcompare/pkg/compare/core/domain/model"
	metrics "github.com/tigerroll/sqlcompare/pkg/compare/core/metrics"
	"github.com/tigerroll/sqlcompare/pkg/compare/support/util/logger"
)

// OpenTelemetryTracer is an implementation of metrics.Tracer using OpenTelemetry.
type OpenTelemetryTracer struct {
	tracer trace.Tracer
}

// NewOpenTelemetryTracer creates a tracer from provider.
func NewOpenTelemetryTracer(provider trace.TracerProvider) *OpenTelemetryTracer {
	return &OpenTelemetryTracer{tracer: provider.Tracer(instrumentationName)}
}

// StartRunSpan implements metrics.Tracer.
func (t *OpenTelemetryTracer) StartRunSpan(ctx context.Context, runID string) (context.Context, func()) {
	ctx, span := t.tracer.Start(ctx, "comparison.run", trace.WithAttributes(attribute.String("run.id", runID)))
	return ctx, func() { span.End() }
}

// StartQuerySpan implements metrics.Tracer.
func (t *OpenTelemetryTracer) StartQuerySpan(ctx context.Context, job model.QueryJob) (context.Context, func()) {
	ctx, span := t.tracer.Start(ctx, "query.execute",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("query.id", job.QueryID),
			attribute.String("db.system", dbSystem(job.Platform)),
			attribute.Int("query.iteration", job.Iteration),
		))
	return ctx, func() { span.End() }
}

// RecordError implements metrics.Tracer.
func (t *OpenTelemetryTracer) RecordError(ctx context.Context, module string, err error) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		logger.Debugf("Tracer: error in module %s outside of a span: %v", module, err)
		return
	}
	span.RecordError(err, trace.WithAttributes(attribute.String("module", module)))
	span.SetStatus(codes.Error, err.Error())
}

// RecordEvent implements metrics.Tracer.
func (t *OpenTelemetryTracer) RecordEvent(ctx context.Context, name string, attributes map[string]interface{}) {
	span := trace.SpanFromContext(ctx)
	attrs := make([]attribute.KeyValue, 0, len(attributes))
	for k, v := range attributes {
		attrs = append(attrs, toAttribute(k, v))
	}
	span.AddEvent(name, trace.WithAttributes(attrs...))
}

func toAttribute(k string, v interface{}) attribute.KeyValue {
	switch val := v.(type) {
	case string:
		return attribute.String(k, val)
	case int:
		return attribute.Int(k, val)
	case int64:
		return attribute.Int64(k, val)
	case float64:
		return attribute.Float64(k, val)
	case bool:
		return attribute.Bool(k, val)
	default:
		return attribute.String(k, fmt.Sprint(val))
	}
}

func dbSystem(p model.Platform) string {
	switch p {
	case model.PlatformSQLServer:
		return "mssql"
	case model.PlatformSnowflake:
		return "snowflake"
	}
	return "other_sql"
}

var _ metrics.Tracer = (*OpenTelemetryTracer)(nil)
