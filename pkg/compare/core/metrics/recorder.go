// Package metrics defines the recording and tracing abstractions used by the executor and the use case.
package metrics

import (
	"context"
	"time"

	"github.com/tigerroll/sqlcompare/pkg/compare/core/domain/model"
)

// MetricRecorder records metrics about query executions and comparisons.
// Implementations must be safe for concurrent use; the executor calls them from worker goroutines.
type MetricRecorder interface {
	// RecordQuery records one finished (or timed out) query execution.
	RecordQuery(ctx context.Context, result model.ExecutionResult)

	// RecordComparison records the outcome of a comparison. report may be nil.
	RecordComparison(ctx context.Context, report *model.ComparisonReport)

	// RecordDuration records the duration of a named operation (e.g. "translate", "export").
	RecordDuration(ctx context.Context, name string, duration time.Duration, tags map[string]string)
}

// Tracer is the tracing abstraction.
type Tracer interface {
	// StartRunSpan starts a span covering one comparison run.
	// The returned function ends the span.
	StartRunSpan(ctx context.Context, runID string) (context.Context, func())

	// StartQuerySpan starts a span for one query job.
	StartQuerySpan(ctx context.Context, job model.QueryJob) (context.Context, func())

	// RecordError records an error in the current span.
	RecordError(ctx context.Context, module string, err error)

	// RecordEvent records an event in the current span.
	RecordEvent(ctx context.Context, name string, attributes map[string]interface{})
}
