package usecase

import (
	"go.uber.org/fx"

	"github.com/tigerroll/sqlcompare/pkg/compare/component/writer"
	"github.com/tigerroll/sqlcompare/pkg/compare/core/config"
	"github.com/tigerroll/sqlcompare/pkg/compare/core/domain/repository"
	"github.com/tigerroll/sqlcompare/pkg/compare/core/metrics"
	"github.com/tigerroll/sqlcompare/pkg/compare/engine/analysis"
	"github.com/tigerroll/sqlcompare/pkg/compare/engine/execution"
	"github.com/tigerroll/sqlcompare/pkg/compare/engine/translation"
)

// ComparerParams are the dependencies of the Fx-provided Comparer.
type ComparerParams struct {
	fx.In

	Execution  *config.ExecutionConfig
	Translator *translation.Translator
	Executor   *execution.Executor
	Comparator *analysis.Comparator
	Repository repository.ResultRepository `optional:"true"`
	Writer     *writer.ParquetResultWriter `optional:"true"`
	Recorder   metrics.MetricRecorder
	Tracer     metrics.Tracer
}

// NewComparerProvider builds the Comparer from the application graph.
func NewComparerProvider(p ComparerParams) *Comparer {
	opts := []Option{
		WithRepeatCount(p.Execution.RepeatCount),
		WithTelemetry(p.Recorder, p.Tracer),
	}
	if p.Repository != nil {
		opts = append(opts, WithRepository(p.Repository))
	}
	// A nil writer must not become a non-nil interface value.
	if p.Writer != nil {
		opts = append(opts, WithExporter(p.Writer))
	}
	return NewComparer(p.Translator, p.Executor, p.Comparator, opts...)
}

// Module provides the Comparer.
var Module = fx.Options(
	fx.Provide(NewComparerProvider),
)
