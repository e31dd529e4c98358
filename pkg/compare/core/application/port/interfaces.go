// Package port defines the capabilities the comparison use case depends on.
package port

import (
	"context"

	"github.com/tigerroll/sqlcompare/pkg/compare/core/domain/model"
)

// QueryTranslator rewrites SQL Server queries for Snowflake.
type QueryTranslator interface {
	Translate(query string) (string, error)
	ValidateTranslation(query string) bool
}

// QueryExecutor runs query jobs, returning one result per job in submission order.
type QueryExecutor interface {
	ExecuteParallel(ctx context.Context, jobs []model.QueryJob) []model.ExecutionResult
}

// ResultComparator aggregates result batches.
type ResultComparator interface {
	CompareResults(sqlServer, snowflake []model.ExecutionResult) (*model.ComparisonReport, error)
	CalculateStatistics(results []model.ExecutionResult) model.Statistics
}

// ResultExporter writes the results of a run to external storage and returns their location.
type ResultExporter interface {
	Export(ctx context.Context, run *model.RunSummary) (string, error)
}
