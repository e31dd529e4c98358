// Package repository defines persistence contracts for comparison runs.
package repository

import (
	"context"
	"errors"

	"github.com/tigerroll/sqlcompare/pkg/compare/core/domain/model"
)

// ErrRunNotFound is returned when a run id is unknown to the store.
var ErrRunNotFound = errors.New("comparison run not found")

// ResultRepository stores runs, their execution results and comparison reports.
type ResultRepository interface {
	// SaveRun stores the run header (id, timing, repeat count, export location).
	SaveRun(ctx context.Context, run *model.RunSummary) error
	// SaveResults stores results in order under runID.
	SaveResults(ctx context.Context, runID string, results []model.ExecutionResult) error
	// SaveComparison stores the report of runID.
	SaveComparison(ctx context.Context, runID string, report *model.ComparisonReport) error
	// FindRun loads a run header and its report, if one was saved.
	FindRun(ctx context.Context, runID string) (*model.RunSummary, error)
	// FindResults loads the results of runID in their saved order.
	FindResults(ctx context.Context, runID string) ([]model.ExecutionResult, error)
}
