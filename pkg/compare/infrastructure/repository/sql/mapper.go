package sql

import (
	"time"

	"github.com/tigerroll/sqlcompare/pkg/compare/core/domain/model"
)

func fromDomainRun(run *model.RunSummary) *RunEntity {
	if run == nil {
		return nil
	}
	entity := &RunEntity{
		ID:          run.RunID,
		StartedAt:   run.StartedAt,
		RepeatCount: run.RepeatCount,
		QueryCount:  len(run.Translations),
	}
	if !run.FinishedAt.IsZero() {
		finished := run.FinishedAt
		entity.FinishedAt = &finished
	}
	if run.ExportLocation != "" {
		loc := run.ExportLocation
		entity.ExportLocation = &loc
	}
	return entity
}

func toDomainRun(entity *RunEntity) *model.RunSummary {
	if entity == nil {
		return nil
	}
	run := &model.RunSummary{
		RunID:       entity.ID,
		StartedAt:   entity.StartedAt,
		RepeatCount: entity.RepeatCount,
	}
	if entity.FinishedAt != nil {
		run.FinishedAt = *entity.FinishedAt
	}
	if entity.ExportLocation != nil {
		run.ExportLocation = *entity.ExportLocation
	}
	return run
}

func fromDomainResult(runID string, seq int, r model.ExecutionResult) *ResultEntity {
	return &ResultEntity{
		ID:              model.NewID(),
		RunID:           runID,
		Seq:             seq,
		QueryID:         r.QueryID,
		Platform:        string(r.Platform),
		Iteration:       r.Iteration,
		QueryText:       r.Query,
		ExecutionTimeMs: r.ExecutionTimeMs,
		RowCount:        r.RowCount,
		Status:          string(r.Status),
		ErrorMessage:    r.ErrorMessage,
		StartedAt:       r.StartedAt,
	}
}

func toDomainResult(entity *ResultEntity) model.ExecutionResult {
	return model.ExecutionResult{
		QueryJob: model.QueryJob{
			QueryID:   entity.QueryID,
			Query:     entity.QueryText,
			Platform:  model.Platform(entity.Platform),
			Iteration: entity.Iteration,
		},
		ExecutionTimeMs: entity.ExecutionTimeMs,
		RowCount:        entity.RowCount,
		Status:          model.ExecutionStatus(entity.Status),
		ErrorMessage:    entity.ErrorMessage,
		StartedAt:       entity.StartedAt,
	}
}

func fromDomainComparison(runID string, report *model.ComparisonReport, now time.Time) *ComparisonEntity {
	if report == nil {
		return nil
	}
	entity := &ComparisonEntity{
		RunID:                 runID,
		SQLServerAvgTimeMs:    report.SQLServerAvgTimeMs,
		SnowflakeAvgTimeMs:    report.SnowflakeAvgTimeMs,
		TimeDifferenceMs:      report.TimeDifferenceMs,
		TimeDifferencePercent: report.TimeDifferencePercent,
		RowCountMatch:         report.RowCountMatch,
		SQLServerRowCount:     report.SQLServerRowCount,
		SnowflakeRowCount:     report.SnowflakeRowCount,
		CreatedAt:             now,
	}
	if report.PerformanceWinner != nil {
		w := string(*report.PerformanceWinner)
		entity.PerformanceWinner = &w
	}
	return entity
}

func toDomainComparison(entity *ComparisonEntity) *model.ComparisonReport {
	if entity == nil {
		return nil
	}
	report := &model.ComparisonReport{
		SQLServerAvgTimeMs:    entity.SQLServerAvgTimeMs,
		SnowflakeAvgTimeMs:    entity.SnowflakeAvgTimeMs,
		TimeDifferenceMs:      entity.TimeDifferenceMs,
		TimeDifferencePercent: entity.TimeDifferencePercent,
		RowCountMatch:         entity.RowCountMatch,
		SQLServerRowCount:     entity.SQLServerRowCount,
		SnowflakeRowCount:     entity.SnowflakeRowCount,
	}
	if entity.PerformanceWinner != nil {
		w := model.Winner(*entity.PerformanceWinner)
		report.PerformanceWinner = &w
	}
	return report
}
