// Package usecase implements the comparison run: translate, execute on both
// platforms, compare, then persist and export.
package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/tigerroll/sqlcompare/pkg/compare/core/application/port"
	"github.com/tigerroll/sqlcompare/pkg/compare/core/domain/model"
	"github.com/tigerroll/sqlcompare/pkg/compare/core/domain/repository"
	"github.com/tigerroll/sqlcompare/pkg/compare/core/metrics"
	"github.com/tigerroll/sqlcompare/pkg/compare/support/util/exception"
	"github.com/tigerroll/sqlcompare/pkg/compare/support/util/logger"
)

// RunRequest describes one comparison run.
type RunRequest struct {
	// Queries are SQL Server queries. Blank entries are ignored.
	Queries []string
	// RepeatCount is the number of executions per query and platform.
	// Zero means the configured default.
	RepeatCount int
}

// Comparer runs comparisons.
type Comparer struct {
	translator  port.QueryTranslator
	executor    port.QueryExecutor
	comparator  port.ResultComparator
	repository  repository.ResultRepository
	exporter    port.ResultExporter
	recorder    metrics.MetricRecorder
	tracer      metrics.Tracer
	repeatCount int
	now         func() time.Time
}

// Option customises a Comparer.
type Option func(*Comparer)

// WithRepository persists every run through repo.
func WithRepository(repo repository.ResultRepository) Option {
	return func(c *Comparer) { c.repository = repo }
}

// WithExporter exports the results of every run through exporter.
func WithExporter(exporter port.ResultExporter) Option {
	return func(c *Comparer) { c.exporter = exporter }
}

// WithTelemetry records metrics and spans of every run.
func WithTelemetry(recorder metrics.MetricRecorder, tracer metrics.Tracer) Option {
	return func(c *Comparer) {
		if recorder != nil {
			c.recorder = recorder
		}
		if tracer != nil {
			c.tracer = tracer
		}
	}
}

// WithRepeatCount sets the default number of executions per query and platform.
func WithRepeatCount(n int) Option {
	return func(c *Comparer) {
		if n > 0 {
			c.repeatCount = n
		}
	}
}

// NewComparer creates a Comparer. Persistence and export are off unless enabled by options.
func NewComparer(translator port.QueryTranslator, executor port.QueryExecutor, comparator port.ResultComparator, opts ...Option) *Comparer {
	c := &Comparer{
		translator:  translator,
		executor:    executor,
		comparator:  comparator,
		recorder:    metrics.NewNoOpMetricRecorder(),
		tracer:      metrics.NewNoOpTracer(),
		repeatCount: 1,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Translate translates each non-blank query, stopping at the first failure.
func (c *Comparer) Translate(queries []string) ([]model.Translation, error) {
	translations := make([]model.Translation, 0, len(queries))
	for _, q := range queries {
		q = strings.TrimSpace(q)
		if q == "" {
			continue
		}
		translated, err := c.translator.Translate(q)
		if err != nil {
			return nil, err
		}
		translations = append(translations, model.Translation{
			QueryID:   model.NewQueryID(),
			SQLServer: q,
			Snowflake: translated,
			Validated: c.translator.ValidateTranslation(translated),
		})
	}
	return translations, nil
}

// Run executes a full comparison. A translation failure aborts the run before any
// query executes. Persistence and export failures are logged and do not fail the run.
func (c *Comparer) Run(ctx context.Context, req RunRequest) (*model.RunSummary, error) {
	repeat := req.RepeatCount
	if repeat <= 0 {
		repeat = c.repeatCount
	}

	summary := &model.RunSummary{
		RunID:       model.NewID(),
		StartedAt:   c.now(),
		RepeatCount: repeat,
	}
	ctx, end := c.tracer.StartRunSpan(ctx, summary.RunID)
	defer end()

	translateStart := time.Now()
	translations, err := c.Translate(req.Queries)
	if err != nil {
		c.tracer.RecordError(ctx, "comparer", err)
		return nil, err
	}
	if len(translations) == 0 {
		return nil, exception.NewValidationError("comparer", "at least one query is required")
	}
	c.recorder.RecordDuration(ctx, "translate", time.Since(translateStart), nil)
	summary.Translations = translations
	logger.Infof("Run %s: %d queries translated, %d repetitions per platform.", summary.RunID, len(translations), repeat)

	jobs := BuildJobs(translations, repeat)
	executeStart := time.Now()
	summary.Results = c.executor.ExecuteParallel(ctx, jobs)
	c.recorder.RecordDuration(ctx, "execute", time.Since(executeStart), map[string]string{"jobs": fmt.Sprint(len(jobs))})

	sqlServer := model.FilterByPlatform(summary.Results, model.PlatformSQLServer)
	snowflake := model.FilterByPlatform(summary.Results, model.PlatformSnowflake)
	report, err := c.comparator.CompareResults(sqlServer, snowflake)
	if err != nil {
		c.tracer.RecordError(ctx, "comparer", err)
		return nil, err
	}
	summary.Report = report
	summary.SQLServerStats = c.comparator.CalculateStatistics(sqlServer)
	summary.SnowflakeStats = c.comparator.CalculateStatistics(snowflake)
	c.recorder.RecordComparison(ctx, report)
	summary.FinishedAt = c.now()

	if err := c.store(ctx, summary); err != nil {
		logger.Warnf("Run %s finished but storing its results was incomplete: %v", summary.RunID, err)
		c.tracer.RecordEvent(ctx, "store.incomplete", map[string]interface{}{"error": err.Error()})
	}
	return summary, nil
}

// store exports, then persists, the run. Both steps run even if one fails.
func (c *Comparer) store(ctx context.Context, summary *model.RunSummary) error {
	var result *multierror.Error
	if c.exporter != nil {
		start := time.Now()
		location, err := c.exporter.Export(ctx, summary)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("export: %w", err))
		} else {
			summary.ExportLocation = location
		}
		c.recorder.RecordDuration(ctx, "export", time.Since(start), nil)
	}
	if c.repository != nil {
		start := time.Now()
		if err := c.persist(ctx, summary); err != nil {
			result = multierror.Append(result, fmt.Errorf("persist: %w", err))
		}
		c.recorder.RecordDuration(ctx, "persist", time.Since(start), nil)
	}
	return result.ErrorOrNil()
}

func (c *Comparer) persist(ctx context.Context, summary *model.RunSummary) error {
	if err := c.repository.SaveRun(ctx, summary); err != nil {
		return err
	}
	var result *multierror.Error
	if err := c.repository.SaveResults(ctx, summary.RunID, summary.Results); err != nil {
		result = multierror.Append(result, err)
	}
	if err := c.repository.SaveComparison(ctx, summary.RunID, summary.Report); err != nil {
		result = multierror.Append(result, err)
	}
	return result.ErrorOrNil()
}

// BuildJobs creates, for every translation and iteration, a SQL Server job running the
// original text followed by a Snowflake job running the translated text.
func BuildJobs(translations []model.Translation, repeat int) []model.QueryJob {
	jobs := make([]model.QueryJob, 0, len(translations)*repeat*2)
	for _, t := range translations {
		for i := 1; i <= repeat; i++ {
			jobs = append(jobs,
				model.QueryJob{QueryID: t.QueryID, Query: t.SQLServer, Platform: model.PlatformSQLServer, Iteration: i},
				model.QueryJob{QueryID: t.QueryID, Query: t.Snowflake, Platform: model.PlatformSnowflake, Iteration: i},
			)
		}
	}
	return jobs
}
