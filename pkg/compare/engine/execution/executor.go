// Package execution runs query jobs against SQL Server and Snowflake on a bounded worker pool.
package execution

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tigerroll/sqlcompare/pkg/compare/adapter/database"
	"github.com/tigerroll/sqlcompare/pkg/compare/core/config"
	"github.com/tigerroll/sqlcompare/pkg/compare/core/domain/model"
	"github.com/tigerroll/sqlcompare/pkg/compare/core/metrics"
	"github.com/tigerroll/sqlcompare/pkg/compare/support/util/logger"
)

const (
	DefaultParallelWorkers = 10
	DefaultTimeout         = 300 * time.Second
)

// Executor executes queries on both platforms. Every execution opens a fresh
// connection through the factory and closes it when the query has been materialised.
type Executor struct {
	factory  database.ConnectionFactory
	workers  int
	timeout  time.Duration
	recorder metrics.MetricRecorder
	tracer   metrics.Tracer
}

// New creates an Executor with no-op metrics and tracing.
// Non-positive workers or timeout fall back to the defaults.
func New(factory database.ConnectionFactory, workers int, timeout time.Duration) *Executor {
	if workers <= 0 {
		workers = DefaultParallelWorkers
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Executor{
		factory:  factory,
		workers:  workers,
		timeout:  timeout,
		recorder: metrics.NewNoOpMetricRecorder(),
		tracer:   metrics.NewNoOpTracer(),
	}
}

// NewExecutor creates an Executor from the execution settings.
func NewExecutor(
	factory database.ConnectionFactory,
	cfg *config.ExecutionConfig,
	recorder metrics.MetricRecorder,
	tracer metrics.Tracer,
) *Executor {
	e := New(factory, cfg.ParallelWorkers, time.Duration(cfg.TimeoutSeconds)*time.Second)
	if recorder != nil {
		e.recorder = recorder
	}
	if tracer != nil {
		e.tracer = tracer
	}
	return e
}

// Workers returns the size of the worker pool.
func (e *Executor) Workers() int { return e.workers }

// Timeout returns the per-job timeout.
func (e *Executor) Timeout() time.Duration { return e.timeout }

// ExecuteSQLServer runs query on SQL Server. Failures are reported in the result.
func (e *Executor) ExecuteSQLServer(ctx context.Context, query string) model.ExecutionResult {
	return e.execute(ctx, model.QueryJob{Query: query, Platform: model.PlatformSQLServer})
}

// ExecuteSnowflake runs query on Snowflake. Failures are reported in the result.
func (e *Executor) ExecuteSnowflake(ctx context.Context, query string) model.ExecutionResult {
	return e.execute(ctx, model.QueryJob{Query: query, Platform: model.PlatformSnowflake})
}

// ExecuteParallel runs jobs on the worker pool and returns exactly one result per job,
// in submission order. A job whose result is not available within the timeout gets an
// error result; its worker is abandoned, not cancelled, and whatever it produces later
// is dropped. Every returned result is recorded once.
func (e *Executor) ExecuteParallel(ctx context.Context, jobs []model.QueryJob) []model.ExecutionResult {
	results := make([]model.ExecutionResult, 0, len(jobs))
	if len(jobs) == 0 {
		return results
	}

	// feedCtx only stops the dispatcher once the caller stops waiting.
	feedCtx, stopFeeding := context.WithCancel(ctx)
	defer stopFeeding()

	// One buffered slot per job so abandoned workers never block on send.
	slots := make([]chan model.ExecutionResult, len(jobs))
	for i := range slots {
		slots[i] = make(chan model.ExecutionResult, 1)
	}

	queue := make(chan int)
	workers := e.workers
	if workers > len(jobs) {
		workers = len(jobs)
	}
	logger.Infof("Executing %d jobs on %d workers (timeout %s).", len(jobs), workers, e.timeout)

	// Running jobs are detached from cancellation of ctx.
	jobCtx := context.WithoutCancel(ctx)
	for w := 0; w < workers; w++ {
		go func() {
			for i := range queue {
				slots[i] <- e.runJob(jobCtx, jobs[i])
			}
		}()
	}

	go func() {
		defer close(queue)
		for i := range jobs {
			select {
			case queue <- i:
			case <-feedCtx.Done():
				return
			}
		}
	}()

	for i, job := range jobs {
		waitStart := time.Now()
		timer := time.NewTimer(e.timeout)
		var r model.ExecutionResult
		select {
		case r = <-slots[i]:
		case <-timer.C:
			err := fmt.Errorf("query timed out after %s", e.timeout)
			logger.Errorf("Parallel execution failed for %s job %s: %v", job.Platform, job.QueryID, err)
			r = model.NewErrorResult(job, waitStart, err)
		case <-ctx.Done():
			r = model.NewErrorResult(job, waitStart, ctx.Err())
		}
		timer.Stop()
		e.recorder.RecordQuery(ctx, r)
		results = append(results, r)
	}
	return results
}

func (e *Executor) runJob(ctx context.Context, job model.QueryJob) model.ExecutionResult {
	spanCtx, end := e.tracer.StartQuerySpan(ctx, job)
	defer end()

	r := e.execute(spanCtx, job)
	if !r.Succeeded() && r.ErrorMessage != nil {
		e.tracer.RecordError(spanCtx, "executor", fmt.Errorf("%s", *r.ErrorMessage))
	}
	return r
}

// execute runs one job on a fresh connection. A panic in the driver or connection
// becomes an error result.
func (e *Executor) execute(ctx context.Context, job model.QueryJob) (result model.ExecutionResult) {
	startedAt := time.Now()
	defer func() {
		if p := recover(); p != nil {
			err := fmt.Errorf("%v", p)
			logger.Errorf("%s query execution panicked: %v", job.Platform, err)
			result = model.NewErrorResult(job, startedAt, err)
		}
	}()

	conn, err := e.factory.NewConnection(job.Platform)
	if err != nil {
		logger.Errorf("%s query execution failed: %v", job.Platform, err)
		return model.NewErrorResult(job, startedAt, err)
	}

	var rowCount, elapsedMs int64
	err = database.WithConnection(ctx, conn, func(db *sql.DB) error {
		rows, err := db.QueryContext(ctx, job.Query)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			rowCount++
		}
		if err := rows.Err(); err != nil {
			return err
		}
		elapsedMs = time.Since(startedAt).Milliseconds()
		return nil
	})
	if err != nil {
		logger.Errorf("%s query execution failed: %v", job.Platform, err)
		return model.NewErrorResult(job, startedAt, err)
	}

	logger.Debugf("%s query finished in %d ms (%d rows).", job.Platform, elapsedMs, rowCount)
	return model.NewSuccessResult(job, startedAt, elapsedMs, rowCount)
}
