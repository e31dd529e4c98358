package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tigerroll/sqlcompare/pkg/compare/core/application/usecase"
	"github.com/tigerroll/sqlcompare/pkg/compare/core/domain/model"
	"github.com/tigerroll/sqlcompare/pkg/compare/engine/analysis"
	"github.com/tigerroll/sqlcompare/pkg/compare/engine/translation"
	"github.com/tigerroll/sqlcompare/pkg/compare/support/util/exception"
)

type MockExecutor struct {
	mock.Mock
}

// ExecuteParallel answers every job with a success result whose time depends on the platform.
func (m *MockExecutor) ExecuteParallel(ctx context.Context, jobs []model.QueryJob) []model.ExecutionResult {
	m.Called(ctx, jobs)
	results := make([]model.ExecutionResult, 0, len(jobs))
	for _, j := range jobs {
		ms := int64(100)
		if j.Platform == model.PlatformSnowflake {
			ms = 40
		}
		results = append(results, model.NewSuccessResult(j, time.Now(), ms, 7))
	}
	return results
}

type MockTranslator struct {
	mock.Mock
}

func (m *MockTranslator) Translate(query string) (string, error) {
	args := m.Called(query)
	return args.String(0), args.Error(1)
}

func (m *MockTranslator) ValidateTranslation(query string) bool {
	return m.Called(query).Bool(0)
}

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) SaveRun(ctx context.Context, run *model.RunSummary) error {
	return m.Called(ctx, run).Error(0)
}

func (m *MockRepository) SaveResults(ctx context.Context, runID string, results []model.ExecutionResult) error {
	return m.Called(ctx, runID, results).Error(0)
}

func (m *MockRepository) SaveComparison(ctx context.Context, runID string, report *model.ComparisonReport) error {
	return m.Called(ctx, runID, report).Error(0)
}

func (m *MockRepository) FindRun(ctx context.Context, runID string) (*model.RunSummary, error) {
	args := m.Called(ctx, runID)
	run, _ := args.Get(0).(*model.RunSummary)
	return run, args.Error(1)
}

func (m *MockRepository) FindResults(ctx context.Context, runID string) ([]model.ExecutionResult, error) {
	args := m.Called(ctx, runID)
	results, _ := args.Get(0).([]model.ExecutionResult)
	return results, args.Error(1)
}

type MockExporter struct {
	mock.Mock
}

func (m *MockExporter) Export(ctx context.Context, run *model.RunSummary) (string, error) {
	args := m.Called(ctx, run)
	return args.String(0), args.Error(1)
}

func TestBuildJobs(t *testing.T) {
	translations := []model.Translation{
		{QueryID: "a", SQLServer: "SELECT TOP 1 x FROM t", Snowflake: "SELECT x FROM t LIMIT 1"},
		{QueryID: "b", SQLServer: "SELECT GETDATE()", Snowflake: "SELECT CURRENT_TIMESTAMP()"},
	}

	jobs := usecase.BuildJobs(translations, 2)

	require.Len(t, jobs, 8)
	assert.Equal(t, model.QueryJob{QueryID: "a", Query: "SELECT TOP 1 x FROM t", Platform: model.PlatformSQLServer, Iteration: 1}, jobs[0])
	assert.Equal(t, model.QueryJob{QueryID: "a", Query: "SELECT x FROM t LIMIT 1", Platform: model.PlatformSnowflake, Iteration: 1}, jobs[1])
	assert.Equal(t, 2, jobs[3].Iteration)
	assert.Equal(t, "b", jobs[4].QueryID)
	assert.Equal(t, "SELECT CURRENT_TIMESTAMP()", jobs[7].Query)
}

func TestRun_TranslatesExecutesAndCompares(t *testing.T) {
	executor := new(MockExecutor)
	executor.On("ExecuteParallel", mock.Anything, mock.Anything).Return()

	c := usecase.NewComparer(translation.NewTranslator(), executor, analysis.NewComparator(), usecase.WithRepeatCount(3))
	summary, err := c.Run(context.Background(), usecase.RunRequest{
		Queries: []string{"SELECT TOP 10 id FROM orders", "  ", "SELECT ISNULL(a, 0) FROM t"},
	})
	require.NoError(t, err)

	require.Len(t, summary.Translations, 2)
	assert.Equal(t, "SELECT LIMIT 10 id FROM orders", summary.Translations[0].Snowflake)
	assert.True(t, summary.Translations[0].Validated)
	assert.Equal(t, 3, summary.RepeatCount)
	assert.Len(t, summary.Results, 12)
	assert.NotEmpty(t, summary.RunID)
	assert.False(t, summary.FinishedAt.Before(summary.StartedAt))

	require.NotNil(t, summary.Report)
	assert.Equal(t, int64(100), *summary.Report.SQLServerAvgTimeMs)
	assert.Equal(t, int64(40), *summary.Report.SnowflakeAvgTimeMs)
	assert.Equal(t, model.WinnerSnowflake, *summary.Report.PerformanceWinner)
	assert.True(t, summary.Report.RowCountMatch)
	assert.Equal(t, 6, summary.SQLServerStats.Count)
	assert.Equal(t, int64(40), summary.SnowflakeStats.Median)
	assert.Empty(t, summary.ExportLocation)

	executor.AssertNumberOfCalls(t, "ExecuteParallel", 1)
}

func TestRun_TranslationFailureAbortsBeforeExecution(t *testing.T) {
	translator := new(MockTranslator)
	translator.On("Translate", "SELECT 1").Return("", exception.NewTranslationError("unsupported construct", nil))
	executor := new(MockExecutor)

	c := usecase.NewComparer(translator, executor, analysis.NewComparator())
	_, err := c.Run(context.Background(), usecase.RunRequest{Queries: []string{"SELECT 1"}})

	assert.ErrorIs(t, err, exception.ErrTranslation)
	executor.AssertNotCalled(t, "ExecuteParallel", mock.Anything, mock.Anything)
}

func TestRun_NoQueriesIsValidationError(t *testing.T) {
	c := usecase.NewComparer(translation.NewTranslator(), new(MockExecutor), analysis.NewComparator())

	_, err := c.Run(context.Background(), usecase.RunRequest{Queries: []string{"", "   "}})
	assert.ErrorIs(t, err, exception.ErrValidation)
}

func TestRun_PersistsAndExports(t *testing.T) {
	executor := new(MockExecutor)
	executor.On("ExecuteParallel", mock.Anything, mock.Anything).Return()
	repo := new(MockRepository)
	exporter := new(MockExporter)

	exporter.On("Export", mock.Anything, mock.AnythingOfType("*model.RunSummary")).Return("local://results/dt=2026-01-01/run_id=x", nil)
	repo.On("SaveRun", mock.Anything, mock.MatchedBy(func(run *model.RunSummary) bool {
		return run.ExportLocation == "local://results/dt=2026-01-01/run_id=x"
	})).Return(nil)
	repo.On("SaveResults", mock.Anything, mock.AnythingOfType("string"), mock.Anything).Return(nil)
	repo.On("SaveComparison", mock.Anything, mock.AnythingOfType("string"), mock.Anything).Return(nil)

	c := usecase.NewComparer(translation.NewTranslator(), executor, analysis.NewComparator(),
		usecase.WithRepository(repo), usecase.WithExporter(exporter))
	summary, err := c.Run(context.Background(), usecase.RunRequest{Queries: []string{"SELECT 1"}, RepeatCount: 2})
	require.NoError(t, err)

	assert.Equal(t, "local://results/dt=2026-01-01/run_id=x", summary.ExportLocation)
	repo.AssertExpectations(t)
	exporter.AssertExpectations(t)
	repo.AssertCalled(t, "SaveResults", mock.Anything, summary.RunID, summary.Results)
}

func TestRun_StoreFailuresDoNotFailTheRun(t *testing.T) {
	executor := new(MockExecutor)
	executor.On("ExecuteParallel", mock.Anything, mock.Anything).Return()
	repo := new(MockRepository)
	repo.On("SaveRun", mock.Anything, mock.Anything).Return(errors.New("database is locked"))
	exporter := new(MockExporter)
	exporter.On("Export", mock.Anything, mock.Anything).Return("", errors.New("bucket not found"))

	c := usecase.NewComparer(translation.NewTranslator(), executor, analysis.NewComparator(),
		usecase.WithRepository(repo), usecase.WithExporter(exporter))
	summary, err := c.Run(context.Background(), usecase.RunRequest{Queries: []string{"SELECT 1"}})

	require.NoError(t, err)
	require.NotNil(t, summary.Report)
	assert.Empty(t, summary.ExportLocation)
	repo.AssertNotCalled(t, "SaveResults", mock.Anything, mock.Anything, mock.Anything)
}
