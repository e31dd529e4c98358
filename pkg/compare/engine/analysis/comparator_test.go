package analysis_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tigerroll/sqlcompare/pkg/compare/core/domain/model"
	"github.com/tigerroll/sqlcompare/pkg/compare/engine/analysis"
	"github.com/tigerroll/sqlcompare/pkg/compare/support/util/exception"
)

func ok(p model.Platform, ms, rows int64) model.ExecutionResult {
	return model.NewSuccessResult(model.QueryJob{QueryID: "q", Platform: p}, time.Now(), ms, rows)
}

func failed(p model.Platform) model.ExecutionResult {
	return model.NewErrorResult(model.QueryJob{QueryID: "q", Platform: p}, time.Now(), errors.New("boom"))
}

func ss(ms ...int64) []model.ExecutionResult {
	out := make([]model.ExecutionResult, 0, len(ms))
	for _, m := range ms {
		out = append(out, ok(model.PlatformSQLServer, m, 10))
	}
	return out
}

func sf(ms ...int64) []model.ExecutionResult {
	out := make([]model.ExecutionResult, 0, len(ms))
	for _, m := range ms {
		out = append(out, ok(model.PlatformSnowflake, m, 10))
	}
	return out
}

func winnerPtr(w model.Winner) *model.Winner { return &w }
func floatPtr(f float64) *float64 { return &f }

func TestCompareResults(t *testing.T) {
	tests := []struct {
		name        string
		sqlServer   []model.ExecutionResult
		snowflake   []model.ExecutionResult
		wantSSAvg   *int64
		wantSFAvg   *int64
		wantDiff    *int64
		wantPercent *float64
		wantWinner  *model.Winner
	}{
		{
			name:        "snowflake faster",
			sqlServer:   ss(100),
			snowflake:   sf(50),
			wantSSAvg:   model.Int64Ptr(100),
			wantSFAvg:   model.Int64Ptr(50),
			wantDiff:    model.Int64Ptr(-50),
			wantPercent: floatPtr(-50),
			wantWinner:  winnerPtr(model.WinnerSnowflake),
		},
		{
			name:        "sql server faster on average",
			sqlServer:   ss(100, 200),
			snowflake:   sf(300),
			wantSSAvg:   model.Int64Ptr(150),
			wantSFAvg:   model.Int64Ptr(300),
			wantDiff:    model.Int64Ptr(150),
			wantPercent: floatPtr(100),
			wantWinner:  winnerPtr(model.WinnerSQLServer),
		},
		{
			name:        "within one percent is a tie",
			sqlServer:   ss(1000),
			snowflake:   sf(1005),
			wantSSAvg:   model.Int64Ptr(1000),
			wantSFAvg:   model.Int64Ptr(1005),
			wantDiff:    model.Int64Ptr(5),
			wantPercent: floatPtr(0.5),
			wantWinner:  winnerPtr(model.WinnerTie),
		},
		{
			name:        "means and difference are rounded",
			sqlServer:   ss(3, 4),
			snowflake:   sf(1),
			wantSSAvg:   model.Int64Ptr(4),
			wantSFAvg:   model.Int64Ptr(1),
			wantDiff:    model.Int64Ptr(-3),
			wantPercent: floatPtr(-71.43),
			wantWinner:  winnerPtr(model.WinnerSnowflake),
		},
		{
			name:       "zero sql server mean leaves percent unset",
			sqlServer:  ss(0),
			snowflake:  sf(10),
			wantSSAvg:  model.Int64Ptr(0),
			wantSFAvg:  model.Int64Ptr(10),
			wantDiff:   model.Int64Ptr(10),
			wantWinner: winnerPtr(model.WinnerSQLServer),
		},
		{
			name:       "both zero is a tie",
			sqlServer:  ss(0),
			snowflake:  sf(0),
			wantSSAvg:  model.Int64Ptr(0),
			wantSFAvg:  model.Int64Ptr(0),
			wantDiff:   model.Int64Ptr(0),
			wantWinner: winnerPtr(model.WinnerTie),
		},
		{
			name:      "no successful sql server timing",
			sqlServer: []model.ExecutionResult{failed(model.PlatformSQLServer)},
			snowflake: sf(10),
			wantSFAvg: model.Int64Ptr(10),
		},
		{
			name:        "failures are excluded from the mean",
			sqlServer:   append(ss(100), failed(model.PlatformSQLServer)),
			snowflake:   sf(200, 400),
			wantSSAvg:   model.Int64Ptr(100),
			wantSFAvg:   model.Int64Ptr(300),
			wantDiff:    model.Int64Ptr(200),
			wantPercent: floatPtr(200),
			wantWinner:  winnerPtr(model.WinnerSQLServer),
		},
	}

	c := analysis.NewComparator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report, err := c.CompareResults(tt.sqlServer, tt.snowflake)
			require.NoError(t, err)
			assert.Equal(t, tt.wantSSAvg, report.SQLServerAvgTimeMs)
			assert.Equal(t, tt.wantSFAvg, report.SnowflakeAvgTimeMs)
			assert.Equal(t, tt.wantDiff, report.TimeDifferenceMs)
			if tt.wantPercent == nil {
				assert.Nil(t, report.TimeDifferencePercent)
			} else {
				require.NotNil(t, report.TimeDifferencePercent)
				assert.InDelta(t, *tt.wantPercent, *report.TimeDifferencePercent, 1e-9)
			}
			assert.Equal(t, tt.wantWinner, report.PerformanceWinner)
		})
	}
}

func TestCompareResults_RowCountUsesFirstRecord(t *testing.T) {
	c := analysis.NewComparator()

	report, err := c.CompareResults(
		[]model.ExecutionResult{ok(model.PlatformSQLServer, 10, 5), ok(model.PlatformSQLServer, 10, 7)},
		[]model.ExecutionResult{ok(model.PlatformSnowflake, 10, 5)},
	)
	require.NoError(t, err)
	assert.True(t, report.RowCountMatch)
	assert.Equal(t, int64(5), *report.SQLServerRowCount)

	report, err = c.CompareResults(
		[]model.ExecutionResult{failed(model.PlatformSQLServer), ok(model.PlatformSQLServer, 10, 5)},
		[]model.ExecutionResult{ok(model.PlatformSnowflake, 10, 5)},
	)
	require.NoError(t, err)
	assert.False(t, report.RowCountMatch)
	assert.Nil(t, report.SQLServerRowCount)
}

func TestCompareResults_EmptyBatchIsValidationError(t *testing.T) {
	c := analysis.NewComparator()

	_, err := c.CompareResults(nil, sf(10))
	assert.ErrorIs(t, err, exception.ErrValidation)

	_, err = c.CompareResults(ss(10), []model.ExecutionResult{})
	assert.ErrorIs(t, err, exception.ErrValidation)
}

func TestCalculateStatistics(t *testing.T) {
	c := analysis.NewComparator()

	stats := c.CalculateStatistics(append(ss(40, 10, 30, 20), failed(model.PlatformSQLServer)))
	assert.Equal(t, model.Statistics{Min: 10, Max: 40, Mean: 25, Median: 30, Count: 4}, stats)

	stats = c.CalculateStatistics(ss(5, 1, 3))
	assert.Equal(t, int64(3), stats.Median)
	assert.Equal(t, 3, stats.Count)

	stats = c.CalculateStatistics([]model.ExecutionResult{failed(model.PlatformSnowflake)})
	assert.True(t, stats.Empty())
	assert.Equal(t, model.Statistics{}, stats)
}
