package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tigerroll/sqlcompare/pkg/compare/core/domain/model"
	"github.com/tigerroll/sqlcompare/pkg/compare/support/util/exception"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(args, "--env-file", filepath.Join(t.TempDir(), "missing.env")))
	err := cmd.Execute()
	return out.String(), err
}

func TestSplitStatements(t *testing.T) {
	got := splitStatements("SELECT 1;\n\n  SELECT TOP 2 * FROM t ;\n;")
	assert.Equal(t, []string{"SELECT 1", "SELECT TOP 2 * FROM t"}, got)
	assert.Empty(t, splitStatements(" ; ;\n"))
}

func TestCollectQueries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "queries.sql")
	require.NoError(t, os.WriteFile(path, []byte("SELECT GETDATE();\nSELECT LEN(name) FROM users;"), 0o600))

	got, err := collectQueries([]string{"SELECT 1"}, path)
	require.NoError(t, err)
	assert.Equal(t, []string{"SELECT 1", "SELECT GETDATE()", "SELECT LEN(name) FROM users"}, got)

	_, err = collectQueries(nil, "")
	assert.ErrorIs(t, err, exception.ErrValidation)

	_, err = collectQueries(nil, filepath.Join(t.TempDir(), "nope.sql"))
	assert.Error(t, err)
}

func TestTranslateCommand(t *testing.T) {
	out, err := runCLI(t, "translate", "SELECT TOP 5 ISNULL(a, 0) FROM t", "SELECT GETDATE()")
	require.NoError(t, err)
	assert.Equal(t, "SELECT LIMIT 5 IFNULL(a, 0) FROM t;\n\nSELECT CURRENT_TIMESTAMP();\n", out)
}

func TestConfigValidateCommand(t *testing.T) {
	out, err := runCLI(t, "config", "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration is valid.")

	path := filepath.Join(t.TempDir(), "bare.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sqlcompare:\n  execution:\n    repeat_count: 2\n"), 0o600))
	_, err = runCLI(t, "config", "validate", "--config", path)
	assert.ErrorIs(t, err, exception.ErrConfiguration)
}

func TestConfigSaveCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "effective.yaml")
	_, err := runCLI(t, "config", "save", path, "--log-level", "DEBUG")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "level: DEBUG")
	assert.Contains(t, string(data), "sql_server_source")
}

func TestPrintSummary(t *testing.T) {
	job := model.QueryJob{QueryID: "q1", Query: "SELECT 1", Platform: model.PlatformSQLServer, Iteration: 1}
	winner := model.WinnerSnowflake
	percent := -60.0
	summary := &model.RunSummary{
		RunID:        "run-1",
		RepeatCount:  1,
		Translations: []model.Translation{{QueryID: "q1"}},
		Results: []model.ExecutionResult{
			model.NewSuccessResult(job, time.Now(), 100, 3),
			model.NewErrorResult(model.QueryJob{QueryID: "q1", Platform: model.PlatformSnowflake, Iteration: 1}, time.Now(), assert.AnError),
		},
		Report: &model.ComparisonReport{
			SQLServerAvgTimeMs:    model.Int64Ptr(100),
			SnowflakeAvgTimeMs:    model.Int64Ptr(40),
			TimeDifferenceMs:      model.Int64Ptr(-60),
			TimeDifferencePercent: &percent,
			PerformanceWinner:     &winner,
			RowCountMatch:         true,
			SQLServerRowCount:     model.Int64Ptr(3),
			SnowflakeRowCount:     model.Int64Ptr(3),
		},
		SQLServerStats: model.Statistics{Min: 100, Max: 100, Mean: 100, Median: 100, Count: 1},
		ExportLocation: "local://out/results",
	}

	var out bytes.Buffer
	printSummary(&out, summary)

	text := out.String()
	assert.Contains(t, text, "Run run-1: 1 queries")
	assert.Contains(t, text, "Time difference: -60 ms (-60.00%)")
	assert.Contains(t, text, "Winner: Snowflake")
	assert.Contains(t, text, "Row counts match: true")
	assert.Contains(t, text, "Failed: q1 #1 on Snowflake")
	assert.Contains(t, text, "Results exported to local://out/results")
}
