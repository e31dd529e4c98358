package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Platform identifies one of the two database systems being compared.
type Platform string

const (
	PlatformSQLServer Platform = "SQL Server"
	PlatformSnowflake Platform = "Snowflake"
)

// String returns the display name of the platform.
func (p Platform) String() string {
	return string(p)
}

// Valid reports whether p is a known platform.
func (p Platform) Valid() bool {
	return p == PlatformSQLServer || p == PlatformSnowflake
}

// ParsePlatform accepts the display name or a short alias ("sqlserver", "mssql", "snowflake").
func ParsePlatform(s string) (Platform, error) {
	switch s {
	case string(PlatformSQLServer), "sqlserver", "mssql", "SQLServer":
		return PlatformSQLServer, nil
	case string(PlatformSnowflake), "snowflake":
		return PlatformSnowflake, nil
	}
	return "", fmt.Errorf("unknown platform %q", s)
}

// ExecutionStatus is the outcome of a single query execution.
type ExecutionStatus string

const (
	StatusSuccess ExecutionStatus = "success"
	StatusError   ExecutionStatus = "error"
)

// Winner names the faster platform of a comparison, or a tie.
type Winner string

const (
	WinnerSQLServer Winner = Winner(PlatformSQLServer)
	WinnerSnowflake Winner = Winner(PlatformSnowflake)
	WinnerTie       Winner = "Tie"
)

// NewID generates a new random identifier.
func NewID() string {
	return uuid.New().String()
}

// NewQueryID generates an identifier shared by all jobs created for one source query.
func NewQueryID() string {
	return NewID()
}

// QueryJob is a single (query, platform) unit of work submitted to the executor.
type QueryJob struct {
	QueryID   string   `json:"query_id"`
	Query     string   `json:"query"`
	Platform  Platform `json:"platform"`
	Iteration int      `json:"iteration,omitempty"`
}

// ExecutionResult is produced exactly once per QueryJob. It carries the originating
// job's fields. Timing and row count are nil unless Status is StatusSuccess.
type ExecutionResult struct {
	QueryJob
	ExecutionTimeMs *int64          `json:"execution_time_ms"`
	RowCount        *int64          `json:"row_count"`
	Status          ExecutionStatus `json:"status"`
	ErrorMessage    *string         `json:"error_message"`
	StartedAt       time.Time       `json:"started_at"`
}

// NewSuccessResult builds a successful result for job.
func NewSuccessResult(job QueryJob, startedAt time.Time, elapsedMs, rowCount int64) ExecutionResult {
	return ExecutionResult{
		QueryJob:        job,
		ExecutionTimeMs: &elapsedMs,
		RowCount:        &rowCount,
		Status:          StatusSuccess,
		StartedAt:       startedAt,
	}
}

// NewErrorResult builds a failed result for job carrying err's message.
func NewErrorResult(job QueryJob, startedAt time.Time, err error) ExecutionResult {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return ExecutionResult{
		QueryJob:     job,
		Status:       StatusError,
		ErrorMessage: &msg,
		StartedAt:    startedAt,
	}
}

// Succeeded reports whether the result is a success with a timing value.
func (r ExecutionResult) Succeeded() bool {
	return r.Status == StatusSuccess && r.ExecutionTimeMs != nil
}

// ComparisonReport aggregates two result batches. Computed fresh, never mutated.
type ComparisonReport struct {
	SQLServerAvgTimeMs    *int64   `json:"sqlserver_avg_time_ms"`
	SnowflakeAvgTimeMs    *int64   `json:"snowflake_avg_time_ms"`
	TimeDifferenceMs      *int64   `json:"time_difference_ms"`
	TimeDifferencePercent *float64 `json:"time_difference_percent"`
	RowCountMatch         bool     `json:"row_count_match"`
	SQLServerRowCount     *int64   `json:"sqlserver_row_count"`
	SnowflakeRowCount     *int64   `json:"snowflake_row_count"`
	PerformanceWinner     *Winner  `json:"performance_winner"`
}

// Statistics summarises the successful timings of one batch.
// A zero Count means there were no successful timings.
type Statistics struct {
	Min    int64   `json:"min"`
	Max    int64   `json:"max"`
	Mean   float64 `json:"mean"`
	Median int64   `json:"median"`
	Count  int     `json:"count"`
}

// Empty reports whether no timings contributed to s.
func (s Statistics) Empty() bool {
	return s.Count == 0
}

// Translation pairs a source query with its Snowflake rendition.
type Translation struct {
	QueryID   string `json:"query_id"`
	SQLServer string `json:"sqlserver_query"`
	Snowflake string `json:"snowflake_query"`
	Validated bool   `json:"validated"`
}

// RunSummary is everything one comparison run produced.
type RunSummary struct {
	RunID          string            `json:"run_id"`
	StartedAt      time.Time         `json:"started_at"`
	FinishedAt     time.Time         `json:"finished_at"`
	RepeatCount    int               `json:"repeat_count"`
	Translations   []Translation     `json:"translations"`
	Results        []ExecutionResult `json:"results"`
	Report         *ComparisonReport `json:"report"`
	SQLServerStats Statistics        `json:"sqlserver_stats"`
	SnowflakeStats Statistics        `json:"snowflake_stats"`
	ExportLocation string            `json:"export_location,omitempty"`
}

// ResultsFor returns the results of one platform in their original order.
func (s *RunSummary) ResultsFor(p Platform) []ExecutionResult {
	return FilterByPlatform(s.Results, p)
}

// FilterByPlatform returns the results of one platform in their original order.
func FilterByPlatform(results []ExecutionResult, p Platform) []ExecutionResult {
	out := make([]ExecutionResult, 0, len(results))
	for _, r := range results {
		if r.Platform == p {
			out = append(out, r)
		}
	}
	return out
}

// Int64Ptr returns a pointer to v.
func Int64Ptr(v int64) *int64 { return &v }
