package sql

import "time"

// RunEntity is the persisted header of a comparison run.
type RunEntity struct {
	ID             string     `gorm:"column:id;primaryKey"`
	StartedAt      time.Time  `gorm:"column:started_at"`
	FinishedAt     *time.Time `gorm:"column:finished_at"`
	RepeatCount    int        `gorm:"column:repeat_count"`
	QueryCount     int        `gorm:"column:query_count"`
	ExportLocation *string    `gorm:"column:export_location"`
}

func (RunEntity) TableName() string {
	return "comparison_runs"
}

// ResultEntity is one persisted execution result. Seq keeps submission order.
type ResultEntity struct {
	ID              string    `gorm:"column:id;primaryKey"`
	RunID           string    `gorm:"column:run_id"`
	Seq             int       `gorm:"column:seq"`
	QueryID         string    `gorm:"column:query_id"`
	Platform        string    `gorm:"column:platform"`
	Iteration       int       `gorm:"column:iteration"`
	QueryText       string    `gorm:"column:query_text"`
	ExecutionTimeMs *int64    `gorm:"column:execution_time_ms"`
	RowCount        *int64    `gorm:"column:row_count"`
	Status          string    `gorm:"column:status"`
	ErrorMessage    *string   `gorm:"column:error_message"`
	StartedAt       time.Time `gorm:"column:started_at"`
}

func (ResultEntity) TableName() string {
	return "query_results"
}

// ComparisonEntity is the persisted report of a run.
type ComparisonEntity struct {
	RunID                 string    `gorm:"column:run_id;primaryKey"`
	SQLServerAvgTimeMs    *int64    `gorm:"column:sqlserver_avg_time_ms"`
	SnowflakeAvgTimeMs    *int64    `gorm:"column:snowflake_avg_time_ms"`
	TimeDifferenceMs      *int64    `gorm:"column:time_difference_ms"`
	TimeDifferencePercent *float64  `gorm:"column:time_difference_percent"`
	RowCountMatch         bool      `gorm:"column:row_count_match"`
	SQLServerRowCount     *int64    `gorm:"column:sqlserver_row_count"`
	SnowflakeRowCount     *int64    `gorm:"column:snowflake_row_count"`
	PerformanceWinner     *string   `gorm:"column:performance_winner"`
	CreatedAt             time.Time `gorm:"column:created_at"`
}

func (ComparisonEntity) TableName() string {
	return "comparison_reports"
}
