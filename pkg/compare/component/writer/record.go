package writer

import (
	"github.com/tigerroll/sqlcompare/pkg/compare/core/domain/model"
)

// ResultRecord is the Parquet row of one execution result.
type ResultRecord struct {
	RunID           string  `parquet:"name=run_id,type=BYTE_ARRAY,convertedtype=UTF8,encoding=PLAIN_DICTIONARY"`
	QueryID         string  `parquet:"name=query_id,type=BYTE_ARRAY,convertedtype=UTF8,encoding=PLAIN_DICTIONARY"`
	Platform        string  `parquet:"name=platform,type=BYTE_ARRAY,convertedtype=UTF8,encoding=PLAIN_DICTIONARY"`
	Iteration       int32   `parquet:"name=iteration,type=INT32"`
	QueryText       string  `parquet:"name=query_text,type=BYTE_ARRAY,convertedtype=UTF8"`
	Status          string  `parquet:"name=status,type=BYTE_ARRAY,convertedtype=UTF8,encoding=PLAIN_DICTIONARY"`
	ExecutionTimeMs *int64  `parquet:"name=execution_time_ms,type=INT64,repetitiontype=OPTIONAL"`
	RowCount        *int64  `parquet:"name=row_count,type=INT64,repetitiontype=OPTIONAL"`
	ErrorMessage    *string `parquet:"name=error_message,type=BYTE_ARRAY,convertedtype=UTF8,repetitiontype=OPTIONAL"`
	StartedAt       int64   `parquet:"name=started_at,type=INT64,convertedtype=TIMESTAMP_MILLIS"`
}

// NewResultRecord converts r into a ResultRecord of run runID.
func NewResultRecord(runID string, r model.ExecutionResult) ResultRecord {
	return ResultRecord{
		RunID:           runID,
		QueryID:         r.QueryID,
		Platform:        string(r.Platform),
		Iteration:       int32(r.Iteration),
		QueryText:       r.Query,
		Status:          string(r.Status),
		ExecutionTimeMs: r.ExecutionTimeMs,
		RowCount:        r.RowCount,
		ErrorMessage:    r.ErrorMessage,
		StartedAt:       r.StartedAt.UnixMilli(),
	}
}
