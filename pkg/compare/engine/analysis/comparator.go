// Package analysis turns execution results into comparison reports and timing statistics.
package analysis

import (
	"math"
	"sort"

	"github.com/tigerroll/sqlcompare/pkg/compare/core/domain/model"
	"github.com/tigerroll/sqlcompare/pkg/compare/support/util/exception"
	"github.com/tigerroll/sqlcompare/pkg/compare/support/util/logger"
)

// TiePercent is the relative difference below which neither platform wins.
const TiePercent = 1.0

// Comparator compares the performance of two result batches. It is stateless.
type Comparator struct{}

// NewComparator creates a Comparator.
func NewComparator() *Comparator {
	return &Comparator{}
}

// CompareResults aggregates a SQL Server batch and a Snowflake batch into a report.
// Both batches must be non-empty. Averages consider successful results only; when
// either side has none, the averages it lacks and the difference and winner are nil.
func (c *Comparator) CompareResults(sqlServer, snowflake []model.ExecutionResult) (*model.ComparisonReport, error) {
	if len(sqlServer) == 0 || len(snowflake) == 0 {
		return nil, exception.NewValidationError("comparator", "Both SQL Server and Snowflake results are required")
	}

	report := &model.ComparisonReport{
		SQLServerRowCount: sqlServer[0].RowCount,
		SnowflakeRowCount: snowflake[0].RowCount,
	}
	report.RowCountMatch = equalCounts(report.SQLServerRowCount, report.SnowflakeRowCount)

	ssMean, ssOK := mean(successTimes(sqlServer))
	sfMean, sfOK := mean(successTimes(snowflake))
	if ssOK {
		report.SQLServerAvgTimeMs = model.Int64Ptr(int64(math.Round(ssMean)))
	}
	if sfOK {
		report.SnowflakeAvgTimeMs = model.Int64Ptr(int64(math.Round(sfMean)))
	}
	if !ssOK || !sfOK {
		logger.Warnf("Comparison incomplete: SQL Server has timings=%t, Snowflake has timings=%t.", ssOK, sfOK)
		return report, nil
	}

	diff := sfMean - ssMean
	report.TimeDifferenceMs = model.Int64Ptr(int64(math.Round(diff)))

	var winner model.Winner
	if ssMean == 0 {
		switch {
		case diff == 0:
			winner = model.WinnerTie
		case diff < 0:
			winner = model.WinnerSnowflake
		default:
			winner = model.WinnerSQLServer
		}
	} else {
		percent := diff / ssMean * 100
		rounded := math.Round(percent*100) / 100
		report.TimeDifferencePercent = &rounded
		switch {
		case math.Abs(percent) < TiePercent:
			winner = model.WinnerTie
		case diff < 0:
			winner = model.WinnerSnowflake
		default:
			winner = model.WinnerSQLServer
		}
	}
	report.PerformanceWinner = &winner

	logger.Infof("Comparison: SQL Server avg %d ms, Snowflake avg %d ms, winner %s.",
		*report.SQLServerAvgTimeMs, *report.SnowflakeAvgTimeMs, winner)
	return report, nil
}

// CalculateStatistics summarises the successful timings of results.
// The median of an even number of timings is the upper of the two middle values.
func (c *Comparator) CalculateStatistics(results []model.ExecutionResult) model.Statistics {
	times := successTimes(results)
	if len(times) == 0 {
		return model.Statistics{}
	}
	sort.Slice(times, func(i, j int) bool { return times[i] < times[j] })

	m, _ := mean(times)
	n := len(times)
	return model.Statistics{
		Min:    times[0],
		Max:    times[n-1],
		Mean:   m,
		Median: times[n/2],
		Count:  n,
	}
}

func successTimes(results []model.ExecutionResult) []int64 {
	times := make([]int64, 0, len(results))
	for _, r := range results {
		if r.Succeeded() {
			times = append(times, *r.ExecutionTimeMs)
		}
	}
	return times
}

func mean(times []int64) (float64, bool) {
	if len(times) == 0 {
		return 0, false
	}
	var sum int64
	for _, t := range times {
		sum += t
	}
	return float64(sum) / float64(len(times)), true
}

func equalCounts(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
