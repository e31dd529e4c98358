package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/tigerroll/sqlcompare/pkg/compare/core/application/usecase"
	"github.com/tigerroll/sqlcompare/pkg/compare/core/domain/model"
	"github.com/tigerroll/sqlcompare/pkg/compare/support/util/exception"
)

func newRunCmd(opts *rootOptions) *cobra.Command {
	var (
		queries []string
		file    string
		repeat  int
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Translate, execute and compare queries on both platforms",
		Long:  "Runs every query on SQL Server and its translation on Snowflake, then prints the timing comparison.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			all, err := collectQueries(queries, file)
			if err != nil {
				return err
			}

			var comparer *usecase.Comparer
			stop, err := startApplication(cmd.Context(), opts, &comparer)
			if err != nil {
				return err
			}
			defer stop()

			summary, err := comparer.Run(cmd.Context(), usecase.RunRequest{Queries: all, RepeatCount: repeat})
			if err != nil {
				return err
			}
			printSummary(cmd.OutOrStdout(), summary)
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&queries, "query", "q", nil, "SQL Server query to compare (repeatable)")
	cmd.Flags().StringVarP(&file, "file", "f", "", "File of SQL Server queries separated by ';'")
	cmd.Flags().IntVarP(&repeat, "repeat", "n", 0, "Executions per query and platform (default: execution.repeat_count)")

	return cmd
}

// collectQueries merges --query values with the statements of --file.
func collectQueries(queries []string, file string) ([]string, error) {
	all := append([]string(nil), queries...)
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read queries %s: %w", file, err)
		}
		all = append(all, splitStatements(string(data))...)
	}
	if len(all) == 0 {
		return nil, exception.NewValidationError("cli", "no queries given; use --query or --file")
	}
	return all, nil
}

// splitStatements splits text on ';' and drops empty statements.
func splitStatements(text string) []string {
	var statements []string
	for _, s := range strings.Split(text, ";") {
		if s = strings.TrimSpace(s); s != "" {
			statements = append(statements, s)
		}
	}
	return statements
}

func printSummary(w io.Writer, summary *model.RunSummary) {
	fmt.Fprintf(w, "Run %s: %d queries, %d executions per platform\n\n",
		summary.RunID, len(summary.Translations), summary.RepeatCount)

	table := tablewriter.NewWriter(w)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeader([]string{"Metric", "SQL Server", "Snowflake"})

	ss, sf := summary.SQLServerStats, summary.SnowflakeStats
	table.Append([]string{"Successful executions", strconv.Itoa(ss.Count), strconv.Itoa(sf.Count)})
	if summary.Report != nil {
		table.Append([]string{"Average time (ms)", formatInt(summary.Report.SQLServerAvgTimeMs), formatInt(summary.Report.SnowflakeAvgTimeMs)})
	}
	if !ss.Empty() || !sf.Empty() {
		table.Append([]string{"Min time (ms)", statValue(ss, ss.Min), statValue(sf, sf.Min)})
		table.Append([]string{"Median time (ms)", statValue(ss, ss.Median), statValue(sf, sf.Median)})
		table.Append([]string{"Max time (ms)", statValue(ss, ss.Max), statValue(sf, sf.Max)})
	}
	if summary.Report != nil {
		table.Append([]string{"Row count", formatInt(summary.Report.SQLServerRowCount), formatInt(summary.Report.SnowflakeRowCount)})
	}
	table.Render()

	if r := summary.Report; r != nil {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Time difference: %s ms", formatInt(r.TimeDifferenceMs))
		if r.TimeDifferencePercent != nil {
			fmt.Fprintf(w, " (%+.2f%%)", *r.TimeDifferencePercent)
		}
		fmt.Fprintln(w)
		winner := "-"
		if r.PerformanceWinner != nil {
			winner = string(*r.PerformanceWinner)
		}
		fmt.Fprintf(w, "Winner: %s\n", winner)
		fmt.Fprintf(w, "Row counts match: %t\n", r.RowCountMatch)
	}

	for _, res := range summary.Results {
		if !res.Succeeded() && res.ErrorMessage != nil {
			fmt.Fprintf(w, "Failed: %s #%d on %s: %s\n", res.QueryID, res.Iteration, res.Platform, *res.ErrorMessage)
		}
	}
	if summary.ExportLocation != "" {
		fmt.Fprintf(w, "Results exported to %s\n", summary.ExportLocation)
	}
}

func formatInt(v *int64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatInt(*v, 10)
}

func statValue(s model.Statistics, v int64) string {
	if s.Empty() {
		return "-"
	}
	return strconv.FormatInt(v, 10)
}
