package main

import (
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/tigerroll/sqlcompare/pkg/compare/core/config"
	sqlrepo "github.com/tigerroll/sqlcompare/pkg/compare/infrastructure/repository/sql"
	"github.com/tigerroll/sqlcompare/pkg/compare/support/util/exception"
)

func newSchemaCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Manage the results database schema",
	}
	cmd.AddCommand(newSchemaCreateCmd(opts))
	cmd.AddCommand(newSchemaInfoCmd(opts))
	return cmd
}

// startSchemaManager starts the application and returns the schema manager of the
// configured results database.
func startSchemaManager(cmd *cobra.Command, opts *rootOptions) (*sqlrepo.SchemaManager, func(), error) {
	var (
		cfg    *config.Config
		schema *sqlrepo.SchemaManager
	)
	stop, err := startApplication(cmd.Context(), opts, &cfg, &schema)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Compare.Infrastructure.ResultsDBRef == "" {
		stop()
		return nil, nil, exception.NewConfigurationError("infrastructure.results_db_ref is not set", nil)
	}
	return schema, stop, nil
}

func newSchemaCreateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "create",
		Short: "Create or upgrade the results tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			schema, stop, err := startSchemaManager(cmd, opts)
			if err != nil {
				return err
			}
			defer stop()

			if _, err := schema.CreateSchema(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Results schema is up to date.")
			return nil
		},
	}
}

func newSchemaInfoCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "info <table>",
		Short: "Show the columns of a results table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			schema, stop, err := startSchemaManager(cmd, opts)
			if err != nil {
				return err
			}
			defer stop()

			columns, err := schema.GetTableInfo(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.SetAutoWrapText(false)
			table.SetAlignment(tablewriter.ALIGN_LEFT)
			table.SetHeader([]string{"Column", "Type", "Nullable", "Default"})
			for _, c := range columns {
				def := ""
				if c.Default != nil {
					def = *c.Default
				}
				table.Append([]string{c.Name, c.DataType, fmt.Sprintf("%t", c.IsNullable), def})
			}
			table.Render()
			return nil
		},
	}
}
