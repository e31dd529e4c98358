package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tigerroll/sqlcompare/pkg/compare/core/config"
	"github.com/tigerroll/sqlcompare/pkg/compare/engine/translation"
)

func newTranslateCmd(opts *rootOptions) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "translate [query...]",
		Short: "Print the Snowflake translation of SQL Server queries",
		RunE: func(cmd *cobra.Command, args []string) error {
			queries, err := collectQueries(args, file)
			if err != nil {
				return err
			}

			var (
				cfg        *config.Config
				translator *translation.Translator
			)
			stop, err := startApplication(cmd.Context(), opts, &cfg, &translator)
			if err != nil {
				return err
			}
			defer stop()

			out := cmd.OutOrStdout()
			for i, q := range queries {
				translated, err := translator.Translate(q)
				if err != nil {
					return err
				}
				if i > 0 {
					fmt.Fprintln(out)
				}
				fmt.Fprintf(out, "%s;\n", translated)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "File of SQL Server queries separated by ';'")

	return cmd
}
