package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tigerroll/sqlcompare/pkg/compare/core/config"
)

var version = "dev"

// rootOptions are the persistent flags shared by every command.
type rootOptions struct {
	configPath string
	envFile    string
	logLevel   string
}

// rawConfig returns the YAML the application is configured from.
func (o *rootOptions) rawConfig() (config.EmbeddedConfig, error) {
	if o.configPath == "" {
		return config.EmbeddedConfig(embeddedConfig), nil
	}
	data, err := os.ReadFile(o.configPath)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", o.configPath, err)
	}
	return config.EmbeddedConfig(data), nil
}

// loadConfig loads the effective configuration without starting the application.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	raw, err := o.rawConfig()
	if err != nil {
		return nil, err
	}
	cfg, err := config.LoadConfig(o.envFile, raw)
	if err != nil {
		return nil, err
	}
	if o.logLevel != "" {
		cfg.Compare.System.Logging.Level = o.logLevel
	}
	return cfg, nil
}

func execute(ctx context.Context, args []string) int {
	rootCmd := newRootCmd()
	rootCmd.SetArgs(args)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "sqlcompare",
		Short:         "Compare query performance between SQL Server and Snowflake",
		Long:          "Translates SQL Server queries to Snowflake syntax, runs both versions in parallel and compares their timings and row counts.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to a YAML configuration file (default: built-in configuration)")
	rootCmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "Path to a .env file loaded before the configuration")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Override system.logging.level")

	rootCmd.AddCommand(newRunCmd(opts))
	rootCmd.AddCommand(newTranslateCmd(opts))
	rootCmd.AddCommand(newSchemaCmd(opts))
	rootCmd.AddCommand(newConfigCmd(opts))

	return rootCmd
}
