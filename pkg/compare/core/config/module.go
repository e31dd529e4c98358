package config

import "go.uber.org/fx"

// NewLoggingConfigProvider extracts *LoggingConfig from *Config.
func NewLoggingConfigProvider(cfg *Config) *LoggingConfig {
	return &cfg.Compare.System.Logging
}

// NewExecutionConfigProvider extracts *ExecutionConfig from *Config.
func NewExecutionConfigProvider(cfg *Config) *ExecutionConfig {
	return &cfg.Compare.Execution
}

// NewTelemetryConfigProvider extracts *TelemetryConfig from *Config.
func NewTelemetryConfigProvider(cfg *Config) *TelemetryConfig {
	return &cfg.Compare.Telemetry
}

// Module provides *Config and its sections to Fx.
// The embedded YAML bytes (EmbeddedConfig) must be supplied by the caller.
var Module = fx.Options(
	fx.Provide(NewConfigProvider),
	fx.Provide(NewLoggingConfigProvider),
	fx.Provide(NewExecutionConfigProvider),
	fx.Provide(NewTelemetryConfigProvider),
	fx.Provide(func() EnvironmentExpander {
		return NewOsEnvironmentExpander()
	}),
)
