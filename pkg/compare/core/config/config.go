// Package config provides the configuration structures of sqlcompare.
package config

// EmbeddedConfig holds the content of the default configuration file, typically passed from main.go.
type EmbeddedConfig []byte

// LogLevel defines the logging level for the application.
type LogLevel string

const (
	LogLevelDebug    LogLevel = "DEBUG"
	LogLevelInfo     LogLevel = "INFO"
	LogLevelWarn     LogLevel = "WARN"
	LogLevelWarning  LogLevel = "WARNING"
	LogLevelError    LogLevel = "ERROR"
	LogLevelFatal    LogLevel = "FATAL"
	LogLevelCritical LogLevel = "CRITICAL"
)

// ValidLogLevels lists the level names accepted in system.logging.level.
var ValidLogLevels = []LogLevel{
	LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelWarning,
	LogLevelError, LogLevelFatal, LogLevelCritical,
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the logging level (e.g., "INFO", "DEBUG").
	Level string `yaml:"level"`
	// File, when set, receives a copy of every log line.
	File string `yaml:"file"`
}

// SystemConfig holds system-wide settings.
type SystemConfig struct {
	Timezone string        `yaml:"timezone"`
	Logging  LoggingConfig `yaml:"logging"`
}

// ExecutionConfig controls the parallel executor.
type ExecutionConfig struct {
	// ParallelWorkers is the size of the worker pool.
	ParallelWorkers int `yaml:"parallel_workers"`
	// TimeoutSeconds is how long the executor waits for each job's result.
	TimeoutSeconds int `yaml:"timeout_seconds"`
	// RepeatCount is how many times each query is executed per platform in a run.
	RepeatCount int `yaml:"repeat_count"`
	// SQLServerRef names the connection used for SQL Server jobs.
	SQLServerRef string `yaml:"sql_server_ref"`
	// SnowflakeRef names the connection used for Snowflake jobs.
	SnowflakeRef string `yaml:"snowflake_ref"`
}

// InfrastructureConfig holds logical dependency settings for infrastructure components.
type InfrastructureConfig struct {
	// ResultsDBRef names the connection of the test-run database. Empty disables persistence.
	ResultsDBRef string `yaml:"results_db_ref"`
	// MigrationsTable is the history table used by schema migrations.
	MigrationsTable string `yaml:"migrations_table"`
}

// ExportConfig controls the Parquet export of run results.
type ExportConfig struct {
	Enabled         bool   `yaml:"enabled"`
	StorageRef      string `yaml:"storage_ref"`
	Bucket          string `yaml:"bucket"`
	OutputBaseDir   string `yaml:"output_base_dir"`
	CompressionType string `yaml:"compression_type"`
}

// TelemetryConfig selects metric and trace exporters.
type TelemetryConfig struct {
	// MetricsExporter is one of "prometheus", "otlp-grpc", "otlp-http", "none".
	MetricsExporter string `yaml:"metrics_exporter"`
	// TracesExporter is one of "otlp-grpc", "otlp-http", "none".
	TracesExporter string `yaml:"traces_exporter"`
	// Endpoint is the OTLP collector endpoint (host:port).
	Endpoint string `yaml:"endpoint"`
	// Insecure disables TLS towards the collector.
	Insecure bool `yaml:"insecure"`
	// MetricsAddr is the listen address of the Prometheus /metrics handler. Empty disables it.
	MetricsAddr string `yaml:"metrics_addr"`
	// ServiceName is reported as the OTel service.name resource attribute.
	ServiceName string `yaml:"service_name"`
}

// CompareConfig holds all configuration under the "sqlcompare" top-level key.
type CompareConfig struct {
	System         SystemConfig         `yaml:"system"`
	Execution      ExecutionConfig      `yaml:"execution"`
	Infrastructure InfrastructureConfig `yaml:"infrastructure"`
	Export         ExportConfig         `yaml:"export"`
	Telemetry      TelemetryConfig      `yaml:"telemetry"`
	// Connections maps a connection name to its raw settings. Entries are decoded into
	// dbconfig.DatabaseConfig by the database adapters.
	Connections map[string]interface{} `yaml:"connections"`
	// Storage maps a storage name to its raw settings (see storage/config).
	Storage map[string]interface{} `yaml:"storage"`
}

// Config is the root structure for the entire application configuration.
type Config struct {
	Compare CompareConfig `yaml:"sqlcompare"`
}

// NewConfig returns a new instance of Config with default values.
func NewConfig() *Config {
	return &Config{
		Compare: CompareConfig{
			System: SystemConfig{
				Timezone: "UTC",
				Logging:  LoggingConfig{Level: "INFO"},
			},
			Execution: ExecutionConfig{
				ParallelWorkers: 10,
				TimeoutSeconds:  300,
				RepeatCount:     1,
				SQLServerRef:    "sql_server_source",
				SnowflakeRef:    "snowflake",
			},
			Infrastructure: InfrastructureConfig{
				ResultsDBRef:    "",
				MigrationsTable: "sqlcompare_migrations",
			},
			Export: ExportConfig{
				Enabled:         false,
				OutputBaseDir:   "results",
				CompressionType: "SNAPPY",
			},
			Telemetry: TelemetryConfig{
				MetricsExporter: "prometheus",
				TracesExporter:  "none",
				ServiceName:     "sqlcompare",
			},
			Connections: map[string]interface{}{},
			Storage:     map[string]interface{}{},
		},
	}
}

// Connection returns the raw settings of the named connection.
func (c *Config) Connection(name string) (map[string]interface{}, bool) {
	raw, ok := c.Compare.Connections[name]
	if !ok {
		return nil, false
	}
	m, ok := raw.(map[string]interface{})
	return m, ok
}

// StorageSettings returns the raw settings of the named storage.
func (c *Config) StorageSettings(name string) (map[string]interface{}, bool) {
	raw, ok := c.Compare.Storage[name]
	if !ok {
		return nil, false
	}
	m, ok := raw.(map[string]interface{})
	return m, ok
}
