package config

import (
	"fmt"
	"os"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
	"gopkg.in/yaml.v3"

	"github.com/tigerroll/sqlcompare/pkg/compare/support/util/exception"
	"github.com/tigerroll/sqlcompare/pkg/compare/support/util/logger"
)

// ConfigParams defines the dependencies for NewConfigProvider.
type ConfigParams struct {
	fx.In
	EmbeddedConfig EmbeddedConfig
	Expander       EnvironmentExpander `optional:"true"`
	EnvFilePath    string              `name:"envFilePath" optional:"true"`
	LogLevel       string              `name:"logLevelOverride" optional:"true"`
}

// loadConfig builds the effective configuration.
// Order: defaults, YAML (after ${VAR} expansion), .env file, SQLCOMPARE_* environment variables.
func loadConfig(envFilePath string, raw []byte, expander EnvironmentExpander) (*Config, error) {
	if envFilePath != "" {
		if err := godotenv.Load(envFilePath); err != nil {
			logger.Warnf(".env file (%s) not found or could not be loaded: %v", envFilePath, err)
		}
	} else {
		if err := godotenv.Load(); err != nil {
			logger.Debugf(".env file not found or could not be loaded: %v", err)
		}
	}

	if expander == nil {
		expander = NewOsEnvironmentExpander()
	}
	expanded, err := expander.Expand(raw)
	if err != nil {
		return nil, exception.NewConfigurationError("failed to expand environment placeholders", err)
	}

	cfg := NewConfig()

	var yamlConfig Config
	if err := yaml.Unmarshal(expanded, &yamlConfig); err != nil {
		return nil, exception.NewConfigurationError("failed to unmarshal config", err)
	}
	mergeConfig(cfg, &yamlConfig)

	if err := loadStructFromEnv(reflect.ValueOf(cfg).Elem(), ""); err != nil {
		return nil, exception.NewConfigurationError("failed to load config from environment variables", err)
	}
	return cfg, nil
}

// LoadConfig loads configuration from the given YAML bytes and the environment.
func LoadConfig(envFilePath string, embeddedConfig EmbeddedConfig) (*Config, error) {
	return loadConfig(envFilePath, embeddedConfig, nil)
}

// LoadFile reads the YAML file at path and loads it like LoadConfig.
func LoadFile(path, envFilePath string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, exception.NewConfigurationError(fmt.Sprintf("failed to read config file %s", path), err)
	}
	return loadConfig(envFilePath, data, nil)
}

// NewConfigProvider is an Fx provider that loads and provides *Config.
// It also applies the logging settings.
func NewConfigProvider(params ConfigParams) (*Config, error) {
	cfg, err := loadConfig(params.EnvFilePath, params.EmbeddedConfig, params.Expander)
	if err != nil {
		return nil, err
	}
	if params.LogLevel != "" {
		cfg.Compare.System.Logging.Level = params.LogLevel
	}
	if err := cfg.ValidateSettings(); err != nil {
		return nil, err
	}

	logger.SetLogLevel(cfg.Compare.System.Logging.Level)
	if cfg.Compare.System.Logging.File != "" {
		if err := logger.SetOutputFile(cfg.Compare.System.Logging.File); err != nil {
			return nil, exception.NewConfigurationError("failed to open log file", err)
		}
	}
	logger.Infof("Log level set to: %s", cfg.Compare.System.Logging.Level)

	return cfg, nil
}

// ValidateSettings checks the scalar settings.
func (c *Config) ValidateSettings() error {
	exec := c.Compare.Execution
	if exec.ParallelWorkers < 1 {
		return exception.NewConfigurationError(fmt.Sprintf("execution.parallel_workers must be >= 1, got %d", exec.ParallelWorkers), nil)
	}
	if exec.RepeatCount < 1 {
		return exception.NewConfigurationError(fmt.Sprintf("execution.repeat_count must be >= 1, got %d", exec.RepeatCount), nil)
	}
	if exec.TimeoutSeconds < 1 {
		return exception.NewConfigurationError(fmt.Sprintf("execution.timeout_seconds must be >= 1, got %d", exec.TimeoutSeconds), nil)
	}
	level := LogLevel(strings.ToUpper(c.Compare.System.Logging.Level))
	known := false
	for _, l := range ValidLogLevels {
		if l == level {
			known = true
			break
		}
	}
	if !known {
		return exception.NewConfigurationError(fmt.Sprintf("system.logging.level %q is not one of %v", c.Compare.System.Logging.Level, ValidLogLevels), nil)
	}
	return nil
}

// Validate checks the scalar settings and that the connections used by the executor exist.
func (c *Config) Validate() error {
	if err := c.ValidateSettings(); err != nil {
		return err
	}
	if len(c.Compare.Connections) == 0 {
		return exception.NewConfigurationError("at least one connection must be configured under connections", nil)
	}
	for _, ref := range []string{c.Compare.Execution.SQLServerRef, c.Compare.Execution.SnowflakeRef} {
		if _, ok := c.Connection(ref); !ok {
			return exception.NewConfigurationError(fmt.Sprintf("connection %q referenced by execution is not configured", ref), nil)
		}
	}
	if ref := c.Compare.Infrastructure.ResultsDBRef; ref != "" {
		if _, ok := c.Connection(ref); !ok {
			return exception.NewConfigurationError(fmt.Sprintf("connection %q referenced by infrastructure.results_db_ref is not configured", ref), nil)
		}
	}
	return nil
}

// Save writes the configuration to path as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return exception.NewConfigurationError("failed to marshal config", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return exception.NewConfigurationError(fmt.Sprintf("failed to write config file %s", path), err)
	}
	logger.Infof("Configuration saved to %s", path)
	return nil
}

// mergeConfig copies every non-zero value of source into dest.
func mergeConfig(dest, source *Config) {
	mergeCompareConfig(&dest.Compare, &source.Compare)
}

func mergeCompareConfig(dest, source *CompareConfig) {
	mergeSystemConfig(&dest.System, &source.System)

	if source.Execution.ParallelWorkers != 0 {
		dest.Execution.ParallelWorkers = source.Execution.ParallelWorkers
	}
	if source.Execution.TimeoutSeconds != 0 {
		dest.Execution.TimeoutSeconds = source.Execution.TimeoutSeconds
	}
	if source.Execution.RepeatCount != 0 {
		dest.Execution.RepeatCount = source.Execution.RepeatCount
	}
	if source.Execution.SQLServerRef != "" {
		dest.Execution.SQLServerRef = source.Execution.SQLServerRef
	}
	if source.Execution.SnowflakeRef != "" {
		dest.Execution.SnowflakeRef = source.Execution.SnowflakeRef
	}

	if source.Infrastructure.ResultsDBRef != "" {
		dest.Infrastructure.ResultsDBRef = source.Infrastructure.ResultsDBRef
	}
	if source.Infrastructure.MigrationsTable != "" {
		dest.Infrastructure.MigrationsTable = source.Infrastructure.MigrationsTable
	}

	if source.Export.Enabled {
		dest.Export.Enabled = true
	}
	if source.Export.StorageRef != "" {
		dest.Export.StorageRef = source.Export.StorageRef
	}
	if source.Export.Bucket != "" {
		dest.Export.Bucket = source.Export.Bucket
	}
	if source.Export.OutputBaseDir != "" {
		dest.Export.OutputBaseDir = source.Export.OutputBaseDir
	}
	if source.Export.CompressionType != "" {
		dest.Export.CompressionType = source.Export.CompressionType
	}

	if source.Telemetry.MetricsExporter != "" {
		dest.Telemetry.MetricsExporter = source.Telemetry.MetricsExporter
	}
	if source.Telemetry.TracesExporter != "" {
		dest.Telemetry.TracesExporter = source.Telemetry.TracesExporter
	}
	if source.Telemetry.Endpoint != "" {
		dest.Telemetry.Endpoint = source.Telemetry.Endpoint
	}
	if source.Telemetry.Insecure {
		dest.Telemetry.Insecure = true
	}
	if source.Telemetry.MetricsAddr != "" {
		dest.Telemetry.MetricsAddr = source.Telemetry.MetricsAddr
	}
	if source.Telemetry.ServiceName != "" {
		dest.Telemetry.ServiceName = source.Telemetry.ServiceName
	}

	if source.Connections != nil {
		if dest.Connections == nil {
			dest.Connections = make(map[string]interface{})
		}
		for key, value := range source.Connections {
			dest.Connections[key] = value
		}
	}
	if source.Storage != nil {
		if dest.Storage == nil {
			dest.Storage = make(map[string]interface{})
		}
		for key, value := range source.Storage {
			dest.Storage[key] = value
		}
	}
}

func mergeSystemConfig(dest, source *SystemConfig) {
	if source.Timezone != "" {
		dest.Timezone = source.Timezone
	}
	if source.Logging.Level != "" {
		dest.Logging.Level = source.Logging.Level
	}
	if source.Logging.File != "" {
		dest.Logging.File = source.Logging.File
	}
}

// loadStructFromEnv recursively loads configuration values into a struct from environment variables.
// The variable name is the upper-cased path of yaml tags joined by "_", e.g.
// SQLCOMPARE_EXECUTION_PARALLEL_WORKERS.
func loadStructFromEnv(val reflect.Value, prefix string) error {
	typ := val.Type()
	for i := 0; i < typ.NumField(); i++ {
		field := val.Field(i)
		fieldType := typ.Field(i)
		yamlTag := strings.Split(fieldType.Tag.Get("yaml"), ",")[0]
		if yamlTag == "" || yamlTag == "-" {
			continue
		}
		envVarName := strings.ToUpper(prefix + yamlTag)

		if field.Kind() == reflect.Struct {
			if err := loadStructFromEnv(field, envVarName+"_"); err != nil {
				return err
			}
			continue
		}

		if field.Kind() == reflect.Map && field.Type().Key().Kind() == reflect.String && field.Type().Elem().Kind() == reflect.Interface {
			if err := loadMapFromEnv(field, envVarName+"_"); err != nil {
				return err
			}
			continue
		}

		envValue, exists := os.LookupEnv(envVarName)
		if !exists {
			continue
		}
		if err := setField(field, envValue); err != nil {
			return fmt.Errorf("failed to set field '%s' from env var '%s': %w", fieldType.Name, envVarName, err)
		}
	}
	return nil
}

// loadMapFromEnv sets entries of a map[string]interface{} section such as connections.
//
// SQLCOMPARE_CONNECTIONS_SQL_SERVER_SOURCE_PASSWORD=secret sets the "password" key of the
// existing "sql_server_source" entry. Keys may contain underscores, so the longest existing
// entry name matching the variable wins; when none matches, the first segment names a new entry.
// Values stay strings and are converted when the entry is decoded.
func loadMapFromEnv(mapField reflect.Value, prefix string) error {
	if mapField.IsNil() {
		mapField.Set(reflect.MakeMap(mapField.Type()))
	}

	existing := make([]string, 0, mapField.Len())
	for _, k := range mapField.MapKeys() {
		existing = append(existing, k.String())
	}
	sort.Slice(existing, func(i, j int) bool { return len(existing[i]) > len(existing[j]) })

	for _, env := range os.Environ() {
		if !strings.HasPrefix(env, prefix) {
			continue
		}
		parts := strings.SplitN(strings.TrimPrefix(env, prefix), "=", 2)
		if len(parts) != 2 {
			continue
		}
		keyAndField, envValue := parts[0], parts[1]

		mapKey, fieldName := splitMapKey(keyAndField, existing)
		if mapKey == "" || fieldName == "" {
			continue
		}

		entry := map[string]interface{}{}
		if cur := mapField.MapIndex(reflect.ValueOf(mapKey)); cur.IsValid() {
			if m, ok := cur.Interface().(map[string]interface{}); ok {
				entry = m
			}
		}
		entry[fieldName] = envValue
		mapField.SetMapIndex(reflect.ValueOf(mapKey), reflect.ValueOf(entry))
	}
	return nil
}

func splitMapKey(keyAndField string, existing []string) (string, string) {
	for _, key := range existing {
		p := strings.ToUpper(key) + "_"
		if strings.HasPrefix(keyAndField, p) {
			return key, strings.ToLower(strings.TrimPrefix(keyAndField, p))
		}
	}
	segments := strings.SplitN(keyAndField, "_", 2)
	if len(segments) != 2 {
		return "", ""
	}
	return strings.ToLower(segments[0]), strings.ToLower(segments[1])
}

// setField sets the value of a reflect.Value field based on its kind.
func setField(field reflect.Value, value string) error {
	if !field.CanSet() {
		return nil
	}
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		intValue, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return err
		}
		field.SetInt(intValue)
	case reflect.Float64, reflect.Float32:
		floatValue, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return err
		}
		field.SetFloat(floatValue)
	case reflect.Bool:
		boolValue, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		field.SetBool(boolValue)
	}
	return nil
}
