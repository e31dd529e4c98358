package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tigerroll/sqlcompare/pkg/compare/core/config"
	"github.com/tigerroll/sqlcompare/pkg/compare/support/util/exception"
)

const sampleYAML = `
sqlcompare:
  system:
    logging:
      level: DEBUG
  execution:
    parallel_workers: 4
    repeat_count: 3
  connections:
    sql_server_source:
      type: sqlserver
      server: db.internal
      port: 1433
      database: sales
      username: ${TEST_SQLCOMPARE_USER}
    snowflake:
      type: snowflake
      account: acme-xy12345
      warehouse: COMPUTE_WH
`

func TestLoadConfig_DefaultsAndYAML(t *testing.T) {
	t.Setenv("TEST_SQLCOMPARE_USER", "reporter")

	cfg, err := config.LoadConfig("", config.EmbeddedConfig(sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.Compare.Execution.ParallelWorkers)
	assert.Equal(t, 3, cfg.Compare.Execution.RepeatCount)
	assert.Equal(t, 300, cfg.Compare.Execution.TimeoutSeconds, "default kept")
	assert.Equal(t, "DEBUG", cfg.Compare.System.Logging.Level)
	assert.Equal(t, "UTC", cfg.Compare.System.Timezone)

	conn, ok := cfg.Connection("sql_server_source")
	require.True(t, ok)
	assert.Equal(t, "db.internal", conn["server"])
	assert.Equal(t, "reporter", conn["username"], "placeholders are expanded")
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_EnvironmentOverrides(t *testing.T) {
	t.Setenv("SQLCOMPARE_EXECUTION_PARALLEL_WORKERS", "16")
	t.Setenv("SQLCOMPARE_EXPORT_ENABLED", "true")
	t.Setenv("SQLCOMPARE_CONNECTIONS_SQL_SERVER_SOURCE_PASSWORD", "s3cret")
	t.Setenv("SQLCOMPARE_CONNECTIONS_RESULTS_TYPE", "sqlite")

	cfg, err := config.LoadConfig("", config.EmbeddedConfig(sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, 16, cfg.Compare.Execution.ParallelWorkers)
	assert.True(t, cfg.Compare.Export.Enabled)

	conn, ok := cfg.Connection("sql_server_source")
	require.True(t, ok)
	assert.Equal(t, "s3cret", conn["password"])
	assert.Equal(t, "db.internal", conn["server"], "other keys of the entry survive")

	results, ok := cfg.Connection("results")
	require.True(t, ok)
	assert.Equal(t, "sqlite", results["type"])
}

func TestLoadConfig_InvalidEnvValue(t *testing.T) {
	t.Setenv("SQLCOMPARE_EXECUTION_REPEAT_COUNT", "many")

	_, err := config.LoadConfig("", config.EmbeddedConfig(sampleYAML))
	require.Error(t, err)
	assert.True(t, exception.IsKind(err, exception.KindConfiguration))
}

func TestLoadConfig_MalformedYAML(t *testing.T) {
	_, err := config.LoadConfig("", config.EmbeddedConfig("sqlcompare: [unclosed"))
	require.Error(t, err)
	assert.ErrorIs(t, err, exception.ErrConfiguration)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		ok     bool
	}{
		{"defaults without connections", func(c *config.Config) {}, false},
		{"zero workers", func(c *config.Config) { c.Compare.Execution.ParallelWorkers = 0 }, false},
		{"zero repeat", func(c *config.Config) { c.Compare.Execution.RepeatCount = 0 }, false},
		{"zero timeout", func(c *config.Config) { c.Compare.Execution.TimeoutSeconds = 0 }, false},
		{"unknown level", func(c *config.Config) { c.Compare.System.Logging.Level = "TRACE" }, false},
		{"python level names", func(c *config.Config) { c.Compare.System.Logging.Level = "critical" }, true},
		{"missing results db", func(c *config.Config) { c.Compare.Infrastructure.ResultsDBRef = "runs" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.NewConfig()
			if tt.name != "defaults without connections" {
				cfg.Compare.Connections["sql_server_source"] = map[string]interface{}{"type": "sqlserver"}
				cfg.Compare.Connections["snowflake"] = map[string]interface{}{"type": "snowflake"}
			}
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, exception.ErrConfiguration)
			}
		})
	}
}

func TestValidateSettings_AllowsMissingConnections(t *testing.T) {
	assert.NoError(t, config.NewConfig().ValidateSettings())
}

func TestSave_RoundTrip(t *testing.T) {
	cfg, err := config.LoadConfig("", config.EmbeddedConfig(sampleYAML))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "saved.yaml")
	require.NoError(t, cfg.Save(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "parallel_workers: 4")

	reloaded, err := config.LoadFile(path, "")
	require.NoError(t, err)
	assert.Equal(t, cfg.Compare.Execution, reloaded.Compare.Execution)
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := config.LoadFile(filepath.Join(t.TempDir(), "absent.yaml"), "")
	assert.ErrorIs(t, err, exception.ErrConfiguration)
}
