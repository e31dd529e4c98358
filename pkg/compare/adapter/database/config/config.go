package config

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// PoolConfig holds database connection pool settings.
type PoolConfig struct {
	MaxOpenConns           int `yaml:"max_open_conns"`
	MaxIdleConns           int `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int `yaml:"conn_max_lifetime_minutes"`
}

// DatabaseConfig holds the settings of one named connection.
// SQL Server uses Server/Port/Database/Username/Password, Snowflake uses
// Account/Warehouse/Database/Schema/Username/Password/Role.
type DatabaseConfig struct {
	Type          string            `yaml:"type"`                    // "sqlserver", "snowflake", "sqlite", "postgres", "mysql".
	Server        string            `yaml:"server"`                  // Host name of the server.
	Port          int               `yaml:"port"`                    // Port number.
	Database      string            `yaml:"database"`                // Database name (file path for sqlite).
	Username      string            `yaml:"username"`                // Login name.
	Password      string            `yaml:"password"`                // Login password.
	AppName       string            `yaml:"app_name,omitempty"`      // Application name reported to the server.
	Account       string            `yaml:"account,omitempty"`       // Snowflake account identifier.
	Warehouse     string            `yaml:"warehouse,omitempty"`     // Snowflake virtual warehouse.
	Schema        string            `yaml:"schema,omitempty"`        // Schema name.
	Role          string            `yaml:"role,omitempty"`          // Snowflake role.
	Authenticator string            `yaml:"authenticator,omitempty"` // Snowflake authenticator (snowflake, externalbrowser, oauth, ...).
	Token         string            `yaml:"token,omitempty"`         // OAuth token for the oauth authenticator.
	Sslmode       string            `yaml:"sslmode,omitempty"`       // SSL mode (postgres).
	Params        map[string]string `yaml:"params,omitempty"`        // Extra driver parameters.
	Pool          PoolConfig        `yaml:"pool"`                    // Connection pool settings.
}

// Decode converts a raw configuration entry (as loaded from YAML or the environment)
// into a DatabaseConfig. String values are converted to the field types.
func Decode(raw interface{}) (DatabaseConfig, error) {
	var cfg DatabaseConfig
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "yaml",
		WeaklyTypedInput: true,
		Result:           &cfg,
	})
	if err != nil {
		return cfg, err
	}
	if err := decoder.Decode(raw); err != nil {
		return cfg, fmt.Errorf("failed to decode database config: %w", err)
	}
	return cfg, nil
}

// HasCredentials reports whether both a user name and a password are set.
func (c DatabaseConfig) HasCredentials() bool {
	return c.Username != "" && c.Password != ""
}
