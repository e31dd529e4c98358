package database

import (
	"fmt"
	"sync"

	dbconfig "github.com/tigerroll/sqlcompare/pkg/compare/adapter/database/config"
	"github.com/tigerroll/sqlcompare/pkg/compare/core/config"
	"github.com/tigerroll/sqlcompare/pkg/compare/core/domain/model"
	"github.com/tigerroll/sqlcompare/pkg/compare/support/util/exception"
	"github.com/tigerroll/sqlcompare/pkg/compare/support/util/logger"
)

// ConnectionBuilder creates an unconnected Connection from its decoded settings.
type ConnectionBuilder func(name string, cfg dbconfig.DatabaseConfig) (Connection, error)

var (
	builderRegistry = make(map[string]ConnectionBuilder)
	builderMutex    sync.RWMutex
)

// RegisterConnectionBuilder registers a ConnectionBuilder for a connection type ("sqlserver", "snowflake").
// Adapter packages call it from init.
func RegisterConnectionBuilder(dbType string, builder ConnectionBuilder) {
	builderMutex.Lock()
	defer builderMutex.Unlock()
	if _, exists := builderRegistry[dbType]; exists {
		logger.Warnf("Connection builder for type '%s' already registered. Overwriting.", dbType)
	}
	builderRegistry[dbType] = builder
}

// GetConnectionBuilder returns the builder registered for dbType.
func GetConnectionBuilder(dbType string) (ConnectionBuilder, error) {
	builderMutex.RLock()
	defer builderMutex.RUnlock()
	builder, ok := builderRegistry[dbType]
	if !ok {
		return nil, fmt.Errorf("no connection builder registered for database type: %s", dbType)
	}
	return builder, nil
}

// ConfigFactory builds connections from the "connections" section of the configuration.
// The execution refs select which entry serves each platform.
type ConfigFactory struct {
	cfg *config.Config
}

// NewConfigFactory creates a ConfigFactory.
func NewConfigFactory(cfg *config.Config) *ConfigFactory {
	return &ConfigFactory{cfg: cfg}
}

// NewConnection implements ConnectionFactory.
func (f *ConfigFactory) NewConnection(platform model.Platform) (Connection, error) {
	var ref string
	switch platform {
	case model.PlatformSQLServer:
		ref = f.cfg.Compare.Execution.SQLServerRef
	case model.PlatformSnowflake:
		ref = f.cfg.Compare.Execution.SnowflakeRef
	default:
		return nil, exception.NewValidationError("database", fmt.Sprintf("unknown platform: %s", platform))
	}
	return f.ForName(ref)
}

// ForName builds the connection configured under name.
func (f *ConfigFactory) ForName(name string) (Connection, error) {
	raw, ok := f.cfg.Connection(name)
	if !ok {
		return nil, exception.NewConfigurationError(fmt.Sprintf("connection '%s' is not configured", name), nil)
	}
	dbCfg, err := dbconfig.Decode(raw)
	if err != nil {
		return nil, exception.NewConfigurationError(fmt.Sprintf("invalid settings for connection '%s'", name), err)
	}
	builder, err := GetConnectionBuilder(dbCfg.Type)
	if err != nil {
		return nil, exception.NewConfigurationError(fmt.Sprintf("connection '%s'", name), err)
	}
	return builder(name, dbCfg)
}
