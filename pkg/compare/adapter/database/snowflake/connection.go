// Package snowflake provides the Snowflake connection used to run translated queries.
package snowflake

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"

	sf "github.com/snowflakedb/gosnowflake"

	"github.com/tigerroll/sqlcompare/pkg/compare/adapter/database"
	dbconfig "github.com/tigerroll/sqlcompare/pkg/compare/adapter/database/config"
	"github.com/tigerroll/sqlcompare/pkg/compare/core/domain/model"
	"github.com/tigerroll/sqlcompare/pkg/compare/support/util/exception"
	"github.com/tigerroll/sqlcompare/pkg/compare/support/util/logger"
)

const (
	moduleName = "snowflake"
	driverName = "snowflake"
)

// Opener opens a database handle; sql.Open in production.
type Opener func(driverName, dsn string) (*sql.DB, error)

func init() {
	database.RegisterConnectionBuilder("snowflake", func(name string, cfg dbconfig.DatabaseConfig) (database.Connection, error) {
		return NewConnection(name, cfg), nil
	})
}

// Connection is a Snowflake connection opened through gosnowflake.
type Connection struct {
	name string
	cfg  dbconfig.DatabaseConfig
	open Opener

	mu sync.Mutex
	db *sql.DB
}

// NewConnection creates an unconnected Snowflake connection.
func NewConnection(name string, cfg dbconfig.DatabaseConfig) *Connection {
	return NewConnectionWithOpener(name, cfg, nil)
}

// NewConnectionWithOpener creates a connection that opens handles with open.
func NewConnectionWithOpener(name string, cfg dbconfig.DatabaseConfig, open Opener) *Connection {
	if open == nil {
		open = sql.Open
	}
	return &Connection{name: name, cfg: cfg, open: open}
}

// DriverConfig maps the settings onto a gosnowflake.Config.
// User and password are set only when both are present, the role only when configured.
func DriverConfig(c dbconfig.DatabaseConfig) (*sf.Config, error) {
	cfg := &sf.Config{
		Account:     c.Account,
		Warehouse:   c.Warehouse,
		Database:    c.Database,
		Schema:      c.Schema,
		Application: c.AppName,
	}
	if c.HasCredentials() {
		cfg.User = c.Username
		cfg.Password = c.Password
	}
	if c.Role != "" {
		cfg.Role = c.Role
	}
	authType, err := authenticator(c.Authenticator)
	if err != nil {
		return nil, err
	}
	cfg.Authenticator = authType
	if authType == sf.AuthTypeOAuth {
		cfg.Token = c.Token
	}
	if authType == sf.AuthTypeExternalBrowser && c.Username != "" {
		cfg.User = c.Username
	}
	if len(c.Params) > 0 {
		cfg.Params = make(map[string]*string, len(c.Params))
		for k, v := range c.Params {
			v := v
			cfg.Params[k] = &v
		}
	}
	return cfg, nil
}

func authenticator(name string) (sf.AuthType, error) {
	switch strings.ToLower(name) {
	case "", "snowflake":
		return sf.AuthTypeSnowflake, nil
	case "externalbrowser":
		return sf.AuthTypeExternalBrowser, nil
	case "oauth":
		return sf.AuthTypeOAuth, nil
	case "snowflake_jwt", "jwt":
		return sf.AuthTypeJwt, nil
	case "username_password_mfa":
		return sf.AuthTypeUsernamePasswordMFA, nil
	}
	return sf.AuthTypeSnowflake, fmt.Errorf("unsupported snowflake authenticator: %s", name)
}

// DSN builds the gosnowflake data source name for the settings.
func DSN(c dbconfig.DatabaseConfig) (string, error) {
	cfg, err := DriverConfig(c)
	if err != nil {
		return "", err
	}
	return sf.DSN(cfg)
}

// Connect implements database.Connection.
func (c *Connection) Connect(ctx context.Context) (*sql.DB, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.db != nil {
		return c.db, nil
	}

	dsn, err := DSN(c.cfg)
	if err != nil {
		return nil, exception.NewDatabaseConnectionError(moduleName, fmt.Sprintf("Invalid Snowflake settings for '%s'", c.name), err)
	}
	db, err := c.open(driverName, dsn)
	if err != nil {
		return nil, exception.NewDatabaseConnectionError(moduleName, fmt.Sprintf("Failed to connect to Snowflake '%s'", c.name), err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, exception.NewDatabaseConnectionError(moduleName, fmt.Sprintf("Failed to connect to Snowflake '%s'", c.name), err)
	}
	c.db = db
	logger.Debugf("Connected to Snowflake '%s' (%s/%s)", c.name, c.cfg.Account, c.cfg.Warehouse)
	return db, nil
}

// Disconnect implements database.Connection.
func (c *Connection) Disconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.db == nil {
		return nil
	}
	err := c.db.Close()
	c.db = nil
	logger.Debugf("Disconnected from Snowflake '%s'", c.name)
	return err
}

// Platform implements database.Connection.
func (c *Connection) Platform() model.Platform { return model.PlatformSnowflake }

// Name implements database.Connection.
func (c *Connection) Name() string { return c.name }
