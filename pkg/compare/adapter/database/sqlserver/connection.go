// Package sqlserver provides the SQL Server connection used to run source queries.
package sqlserver

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"gorm.io/gorm"

	"github.com/tigerroll/sqlcompare/pkg/compare/adapter/database"
	dbconfig "github.com/tigerroll/sqlcompare/pkg/compare/adapter/database/config"
	gormadapter "github.com/tigerroll/sqlcompare/pkg/compare/adapter/database/gorm"
	_ "github.com/tigerroll/sqlcompare/pkg/compare/adapter/database/gorm/sqlserver"
	"github.com/tigerroll/sqlcompare/pkg/compare/core/domain/model"
	"github.com/tigerroll/sqlcompare/pkg/compare/support/util/exception"
	"github.com/tigerroll/sqlcompare/pkg/compare/support/util/logger"
)

const moduleName = "sqlserver"

// Opener opens a GORM handle for the given settings.
type Opener func(cfg dbconfig.DatabaseConfig) (*gorm.DB, error)

func init() {
	database.RegisterConnectionBuilder("sqlserver", func(name string, cfg dbconfig.DatabaseConfig) (database.Connection, error) {
		return NewConnection(name, cfg), nil
	})
}

// Connection is a SQL Server connection opened through GORM's sqlserver dialector.
type Connection struct {
	name string
	cfg  dbconfig.DatabaseConfig
	open Opener

	mu sync.Mutex
	db *sql.DB
}

// NewConnection creates an unconnected SQL Server connection.
func NewConnection(name string, cfg dbconfig.DatabaseConfig) *Connection {
	return NewConnectionWithOpener(name, cfg, nil)
}

// NewConnectionWithOpener creates a connection that opens handles with open.
// A nil open uses the registered "sqlserver" dialector.
func NewConnectionWithOpener(name string, cfg dbconfig.DatabaseConfig, open Opener) *Connection {
	if cfg.Type == "" {
		cfg.Type = "sqlserver"
	}
	if open == nil {
		open = gormadapter.Open
	}
	return &Connection{name: name, cfg: cfg, open: open}
}

// Connect implements database.Connection.
func (c *Connection) Connect(ctx context.Context) (*sql.DB, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.db != nil {
		return c.db, nil
	}

	gdb, err := c.open(c.cfg)
	if err != nil {
		return nil, exception.NewDatabaseConnectionError(moduleName, fmt.Sprintf("Failed to connect to SQL Server '%s'", c.name), err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, exception.NewDatabaseConnectionError(moduleName, fmt.Sprintf("Failed to connect to SQL Server '%s'", c.name), err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, exception.NewDatabaseConnectionError(moduleName, fmt.Sprintf("Failed to connect to SQL Server '%s'", c.name), err)
	}
	c.db = sqlDB
	logger.Debugf("Connected to SQL Server '%s' (%s/%s)", c.name, c.cfg.Server, c.cfg.Database)
	return sqlDB, nil
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
	logger.Debugf("Disconnected from SQL Server '%s'", c.name)
	return err
}

// Platform implements database.Connection.
func (c *Connection) Platform() model.Platform { return model.PlatformSQLServer }

// Name implements database.Connection.
func (c *Connection) Name() string { return c.name }
