// Package database defines the connection contract shared by the SQL Server and Snowflake adapters.
package database

import (
	"context"
	"database/sql"

	"github.com/tigerroll/sqlcompare/pkg/compare/core/domain/model"
	"github.com/tigerroll/sqlcompare/pkg/compare/support/util/logger"
)

// Connection is a single logical connection to one platform.
type Connection interface {
	// Connect opens the connection and verifies it with a ping.
	// Failures are reported as exception.KindConnection errors.
	Connect(ctx context.Context) (*sql.DB, error)
	// Disconnect closes the connection. It is a no-op when not connected and safe to call twice.
	Disconnect() error
	// Platform returns the platform the connection talks to.
	Platform() model.Platform
	// Name returns the configured connection name.
	Name() string
}

// ConnectionFactory creates fresh, unconnected connections.
type ConnectionFactory interface {
	// NewConnection returns a new connection for the platform.
	NewConnection(platform model.Platform) (Connection, error)
}

// WithConnection connects conn, runs fn with the open handle and disconnects on every
// exit path, including a panic in fn (which is re-raised after the disconnect).
// A failed disconnect is logged and does not change the result of fn.
func WithConnection(ctx context.Context, conn Connection, fn func(db *sql.DB) error) error {
	db, err := conn.Connect(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if derr := conn.Disconnect(); derr != nil {
			logger.Warnf("Failed to disconnect '%s' (%s): %v", conn.Name(), conn.Platform(), derr)
		}
	}()
	return fn(db)
}
