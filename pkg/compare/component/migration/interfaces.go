// Package migration applies embedded schema migrations with golang-migrate.
package migration

import (
	"context"
	"io/fs"
)

// DefaultMigrationsTable tracks the applied results-database migrations.
const DefaultMigrationsTable = "sqlcompare_migrations"

// Migrator handles database schema migrations.
type Migrator interface {
	// Up applies all pending migrations found under path in migrationFS.
	// tableName is the table used to track migration history.
	Up(ctx context.Context, migrationFS fs.FS, path string, tableName string) error
	// Down rolls back all applied migrations.
	Down(ctx context.Context, migrationFS fs.FS, path string, tableName string) error
	// Version reports the current migration version and whether it is dirty.
	// A database without applied migrations reports version 0.
	Version(migrationFS fs.FS, path string, tableName string) (uint, bool, error)
}
