package migration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/database/sqlserver"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/tigerroll/sqlcompare/pkg/compare/support/util/logger"
)

// DBOpener opens a dedicated *sql.DB for one migration operation.
// golang-migrate closes the handle together with the migrate instance.
type DBOpener func() (*sql.DB, error)

// migratorImpl implements Migrator.
type migratorImpl struct {
	open   DBOpener
	dbType string
}

// NewMigrator creates a Migrator for the given database type
// ("sqlserver", "postgres", "mysql" or "sqlite").
func NewMigrator(open DBOpener, dbType string) Migrator {
	return &migratorImpl{open: open, dbType: dbType}
}

func databaseDriver(db *sql.DB, dbType, tableName string) (database.Driver, error) {
	switch dbType {
	case "sqlserver":
		return sqlserver.WithInstance(db, &sqlserver.Config{MigrationsTable: tableName})
	case "postgres", "redshift":
		return postgres.WithInstance(db, &postgres.Config{MigrationsTable: tableName})
	case "mysql":
		return mysql.WithInstance(db, &mysql.Config{MigrationsTable: tableName})
	case "sqlite":
		return sqlite3.WithInstance(db, &sqlite3.Config{MigrationsTable: tableName})
	default:
		return nil, fmt.Errorf("unsupported database type for migration: %s", dbType)
	}
}

func (m *migratorImpl) instance(migrationFS fs.FS, path string, tableName string) (*migrate.Migrate, error) {
	sourceDriver, err := iofs.New(migrationFS, path)
	if err != nil {
		return nil, fmt.Errorf("failed to create iofs source driver for path %s: %w", path, err)
	}
	db, err := m.open()
	if err != nil {
		_ = sourceDriver.Close()
		return nil, fmt.Errorf("failed to open database for migration: %w", err)
	}
	dbDriver, err := databaseDriver(db, m.dbType, tableName)
	if err != nil {
		_ = sourceDriver.Close()
		_ = db.Close()
		return nil, fmt.Errorf("failed to create database driver: %w", err)
	}
	mInstance, err := migrate.NewWithInstance("iofs", sourceDriver, m.dbType, dbDriver)
	if err != nil {
		_ = dbDriver.Close()
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	return mInstance, nil
}

func (m *migratorImpl) run(ctx context.Context, migrationFS fs.FS, path, command, tableName string) error {
	logger.Infof("Executing migration '%s' (DB: %s, Path: %s, Table: %s)", command, m.dbType, path, tableName)

	mInstance, err := m.instance(migrationFS, path, tableName)
	if err != nil {
		return err
	}
	defer mInstance.Close()

	// Up and Down have no context parameter; GracefulStop is how a running migration is interrupted.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			mInstance.GracefulStop <- true
		case <-done:
		}
	}()

	switch command {
	case "up":
		err = mInstance.Up()
	case "down":
		err = mInstance.Down()
	default:
		return fmt.Errorf("unsupported migration command: %s", command)
	}

	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		if version, dirty, verr := mInstance.Version(); verr == nil {
			logger.Errorf("Migration '%s' failed at version %d (dirty: %t).", command, version, dirty)
		}
		return fmt.Errorf("migration failed for command '%s' (DB: %s, Path: %s): %w", command, m.dbType, path, err)
	}
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Infof("Migration '%s': schema already up to date.", command)
		return nil
	}
	logger.Infof("Migration '%s' completed successfully.", command)
	return nil
}

func (m *migratorImpl) Up(ctx context.Context, migrationFS fs.FS, path string, tableName string) error {
	return m.run(ctx, migrationFS, path, "up", tableName)
}

func (m *migratorImpl) Down(ctx context.Context, migrationFS fs.FS, path string, tableName string) error {
	return m.run(ctx, migrationFS, path, "down", tableName)
}

func (m *migratorImpl) Version(migrationFS fs.FS, path string, tableName string) (uint, bool, error) {
	mInstance, err := m.instance(migrationFS, path, tableName)
	if err != nil {
		return 0, false, err
	}
	defer mInstance.Close()

	version, dirty, err := mInstance.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return version, dirty, err
}
