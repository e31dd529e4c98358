package sql

import (
	"context"
	"database/sql"
	"fmt"

	"gorm.io/gorm"

	dbconfig "github.com/tigerroll/sqlcompare/pkg/compare/adapter/database/config"
	gormadapter "github.com/tigerroll/sqlcompare/pkg/compare/adapter/database/gorm"
	"github.com/tigerroll/sqlcompare/pkg/compare/component/migration"
	"github.com/tigerroll/sqlcompare/pkg/compare/component/migration/filesystem"
	"github.com/tigerroll/sqlcompare/pkg/compare/support/util/exception"
	"github.com/tigerroll/sqlcompare/pkg/compare/support/util/logger"
)

// ColumnInfo describes one column of a results-database table.
type ColumnInfo struct {
	Name       string  `json:"name"`
	DataType   string  `json:"data_type"`
	IsNullable bool    `json:"is_nullable"`
	Default    *string `json:"default,omitempty"`
}

// SchemaManager creates and inspects the results-database schema.
type SchemaManager struct {
	resolver        DBResolver
	dbName          string
	migrationsTable string
	open            func(dbconfig.DatabaseConfig) (*gorm.DB, error)
}

// NewSchemaManager creates a SchemaManager for the connection dbName.
func NewSchemaManager(resolver DBResolver, dbName, migrationsTable string) *SchemaManager {
	if migrationsTable == "" {
		migrationsTable = migration.DefaultMigrationsTable
	}
	return &SchemaManager{
		resolver:        resolver,
		dbName:          dbName,
		migrationsTable: migrationsTable,
		open:            gormadapter.Open,
	}
}

// CreateSchema applies the embedded migrations. It is safe to call on an
// up-to-date database.
func (s *SchemaManager) CreateSchema(ctx context.Context) (bool, error) {
	settings, err := s.resolver.Settings(s.dbName)
	if err != nil {
		return false, exception.NewSchemaError(fmt.Sprintf("Failed to resolve results database '%s'", s.dbName), err)
	}

	// Migrations get their own handle; golang-migrate closes it when done.
	opener := func() (*sql.DB, error) {
		db, err := s.open(settings)
		if err != nil {
			return nil, err
		}
		return db.DB()
	}
	m := migration.NewMigrator(opener, settings.Type)
	if err := m.Up(ctx, filesystem.ProvideResultsMigrationsFS(), filesystem.PathFor(settings.Type), s.migrationsTable); err != nil {
		return false, exception.NewSchemaError("Failed to create results schema", err)
	}
	logger.Infof("Results schema is up to date on '%s' (%s).", s.dbName, settings.Type)
	return true, nil
}

// TableExists reports whether table exists in the results database.
func (s *SchemaManager) TableExists(ctx context.Context, table string) (bool, error) {
	db, err := s.resolver.GetDB(s.dbName)
	if err != nil {
		return false, exception.NewSchemaError(fmt.Sprintf("Failed to resolve results database '%s'", s.dbName), err)
	}
	return db.WithContext(ctx).Migrator().HasTable(table), nil
}

// GetTableInfo returns the columns of table.
func (s *SchemaManager) GetTableInfo(ctx context.Context, table string) ([]ColumnInfo, error) {
	exists, err := s.TableExists(ctx, table)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, exception.NewSchemaError(fmt.Sprintf("Table '%s' does not exist", table), nil)
	}

	db, err := s.resolver.GetDB(s.dbName)
	if err != nil {
		return nil, exception.NewSchemaError(fmt.Sprintf("Failed to resolve results database '%s'", s.dbName), err)
	}
	columnTypes, err := db.WithContext(ctx).Migrator().ColumnTypes(table)
	if err != nil {
		return nil, exception.NewSchemaError(fmt.Sprintf("Failed to read columns of '%s'", table), err)
	}

	columns := make([]ColumnInfo, 0, len(columnTypes))
	for _, ct := range columnTypes {
		info := ColumnInfo{Name: ct.Name(), DataType: ct.DatabaseTypeName()}
		if nullable, ok := ct.Nullable(); ok {
			info.IsNullable = nullable
		}
		if def, ok := ct.DefaultValue(); ok {
			info.Default = &def
		}
		columns = append(columns, info)
	}
	return columns, nil
}
