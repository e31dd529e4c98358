package migration_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tigerroll/sqlcompare/pkg/compare/component/migration"
	"github.com/tigerroll/sqlcompare/pkg/compare/component/migration/filesystem"
)

func sqliteOpener(path string) migration.DBOpener {
	return func() (*sql.DB, error) { return sql.Open("sqlite3", path) }
}

func tableNames(t *testing.T, path string) []string {
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()

	rows, err := db.Query("SELECT name FROM sqlite_master WHERE type = 'table' ORDER BY name")
	require.NoError(t, err)
	defer rows.Close()
	var names []string
	for rows.Next() {
		var n string
		require.NoError(t, rows.Scan(&n))
		names = append(names, n)
	}
	require.NoError(t, rows.Err())
	return names
}

func TestMigrator_UpDownOnSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.db")
	fsys := filesystem.ProvideResultsMigrationsFS()
	m := migration.NewMigrator(sqliteOpener(path), "sqlite")
	ctx := context.Background()

	version, dirty, err := m.Version(fsys, filesystem.PathFor("sqlite"), migration.DefaultMigrationsTable)
	require.NoError(t, err)
	assert.Equal(t, uint(0), version)
	assert.False(t, dirty)

	require.NoError(t, m.Up(ctx, fsys, "sqlite", migration.DefaultMigrationsTable))
	assert.Subset(t, tableNames(t, path), []string{"comparison_runs", "query_results", "comparison_reports", "sqlcompare_migrations"})

	version, _, err = m.Version(fsys, "sqlite", migration.DefaultMigrationsTable)
	require.NoError(t, err)
	assert.Equal(t, uint(4), version)

	require.NoError(t, m.Up(ctx, fsys, "sqlite", migration.DefaultMigrationsTable), "re-applying is a no-op")

	require.NoError(t, m.Down(ctx, fsys, "sqlite", migration.DefaultMigrationsTable))
	assert.NotContains(t, tableNames(t, path), "comparison_runs")
}

func TestMigrator_UnsupportedType(t *testing.T) {
	opener := func() (*sql.DB, error) {
		db, _, err := sqlmock.New()
		return db, err
	}
	m := migration.NewMigrator(opener, "oracle")

	err := m.Up(context.Background(), filesystem.ProvideResultsMigrationsFS(), "sqlite", migration.DefaultMigrationsTable)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database type")
}

func TestPathFor(t *testing.T) {
	assert.Equal(t, "postgres", filesystem.PathFor("redshift"))
	assert.Equal(t, "sqlserver", filesystem.PathFor("sqlserver"))
}
