// Package filesystem embeds the results-database migrations, one directory per database type.
package filesystem

import (
	"embed"
	"io/fs"

	"github.com/tigerroll/sqlcompare/pkg/compare/support/util/logger"
)

//go:embed resource
var rawResultsMigrationFS embed.FS

// ProvideResultsMigrationsFS returns the embedded migrations rooted at the 'resource' directory.
func ProvideResultsMigrationsFS() fs.FS {
	subFS, err := fs.Sub(rawResultsMigrationFS, "resource")
	if err != nil {
		logger.Fatalf("Failed to create subdirectory for results migration FS: %v", err)
	}
	return subFS
}

// PathFor returns the migration directory for a database type.
// "redshift" shares the postgres scripts.
func PathFor(dbType string) string {
	if dbType == "redshift" {
		return "postgres"
	}
	return dbType
}
