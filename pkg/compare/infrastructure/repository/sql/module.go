package sql

import (
	"go.uber.org/fx"

	gormadapter "github.com/tigerroll/sqlcompare/pkg/compare/adapter/database/gorm"
	"github.com/tigerroll/sqlcompare/pkg/compare/core/config"
	"github.com/tigerroll/sqlcompare/pkg/compare/core/domain/repository"
	"github.com/tigerroll/sqlcompare/pkg/compare/support/util/logger"
)

// NewResultRepository provides the results repository, or nil when no results
// database is configured.
func NewResultRepository(p *gormadapter.Provider, cfg *config.Config) repository.ResultRepository {
	ref := cfg.Compare.Infrastructure.ResultsDBRef
	if ref == "" {
		logger.Debugf("No results database configured; runs will not be persisted.")
		return nil
	}
	return NewGORMResultRepository(p, ref)
}

// NewSchemaManagerProvider provides the SchemaManager of the configured results database.
func NewSchemaManagerProvider(p *gormadapter.Provider, cfg *config.Config) *SchemaManager {
	return NewSchemaManager(p, cfg.Compare.Infrastructure.ResultsDBRef, cfg.Compare.Infrastructure.MigrationsTable)
}

// Module provides the results repository and schema manager.
var Module = fx.Options(
	fx.Provide(NewResultRepository),
	fx.Provide(NewSchemaManagerProvider),
)
