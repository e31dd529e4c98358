package writer

import (
	"go.uber.org/fx"

	"github.com/tigerroll/sqlcompare/pkg/compare/adapter/storage"
	"github.com/tigerroll/sqlcompare/pkg/compare/core/config"
	"github.com/tigerroll/sqlcompare/pkg/compare/support/util/logger"
)

// NewExportWriter provides the Parquet writer, or nil when export is disabled.
func NewExportWriter(cfg *config.Config, resolver storage.StorageConnectionResolver) (*ParquetResultWriter, error) {
	if !cfg.Compare.Export.Enabled {
		logger.Debugf("Result export is disabled.")
		return nil, nil
	}
	return NewParquetResultWriter(cfg.Compare.Export, resolver)
}

// Module provides the export writer.
var Module = fx.Options(
	fx.Provide(NewExportWriter),
)
