package main

import (
	"context"

	"go.uber.org/fx"

	"github.com/tigerroll/sqlcompare/pkg/compare/adapter/database"
	gormadapter "github.com/tigerroll/sqlcompare/pkg/compare/adapter/database/gorm"
	"github.com/tigerroll/sqlcompare/pkg/compare/adapter/storage"
	"github.com/tigerroll/sqlcompare/pkg/compare/component/writer"
	"github.com/tigerroll/sqlcompare/pkg/compare/core/application/usecase"
	"github.com/tigerroll/sqlcompare/pkg/compare/core/config"
	"github.com/tigerroll/sqlcompare/pkg/compare/engine/analysis"
	"github.com/tigerroll/sqlcompare/pkg/compare/engine/execution"
	"github.com/tigerroll/sqlcompare/pkg/compare/engine/translation"
	inframetrics "github.com/tigerroll/sqlcompare/pkg/compare/infrastructure/metrics"
	sqlrepo "github.com/tigerroll/sqlcompare/pkg/compare/infrastructure/repository/sql"
	"github.com/tigerroll/sqlcompare/pkg/compare/support/util/logger"
)

// applicationOptions builds the Fx options of the application. targets are filled
// through fx.Populate.
func applicationOptions(opts *rootOptions, raw config.EmbeddedConfig, targets ...interface{}) []fx.Option {
	var options []fx.Option

	options = append(options, fx.Supply(
		raw,
		fx.Annotate(opts.envFile, fx.ResultTags(`name:"envFilePath"`)),
		fx.Annotate(opts.logLevel, fx.ResultTags(`name:"logLevelOverride"`)),
	))
	options = append(options, logger.Module)
	options = append(options, config.Module)
	options = append(options, inframetrics.Module)
	options = append(options, gormadapter.Module)
	options = append(options, database.Module)
	options = append(options, storage.Module)
	options = append(options, translation.Module)
	options = append(options, execution.Module)
	options = append(options, analysis.Module)
	options = append(options, writer.Module)
	options = append(options, sqlrepo.Module)
	options = append(options, usecase.Module)
	options = append(options, fx.Populate(targets...))

	return options
}

// startApplication builds and starts the Fx application. The returned function stops it.
func startApplication(ctx context.Context, opts *rootOptions, targets ...interface{}) (func(), error) {
	raw, err := opts.rawConfig()
	if err != nil {
		return nil, err
	}

	app := fx.New(applicationOptions(opts, raw, targets...)...)
	if err := app.Err(); err != nil {
		return nil, err
	}
	if err := app.Start(ctx); err != nil {
		return nil, err
	}
	return func() {
		if err := app.Stop(context.Background()); err != nil {
			logger.Warnf("Failed to stop application cleanly: %v", err)
		}
	}, nil
}
