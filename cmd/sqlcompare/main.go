package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	_ "embed"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"

	_ "github.com/tigerroll/sqlcompare/pkg/compare/adapter/database/gorm/mysql"
	_ "github.com/tigerroll/sqlcompare/pkg/compare/adapter/database/gorm/postgres"
	_ "github.com/tigerroll/sqlcompare/pkg/compare/adapter/database/gorm/sqlite"
	_ "github.com/tigerroll/sqlcompare/pkg/compare/adapter/database/gorm/sqlserver"
	_ "github.com/tigerroll/sqlcompare/pkg/compare/adapter/database/snowflake"
	_ "github.com/tigerroll/sqlcompare/pkg/compare/adapter/database/sqlserver"
	_ "github.com/tigerroll/sqlcompare/pkg/compare/adapter/storage/gcs"
	_ "github.com/tigerroll/sqlcompare/pkg/compare/adapter/storage/local"
	_ "github.com/tigerroll/sqlcompare/pkg/compare/adapter/storage/s3"
	"github.com/tigerroll/sqlcompare/pkg/compare/support/util/logger"
)

// embeddedConfig is the configuration used when --config is not given.
//
//go:embed resources/application.yaml
var embeddedConfig []byte

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		logger.Warnf("Received signal '%v'. Cancelling running queries...", sig)
		cancel()
	}()

	code := execute(ctx, os.Args[1:])
	cancel()
	os.Exit(code)
}
