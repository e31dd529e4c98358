package postgres_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	dbconfig "github.com/tigerroll/sqlcompare/pkg/compare/adapter/database/config"
	"github.com/tigerroll/sqlcompare/pkg/compare/adapter/database/gorm/postgres"
)

func TestConnectionString(t *testing.T) {
	dsn := postgres.ConnectionString(dbconfig.DatabaseConfig{
		Server:   "results.internal",
		Database: "sqlcompare",
		Username: "runner",
		Password: "pw",
		Schema:   "runs",
	})
	assert.Equal(t, "host=results.internal port=5432 user=runner password=pw dbname=sqlcompare sslmode=disable search_path=runs", dsn)
}
