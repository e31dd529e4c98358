package sqlserver_test

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/tigerroll/sqlcompare/pkg/compare/adapter/database"
	dbconfig "github.com/tigerroll/sqlcompare/pkg/compare/adapter/database/config"
	"github.com/tigerroll/sqlcompare/pkg/compare/adapter/database/sqlserver"
	"github.com/tigerroll/sqlcompare/pkg/compare/core/domain/model"
	"github.com/tigerroll/sqlcompare/pkg/compare/support/util/exception"
)

func mockOpener(t *testing.T) (sqlserver.Opener, sqlmock.Sqlmock) {
	sqlDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	return func(cfg dbconfig.DatabaseConfig) (*gorm.DB, error) {
		return gorm.Open(mysql.New(mysql.Config{
			Conn:                      sqlDB,
			SkipInitializeWithVersion: true,
		}), &gorm.Config{DisableAutomaticPing: true})
	}, mock
}

func TestConnection_ConnectAndDisconnect(t *testing.T) {
	open, mock := mockOpener(t)
	mock.ExpectPing()
	mock.ExpectClose()

	conn := sqlserver.NewConnectionWithOpener("sql_server_source", dbconfig.DatabaseConfig{Server: "db.internal"}, open)
	assert.Equal(t, model.PlatformSQLServer, conn.Platform())
	assert.Equal(t, "sql_server_source", conn.Name())

	db, err := conn.Connect(context.Background())
	require.NoError(t, err)
	require.NotNil(t, db)

	assert.NoError(t, conn.Disconnect())
	assert.NoError(t, conn.Disconnect(), "second disconnect is a no-op")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConnection_DisconnectWithoutConnect(t *testing.T) {
	conn := sqlserver.NewConnection("sql_server_source", dbconfig.DatabaseConfig{Server: "db.internal"})
	assert.NoError(t, conn.Disconnect())
}

func TestConnection_PingFailure(t *testing.T) {
	open, mock := mockOpener(t)
	mock.ExpectPing().WillReturnError(errors.New("login failed for user 'reporter'"))
	mock.ExpectClose()

	conn := sqlserver.NewConnectionWithOpener("sql_server_source", dbconfig.DatabaseConfig{Server: "db.internal"}, open)
	_, err := conn.Connect(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, exception.ErrConnection)
	assert.Contains(t, err.Error(), "login failed")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConnection_OpenFailure(t *testing.T) {
	open := func(cfg dbconfig.DatabaseConfig) (*gorm.DB, error) {
		return nil, errors.New("dial tcp: connection refused")
	}
	conn := sqlserver.NewConnectionWithOpener("sql_server_source", dbconfig.DatabaseConfig{Server: "db.internal"}, open)

	_, err := conn.Connect(context.Background())
	assert.True(t, exception.IsKind(err, exception.KindConnection))
}

func TestConnection_RegisteredBuilder(t *testing.T) {
	builder, err := database.GetConnectionBuilder("sqlserver")
	require.NoError(t, err)

	conn, err := builder("src", dbconfig.DatabaseConfig{Type: "sqlserver", Server: "db.internal"})
	require.NoError(t, err)
	assert.Equal(t, model.PlatformSQLServer, conn.Platform())
}
