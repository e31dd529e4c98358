// Package sqlserver registers the SQL Server dialector with the GORM adapter.
package sqlserver

import (
	"fmt"
	"sort"
	"strings"

	"gorm.io/driver/sqlserver"
	"gorm.io/gorm"

	dbconfig "github.com/tigerroll/sqlcompare/pkg/compare/adapter/database/config"
	gormadapter "github.com/tigerroll/sqlcompare/pkg/compare/adapter/database/gorm"
)

// DefaultPort is the SQL Server port used when none is configured.
const DefaultPort = 1433

func init() {
	gormadapter.RegisterDialector("sqlserver", func(cfg dbconfig.DatabaseConfig) (gorm.Dialector, error) {
		if cfg.Server == "" {
			return nil, fmt.Errorf("SQL Server host cannot be empty")
		}
		return sqlserver.Open(ConnectionString(cfg)), nil
	})
}

// ConnectionString builds an ADO-style connection string for go-mssqldb.
// Credentials are included only when both user name and password are set; otherwise
// integrated (trusted) authentication is requested.
func ConnectionString(c dbconfig.DatabaseConfig) string {
	port := c.Port
	if port == 0 {
		port = DefaultPort
	}
	parts := []string{
		"server=" + c.Server,
		fmt.Sprintf("port=%d", port),
	}
	if c.Database != "" {
		parts = append(parts, "database="+c.Database)
	}
	if c.HasCredentials() {
		parts = append(parts, "user id="+c.Username, "password="+c.Password)
	} else {
		parts = append(parts, "trusted_connection=yes")
	}
	if c.AppName != "" {
		parts = append(parts, "app name="+c.AppName)
	}
	keys := make([]string, 0, len(c.Params))
	for k := range c.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		parts = append(parts, k+"="+c.Params[k])
	}
	return strings.Join(parts, ";")
}
