package gorm

import (
	"strings"
	"time"

	gormlogger "gorm.io/gorm/logger"

	"github.com/tigerroll/sqlcompare/pkg/compare/support/util/logger"
)

// GormLogLevel is the level applied to every GORM handle opened by this package.
var GormLogLevel = "WARN"

// GormWriter routes GORM's log output into the application logger.
type GormWriter struct{}

// Printf implements gormlogger.Writer.
func (GormWriter) Printf(format string, args ...interface{}) {
	logger.Debugf("[gorm] "+format, args...)
}

// NewGormLogger builds a GORM logger writing through GormWriter at the given level
// ("SILENT", "ERROR", "WARN", "INFO"; anything else means WARN).
func NewGormLogger(level string) gormlogger.Interface {
	return gormlogger.New(GormWriter{}, gormlogger.Config{
		SlowThreshold:             2 * time.Second,
		LogLevel:                  gormLevel(level),
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}

func gormLevel(level string) gormlogger.LogLevel {
	switch strings.ToUpper(level) {
	case "SILENT":
		return gormlogger.Silent
	case "ERROR":
		return gormlogger.Error
	case "INFO", "DEBUG":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}
