// Package gorm opens GORM handles for configured connections through a registry of dialectors.
// Dialect packages (sqlite, postgres, mysql, sqlserver) register themselves from init.
package gorm

import (
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
	"gorm.io/gorm"

	dbconfig "github.com/tigerroll/sqlcompare/pkg/compare/adapter/database/config"
	"github.com/tigerroll/sqlcompare/pkg/compare/core/config"
	"github.com/tigerroll/sqlcompare/pkg/compare/support/util/logger"
)

// DialectorFactory generates a gorm.Dialector from a dbconfig.DatabaseConfig.
type DialectorFactory func(cfg dbconfig.DatabaseConfig) (gorm.Dialector, error)

var (
	dialectorRegistry = make(map[string]DialectorFactory)
	dialectorMutex    sync.RWMutex
)

// RegisterDialector registers a DialectorFactory for the given database type.
func RegisterDialector(dbType string, factory DialectorFactory) {
	dialectorMutex.Lock()
	defer dialectorMutex.Unlock()
	if _, exists := dialectorRegistry[dbType]; exists {
		logger.Warnf("Dialector for type '%s' already registered. Overwriting.", dbType)
	}
	dialectorRegistry[dbType] = factory
}

// GetDialectorFactory retrieves the DialectorFactory corresponding to the specified DB type.
func GetDialectorFactory(dbType string) (DialectorFactory, error) {
	dialectorMutex.RLock()
	defer dialectorMutex.RUnlock()
	factory, ok := dialectorRegistry[dbType]
	if !ok {
		return nil, fmt.Errorf("no dialector registered for database type: %s", dbType)
	}
	return factory, nil
}

// Open establishes a GORM connection for dbCfg and applies its pool settings.
func Open(dbCfg dbconfig.DatabaseConfig) (*gorm.DB, error) {
	factory, err := GetDialectorFactory(dbCfg.Type)
	if err != nil {
		return nil, err
	}
	dialector, err := factory(dbCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create dialector for %s: %w", dbCfg.Type, err)
	}
	return OpenDialector(dialector, dbCfg.Pool)
}

// OpenDialector opens dialector with the package's GORM settings.
func OpenDialector(dialector gorm.Dialector, pool dbconfig.PoolConfig) (*gorm.DB, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: NewGormLogger(GormLogLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open GORM connection: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	if pool.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(pool.MaxOpenConns)
	}
	if pool.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(pool.MaxIdleConns)
	}
	if pool.ConnMaxLifetimeMinutes > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(pool.ConnMaxLifetimeMinutes) * time.Minute)
	}
	return db, nil
}

// Provider caches GORM handles by connection name.
// It serves long-lived connections such as the results database.
type Provider struct {
	cfg  *config.Config
	open func(dbconfig.DatabaseConfig) (*gorm.DB, error)

	mu  sync.RWMutex
	dbs map[string]*gorm.DB
}

// NewProvider creates a Provider reading connection settings from cfg.
func NewProvider(cfg *config.Config) *Provider {
	return &Provider{cfg: cfg, open: Open, dbs: make(map[string]*gorm.DB)}
}

// NewProviderWithOpener creates a Provider that opens handles with open instead of Open.
func NewProviderWithOpener(cfg *config.Config, open func(dbconfig.DatabaseConfig) (*gorm.DB, error)) *Provider {
	return &Provider{cfg: cfg, open: open, dbs: make(map[string]*gorm.DB)}
}

// Settings returns the decoded settings of the named connection.
func (p *Provider) Settings(name string) (dbconfig.DatabaseConfig, error) {
	raw, ok := p.cfg.Connection(name)
	if !ok {
		return dbconfig.DatabaseConfig{}, fmt.Errorf("database configuration '%s' not found in connections", name)
	}
	return dbconfig.Decode(raw)
}

// GetDB retrieves an existing handle or establishes a new one.
func (p *Provider) GetDB(name string) (*gorm.DB, error) {
	p.mu.RLock()
	db, ok := p.dbs[name]
	p.mu.RUnlock()
	if ok {
		return db, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if db, ok = p.dbs[name]; ok {
		return db, nil
	}
	return p.createAndStore(name)
}

func (p *Provider) createAndStore(name string) (*gorm.DB, error) {
	dbCfg, err := p.Settings(name)
	if err != nil {
		return nil, err
	}
	db, err := p.open(dbCfg)
	if err != nil {
		return nil, err
	}
	p.dbs[name] = db
	logger.Infof("Established new DB connection: %s (%s)", name, dbCfg.Type)
	return db, nil
}

// ForceReconnect closes the cached handle of name, if any, and opens a new one.
func (p *Provider) ForceReconnect(name string) (*gorm.DB, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if existing, ok := p.dbs[name]; ok {
		if err := closeGorm(existing); err != nil {
			logger.Warnf("Failed to close existing connection '%s' before reconnect: %v", name, err)
		}
		delete(p.dbs, name)
	}
	db, err := p.createAndStore(name)
	if err != nil {
		return nil, err
	}
	logger.Infof("Re-established DB connection: %s", name)
	return db, nil
}

// CloseAll closes every cached handle.
func (p *Provider) CloseAll() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var result *multierror.Error
	for name, db := range p.dbs {
		if err := closeGorm(db); err != nil {
			logger.Errorf("Failed to close connection '%s': %v", name, err)
			result = multierror.Append(result, fmt.Errorf("close %s: %w", name, err))
		}
		delete(p.dbs, name)
	}
	return result.ErrorOrNil()
}

func closeGorm(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
