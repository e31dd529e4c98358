package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/hashicorp/go-multierror"

	storageConfig "github.com/tigerroll/sqlcompare/pkg/compare/adapter/storage/config"
	"github.com/tigerroll/sqlcompare/pkg/compare/core/config"
	"github.com/tigerroll/sqlcompare/pkg/compare/support/util/exception"
	"github.com/tigerroll/sqlcompare/pkg/compare/support/util/logger"
)

// AdapterBuilder creates a StorageConnection named name from cfg.
type AdapterBuilder func(ctx context.Context, name string, cfg storageConfig.StorageConfig) (StorageConnection, error)

var (
	adapterRegistry = make(map[string]AdapterBuilder)
	adapterMutex    sync.RWMutex
)

// RegisterAdapter registers the builder of a storage type.
func RegisterAdapter(storageType string, builder AdapterBuilder) {
	adapterMutex.Lock()
	defer adapterMutex.Unlock()
	if _, exists := adapterRegistry[storageType]; exists {
		logger.Warnf("Storage adapter for type '%s' already registered. Overwriting.", storageType)
	}
	adapterRegistry[storageType] = builder
}

func adapterBuilder(storageType string) (AdapterBuilder, bool) {
	adapterMutex.RLock()
	defer adapterMutex.RUnlock()
	b, ok := adapterRegistry[storageType]
	return b, ok
}

// ConfigResolver resolves storage connections from the "storage" section of the
// configuration and caches them by name.
type ConfigResolver struct {
	cfg *config.Config

	mu    sync.Mutex
	conns map[string]StorageConnection
}

// NewConfigResolver creates a ConfigResolver.
func NewConfigResolver(cfg *config.Config) *ConfigResolver {
	return &ConfigResolver{cfg: cfg, conns: make(map[string]StorageConnection)}
}

var _ StorageConnectionResolver = (*ConfigResolver)(nil)

// ResolveStorageConnection returns the cached connection of name or creates it.
func (r *ConfigResolver) ResolveStorageConnection(ctx context.Context, name string) (StorageConnection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if conn, ok := r.conns[name]; ok {
		return conn, nil
	}

	raw, ok := r.cfg.StorageSettings(name)
	if !ok {
		return nil, exception.NewConfigurationError(fmt.Sprintf("storage connection '%s' not found in configuration", name), nil)
	}
	sc, err := storageConfig.Decode(raw)
	if err != nil {
		return nil, exception.NewConfigurationError(fmt.Sprintf("invalid storage configuration '%s'", name), err)
	}
	builder, ok := adapterBuilder(sc.Type)
	if !ok {
		return nil, exception.NewConfigurationError(fmt.Sprintf("no storage adapter registered for type '%s' (storage '%s')", sc.Type, name), nil)
	}
	conn, err := builder(ctx, name, sc)
	if err != nil {
		return nil, exception.NewConfigurationError(fmt.Sprintf("failed to create storage connection '%s'", name), err)
	}
	r.conns[name] = conn
	logger.Debugf("Created storage connection '%s' (%s).", name, sc.Type)
	return conn, nil
}

// CloseAll closes every cached connection.
func (r *ConfigResolver) CloseAll() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result *multierror.Error
	for name, conn := range r.conns {
		if err := conn.Close(); err != nil {
			result = multierror.Append(result, fmt.Errorf("close storage %s: %w", name, err))
		}
		delete(r.conns, name)
	}
	return result.ErrorOrNil()
}
