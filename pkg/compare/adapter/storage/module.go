package storage

import (
	"context"

	"go.uber.org/fx"
)

// NewLifecycleResolver closes the resolver's connections when the Fx app stops.
func NewLifecycleResolver(lc fx.Lifecycle, r *ConfigResolver) StorageConnectionResolver {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return r.CloseAll()
		},
	})
	return r
}

// Module provides the StorageConnectionResolver. Adapter packages must be imported
// for their types to register.
var Module = fx.Options(
	fx.Provide(NewConfigResolver),
	fx.Provide(NewLifecycleResolver),
)
