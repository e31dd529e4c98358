package gorm

import (
	"context"

	"go.uber.org/fx"
)

// NewLifecycleProvider creates a Provider whose handles are closed when the Fx app stops.
func NewLifecycleProvider(lc fx.Lifecycle, p *Provider) *Provider {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return p.CloseAll()
		},
	})
	return p
}

// Module provides the GORM Provider. Dialect packages must be imported separately.
var Module = fx.Options(
	fx.Provide(NewProvider),
	fx.Decorate(NewLifecycleProvider),
)
