package database

import "go.uber.org/fx"

// Module provides the configuration-backed ConnectionFactory.
// The sqlserver and snowflake adapter packages must be imported for their builders to register.
var Module = fx.Options(
	fx.Provide(fx.Annotate(
		NewConfigFactory,
		fx.As(new(ConnectionFactory)),
	)),
)
