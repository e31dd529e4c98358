package execution

import "go.uber.org/fx"

// Module provides the Executor.
var Module = fx.Options(
	fx.Provide(NewExecutor),
)
