package analysis

import "go.uber.org/fx"

// Module provides the Comparator.
var Module = fx.Options(
	fx.Provide(NewComparator),
)
