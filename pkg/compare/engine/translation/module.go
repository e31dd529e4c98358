package translation

import "go.uber.org/fx"

// Module provides the Translator.
var Module = fx.Options(
	fx.Provide(NewTranslator),
)
