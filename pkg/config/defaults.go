package config

import "time"

// Transform defaults.
const (
	DefaultTarget          = "defaultOptions"
	DefaultField           = "label"
	DefaultKeyTemplate     = "workspace.system_keyboard_%s"
	DefaultBinding         = "newIndependentObject"
	DefaultDeclarationKind = "const"
)

// Translator defaults.
const (
	DefaultEndpoint = "http://api.fanyi.baidu.com/api/trans/vip/translate"
	DefaultFrom     = "zh"
	DefaultTo       = "en"
	DefaultTimeout  = 10 * time.Second
	DefaultDelay    = time.Second
)

// Output defaults.
const (
	QuoteDouble = "double"
	QuoteSingle = "single"

	DefaultQuote  = QuoteDouble
	DefaultIndent = 2
)

// Input and logging defaults.
const (
	DefaultMaxInputSize = "4MB"
	DefaultLogLevel     = "info"
)
