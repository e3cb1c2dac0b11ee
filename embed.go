package tracked

import "embed"

// EmbeddedConfigFS provides the default settings file, config/tracked.toml.
//
//go:embed config
var EmbeddedConfigFS embed.FS
