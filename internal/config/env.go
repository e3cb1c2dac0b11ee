package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// EnvOverrides are the settings that can be set from the environment. Zero
// values mean unset.
type EnvOverrides struct {
	ConfigPath   string        `env:"TRACKED_CONFIG"`
	ResourcesDir string        `env:"TRACKED_RESOURCES_DIR"`
	Debounce     time.Duration `env:"TRACKED_DEBOUNCE"`
	LogLevel     string        `env:"TRACKED_LOG_LEVEL"`
	Tick         time.Duration `env:"TRACKED_TICK"`
	Frames       int64         `env:"TRACKED_FRAMES"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// LoadEnvOverrides reads EnvOverrides from the environment.
func LoadEnvOverrides() (EnvOverrides, error) {
	var overrides EnvOverrides
	if err := ParseEnv(&overrides); err != nil {
		return EnvOverrides{}, err
	}
	return overrides, nil
}

// Map returns the set overrides keyed by settings key, ready for
// LoadSettings.
func (o EnvOverrides) Map() map[string]any {
	values := map[string]any{}
	if dir := strings.TrimSpace(o.ResourcesDir); dir != "" {
		values["resources.dir"] = dir
	}
	if o.Debounce > 0 {
		values["resources.debounce"] = o.Debounce
	}
	if level := strings.TrimSpace(o.LogLevel); level != "" {
		values["log.level"] = level
	}
	if o.Tick > 0 {
		values["frame.tick"] = o.Tick
	}
	if o.Frames > 0 {
		values["frame.frames"] = o.Frames
	}
	return values
}
