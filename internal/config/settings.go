package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"tracked/internal/config/tomlkeys"
	"tracked/internal/logging"
)

const DefaultsPath = "config/tracked.toml"

type Settings struct {
	Resources ResourceSettings
	Log       LogSettings
	Frame     FrameSettings
	Motion    MotionSettings
	Camera    CameraSettings
}

type ResourceSettings struct {
	Dir          string
	Debounce     time.Duration
	PollInterval time.Duration
	HistorySize  int64
}

type LogSettings struct {
	Level      logging.Level
	BufferSize int64
}

type FrameSettings struct {
	Tick   time.Duration
	Frames int64
}

// MotionSettings tune a mover. Speeds are per second, angles in degrees.
type MotionSettings struct {
	MoveSpeed      float64
	RotateSpeed    float64
	AccelerateTime float64
	StopAngle      float64
}

type CameraSettings struct {
	PivotHeight        float64
	RotateSensitivity  float64
	ElevateSensitivity float64
	StartHeight        float64
}

// LoadSettings layers the settings file at path over the embedded defaults,
// then applies overrides. A missing file is not an error.
func LoadSettings(path string, defaultsPayload []byte, overrides map[string]any) (Settings, error) {
	defaults, err := tomlkeys.Decode(defaultsPayload)
	if err != nil {
		return Settings{}, fmt.Errorf("decode defaults: %w", err)
	}
	values := defaults.Clone()

	if strings.TrimSpace(path) != "" {
		payload, err := os.ReadFile(path)
		switch {
		case err == nil:
			file, err := tomlkeys.Decode(payload)
			if err != nil {
				return Settings{}, fmt.Errorf("decode %s: %w", path, err)
			}
			values.Merge(file)
		case !os.IsNotExist(err):
			return Settings{}, err
		}
	}

	for key, value := range overrides {
		values.Set(key, value)
	}

	settings := Settings{}

	settings.Resources.Dir = stringSetting(values, "resources.dir", "")
	settings.Resources.Debounce = durationSetting(values, "resources.debounce", 0)
	settings.Resources.PollInterval = durationSetting(values, "resources.poll-interval", 0)
	settings.Resources.HistorySize = intSetting(values, "resources.history-size", 0)
	settings.Log.Level = levelSetting(values, "log.level", "")
	settings.Log.BufferSize = intSetting(values, "log.buffer-size", 0)
	settings.Frame.Tick = durationSetting(values, "frame.tick", 0)
	settings.Frame.Frames = intSetting(values, "frame.frames", -1)
	settings.Motion.MoveSpeed = floatSetting(values, "motion.move-speed", 0)
	settings.Motion.RotateSpeed = floatSetting(values, "motion.rotate-speed", 0)
	settings.Motion.AccelerateTime = floatSetting(values, "motion.accelerate-time", 0)
	settings.Motion.StopAngle = floatSetting(values, "motion.stop-angle", 0)
	settings.Camera.PivotHeight = floatSetting(values, "camera.pivot-height", 0)
	settings.Camera.RotateSensitivity = floatSetting(values, "camera.rotate-sensitivity", 0)
	settings.Camera.ElevateSensitivity = floatSetting(values, "camera.elevate-sensitivity", 0)
	settings.Camera.StartHeight = floatSetting(values, "camera.start-height", -1)

	return normalizeSettings(settings, defaults), nil
}

// normalizeSettings replaces values that cannot be used with the defaults.
func normalizeSettings(settings Settings, defaults tomlkeys.Values) Settings {
	if settings.Resources.Dir == "" {
		settings.Resources.Dir = stringSetting(defaults, "resources.dir", "resources")
	}
	if settings.Resources.Debounce < 0 {
		settings.Resources.Debounce = durationSetting(defaults, "resources.debounce", 0)
	}
	if settings.Resources.PollInterval < 0 {
		settings.Resources.PollInterval = durationSetting(defaults, "resources.poll-interval", 0)
	}
	if settings.Resources.HistorySize <= 0 {
		settings.Resources.HistorySize = intSetting(defaults, "resources.history-size", 1)
	}
	if settings.Log.Level == "" {
		settings.Log.Level = levelSetting(defaults, "log.level", logging.LevelInfo)
	}
	if settings.Log.BufferSize <= 0 {
		settings.Log.BufferSize = intSetting(defaults, "log.buffer-size", logging.DefaultBufferSize)
	}
	if settings.Frame.Tick <= 0 {
		settings.Frame.Tick = durationSetting(defaults, "frame.tick", 16*time.Millisecond)
	}
	if settings.Frame.Frames < 0 {
		settings.Frame.Frames = intSetting(defaults, "frame.frames", 0)
	}
	if settings.Motion.MoveSpeed <= 0 {
		settings.Motion.MoveSpeed = floatSetting(defaults, "motion.move-speed", 1)
	}
	if settings.Motion.RotateSpeed <= 0 {
		settings.Motion.RotateSpeed = floatSetting(defaults, "motion.rotate-speed", 360)
	}
	if settings.Motion.AccelerateTime <= 0 {
		settings.Motion.AccelerateTime = floatSetting(defaults, "motion.accelerate-time", 0.5)
	}
	if settings.Motion.StopAngle <= 0 {
		settings.Motion.StopAngle = floatSetting(defaults, "motion.stop-angle", 45)
	}
	if settings.Camera.RotateSensitivity == 0 {
		settings.Camera.RotateSensitivity = floatSetting(defaults, "camera.rotate-sensitivity", 1)
	}
	if settings.Camera.ElevateSensitivity == 0 {
		settings.Camera.ElevateSensitivity = floatSetting(defaults, "camera.elevate-sensitivity", 1)
	}
	if settings.Camera.StartHeight < 0 || settings.Camera.StartHeight > 1 {
		settings.Camera.StartHeight = floatSetting(defaults, "camera.start-height", 0.5)
	}
	return settings
}

func intSetting(values tomlkeys.Values, key string, fallback int64) int64 {
	if parsed, ok := values.Int(key); ok {
		return parsed
	}
	return fallback
}

func floatSetting(values tomlkeys.Values, key string, fallback float64) float64 {
	if parsed, ok := values.Float(key); ok {
		return parsed
	}
	return fallback
}

func stringSetting(values tomlkeys.Values, key string, fallback string) string {
	if parsed, ok := values.String(key); ok {
		return parsed
	}
	return fallback
}

func durationSetting(values tomlkeys.Values, key string, fallback time.Duration) time.Duration {
	if parsed, ok := values.Duration(key); ok {
		return parsed
	}
	return fallback
}

func levelSetting(values tomlkeys.Values, key string, fallback logging.Level) logging.Level {
	value, _ := values.Lookup(key)
	var raw string
	switch typed := value.(type) {
	case logging.Level:
		raw = string(typed)
	case string:
		raw = typed
	default:
		return fallback
	}
	if parsed, ok := logging.ParseLevel(raw); ok {
		return parsed
	}
	return fallback
}
