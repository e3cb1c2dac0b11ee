package logging

import "strings"

// Level is a log severity. It is an enumeration, so a settings cell holding
// one compares by name.
type Level string

const (
	LevelDebug   Level = "debug"
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// levels lists the known levels from least to most severe.
var levels = [...]Level{LevelDebug, LevelInfo, LevelWarning, LevelError}

func (l Level) String() string { return string(l) }

// Valid reports whether l is one of the known levels.
func (l Level) Valid() bool {
	for _, known := range levels {
		if l == known {
			return true
		}
	}
	return false
}

// rank orders levels by severity. Unknown levels rank as info.
func (l Level) rank() int {
	for index, known := range levels {
		if l == known {
			return index
		}
	}
	return 1
}

// ParseLevel accepts level names in any case; "warn" is an alias for
// warning.
func ParseLevel(value string) (Level, bool) {
	name := strings.ToLower(strings.TrimSpace(value))
	if name == "warn" {
		return LevelWarning, true
	}
	if level := Level(name); level.Valid() {
		return level, true
	}
	return "", false
}

// LevelAtLeast reports whether level passes a minLevel filter. An empty
// minimum lets everything through.
func LevelAtLeast(level, minLevel Level) bool {
	if minLevel == "" {
		return true
	}
	return level.rank() >= minLevel.rank()
}

func normalizeLevel(level Level) Level {
	if level.Valid() {
		return level
	}
	return LevelInfo
}
