// Package tomlkeys reads TOML into a flat set of dotted keys. Tables and
// dotted assignments land on the same key, and keys are compared after
// lowercasing and turning underscores into dashes.
package tomlkeys

import (
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Values maps normalized dotted keys to decoded TOML values.
type Values map[string]any

// Decode parses data and flattens it.
func Decode(data []byte) (Values, error) {
	raw := map[string]any{}
	if _, err := toml.Decode(string(data), &raw); err != nil {
		return nil, err
	}
	return Flatten(raw), nil
}

// Flatten collapses nested tables into dotted keys. When two spellings
// normalize to the same key, the one that sorts first wins.
func Flatten(raw map[string]any) Values {
	nested := make(map[string]any)
	collect("", raw, nested)

	values := make(Values, len(nested))
	for _, key := range slices.Sorted(maps.Keys(nested)) {
		normalized := NormalizeKey(key)
		if _, taken := values[normalized]; taken {
			continue
		}
		values[normalized] = nested[key]
	}
	return values
}

func collect(prefix string, table map[string]any, out map[string]any) {
	for key, value := range table {
		if prefix != "" {
			key = prefix + "." + key
		}
		if child, ok := value.(map[string]any); ok {
			collect(key, child, out)
			continue
		}
		out[key] = value
	}
}

// NormalizeKey lowercases key and replaces underscores with dashes in every
// segment. Blank keys normalize to "".
func NormalizeKey(key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return ""
	}
	return strings.ReplaceAll(strings.ToLower(key), "_", "-")
}

func (v Values) Clone() Values {
	return maps.Clone(v)
}

// Merge copies every entry of other over v.
func (v Values) Merge(other Values) {
	maps.Copy(v, other)
}

// Set stores value under the normalized key. Blank keys are ignored.
func (v Values) Set(key string, value any) bool {
	normalized := NormalizeKey(key)
	if normalized == "" {
		return false
	}
	v[normalized] = value
	return true
}

func (v Values) Lookup(key string) (any, bool) {
	value, ok := v[NormalizeKey(key)]
	return value, ok
}

func (v Values) Has(key string) bool {
	_, ok := v.Lookup(key)
	return ok
}

func (v Values) Bool(key string) (bool, bool) {
	value, _ := v.Lookup(key)
	typed, ok := value.(bool)
	return typed, ok
}

// Int accepts any integer type and floats without a fractional part.
func (v Values) Int(key string) (int64, bool) {
	value, _ := v.Lookup(key)
	return asInt(value)
}

// Float accepts floats and integers.
func (v Values) Float(key string) (float64, bool) {
	value, _ := v.Lookup(key)
	switch typed := value.(type) {
	case float64:
		return typed, true
	case float32:
		return float64(typed), true
	}
	if whole, ok := asInt(value); ok {
		return float64(whole), true
	}
	return 0, false
}

// String returns string values with surrounding space removed.
func (v Values) String(key string) (string, bool) {
	value, _ := v.Lookup(key)
	typed, ok := value.(string)
	return strings.TrimSpace(typed), ok
}

// Duration accepts a time.Duration or a string such as "250ms".
func (v Values) Duration(key string) (time.Duration, bool) {
	value, _ := v.Lookup(key)
	switch typed := value.(type) {
	case time.Duration:
		return typed, true
	case string:
		parsed, err := time.ParseDuration(strings.TrimSpace(typed))
		if err != nil {
			return 0, false
		}
		return parsed, true
	}
	return 0, false
}

func asInt(value any) (int64, bool) {
	switch typed := value.(type) {
	case int64:
		return typed, true
	case int:
		return int64(typed), true
	case int32:
		return int64(typed), true
	case int16:
		return int64(typed), true
	case int8:
		return int64(typed), true
	case uint32:
		return int64(typed), true
	case uint16:
		return int64(typed), true
	case uint8:
		return int64(typed), true
	case float64:
		if typed == float64(int64(typed)) {
			return int64(typed), true
		}
	}
	return 0, false
}
