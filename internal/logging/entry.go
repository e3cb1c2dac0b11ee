package logging

import (
	"maps"
	"slices"
	"strconv"
	"strings"
	"time"
)

type LogEntry struct {
	Timestamp time.Time         `json:"timestamp"`
	Level     Level             `json:"level"`
	Message   string            `json:"message"`
	Context   map[string]string `json:"context,omitempty"`
}

// String renders the entry as logfmt, context keys sorted:
//
//	level=info msg="resource reloaded" resource="route.yaml"
func (e LogEntry) String() string {
	var builder strings.Builder
	builder.WriteString("level=")
	builder.WriteString(e.Level.String())
	builder.WriteString(" msg=")
	builder.WriteString(strconv.Quote(e.Message))
	for _, key := range slices.Sorted(maps.Keys(e.Context)) {
		builder.WriteByte(' ')
		builder.WriteString(key)
		builder.WriteByte('=')
		builder.WriteString(strconv.Quote(e.Context[key]))
	}
	return builder.String()
}

// mergeFields returns base overlaid with extra, or nil when both are empty.
// Neither input is modified.
func mergeFields(base, extra map[string]string) map[string]string {
	if len(base) == 0 && len(extra) == 0 {
		return nil
	}
	merged := make(map[string]string, len(base)+len(extra))
	maps.Copy(merged, base)
	maps.Copy(merged, extra)
	return merged
}
