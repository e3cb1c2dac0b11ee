package metrics

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

type Registry struct {
	frames           atomic.Int64
	frameOverruns    atomic.Int64
	teardownSteps    atomic.Int64
	teardownFailures atomic.Int64
	resources        sync.Map
}

type resourceStats struct {
	reloads       atomic.Int64
	failures      atomic.Int64
	unchanged     atomic.Int64
	durationNanos atomic.Int64
}

var Default = &Registry{}

// IncFrames counts one frame tick delivered by the loop.
func (r *Registry) IncFrames() {
	if r == nil {
		return
	}
	r.frames.Add(1)
}

// IncFrameOverruns counts ticks dropped because a frame ran long.
func (r *Registry) IncFrameOverruns() {
	if r == nil {
		return
	}
	r.frameOverruns.Add(1)
}

func (r *Registry) RecordTeardownStep(err error) {
	if r == nil {
		return
	}
	r.teardownSteps.Add(1)
	if err != nil {
		r.teardownFailures.Add(1)
	}
}

// RecordReload records one reload attempt of the named resource. A reload
// that succeeded without changing the content counts as unchanged.
func (r *Registry) RecordReload(name string, duration time.Duration, changed bool, err error) {
	if r == nil {
		return
	}
	if strings.TrimSpace(name) == "" {
		name = "unknown"
	}
	stats := r.resourceStats(name)
	stats.durationNanos.Add(duration.Nanoseconds())
	switch {
	case err != nil:
		stats.failures.Add(1)
	case changed:
		stats.reloads.Add(1)
	default:
		stats.unchanged.Add(1)
	}
}

// Frames returns the number of frame ticks recorded so far.
func (r *Registry) Frames() int64 {
	if r == nil {
		return 0
	}
	return r.frames.Load()
}

func (r *Registry) FrameOverruns() int64 {
	if r == nil {
		return 0
	}
	return r.frameOverruns.Load()
}

// Reloads returns the successful and failed reload counts for name.
func (r *Registry) Reloads(name string) (succeeded, failed int64) {
	if r == nil {
		return 0, 0
	}
	value, ok := r.resources.Load(name)
	if !ok {
		return 0, 0
	}
	stats := value.(*resourceStats)
	return stats.reloads.Load(), stats.failures.Load()
}

func (r *Registry) WritePrometheus(writer io.Writer) error {
	if r == nil {
		return nil
	}

	writeCounter(writer, "tracked_frames_total", "Total frame ticks delivered", r.frames.Load())
	writeCounter(writer, "tracked_frame_overruns_total", "Frame ticks dropped while a frame was running", r.frameOverruns.Load())
	writeCounter(writer, "tracked_teardown_steps_total", "Teardown steps run", r.teardownSteps.Load())
	writeCounter(writer, "tracked_teardown_failures_total", "Teardown steps that returned an error", r.teardownFailures.Load())

	names := r.resourceNames()
	sort.Strings(names)

	writeHelp(writer, "tracked_resource_reload_seconds", "Resource reload duration in seconds")
	fmt.Fprintln(writer, "# TYPE tracked_resource_reload_seconds summary")
	writeHelp(writer, "tracked_resource_reloads_total", "Resource reloads that published a new snapshot")
	fmt.Fprintln(writer, "# TYPE tracked_resource_reloads_total counter")
	writeHelp(writer, "tracked_resource_reload_failures_total", "Resource reloads that failed")
	fmt.Fprintln(writer, "# TYPE tracked_resource_reload_failures_total counter")
	writeHelp(writer, "tracked_resource_reload_unchanged_total", "Resource reloads with identical content")
	fmt.Fprintln(writer, "# TYPE tracked_resource_reload_unchanged_total counter")

	for _, name := range names {
		stats := r.resourceStats(name)
		label := formatLabel(name)
		attempts := stats.reloads.Load() + stats.failures.Load() + stats.unchanged.Load()
		durationSeconds := float64(stats.durationNanos.Load()) / float64(time.Second)
		fmt.Fprintf(writer, "tracked_resource_reload_seconds_sum{resource=%s} %.6f\n", label, durationSeconds)
		fmt.Fprintf(writer, "tracked_resource_reload_seconds_count{resource=%s} %d\n", label, attempts)
		fmt.Fprintf(writer, "tracked_resource_reloads_total{resource=%s} %d\n", label, stats.reloads.Load())
		fmt.Fprintf(writer, "tracked_resource_reload_failures_total{resource=%s} %d\n", label, stats.failures.Load())
		fmt.Fprintf(writer, "tracked_resource_reload_unchanged_total{resource=%s} %d\n", label, stats.unchanged.Load())
	}

	return nil
}

func (r *Registry) resourceStats(name string) *resourceStats {
	value, _ := r.resources.LoadOrStore(name, &resourceStats{})
	return value.(*resourceStats)
}

func (r *Registry) resourceNames() []string {
	if r == nil {
		return nil
	}
	var names []string
	r.resources.Range(func(key, value interface{}) bool {
		if name, ok := key.(string); ok {
			names = append(names, name)
		}
		return true
	})
	return names
}

func writeHelp(writer io.Writer, metric, help string) {
	fmt.Fprintf(writer, "# HELP %s %s\n", metric, help)
}

func writeCounter(writer io.Writer, metric, help string, value int64) {
	writeHelp(writer, metric, help)
	fmt.Fprintf(writer, "# TYPE %s counter\n", metric)
	fmt.Fprintf(writer, "%s %d\n", metric, value)
}

func formatLabel(value string) string {
	escaped := strings.ReplaceAll(value, "\\", "\\\\")
	escaped = strings.ReplaceAll(escaped, "\"", "\\\"")
	return fmt.Sprintf("\"%s\"", escaped)
}
