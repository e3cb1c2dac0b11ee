package watcher

import (
	"time"

	"github.com/benbjohnson/clock"
	"github.com/fsnotify/fsnotify"
)

type pendingEvent struct {
	timer *clock.Timer
	event Event
}

// debouncer holds the latest event per path until the path has been quiet
// for quiet. It is guarded by the watcher mutex.
type debouncer struct {
	clock   clock.Clock
	quiet   time.Duration
	pending map[string]pendingEvent
}

func newDebouncer(clk clock.Clock, quiet time.Duration) *debouncer {
	return &debouncer{
		clock:   clk,
		quiet:   quiet,
		pending: make(map[string]pendingEvent),
	}
}

// schedule records event for path and restarts its quiet period. It reports
// whether an earlier event for the path was replaced.
func (d *debouncer) schedule(path string, event Event, flush func(string)) (replaced bool) {
	if d == nil || d.pending == nil {
		return false
	}
	pending, replaced := d.pending[path]
	pending.event = event
	if replaced {
		pending.timer.Reset(d.quiet)
	} else {
		pending.timer = d.clock.AfterFunc(d.quiet, func() { flush(path) })
	}
	d.pending[path] = pending
	return replaced
}

func (d *debouncer) take(path string) (Event, bool) {
	if d == nil {
		return Event{}, false
	}
	pending, ok := d.pending[path]
	if !ok {
		return Event{}, false
	}
	delete(d.pending, path)
	return pending.event, true
}

func (d *debouncer) stop() {
	if d == nil {
		return
	}
	for _, pending := range d.pending {
		pending.timer.Stop()
	}
	d.pending = nil
}

func (watcher *Watcher) handleEvent(raw fsnotify.Event) {
	watcher.mutex.Lock()
	defer watcher.mutex.Unlock()
	if watcher.closed || !watcher.hasCallbacksLocked(raw.Name) {
		return
	}
	event := Event{
		Path:      raw.Name,
		Op:        raw.Op,
		Timestamp: watcher.clock.Now().UTC(),
	}
	if watcher.debouncer.schedule(raw.Name, event, watcher.flush) {
		watcher.eventsCoalesced.Add(1)
	}
}

// flush delivers the pending event for path outside the watcher lock.
func (watcher *Watcher) flush(path string) {
	watcher.mutex.Lock()
	if watcher.closed {
		watcher.mutex.Unlock()
		return
	}
	event, ok := watcher.debouncer.take(path)
	if !ok {
		watcher.mutex.Unlock()
		return
	}
	callbacks := watcher.callbacksForPathLocked(path)
	watcher.mutex.Unlock()

	for _, callback := range callbacks {
		callback(event)
	}
	watcher.eventsDelivered.Add(uint64(len(callbacks)))
}
