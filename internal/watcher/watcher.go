package watcher

import (
	"errors"
	"maps"
	"strconv"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/fsnotify/fsnotify"

	"tracked/internal/event"

	"tracked/internal/logging"
)

const (
	defaultDebounce   = 100 * time.Millisecond
	defaultMaxWatches = 100
)

var (
	ErrMaxWatchesExceeded = errors.New("max watches exceeded")
	ErrClosed             = errors.New("watcher is closed")
)

// New creates a Watcher with default options.
func New() (*Watcher, error) {
	return NewWithOptions(Options{})
}

// NewWithOptions creates a Watcher with custom options.
func NewWithOptions(options Options) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	logger := options.Logger
	if logger == nil {
		logger = logging.NewLoggerWithOutput(logging.NewLogBuffer(logging.DefaultBufferSize), logging.LevelInfo, nil)
	}

	debounce := options.Debounce
	if debounce <= 0 {
		debounce = defaultDebounce
	}

	maxWatches := options.MaxWatches
	if maxWatches <= 0 {
		maxWatches = defaultMaxWatches
	}

	clk := options.Clock
	if clk == nil {
		clk = clock.New()
	}

	instance := &Watcher{
		watcher:    watcher,
		clock:      clk,
		callbacks:  make(map[string][]callbackEntry),
		debouncer:  newDebouncer(clk, debounce),
		events:     make(chan fsnotify.Event, 16),
		errors:     make(chan error, 4),
		done:       make(chan struct{}),
		logger:     logger,
		maxWatches: maxWatches,
	}
	instance.failures, instance.reportFailure = event.New1[*Watcher, error](instance)

	instance.startForwarder(watcher)
	go instance.run()
	return instance, nil
}

// Close shuts down the watcher and stops event processing. Pending debounced
// events are discarded.
func (watcher *Watcher) Close() error {
	if watcher == nil {
		return nil
	}

	watcher.mutex.Lock()
	if watcher.closed {
		watcher.mutex.Unlock()
		return nil
	}
	watcher.closed = true
	if watcher.debouncer != nil {
		watcher.debouncer.stop()
		watcher.debouncer = nil
	}
	watcher.mutex.Unlock()

	close(watcher.done)
	watcher.failuresMu.Lock()
	watcher.reportFailure.Dispose()
	watcher.failuresMu.Unlock()
	if watcher.watcher == nil {
		return nil
	}
	return watcher.watcher.Close()
}

func (watcher *Watcher) run() {
	for {
		select {
		case event := <-watcher.events:
			watcher.handleEvent(event)
		case err := <-watcher.errors:
			watcher.handleError(err)
		case <-watcher.done:
			return
		}
	}
}

func (watcher *Watcher) startForwarder(source *fsnotify.Watcher) {
	if source == nil {
		return
	}

	go func() {
		for {
			select {
			case event, ok := <-source.Events:
				if !ok {
					return
				}
				select {
				case watcher.events <- event:
				case <-watcher.done:
					return
				}
			case err, ok := <-source.Errors:
				if !ok {
					return
				}
				select {
				case watcher.errors <- err:
				case <-watcher.done:
					return
				}
			case <-watcher.done:
				return
			}
		}
	}()
}

func (watcher *Watcher) handleError(err error) {
	if err == nil {
		return
	}
	watcher.errorCount.Add(1)
	watcher.logWarn("watcher error", map[string]string{
		"error": err.Error(),
	})
	watcher.failuresMu.Lock()
	defer watcher.failuresMu.Unlock()
	watcher.reportFailure.Invoke(err)
}

// OnError calls fn with every error fsnotify reports. fn runs on the
// watcher's goroutine and must not call OnError. The returned func
// unsubscribes.
func (watcher *Watcher) OnError(fn func(err error)) (cancel func()) {
	if watcher == nil || fn == nil {
		return func() {}
	}
	listener := event.Func1(func(_ *Watcher, err error) { fn(err) })
	watcher.failuresMu.Lock()
	watcher.failures.Subscribe(listener)
	watcher.failuresMu.Unlock()
	return func() {
		watcher.failuresMu.Lock()
		watcher.failures.Unsubscribe(listener)
		watcher.failuresMu.Unlock()
	}
}

func (watcher *Watcher) logWarn(message string, fields map[string]string) {
	if watcher == nil || watcher.logger == nil {
		return
	}
	watcher.logger.Warn(message, withWatcherFields(fields))
}

func (watcher *Watcher) logDebug(message, path string, activeCount int) {
	if watcher == nil || watcher.logger == nil {
		return
	}
	fields := map[string]string{
		"path":           path,
		"active_watches": strconv.Itoa(activeCount),
	}
	watcher.logger.Debug(message, withWatcherFields(fields))
}

func withWatcherFields(fields map[string]string) map[string]string {
	merged := make(map[string]string, len(fields)+1)
	maps.Copy(merged, fields)
	merged["component"] = "watcher"
	return merged
}

// Metrics reports current watcher stats.
func (watcher *Watcher) Metrics() Metrics {
	if watcher == nil {
		return Metrics{}
	}
	watcher.mutex.Lock()
	active := watcher.activeWatches
	watcher.mutex.Unlock()
	return Metrics{
		ActiveWatches:   active,
		EventsDelivered: watcher.eventsDelivered.Load(),
		EventsCoalesced: watcher.eventsCoalesced.Load(),
		Errors:          watcher.errorCount.Load(),
	}
}
