package watcher

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/fsnotify/fsnotify"

	"tracked/internal/event"
	"tracked/internal/logging"
)

// Event represents a single filesystem change.
type Event struct {
	Path      string
	Op        fsnotify.Op
	Timestamp time.Time
}

// Handle releases watcher resources for a registration.
type Handle interface {
	Close() error
}

// Watch registers a callback for filesystem events on a path.
type Watch interface {
	Watch(path string, callback func(Event)) (Handle, error)
}

// Options controls watcher behavior.
type Options struct {
	Logger     *logging.Logger
	Debounce   time.Duration
	MaxWatches int
	// Clock drives debouncing and event timestamps.
	Clock clock.Clock
}

// Metrics is a point-in-time view of watcher activity.
type Metrics struct {
	ActiveWatches   int
	EventsDelivered uint64
	EventsCoalesced uint64
	Errors          uint64
}

// Watcher is the concrete fsnotify-backed implementation.
type Watcher struct {
	watcher    *fsnotify.Watcher
	clock      clock.Clock
	mutex      sync.Mutex
	callbacks  map[string][]callbackEntry
	debouncer  *debouncer
	events     chan fsnotify.Event
	errors     chan error
	done       chan struct{}
	closed     bool
	logger     *logging.Logger
	maxWatches int
	nextID     uint64

	activeWatches int

	// failures is only touched under failuresMu; its listeners run there too.
	failuresMu    sync.Mutex
	failures      *event.Notifier1[*Watcher, error]
	reportFailure *event.Trigger1[*Watcher, error]

	eventsDelivered atomic.Uint64
	eventsCoalesced atomic.Uint64
	errorCount      atomic.Uint64
}
