package resource

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"

	"tracked/internal/buffer"
	"tracked/internal/event"
	"tracked/internal/logging"
	"tracked/internal/metrics"
	"tracked/internal/observable"
)

const defaultHistorySize = 8

var (
	ErrNoPath  = errors.New("resource path is required")
	ErrClosed  = errors.New("resource is closed")
	ErrDecoder = errors.New("resource decoder is required")
)

// Revision identifies one loaded version of a file.
type Revision struct {
	ID       string
	Checksum string
	LoadedAt time.Time
}

// Snapshot is an immutable loaded version of a file. A new pointer is
// published for every content change.
type Snapshot[T any] struct {
	Revision
	Data T
}

type Options struct {
	Logger      *logging.Logger
	Metrics     *metrics.Registry
	Clock       clock.Clock
	HistorySize int
}

type fileStat struct {
	modTime time.Time
	size    int64
}

// File is a typed resource backed by one file. It is safe for concurrent
// use: reloads are serialized, and the observable state is only touched
// under the file's lock.
type File[T any] struct {
	name    string
	path    string
	decode  Decoder[T]
	logger  *logging.Logger
	metrics *metrics.Registry
	clock   clock.Clock

	mu         sync.Mutex
	current    *observable.Value[*File[T], *Snapshot[T]]
	setCurrent *observable.Control[*Snapshot[T]]
	ready      *observable.Value[*File[T], bool]
	setReady   *observable.Control[bool]
	refreshed  *event.Notifier1[*File[T], *Snapshot[T]]
	refresh    *event.Trigger1[*File[T], *Snapshot[T]]
	history    *buffer.Ring[Revision]
	lastStat   fileStat
	closed     bool
}

// NewFile creates a resource for path. Nothing is read until Reload or Poll.
func NewFile[T any](path string, decode Decoder[T], options Options) (*File[T], error) {
	if path == "" {
		return nil, ErrNoPath
	}
	if decode == nil {
		return nil, ErrDecoder
	}
	historySize := options.HistorySize
	if historySize <= 0 {
		historySize = defaultHistorySize
	}
	clk := options.Clock
	if clk == nil {
		clk = clock.New()
	}
	logger := options.Logger
	if logger == nil {
		logger = logging.NewLoggerWithOutput(nil, logging.LevelInfo, nil)
	}

	file := &File[T]{
		name:    filepath.Base(path),
		path:    path,
		decode:  decode,
		logger:  logger.With(map[string]string{"resource": filepath.Base(path)}),
		metrics: options.Metrics,
		clock:   clk,
		history: buffer.NewRing[Revision](historySize),
	}
	var err error
	if file.current, file.setCurrent, err = observable.NewRef[*File[T], Snapshot[T]](file, nil); err != nil {
		return nil, fmt.Errorf("create snapshot value: %w", err)
	}
	if file.ready, file.setReady, err = observable.NewComparable(file, false); err != nil {
		return nil, fmt.Errorf("create ready value: %w", err)
	}
	file.refreshed, file.refresh = event.New1[*File[T], *Snapshot[T]](file)
	return file, nil
}

func (f *File[T]) Name() string { return f.name }

func (f *File[T]) Path() string { return f.path }

// Snapshot returns the latest loaded snapshot, or nil before the first
// successful load.
func (f *File[T]) Snapshot() *Snapshot[T] {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current.Get()
}

// Ready reports whether the file has loaded successfully at least once.
func (f *File[T]) Ready() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ready.Get()
}

// History returns the most recent revisions, oldest first.
func (f *File[T]) History() []Revision {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.history.List()
}

// OnRefresh calls fn with every newly published snapshot. fn runs on the
// goroutine performing the reload, with the file locked, so it must not call
// back into the file. The returned func unsubscribes.
func (f *File[T]) OnRefresh(fn func(snapshot *Snapshot[T])) (cancel func()) {
	listener := event.Func1(func(_ *File[T], snapshot *Snapshot[T]) {
		fn(snapshot)
	})
	f.mu.Lock()
	f.refreshed.Subscribe(listener)
	f.mu.Unlock()
	return func() {
		f.mu.Lock()
		f.refreshed.Unsubscribe(listener)
		f.mu.Unlock()
	}
}

// OnChange subscribes handler to snapshot changes, with the previous
// snapshot. The same locking rules as OnRefresh apply.
func (f *File[T]) OnChange(handler observable.Handler[*File[T], *Snapshot[T]]) (cancel func()) {
	f.mu.Lock()
	f.current.Subscribe(handler)
	f.mu.Unlock()
	return func() {
		f.mu.Lock()
		f.current.Unsubscribe(handler)
		f.mu.Unlock()
	}
}

// OnReady calls fn when the file first becomes ready. It is called at once
// if the file is already ready.
func (f *File[T]) OnReady(fn func()) (cancel func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ready.Get() {
		fn()
		return func() {}
	}
	handler := observable.Func(func(_ *File[T], _, ready bool) {
		if ready {
			fn()
		}
	})
	f.ready.Subscribe(handler)
	return func() {
		f.mu.Lock()
		f.ready.Unsubscribe(handler)
		f.mu.Unlock()
	}
}

// Reload reads and decodes the file. It reports whether a new snapshot was
// published; identical content publishes nothing. On failure the previous
// snapshot stays current.
func (f *File[T]) Reload() (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reloadLocked()
}

// Poll reloads only when the file's modification time or size changed since
// the last attempt.
func (f *File[T]) Poll() (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return false, ErrClosed
	}
	info, err := os.Stat(f.path)
	if err != nil {
		return false, f.fail(err, 0)
	}
	stat := fileStat{modTime: info.ModTime(), size: info.Size()}
	if stat == f.lastStat {
		return false, nil
	}
	return f.reloadLocked()
}

func (f *File[T]) reloadLocked() (bool, error) {
	if f.closed {
		return false, ErrClosed
	}
	started := f.clock.Now()

	info, err := os.Stat(f.path)
	if err != nil {
		return false, f.fail(err, f.clock.Since(started))
	}
	f.lastStat = fileStat{modTime: info.ModTime(), size: info.Size()}

	payload, err := os.ReadFile(f.path)
	if err != nil {
		return false, f.fail(err, f.clock.Since(started))
	}
	sum := sha256.Sum256(payload)
	checksum := hex.EncodeToString(sum[:])
	if previous := f.current.Get(); previous != nil && previous.Checksum == checksum {
		f.metrics.RecordReload(f.name, f.clock.Since(started), false, nil)
		return false, nil
	}

	data, err := f.decode(payload)
	if err != nil {
		return false, f.fail(err, f.clock.Since(started))
	}

	snapshot := &Snapshot[T]{
		Revision: Revision{
			ID:       uuid.NewString(),
			Checksum: checksum,
			LoadedAt: f.clock.Now().UTC(),
		},
		Data: data,
	}
	f.history.Add(snapshot.Revision)
	f.setCurrent.Set(snapshot)
	f.setReady.Set(true)
	f.refresh.Invoke(snapshot)

	f.metrics.RecordReload(f.name, f.clock.Since(started), true, nil)
	f.logger.Info("resource reloaded", map[string]string{
		"revision": snapshot.ID,
		"checksum": checksum[:12],
	})
	return true, nil
}

func (f *File[T]) fail(err error, elapsed time.Duration) error {
	f.metrics.RecordReload(f.name, elapsed, false, err)
	fields := map[string]string{
		"path":  f.path,
		"error": err.Error(),
	}
	if f.ready.Get() {
		fields["keeping_revision"] = f.current.Get().ID
	}
	f.logger.Warn("resource reload failed", fields)
	return fmt.Errorf("reload %s: %w", f.name, err)
}

// Close disposes the published state. Subscribers are released and later
// reloads return ErrClosed.
func (f *File[T]) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil
	}
	f.closed = true
	f.refresh.Dispose()
	f.setCurrent.Dispose()
	f.setReady.Dispose()
	f.history.Reset()
	return nil
}
