package watcher

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcherDispatchesWriteEvent(t *testing.T) {
	watcher, err := NewWithOptions(Options{Debounce: 10 * time.Millisecond})
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	defer watcher.Close()

	path := filepath.Join(t.TempDir(), "units.yaml")
	if err := os.WriteFile(path, []byte("speed: 1\n"), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}

	events := make(chan Event, 1)
	handle, err := watcher.Watch(path, func(event Event) {
		select {
		case events <- event:
		default:
		}
	})
	if err != nil {
		t.Fatalf("watch path: %v", err)
	}
	defer handle.Close()

	if err := os.WriteFile(path, []byte("speed: 2\n"), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}

	event, ok := waitForEvent(events)
	if !ok {
		t.Fatal("timed out waiting for write event")
	}
	if event.Path != path {
		t.Fatalf("expected path %q, got %q", path, event.Path)
	}
}

func TestWatcherDirectoryWatchSeesChildren(t *testing.T) {
	watcher, err := NewWithOptions(Options{Debounce: 10 * time.Millisecond})
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	defer watcher.Close()

	dir := t.TempDir()
	events := make(chan Event, 4)
	handle, err := watcher.Watch(dir, func(event Event) {
		select {
		case events <- event:
		default:
		}
	})
	if err != nil {
		t.Fatalf("watch dir: %v", err)
	}
	defer handle.Close()

	child := filepath.Join(dir, "camera.yaml")
	if err := os.WriteFile(child, []byte("height: 2\n"), 0o600); err != nil {
		t.Fatalf("write child: %v", err)
	}

	event, ok := waitForEvent(events)
	if !ok {
		t.Fatal("timed out waiting for child event")
	}
	if event.Path != child {
		t.Fatalf("expected path %q, got %q", child, event.Path)
	}
	if watcher.Metrics().EventsDelivered == 0 {
		t.Fatalf("expected delivered events to be counted")
	}
}

func TestWatcherHandleCloseReleasesWatch(t *testing.T) {
	watcher, err := New()
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	defer watcher.Close()

	dir := t.TempDir()
	first, err := watcher.Watch(dir, func(Event) {})
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	second, err := watcher.Watch(dir, func(Event) {})
	if err != nil {
		t.Fatalf("watch again: %v", err)
	}
	if got := watcher.Metrics().ActiveWatches; got != 1 {
		t.Fatalf("expected shared watch, got %d", got)
	}

	if err := first.Close(); err != nil {
		t.Fatalf("close first: %v", err)
	}
	if got := watcher.Metrics().ActiveWatches; got != 1 {
		t.Fatalf("expected watch kept while registered, got %d", got)
	}
	if err := second.Close(); err != nil {
		t.Fatalf("close second: %v", err)
	}
	if err := second.Close(); err != nil {
		t.Fatalf("close twice: %v", err)
	}
	if got := watcher.Metrics().ActiveWatches; got != 0 {
		t.Fatalf("expected no watches, got %d", got)
	}
}

func TestWatcherRejectsAfterClose(t *testing.T) {
	watcher, err := New()
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	if err := watcher.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := watcher.Close(); err != nil {
		t.Fatalf("close twice: %v", err)
	}

	_, err = watcher.Watch(t.TempDir(), func(Event) {})
	if !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}

func TestWatcherMaxWatches(t *testing.T) {
	watcher, err := NewWithOptions(Options{MaxWatches: 1})
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	defer watcher.Close()

	if _, err := watcher.Watch(t.TempDir(), func(Event) {}); err != nil {
		t.Fatalf("first watch: %v", err)
	}
	if _, err := watcher.Watch(t.TempDir(), func(Event) {}); !errors.Is(err, ErrMaxWatchesExceeded) {
		t.Fatalf("expected ErrMaxWatchesExceeded, got %v", err)
	}
}

func TestWatcherValidatesArguments(t *testing.T) {
	watcher, err := New()
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	defer watcher.Close()

	if _, err := watcher.Watch("", func(Event) {}); err == nil {
		t.Fatalf("expected error for empty path")
	}
	if _, err := watcher.Watch(t.TempDir(), nil); err == nil {
		t.Fatalf("expected error for nil callback")
	}
	if _, err := watcher.Watch(filepath.Join(t.TempDir(), "missing"), func(Event) {}); !os.IsNotExist(err) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestIsWithinPath(t *testing.T) {
	if !isWithinPath("/a/b", "/a/b/c.yaml") {
		t.Fatalf("expected child within parent")
	}
	if isWithinPath("/a/b", "/a/bc") {
		t.Fatalf("expected sibling outside parent")
	}
	if isWithinPath("/a/b", "/a") {
		t.Fatalf("expected parent outside child")
	}
}

func waitForEvent(events <-chan Event) (Event, bool) {
	select {
	case event := <-events:
		return event, true
	case <-time.After(2 * time.Second):
		return Event{}, false
	}
}

func TestWatcherReportsErrorsToListeners(t *testing.T) {
	watcher, err := New()
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}

	var received []error
	cancel := watcher.OnError(func(err error) {
		received = append(received, err)
	})
	failure := errors.New("queue overflow")
	watcher.handleError(failure)
	watcher.handleError(nil)

	if len(received) != 1 || !errors.Is(received[0], failure) {
		t.Fatalf("expected one reported error, got %v", received)
	}
	if got := watcher.Metrics().Errors; got != 1 {
		t.Fatalf("expected error count 1, got %d", got)
	}

	cancel()
	watcher.handleError(failure)
	if len(received) != 1 {
		t.Fatalf("expected no delivery after cancel, got %d", len(received))
	}

	again := watcher.OnError(func(error) { t.Fatalf("unexpected delivery after close") })
	defer again()
	if err := watcher.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	watcher.handleError(failure)
}
