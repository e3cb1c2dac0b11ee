package watcher

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

type callbackEntry struct {
	id       uint64
	callback func(Event)
	isDir    bool
}

type watchHandle struct {
	watcher *Watcher
	path    string
	id      uint64
	once    sync.Once
}

func (handle *watchHandle) Close() error {
	if handle == nil || handle.watcher == nil {
		return nil
	}
	var err error
	handle.once.Do(func() {
		err = handle.watcher.removeCallback(handle.path, handle.id)
	})
	return err
}

// Watch registers a callback for filesystem events on a path. Watching a
// directory reports changes to its direct children.
func (watcher *Watcher) Watch(path string, callback func(Event)) (Handle, error) {
	if watcher == nil {
		return nil, errors.New("watcher is nil")
	}
	if path == "" {
		return nil, errors.New("path is required")
	}
	if callback == nil {
		return nil, errors.New("callback is required")
	}
	path = filepath.Clean(path)

	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	watcher.mutex.Lock()
	if watcher.closed {
		watcher.mutex.Unlock()
		return nil, ErrClosed
	}

	needsAdd := watcher.callbacks[path] == nil
	if needsAdd && watcher.activeWatches >= watcher.maxWatches {
		watcher.mutex.Unlock()
		return nil, ErrMaxWatchesExceeded
	}
	watcher.nextID++
	entry := callbackEntry{callback: callback, id: watcher.nextID, isDir: info.IsDir()}
	watcher.callbacks[path] = append(watcher.callbacks[path], entry)
	if needsAdd {
		watcher.activeWatches++
	}
	activeCount := watcher.activeWatches
	watcher.mutex.Unlock()

	if needsAdd {
		if err := watcher.watcher.Add(path); err != nil {
			watcher.dropCallback(path, entry.id)
			watcher.logWarn("watch add failed", map[string]string{
				"path":  path,
				"error": err.Error(),
			})
			return nil, err
		}
		watcher.logDebug("watch added", path, activeCount)
	}

	return &watchHandle{watcher: watcher, path: path, id: entry.id}, nil
}

func (watcher *Watcher) removeCallback(path string, id uint64) error {
	if watcher == nil {
		return nil
	}

	shouldRemove, activeCount := watcher.dropCallback(path, id)
	if shouldRemove && watcher.watcher != nil {
		if err := watcher.watcher.Remove(path); err != nil {
			if errors.Is(err, ErrClosed) || watcher.isClosed() {
				return nil
			}
			watcher.logWarn("watch remove failed", map[string]string{
				"path":  path,
				"error": err.Error(),
			})
			return err
		}
		watcher.logDebug("watch removed", path, activeCount)
	}
	return nil
}

// dropCallback forgets a registration and reports whether it was the last
// one on path.
func (watcher *Watcher) dropCallback(path string, id uint64) (bool, int) {
	watcher.mutex.Lock()
	defer watcher.mutex.Unlock()

	callbacks := watcher.callbacks[path]
	if len(callbacks) == 0 {
		return false, watcher.activeWatches
	}
	remaining := make([]callbackEntry, 0, len(callbacks))
	for _, candidate := range callbacks {
		if candidate.id != id {
			remaining = append(remaining, candidate)
		}
	}
	if len(remaining) > 0 {
		watcher.callbacks[path] = remaining
		return false, watcher.activeWatches
	}
	delete(watcher.callbacks, path)
	if watcher.activeWatches > 0 {
		watcher.activeWatches--
	}
	return true, watcher.activeWatches
}

func (watcher *Watcher) isClosed() bool {
	watcher.mutex.Lock()
	defer watcher.mutex.Unlock()
	return watcher.closed
}

func (watcher *Watcher) hasCallbacksLocked(path string) bool {
	return len(watcher.callbacksForPathLocked(path)) > 0
}

// callbacksForPathLocked returns callbacks registered on path itself and on
// directories containing it.
func (watcher *Watcher) callbacksForPathLocked(path string) []func(Event) {
	path = filepath.Clean(path)
	var callbacks []func(Event)
	for _, entry := range watcher.callbacks[path] {
		callbacks = append(callbacks, entry.callback)
	}
	parent := filepath.Dir(path)
	if parent == path {
		return callbacks
	}
	for _, entry := range watcher.callbacks[parent] {
		if entry.isDir && isWithinPath(parent, path) {
			callbacks = append(callbacks, entry.callback)
		}
	}
	return callbacks
}

func isWithinPath(parent, child string) bool {
	parentPath := filepath.Clean(parent)
	childPath := filepath.Clean(child)
	rel, err := filepath.Rel(parentPath, childPath)
	if err != nil {
		return false
	}
	if rel == "." {
		return true
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
		return false
	}
	return true
}
