package resource

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tracked/internal/metrics"
	"tracked/internal/watcher"
)

type fakeHandle struct {
	closed bool
}

func (h *fakeHandle) Close() error {
	h.closed = true
	return nil
}

type fakeWatch struct {
	mu       sync.Mutex
	path     string
	callback func(watcher.Event)
	handle   *fakeHandle
}

func (w *fakeWatch) Watch(path string, callback func(watcher.Event)) (watcher.Handle, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.path = path
	w.callback = callback
	w.handle = &fakeHandle{}
	return w.handle, nil
}

func (w *fakeWatch) emit(path string) {
	w.mu.Lock()
	callback := w.callback
	w.mu.Unlock()
	callback(watcher.Event{Path: path, Op: fsnotify.Write, Timestamp: time.Now()})
}

func TestRegisterLoadsAndRejectsDuplicates(t *testing.T) {
	dir := t.TempDir()
	writeResource(t, filepath.Join(dir, "units.yaml"), "health: 4\n")
	manager := NewManager(ManagerOptions{Dir: dir})
	defer manager.Close()

	file, err := Register(manager, "units.yaml", DecodeYAML[unitStats])
	require.NoError(t, err)
	assert.True(t, file.Ready())
	assert.Equal(t, 4, file.Snapshot().Data.Health)

	_, err = Register(manager, "units.yaml", DecodeYAML[unitStats])
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.Equal(t, []string{"units.yaml"}, manager.Names())
}

func TestRegisterKeepsFileWhenFirstLoadFails(t *testing.T) {
	dir := t.TempDir()
	manager := NewManager(ManagerOptions{Dir: dir})
	defer manager.Close()

	file, err := Register(manager, "missing.yaml", DecodeYAML[unitStats])
	require.NoError(t, err)
	assert.False(t, file.Ready())

	writeResource(t, filepath.Join(dir, "missing.yaml"), "health: 1\n")
	require.NoError(t, manager.ReloadAll())
	assert.True(t, file.Ready())
}

func TestReloadAllCombinesFailures(t *testing.T) {
	dir := t.TempDir()
	writeResource(t, filepath.Join(dir, "a.yaml"), "health: 1\n")
	writeResource(t, filepath.Join(dir, "b.yaml"), "health: 1\n")
	manager := NewManager(ManagerOptions{Dir: dir})
	defer manager.Close()

	_, err := Register(manager, "a.yaml", DecodeYAML[unitStats])
	require.NoError(t, err)
	_, err = Register(manager, "b.yaml", DecodeYAML[unitStats])
	require.NoError(t, err)

	writeResource(t, filepath.Join(dir, "a.yaml"), "health: [\n")
	writeResource(t, filepath.Join(dir, "b.yaml"), "health: nope\n")
	err = manager.ReloadAll()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "a.yaml")
	assert.Contains(t, err.Error(), "b.yaml")
}

func TestManagerReloadsOnWatchEvent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "units.yaml")
	writeResource(t, path, "health: 1\n")
	watch := &fakeWatch{}
	manager := NewManager(ManagerOptions{Dir: dir, Watch: watch})

	file, err := Register(manager, "units.yaml", DecodeYAML[unitStats])
	require.NoError(t, err)
	require.NoError(t, manager.Start(context.Background()))
	assert.Equal(t, dir, watch.path)

	var seen []int
	file.OnRefresh(func(snapshot *Snapshot[unitStats]) {
		seen = append(seen, snapshot.Data.Health)
	})

	writeResource(t, path, "health: 2\n")
	watch.emit(path)
	watch.emit(filepath.Join(dir, "unrelated.yaml"))
	assert.Equal(t, []int{2}, seen)

	require.NoError(t, manager.Close())
	assert.True(t, watch.handle.closed)
	_, err = file.Reload()
	assert.ErrorIs(t, err, ErrClosed)
}

func TestManagerPollsOnInterval(t *testing.T) {
	dir := t.TempDir()
	mock := clock.NewMock()
	registry := &metrics.Registry{}
	manager := NewManager(ManagerOptions{
		Dir:          dir,
		PollInterval: 10 * time.Second,
		Clock:        mock,
		Metrics:      registry,
	})
	defer manager.Close()

	file, err := Register(manager, "units.yaml", DecodeYAML[unitStats])
	require.NoError(t, err)
	require.NoError(t, manager.Start(context.Background()))
	require.False(t, file.Ready())

	writeResource(t, filepath.Join(dir, "units.yaml"), "health: 9\n")
	require.Eventually(t, func() bool {
		mock.Add(10 * time.Second)
		return file.Ready()
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, 9, file.Snapshot().Data.Health)

	succeeded, _ := registry.Reloads("units.yaml")
	assert.Equal(t, int64(1), succeeded)
}

func TestManagerStopsPollingWhenClosed(t *testing.T) {
	mock := clock.NewMock()
	manager := NewManager(ManagerOptions{
		Dir:          t.TempDir(),
		PollInterval: time.Second,
		Clock:        mock,
	})
	require.NoError(t, manager.Start(context.Background()))
	require.NoError(t, manager.Start(context.Background()))

	done := make(chan struct{})
	go func() {
		_ = manager.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("manager close did not stop the poll loop")
	}
}
