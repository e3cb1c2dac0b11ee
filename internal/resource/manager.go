package resource

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/multierr"

	"tracked/internal/lifecycle"
	"tracked/internal/logging"
	"tracked/internal/metrics"
	"tracked/internal/watcher"
)

var ErrDuplicate = errors.New("resource already registered")

// reloader is the untyped view of a File the manager drives.
type reloader interface {
	Name() string
	Path() string
	Reload() (bool, error)
	Poll() (bool, error)
	Close() error
}

type ManagerOptions struct {
	Dir          string
	Watch        watcher.Watch
	PollInterval time.Duration
	HistorySize  int
	Logger       *logging.Logger
	Metrics      *metrics.Registry
	Clock        clock.Clock
}

// Manager owns the resources under one directory.
type Manager struct {
	options  ManagerOptions
	logger   *logging.Logger
	teardown *lifecycle.Teardown

	mu        sync.Mutex
	resources map[string]reloader
	started   bool
	wg        sync.WaitGroup
}

func NewManager(options ManagerOptions) *Manager {
	if options.Clock == nil {
		options.Clock = clock.New()
	}
	logger := options.Logger
	if logger == nil {
		logger = logging.NewLoggerWithOutput(nil, logging.LevelInfo, nil)
	}
	return &Manager{
		options:   options,
		logger:    logger,
		teardown:  lifecycle.NewTeardown(logger, options.Metrics),
		resources: make(map[string]reloader),
	}
}

// Register adds the file name under the manager's directory and attempts the
// first load. A failed first load is logged, not returned: the file stays
// registered and becomes ready once a valid version appears.
func Register[T any](manager *Manager, name string, decode Decoder[T]) (*File[T], error) {
	path := filepath.Join(manager.options.Dir, name)
	file, err := NewFile(path, decode, Options{
		Logger:      manager.logger,
		Metrics:     manager.options.Metrics,
		Clock:       manager.options.Clock,
		HistorySize: manager.options.HistorySize,
	})
	if err != nil {
		return nil, err
	}

	manager.mu.Lock()
	key := filepath.Clean(path)
	if _, exists := manager.resources[key]; exists {
		manager.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrDuplicate, name)
	}
	manager.resources[key] = file
	manager.mu.Unlock()
	manager.teardown.AddCloser("resource "+name, file)

	_, _ = file.Reload()
	return file, nil
}

// Names lists registered resources.
func (manager *Manager) Names() []string {
	manager.mu.Lock()
	defer manager.mu.Unlock()
	names := make([]string, 0, len(manager.resources))
	for _, resource := range manager.resources {
		names = append(names, resource.Name())
	}
	sort.Strings(names)
	return names
}

// Start watches the directory and, when PollInterval is set, polls every
// resource on that interval until ctx ends or the manager is closed.
func (manager *Manager) Start(ctx context.Context) error {
	manager.mu.Lock()
	if manager.started {
		manager.mu.Unlock()
		return nil
	}
	manager.started = true
	manager.mu.Unlock()

	if manager.options.Watch != nil {
		handle, err := manager.options.Watch.Watch(manager.options.Dir, manager.handleEvent)
		if err != nil {
			manager.logger.Warn("resource watch failed, relying on polling", map[string]string{
				"dir":   manager.options.Dir,
				"error": err.Error(),
			})
		} else {
			manager.teardown.AddCloser("resource watch", handle)
		}
	}

	if manager.options.PollInterval > 0 {
		pollCtx, cancel := context.WithCancel(ctx)
		ticker := manager.options.Clock.Ticker(manager.options.PollInterval)
		manager.wg.Add(1)
		go func() {
			defer manager.wg.Done()
			defer ticker.Stop()
			for {
				select {
				case <-pollCtx.Done():
					return
				case <-ticker.C:
					manager.PollAll()
				}
			}
		}()
		manager.teardown.AddFunc("resource poll", func() {
			cancel()
			manager.wg.Wait()
		})
	}
	return nil
}

// PollAll polls every registered resource once.
func (manager *Manager) PollAll() {
	for _, resource := range manager.snapshot() {
		_, _ = resource.Poll()
	}
}

// ReloadAll forces a reload of every registered resource and returns the
// combined failures.
func (manager *Manager) ReloadAll() error {
	var errs error
	for _, resource := range manager.snapshot() {
		_, err := resource.Reload()
		errs = multierr.Append(errs, err)
	}
	return errs
}

func (manager *Manager) handleEvent(event watcher.Event) {
	manager.mu.Lock()
	resource, ok := manager.resources[filepath.Clean(event.Path)]
	manager.mu.Unlock()
	if !ok {
		return
	}
	manager.logger.Debug("resource change detected", map[string]string{
		"resource": resource.Name(),
		"op":       event.Op.String(),
	})
	_, _ = resource.Reload()
}

func (manager *Manager) snapshot() []reloader {
	manager.mu.Lock()
	defer manager.mu.Unlock()
	resources := make([]reloader, 0, len(manager.resources))
	for _, resource := range manager.resources {
		resources = append(resources, resource)
	}
	sort.Slice(resources, func(i, j int) bool {
		return resources[i].Path() < resources[j].Path()
	})
	return resources
}

// Close stops watching and polling and closes every resource, newest first.
func (manager *Manager) Close() error {
	return manager.teardown.Close()
}
