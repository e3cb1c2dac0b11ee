// Package lifecycle releases what a component acquired, in reverse order,
// exactly once.
package lifecycle

import (
	"context"
	"fmt"
	"io"
	"sync"

	"go.uber.org/multierr"

	"tracked/internal/logging"
	"tracked/internal/metrics"
)

type teardownStep struct {
	name string
	stop func(context.Context) error
}

// Teardown collects release steps as a component acquires resources and runs
// them last-added first. Run executes the steps once; later calls return the
// first result.
type Teardown struct {
	logger  *logging.Logger
	metrics *metrics.Registry

	mu    sync.Mutex
	once  sync.Once
	steps []teardownStep
	err   error
	done  bool
}

func NewTeardown(logger *logging.Logger, registry *metrics.Registry) *Teardown {
	return &Teardown{
		logger:  logger,
		metrics: registry,
	}
}

// Add registers stop under name. Steps added after Run has started are run
// immediately, since nothing will release them otherwise.
func (t *Teardown) Add(name string, stop func(context.Context) error) {
	if t == nil || stop == nil {
		return
	}
	t.mu.Lock()
	if t.done {
		t.mu.Unlock()
		_ = t.runStep(context.Background(), teardownStep{name: name, stop: stop})
		return
	}
	t.steps = append(t.steps, teardownStep{name: name, stop: stop})
	t.mu.Unlock()
}

// AddCloser registers closer.Close.
func (t *Teardown) AddCloser(name string, closer io.Closer) {
	if closer == nil {
		return
	}
	t.Add(name, func(context.Context) error {
		return closer.Close()
	})
}

// AddFunc registers a release step that cannot fail, such as a Dispose or a
// subscription cancel func.
func (t *Teardown) AddFunc(name string, release func()) {
	if release == nil {
		return
	}
	t.Add(name, func(context.Context) error {
		release()
		return nil
	})
}

// Len reports how many steps are pending.
func (t *Teardown) Len() int {
	if t == nil {
		return 0
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.steps)
}

// Run executes every step in reverse registration order. A failing step does
// not stop the rest; all errors are combined.
func (t *Teardown) Run(ctx context.Context) error {
	if t == nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	t.once.Do(func() {
		t.mu.Lock()
		steps := t.steps
		t.steps = nil
		t.done = true
		t.mu.Unlock()

		var runErr error
		for i := len(steps) - 1; i >= 0; i-- {
			runErr = multierr.Append(runErr, t.runStep(ctx, steps[i]))
		}
		t.err = runErr
	})
	return t.err
}

// Close runs the teardown with a background context.
func (t *Teardown) Close() error {
	return t.Run(context.Background())
}

func (t *Teardown) runStep(ctx context.Context, step teardownStep) (err error) {
	if t.logger != nil {
		t.logger.Debug("teardown step starting", map[string]string{
			"step": step.name,
		})
	}
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("teardown %s: panic: %v", step.name, recovered)
		}
		t.metrics.RecordTeardownStep(err)
		if err != nil && t.logger != nil {
			t.logger.Warn("teardown step failed", map[string]string{
				"step":  step.name,
				"error": err.Error(),
			})
		}
	}()
	if stopErr := step.stop(ctx); stopErr != nil {
		return fmt.Errorf("teardown %s: %w", step.name, stopErr)
	}
	return nil
}
