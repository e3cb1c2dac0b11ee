package lifecycle

import (
	"context"
	"errors"
	"io"
	"reflect"
	"testing"

	"go.uber.org/multierr"

	"tracked/internal/logging"
	"tracked/internal/metrics"
	"tracked/internal/observable"
)

func TestTeardownRunsInReverseOrder(t *testing.T) {
	teardown := NewTeardown(nil, nil)
	order := []string{}

	teardown.Add("first", func(context.Context) error {
		order = append(order, "first")
		return nil
	})
	teardown.Add("second", func(context.Context) error {
		order = append(order, "second")
		return errors.New("fail")
	})
	teardown.AddFunc("third", func() {
		order = append(order, "third")
	})

	err := teardown.Run(context.Background())
	if err == nil {
		t.Fatalf("expected teardown error")
	}

	expected := []string{"third", "second", "first"}
	if !reflect.DeepEqual(order, expected) {
		t.Fatalf("expected order %v, got %v", expected, order)
	}
}

func TestTeardownRunsOnce(t *testing.T) {
	teardown := NewTeardown(nil, nil)
	calls := 0
	teardown.AddFunc("count", func() { calls++ })

	first := teardown.Run(context.Background())
	second := teardown.Close()

	if calls != 1 {
		t.Fatalf("expected one call, got %d", calls)
	}
	if first != nil || second != nil {
		t.Fatalf("expected nil errors, got %v and %v", first, second)
	}
}

func TestTeardownCombinesErrors(t *testing.T) {
	registry := &metrics.Registry{}
	teardown := NewTeardown(logging.NewLoggerWithOutput(nil, logging.LevelDebug, io.Discard), registry)
	errA := errors.New("a")
	errB := errors.New("b")
	teardown.Add("a", func(context.Context) error { return errA })
	teardown.Add("b", func(context.Context) error { return errB })
	teardown.Add("panics", func(context.Context) error { panic("boom") })

	err := teardown.Run(context.Background())
	if !errors.Is(err, errA) || !errors.Is(err, errB) {
		t.Fatalf("expected both errors, got %v", err)
	}
	if got := len(multierr.Errors(err)); got != 3 {
		t.Fatalf("expected 3 errors, got %d: %v", got, err)
	}
}

func TestTeardownAfterRunReleasesImmediately(t *testing.T) {
	teardown := NewTeardown(nil, nil)
	_ = teardown.Run(context.Background())

	released := false
	teardown.AddFunc("late", func() { released = true })
	if !released {
		t.Fatalf("expected late step to run immediately")
	}
	if teardown.Len() != 0 {
		t.Fatalf("expected no pending steps")
	}
}

type closerOwner struct{}

func TestTeardownDisposesValues(t *testing.T) {
	teardown := NewTeardown(nil, nil)
	value, control, err := observable.NewComparable(&closerOwner{}, 7)
	if err != nil {
		t.Fatalf("new value: %v", err)
	}
	value.Observe(func(*closerOwner, int, int) {})
	teardown.AddCloser("value", control)

	if err := teardown.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if !value.Disposed() || value.SubscriberCount() != 0 || value.Get() != 0 {
		t.Fatalf("expected value disposed by teardown")
	}
}
