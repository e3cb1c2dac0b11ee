package event

import (
	"sync"
	"testing"
	"time"
)

// Call1 is one recorded invocation of a one-argument notifier.
type Call1[S, A any] struct {
	Source S
	First  A
}

// Call2 is one recorded invocation of a two-argument notifier.
type Call2[S, A, B any] struct {
	Source S
	First  A
	Second B
}

// Call3 is one recorded invocation of a three-argument notifier.
type Call3[S, A, B, C any] struct {
	Source S
	First  A
	Second B
	Third  C
}

// Recorder0 counts invocations. It can be subscribed directly.
type Recorder0[S any] struct {
	mu      sync.Mutex
	sources []S
}

func (r *Recorder0[S]) HandleEvent(source S) {
	r.mu.Lock()
	r.sources = append(r.sources, source)
	r.mu.Unlock()
}

func (r *Recorder0[S]) Count() int {
	if r == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sources)
}

// Recorder1 stores invocations in the order they were received.
type Recorder1[S, A any] struct {
	mu    sync.Mutex
	calls []Call1[S, A]
}

func (r *Recorder1[S, A]) HandleEvent(source S, a A) {
	r.mu.Lock()
	r.calls = append(r.calls, Call1[S, A]{Source: source, First: a})
	r.mu.Unlock()
}

func (r *Recorder1[S, A]) Calls() []Call1[S, A] {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call1[S, A](nil), r.calls...)
}

// Recorder2 stores invocations in the order they were received.
type Recorder2[S, A, B any] struct {
	mu    sync.Mutex
	calls []Call2[S, A, B]
}

func (r *Recorder2[S, A, B]) HandleEvent(source S, a A, b B) {
	r.mu.Lock()
	r.calls = append(r.calls, Call2[S, A, B]{Source: source, First: a, Second: b})
	r.mu.Unlock()
}

func (r *Recorder2[S, A, B]) Calls() []Call2[S, A, B] {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call2[S, A, B](nil), r.calls...)
}

// Recorder3 stores invocations in the order they were received.
type Recorder3[S, A, B, C any] struct {
	mu    sync.Mutex
	calls []Call3[S, A, B, C]
}

func (r *Recorder3[S, A, B, C]) HandleEvent(source S, a A, b B, c C) {
	r.mu.Lock()
	r.calls = append(r.calls, Call3[S, A, B, C]{Source: source, First: a, Second: b, Third: c})
	r.mu.Unlock()
}

func (r *Recorder3[S, A, B, C]) Calls() []Call3[S, A, B, C] {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call3[S, A, B, C](nil), r.calls...)
}

// ReceiveWithTimeout waits for a single value or fails the test.
func ReceiveWithTimeout[T any](t *testing.T, ch <-chan T, timeout time.Duration) T {
	t.Helper()
	select {
	case value, ok := <-ch:
		if !ok {
			t.Fatal("channel closed")
		}
		return value
	case <-time.After(timeout):
		t.Fatalf("timed out waiting for value after %s", timeout)
	}
	var zero T
	return zero
}
