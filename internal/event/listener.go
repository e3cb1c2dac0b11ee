package event

// Listener0 handles events that carry only their source.
type Listener0[S any] interface {
	HandleEvent(source S)
}

// Listener1 handles events with one argument.
type Listener1[S, A any] interface {
	HandleEvent(source S, a A)
}

// Listener2 handles events with two arguments.
type Listener2[S, A, B any] interface {
	HandleEvent(source S, a A, b B)
}

// Listener3 handles events with three arguments.
type Listener3[S, A, B, C any] interface {
	HandleEvent(source S, a A, b B, c C)
}

type func0[S any] struct{ fn func(S) }

func (f *func0[S]) HandleEvent(source S) { f.fn(source) }

type func1[S, A any] struct{ fn func(S, A) }

func (f *func1[S, A]) HandleEvent(source S, a A) { f.fn(source, a) }

type func2[S, A, B any] struct{ fn func(S, A, B) }

func (f *func2[S, A, B]) HandleEvent(source S, a A, b B) { f.fn(source, a, b) }

type func3[S, A, B, C any] struct{ fn func(S, A, B, C) }

func (f *func3[S, A, B, C]) HandleEvent(source S, a A, b B, c C) { f.fn(source, a, b, c) }

// Func0 wraps fn in a listener with its own identity. A nil fn yields a nil
// listener.
func Func0[S any](fn func(source S)) Listener0[S] {
	if fn == nil {
		return nil
	}
	return &func0[S]{fn: fn}
}

func Func1[S, A any](fn func(source S, a A)) Listener1[S, A] {
	if fn == nil {
		return nil
	}
	return &func1[S, A]{fn: fn}
}

func Func2[S, A, B any](fn func(source S, a A, b B)) Listener2[S, A, B] {
	if fn == nil {
		return nil
	}
	return &func2[S, A, B]{fn: fn}
}

func Func3[S, A, B, C any](fn func(source S, a A, b B, c C)) Listener3[S, A, B, C] {
	if fn == nil {
		return nil
	}
	return &func3[S, A, B, C]{fn: fn}
}
