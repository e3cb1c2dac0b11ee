package observable

import (
	"tracked/internal/subscribers"
)

// Value is the shareable side of an observable value. Anyone holding it can
// read the current value and subscribe to changes; only the Control returned
// alongside it can change or dispose it.
type Value[O, T any] struct {
	owner     O
	equal     Equality[T]
	preChange func(prev, next T)
	current   T
	subs      subscribers.List[Handler[O, T]]
	disposed  bool
}

// Get returns the current value, or the zero value once disposed.
func (v *Value[O, T]) Get() T {
	if v == nil {
		var zero T
		return zero
	}
	return v.current
}

// Owner returns the owner passed at construction. It is the zero value after
// disposal.
func (v *Value[O, T]) Owner() O {
	if v == nil {
		var zero O
		return zero
	}
	return v.owner
}

// Subscribe registers handler for future changes. Subscribing a handler that
// is already registered moves it to the end instead of adding it twice.
// Subscribing to a disposed value does nothing.
//
// Subscribe panics when handler is nil or not comparable.
func (v *Value[O, T]) Subscribe(handler Handler[O, T]) {
	if v == nil {
		return
	}
	if v.disposed {
		return
	}
	v.subs.Add(handler)
}

// Unsubscribe removes handler. Unknown handlers are ignored.
func (v *Value[O, T]) Unsubscribe(handler Handler[O, T]) {
	if v == nil {
		return
	}
	v.subs.Remove(handler)
}

// Observe subscribes fn and returns a func that unsubscribes it.
func (v *Value[O, T]) Observe(fn func(owner O, prev, next T)) (cancel func()) {
	handler := Func(fn)
	v.Subscribe(handler)
	return func() {
		v.Unsubscribe(handler)
	}
}

func (v *Value[O, T]) SubscriberCount() int {
	if v == nil {
		return 0
	}
	return v.subs.Len()
}

func (v *Value[O, T]) Disposed() bool {
	if v == nil {
		return true
	}
	return v.disposed
}

// set runs the change protocol: equality check, pre-change hook, commit,
// then synchronous delivery to the handlers registered when the pass began.
func (v *Value[O, T]) set(next T) {
	if v.disposed {
		return
	}
	if v.equal(v.current, next) {
		return
	}
	if v.preChange != nil {
		v.preChange(v.current, next)
		if v.disposed {
			return
		}
	}
	prev := v.current
	v.current = next
	owner := v.owner
	for _, handler := range v.subs.Snapshot() {
		if v.disposed {
			return
		}
		handler.HandleChange(owner, prev, next)
	}
}

func (v *Value[O, T]) dispose() {
	if v.disposed {
		return
	}
	v.disposed = true
	v.subs.Clear()
	v.preChange = nil

	var zeroValue T
	v.current = zeroValue
	var zeroOwner O
	v.owner = zeroOwner
}
