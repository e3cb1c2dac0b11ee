package observable

import (
	"fmt"
	"reflect"
)

// Option configures a value at construction.
type Option[T any] func(*settings[T])

type settings[T any] struct {
	preChange func(prev, next T)
}

// WithPreChange installs hook to run with (current, next) after a change is
// accepted and before it is committed. The initial value never triggers it.
func WithPreChange[T any](hook func(prev, next T)) Option[T] {
	return func(s *settings[T]) {
		s.preChange = hook
	}
}

// NewRef creates a value over a pointer type compared by identity: setting a
// different pointer notifies even when the pointees are equal, and setting
// the same pointer never does.
func NewRef[O, E any](owner O, initial *E, opts ...Option[*E]) (*Value[O, *E], *Control[*E], error) {
	return newOwned[O, *E](owner, Identity[E], initial, opts)
}

// NewComparable creates a value compared with ==.
func NewComparable[O any, T comparable](owner O, initial T, opts ...Option[T]) (*Value[O, T], *Control[T], error) {
	return newOwned[O, T](owner, Comparable[T], initial, opts)
}

// NewEquatable creates a value compared with the type's Equal method.
func NewEquatable[O any, T Equaler[T]](owner O, initial T, opts ...Option[T]) (*Value[O, T], *Control[T], error) {
	return newOwned[O, T](owner, Equatable[T], initial, opts)
}

// NewEnum creates a value of an enumeration type compared by code. It
// returns ErrNotEnum when T is a predeclared type rather than a defined one.
func NewEnum[O any, T Enum](owner O, initial T, opts ...Option[T]) (*Value[O, T], *Control[T], error) {
	if err := checkEnum[T](); err != nil {
		return nil, nil, err
	}
	return newOwned[O, T](owner, EnumCode[T], initial, opts)
}

// NewChangeableRef is the publicly settable variant of NewRef.
func NewChangeableRef[O, E any](owner O, initial *E, opts ...Option[*E]) (*Changeable[O, *E], *Disposer, error) {
	return newChangeable[O, *E](owner, Identity[E], initial, opts)
}

// NewChangeableComparable is the publicly settable variant of NewComparable.
func NewChangeableComparable[O any, T comparable](owner O, initial T, opts ...Option[T]) (*Changeable[O, T], *Disposer, error) {
	return newChangeable[O, T](owner, Comparable[T], initial, opts)
}

// NewChangeableEquatable is the publicly settable variant of NewEquatable.
func NewChangeableEquatable[O any, T Equaler[T]](owner O, initial T, opts ...Option[T]) (*Changeable[O, T], *Disposer, error) {
	return newChangeable[O, T](owner, Equatable[T], initial, opts)
}

// NewChangeableEnum is the publicly settable variant of NewEnum.
func NewChangeableEnum[O any, T Enum](owner O, initial T, opts ...Option[T]) (*Changeable[O, T], *Disposer, error) {
	if err := checkEnum[T](); err != nil {
		return nil, nil, err
	}
	return newChangeable[O, T](owner, EnumCode[T], initial, opts)
}

func newOwned[O, T any](owner O, equal Equality[T], initial T, opts []Option[T]) (*Value[O, T], *Control[T], error) {
	value, err := newValue(owner, equal, initial, opts)
	if err != nil {
		return nil, nil, err
	}
	return value, &Control[T]{set: value.set, dispose: value.dispose}, nil
}

func newChangeable[O, T any](owner O, equal Equality[T], initial T, opts []Option[T]) (*Changeable[O, T], *Disposer, error) {
	value, err := newValue(owner, equal, initial, opts)
	if err != nil {
		return nil, nil, err
	}
	changeable := &Changeable[O, T]{Value: *value}
	return changeable, &Disposer{dispose: changeable.dispose}, nil
}

func newValue[O, T any](owner O, equal Equality[T], initial T, opts []Option[T]) (*Value[O, T], error) {
	if isNil(owner) {
		return nil, fmt.Errorf("%w (owner type %s)", ErrNilOwner, reflect.TypeFor[O]())
	}
	var config settings[T]
	for _, opt := range opts {
		if opt != nil {
			opt(&config)
		}
	}
	return &Value[O, T]{
		owner:     owner,
		equal:     equal,
		preChange: config.preChange,
		current:   initial,
	}, nil
}

func checkEnum[T Enum]() error {
	typ := reflect.TypeFor[T]()
	if typ.PkgPath() == "" {
		return fmt.Errorf("%w: %s is predeclared, declare a named type for it", ErrNotEnum, typ)
	}
	return nil
}

func isNil(value any) bool {
	kind := reflect.ValueOf(value)
	if !kind.IsValid() {
		return true
	}
	switch kind.Kind() {
	case reflect.Chan, reflect.Func, reflect.Map, reflect.Pointer, reflect.Interface, reflect.Slice:
		return kind.IsNil()
	default:
		return false
	}
}
