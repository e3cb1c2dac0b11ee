// Package subscribers stores handler registrations for the observable and
// event packages.
//
// A List is an insertion-ordered set keyed by handler identity. Identity is Go
// interface equality, so every handler stored must have a comparable dynamic
// type: pointers, or structs of comparable fields. Func values are not
// comparable and must be wrapped (observable.Func, event.Func1, ...).
//
// List is not safe for concurrent use.
package subscribers

import (
	"fmt"
	"reflect"
)

// List is an ordered, identity-deduplicated set of handlers.
//
// The zero value is an empty list ready to use. Snapshot returns a slice that
// later Add/Remove calls never modify, so a notification pass can iterate it
// while handlers subscribe or unsubscribe.
type List[H any] struct {
	entries []H
	keys    map[any]struct{}
}

// Add appends handler. A handler already present is removed first, so it is
// never registered twice and moves to the end of the iteration order.
//
// Add panics when handler is nil or its dynamic type is not comparable.
func (l *List[H]) Add(handler H) {
	key := mustKey(handler)
	if l.keys == nil {
		l.keys = make(map[any]struct{})
	}
	if _, ok := l.keys[key]; ok {
		l.removeKey(key)
	}
	l.keys[key] = struct{}{}
	l.entries = append(l.entries, handler)
}

// Remove deletes handler and reports whether it was present.
func (l *List[H]) Remove(handler H) bool {
	key, ok := keyOf(handler)
	if !ok || l.keys == nil {
		return false
	}
	if _, present := l.keys[key]; !present {
		return false
	}
	l.removeKey(key)
	return true
}

// Contains reports whether handler is registered.
func (l *List[H]) Contains(handler H) bool {
	key, ok := keyOf(handler)
	if !ok || l.keys == nil {
		return false
	}
	_, present := l.keys[key]
	return present
}

func (l *List[H]) Len() int {
	if l == nil {
		return 0
	}
	return len(l.entries)
}

// Snapshot returns the registered handlers in insertion order. The slice is
// shared and must not be modified.
func (l *List[H]) Snapshot() []H {
	if l == nil {
		return nil
	}
	return l.entries
}

// Clear drops every handler reference.
func (l *List[H]) Clear() {
	l.entries = nil
	l.keys = nil
}

// removeKey rebuilds the entry slice so snapshots taken earlier stay intact.
func (l *List[H]) removeKey(key any) {
	delete(l.keys, key)
	next := make([]H, 0, len(l.entries))
	for _, entry := range l.entries {
		if any(entry) == key {
			continue
		}
		next = append(next, entry)
	}
	l.entries = next
}

func mustKey[H any](handler H) any {
	key := any(handler)
	if isNil(key) {
		panic(fmt.Sprintf("subscribers: nil handler of type %s", reflect.TypeFor[H]()))
	}
	if !reflect.TypeOf(key).Comparable() || !hashable(key) {
		panic(fmt.Sprintf("subscribers: handler of type %T is not comparable; wrap func values before subscribing", handler))
	}
	return key
}

func keyOf[H any](handler H) (any, bool) {
	key := any(handler)
	if key == nil || !reflect.TypeOf(key).Comparable() || !hashable(key) {
		return nil, false
	}
	return key, true
}

// hashable reports whether key can be stored in a map. A comparable type
// still fails when an interface field holds a func, map or slice.
func hashable(key any) (ok bool) {
	switch reflect.TypeOf(key).Kind() {
	case reflect.Pointer, reflect.Chan, reflect.UnsafePointer:
		return true
	}
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	_ = map[any]struct{}{key: {}}
	return true
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
