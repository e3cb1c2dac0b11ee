// Package buffer holds fixed-capacity containers shared by the logging and
// resource packages.
package buffer

// Ring keeps the most recent entries up to its capacity, overwriting the
// oldest once full. It is not safe for concurrent use.
type Ring[T any] struct {
	entries []T
	start   int
	count   int
}

func NewRing[T any](size int) *Ring[T] {
	if size <= 0 {
		size = 1
	}
	return &Ring[T]{
		entries: make([]T, size),
	}
}

// Add appends entry and reports whether an older entry was evicted.
func (r *Ring[T]) Add(entry T) bool {
	if r == nil || len(r.entries) == 0 {
		return false
	}

	if r.count < len(r.entries) {
		r.entries[(r.start+r.count)%len(r.entries)] = entry
		r.count++
		return false
	}

	r.entries[r.start] = entry
	r.start = (r.start + 1) % len(r.entries)
	return true
}

func (r *Ring[T]) Len() int {
	if r == nil {
		return 0
	}
	return r.count
}

func (r *Ring[T]) Cap() int {
	if r == nil {
		return 0
	}
	return len(r.entries)
}

// List returns the entries oldest first.
func (r *Ring[T]) List() []T {
	if r == nil {
		return nil
	}
	return r.Tail(r.count)
}

// Tail returns up to n of the newest entries, oldest first.
func (r *Ring[T]) Tail(n int) []T {
	if r == nil || r.count == 0 || n <= 0 {
		return nil
	}
	if n > r.count {
		n = r.count
	}
	out := make([]T, n)
	offset := r.count - n
	for i := range out {
		out[i] = r.entries[(r.start+offset+i)%len(r.entries)]
	}
	return out
}

// Last returns the newest entry.
func (r *Ring[T]) Last() (T, bool) {
	var zero T
	if r == nil || r.count == 0 {
		return zero, false
	}
	return r.entries[(r.start+r.count-1)%len(r.entries)], true
}

// Reset drops every entry and releases references to them.
func (r *Ring[T]) Reset() {
	if r == nil {
		return
	}
	clear(r.entries)
	r.start = 0
	r.count = 0
}
