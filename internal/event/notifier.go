package event

import "tracked/internal/subscribers"

// noCopy marks trigger tokens so go vet's copylocks check reports copies.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

type listeners[L any] struct {
	subs     subscribers.List[L]
	disposed bool
}

func (l *listeners[L]) subscribe(listener L) {
	if l.disposed {
		return
	}
	l.subs.Add(listener)
}

func (l *listeners[L]) dispose() {
	if l.disposed {
		return
	}
	l.disposed = true
	l.subs.Clear()
}

// Notifier0 is the subscribe side of an event without arguments.
type Notifier0[S any] struct {
	source S
	listeners[Listener0[S]]
}

// Trigger0 is the creator's side of a Notifier0.
type Trigger0[S any] struct {
	noCopy   noCopy
	notifier *Notifier0[S]
}

// New0 creates a notifier whose events carry source.
func New0[S any](source S) (*Notifier0[S], *Trigger0[S]) {
	notifier := &Notifier0[S]{source: source}
	return notifier, &Trigger0[S]{notifier: notifier}
}

func (n *Notifier0[S]) Source() S {
	if n == nil {
		var zero S
		return zero
	}
	return n.source
}

// Subscribe registers listener. A listener already registered moves to the
// end rather than being added twice. Subscribing after disposal does nothing.
// Subscribe panics when listener is nil or not comparable.
func (n *Notifier0[S]) Subscribe(listener Listener0[S]) {
	if n == nil {
		return
	}
	n.subscribe(listener)
}

func (n *Notifier0[S]) Unsubscribe(listener Listener0[S]) {
	if n == nil {
		return
	}
	n.subs.Remove(listener)
}

// Observe subscribes fn and returns a func that unsubscribes it.
func (n *Notifier0[S]) Observe(fn func(source S)) (cancel func()) {
	listener := Func0(fn)
	n.Subscribe(listener)
	return func() { n.Unsubscribe(listener) }
}

func (n *Notifier0[S]) SubscriberCount() int {
	if n == nil {
		return 0
	}
	return n.subs.Len()
}

func (n *Notifier0[S]) Disposed() bool {
	return n == nil || n.disposed
}

// Invoke calls every current listener once. Listeners subscribed during the
// pass wait for the next Invoke; disposal during the pass stops it.
func (t *Trigger0[S]) Invoke() {
	if t == nil || t.notifier == nil {
		return
	}
	n := t.notifier
	for _, listener := range n.subs.Snapshot() {
		if n.disposed {
			return
		}
		listener.HandleEvent(n.source)
	}
}

// Dispose drops every listener and the source. Later calls do nothing.
func (t *Trigger0[S]) Dispose() {
	if t == nil || t.notifier == nil {
		return
	}
	t.notifier.dispose()
	var zero S
	t.notifier.source = zero
}

func (t *Trigger0[S]) Close() error {
	t.Dispose()
	return nil
}

// Notifier1 is the subscribe side of an event with one argument.
type Notifier1[S, A any] struct {
	source S
	listeners[Listener1[S, A]]
}

// Trigger1 is the creator's side of a Notifier1.
type Trigger1[S, A any] struct {
	noCopy   noCopy
	notifier *Notifier1[S, A]
}

// New1 creates a one-argument notifier whose events carry source.
func New1[S, A any](source S) (*Notifier1[S, A], *Trigger1[S, A]) {
	notifier := &Notifier1[S, A]{source: source}
	return notifier, &Trigger1[S, A]{notifier: notifier}
}

func (n *Notifier1[S, A]) Source() S {
	if n == nil {
		var zero S
		return zero
	}
	return n.source
}

// Subscribe has the same rules as Notifier0.Subscribe.
func (n *Notifier1[S, A]) Subscribe(listener Listener1[S, A]) {
	if n == nil {
		return
	}
	n.subscribe(listener)
}

func (n *Notifier1[S, A]) Unsubscribe(listener Listener1[S, A]) {
	if n == nil {
		return
	}
	n.subs.Remove(listener)
}

func (n *Notifier1[S, A]) Observe(fn func(source S, a A)) (cancel func()) {
	listener := Func1(fn)
	n.Subscribe(listener)
	return func() { n.Unsubscribe(listener) }
}

func (n *Notifier1[S, A]) SubscriberCount() int {
	if n == nil {
		return 0
	}
	return n.subs.Len()
}

func (n *Notifier1[S, A]) Disposed() bool {
	return n == nil || n.disposed
}

func (t *Trigger1[S, A]) Invoke(a A) {
	if t == nil || t.notifier == nil {
		return
	}
	n := t.notifier
	for _, listener := range n.subs.Snapshot() {
		if n.disposed {
			return
		}
		listener.HandleEvent(n.source, a)
	}
}

func (t *Trigger1[S, A]) Dispose() {
	if t == nil || t.notifier == nil {
		return
	}
	t.notifier.dispose()
	var zero S
	t.notifier.source = zero
}

func (t *Trigger1[S, A]) Close() error {
	t.Dispose()
	return nil
}

// Notifier2 is the subscribe side of an event with two arguments.
type Notifier2[S, A, B any] struct {
	source S
	listeners[Listener2[S, A, B]]
}

// Trigger2 is the creator's side of a Notifier2.
type Trigger2[S, A, B any] struct {
	noCopy   noCopy
	notifier *Notifier2[S, A, B]
}

// New2 creates a two-argument notifier whose events carry source.
func New2[S, A, B any](source S) (*Notifier2[S, A, B], *Trigger2[S, A, B]) {
	notifier := &Notifier2[S, A, B]{source: source}
	return notifier, &Trigger2[S, A, B]{notifier: notifier}
}

func (n *Notifier2[S, A, B]) Source() S {
	if n == nil {
		var zero S
		return zero
	}
	return n.source
}

func (n *Notifier2[S, A, B]) Subscribe(listener Listener2[S, A, B]) {
	if n == nil {
		return
	}
	n.subscribe(listener)
}

func (n *Notifier2[S, A, B]) Unsubscribe(listener Listener2[S, A, B]) {
	if n == nil {
		return
	}
	n.subs.Remove(listener)
}

func (n *Notifier2[S, A, B]) Observe(fn func(source S, a A, b B)) (cancel func()) {
	listener := Func2(fn)
	n.Subscribe(listener)
	return func() { n.Unsubscribe(listener) }
}

func (n *Notifier2[S, A, B]) SubscriberCount() int {
	if n == nil {
		return 0
	}
	return n.subs.Len()
}

func (n *Notifier2[S, A, B]) Disposed() bool {
	return n == nil || n.disposed
}

func (t *Trigger2[S, A, B]) Invoke(a A, b B) {
	if t == nil || t.notifier == nil {
		return
	}
	n := t.notifier
	for _, listener := range n.subs.Snapshot() {
		if n.disposed {
			return
		}
		listener.HandleEvent(n.source, a, b)
	}
}

func (t *Trigger2[S, A, B]) Dispose() {
	if t == nil || t.notifier == nil {
		return
	}
	t.notifier.dispose()
	var zero S
	t.notifier.source = zero
}

func (t *Trigger2[S, A, B]) Close() error {
	t.Dispose()
	return nil
}

// Notifier3 is the subscribe side of an event with three arguments.
type Notifier3[S, A, B, C any] struct {
	source S
	listeners[Listener3[S, A, B, C]]
}

// Trigger3 is the creator's side of a Notifier3.
type Trigger3[S, A, B, C any] struct {
	noCopy   noCopy
	notifier *Notifier3[S, A, B, C]
}

// New3 creates a three-argument notifier whose events carry source.
func New3[S, A, B, C any](source S) (*Notifier3[S, A, B, C], *Trigger3[S, A, B, C]) {
	notifier := &Notifier3[S, A, B, C]{source: source}
	return notifier, &Trigger3[S, A, B, C]{notifier: notifier}
}

func (n *Notifier3[S, A, B, C]) Source() S {
	if n == nil {
		var zero S
		return zero
	}
	return n.source
}

func (n *Notifier3[S, A, B, C]) Subscribe(listener Listener3[S, A, B, C]) {
	if n == nil {
		return
	}
	n.subscribe(listener)
}

func (n *Notifier3[S, A, B, C]) Unsubscribe(listener Listener3[S, A, B, C]) {
	if n == nil {
		return
	}
	n.subs.Remove(listener)
}

func (n *Notifier3[S, A, B, C]) Observe(fn func(source S, a A, b B, c C)) (cancel func()) {
	listener := Func3(fn)
	n.Subscribe(listener)
	return func() { n.Unsubscribe(listener) }
}

func (n *Notifier3[S, A, B, C]) SubscriberCount() int {
	if n == nil {
		return 0
	}
	return n.subs.Len()
}

func (n *Notifier3[S, A, B, C]) Disposed() bool {
	return n == nil || n.disposed
}

func (t *Trigger3[S, A, B, C]) Invoke(a A, b B, c C) {
	if t == nil || t.notifier == nil {
		return
	}
	n := t.notifier
	for _, listener := range n.subs.Snapshot() {
		if n.disposed {
			return
		}
		listener.HandleEvent(n.source, a, b, c)
	}
}

func (t *Trigger3[S, A, B, C]) Dispose() {
	if t == nil || t.notifier == nil {
		return
	}
	t.notifier.dispose()
	var zero S
	t.notifier.source = zero
}

func (t *Trigger3[S, A, B, C]) Close() error {
	t.Dispose()
	return nil
}
