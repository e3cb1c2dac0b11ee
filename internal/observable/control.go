package observable

// noCopy marks owner tokens so go vet's copylocks check reports copies.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// Disposer is the owner's teardown capability for a value. Dispose is
// idempotent. Close is provided so a Disposer can be handed to anything that
// releases an io.Closer.
type Disposer struct {
	noCopy  noCopy
	dispose func()
}

func (d *Disposer) Dispose() {
	if d == nil || d.dispose == nil {
		return
	}
	d.dispose()
}

func (d *Disposer) Close() error {
	d.Dispose()
	return nil
}

// Control is the owner's write capability for a Value. It is returned only
// to the caller of the constructor and must not be shared or copied; hand
// out the Value instead.
type Control[T any] struct {
	noCopy  noCopy
	set     func(T)
	dispose func()
}

// Set proposes next as the new value. Equal values, and any value after
// disposal, are ignored.
//
// Handlers and the pre-change hook run synchronously inside Set. Nothing
// guards against them calling Set or Dispose on the same value: a nested Set
// delivers its own change before the outer pass resumes, and Dispose stops
// the remaining deliveries of the outer pass.
func (c *Control[T]) Set(next T) {
	if c == nil || c.set == nil {
		return
	}
	c.set(next)
}

// Dispose ends the value: subscribers are dropped, the value and owner reset
// to their zero values. Later calls do nothing.
func (c *Control[T]) Dispose() {
	if c == nil || c.dispose == nil {
		return
	}
	c.dispose()
}

// Close disposes the value and always returns nil.
func (c *Control[T]) Close() error {
	c.Dispose()
	return nil
}
