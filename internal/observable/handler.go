package observable

// Handler receives committed changes: the owner the value was created with,
// the previous value and the new one.
//
// Handlers are registered by identity, so implementations must have a
// comparable dynamic type. Pointer receivers are the usual choice.
type Handler[O, T any] interface {
	HandleChange(owner O, prev, next T)
}

type funcHandler[O, T any] struct {
	fn func(owner O, prev, next T)
}

func (h *funcHandler[O, T]) HandleChange(owner O, prev, next T) {
	h.fn(owner, prev, next)
}

// Func adapts fn into a Handler with its own identity. Keep the returned
// handler to unsubscribe it later; wrapping the same fn twice yields two
// distinct handlers.
func Func[O, T any](fn func(owner O, prev, next T)) Handler[O, T] {
	if fn == nil {
		return nil
	}
	return &funcHandler[O, T]{fn: fn}
}
