package observable

// Changeable is a Value whose handle also carries a setter. Anyone holding
// it can change the value; disposal still belongs to the owner through the
// Disposer returned by the constructor.
type Changeable[O, T any] struct {
	Value[O, T]
}

// Set proposes next as the new value with the same rules as Control.Set.
func (c *Changeable[O, T]) Set(next T) {
	if c == nil {
		return
	}
	c.set(next)
}

// ReadOnly returns the read-only handle, for code that should observe but
// not write.
func (c *Changeable[O, T]) ReadOnly() *Value[O, T] {
	if c == nil {
		return nil
	}
	return &c.Value
}
