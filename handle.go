package reactor

// Handle[T] is the externally held, reference-counted pointer to a cell
// (spec.md §3). Application code stores Handles; the underlying cell tears
// down when the last Handle is closed, or close() is called explicitly.
type Handle[T any] struct {
	scope *Scope
	c     *cell[T]
}

func newHandle[T any](scope *Scope, c *cell[T]) *Handle[T] {
	c.n.handleRefs.Store(1)
	return &Handle[T]{scope: scope, c: c}
}

// ID returns the handle's underlying node identity.
func (h *Handle[T]) ID() ID { return h.c.n.id }

// Name returns the node's display name, its #id if none was set.
func (h *Handle[T]) Name() string { return h.c.n.displayName() }

// SetName assigns a diagnostic name, settable at most meaningfully once
// before the cell is used in error messages and debug rendering (mirrors
// basic_example.cpp's var(100.0).setName("buyPrice")).
func (h *Handle[T]) SetName(name string) *Handle[T] {
	h.c.n.setName(name)
	return h
}

// Get returns the cached value without tracking a dependency. Call
// Read(ctx, h) from inside a Calc/Action body instead.
func (h *Handle[T]) Get() (T, error) { return h.c.snapshot() }

// IsCached reports whether the cell currently holds a computed value.
func (h *Handle[T]) IsCached() bool {
	_, ok := h.c.rawValue()
	return ok
}

// IsClosed reports whether the underlying node has torn down.
func (h *Handle[T]) IsClosed() bool { return h.c.n.isClosed() }

// SetValue writes v to a source cell, propagating to observers if the
// trigger policy approves. Returns InvalidState for a computed or action
// cell.
func (h *Handle[T]) SetValue(v T) error {
	return h.scope.runWave(func() error { return writeSource(h.scope, h.c, v) })
}

// Value is SetValue's chainable convenience form, mirroring
// buyPrice.value(110.0).value(95.0) from basic_example.cpp. It panics on
// failure the same way tag.go's MustGet panics on a missing tag: a
// programmer-error path (calling value() on a non-source cell), not a
// runtime data condition callers are expected to handle inline. Use
// SetValue directly when the error needs to be handled.
func (h *Handle[T]) Value(v T) *Handle[T] {
	if err := h.SetValue(v); err != nil {
		panic(err)
	}
	return h
}

// Reset rebinds a computed cell's expression, re-discovering its
// dependency set through a tracked evaluation. InvalidState on a source
// cell.
func (h *Handle[T]) Reset(fn func(*Ctx) (T, error)) error {
	return h.scope.runWave(func() error { return resetComputed(h.scope, h.c, fn) })
}

// Close releases this handle's reference. The node closes once no handle
// remains, whether or not other cells still depend on it. Idempotent.
func (h *Handle[T]) Close() error {
	h.c.n.releaseHandle()
	return nil
}
