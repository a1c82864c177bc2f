package reactor

import "fmt"

// anyCell is the type-erased face every cell[T] presents to the node,
// propagation and invalidation machinery, which cannot themselves be
// generic (observerNode.cell, InvalidationPolicy, the propagation queue).
type anyCell interface {
	node() *observerNode
	isSource() bool
	triggerPolicy() TriggerPolicy
	invalidationPolicy() InvalidationPolicy
	// evaluate recomputes the cell through ctx and returns the new value
	// boxed as any. Source cells return their already-written value without
	// running any factory.
	evaluate(ctx *Ctx) (any, error)
	// rawValue returns the current cached value (boxed) for trigger
	// comparisons, and whether one has ever been computed.
	rawValue() (any, bool)
	// freezeAsSource converts a computed cell into a source cell holding its
	// last value, used by KeepLast.
	freezeAsSource()
}

type cellKind int

const (
	kindSource cellKind = iota
	kindComputed
	kindAction
)

// cell[T] is the typed payload backing a Var, Calc or Action handle
// (spec.md §3's ReactiveCell<T>). Its cached value and factory are
// protected by its node's guard rather than a private mutex, since the
// node's lock already orders value mutations against adjacency changes.
type cell[T any] struct {
	n *observerNode

	kind cellKind

	value    T
	hasValue bool
	stale    bool

	factory func(*Ctx) (T, error)

	trigger      TriggerPolicy
	invalidation InvalidationPolicy
}

func (c *cell[T]) node() *observerNode                      { return c.n }
func (c *cell[T]) isSource() bool                           { return c.kind == kindSource }
func (c *cell[T]) triggerPolicy() TriggerPolicy             { return c.trigger }
func (c *cell[T]) invalidationPolicy() InvalidationPolicy   { return c.invalidation }

func (c *cell[T]) rawValue() (any, bool) {
	c.n.g.rlock()
	defer c.n.g.runlock()
	if !c.hasValue {
		return nil, false
	}
	return c.value, true
}

// snapshot returns the current cached value, the untracked get() of
// spec.md §4.4. NullAccess if the node is closed or nothing has been
// computed yet.
func (c *cell[T]) snapshot() (T, error) {
	c.n.g.rlock()
	defer c.n.g.runlock()
	var zero T
	if c.n.isClosed() {
		return zero, nullAccessError(c.n)
	}
	if !c.hasValue {
		return zero, nullAccessError(c.n)
	}
	return c.value, nil
}

// evaluate recomputes a computed/action cell through ctx. Source cells
// never run a factory; their value is whatever SetValue most recently
// wrote. On error, the prior cached value is left untouched (I5) and the
// cell is marked stale.
func (c *cell[T]) evaluate(ctx *Ctx) (any, error) {
	if c.kind == kindSource {
		v, _ := c.rawValue()
		return v, nil
	}

	val, err := c.runFactory(ctx)
	if err != nil {
		wrapped := wrapEvaluationError(c.n, err)
		c.n.g.lock()
		c.stale = true
		c.n.g.unlock()
		return nil, wrapped
	}

	c.n.g.lock()
	c.value, c.hasValue, c.stale = val, true, false
	c.n.g.unlock()
	return val, nil
}

func (c *cell[T]) runFactory(ctx *Ctx) (val T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return c.factory(ctx)
}

// freezeAsSource implements KeepLast: the cell keeps its last value, drops
// its factory, becomes a source, and discards its (now meaningless)
// dependency edges.
func (c *cell[T]) freezeAsSource() {
	c.n.g.lock()
	c.kind = kindSource
	c.factory = nil
	c.n.g.unlock()
	c.n.clearDependencies()
}

// CellOption configures a cell at construction time.
type CellOption[T any] func(*cell[T])

// WithTrigger overrides a cell's default Always trigger policy.
func WithTrigger[T any](p TriggerPolicy) CellOption[T] {
	return func(c *cell[T]) { c.trigger = p }
}

// WithChangeOnly is shorthand for WithTrigger(ChangeOnly()).
func WithChangeOnly[T any]() CellOption[T] {
	return func(c *cell[T]) { c.trigger = ChangeOnly() }
}

// WithInvalidation overrides a cell's default Cascade invalidation policy.
func WithInvalidation[T any](p InvalidationPolicy) CellOption[T] {
	return func(c *cell[T]) { c.invalidation = p }
}

// NewVar creates a source cell holding v (spec.md §4.1's var(v)).
func NewVar[T any](scope *Scope, v T, opts ...CellOption[T]) *Handle[T] {
	c := &cell[T]{kind: kindSource, value: v, hasValue: true, trigger: Always(), invalidation: Cascade()}
	for _, o := range opts {
		o(c)
	}
	c.n = scope.newNode(c)
	return newHandle(scope, c)
}

// NewCalc creates a computed cell whose value is produced by fn, with
// dependencies discovered automatically via Read(ctx, ...) calls inside fn
// (spec.md §4.1's calc(fn)). fn runs once synchronously at construction to
// compute the initial value and dependency set.
func NewCalc[T any](scope *Scope, fn func(*Ctx) (T, error), opts ...CellOption[T]) (*Handle[T], error) {
	c := &cell[T]{kind: kindComputed, factory: fn, trigger: Always(), invalidation: Cascade()}
	for _, o := range opts {
		o(c)
	}
	c.n = scope.newNode(c)
	h := newHandle(scope, c)
	if err := scope.initialEvaluate(c.n); err != nil {
		return h, err
	}
	return h, nil
}

// NewAction creates a side-effect cell (spec.md §4.1's action(fn)). Its
// declared value type is the empty struct, since an action's result is the
// side effect, not a value observers read.
func NewAction(scope *Scope, fn func(*Ctx) error, opts ...CellOption[struct{}]) (*Handle[struct{}], error) {
	wrapped := func(ctx *Ctx) (struct{}, error) { return struct{}{}, fn(ctx) }
	c := &cell[struct{}]{kind: kindAction, factory: wrapped, trigger: Always(), invalidation: Cascade()}
	for _, o := range opts {
		o(c)
	}
	c.n = scope.newNode(c)
	h := newHandle(scope, c)
	if err := scope.initialEvaluate(c.n); err != nil {
		return h, err
	}
	return h, nil
}

// resetComputed rebinds a computed cell's expression and re-discovers its
// dependencies through a tracked evaluation (spec.md §4.4's reset(fn)).
// On failure the prior expression, cached value and dependency edges are
// all restored untouched.
func resetComputed[T any](s *Scope, c *cell[T], fn func(*Ctx) (T, error)) error {
	if c.kind == kindSource {
		return invalidStateError(c.n, "source", "computed")
	}

	c.n.g.rlock()
	prevFactory := c.factory
	prevVal, prevHasVal, prevStale := c.value, c.hasValue, c.stale
	c.n.g.runlock()
	prevDeps := c.n.depsSnapshot()
	prevKind := c.kind

	rollback := func() {
		c.n.g.lock()
		c.factory = prevFactory
		c.value, c.hasValue, c.stale = prevVal, prevHasVal, prevStale
		c.kind = prevKind
		c.n.g.unlock()
		prevUpstreams := make([]*observerNode, len(prevDeps))
		for i, e := range prevDeps {
			prevUpstreams[i] = e.node
		}
		c.n.replaceDependencies(prevUpstreams, c.invalidation.dependencyStrength())
	}

	c.n.clearDependencies()
	c.n.g.lock()
	c.factory = fn
	c.n.g.unlock()

	ctx := s.acquireCtx(c.n)
	defer s.releaseCtx(ctx)
	newVal, err := c.evaluate(ctx)
	if err != nil {
		rollback()
		return err
	}

	if cerr := s.commitDependencies(c.n, ctx.reads); cerr != nil {
		rollback()
		return cerr
	}

	if prevHasVal && !c.trigger.ShouldPropagate(prevVal, newVal) {
		return nil
	}
	return s.propagate(c.n)
}
