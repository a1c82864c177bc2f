package reactor

// Ctx is the explicit, per-evaluation dependency-tracking scope spec.md §4.3
// describes as a "scratch buffer swapped in after the cycle check". Every
// Calc/Action body receives one; reading a cell through Read(ctx, handle)
// records it as a candidate dependency of the cell currently evaluating.
//
// Go has no portable thread-local storage, so this module takes the
// context-parameter alternative spec.md §9 explicitly allows instead of the
// implicit tracking stack the original library uses — see SPEC_FULL.md §2.
type Ctx struct {
	scope *Scope
	self  *observerNode
	reads []*observerNode
	seen  map[*observerNode]struct{}
}

func (c *Ctx) reset(scope *Scope, self *observerNode) {
	c.scope = scope
	c.self = self
	c.reads = c.reads[:0]
	for k := range c.seen {
		delete(c.seen, k)
	}
}

func (c *Ctx) record(n *observerNode) {
	if c == nil {
		return
	}
	if _, ok := c.seen[n]; ok {
		return
	}
	c.seen[n] = struct{}{}
	c.reads = append(c.reads, n)
}

// Scope returns the scope the current evaluation is running in.
func (c *Ctx) Scope() *Scope { return c.scope }

// Read reads h's current value and, when ctx is non-nil (i.e. called from
// within a Calc/Action body), records h as a dependency of the cell being
// evaluated. A direct self-read is not rejected here: it is recorded like
// any other candidate and surfaces as a DependencyCycle (source == target)
// once the evaluation's candidate set is committed, matching the scenario
// spec.md §8 tests explicitly (c.reset(func(ctx) { ... Read(ctx, c) ... })).
func Read[T any](ctx *Ctx, h *Handle[T]) (T, error) {
	if ctx != nil {
		ctx.record(h.c.n)
	}
	return h.c.snapshot()
}

// Peek reads h's current value without ever recording a dependency, even
// when called from inside a Calc/Action body. Useful for diagnostics or
// logging reads that should not participate in the dataflow graph.
func Peek[T any](h *Handle[T]) (T, error) {
	return h.c.snapshot()
}
