package reactor

// Filter1..Filter4 build a Filter TriggerPolicy bound to a fixed arity of
// named upstream cells, generalizing the teacher's generated
// Derive1..Derive9 dependency-arity pattern (originally executor_generated.go)
// to trigger-policy construction instead of dependency wiring. Each locks
// the bound handles' current snapshots before invoking the predicate,
// matching FilterTrig::filter's weak-bind-then-call shape.

// Filter1 builds a Filter trigger over a single named upstream.
func Filter1[A any](pred func(A) bool, a *Handle[A]) TriggerPolicy {
	return &filterTrigger{
		upstreams: []*observerNode{a.c.n},
		predicate: func() bool {
			av, err := a.Get()
			if err != nil {
				return false
			}
			return pred(av)
		},
	}
}

// Filter2 builds a Filter trigger over two named upstreams.
func Filter2[A, B any](pred func(A, B) bool, a *Handle[A], b *Handle[B]) TriggerPolicy {
	return &filterTrigger{
		upstreams: []*observerNode{a.c.n, b.c.n},
		predicate: func() bool {
			av, err := a.Get()
			if err != nil {
				return false
			}
			bv, err := b.Get()
			if err != nil {
				return false
			}
			return pred(av, bv)
		},
	}
}

// Filter3 builds a Filter trigger over three named upstreams.
func Filter3[A, B, C any](pred func(A, B, C) bool, a *Handle[A], b *Handle[B], c *Handle[C]) TriggerPolicy {
	return &filterTrigger{
		upstreams: []*observerNode{a.c.n, b.c.n, c.c.n},
		predicate: func() bool {
			av, err := a.Get()
			if err != nil {
				return false
			}
			bv, err := b.Get()
			if err != nil {
				return false
			}
			cv, err := c.Get()
			if err != nil {
				return false
			}
			return pred(av, bv, cv)
		},
	}
}

// Filter4 builds a Filter trigger over four named upstreams.
func Filter4[A, B, C, D any](pred func(A, B, C, D) bool, a *Handle[A], b *Handle[B], c *Handle[C], d *Handle[D]) TriggerPolicy {
	return &filterTrigger{
		upstreams: []*observerNode{a.c.n, b.c.n, c.c.n, d.c.n},
		predicate: func() bool {
			av, err := a.Get()
			if err != nil {
				return false
			}
			bv, err := b.Get()
			if err != nil {
				return false
			}
			cv, err := c.Get()
			if err != nil {
				return false
			}
			dv, err := d.Get()
			if err != nil {
				return false
			}
			return pred(av, bv, cv, dv)
		},
	}
}
