package reactor

// writeSource implements SetValue for a source cell: write the value,
// then propagate iff the trigger policy approves (spec.md §4.4/§4.7 point
// 1). Must run with the scope's wave ownership already acquired (see
// scope.runWave).
func writeSource[T any](s *Scope, c *cell[T], v T) error {
	if c.kind != kindSource {
		return invalidStateError(c.n, cellKindName(c.kind), "source")
	}
	if c.n.isClosed() {
		return nullAccessError(c.n)
	}

	old, hadOld := c.rawValue()

	c.n.g.lock()
	c.value, c.hasValue = v, true
	c.n.g.unlock()

	if hadOld && !c.trigger.ShouldPropagate(old, v) {
		return nil
	}
	return s.propagate(c.n)
}

func cellKindName(k cellKind) string {
	switch k {
	case kindSource:
		return "source"
	case kindComputed:
		return "computed"
	case kindAction:
		return "action"
	default:
		return "unknown"
	}
}

// commitDependencies runs the cycle check spec.md §4.7 point 2 describes
// and, if it passes, replaces self's dependency set with candidates. It is
// called after every tracked evaluation (initial, reset, and in-wave
// recomputation), since a computed cell's dependency set must always equal
// exactly the nodes read during its most recent successful evaluation
// (invariant I4).
func (s *Scope) commitDependencies(self *observerNode, candidates []*observerNode) error {
	for _, d := range candidates {
		if d == self {
			return dependencyCycleError(self, self)
		}
	}
	for _, d := range candidates {
		if reachableUpstream(d, self) {
			return dependencyCycleError(self, d)
		}
	}
	self.replaceDependencies(candidates, self.cell.invalidationPolicy().dependencyStrength())
	return nil
}

// reachableUpstream reports whether target is reachable from from by
// walking dependency edges in the upstream direction, via an iterative,
// non-recursive stack (adapted from the teacher's FindDependents, which
// avoids recursion so a long dependency chain cannot overflow the stack).
func reachableUpstream(from, target *observerNode) bool {
	visited := map[*observerNode]bool{}
	stack := []*observerNode{from}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[n] {
			continue
		}
		visited[n] = true
		if n == target {
			return true
		}
		for _, e := range n.depsSnapshot() {
			stack = append(stack, e.node)
		}
	}
	return false
}

// propagate runs a single wave rooted at origin, whose value has just
// changed (spec.md §4.7). Must run with the scope's wave ownership already
// acquired. origin itself is not re-evaluated here: callers evaluate/write
// it first (writeSource, resetComputed) and only invoke propagate once
// origin's trigger has already approved continuing.
func (s *Scope) propagate(origin *observerNode) error {
	waveID := s.waveCounter.Add(1)
	corr := newCorrelationID()

	s.notifyWaveStart(waveID, origin.id)

	w := s.collectWave(origin)
	defer s.pool.releaseWaveScratch(w)
	if _, ok := w.reachable[origin]; ok {
		err := dependencyCycleError(origin, origin)
		s.notifyWaveEnd(waveID, 0, err)
		return err
	}

	pending := make(map[*observerNode]int, len(w.indegree))
	fired := make(map[*observerNode]bool, len(w.indegree))
	for n, d := range w.indegree {
		pending[n] = d
	}

	var ready []*observerNode
	for n, d := range pending {
		if d == 0 {
			ready = append(ready, n)
			fired[n] = true
			n.wave = waveScheduled
		}
	}
	defer func() {
		for n := range w.indegree {
			n.wave = waveIdle
		}
	}()

	touched := 0
	for len(ready) > 0 {
		sortByID(ready)
		n := ready[0]
		ready = ready[1:]
		if n.isClosed() {
			continue
		}

		n.wave = waveEvaluating
		proceed := s.evaluateNodeInWave(n, waveID, corr)
		n.wave = waveDone
		touched++

		for _, obs := range n.observerSnapshot() {
			d, tracked := pending[obs]
			if !tracked {
				continue
			}
			if proceed {
				fired[obs] = true
			}
			d--
			pending[obs] = d
			if d == 0 {
				delete(pending, obs)
				if fired[obs] {
					ready = append(ready, obs)
					obs.wave = waveScheduled
				}
			}
		}
	}

	s.notifyWaveEnd(waveID, touched, nil)
	return nil
}

// collectWave gathers every node transitively reachable from origin's
// observers (the "collected subgraph" of spec.md §4.7 point 1) along with
// each one's indegree counted only over edges whose source is another
// member of the collected set (edges from origin are not counted). The
// returned *waveScratch is pooled
// (scope.pool); callers must return it via releaseWaveScratch once the wave
// finishes.
func (s *Scope) collectWave(origin *observerNode) *waveScratch {
	w := s.pool.acquireWaveScratch()

	visited := map[*observerNode]bool{origin: true}
	queue := []*observerNode{origin}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, obs := range cur.observerSnapshot() {
			if obs.isClosed() {
				continue
			}
			w.reachable[obs] = struct{}{}
			if !visited[obs] {
				visited[obs] = true
				queue = append(queue, obs)
			}
		}
	}

	for n := range w.reachable {
		count := 0
		for _, e := range n.depsSnapshot() {
			if e.node == origin {
				// origin already holds its new value by the time propagate
				// runs (writeSource/resetComputed write it before calling
				// propagate), so an edge back to origin is already
				// satisfied and must not hold this node out of the
				// initial frontier.
				continue
			}
			if _, ok := w.reachable[e.node]; ok {
				count++
			}
		}
		w.indegree[n] = count
	}
	return w
}

// evaluateNodeInWave recomputes n through the extension chain, commits its
// freshly discovered dependencies, and reports whether its trigger approves
// continuing propagation to its own observers.
func (s *Scope) evaluateNodeInWave(n *observerNode, waveID uint64, corr string) bool {
	old, _ := n.cell.rawValue()

	newVal, err := s.runThroughExtensions(n, OpEvaluate, func() (any, error) {
		ctx := s.acquireCtx(n)
		defer s.releaseCtx(ctx)
		val, evalErr := n.cell.evaluate(ctx)
		if evalErr != nil {
			return val, evalErr
		}
		return val, s.commitDependencies(n, ctx.reads)
	})

	if err != nil {
		s.notifyError(err, n, OpEvaluate)
		s.logger().Error("cell evaluation failed", "node", n.displayName(), "wave", waveID, "correlation", corr, "error", err)
		return false
	}

	return n.cell.triggerPolicy().ShouldPropagate(old, newVal)
}
