package reactor

import "sync/atomic"

// nodeState is an ObserverNode's lifecycle position (spec.md §3: Active,
// Closed).
type nodeState int32

const (
	stateActive nodeState = iota
	stateClosed
)

// waveState tracks where a node sits in the current propagation wave
// (spec.md §4.6: Idle -> Scheduled -> Evaluating -> Done). It is only
// meaningful while the scope's wave lock is held exclusively.
type waveState int32

const (
	waveIdle waveState = iota
	waveScheduled
	waveEvaluating
	waveDone
)

// edgeKind distinguishes a strong dependency edge from a weak one (spec.md
// §3's "strong-or-weak references to upstream nodes, exact kind decided by
// the invalidation policy of the owning cell"). Strong edges are counted in
// the upstream's strongDependentCount; neither kind keeps the upstream
// Active once its own handles are all closed (see releaseHandle).
type edgeKind int

const (
	edgeWeak edgeKind = iota
	edgeStrong
)

type dependencyEdge struct {
	node *observerNode
	kind edgeKind
}

// observerNode is the universal graph vertex spec.md §3 describes. Every
// Var, Calc and Action is backed by exactly one of these; cell[T] holds the
// typed payload and delegates adjacency/lifecycle bookkeeping to it.
type observerNode struct {
	id    ID
	name  atomic.Pointer[string]
	scope *Scope
	cell  anyCell

	g guard

	state nodeStateBox

	deps      []dependencyEdge
	observers []*observerNode

	handleRefs           atomic.Int32
	strongDependentCount atomic.Int32

	wave waveState
}

// nodeStateBox wraps atomic.Int32 so observerNode's zero value (stateActive
// == 0) is already correct without an explicit initializer.
type nodeStateBox struct{ v atomic.Int32 }

func (b *nodeStateBox) load() nodeState    { return nodeState(b.v.Load()) }
func (b *nodeStateBox) store(s nodeState)  { b.v.Store(int32(s)) }
func (b *nodeStateBox) closeOnce() bool {
	return b.v.CompareAndSwap(int32(stateActive), int32(stateClosed))
}

func (n *observerNode) isClosed() bool { return n.state.load() == stateClosed }

func (n *observerNode) displayName() string {
	if p := n.name.Load(); p != nil {
		return *p
	}
	return "#" + uitoa(uint64(n.id))
}

func (n *observerNode) setName(name string) {
	n.name.Store(&name)
}

func uitoa(v uint64) string {
	if v == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	return string(buf[i:])
}

// depsSnapshot returns a stable copy of the current dependency edges.
func (n *observerNode) depsSnapshot() []dependencyEdge {
	n.g.rlock()
	defer n.g.runlock()
	out := make([]dependencyEdge, len(n.deps))
	copy(out, n.deps)
	return out
}

// observerSnapshot returns a stable copy of the current observer list.
func (n *observerNode) observerSnapshot() []*observerNode {
	n.g.rlock()
	defer n.g.runlock()
	out := make([]*observerNode, len(n.observers))
	copy(out, n.observers)
	return out
}

func (n *observerNode) addObserver(obs *observerNode) {
	n.g.lock()
	defer n.g.unlock()
	for _, o := range n.observers {
		if o == obs {
			return
		}
	}
	n.observers = append(n.observers, obs)
}

func (n *observerNode) removeObserver(obs *observerNode) {
	n.g.lock()
	defer n.g.unlock()
	for i, o := range n.observers {
		if o == obs {
			n.observers = append(n.observers[:i], n.observers[i+1:]...)
			return
		}
	}
}

// acquireStrongDependent records that dependent now strongly depends on n.
// This is bookkeeping only: a strong dependent never blocks n's owning
// Handle from tearing n down (spec.md §4.6/Scenario 5 requires a.close() to
// always close a, cascading to every dependent, regardless of who else
// still references it).
func (n *observerNode) acquireStrongDependent() {
	n.strongDependentCount.Add(1)
}

// releaseStrongDependent undoes acquireStrongDependent.
func (n *observerNode) releaseStrongDependent() {
	n.strongDependentCount.Add(-1)
}

// releaseHandle drops one external reference to n (Handle.Close). n closes
// once no external handle remains, unconditionally: the strong/weak
// distinction on dependency edges governs what a *dependent* does when its
// upstream disappears (InvalidationPolicy.onUpstreamClosed), never whether
// the upstream's own owning handle is allowed to close it.
func (n *observerNode) releaseHandle() {
	if n.handleRefs.Add(-1) > 0 {
		return
	}
	n.close()
}

// replaceDependencies atomically swaps n's dependency set for candidates,
// each edge carrying the given strength, updating both sides of every
// touched edge (spec.md invariant I1: adjacency is always symmetric).
// Caller must already have run the cycle check (scope.commitDependencies).
func (n *observerNode) replaceDependencies(candidates []*observerNode, strength edgeKind) {
	n.g.lock()
	old := n.deps
	next := make([]dependencyEdge, len(candidates))
	for i, c := range candidates {
		next[i] = dependencyEdge{node: c, kind: strength}
	}
	n.deps = next
	n.g.unlock()

	for _, e := range old {
		e.node.removeObserver(n)
		if e.kind == edgeStrong {
			e.node.releaseStrongDependent()
		}
	}
	for _, e := range next {
		e.node.addObserver(n)
		if e.kind == edgeStrong {
			e.node.acquireStrongDependent()
		}
	}
}

// clearDependencies discards n's dependency set without closing n, the
// first step of reset() (spec.md §4.4).
func (n *observerNode) clearDependencies() {
	n.replaceDependencies(nil, edgeWeak)
}

// close tears n down per spec.md §4.2: marks it Closed, detaches its
// adjacency both ways, releases any strong keeps it held over its own
// dependencies, and synchronously notifies every observer through that
// observer's own invalidation policy. Idempotent.
func (n *observerNode) close() {
	if !n.state.closeOnce() {
		return
	}

	n.g.lock()
	observers := n.observers
	deps := n.deps
	n.observers = nil
	n.deps = nil
	n.g.unlock()

	for _, e := range deps {
		e.node.removeObserver(n)
		if e.kind == edgeStrong {
			e.node.releaseStrongDependent()
		}
	}

	for _, obs := range observers {
		if obs.isClosed() {
			continue
		}
		obs.removeDependencyEdgeTo(n)
		obs.cell.invalidationPolicy().onUpstreamClosed(obs.cell, n)
	}

	if n.scope != nil {
		n.scope.forgetNode(n)
	}
}

// removeDependencyEdgeTo strips any edge pointing at lost from n's
// dependency set, used when an upstream closes so stale edges do not
// linger (the invalidation policy decides what, if anything, n does next).
func (n *observerNode) removeDependencyEdgeTo(lost *observerNode) {
	n.g.lock()
	defer n.g.unlock()
	for i, e := range n.deps {
		if e.node == lost {
			n.deps = append(n.deps[:i], n.deps[i+1:]...)
			return
		}
	}
}
