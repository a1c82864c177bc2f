package reactor

// InvalidationPolicy decides what happens to a cell when one of its
// dependencies closes (spec.md §4.5: Cascade, KeepLast, Custom), and
// separately how strongly that cell should hold onto its own dependencies
// (dependencyStrength) while they are both alive.
type InvalidationPolicy interface {
	// dependencyStrength reports the edgeKind new dependency edges owned by
	// a cell using this policy are created with.
	dependencyStrength() edgeKind
	// onUpstreamClosed runs synchronously, once, inside the closing
	// upstream's close(), when self depended on it.
	onUpstreamClosed(self anyCell, lost *observerNode)
}

type cascadePolicy struct{}

// Cascade closes self when any dependency closes. It is the default
// invalidation policy for every cell kind. Dependency edges it owns are
// recorded as strong; that mark is bookkeeping only and does not keep an
// upstream from closing.
func Cascade() InvalidationPolicy { return cascadePolicy{} }

func (cascadePolicy) dependencyStrength() edgeKind { return edgeStrong }

func (cascadePolicy) onUpstreamClosed(self anyCell, lost *observerNode) {
	self.node().close()
}

type keepLastPolicy struct{}

// KeepLast freezes self at its last successfully computed value when any
// dependency closes: self stops recomputing and behaves like a source cell
// holding that frozen value. Dependency edges it owns are weak, since this
// policy explicitly tolerates an upstream disappearing out from under it.
func KeepLast() InvalidationPolicy { return keepLastPolicy{} }

func (keepLastPolicy) dependencyStrength() edgeKind { return edgeWeak }

func (keepLastPolicy) onUpstreamClosed(self anyCell, lost *observerNode) {
	self.freezeAsSource()
}

type customPolicy struct {
	handler func(lost *observerNode)
}

// Custom runs handler when a dependency closes and otherwise does nothing
// to self automatically; handler is responsible for any cleanup, freeze,
// or cascade behavior the caller wants. Dependency edges it owns are weak,
// since the caller is in full control of the reaction.
func Custom(handler func(lost *observerNode)) InvalidationPolicy {
	return customPolicy{handler: handler}
}

func (customPolicy) dependencyStrength() edgeKind { return edgeWeak }

func (c customPolicy) onUpstreamClosed(self anyCell, lost *observerNode) {
	c.handler(lost)
}
