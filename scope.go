package reactor

import (
	"sync"
	"sync/atomic"

	"github.com/flowmesh/reactor/reactorlog"
)

// Level mirrors original_source/include/reaction/log.h's threshold gate,
// kept as Config.LogThreshold.
type Level = reactorlog.Level

// Config configures a Scope at construction, grounded on the teacher's
// ScopeOption/WithScopeTag pattern in scope.go.
type Config struct {
	// ForceThreadSafety arms the concurrency gate immediately instead of
	// waiting for overlapping callers to be observed (spec.md §5's escape
	// hatch for callers who know up front they will use the scope from
	// multiple goroutines).
	ForceThreadSafety bool
	// LogThreshold is the minimum severity the diagnostic sink emits.
	// Defaults to reactorlog.Error.
	LogThreshold Level
	// Logger overrides the default diagnostic sink entirely.
	Logger *reactorlog.Logger

	extensions []Extension
}

// Option configures a Scope.
type Option func(*Config)

// WithForceThreadSafety arms the scope's concurrency gate from creation.
func WithForceThreadSafety() Option { return func(c *Config) { c.ForceThreadSafety = true } }

// WithLogThreshold sets the minimum diagnostic severity emitted.
func WithLogThreshold(l Level) Option { return func(c *Config) { c.LogThreshold = l } }

// WithLogger overrides the scope's diagnostic sink.
func WithLogger(l *reactorlog.Logger) Option { return func(c *Config) { c.Logger = l } }

// WithExtension registers an Extension at construction time.
func WithExtension(e Extension) Option {
	return func(c *Config) { c.extensions = append(c.extensions, e) }
}

// Scope owns every node created through it: the node table, the global
// wave-exclusive lock, the reentrant-write queue, the extension chain and
// the concurrency gate every node's guard shares. It is the root object an
// application constructs once (spec.md §3's "owning scope").
type Scope struct {
	gate *concurrencyGate

	waveMu    sync.Mutex
	waveOwner atomic.Uint64

	deferredMu sync.Mutex
	deferred   []func() error

	nodesMu sync.RWMutex
	nodes   map[ID]*observerNode

	extMu      sync.RWMutex
	extensions []Extension

	waveCounter atomic.Uint64
	waves       *waveLog

	pool *scratchPool
	log  *reactorlog.Logger
}

// NewScope constructs a Scope, mirroring the teacher's NewScope(opts
// ...ScopeOption) constructor shape.
func NewScope(opts ...Option) *Scope {
	cfg := &Config{LogThreshold: reactorlog.Error}
	for _, o := range opts {
		o(cfg)
	}

	s := &Scope{
		gate:  newConcurrencyGate(cfg.ForceThreadSafety),
		nodes: make(map[ID]*observerNode),
		waves: newWaveLog(64),
		pool:  newScratchPool(),
	}
	s.log = cfg.Logger
	if s.log == nil {
		s.log = reactorlog.New(cfg.LogThreshold)
	}
	s.extensions = append(s.extensions, cfg.extensions...)
	sortExtensionsByOrder(s.extensions)
	for _, e := range s.extensions {
		_ = e.Init(s)
	}
	return s
}

func (s *Scope) logger() *reactorlog.Logger { return s.log }

// acquireCtx/releaseCtx pool the per-evaluation Ctx scratch buffer (see
// pool_manager.go's scratchPool), used at every evaluation site instead of
// allocating a fresh Ctx each time.
func (s *Scope) acquireCtx(self *observerNode) *Ctx {
	c := s.pool.acquireCtx()
	c.reset(s, self)
	return c
}

func (s *Scope) releaseCtx(c *Ctx) {
	s.pool.releaseCtx(c)
}

// UseExtension registers an additional extension after construction,
// re-sorting the chain by Order() the same way the teacher's
// Scope.UseExtension does.
func (s *Scope) UseExtension(e Extension) {
	s.extMu.Lock()
	defer s.extMu.Unlock()
	s.extensions = append(s.extensions, e)
	sortExtensionsByOrder(s.extensions)
	_ = e.Init(s)
}

func (s *Scope) extensionsSnapshot() []Extension {
	s.extMu.RLock()
	defer s.extMu.RUnlock()
	out := make([]Extension, len(s.extensions))
	copy(out, s.extensions)
	return out
}

func (s *Scope) newNode(c anyCell) *observerNode {
	n := &observerNode{id: nextID(), scope: s, cell: c}
	n.g.gate = s.gate
	n.handleRefs.Store(1)
	s.nodesMu.Lock()
	s.nodes[n.id] = n
	s.nodesMu.Unlock()
	return n
}

func (s *Scope) forgetNode(n *observerNode) {
	s.nodesMu.Lock()
	delete(s.nodes, n.id)
	s.nodesMu.Unlock()
}

// NodeCount reports how many nodes are currently Active in the scope.
func (s *Scope) NodeCount() int {
	s.nodesMu.RLock()
	defer s.nodesMu.RUnlock()
	return len(s.nodes)
}

// ExportDependencyGraph returns, for every live node, the IDs of its direct
// observers (dependents), keyed by node ID. Used by reactordebug to render
// the graph without reaching into unexported node internals.
func (s *Scope) ExportDependencyGraph() map[ID][]ID {
	s.nodesMu.RLock()
	nodes := make([]*observerNode, 0, len(s.nodes))
	for _, n := range s.nodes {
		nodes = append(nodes, n)
	}
	s.nodesMu.RUnlock()

	out := make(map[ID][]ID, len(nodes))
	for _, n := range nodes {
		obs := n.observerSnapshot()
		ids := make([]ID, len(obs))
		for i, o := range obs {
			ids[i] = o.id
		}
		out[n.id] = ids
	}
	return out
}

// NodeName returns the display name of the live node with the given ID, or
// "" if no such node exists.
func (s *Scope) NodeName(id ID) string {
	s.nodesMu.RLock()
	n, ok := s.nodes[id]
	s.nodesMu.RUnlock()
	if !ok {
		return ""
	}
	return n.displayName()
}

// initialEvaluate runs a freshly constructed computed/action cell's factory
// once, via the tracker, to establish its initial value and dependency set
// (spec.md §4.1). It goes through the same wave-ownership path as any other
// write so construction is safe to call concurrently with writes on other
// goroutines.
func (s *Scope) initialEvaluate(n *observerNode) error {
	return s.runWave(func() error {
		ctx := s.acquireCtx(n)
		defer s.releaseCtx(ctx)
		_, err := n.cell.evaluate(ctx)
		if err != nil {
			return err
		}
		return s.commitDependencies(n, ctx.reads)
	})
}

// runWave is the single entry point for anything that may start a
// propagation wave: a source write, a computed reset, or initial
// evaluation. It implements spec.md §4.7's "re-entrant writes performed
// inside an evaluation are deferred" rule: a write arriving on the same
// goroutine that is already driving a wave is queued rather than recursed
// into (sync.Mutex is not reentrant, and recursing would deadlock); a write
// arriving on a different goroutine genuinely blocks until the in-flight
// wave (and everything it deferred) finishes, matching "serialized by the
// global write lock" for the armed, multi-goroutine case.
func (s *Scope) runWave(write func() error) error {
	gid := goroutineID()
	if gid != 0 && s.waveOwner.Load() == gid {
		s.deferredMu.Lock()
		s.deferred = append(s.deferred, write)
		s.deferredMu.Unlock()
		return nil
	}

	s.gate.enter()
	defer s.gate.leave()

	s.waveMu.Lock()
	s.waveOwner.Store(gid)
	defer func() {
		s.waveOwner.Store(0)
		s.waveMu.Unlock()
	}()

	if err := write(); err != nil {
		s.drainDeferred()
		return err
	}
	s.drainDeferred()
	return nil
}

// drainDeferred runs every write queued by a reentrant call during the wave
// that just completed, in enqueue order, each as its own subsequent wave.
// Failures are logged rather than aborting the remaining queue: a later
// reentrant write is independent of an earlier one that failed.
func (s *Scope) drainDeferred() {
	for {
		s.deferredMu.Lock()
		if len(s.deferred) == 0 {
			s.deferredMu.Unlock()
			return
		}
		next := s.deferred[0]
		s.deferred = s.deferred[1:]
		s.deferredMu.Unlock()

		if err := next(); err != nil {
			s.log.Error("deferred write failed", "error", err)
		}
	}
}

// RecentWaves returns a snapshot of the most recently completed
// propagation waves, bounded to a fixed ring (diagnostics only).
func (s *Scope) RecentWaves() []WaveSummary {
	return s.waves.snapshot()
}

func (s *Scope) notifyWaveStart(waveID uint64, origin ID) {
	for _, e := range s.extensionsSnapshot() {
		e.OnWaveStart(s, waveID, origin)
	}
}

func (s *Scope) notifyWaveEnd(waveID uint64, touched int, err error) {
	s.waves.record(WaveSummary{ID: waveID, Touched: touched, Err: err})
	for _, e := range s.extensionsSnapshot() {
		e.OnWaveEnd(s, waveID, touched, err)
	}
}

func (s *Scope) notifyError(err error, n *observerNode, kind OperationKind) {
	op := &Operation{Kind: kind, NodeID: n.id, Scope: s}
	for _, e := range s.extensionsSnapshot() {
		e.OnError(err, op, s)
	}
}

// runThroughExtensions wraps fn in the scope's Extension.Wrap chain, in
// registration (Order()) sequence, mirroring the teacher's
// Scope.Resolve/Update middleware composition.
func (s *Scope) runThroughExtensions(n *observerNode, kind OperationKind, fn func() (any, error)) (any, error) {
	exts := s.extensionsSnapshot()
	op := &Operation{Kind: kind, NodeID: n.id, Scope: s}

	next := fn
	for i := len(exts) - 1; i >= 0; i-- {
		e := exts[i]
		prev := next
		next = func() (any, error) { return e.Wrap(op, prev) }
	}
	return next()
}

// Dispose tears down every extension registered on the scope. It does not
// close any node; call Handle.Close on each live handle first if a full
// teardown is wanted.
func (s *Scope) Dispose() error {
	var firstErr error
	for _, e := range s.extensionsSnapshot() {
		if err := e.Dispose(s); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func sortExtensionsByOrder(exts []Extension) {
	for i := 1; i < len(exts); i++ {
		for j := i; j > 0 && exts[j-1].Order() > exts[j].Order(); j-- {
			exts[j-1], exts[j] = exts[j], exts[j-1]
		}
	}
}
