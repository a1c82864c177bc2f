package reactor

import "sync"

// scratchPool reuses the scratch allocations every evaluation and every
// propagation wave would otherwise allocate fresh: the tracked-read *Ctx
// per node evaluation, and the reachable/indegree maps collectWave builds
// per wave. Adapted from the teacher's PoolManager, which applies the same
// sync.Pool technique to *ResolveCtx and *ExecutionCtx; the hit/miss
// metrics it exposes are kept for the same reason the teacher keeps them
// (visibility into whether the pool is actually paying for itself under
// load), trimmed to the two pools this engine actually needs.
type scratchPool struct {
	ctxPool  sync.Pool
	wavePool sync.Pool

	metrics   PoolMetrics
	metricsMu sync.Mutex
}

// PoolMetrics reports how often scratchPool served a reused allocation
// versus had to create one.
type PoolMetrics struct {
	CtxHits, CtxMisses   uint64
	WaveHits, WaveMisses uint64
}

func newScratchPool() *scratchPool {
	p := &scratchPool{}
	p.ctxPool.New = func() any {
		p.metricsMu.Lock()
		p.metrics.CtxMisses++
		p.metricsMu.Unlock()
		return &Ctx{seen: make(map[*observerNode]struct{}, 8)}
	}
	p.wavePool.New = func() any {
		p.metricsMu.Lock()
		p.metrics.WaveMisses++
		p.metricsMu.Unlock()
		return &waveScratch{
			reachable: make(map[*observerNode]struct{}, 16),
			indegree:  make(map[*observerNode]int, 16),
		}
	}
	return p
}

// waveScratch holds the reachable/indegree maps propagation.go's
// collectWave needs for one wave; acquired and released around every call
// to Scope.propagate.
type waveScratch struct {
	reachable map[*observerNode]struct{}
	indegree  map[*observerNode]int
}

func (p *scratchPool) acquireCtx() *Ctx {
	c := p.ctxPool.Get().(*Ctx)
	p.metricsMu.Lock()
	p.metrics.CtxHits++
	p.metricsMu.Unlock()
	return c
}

func (p *scratchPool) releaseCtx(c *Ctx) {
	c.scope, c.self = nil, nil
	c.reads = c.reads[:0]
	for k := range c.seen {
		delete(c.seen, k)
	}
	p.ctxPool.Put(c)
}

func (p *scratchPool) acquireWaveScratch() *waveScratch {
	w := p.wavePool.Get().(*waveScratch)
	p.metricsMu.Lock()
	p.metrics.WaveHits++
	p.metricsMu.Unlock()
	for k := range w.reachable {
		delete(w.reachable, k)
	}
	for k := range w.indegree {
		delete(w.indegree, k)
	}
	return w
}

func (p *scratchPool) releaseWaveScratch(w *waveScratch) {
	p.wavePool.Put(w)
}

// Metrics returns a snapshot of the pool's hit/miss counters.
func (p *scratchPool) Metrics() PoolMetrics {
	p.metricsMu.Lock()
	defer p.metricsMu.Unlock()
	return p.metrics
}
