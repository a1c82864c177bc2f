// Package reactor implements a single-process reactive dataflow engine:
// source cells (Var), computed cells (Calc) whose dependencies are
// discovered automatically as they read other cells through a *Ctx, and
// action cells (Action) for side effects. A write to a source cell runs a
// single topologically-ordered propagation wave over every cell that
// transitively observes it, evaluating each at most once.
//
// The graph starts dormant: a scope used from a single goroutine pays no
// synchronization cost. The first time two callers are observed operating
// on the scope concurrently, it arms permanently and every subsequent
// access is guarded by per-node and global locks.
package reactor
