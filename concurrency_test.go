package reactor

import (
	"sync"
	"testing"
)

func TestGateArmsOnSecondOverlappingCaller(t *testing.T) {
	g := newConcurrencyGate(false)
	if g.isArmed() {
		t.Fatalf("expected a fresh gate to start dormant")
	}

	g.enter()
	if g.isArmed() {
		t.Fatalf("expected a single caller not to arm the gate")
	}
	g.enter() // simulate a second, overlapping caller
	if !g.isArmed() {
		t.Fatalf("expected the gate to arm once overlap is observed")
	}
	g.leave()
	g.leave()
	if !g.isArmed() {
		t.Fatalf("expected the gate to stay armed once armed (one-way latch)")
	}
}

func TestForceThreadSafetyArmsImmediately(t *testing.T) {
	s := NewScope(WithForceThreadSafety())
	if !s.gate.isArmed() {
		t.Fatalf("expected WithForceThreadSafety to arm the gate at construction")
	}
}

func TestConcurrentWritesFromMultipleGoroutinesAllApply(t *testing.T) {
	s := NewScope()
	v := NewVar(s, 0)

	var wg sync.WaitGroup
	for i := 1; i <= 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_ = v.SetValue(n)
		}(i)
	}
	wg.Wait()

	if !s.gate.isArmed() {
		t.Fatalf("expected concurrent callers from distinct goroutines to arm the gate")
	}
	got, err := v.Get()
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got < 1 || got > 50 {
		t.Fatalf("expected final value to be one of the written writers, got %d", got)
	}
}

func TestSortByIDOrdersAscending(t *testing.T) {
	s := NewScope()
	a := NewVar(s, 1)
	b := NewVar(s, 2)
	c := NewVar(s, 3)
	nodes := []*observerNode{c.c.n, a.c.n, b.c.n}
	sortByID(nodes)
	for i := 1; i < len(nodes); i++ {
		if nodes[i-1].id > nodes[i].id {
			t.Fatalf("expected ascending ID order, got %v", nodes)
		}
	}
}
