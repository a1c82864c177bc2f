package reactor

import "testing"

func TestNodeCloseIsIdempotent(t *testing.T) {
	s := NewScope()
	v := NewVar(s, 1)

	if err := v.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := v.Close(); err != nil {
		t.Fatalf("second Close should also succeed: %v", err)
	}
	if !v.IsClosed() {
		t.Fatalf("expected node to be closed")
	}
}

func TestCascadeClosesDependentWhenUpstreamCloses(t *testing.T) {
	s := NewScope()
	a := NewVar(s, 1)
	b, err := NewCalc(s, func(ctx *Ctx) (int, error) {
		av, err := Read(ctx, a)
		if err != nil {
			return 0, err
		}
		return av * 2, nil
	})
	if err != nil {
		t.Fatalf("NewCalc: %v", err)
	}

	if err := a.Close(); err != nil {
		t.Fatalf("Close a: %v", err)
	}
	if !b.IsClosed() {
		t.Fatalf("expected b to cascade-close when a closed")
	}
}

func TestKeepLastFreezesOnUpstreamClose(t *testing.T) {
	s := NewScope()
	a := NewVar(s, 10)
	b, err := NewCalc(s, func(ctx *Ctx) (int, error) {
		av, err := Read(ctx, a)
		if err != nil {
			return 0, err
		}
		return av + 1, nil
	}, WithInvalidation[int](KeepLast()))
	if err != nil {
		t.Fatalf("NewCalc: %v", err)
	}

	if err := a.Close(); err != nil {
		t.Fatalf("Close a: %v", err)
	}
	if b.IsClosed() {
		t.Fatalf("expected b to survive a's close under KeepLast")
	}
	got, err := b.Get()
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != 11 {
		t.Fatalf("expected frozen value 11, got %d", got)
	}
}

func TestClosingUpstreamClosesDependentEvenUnderStrongEdge(t *testing.T) {
	s := NewScope()
	a := NewVar(s, 1)
	b, err := NewCalc(s, func(ctx *Ctx) (int, error) {
		return Read(ctx, a)
	})
	if err != nil {
		t.Fatalf("NewCalc: %v", err)
	}

	// Cascade (the default) owns a strong dependency edge, but that must
	// never block a's own owning handle from closing a: spec.md §4.6 /
	// Scenario 5 requires a.Close() to tear a down and cascade to b
	// regardless of who else references a.
	if err := a.Close(); err != nil {
		t.Fatalf("Close a: %v", err)
	}
	if !a.IsClosed() {
		t.Fatalf("expected a to close unconditionally")
	}
	if !b.IsClosed() {
		t.Fatalf("expected b to cascade-close when a closed")
	}
	if _, err := b.Get(); !IsKind(err, KindNullAccess) {
		t.Fatalf("expected NullAccess from a closed dependent, got %v", err)
	}
}
