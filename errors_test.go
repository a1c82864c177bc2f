package reactor

import "testing"

func TestResetSelfReadIsDependencyCycle(t *testing.T) {
	s := NewScope()
	a := NewVar(s, 1)
	c, err := NewCalc(s, func(ctx *Ctx) (int, error) {
		av, err := Read(ctx, a)
		return av + 1, err
	})
	if err != nil {
		t.Fatalf("NewCalc: %v", err)
	}

	err = c.Reset(func(ctx *Ctx) (int, error) {
		cv, err := Read(ctx, c)
		if err != nil {
			return 0, err
		}
		av, err := Read(ctx, a)
		return cv + av, err
	})
	if !IsKind(err, KindDependencyCycle) {
		t.Fatalf("expected DependencyCycle, got %v", err)
	}

	// Prior expression must remain installed (spec.md §8 scenario 3).
	got, gerr := c.Get()
	if gerr != nil {
		t.Fatalf("Get after failed reset: %v", gerr)
	}
	if got != 2 {
		t.Fatalf("expected prior value 2 to survive a rejected reset, got %d", got)
	}
}

func TestResetIndirectCycleIsRejected(t *testing.T) {
	s := NewScope()
	a := NewVar(s, 1)
	b, err := NewCalc(s, func(ctx *Ctx) (int, error) { return Read(ctx, a) })
	if err != nil {
		t.Fatalf("NewCalc b: %v", err)
	}
	c, err := NewCalc(s, func(ctx *Ctx) (int, error) { return Read(ctx, b) })
	if err != nil {
		t.Fatalf("NewCalc c: %v", err)
	}

	// Rebind b to depend on c, which would close the cycle b -> c -> b.
	err = b.Reset(func(ctx *Ctx) (int, error) { return Read(ctx, c) })
	if !IsKind(err, KindDependencyCycle) {
		t.Fatalf("expected DependencyCycle, got %v", err)
	}
	// b's prior expression (reading a) must still be installed.
	got, gerr := b.Get()
	if gerr != nil || got != 1 {
		t.Fatalf("expected b to keep its prior value 1, got %d, err=%v", got, gerr)
	}
}

func TestGetOnClosedCellIsNullAccess(t *testing.T) {
	s := NewScope()
	v := NewVar(s, 1)
	if err := v.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	_, err := v.Get()
	if !IsKind(err, KindNullAccess) {
		t.Fatalf("expected NullAccess, got %v", err)
	}
}

func TestPanicInFirstEvaluationIsInvalidState(t *testing.T) {
	s := NewScope()
	_, err := NewCalc(s, func(ctx *Ctx) (int, error) {
		panic("boom")
	})
	if err == nil {
		t.Fatalf("expected construction-time evaluation to fail")
	}
	if !IsKind(err, KindInvalidState) {
		t.Fatalf("expected a panic in a factory to surface as InvalidState, got %v", err)
	}
}

func TestSetValueOnActionCellIsInvalidState(t *testing.T) {
	s := NewScope()
	act, err := NewAction(s, func(ctx *Ctx) error { return nil })
	if err != nil {
		t.Fatalf("NewAction: %v", err)
	}
	err = act.SetValue(struct{}{})
	if !IsKind(err, KindInvalidState) {
		t.Fatalf("expected InvalidState, got %v", err)
	}
}

func TestReactorErrorFormatsNonEmptyMessage(t *testing.T) {
	s := NewScope()
	v := NewVar(s, 1)
	if err := v.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	_, err := v.Get()
	if !IsKind(err, KindNullAccess) {
		t.Fatalf("expected NullAccess, got %v", err)
	}
	if err.Error() == "" {
		t.Fatalf("expected a non-empty formatted message")
	}
}
