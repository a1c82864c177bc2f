package reactor

import (
	"reflect"

	"github.com/google/go-cmp/cmp"
)

// TriggerPolicy decides, after a cell recomputes, whether the new value is
// significant enough to propagate to observers (spec.md §4.5). Methods are
// typed as `any` because TriggerPolicy is stored on the type-erased anyCell
// side of a cell[T]; constructors like ChangeOnly[T] close over the static
// type at the call site.
type TriggerPolicy interface {
	ShouldPropagate(old, new any) bool
}

type alwaysTrigger struct{}

// Always propagates on every recomputation regardless of value equality.
// It is the default trigger policy for every cell kind.
func Always() TriggerPolicy { return alwaysTrigger{} }

func (alwaysTrigger) ShouldPropagate(old, new any) bool { return true }

type changeOnlyTrigger struct{}

// ChangeOnly propagates only when the new value differs from the previous
// one. Equality is computed with go-cmp, falling back to reflect.DeepEqual
// for types cmp.Equal refuses to compare (unexported fields without an
// Equal method or cmp.Option) so the trigger never panics regardless of T.
func ChangeOnly() TriggerPolicy { return changeOnlyTrigger{} }

func (changeOnlyTrigger) ShouldPropagate(old, new any) bool {
	return !valuesEqual(old, new)
}

func valuesEqual(a, b any) (equal bool) {
	defer func() {
		if r := recover(); r != nil {
			equal = reflect.DeepEqual(a, b)
		}
	}()
	equal = cmp.Equal(a, b)
	return
}

// filterTrigger implements the Filter policy from spec.md §4.5 / the
// original library's FilterTrig: a user predicate bound over a fixed set of
// named upstream cells, evaluated against their current snapshots. If any
// bound upstream has closed, the filter short-circuits to false rather than
// calling the predicate, mirroring FilterTrig::filter's weak-pointer-dead
// short-circuit in original_source/include/reaction/policy/trigger.h.
type filterTrigger struct {
	upstreams []*observerNode
	predicate func() bool
}

func (f *filterTrigger) ShouldPropagate(old, new any) bool {
	for _, u := range f.upstreams {
		if u.isClosed() {
			return false
		}
	}
	return f.predicate()
}
