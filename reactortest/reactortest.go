// Package reactortest provides testify/go-cmp-based helpers for exercising
// reactor.Scope graphs in tests, grounded on the stretchr/testify-heavy
// test style found across the retrieval pack (e.g. the
// jinterlante1206-AleutianLocal trace/graph test suites).
package reactortest

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/flowmesh/reactor"
)

// RequireValue asserts h currently holds want, comparing with go-cmp so
// struct and slice payloads compare by value rather than identity.
func RequireValue[T any](t *testing.T, h *reactor.Handle[T], want T) {
	t.Helper()
	got, err := h.Get()
	require.NoError(t, err)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("value mismatch (-want +got):\n%s", diff)
	}
}

// RequireError asserts op failed with a *reactor.ReactorError of kind k.
func RequireError(t *testing.T, err error, k reactor.Kind) {
	t.Helper()
	require.Error(t, err)
	require.True(t, reactor.IsKind(err, k), "expected error kind %s, got %v", k, err)
}

// RunConcurrently runs n goroutines calling fn with their index, waiting
// for all to finish. Used by the thread-arming/race scenario tests
// (spec.md §8) to produce genuinely overlapping calls.
func RunConcurrently(n int, fn func(i int)) {
	done := make(chan struct{}, n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer func() { done <- struct{}{} }()
			fn(i)
		}(i)
	}
	for i := 0; i < n; i++ {
		<-done
	}
}

// EventuallyClosed polls h.IsClosed() until it reports true or timeout
// elapses, for assertions on asynchronous teardown in concurrent tests.
func EventuallyClosed[T any](t *testing.T, h *reactor.Handle[T], timeout time.Duration) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if h.IsClosed() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	require.True(t, h.IsClosed(), "handle did not close within %s", timeout)
}
