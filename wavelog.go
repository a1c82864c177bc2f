package reactor

import (
	"sync"

	"github.com/google/uuid"
)

func newCorrelationID() string {
	return uuid.NewString()
}

// WaveSummary is a diagnostic record of one completed propagation wave.
type WaveSummary struct {
	ID      uint64
	Touched int
	Err     error
}

// waveLog is a fixed-size ring buffer of recent wave summaries, adapted
// from the bounded-history idea behind the teacher's ExecutionTree (which
// evicts its oldest entries once a cap is reached) applied to propagation
// waves instead of DI resolution spans.
type waveLog struct {
	mu      sync.Mutex
	entries []WaveSummary
	cap     int
	next    int
	full    bool
}

func newWaveLog(capacity int) *waveLog {
	return &waveLog{entries: make([]WaveSummary, capacity), cap: capacity}
}

func (l *waveLog) record(s WaveSummary) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries[l.next] = s
	l.next = (l.next + 1) % l.cap
	if l.next == 0 {
		l.full = true
	}
}

func (l *waveLog) snapshot() []WaveSummary {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.full {
		out := make([]WaveSummary, l.next)
		copy(out, l.entries[:l.next])
		return out
	}
	out := make([]WaveSummary, l.cap)
	copy(out, l.entries[l.next:])
	copy(out[l.cap-l.next:], l.entries[:l.next])
	return out
}
