package reactor

import "sync/atomic"

// idCounter is the process-wide monotonic counter backing every node's
// identity (spec.md §4.1). It is never reset; process exit is sufficient
// teardown per the "Global state" design note.
var idCounter atomic.Uint64

// ID is a process-unique, monotonically increasing identifier assigned to
// a node at construction. IDs are never reused.
type ID uint64

func nextID() ID {
	return ID(idCounter.Add(1))
}
