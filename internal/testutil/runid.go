package testutil

import (
	"fmt"
	"sync"
)

// FixedRunIDs returns predetermined run IDs for testing, so recorded
// history can be compared byte for byte.
//
// Thread-safety: FixedRunIDs is safe for concurrent use via internal mutex.
type FixedRunIDs struct {
	mu  sync.Mutex
	ids []string
	idx int
}

// NewFixedRunIDs creates a generator that returns ids in order.
//
//	gen := NewFixedRunIDs("run-1", "run-2")
//	gen.Generate() // "run-1"
//	gen.Generate() // "run-2"
//	gen.Generate() // panic: all run IDs exhausted
func NewFixedRunIDs(ids ...string) *FixedRunIDs {
	return &FixedRunIDs{ids: ids}
}

// SequentialRunIDs returns a generator of n IDs "<prefix>-1" .. "<prefix>-n".
func SequentialRunIDs(prefix string, n int) *FixedRunIDs {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("%s-%d", prefix, i+1)
	}
	return NewFixedRunIDs(ids...)
}

// Generate returns the next predetermined ID.
//
// Panics if all IDs have been consumed: the test recorded more runs than
// it expected.
func (g *FixedRunIDs) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.idx >= len(g.ids) {
		panic("FixedRunIDs: all run IDs exhausted")
	}
	id := g.ids[g.idx]
	g.idx++
	return id
}
