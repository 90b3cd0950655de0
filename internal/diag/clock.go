package diag

import "sync/atomic"

// Clock stamps diagnostics with strictly increasing sequence numbers, so
// emission order survives storage and re-sorting.
type Clock struct {
	seq atomic.Int64
}

func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt starts a clock after start; the first Next returns start+1.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Next returns the next sequence number.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the last number handed out, or the start value.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
