package engine

// Clock is the logical step counter of a run.
//
// Every applied transition is stamped with the next value, starting at 1.
// Step records never carry wall-clock time, so two executions of the same
// table on the same input produce identical records.
type Clock struct {
	seq int64
}

// NewClock creates a new clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// Next returns the next sequence number and increments the clock.
func (c *Clock) Next() int64 {
	c.seq++
	return c.seq
}

// Current returns the current sequence number without incrementing.
func (c *Clock) Current() int64 {
	return c.seq
}
