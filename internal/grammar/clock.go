package grammar

import "strconv"

// Clock is the run-wide alias sequence. Every alias handed out by a
// session takes the next value, so aliases never repeat within a run.
//
// A Clock is never reset. Replaying a run starts a new Clock. Like the
// Session that owns it, a Clock is not safe for concurrent use.
type Clock struct {
	seq int64
}

// NewClock creates a clock whose first Next returns 1.
func NewClock() *Clock {
	return &Clock{}
}

// Next returns the next sequence number.
func (c *Clock) Next() int64 {
	c.seq++
	return c.seq
}

// Current returns the last issued sequence number.
func (c *Clock) Current() int64 {
	return c.seq
}

// Alias returns prefix followed by the next sequence number, e.g. "t7".
func (c *Clock) Alias(prefix string) string {
	return prefix + strconv.FormatInt(c.Next(), 10)
}
