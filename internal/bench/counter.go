package bench

import "sync/atomic"

// Counter hands out monotonically increasing input indices for one case.
// Concurrent tasks of the same case share it; cases never do.
type Counter struct {
	n atomic.Int64
}

// Next returns the next index, starting at 1
func (c *Counter) Next() int64 {
	return c.n.Add(1)
}

// Value returns the last index handed out
func (c *Counter) Value() int64 {
	return c.n.Load()
}
