package statebox

import (
	"sync/atomic"
	"time"
)

// Clock produces millisecond timestamps for log entries. Merge order is
// defined entirely by these stamps, so a clock must never run backwards
// within one process.
type Clock interface {
	Now() int64
}

// SystemClock reads the wall clock, nudged forward on collision so that
// stamps handed out by one instance are strictly increasing. Two modifies
// landing in the same millisecond still get distinct stamps.
type SystemClock struct {
	last atomic.Int64
}

func (c *SystemClock) Now() int64 {
	for {
		wall := time.Now().UnixMilli()
		last := c.last.Load()
		if wall <= last {
			wall = last + 1
		}
		if c.last.CompareAndSwap(last, wall) {
			return wall
		}
	}
}

// LogicalClock counts upwards from zero, one tick per call. Handy for
// tests and for callers who want replay order decoupled from wall time.
type LogicalClock struct {
	t atomic.Int64
}

func (c *LogicalClock) Now() int64 {
	return c.t.Add(1)
}

var defaultClock Clock = &SystemClock{}
