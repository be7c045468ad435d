package clock

import (
	"time"
)

// Clock is the virtual time source the device reads. Implementations
// must be monotonically non-decreasing within a run.
type Clock interface {
	NowNs() uint64
	NowMs() uint64
}

// Wall is a Clock backed by the host monotonic clock, counting from
// construction
type Wall struct {
	start time.Time
}

// NewWall creates a wall clock starting at zero
func NewWall() *Wall {
	return &Wall{start: time.Now()}
}

func (w *Wall) NowNs() uint64 {
	return uint64(time.Since(w.start).Nanoseconds())
}

func (w *Wall) NowMs() uint64 {
	return uint64(time.Since(w.start).Milliseconds())
}

// Manual is a Clock advanced explicitly by the caller. Tests drive it.
type Manual struct {
	ns uint64
}

// NewManual creates a manual clock at time zero
func NewManual() *Manual {
	return &Manual{}
}

func (m *Manual) NowNs() uint64 { return m.ns }
func (m *Manual) NowMs() uint64 { return m.ns / 1e6 }

// AdvanceMs moves the clock forward by the given milliseconds
func (m *Manual) AdvanceMs(ms uint64) {
	m.ns += ms * 1e6
}

// AdvanceNs moves the clock forward by the given nanoseconds
func (m *Manual) AdvanceNs(ns uint64) {
	m.ns += ns
}
