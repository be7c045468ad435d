package machine

import (
	"sync/atomic"

	"mcpx-apu/internal/debug"
)

// IRQLatch is the machine side of the PCI interrupt line: it remembers
// the level the device last drove so a host poll can read it.
type IRQLatch struct {
	asserted atomic.Bool
	logger   *debug.Logger
}

// NewIRQLatch creates a deasserted line
func NewIRQLatch(logger *debug.Logger) *IRQLatch {
	return &IRQLatch{logger: logger}
}

// Assert drives the line high
func (l *IRQLatch) Assert() {
	if !l.asserted.Swap(true) && l.logger != nil {
		l.logger.Logf(debug.ComponentIRQ, debug.LogLevelInfo, "line asserted")
	}
}

// Deassert drives the line low
func (l *IRQLatch) Deassert() {
	if l.asserted.Swap(false) && l.logger != nil {
		l.logger.Logf(debug.ComponentIRQ, debug.LogLevelInfo, "line deasserted")
	}
}

// Asserted reports the current line level
func (l *IRQLatch) Asserted() bool {
	return l.asserted.Load()
}
