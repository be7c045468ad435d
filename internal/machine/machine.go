package machine

import (
	"sync"
	"time"

	"mcpx-apu/internal/apu"
	"mcpx-apu/internal/clock"
	"mcpx-apu/internal/debug"
	"mcpx-apu/internal/memory"
)

// Config describes the host machine the device lives in
type Config struct {
	// RAMSize is the guest RAM window in bytes
	RAMSize uint32

	// APU carries the device tunables
	APU apu.Config
}

// DefaultConfig returns a machine with 16 MiB of guest RAM and default
// device settings
func DefaultConfig() Config {
	return Config{
		RAMSize: 16 * 1024 * 1024,
		APU:     apu.DefaultConfig(),
	}
}

// Machine owns the device and its collaborators: guest RAM, the
// virtual clock and timer scheduler, and the interrupt line. All MMIO
// and timer work runs under one device lock; handlers never block, so
// the lock is held only for the duration of a single access or tick.
type Machine struct {
	mu sync.Mutex

	cfg Config

	RAM    *memory.RAM
	Sched  *clock.Scheduler
	IRQ    *IRQLatch
	APU    *apu.APU
	Logger *debug.Logger

	clk clock.Clock
}

// New builds a machine over the given clock source
func New(cfg Config, clk clock.Clock, logger *debug.Logger) *Machine {
	if cfg.RAMSize == 0 {
		cfg.RAMSize = DefaultConfig().RAMSize
	}

	m := &Machine{
		cfg:    cfg,
		clk:    clk,
		Logger: logger,
	}
	m.RAM = memory.NewRAM(cfg.RAMSize, logger)
	m.Sched = clock.NewScheduler(clk)
	m.IRQ = NewIRQLatch(logger)
	m.APU = apu.New(cfg.APU, m.RAM, m.Sched, m.IRQ, logger)

	return m
}

// Clock returns the machine's time source
func (m *Machine) Clock() clock.Clock {
	return m.clk
}

// MMIORead performs a 32-bit guest read of the device BAR
func (m *Machine) MMIORead(addr uint32) uint32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.APU.Read(addr, 4)
}

// MMIOWrite performs a 32-bit guest write of the device BAR
func (m *Machine) MMIOWrite(addr uint32, v uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.APU.Write(addr, 4, v)
}

// Tick fires every due timer under the device lock
func (m *Machine) Tick() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sched.RunDue()
}

// StepFrame advances to the next pending timer deadline and fires it.
// On a manual clock time jumps forward; on a wall clock the caller is
// put to sleep until the deadline. Returns false when nothing is
// pending.
func (m *Machine) StepFrame() bool {
	m.mu.Lock()
	next, ok := m.Sched.NextDeadline()
	m.mu.Unlock()
	if !ok {
		return false
	}

	now := m.clk.NowMs()
	if manual, isManual := m.clk.(*clock.Manual); isManual {
		if next > now {
			manual.AdvanceMs(next - now)
		}
	} else if next > now {
		time.Sleep(time.Duration(next-now) * time.Millisecond)
	}

	m.Tick()
	return true
}

// RunFrames steps through n timer deadlines; it stops early if the
// frame timer is cancelled
func (m *Machine) RunFrames(n int) int {
	done := 0
	for i := 0; i < n; i++ {
		if !m.StepFrame() {
			break
		}
		done++
	}
	return done
}

// WithLock runs fn under the device lock, for callers that need a
// consistent multi-register view (inspection tooling)
func (m *Machine) WithLock(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fn()
}
