package dsp

import (
	"fmt"

	"mcpx-apu/internal/debug"
)

// Dir is the direction of a DMA transfer relative to guest memory
type Dir bool

const (
	// DirFromGuest copies guest memory into the caller's buffer
	DirFromGuest Dir = false
	// DirToGuest copies the caller's buffer into guest memory
	DirToGuest Dir = true
)

// ScratchRW moves len(buf) bytes between buf and the processor's
// scratch space at the given logical address
type ScratchRW func(buf []byte, addr uint32, dir Dir)

// FIFORW moves len(buf) bytes through one of the processor's FIFOs.
// dir selects the output (DirToGuest) or input (DirFromGuest) bank.
type FIFORW func(buf []byte, fifo int, dir Dir)

// Config sizes a processor's memory banks in 24-bit words
type Config struct {
	Name   string
	XWords uint32
	YWords uint32
	PWords uint32
}

// GPConfig describes the Global Processor. Its X bank extends through
// the mix buffer the setup engine publishes at 0x1400..0x17FF.
var GPConfig = Config{Name: "GP", XWords: 0x1800, YWords: 0x800, PWords: 0x1000}

// EPConfig describes the Encode Processor
var EPConfig = Config{Name: "EP", XWords: 0xC00, YWords: 0x100, PWords: 0x1000}

// DSP models one embedded signal processor as seen by the device core:
// three 24-bit memory banks and a reset/bootstrap/frame lifecycle. The
// instruction core itself is not simulated; Run only accounts cycles.
// The two DMA callbacks are captured at construction and are the only
// paths by which the processor touches guest memory.
type DSP struct {
	name string

	x []uint32
	y []uint32
	p []uint32

	scratchRW ScratchRW
	fifoRW    FIFORW

	bootstrapped bool
	frameCount   uint64
	cyclesRun    uint64
	resets       uint64
	bootstraps   uint64

	logger *debug.Logger
}

// New creates a processor with the given bank sizes and DMA callbacks
func New(cfg Config, scratch ScratchRW, fifo FIFORW, logger *debug.Logger) *DSP {
	return &DSP{
		name:      cfg.Name,
		x:         make([]uint32, cfg.XWords),
		y:         make([]uint32, cfg.YWords),
		p:         make([]uint32, cfg.PWords),
		scratchRW: scratch,
		fifoRW:    fifo,
		logger:    logger,
	}
}

// Name returns the processor name ("GP" or "EP")
func (d *DSP) Name() string {
	return d.name
}

// Reset stops the processor. Memory banks survive a reset so the host
// can preload program memory through the MMIO windows before releasing
// the core.
func (d *DSP) Reset() {
	d.bootstrapped = false
	d.frameCount = 0
	d.cyclesRun = 0
	d.resets++
	if d.logger != nil {
		d.logger.Logf(debug.ComponentDSP, debug.LogLevelInfo, "%s reset", d.name)
	}
}

// Bootstrap brings the processor out of reset and marks the core
// runnable. The program image is whatever the host placed in P memory
// through the MMIO window; a real core would also run its boot ROM
// here.
func (d *DSP) Bootstrap() {
	d.bootstrapped = true
	d.bootstraps++
	if d.logger != nil {
		d.logger.Logf(debug.ComponentDSP, debug.LogLevelInfo, "%s bootstrap", d.name)
	}
}

// Bootstrapped reports whether the processor has left reset
func (d *DSP) Bootstrapped() bool {
	return d.bootstrapped
}

// Resets returns how many times the processor was reset
func (d *DSP) Resets() uint64 {
	return d.resets
}

// Bootstraps returns how many times the processor was bootstrapped
func (d *DSP) Bootstraps() uint64 {
	return d.bootstraps
}

// StartFrame signals the start of an audio frame
func (d *DSP) StartFrame() {
	d.frameCount++
}

// FrameCount returns the number of frames started since bootstrap
func (d *DSP) FrameCount() uint64 {
	return d.frameCount
}

// Run executes the processor for the given number of cycles. The core
// is opaque here; cycles are accounted so the host's per-frame kick is
// observable.
func (d *DSP) Run(cycles int) {
	d.cyclesRun += uint64(cycles)
}

// CyclesRun returns the total cycles consumed since reset
func (d *DSP) CyclesRun() uint64 {
	return d.cyclesRun
}

func (d *DSP) bank(name byte) []uint32 {
	switch name {
	case 'X':
		return d.x
	case 'Y':
		return d.y
	case 'P':
		return d.p
	default:
		panic(fmt.Sprintf("dsp %s: unknown memory bank %q", d.name, name))
	}
}

// ReadMemory reads a 24-bit word from the named bank
func (d *DSP) ReadMemory(bank byte, addr uint32) uint32 {
	b := d.bank(bank)
	if addr >= uint32(len(b)) {
		panic(fmt.Sprintf("dsp %s: %c memory read out of range: 0x%X", d.name, bank, addr))
	}
	return b[addr]
}

// WriteMemory writes a 24-bit word to the named bank
func (d *DSP) WriteMemory(bank byte, addr uint32, v uint32) {
	b := d.bank(bank)
	if addr >= uint32(len(b)) {
		panic(fmt.Sprintf("dsp %s: %c memory write out of range: 0x%X", d.name, bank, addr))
	}
	b[addr] = v & 0xFFFFFF
}

// ScratchTransfer moves bytes through the captured scratch DMA callback
func (d *DSP) ScratchTransfer(buf []byte, addr uint32, dir Dir) {
	d.scratchRW(buf, addr, dir)
}

// FIFOTransfer moves bytes through the captured FIFO DMA callback
func (d *DSP) FIFOTransfer(buf []byte, fifo int, dir Dir) {
	d.fifoRW(buf, fifo, dir)
}

// State is a serializable snapshot of the processor
type State struct {
	X, Y, P      []uint32
	Bootstrapped bool
	FrameCount   uint64
	CyclesRun    uint64
}

// Snapshot captures the processor state
func (d *DSP) Snapshot() State {
	s := State{
		X:            append([]uint32(nil), d.x...),
		Y:            append([]uint32(nil), d.y...),
		P:            append([]uint32(nil), d.p...),
		Bootstrapped: d.bootstrapped,
		FrameCount:   d.frameCount,
		CyclesRun:    d.cyclesRun,
	}
	return s
}

// Restore applies a snapshot taken from a processor with the same bank
// sizes
func (d *DSP) Restore(s State) error {
	if len(s.X) != len(d.x) || len(s.Y) != len(d.y) || len(s.P) != len(d.p) {
		return fmt.Errorf("dsp %s: snapshot bank sizes do not match", d.name)
	}
	copy(d.x, s.X)
	copy(d.y, s.Y)
	copy(d.p, s.P)
	d.bootstrapped = s.Bootstrapped
	d.frameCount = s.FrameCount
	d.cyclesRun = s.CyclesRun
	return nil
}
