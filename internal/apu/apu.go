package apu

import (
	"fmt"

	"mcpx-apu/internal/clock"
	"mcpx-apu/internal/debug"
	"mcpx-apu/internal/dsp"
	"mcpx-apu/internal/memory"
)

// IRQLine is the shared PCI interrupt line the device drives
type IRQLine interface {
	Assert()
	Deassert()
}

// FrameSink observes the finished mix of every frame before it is
// published to GP memory. Host audio outputs hook in here.
type FrameSink func(mix *[NumMixbins][NumSamplesPerFrame]int32)

// Config carries the tunables of the device core
type Config struct {
	// PageSize is the guest page size used by the scatter/gather
	// tables
	PageSize uint32

	// GPCyclesPerFrame is how many DSP cycles the GP is kicked for
	// each frame. The hardware figure is unknown; 1000 keeps guest
	// programs moving.
	GPCyclesPerFrame int

	// MixbinBeep injects a 1500 Hz sine into every mixbin, phase
	// shifted by mixbin number, so the mix path is audible without a
	// voice renderer
	MixbinBeep bool
}

// DefaultConfig returns the standard configuration
func DefaultConfig() Config {
	return Config{
		PageSize:         4096,
		GPCyclesPerFrame: 1000,
	}
}

// processor is the per-DSP slice of the device: a register shadow and
// the processor object itself
type processor struct {
	regs [RegionSize / 4]uint32
	dsp  *dsp.DSP
}

// APU is the MCPX audio processing unit. All methods must be called
// under the single device lock owned by the enclosing machine; nothing
// here blocks or suspends mid-access.
type APU struct {
	cfg Config

	ram   *memory.RAM
	sched *clock.Scheduler
	clk   clock.Clock
	irq   IRQLine

	regs [0x20000 / 4]uint32

	gp processor
	ep processor

	frameTimer *clock.Timer
	frameSink  FrameSink

	logger *debug.Logger
}

// New wires the device against its collaborators. The two signal
// processors are created here so their DMA callbacks can capture the
// device.
func New(cfg Config, ram *memory.RAM, sched *clock.Scheduler, irq IRQLine, logger *debug.Logger) *APU {
	if cfg.PageSize == 0 {
		cfg.PageSize = 4096
	}
	if cfg.GPCyclesPerFrame == 0 {
		cfg.GPCyclesPerFrame = 1000
	}

	a := &APU{
		cfg:    cfg,
		ram:    ram,
		sched:  sched,
		clk:    sched.Clock(),
		irq:    irq,
		logger: logger,
	}

	a.gp.dsp = dsp.New(dsp.GPConfig, a.gpScratchRW, a.gpFIFORW, logger)
	a.ep.dsp = dsp.New(dsp.EPConfig, a.epScratchRW, a.epFIFORW, logger)
	a.frameTimer = sched.NewTimer(a.seFrame)

	return a
}

// GP returns the Global Processor
func (a *APU) GP() *dsp.DSP { return a.gp.dsp }

// EP returns the Encode Processor
func (a *APU) EP() *dsp.DSP { return a.ep.dsp }

// SetFrameSink installs the per-frame mix observer
func (a *APU) SetFrameSink(sink FrameSink) {
	a.frameSink = sink
}

// FrameTimer exposes the setup-engine timer for the machine loop
func (a *APU) FrameTimer() *clock.Timer {
	return a.frameTimer
}

func checkAccess(addr uint32, size int) {
	if size != 4 {
		panic(fmt.Sprintf("apu: MMIO access size %d at 0x%05X, only 32-bit supported", size, addr))
	}
	if addr%4 != 0 {
		panic(fmt.Sprintf("apu: unaligned MMIO access at 0x%05X", addr))
	}
}

// Read dispatches a guest MMIO read to the region that owns addr
func (a *APU) Read(addr uint32, size int) uint32 {
	checkAccess(addr, size)

	var r uint32
	switch {
	case addr >= VPBase && addr < VPBase+RegionSize:
		r = a.vpRead(addr - VPBase)
	case addr >= GPBase && addr < GPBase+RegionSize:
		r = a.gpRead(addr - GPBase)
	case addr >= EPBase && addr < EPBase+RegionSize:
		r = a.epRead(addr - EPBase)
	default:
		r = a.topRead(addr)
	}

	if a.logger != nil {
		a.logger.Logf(debug.ComponentMMIO, debug.LogLevelTrace,
			"read [0x%05X] -> 0x%08X", addr, r)
	}
	return r
}

// Write dispatches a guest MMIO write to the region that owns addr
func (a *APU) Write(addr uint32, size int, v uint32) {
	checkAccess(addr, size)

	if a.logger != nil {
		a.logger.Logf(debug.ComponentMMIO, debug.LogLevelTrace,
			"write [0x%05X] = 0x%08X", addr, v)
	}

	switch {
	case addr >= VPBase && addr < VPBase+RegionSize:
		a.vpWrite(addr-VPBase, v)
	case addr >= GPBase && addr < GPBase+RegionSize:
		a.gpWrite(addr-GPBase, v)
	case addr >= EPBase && addr < EPBase+RegionSize:
		a.epWrite(addr-EPBase, v)
	default:
		a.topWrite(addr, v)
	}
}

func (a *APU) topRead(addr uint32) uint32 {
	switch addr {
	case RegXGSCNT:
		// Virtual clock in 100 ns units
		return uint32(a.clk.NowNs() / 100)
	default:
		if addr < 0x20000 {
			return a.regs[addr>>2]
		}
		return 0
	}
}

func (a *APU) topWrite(addr uint32, v uint32) {
	switch addr {
	case RegISTS:
		// The written bits select which interrupts to clear
		a.regs[RegISTS>>2] &^= v
		a.updateIRQ()
	case RegIEN:
		a.regs[RegIEN>>2] = v
		a.updateIRQ()
	case RegSECTL:
		if getMask(v, SECTLXCntModeMask) == SECTLXCntModeOff {
			a.frameTimer.Del()
		} else {
			a.frameTimer.Mod(a.clk.NowMs() + framePeriodMs)
		}
		a.regs[addr>>2] = v
	case RegFEMEMDATA:
		// 'magic write': the value is expected to land at FEMEMADDR
		// on completion of something to do with notifies. Do it now.
		a.ram.Stl(a.regs[RegFEMEMADDR>>2], v)
		a.regs[addr>>2] = v
	default:
		if addr < 0x20000 {
			a.regs[addr>>2] = v
		}
	}
}

// reg reads a top-region register directly (no side effects)
func (a *APU) reg(addr uint32) uint32 {
	return a.regs[addr>>2]
}

// updateIRQ recomputes the summary interrupt and drives the PCI line.
// Called whenever ISTS or IEN may have changed.
func (a *APU) updateIRQ() {
	ists := a.regs[RegISTS>>2]
	ien := a.regs[RegIEN>>2]

	if ien&ISTSGIntSts != 0 && (ists&^ISTSGIntSts)&ien != 0 {
		a.regs[RegISTS>>2] |= ISTSGIntSts
		if a.logger != nil {
			a.logger.Logf(debug.ComponentIRQ, debug.LogLevelDebug, "irq raise")
		}
		a.irq.Assert()
	} else {
		a.regs[RegISTS>>2] &^= ISTSGIntSts
		if a.logger != nil {
			a.logger.Logf(debug.ComponentIRQ, debug.LogLevelDebug, "irq lower")
		}
		a.irq.Deassert()
	}
}

// State is a serializable snapshot of the register file and both
// processors
type State struct {
	Regs   []uint32
	GPRegs []uint32
	EPRegs []uint32
	GP     dsp.State
	EP     dsp.State
}

// Snapshot captures the device state
func (a *APU) Snapshot() State {
	return State{
		Regs:   append([]uint32(nil), a.regs[:]...),
		GPRegs: append([]uint32(nil), a.gp.regs[:]...),
		EPRegs: append([]uint32(nil), a.ep.regs[:]...),
		GP:     a.gp.dsp.Snapshot(),
		EP:     a.ep.dsp.Snapshot(),
	}
}

// Restore applies a snapshot. The frame timer is re-armed if the
// restored SECTL has the counter enabled.
func (a *APU) Restore(s State) error {
	if len(s.Regs) != len(a.regs) || len(s.GPRegs) != len(a.gp.regs) || len(s.EPRegs) != len(a.ep.regs) {
		return fmt.Errorf("apu: snapshot register file sizes do not match")
	}
	copy(a.regs[:], s.Regs)
	copy(a.gp.regs[:], s.GPRegs)
	copy(a.ep.regs[:], s.EPRegs)
	if err := a.gp.dsp.Restore(s.GP); err != nil {
		return err
	}
	if err := a.ep.dsp.Restore(s.EP); err != nil {
		return err
	}
	if getMask(a.reg(RegSECTL), SECTLXCntModeMask) != SECTLXCntModeOff {
		a.frameTimer.Mod(a.clk.NowMs() + framePeriodMs)
	} else {
		a.frameTimer.Del()
	}
	return nil
}
