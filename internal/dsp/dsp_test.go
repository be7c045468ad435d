package dsp

import (
	"bytes"
	"testing"

	"mcpx-apu/internal/debug"
)

// newTestDSP wires a GP-sized processor against in-memory fakes of the
// two DMA callbacks
func newTestDSP(t *testing.T) (*DSP, *[]byte, *[]byte) {
	t.Helper()
	logger := debug.NewLogger(100)
	t.Cleanup(logger.Shutdown)

	scratch := make([]byte, 0x10000)
	fifo := make([]byte, 0x1000)

	scratchRW := func(buf []byte, addr uint32, dir Dir) {
		if dir == DirToGuest {
			copy(scratch[addr:], buf)
		} else {
			copy(buf, scratch[addr:])
		}
	}
	fifoRW := func(buf []byte, index int, dir Dir) {
		if dir == DirToGuest {
			copy(fifo[index*0x100:], buf)
		} else {
			copy(buf, fifo[index*0x100:])
		}
	}

	return New(GPConfig, scratchRW, fifoRW, logger), &scratch, &fifo
}

func TestMemoryBanks(t *testing.T) {
	d, _, _ := newTestDSP(t)

	d.WriteMemory('X', 0x10, 0x123456)
	d.WriteMemory('Y', 0x10, 0x654321)
	d.WriteMemory('P', 0x10, 0xABCDEF)

	if got := d.ReadMemory('X', 0x10); got != 0x123456 {
		t.Errorf("X[0x10] = 0x%06X, expected 0x123456", got)
	}
	if got := d.ReadMemory('Y', 0x10); got != 0x654321 {
		t.Errorf("Y[0x10] = 0x%06X, expected 0x654321", got)
	}
	if got := d.ReadMemory('P', 0x10); got != 0xABCDEF {
		t.Errorf("P[0x10] = 0x%06X, expected 0xABCDEF", got)
	}
}

func TestWriteMasksTo24Bits(t *testing.T) {
	d, _, _ := newTestDSP(t)

	d.WriteMemory('X', 0, 0xFFABCDEF)
	if got := d.ReadMemory('X', 0); got != 0xABCDEF {
		t.Errorf("X[0] = 0x%08X, expected 0xABCDEF", got)
	}
}

func TestBankBounds(t *testing.T) {
	d, _, _ := newTestDSP(t)

	defer func() {
		if recover() == nil {
			t.Errorf("expected panic for out-of-range Y address")
		}
	}()
	d.ReadMemory('Y', GPConfig.YWords)
}

func TestUnknownBankPanics(t *testing.T) {
	d, _, _ := newTestDSP(t)

	defer func() {
		if recover() == nil {
			t.Errorf("expected panic for unknown bank")
		}
	}()
	d.ReadMemory('Z', 0)
}

func TestLifecycle(t *testing.T) {
	d, _, _ := newTestDSP(t)

	if d.Bootstrapped() {
		t.Fatalf("new processor must start in reset")
	}

	d.Bootstrap()
	d.StartFrame()
	d.StartFrame()
	d.Run(1000)
	d.Run(500)

	if got := d.FrameCount(); got != 2 {
		t.Errorf("frame count = %d, expected 2", got)
	}
	if got := d.CyclesRun(); got != 1500 {
		t.Errorf("cycles run = %d, expected 1500", got)
	}

	d.Reset()
	if d.Bootstrapped() {
		t.Errorf("still bootstrapped after reset")
	}
	if d.FrameCount() != 0 || d.CyclesRun() != 0 {
		t.Errorf("counters survived reset")
	}

	// Memory survives a reset so preloaded programs stay in place
	d.WriteMemory('P', 0, 0x123456)
	d.Reset()
	if got := d.ReadMemory('P', 0); got != 0x123456 {
		t.Errorf("P[0] = 0x%06X after reset, expected 0x123456", got)
	}
}

func TestScratchTransfer(t *testing.T) {
	d, scratch, _ := newTestDSP(t)

	out := []byte{1, 2, 3, 4}
	d.ScratchTransfer(out, 0x100, DirToGuest)
	if !bytes.Equal((*scratch)[0x100:0x104], out) {
		t.Errorf("scratch write did not reach the callback")
	}

	in := make([]byte, 4)
	d.ScratchTransfer(in, 0x100, DirFromGuest)
	if !bytes.Equal(in, out) {
		t.Errorf("scratch read = % X, expected % X", in, out)
	}
}

func TestFIFOTransfer(t *testing.T) {
	d, _, fifo := newTestDSP(t)

	out := []byte{9, 8, 7}
	d.FIFOTransfer(out, 1, DirToGuest)
	if !bytes.Equal((*fifo)[0x100:0x103], out) {
		t.Errorf("FIFO write did not reach the callback")
	}
}

func TestSnapshotRestore(t *testing.T) {
	d, _, _ := newTestDSP(t)

	d.Bootstrap()
	d.StartFrame()
	d.WriteMemory('X', 1, 0x111111)
	s := d.Snapshot()

	d.Reset()
	d.WriteMemory('X', 1, 0)

	if err := d.Restore(s); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	if !d.Bootstrapped() || d.FrameCount() != 1 {
		t.Errorf("lifecycle state not restored")
	}
	if got := d.ReadMemory('X', 1); got != 0x111111 {
		t.Errorf("X[1] = 0x%06X after restore, expected 0x111111", got)
	}

	// Mismatched bank sizes are rejected
	ep, _, _ := newTestDSPWithConfig(t, EPConfig)
	if err := ep.Restore(s); err == nil {
		t.Errorf("expected error restoring GP snapshot into EP")
	}
}

func newTestDSPWithConfig(t *testing.T, cfg Config) (*DSP, *[]byte, *[]byte) {
	t.Helper()
	logger := debug.NewLogger(100)
	t.Cleanup(logger.Shutdown)
	scratch := make([]byte, 0x1000)
	fifo := make([]byte, 0x1000)
	d := New(cfg,
		func(buf []byte, addr uint32, dir Dir) {},
		func(buf []byte, index int, dir Dir) {},
		logger)
	return d, &scratch, &fifo
}
