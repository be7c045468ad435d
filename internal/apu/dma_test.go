package apu

import (
	"bytes"
	"testing"

	"mcpx-apu/internal/dsp"
	"mcpx-apu/internal/memory"
)

const (
	testSGTable = 0x10000
	testPool    = 0x20000
)

// writeSGTable builds an identity page table: entry i maps to
// pool + i*4096
func writeSGTable(ram *memory.RAM, table, pool uint32, entries uint32) {
	for e := uint32(0); e < entries; e++ {
		ram.Stl(table+e*8, pool+e*4096)
		ram.Stl(table+e*8+4, 0)
	}
}

func TestScatterGatherRoundTrip(t *testing.T) {
	a, ram, _, _, _ := newTestAPU(t)
	writeSGTable(ram, testSGTable, testPool, 4)

	// Span a page boundary: start 16 bytes before the end of page 0
	src := make([]byte, 64)
	for i := range src {
		src[i] = byte(i + 1)
	}
	addr := uint32(4096 - 16)

	a.scatterGatherRW(testSGTable, 3, src, addr, dsp.DirToGuest)

	// First 16 bytes land at the tail of page 0, the rest at the head
	// of page 1
	guest := ram.Bytes()
	if !bytes.Equal(guest[testPool+4096-16:testPool+4096], src[:16]) {
		t.Errorf("page 0 tail does not match source")
	}
	if !bytes.Equal(guest[testPool+4096:testPool+4096+48], src[16:]) {
		t.Errorf("page 1 head does not match source")
	}

	dst := make([]byte, 64)
	a.scatterGatherRW(testSGTable, 3, dst, addr, dsp.DirFromGuest)
	if !bytes.Equal(dst, src) {
		t.Errorf("read back does not match written data")
	}
}

func TestScatterGatherMarksDirty(t *testing.T) {
	a, ram, _, _, _ := newTestAPU(t)
	writeSGTable(ram, testSGTable, testPool, 2)

	type dirtyRange struct{ start, length uint32 }
	var dirty []dirtyRange
	ram.SetDirtyFunc(func(start, length uint32) {
		dirty = append(dirty, dirtyRange{start, length})
	})

	buf := make([]byte, 32)
	a.scatterGatherRW(testSGTable, 1, buf, 0x10, dsp.DirToGuest)
	if len(dirty) != 1 || dirty[0].start != testPool+0x10 || dirty[0].length != 32 {
		t.Errorf("dirty ranges = %v, expected one 32-byte range at pool+0x10", dirty)
	}

	// Reads must not dirty anything
	dirty = nil
	a.scatterGatherRW(testSGTable, 1, buf, 0x10, dsp.DirFromGuest)
	if len(dirty) != 0 {
		t.Errorf("read marked %d ranges dirty", len(dirty))
	}
}

func TestScatterGatherTableOverrunPanics(t *testing.T) {
	a, ram, _, _, _ := newTestAPU(t)
	writeSGTable(ram, testSGTable, testPool, 1)

	defer func() {
		if recover() == nil {
			t.Errorf("expected panic for SG table overrun")
		}
	}()
	buf := make([]byte, 8192) // needs pages 0 and 1, table only has 0
	a.scatterGatherRW(testSGTable, 0, buf, 0, dsp.DirFromGuest)
}

func TestScatterGatherRAMOverrunPanics(t *testing.T) {
	a, ram, _, _, _ := newTestAPU(t)
	// Page entry pointing at the last page of the 4 MiB window
	ram.Stl(testSGTable, 4*1024*1024-4096)

	defer func() {
		if recover() == nil {
			t.Errorf("expected panic for guest RAM overrun")
		}
	}()
	buf := make([]byte, 4096)
	a.scatterGatherRW(testSGTable, 0, buf, 0, dsp.DirToGuest)
}

func TestCircularWrap(t *testing.T) {
	a, ram, _, _, _ := newTestAPU(t)
	writeSGTable(ram, testSGTable, testPool, 2)

	pattern := make([]byte, 0x20)
	for i := range pattern {
		pattern[i] = byte(0xA0 + i)
	}

	cur := a.circularSGRW(testSGTable, 1, pattern, 0x100, 0x140, 0x130, dsp.DirToGuest)

	if cur != 0x110 {
		t.Errorf("new cur = 0x%X, expected 0x110", cur)
	}
	guest := ram.Bytes()
	if !bytes.Equal(guest[testPool+0x130:testPool+0x140], pattern[:0x10]) {
		t.Errorf("first half not written at window tail")
	}
	if !bytes.Equal(guest[testPool+0x100:testPool+0x110], pattern[0x10:]) {
		t.Errorf("second half not wrapped to window base")
	}
}

func TestCircularRoundTrip(t *testing.T) {
	a, ram, _, _, _ := newTestAPU(t)
	writeSGTable(ram, testSGTable, testPool, 2)

	src := make([]byte, 0x30)
	for i := range src {
		src[i] = byte(i ^ 0x5A)
	}

	wcur := a.circularSGRW(testSGTable, 1, src, 0x100, 0x140, 0x120, dsp.DirToGuest)
	dst := make([]byte, 0x30)
	rcur := a.circularSGRW(testSGTable, 1, dst, 0x100, 0x140, 0x120, dsp.DirFromGuest)

	if !bytes.Equal(dst, src) {
		t.Errorf("circular read back does not match written data")
	}
	if wcur != rcur {
		t.Errorf("write cur 0x%X != read cur 0x%X", wcur, rcur)
	}
}

// setupGPFIFO programs output FIFO 0 with the given window (extracted
// values, not raw register encoding)
func setupGPFIFO(a *APU, base, end, cur uint32) {
	a.Write(RegGPFADDR, 4, testSGTable)
	a.Write(RegGPFMaxSGE, 4, 1)
	a.Write(RegGPOFBase0, 4, base<<8)
	a.Write(RegGPOFEnd0, 4, end<<8)
	a.Write(RegGPOFCur0, 4, cur<<2)
}

func TestFIFOTransferAdvancesCursor(t *testing.T) {
	a, ram, _, _, _ := newTestAPU(t)
	writeSGTable(ram, testSGTable, testPool, 2)
	setupGPFIFO(a, 0x100, 0x140, 0x110)

	buf := make([]byte, 0x20)
	a.gpFIFORW(buf, 0, dsp.DirToGuest)

	if got := getMask(a.Read(RegGPOFCur0, 4), FIFOCurValueMask); got != 0x130 {
		t.Errorf("FIFO cur = 0x%X, expected 0x130", got)
	}
}

func TestFIFOCursorClampedToBase(t *testing.T) {
	a, ram, _, _, _ := newTestAPU(t)
	writeSGTable(ram, testSGTable, testPool, 2)
	setupGPFIFO(a, 0x100, 0x140, 0x80) // cur below base

	buf := make([]byte, 0x10)
	a.gpFIFORW(buf, 0, dsp.DirToGuest)

	if got := getMask(a.Read(RegGPOFCur0, 4), FIFOCurValueMask); got != 0x110 {
		t.Errorf("FIFO cur = 0x%X, expected clamp to base then 0x110", got)
	}
}

func TestFIFOCursorAtEndPanics(t *testing.T) {
	a, ram, _, _, _ := newTestAPU(t)
	writeSGTable(ram, testSGTable, testPool, 2)
	setupGPFIFO(a, 0x100, 0x140, 0x140)

	defer func() {
		if recover() == nil {
			t.Errorf("expected panic for cursor at end")
		}
	}()
	buf := make([]byte, 4)
	a.gpFIFORW(buf, 0, dsp.DirToGuest)
}

func TestFIFOInputBank(t *testing.T) {
	a, ram, _, _, _ := newTestAPU(t)
	writeSGTable(ram, testSGTable, testPool, 2)

	a.Write(RegGPFADDR, 4, testSGTable)
	a.Write(RegGPFMaxSGE, 4, 1)
	a.Write(RegGPIFBase0, 4, 0x200<<8)
	a.Write(RegGPIFEnd0, 4, 0x240<<8)
	a.Write(RegGPIFCur0, 4, 0x200<<2)

	copy(ram.Bytes()[testPool+0x200:], []byte{0xDE, 0xAD, 0xBE, 0xEF})

	buf := make([]byte, 4)
	a.gpFIFORW(buf, 0, dsp.DirFromGuest)

	if !bytes.Equal(buf, []byte{0xDE, 0xAD, 0xBE, 0xEF}) {
		t.Errorf("input FIFO read = % X", buf)
	}
	if got := getMask(a.Read(RegGPIFCur0, 4), FIFOCurValueMask); got != 0x204 {
		t.Errorf("input FIFO cur = 0x%X, expected 0x204", got)
	}
}

func TestEPFIFOUsesOwnRegisters(t *testing.T) {
	a, ram, _, _, _ := newTestAPU(t)
	writeSGTable(ram, testSGTable, testPool, 2)

	a.Write(RegEPFADDR, 4, testSGTable)
	a.Write(RegEPFMaxSGE, 4, 1)
	a.Write(RegEPOFBase0+FIFORegStride, 4, 0x300<<8)
	a.Write(RegEPOFEnd0+FIFORegStride, 4, 0x340<<8)
	a.Write(RegEPOFCur0+FIFORegStride, 4, 0x300<<2)

	buf := []byte{1, 2, 3, 4}
	a.epFIFORW(buf, 1, dsp.DirToGuest)

	if got := getMask(a.Read(RegEPOFCur0+FIFORegStride, 4), FIFOCurValueMask); got != 0x304 {
		t.Errorf("EP FIFO 1 cur = 0x%X, expected 0x304", got)
	}
	if !bytes.Equal(ram.Bytes()[testPool+0x300:testPool+0x304], buf) {
		t.Errorf("EP FIFO write did not land in guest memory")
	}
}
