package apu

import (
	"fmt"

	"mcpx-apu/internal/debug"
	"mcpx-apu/internal/dsp"
)

// scatterGatherRW moves len(buf) bytes between buf and the guest
// logical address space described by the page table at sgeBase. Each
// table entry is 8 bytes: a physical page address and a control word
// this engine ignores. Writes to guest memory are marked dirty.
func (a *APU) scatterGatherRW(sgeBase uint32, maxSGE uint32, buf []byte, addr uint32, dir dsp.Dir) {
	pageSize := a.cfg.PageSize
	pageEntry := addr / pageSize
	offsetInPage := addr % pageSize
	bytesToCopy := pageSize - offsetInPage

	ram := a.ram.Bytes()
	remaining := buf

	for len(remaining) > 0 {
		if pageEntry > maxSGE {
			panic(fmt.Sprintf("apu: SG table overrun: entry %d > max %d", pageEntry, maxSGE))
		}

		prdAddress := a.ram.Ldl(sgeBase + pageEntry*8)
		paddr := prdAddress + offsetInPage

		if bytesToCopy > uint32(len(remaining)) {
			bytesToCopy = uint32(len(remaining))
		}

		if uint64(paddr)+uint64(bytesToCopy) >= uint64(a.ram.Size()) {
			panic(fmt.Sprintf("apu: SG copy overruns guest RAM: 0x%08X+0x%X", paddr, bytesToCopy))
		}

		if dir == dsp.DirToGuest {
			copy(ram[paddr:], remaining[:bytesToCopy])
			a.ram.MarkDirty(paddr, bytesToCopy)
		} else {
			copy(remaining[:bytesToCopy], ram[paddr:])
		}

		remaining = remaining[bytesToCopy:]

		// After the first iteration, transfers are page aligned
		pageEntry++
		bytesToCopy = pageSize
		offsetInPage = 0
	}
}

// circularSGRW is the FIFO variant: cur walks the window [base, end)
// and wraps back to base when it reaches end. Returns the advanced cur.
func (a *APU) circularSGRW(sgeBase uint32, maxSGE uint32, buf []byte, base, end, cur uint32, dir dsp.Dir) uint32 {
	remaining := buf

	for len(remaining) > 0 {
		bytesToCopy := end - cur
		if bytesToCopy > uint32(len(remaining)) {
			bytesToCopy = uint32(len(remaining))
		}

		if a.logger != nil {
			a.logger.Logf(debug.ComponentDMA, debug.LogLevelTrace,
				"circular %v in 0x%X-0x%X at 0x%X, 0x%X of 0x%X bytes",
				dir, base, end, cur, bytesToCopy, len(remaining))
		}

		if cur < base || cur+bytesToCopy > end {
			panic(fmt.Sprintf("apu: circular SG cursor 0x%X outside window 0x%X-0x%X", cur, base, end))
		}
		a.scatterGatherRW(sgeBase, maxSGE, remaining[:bytesToCopy], cur, dir)

		remaining = remaining[bytesToCopy:]

		// After the first iteration we might have to wrap
		cur += bytesToCopy
		if cur >= end {
			cur = base
		}
	}

	return cur
}

// gpScratchRW is the GP's scratch DMA callback
func (a *APU) gpScratchRW(buf []byte, addr uint32, dir dsp.Dir) {
	a.scatterGatherRW(a.reg(RegGPSADDR), a.reg(RegGPSMaxSGE), buf, addr, dir)
}

// epScratchRW is the EP's scratch DMA callback
func (a *APU) epScratchRW(buf []byte, addr uint32, dir dsp.Dir) {
	a.scatterGatherRW(a.reg(RegEPSADDR), a.reg(RegEPSMaxSGE), buf, addr, dir)
}

// fifoRegs selects the BASE/END/CUR register triple for a FIFO index
// and direction within one processor's block
func fifoRegs(obase, oend, ocur, ibase, iend, icur uint32, outCount, inCount int, index int, dir dsp.Dir) (base, end, cur uint32) {
	if dir == dsp.DirToGuest {
		if index >= outCount {
			panic(fmt.Sprintf("apu: output FIFO index %d out of range", index))
		}
		stride := uint32(index) * FIFORegStride
		return obase + stride, oend + stride, ocur + stride
	}
	if index >= inCount {
		panic(fmt.Sprintf("apu: input FIFO index %d out of range", index))
	}
	stride := uint32(index) * FIFORegStride
	return ibase + stride, iend + stride, icur + stride
}

// fifoRW performs one circular transfer through the FIFO selected by
// index and dir, using the given SG table registers
func (a *APU) fifoRW(sgAddrReg, sgMaxReg uint32, baseReg, endReg, curReg uint32, buf []byte, dir dsp.Dir) {
	base := getMask(a.reg(baseReg), FIFOBaseValueMask)
	end := getMask(a.reg(endReg), FIFOEndValueMask)
	cur := getMask(a.reg(curReg), FIFOCurValueMask)

	// DSP hangs if current >= end; but forces current >= base
	if cur >= end {
		panic(fmt.Sprintf("apu: FIFO cursor 0x%X at or past end 0x%X", cur, end))
	}
	if cur < base {
		cur = base
	}

	cur = a.circularSGRW(a.reg(sgAddrReg), a.reg(sgMaxReg), buf, base, end, cur, dir)

	setMask(&a.regs[curReg>>2], FIFOCurValueMask, cur)
}

// gpFIFORW is the GP's FIFO DMA callback
func (a *APU) gpFIFORW(buf []byte, index int, dir dsp.Dir) {
	baseReg, endReg, curReg := fifoRegs(
		RegGPOFBase0, RegGPOFEnd0, RegGPOFCur0,
		RegGPIFBase0, RegGPIFEnd0, RegGPIFCur0,
		GPOutputFIFOCount, GPInputFIFOCount, index, dir)
	a.fifoRW(RegGPFADDR, RegGPFMaxSGE, baseReg, endReg, curReg, buf, dir)
}

// epFIFORW is the EP's FIFO DMA callback
func (a *APU) epFIFORW(buf []byte, index int, dir dsp.Dir) {
	baseReg, endReg, curReg := fifoRegs(
		RegEPOFBase0, RegEPOFEnd0, RegEPOFCur0,
		RegEPIFBase0, RegEPIFEnd0, RegEPIFCur0,
		EPOutputFIFOCount, EPInputFIFOCount, index, dir)
	a.fifoRW(RegEPFADDR, RegEPFMaxSGE, baseReg, endReg, curReg, buf, dir)
}
