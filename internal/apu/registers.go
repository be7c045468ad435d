package apu

import "math/bits"

// Register layout of the 0x80000-byte MMIO BAR. The top region backs
// plain storage except where noted; the VP window at 0x20000 is a
// command decoder, and the GP/EP windows at 0x30000/0x50000 shadow the
// processors' registers and memory banks.
const (
	VPBase     = 0x20000
	GPBase     = 0x30000
	EPBase     = 0x50000
	RegionSize = 0x10000
	BARSize    = 0x80000
)

// Top-region registers
const (
	RegISTS = 0x01000 // Interrupt status, write-one-to-clear
	RegIEN  = 0x01004 // Interrupt enable

	RegFECTL      = 0x01100 // Front-end control
	RegFECV       = 0x01110 // Current voice latch
	RegFEAV       = 0x01118 // Antecedent voice + list selector
	RegFEDECMETH  = 0x01300 // Last decoded method
	RegFEDECPARAM = 0x01304 // Last decoded argument
	RegFEMEMADDR  = 0x01324 // Magic-write target address
	RegFEMEMDATA  = 0x01334 // Magic-write data, side effect on write
	RegFETFORCE0  = 0x01500
	RegFETFORCE1  = 0x01504

	RegSECTL  = 0x02000 // Setup engine control
	RegXGSCNT = 0x0200C // Free-running counter, 100 ns units

	RegVPVADDR = 0x0202C // Voice record table base (guest physical)

	RegGPSADDR = 0x02040 // GP scratch SG table base
	RegGPFADDR = 0x02044 // GP FIFO SG table base
	RegEPSADDR = 0x02048 // EP scratch SG table base
	RegEPFADDR = 0x0204C // EP FIFO SG table base

	RegTVL2D = 0x02054 // 2D voice list top
	RegCVL2D = 0x02058 // 2D voice list current
	RegNVL2D = 0x0205C // 2D voice list next
	RegTVL3D = 0x02060
	RegCVL3D = 0x02064
	RegNVL3D = 0x02068
	RegTVLMP = 0x0206C
	RegCVLMP = 0x02070
	RegNVLMP = 0x02074

	RegGPSMaxSGE = 0x020D4 // Highest valid GP scratch SG entry
	RegGPFMaxSGE = 0x020D8
	RegEPSMaxSGE = 0x020DC
	RegEPFMaxSGE = 0x020E0
)

// ISTS / IEN bits
const (
	ISTSGIntSts   = 1 << 0 // Summary bit, mirrors the PCI line
	ISTSFETIntSts = 1 << 4 // Front-end trap
)

// FECTL fields
const (
	FECTLMethModeMask        = 0x000000E0
	FECTLMethModeFreeRunning = 0x00000000
	FECTLMethModeHalted      = 0x00000080
	FECTLMethModeTrapped     = 0x000000E0

	FECTLTrapReasonMask      = 0x00000F00
	FECTLTrapReasonRequested = 0x00000F00
)

// FEAV fields
const (
	FEAVValueMask = 0x0000FFFF
	FEAVListMask  = 0x00030000
)

// FETFORCE1 bits
const (
	FETForce1IdleVoice = 1 << 15 // Enables the SE2FE idle-voice trap
)

// SECTL fields
const (
	SECTLXCntModeMask = 0x00000018
	SECTLXCntModeOff  = 0
)

// Per-FIFO register triple, repeated with stride 0x10. The GP block
// starts at 0x03024, the EP block at 0x04024; input FIFOs follow the
// four output FIFOs at +0x40.
const (
	RegGPOFBase0 = 0x03024
	RegGPOFEnd0  = 0x03028
	RegGPOFCur0  = 0x0302C
	RegGPIFBase0 = 0x03064
	RegGPIFEnd0  = 0x03068
	RegGPIFCur0  = 0x0306C

	RegEPOFBase0 = 0x04024
	RegEPOFEnd0  = 0x04028
	RegEPOFCur0  = 0x0402C
	RegEPIFBase0 = 0x04064
	RegEPIFEnd0  = 0x04068
	RegEPIFCur0  = 0x0406C

	FIFORegStride = 0x10

	FIFOBaseValueMask = 0x00FFFF00
	FIFOEndValueMask  = 0x00FFFF00
	FIFOCurValueMask  = 0x00FFFFFC
)

const (
	GPOutputFIFOCount = 4
	GPInputFIFOCount  = 2
	EPOutputFIFOCount = 4
	EPInputFIFOCount  = 2
)

// Processor-region layout (offsets within the GP/EP windows)
const (
	ProcXMemBase   = 0x0000
	ProcMixbufBase = 0x5000 // GP only: alias of X memory at GPMixbufBase
	ProcYMemBase   = 0x6000
	ProcPMemBase   = 0xA000
	ProcRegRST     = 0xFFFC

	ProcMixbufWords = 0x400
)

// *RST register bits, shared by GP and EP
const (
	RSTProc    = 1 << 0
	RSTDSP     = 1 << 1
	RSTNMI     = 1 << 2
	RSTAbort   = 1 << 3
	RSTRunMask = RSTProc | RSTDSP
)

// GPMixbufBase is the word offset inside GP X memory where the setup
// engine publishes the per-frame mix
const GPMixbufBase = 0x1400

// Front-end method vocabulary (VP window offsets)
const (
	PIOFree               = 0x010 // Read-only; the queue pretends to be empty
	PIOSetAntecedentVoice = 0x120
	PIOVoiceOn            = 0x124
	PIOVoiceOff           = 0x128
	PIOVoicePause         = 0x140
	PIOSetCurrentVoice    = 0x2F8

	SE2FEIdleVoice = 0x8000 // Internal only, raised by the frame scheduler
)

// Method argument fields
const (
	AntecedentHandleMask = 0x0000FFFF
	AntecedentListMask   = 0x00030000

	ListInherit = 0
	List2DTop   = 1
	List3DTop   = 2
	ListMPTop   = 3

	VoiceHandleMask  = 0x0000FFFF
	VoicePauseAction = 1 << 18
)

// Voice record layout (guest memory, 128 bytes per voice)
const (
	VoiceSize = 0x80

	VoiceParState    = 0x54
	VoiceStatePaused = 1 << 18
	VoiceStateActive = 1 << 21

	VoiceTarPitchLink   = 0x7C
	VoiceNextHandleMask = 0x0000FFFF
)

// NullHandle terminates a voice list
const NullHandle = 0xFFFF

const (
	NumSamplesPerFrame = 32
	NumMixbins         = 32
	MaxVoices          = 256
)

// getMask extracts the field selected by mask, shifted down to bit 0
func getMask(v, mask uint32) uint32 {
	return (v & mask) >> uint(bits.TrailingZeros32(mask))
}

// setMask replaces the field selected by mask with val
func setMask(v *uint32, mask, val uint32) {
	*v = (*v &^ mask) | ((val << uint(bits.TrailingZeros32(mask))) & mask)
}
