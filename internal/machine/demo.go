package machine

import (
	"mcpx-apu/internal/apu"
)

// Guest-physical layout used by the demo bring-up. Everything sits
// well inside the default 16 MiB RAM window.
const (
	demoVoiceTable  = 0x100000
	demoSGTableBase = 0x020000 // four tables, 0x1000 apart
	demoPagePool    = 0x200000 // backing pages, 0x40000 per table
	demoSGEntries   = 64
)

// SetupDemo performs the canned driver bring-up the example frontends
// run against: scatter/gather tables for both processors, two voices
// on the 3D list, the idle-voice trap armed, interrupts enabled, the
// GP released from reset and the frame counter started.
func (m *Machine) SetupDemo() {
	pageSize := uint32(4096)

	// Scatter/gather tables: identity windows into the page pool
	sgTables := []struct {
		addrReg, maxReg uint32
	}{
		{apu.RegGPSADDR, apu.RegGPSMaxSGE},
		{apu.RegGPFADDR, apu.RegGPFMaxSGE},
		{apu.RegEPSADDR, apu.RegEPSMaxSGE},
		{apu.RegEPFADDR, apu.RegEPFMaxSGE},
	}
	for i, t := range sgTables {
		table := demoSGTableBase + uint32(i)*0x1000
		pool := demoPagePool + uint32(i)*demoSGEntries*pageSize
		for e := uint32(0); e < demoSGEntries; e++ {
			m.RAM.Stl(table+e*8, pool+e*pageSize)
			m.RAM.Stl(table+e*8+4, 0)
		}
		m.MMIOWrite(t.addrReg, table)
		m.MMIOWrite(t.maxReg, demoSGEntries-1)
	}

	// FIFO windows inside the FIFO logical space
	fifoBlocks := []uint32{apu.RegGPOFBase0, apu.RegGPIFBase0, apu.RegEPOFBase0, apu.RegEPIFBase0}
	for _, block := range fifoBlocks {
		m.MMIOWrite(block, 0x0000<<8)
		m.MMIOWrite(block+4, 0x1000<<8)
		m.MMIOWrite(block+8, 0x0000<<2)
	}

	// Empty all three voice lists before inserting anything; the
	// registers reset to 0, which is a valid handle
	for _, reg := range []uint32{
		apu.RegTVL2D, apu.RegCVL2D, apu.RegNVL2D,
		apu.RegTVL3D, apu.RegCVL3D, apu.RegNVL3D,
		apu.RegTVLMP, apu.RegCVLMP, apu.RegNVLMP,
	} {
		m.MMIOWrite(reg, apu.NullHandle)
	}

	// Voice records and the 3D list: voice 5 at the top, voice 9
	// linked after it
	m.MMIOWrite(apu.RegVPVADDR, demoVoiceTable)
	m.MMIOWrite(apu.VPBase+apu.PIOSetAntecedentVoice, apu.List3DTop<<16)
	m.MMIOWrite(apu.VPBase+apu.PIOVoiceOn, 0x0005)
	m.MMIOWrite(apu.VPBase+apu.PIOSetAntecedentVoice, 0x0005)
	m.MMIOWrite(apu.VPBase+apu.PIOVoiceOn, 0x0009)

	// Arm the idle-voice trap and let it interrupt
	m.MMIOWrite(apu.RegFETFORCE1, apu.FETForce1IdleVoice)
	m.MMIOWrite(apu.RegIEN, apu.ISTSGIntSts|apu.ISTSFETIntSts)

	// Release the GP and start the frame counter
	m.MMIOWrite(apu.GPBase+apu.ProcRegRST, 0)
	m.MMIOWrite(apu.GPBase+apu.ProcRegRST, apu.RSTRunMask)
	m.MMIOWrite(apu.RegSECTL, 1<<3)
}
