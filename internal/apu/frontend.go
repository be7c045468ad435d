package apu

import (
	"fmt"

	"mcpx-apu/internal/debug"
)

// vpRead services reads from the Voice Processor command window. Only
// PIO_FREE is backed: the command queue is not simulated, so it always
// reports space available.
func (a *APU) vpRead(addr uint32) uint32 {
	switch addr {
	case PIOFree:
		return 0x80
	default:
		return 0
	}
}

// vpWrite services writes to the Voice Processor command window. The
// recognized offsets are the front-end method vocabulary; everything
// else is inert.
func (a *APU) vpWrite(addr uint32, v uint32) {
	switch addr {
	case PIOSetAntecedentVoice,
		PIOVoiceOn,
		PIOVoiceOff,
		PIOVoicePause,
		PIOSetCurrentVoice:
		// TODO: these should be queued as fe commands instead of
		// executing synchronously
		a.feMethod(addr, v)
	default:
	}
}

// feMethod executes one front-end method. The scheduler also calls
// this with SE2FE_IDLE_VOICE when it walks onto an inactive voice.
func (a *APU) feMethod(method uint32, argument uint32) {
	if a.logger != nil {
		a.logger.Logf(debug.ComponentFE, debug.LogLevelDebug,
			"method 0x%03X arg 0x%08X", method, argument)
	}

	a.regs[RegFEDECMETH>>2] = method
	a.regs[RegFEDECPARAM>>2] = argument

	switch method {
	case PIOSetAntecedentVoice:
		a.regs[RegFEAV>>2] = argument

	case PIOVoiceOn:
		handle := argument & VoiceHandleMask
		list := getMask(a.reg(RegFEAV), FEAVListMask)
		if list != ListInherit {
			// Insert at the top of the selected list
			topReg := voiceListRegs[list-1].top
			a.voiceSet(handle, VoiceTarPitchLink, VoiceNextHandleMask, a.reg(topReg))
			a.regs[topReg>>2] = handle
		} else {
			// Insert after the antecedent voice
			antecedent := getMask(a.reg(RegFEAV), FEAVValueMask)
			if antecedent == NullHandle {
				panic("apu: VOICE_ON with inherit list but null antecedent")
			}
			next := a.voiceGet(antecedent, VoiceTarPitchLink, VoiceNextHandleMask)
			a.voiceSet(handle, VoiceTarPitchLink, VoiceNextHandleMask, next)
			a.voiceSet(antecedent, VoiceTarPitchLink, VoiceNextHandleMask, handle)
		}
		a.voiceSet(handle, VoiceParState, VoiceStateActive, 1)

	case PIOVoiceOff:
		// The voice stays linked; the scheduler traps on it next
		// traversal
		a.voiceSet(argument&VoiceHandleMask, VoiceParState, VoiceStateActive, 0)

	case PIOVoicePause:
		paused := uint32(0)
		if argument&VoicePauseAction != 0 {
			paused = 1
		}
		a.voiceSet(argument&VoiceHandleMask, VoiceParState, VoiceStatePaused, paused)

	case PIOSetCurrentVoice:
		a.regs[RegFECV>>2] = argument

	case SE2FEIdleVoice:
		if a.reg(RegFETFORCE1)&FETForce1IdleVoice == 0 {
			panic(fmt.Sprintf("apu: SE2FE_IDLE_VOICE for 0x%04X without enable bit", argument))
		}
		fectl := a.reg(RegFECTL)
		fectl = (fectl &^ FECTLMethModeMask) | FECTLMethModeTrapped
		fectl = (fectl &^ FECTLTrapReasonMask) | FECTLTrapReasonRequested
		a.regs[RegFECTL>>2] = fectl

		a.regs[RegISTS>>2] |= ISTSFETIntSts
		a.updateIRQ()

	default:
		panic(fmt.Sprintf("apu: unknown front-end method 0x%03X", method))
	}
}
