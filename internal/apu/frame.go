package apu

import (
	"math"

	"mcpx-apu/internal/debug"
)

// framePeriodMs is the re-arm interval of the setup-engine timer. The
// hardware emits frames at 1500 Hz; scheduling at 10 ms is a known
// fidelity gap this emulation accepts.
const framePeriodMs = 10

// seFrame is the setup-engine frame tick. It walks the three voice
// lists, mixes every active voice into the mixbin buffer, publishes the
// buffer into GP X memory and kicks the processors that are out of
// reset.
func (a *APU) seFrame() {
	a.frameTimer.Mod(a.clk.NowMs() + framePeriodMs)

	if a.logger != nil {
		a.logger.Logf(debug.ComponentFrame, debug.LogLevelTrace, "frame ping")
	}

	// Buffer for all mixbins for this frame
	var mixbins [NumMixbins][NumSamplesPerFrame]int32

	// Process all voices, mixing each into the affected mixbins. The
	// idle-voice trap may fire mid-walk; the rest of the frame still
	// completes.
	for list := 0; list < len(voiceListRegs); list++ {
		top := voiceListRegs[list].top
		current := voiceListRegs[list].current
		next := voiceListRegs[list].next

		a.regs[current>>2] = a.reg(top)
		for a.reg(current) != NullHandle {
			handle := a.reg(current)
			a.regs[next>>2] = a.voiceGet(handle, VoiceTarPitchLink, VoiceNextHandleMask)
			if a.voiceGet(handle, VoiceParState, VoiceStateActive) == 0 {
				if a.logger != nil {
					a.logger.Logf(debug.ComponentFrame, debug.LogLevelDebug,
						"voice %d not active", handle)
				}
				a.feMethod(SE2FEIdleVoice, handle)
			} else {
				a.processVoice(&mixbins, handle)
			}
			a.regs[current>>2] = a.reg(next)
		}
	}

	if a.cfg.MixbinBeep {
		a.mixbinBeep(&mixbins)
	}

	if a.frameSink != nil {
		a.frameSink(&mixbins)
	}

	// Publish the VP results to the GP DSP mix buffer
	for mixbin := 0; mixbin < NumMixbins; mixbin++ {
		for sample := 0; sample < NumSamplesPerFrame; sample++ {
			a.gp.dsp.WriteMemory('X',
				uint32(GPMixbufBase+mixbin*0x20+sample),
				uint32(mixbins[mixbin][sample])&0xFFFFFF)
		}
	}

	// Kick off DSP processing
	if a.gp.regs[ProcRegRST>>2]&RSTRunMask == RSTRunMask {
		a.gp.dsp.StartFrame()
		a.gp.dsp.Run(a.cfg.GPCyclesPerFrame)
	}
	if a.ep.regs[ProcRegRST>>2]&RSTRunMask == RSTRunMask {
		a.ep.dsp.StartFrame()
		// Running the EP is deferred until its program support is in
	}
}

// processVoice renders one voice into the mixbins it routes to. Voice
// rendering (pitch, envelopes, filters) is not implemented yet; the
// hook point is what matters to the frame structure.
func (a *APU) processVoice(mixbins *[NumMixbins][NumSamplesPerFrame]int32, handle uint32) {
	_ = mixbins
	_ = handle
}

// mixbinBeep injects a 1500 Hz sine wave, phase shifted by mixbin
// number, for debugging the mix path
func (a *APU) mixbinBeep(mixbins *[NumMixbins][NumSamplesPerFrame]int32) {
	for mixbin := 0; mixbin < NumMixbins; mixbin++ {
		for sample := 0; sample < NumSamplesPerFrame; sample++ {
			// Avoid multiples of 1/NumSamplesPerFrame for the phase
			// shift, or the waves cancel out
			offset := float64(sample)/NumSamplesPerFrame -
				float64(mixbin)/(NumSamplesPerFrame+1)
			wave := math.Sin(offset * math.Pi * 2)
			mixbins[mixbin][sample] += int32(wave * 0x3FFFFF)
		}
	}
}
