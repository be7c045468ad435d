package audio

import (
	"fmt"

	"mcpx-apu/internal/apu"
)

// SampleRate is the nominal output rate: 1500 frames/s of 32 samples.
// The emulated frame cadence is slower than the hardware's, so live
// playback underruns by design; the queue-based backends tolerate it.
const SampleRate = 48000

// Output is a host audio sink fed with mono signed 16-bit samples
type Output interface {
	Start() error
	Queue(samples []int16) error
	Close()
}

// New creates the named backend: "sdl", "oto" or "none"
func New(backend string, sampleRate int) (Output, error) {
	switch backend {
	case "sdl":
		return NewSDLOutput(sampleRate)
	case "oto":
		return NewOtoOutput(sampleRate)
	case "none", "":
		return NewHeadless(), nil
	default:
		return nil, fmt.Errorf("unknown audio backend %q", backend)
	}
}

// FramePCM converts one mixbin of a frame to 16-bit PCM. Samples
// arrive as signed 24-bit values in int32s.
func FramePCM(mix *[apu.NumMixbins][apu.NumSamplesPerFrame]int32, mixbin int) []int16 {
	out := make([]int16, apu.NumSamplesPerFrame)
	for i, s := range mix[mixbin] {
		out[i] = Clamp24To16(s)
	}
	return out
}

// Clamp24To16 narrows a signed 24-bit sample to 16 bits with
// saturation
func Clamp24To16(s int32) int16 {
	if s > 0x7FFFFF {
		s = 0x7FFFFF
	} else if s < -0x800000 {
		s = -0x800000
	}
	return int16(s >> 8)
}
