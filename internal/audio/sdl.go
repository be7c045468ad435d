package audio

import (
	"fmt"

	"github.com/veandco/go-sdl2/sdl"
)

// SDLOutput queues samples on an SDL audio device
type SDLOutput struct {
	dev        sdl.AudioDeviceID
	sampleRate int
}

// NewSDLOutput opens the default SDL audio device for mono 16-bit
// output
func NewSDLOutput(sampleRate int) (*SDLOutput, error) {
	if err := sdl.InitSubSystem(sdl.INIT_AUDIO); err != nil {
		return nil, fmt.Errorf("failed to init SDL audio: %w", err)
	}

	spec := sdl.AudioSpec{
		Freq:     int32(sampleRate),
		Format:   sdl.AUDIO_S16LSB,
		Channels: 1,
		Samples:  1024,
	}
	dev, err := sdl.OpenAudioDevice("", false, &spec, nil, 0)
	if err != nil {
		sdl.QuitSubSystem(sdl.INIT_AUDIO)
		return nil, fmt.Errorf("failed to open audio device: %w", err)
	}

	return &SDLOutput{dev: dev, sampleRate: sampleRate}, nil
}

// Start begins playback
func (o *SDLOutput) Start() error {
	sdl.PauseAudioDevice(o.dev, false)
	return nil
}

// Queue appends samples to the device queue. A backed-up queue (more
// than a second of audio) drops the frame instead of blocking the
// machine loop.
func (o *SDLOutput) Queue(samples []int16) error {
	queued := sdl.GetQueuedAudioSize(o.dev)
	if queued > uint32(o.sampleRate*2) {
		return nil
	}

	buf := make([]byte, len(samples)*2)
	for i, s := range samples {
		buf[i*2] = byte(s)
		buf[i*2+1] = byte(s >> 8)
	}
	if err := sdl.QueueAudio(o.dev, buf); err != nil {
		return fmt.Errorf("failed to queue audio: %w", err)
	}
	return nil
}

// Close stops playback and releases the device
func (o *SDLOutput) Close() {
	sdl.CloseAudioDevice(o.dev)
	sdl.QuitSubSystem(sdl.INIT_AUDIO)
}
