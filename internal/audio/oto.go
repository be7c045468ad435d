package audio

import (
	"fmt"
	"sync"

	"github.com/ebitengine/oto/v3"
)

// OtoOutput plays samples through an oto player. oto pulls audio via
// io.Reader, so queued samples sit in a buffer the player drains;
// silence is produced when the buffer runs dry.
type OtoOutput struct {
	ctx    *oto.Context
	player *oto.Player

	mu  sync.Mutex
	buf []byte
}

// NewOtoOutput creates an oto context for mono 16-bit output
func NewOtoOutput(sampleRate int) (*OtoOutput, error) {
	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatSignedInt16LE,
	}
	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("failed to create oto context: %w", err)
	}
	<-ready

	o := &OtoOutput{ctx: ctx}
	o.player = ctx.NewPlayer(o)
	return o, nil
}

// Read supplies buffered samples to the player, padding with silence
func (o *OtoOutput) Read(p []byte) (int, error) {
	o.mu.Lock()
	n := copy(p, o.buf)
	o.buf = o.buf[n:]
	o.mu.Unlock()

	for i := n; i < len(p); i++ {
		p[i] = 0
	}
	return len(p), nil
}

// Start begins playback
func (o *OtoOutput) Start() error {
	o.player.Play()
	return nil
}

// Queue appends samples to the pull buffer
func (o *OtoOutput) Queue(samples []int16) error {
	buf := make([]byte, len(samples)*2)
	for i, s := range samples {
		buf[i*2] = byte(s)
		buf[i*2+1] = byte(s >> 8)
	}

	o.mu.Lock()
	o.buf = append(o.buf, buf...)
	o.mu.Unlock()
	return nil
}

// Close stops playback
func (o *OtoOutput) Close() {
	if o.player != nil {
		o.player.Close()
	}
}
