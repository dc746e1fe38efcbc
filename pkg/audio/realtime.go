// Package audio implements the audio output layer
package audio

import (
	"encoding/binary"

	"github.com/ebitengine/oto/v3"
)

// BlockRenderer is the pull-based, deadline-bound sample source: each
// call must fill dst with len(dst)/2 frames of interleaved stereo
// before the device buffer drains. The output layer depends on this
// capability only, never on the engine type itself.
type BlockRenderer interface {
	RenderBlock(dst []float32)
}

// RealtimeOutput plays a renderer through the default audio device
type RealtimeOutput struct {
	otoCtx    *oto.Context
	otoPlayer *oto.Player
	running   bool
}

// NewRealtimeOutput opens the audio device and starts pulling
// blockFrames-sized stereo blocks from the renderer.
func NewRealtimeOutput(r BlockRenderer, sampleRate, blockFrames int) (*RealtimeOutput, error) {
	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 2,
		Format:       oto.FormatSignedInt16LE,
	}

	otoCtx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, err
	}
	<-ready

	rt := &RealtimeOutput{
		otoCtx:  otoCtx,
		running: true,
	}

	rt.otoPlayer = otoCtx.NewPlayer(&blockStream{
		rt:       rt,
		renderer: r,
		buffer:   make([]float32, blockFrames*2),
	})
	rt.otoPlayer.SetBufferSize(sampleRate / 10 * 4) // ~100ms of stereo int16
	rt.otoPlayer.Play()

	return rt, nil
}

// Close stops the audio output. No further RenderBlock calls are made
// once Close returns.
func (rt *RealtimeOutput) Close() {
	rt.running = false
	if rt.otoPlayer != nil {
		rt.otoPlayer.Close()
	}
}

// blockStream implements io.Reader for oto
type blockStream struct {
	rt       *RealtimeOutput
	renderer BlockRenderer
	buffer   []float32
	pos      int
}

func (s *blockStream) Read(buf []byte) (int, error) {
	if !s.rt.running {
		for i := range buf {
			buf[i] = 0
		}
		return len(buf), nil
	}

	// Convert to 16-bit PCM, pulling a fresh block whenever the
	// previous one is exhausted.
	n := 0
	for n+2 <= len(buf) {
		if s.pos >= len(s.buffer) {
			s.renderer.RenderBlock(s.buffer)
			s.pos = 0
		}
		binary.LittleEndian.PutUint16(buf[n:], uint16(sampleToInt16(s.buffer[s.pos])))
		s.pos++
		n += 2
	}

	return n, nil
}

// sampleToInt16 clamps to [-1, 1] and converts. The engine's soft
// limiter can emit up to 1.2, so the hard clamp is required here.
func sampleToInt16(sample float32) int16 {
	if sample > 1.0 {
		sample = 1.0
	}
	if sample < -1.0 {
		sample = -1.0
	}
	return int16(sample * 32767)
}
