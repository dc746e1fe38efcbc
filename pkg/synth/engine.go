package synth

import (
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
)

// MIDI CC numbers for the eight controller knobs
const (
	ccVolume  = 70
	ccWave    = 71
	ccFilter  = 72
	ccAttack  = 73
	ccDecay   = 74
	ccSustain = 75
	ccRelease = 76
	ccDetune  = 77
)

// Engine is the per-block render orchestrator. Note events and the
// audio sink run on different goroutines; a single mutex serializes
// pool access in short, bounded critical sections, and parameter reads
// go through the lock-free store. All render buffers are allocated once
// and reused, so the hot path does not allocate.
type Engine struct {
	sampleRate int
	params     *Params
	pool       *VoicePool
	log        *slog.Logger

	mu      sync.Mutex // guards pool
	acc     []float64  // block accumulator
	scratch []float64  // per-voice render buffer

	ready atomic.Bool
}

// Status is a point-in-time view of the engine for display purposes
type Status struct {
	Voices       int
	MaxVoices    int
	MasterVolume float64
	Waveform     Waveform
	FilterCutoff float64
	Detune       float64
	EnvScale     float64
}

// NewEngine creates an engine rendering blocks of blockFrames frames
func NewEngine(sampleRate, blockFrames, maxVoices int, params *Params, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	if params == nil {
		params = NewParams()
	}
	if blockFrames < 1 {
		blockFrames = 512
	}
	return &Engine{
		sampleRate: sampleRate,
		params:     params,
		pool:       NewVoicePool(float64(sampleRate), maxVoices),
		log:        log,
		acc:        make([]float64, blockFrames),
		scratch:    make([]float64, blockFrames),
	}
}

// SampleRate returns the engine sample rate in Hz
func (e *Engine) SampleRate() int { return e.sampleRate }

// Params returns the shared parameter store
func (e *Engine) Params() *Params { return e.params }

// SetReady flags the engine as wired to a running sink. The readiness
// signal is all the core exposes; collaborator startup failures are the
// caller's problem.
func (e *Engine) SetReady(ok bool) { e.ready.Store(ok) }

// Ready reports whether the engine is attached to a running sink
func (e *Engine) Ready() bool { return e.ready.Load() }

// OnNoteOn starts a note. Velocity 0 is treated as a note off, per the
// MIDI running-status convention.
func (e *Engine) OnNoteOn(note, velocity int) {
	if note < 0 || note > 127 {
		return
	}
	if velocity <= 0 {
		e.OnNoteOff(note)
		return
	}
	if velocity > 127 {
		velocity = 127
	}

	env := e.params.EnvelopeForNoteOn()

	e.mu.Lock()
	e.pool.NoteOn(note, velocity, env)
	e.mu.Unlock()
}

// OnNoteOff releases a note; unknown notes are silently ignored
func (e *Engine) OnNoteOff(note int) {
	if note < 0 || note > 127 {
		return
	}
	e.mu.Lock()
	e.pool.NoteOff(note)
	e.mu.Unlock()
}

// AllNotesOff releases every sounding voice, used when a controller
// disappears mid-performance.
func (e *Engine) AllNotesOff() {
	e.mu.Lock()
	e.pool.Each(func(v *Voice) { v.Release() })
	e.mu.Unlock()
}

// OnControlChange routes a raw MIDI control change (0-127) to the
// parameter store using the controller knob layout. Detune is the one
// signed control: (value-64)*2 cents, so the full sweep covers roughly
// plus/minus 128 cents. That is a different convention from the
// normalized detune knob in SetParameter and the two stay separate.
func (e *Engine) OnControlChange(controller, value int) {
	if value < 0 {
		value = 0
	}
	if value > 127 {
		value = 127
	}
	norm := float64(value) / 127.0

	switch controller {
	case ccVolume:
		e.params.SetParameter("volume", norm)
	case ccWave:
		e.params.SetParameter("waveform", norm)
	case ccFilter:
		e.params.SetParameter("filterCutoff", norm)
	case ccAttack:
		e.params.SetParameter("attack", norm)
	case ccDecay:
		e.params.SetParameter("decay", norm)
	case ccSustain:
		e.params.SetParameter("sustain", norm)
	case ccRelease:
		e.params.SetParameter("release", norm)
	case ccDetune:
		e.params.SetDetuneCents(float64(value-64) * 2)
	}
}

// SetParameter forwards a normalized control value to the store
func (e *Engine) SetParameter(name string, value float64) error {
	return e.params.SetParameter(name, value)
}

// Status returns a display snapshot of the engine
func (e *Engine) Status() Status {
	snap := e.params.Snapshot()
	e.mu.Lock()
	voices := e.pool.Len()
	e.mu.Unlock()
	return Status{
		Voices:       voices,
		MaxVoices:    e.pool.Cap(),
		MasterVolume: snap.MasterVolume,
		Waveform:     snap.Waveform,
		FilterCutoff: snap.FilterCutoff,
		Detune:       snap.Detune,
		EnvScale:     snap.EnvScale,
	}
}

// RenderBlock fills dst with interleaved stereo samples: len(dst)/2
// frames, the mono mix duplicated to both channels. Any internal fault
// degrades the block to silence rather than propagating; dropping one
// block is always preferable to stalling the sink.
func (e *Engine) RenderBlock(dst []float32) {
	defer func() {
		if r := recover(); r != nil {
			for i := range dst {
				dst[i] = 0
			}
			e.log.Error("render fault, block dropped", "panic", r)
		}
	}()

	frames := len(dst) / 2
	if frames == 0 {
		return
	}
	if len(e.acc) < frames {
		e.acc = make([]float64, frames)
		e.scratch = make([]float64, frames)
	}
	acc := e.acc[:frames]
	scratch := e.scratch[:frames]

	snap := e.params.Snapshot()

	for i := range acc {
		acc[i] = 0
	}

	e.mu.Lock()
	e.pool.Each(func(v *Voice) {
		v.Render(scratch, snap.Waveform, snap.FilterCutoff, snap.Detune)
		for i := range acc {
			acc[i] += scratch[i]
		}
	})
	e.pool.CollectFinished()
	e.mu.Unlock()

	for i, s := range acc {
		s *= snap.MasterVolume
		// Soft limiter: bounds runaway summation from many voices.
		s = math.Tanh(s*0.7) * 1.2
		dst[2*i] = float32(s)
		dst[2*i+1] = float32(s)
	}
}
