package synth

import (
	"fmt"
	"math"
	"sync/atomic"
)

// Params is the shared control-parameter store. Control sources write
// individual fields at arbitrary times while the render engine reads a
// snapshot once per block, so every scalar is stored atomically. A
// snapshot may mix slightly stale values across fields; a single field
// is never torn.
type Params struct {
	masterVolume atomicFloat
	waveform     atomic.Int32
	filterCutoff atomicFloat
	detune       atomicFloat
	attack       atomicFloat
	decay        atomicFloat
	sustain      atomicFloat
	release      atomicFloat
	envScale     atomicFloat
}

// atomicFloat stores a float64 as its IEEE-754 bits
type atomicFloat struct {
	bits atomic.Uint64
}

func (a *atomicFloat) Store(v float64) {
	a.bits.Store(math.Float64bits(v))
}

func (a *atomicFloat) Load() float64 {
	return math.Float64frombits(a.bits.Load())
}

// Snapshot is one per-block view of the parameter store
type Snapshot struct {
	MasterVolume float64
	Waveform     Waveform
	FilterCutoff float64
	Detune       float64 // cents
	Envelope     EnvelopeParams
	EnvScale     float64
}

// NewParams creates a parameter store with the classic power-on sound:
// half volume, sine, 1 kHz cutoff, a snappy envelope, no detune.
func NewParams() *Params {
	p := &Params{}
	p.masterVolume.Store(0.5)
	p.waveform.Store(int32(WaveSine))
	p.filterCutoff.Store(1000.0)
	p.detune.Store(0.0)
	p.attack.Store(0.01)
	p.decay.Store(0.1)
	p.sustain.Store(0.7)
	p.release.Store(0.3)
	p.envScale.Store(1.0)
	return p
}

// Snapshot reads every field once. Cross-field consistency is not
// guaranteed and not needed; each field individually is read whole.
func (p *Params) Snapshot() Snapshot {
	return Snapshot{
		MasterVolume: p.masterVolume.Load(),
		Waveform:     Waveform(p.waveform.Load()),
		FilterCutoff: p.filterCutoff.Load(),
		Detune:       p.detune.Load(),
		Envelope: EnvelopeParams{
			Attack:  p.attack.Load(),
			Decay:   p.decay.Load(),
			Sustain: p.sustain.Load(),
			Release: p.release.Load(),
		},
		EnvScale: p.envScale.Load(),
	}
}

// EnvelopeForNoteOn returns the ADSR timing a new voice should capture:
// the stored base times multiplied by the envelope timing scale.
func (p *Params) EnvelopeForNoteOn() EnvelopeParams {
	return EnvelopeParams{
		Attack:  p.attack.Load(),
		Decay:   p.decay.Load(),
		Sustain: p.sustain.Load(),
		Release: p.release.Load(),
	}.Scaled(p.envScale.Load())
}

// SetParameter applies a normalized control value in [0, 1] to the
// named parameter, using the fixed knob scalings. Out-of-range values
// are clamped, never rejected. Repeating the same call is a no-op after
// the first. Unknown names are the only error.
//
// Detune here follows the normalized-knob convention: (v-0.5)*200,
// i.e. plus/minus 100 cents centered on the knob's midpoint. The MIDI
// CC path uses a different, signed-offset convention; see
// Engine.OnControlChange. The two are deliberately not merged.
func (p *Params) SetParameter(name string, value float64) error {
	v := clamp01(value)

	switch name {
	case "volume":
		p.masterVolume.Store(v * 0.8)
	case "waveform":
		switch {
		case v < 0.25:
			p.waveform.Store(int32(WaveSine))
		case v < 0.5:
			p.waveform.Store(int32(WaveSquare))
		case v < 0.75:
			p.waveform.Store(int32(WaveSaw))
		default:
			p.waveform.Store(int32(WaveTriangle))
		}
	case "filterCutoff":
		p.filterCutoff.Store(200 + v*7800)
	case "attack":
		p.attack.Store(0.001 + v*2.0)
	case "decay":
		p.decay.Store(0.01 + v*2.0)
	case "sustain":
		p.sustain.Store(v)
	case "release":
		p.release.Store(0.01 + v*4.0)
	case "detune":
		p.detune.Store((v - 0.5) * 200)
	case "envelope":
		p.envScale.Store(0.1 + v*4.0)
	default:
		return fmt.Errorf("unknown parameter %q", name)
	}
	return nil
}

// SetDetuneCents stores a detune value directly in cents, used by the
// signed MIDI controller convention.
func (p *Params) SetDetuneCents(cents float64) {
	p.detune.Store(cents)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
