package synth

import "math"

// Voice is one independently sounding note: an oscillator, a private
// ADSR envelope and one-pole filter memory. A voice mutates only its
// own state; the pool that owns it handles allocation and removal.
type Voice struct {
	Note     int
	Velocity float64 // 0..1

	frequency float64
	osc       Oscillator
	env       Envelope
	filter    OnePole
}

// NewVoice creates a voice for a MIDI note. Velocity is the raw MIDI
// value 0-127. The envelope params are captured here so later control
// changes do not retroactively alter a sounding note.
func NewVoice(note, velocity int, sampleRate float64, env EnvelopeParams) *Voice {
	return &Voice{
		Note:      note,
		Velocity:  float64(velocity) / 127.0,
		frequency: NoteToFreq(note),
		osc:       NewOscillator(sampleRate),
		env:       NewEnvelope(env),
	}
}

// Release starts the note release
func (v *Voice) Release() {
	v.env.Release()
}

// Finished reports whether the envelope has run out
func (v *Voice) Finished() bool {
	return v.env.Finished()
}

// EnvPhase returns the current envelope phase, for status display
func (v *Voice) EnvPhase() EnvPhase {
	return v.env.Phase()
}

// EnvValue returns the current envelope value
func (v *Voice) EnvValue() float64 {
	return v.env.Value()
}

// Render fills dst with this voice's contribution for one block:
// detune, oscillator, optional low-pass, then envelope and velocity
// scaling. detune is in cents.
func (v *Voice) Render(dst []float64, w Waveform, filterCutoff, detune float64) {
	if v.env.Finished() {
		// Callers prune finished voices after each block; render
		// silence if one slips through anyway.
		for i := range dst {
			dst[i] = 0
		}
		return
	}

	freq := v.frequency * math.Pow(2.0, detune/1200.0)
	v.osc.Render(dst, w, freq)

	if FilterActive(w, filterCutoff) {
		v.filter.Process(dst, FilterCoef(filterCutoff))
	}

	dt := float64(len(dst)) / v.osc.SampleRate
	gain := v.env.Advance(dt) * v.Velocity
	for i := range dst {
		dst[i] *= gain
	}
}
