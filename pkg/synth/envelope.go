package synth

// EnvPhase identifies the current stage of the ADSR state machine
type EnvPhase int

const (
	EnvAttack EnvPhase = iota
	EnvDecay
	EnvSustain
	EnvRelease
	EnvFinished
)

// String returns the display name of the envelope phase
func (p EnvPhase) String() string {
	switch p {
	case EnvAttack:
		return "attack"
	case EnvDecay:
		return "decay"
	case EnvSustain:
		return "sustain"
	case EnvRelease:
		return "release"
	case EnvFinished:
		return "finished"
	}
	return "unknown"
}

// EnvelopeParams holds ADSR timing. Attack, Decay and Release are in
// seconds, Sustain is a level in [0, 1].
type EnvelopeParams struct {
	Attack  float64
	Decay   float64
	Sustain float64
	Release float64
}

// Scaled returns a copy with attack, decay and release times multiplied
// by scale. Sustain is a level, not a time, and is unaffected.
func (p EnvelopeParams) Scaled(scale float64) EnvelopeParams {
	return EnvelopeParams{
		Attack:  p.Attack * scale,
		Decay:   p.Decay * scale,
		Sustain: p.Sustain,
		Release: p.Release * scale,
	}
}

// Envelope is a per-voice ADSR generator updated once per render block.
// The timing parameters are a private copy taken at note-on, so later
// parameter changes never retouch a sounding note.
type Envelope struct {
	params EnvelopeParams
	phase  EnvPhase
	value  float64
	timer  float64 // seconds elapsed within the current phase
}

// NewEnvelope creates an envelope in the attack phase
func NewEnvelope(params EnvelopeParams) Envelope {
	return Envelope{params: params, phase: EnvAttack}
}

// Phase returns the current envelope phase
func (e *Envelope) Phase() EnvPhase { return e.phase }

// Value returns the last computed envelope value
func (e *Envelope) Value() float64 { return e.value }

// Finished reports whether the envelope has reached its terminal phase
func (e *Envelope) Finished() bool { return e.phase == EnvFinished }

// Release forces the envelope into the release phase from any
// non-finished phase and restarts the phase-local timer.
func (e *Envelope) Release() {
	if e.phase == EnvFinished {
		return
	}
	e.phase = EnvRelease
	e.timer = 0
}

// Advance moves the envelope forward by dt seconds (one render block)
// and returns the new value. Zero-length phases snap immediately.
//
// Release always ramps down from the configured sustain level, not from
// the value at the moment Release was called. Releasing mid-attack
// therefore jumps audibly; this matches the long-standing behavior and
// is kept on purpose.
func (e *Envelope) Advance(dt float64) float64 {
	e.timer += dt

	// Zero-length phases fall through to the next phase within the same
	// update, so attack=0 decay=0 lands in sustain after a single block.
	for {
		switch e.phase {
		case EnvAttack:
			if e.params.Attack <= 0 {
				e.value = 1.0
				e.phase = EnvDecay
				e.timer = 0
				continue
			}
			progress := e.timer / e.params.Attack
			if progress >= 1.0 {
				e.value = 1.0
				e.phase = EnvDecay
				e.timer = 0
			} else {
				e.value = progress
			}

		case EnvDecay:
			if e.params.Decay <= 0 {
				e.value = e.params.Sustain
				e.phase = EnvSustain
				e.timer = 0
				continue
			}
			progress := e.timer / e.params.Decay
			if progress >= 1.0 {
				e.value = e.params.Sustain
				e.phase = EnvSustain
				e.timer = 0
			} else {
				e.value = 1.0 - progress*(1.0-e.params.Sustain)
			}

		case EnvSustain:
			e.value = e.params.Sustain

		case EnvRelease:
			if e.params.Release <= 0 {
				e.phase = EnvFinished
				e.value = 0
				break
			}
			progress := e.timer / e.params.Release
			if progress >= 1.0 {
				e.phase = EnvFinished
				e.value = 0
			} else {
				e.value = e.params.Sustain * (1.0 - progress)
			}

		case EnvFinished:
			e.value = 0
		}

		return e.value
	}
}
