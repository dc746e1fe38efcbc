package synth

// DefaultMaxVoices matches the polyphony of the hardware unit this
// engine grew out of.
const DefaultMaxVoices = 12

// VoicePool owns every active voice, keyed by note number. At most one
// voice sounds per note and the pool never exceeds its capacity; when
// full, the voice with the numerically smallest note is stolen. The
// pool itself is not goroutine-safe; the engine serializes access.
type VoicePool struct {
	sampleRate float64
	max        int
	voices     map[int]*Voice
}

// NewVoicePool creates an empty pool with the given capacity
func NewVoicePool(sampleRate float64, maxVoices int) *VoicePool {
	if maxVoices < 1 {
		maxVoices = DefaultMaxVoices
	}
	return &VoicePool{
		sampleRate: sampleRate,
		max:        maxVoices,
		voices:     make(map[int]*Voice, maxVoices),
	}
}

// NoteOn allocates a fresh voice for the note. A note that is already
// sounding is retriggered hard: the old voice is discarded outright and
// the attack restarts from zero. When the pool is full the lowest
// active note is evicted immediately, with no release tail.
func (p *VoicePool) NoteOn(note, velocity int, env EnvelopeParams) *Voice {
	if _, ok := p.voices[note]; ok {
		delete(p.voices, note)
	}

	if len(p.voices) >= p.max {
		lowest := -1
		for n := range p.voices {
			if lowest < 0 || n < lowest {
				lowest = n
			}
		}
		delete(p.voices, lowest)
	}

	v := NewVoice(note, velocity, p.sampleRate, env)
	p.voices[note] = v
	return v
}

// NoteOff releases the voice for the note, if one is sounding. A note
// off for an unmapped note is silently ignored.
func (p *VoicePool) NoteOff(note int) {
	if v, ok := p.voices[note]; ok {
		v.Release()
	}
}

// CollectFinished removes every voice whose envelope has finished.
// Called by the render engine after each mix pass.
func (p *VoicePool) CollectFinished() {
	for n, v := range p.voices {
		if v.Finished() {
			delete(p.voices, n)
		}
	}
}

// Len returns the number of active voices
func (p *VoicePool) Len() int {
	return len(p.voices)
}

// Cap returns the maximum number of simultaneous voices
func (p *VoicePool) Cap() int {
	return p.max
}

// Voice returns the voice sounding the note, or nil
func (p *VoicePool) Voice(note int) *Voice {
	return p.voices[note]
}

// Each calls fn for every active voice. Iteration order is undefined;
// mixing is a commutative sum so it does not matter.
func (p *VoicePool) Each(fn func(*Voice)) {
	for _, v := range p.voices {
		fn(v)
	}
}
