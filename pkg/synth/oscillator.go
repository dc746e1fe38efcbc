// Package synth implements the polyphonic synthesis engine
package synth

import "math"

// Waveform selects the oscillator shape
type Waveform int

const (
	WaveSine Waveform = iota
	WaveSquare
	WaveSaw
	WaveTriangle
)

// String returns the display name of the waveform
func (w Waveform) String() string {
	switch w {
	case WaveSine:
		return "Sine"
	case WaveSquare:
		return "Square"
	case WaveSaw:
		return "Sawtooth"
	case WaveTriangle:
		return "Triangle"
	}
	return "Unknown"
}

// NoteToFreq converts a MIDI note number to frequency in Hz
func NoteToFreq(note int) float64 {
	// A4 = note 69 = 440 Hz
	return 440.0 * math.Pow(2.0, float64(note-69)/12.0)
}

// Oscillator generates waveforms. Phase is in radians and is kept
// wrapped to [0, 2*pi) so it never grows without bound.
type Oscillator struct {
	Phase      float64
	SampleRate float64
}

// NewOscillator creates an oscillator at phase zero
func NewOscillator(sampleRate float64) Oscillator {
	return Oscillator{SampleRate: sampleRate}
}

// Render fills dst with samples of the given waveform at freq Hz,
// advancing the running phase. All samples stay within [-1, 1].
// Non-positive frequencies produce silence; that is a clamp, not an error.
func (o *Oscillator) Render(dst []float64, w Waveform, freq float64) {
	if freq <= 0 {
		for i := range dst {
			dst[i] = 0
		}
		return
	}

	inc := 2 * math.Pi * freq / o.SampleRate
	phase := o.Phase

	for i := range dst {
		switch w {
		case WaveSquare:
			if math.Sin(phase) >= 0 {
				dst[i] = 1.0
			} else {
				dst[i] = -1.0
			}
		case WaveSaw:
			p := math.Mod(phase/(2*math.Pi), 1.0)
			dst[i] = 2.0*p - 1.0
		case WaveTriangle:
			p := math.Mod(phase/(2*math.Pi), 1.0)
			dst[i] = 2.0*math.Abs(2.0*p-1.0) - 1.0
		default:
			dst[i] = math.Sin(phase)
		}
		phase += inc
	}

	o.Phase = math.Mod(phase, 2*math.Pi)
}
