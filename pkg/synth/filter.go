package synth

// filterOpenCutoff is the cutoff at and above which the low-pass is
// bypassed entirely. Sine and triangle are smooth enough to skip it at
// any cutoff.
const filterOpenCutoff = 6000.0

// OnePole is a first-order recursive low-pass used to tame the harsh
// square and sawtooth waveforms. Its single sample of memory persists
// per voice across blocks.
type OnePole struct {
	state float64
}

// FilterActive reports whether the low-pass applies for the given
// waveform and cutoff combination.
func FilterActive(w Waveform, cutoff float64) bool {
	if cutoff >= filterOpenCutoff {
		return false
	}
	return w == WaveSquare || w == WaveSaw
}

// FilterCoef maps a cutoff frequency to the recurrence coefficient,
// capped at 0.5.
func FilterCoef(cutoff float64) float64 {
	alpha := cutoff / filterOpenCutoff
	if alpha > 0.5 {
		alpha = 0.5
	}
	return alpha
}

// Process runs y[n] = alpha*x[n] + (1-alpha)*y[n-1] over dst in place
func (f *OnePole) Process(dst []float64, alpha float64) {
	y := f.state
	for i, x := range dst {
		y = alpha*x + (1-alpha)*y
		dst[i] = y
	}
	f.state = y
}

// Reset clears the filter memory
func (f *OnePole) Reset() {
	f.state = 0
}
