package synth

import (
	"math"
	"sync"
	"testing"
)

func TestParams_VolumeScaling(t *testing.T) {
	p := NewParams()
	p.SetParameter("volume", 1.0)
	if got := p.Snapshot().MasterVolume; got != 0.8 {
		t.Errorf("volume(1.0) = %f, want 0.8", got)
	}
	p.SetParameter("volume", 0.5)
	if got := p.Snapshot().MasterVolume; got != 0.4 {
		t.Errorf("volume(0.5) = %f, want 0.4", got)
	}
}

func TestParams_WaveformQuartiles(t *testing.T) {
	cases := []struct {
		v    float64
		want Waveform
	}{
		{0.0, WaveSine},
		{0.24, WaveSine},
		{0.25, WaveSquare},
		{0.49, WaveSquare},
		{0.5, WaveSaw},
		{0.74, WaveSaw},
		{0.75, WaveTriangle},
		{1.0, WaveTriangle},
	}
	p := NewParams()
	for _, c := range cases {
		p.SetParameter("waveform", c.v)
		if got := p.Snapshot().Waveform; got != c.want {
			t.Errorf("waveform(%.2f) = %s, want %s", c.v, got, c.want)
		}
	}
}

func TestParams_FilterCutoffRange(t *testing.T) {
	p := NewParams()
	p.SetParameter("filterCutoff", 0)
	if got := p.Snapshot().FilterCutoff; got != 200 {
		t.Errorf("cutoff(0) = %f, want 200", got)
	}
	p.SetParameter("filterCutoff", 1)
	if got := p.Snapshot().FilterCutoff; got != 8000 {
		t.Errorf("cutoff(1) = %f, want 8000", got)
	}
}

func TestParams_EnvelopeKnobScaling(t *testing.T) {
	p := NewParams()
	p.SetParameter("attack", 0)
	p.SetParameter("decay", 0)
	p.SetParameter("sustain", 0.5)
	p.SetParameter("release", 0)

	snap := p.Snapshot()
	if snap.Envelope.Attack != 0.001 {
		t.Errorf("attack(0) = %f, want 0.001", snap.Envelope.Attack)
	}
	if snap.Envelope.Decay != 0.01 {
		t.Errorf("decay(0) = %f, want 0.01", snap.Envelope.Decay)
	}
	if snap.Envelope.Sustain != 0.5 {
		t.Errorf("sustain(0.5) = %f, want 0.5", snap.Envelope.Sustain)
	}
	if snap.Envelope.Release != 0.01 {
		t.Errorf("release(0) = %f, want 0.01", snap.Envelope.Release)
	}

	p.SetParameter("attack", 1)
	p.SetParameter("release", 1)
	snap = p.Snapshot()
	if snap.Envelope.Attack != 2.001 {
		t.Errorf("attack(1) = %f, want 2.001", snap.Envelope.Attack)
	}
	if snap.Envelope.Release != 4.01 {
		t.Errorf("release(1) = %f, want 4.01", snap.Envelope.Release)
	}
}

func TestParams_DetuneConventions(t *testing.T) {
	p := NewParams()

	// Normalized knob: (v-0.5)*200, plus/minus 100 cents.
	p.SetParameter("detune", 0)
	if got := p.Snapshot().Detune; got != -100 {
		t.Errorf("detune(0) = %f, want -100", got)
	}
	p.SetParameter("detune", 1)
	if got := p.Snapshot().Detune; got != 100 {
		t.Errorf("detune(1) = %f, want 100", got)
	}
	p.SetParameter("detune", 0.5)
	if got := p.Snapshot().Detune; got != 0 {
		t.Errorf("detune(0.5) = %f, want 0", got)
	}

	// Signed controller offset goes in directly as cents.
	p.SetDetuneCents(-128)
	if got := p.Snapshot().Detune; got != -128 {
		t.Errorf("SetDetuneCents(-128) stored %f", got)
	}
}

func TestParams_EnvelopeTimingScale(t *testing.T) {
	p := NewParams()
	p.SetParameter("envelope", 0)
	if got := p.Snapshot().EnvScale; math.Abs(got-0.1) > 1e-12 {
		t.Errorf("envScale(0) = %f, want 0.1", got)
	}
	p.SetParameter("envelope", 1)
	if got := p.Snapshot().EnvScale; math.Abs(got-4.1) > 1e-12 {
		t.Errorf("envScale(1) = %f, want 4.1", got)
	}

	// The note-on snapshot scales A/D/R but never sustain.
	p.SetParameter("attack", 0.1)
	p.SetParameter("sustain", 0.6)
	env := p.EnvelopeForNoteOn()
	base := 0.001 + 0.1*2.0
	if math.Abs(env.Attack-base*4.1) > 1e-9 {
		t.Errorf("scaled attack = %f, want %f", env.Attack, base*4.1)
	}
	if env.Sustain != 0.6 {
		t.Errorf("sustain scaled, got %f", env.Sustain)
	}
}

func TestParams_OutOfRangeClamped(t *testing.T) {
	p := NewParams()
	if err := p.SetParameter("volume", 3.5); err != nil {
		t.Fatalf("out-of-range input must clamp, not error: %v", err)
	}
	if got := p.Snapshot().MasterVolume; got != 0.8 {
		t.Errorf("volume(3.5) = %f, want 0.8 (clamped)", got)
	}
	p.SetParameter("sustain", -2)
	if got := p.Snapshot().Envelope.Sustain; got != 0 {
		t.Errorf("sustain(-2) = %f, want 0 (clamped)", got)
	}
}

func TestParams_UnknownNameRejected(t *testing.T) {
	p := NewParams()
	if err := p.SetParameter("resonance", 0.5); err == nil {
		t.Error("unknown parameter must return an error")
	}
}

func TestParams_Idempotent(t *testing.T) {
	p := NewParams()
	p.SetParameter("filterCutoff", 0.3)
	first := p.Snapshot()
	for i := 0; i < 10; i++ {
		p.SetParameter("filterCutoff", 0.3)
	}
	if p.Snapshot() != first {
		t.Error("repeated identical writes changed state")
	}
}

// TestParams_ConcurrentAccess stresses writer/reader interleaving. No
// assertions beyond absence of torn reads; run with -race.
func TestParams_ConcurrentAccess(t *testing.T) {
	p := NewParams()
	var wg sync.WaitGroup
	stop := make(chan struct{})

	wg.Add(2)
	go func() {
		defer wg.Done()
		i := 0
		for {
			select {
			case <-stop:
				return
			default:
			}
			p.SetParameter("volume", float64(i%100)/100)
			p.SetParameter("waveform", float64(i%4)/4)
			p.SetParameter("detune", float64(i%100)/100)
			i++
		}
	}()
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
			}
			snap := p.Snapshot()
			if snap.MasterVolume < 0 || snap.MasterVolume > 0.8 {
				t.Errorf("torn volume read: %f", snap.MasterVolume)
				return
			}
			if snap.Detune < -100 || snap.Detune > 100 {
				t.Errorf("torn detune read: %f", snap.Detune)
				return
			}
		}
	}()

	for i := 0; i < 100000; i++ {
		p.Snapshot()
	}
	close(stop)
	wg.Wait()
}
