package synth

import (
	"math"
	"testing"
)

func TestNoteToFreq(t *testing.T) {
	cases := []struct {
		note int
		want float64
	}{
		{69, 440.0},  // A-4
		{57, 220.0},  // A-3
		{81, 880.0},  // A-5
		{60, 261.63}, // C-4
	}
	for _, c := range cases {
		got := NoteToFreq(c.note)
		if math.Abs(got-c.want) > 0.01 {
			t.Errorf("NoteToFreq(%d) = %f, want %f", c.note, got, c.want)
		}
	}
}

func TestOscillator_OutputRange(t *testing.T) {
	waveforms := []Waveform{WaveSine, WaveSquare, WaveSaw, WaveTriangle}
	buf := make([]float64, 4096)

	for _, w := range waveforms {
		osc := NewOscillator(44100)
		osc.Render(buf, w, 440)
		for i, s := range buf {
			if s < -1.0 || s > 1.0 {
				t.Fatalf("%s sample %d = %f outside [-1, 1]", w, i, s)
			}
		}
	}
}

func TestOscillator_PhaseWraps(t *testing.T) {
	osc := NewOscillator(44100)
	buf := make([]float64, 512)

	// Many blocks at a high frequency; phase must stay in [0, 2*pi).
	for i := 0; i < 200; i++ {
		osc.Render(buf, WaveSine, 9000)
		if osc.Phase < 0 || osc.Phase >= 2*math.Pi {
			t.Fatalf("phase %f not wrapped after block %d", osc.Phase, i)
		}
	}
}

func TestOscillator_NonPositiveFrequencyIsSilent(t *testing.T) {
	osc := NewOscillator(44100)
	buf := make([]float64, 64)
	for i := range buf {
		buf[i] = 0.5 // stale content must be overwritten
	}

	osc.Render(buf, WaveSaw, 0)
	for i, s := range buf {
		if s != 0 {
			t.Fatalf("freq=0 sample %d = %f, want silence", i, s)
		}
	}

	osc.Render(buf, WaveSine, -440)
	for i, s := range buf {
		if s != 0 {
			t.Fatalf("freq<0 sample %d = %f, want silence", i, s)
		}
	}
}

func TestOscillator_SineShape(t *testing.T) {
	osc := NewOscillator(44100)
	buf := make([]float64, 128)
	osc.Render(buf, WaveSine, 440)

	inc := 2 * math.Pi * 440 / 44100
	for i := range buf {
		want := math.Sin(float64(i) * inc)
		if math.Abs(buf[i]-want) > 1e-9 {
			t.Fatalf("sine sample %d = %f, want %f", i, buf[i], want)
		}
	}
}

func TestOscillator_SquareIsBipolar(t *testing.T) {
	osc := NewOscillator(44100)
	buf := make([]float64, 1024)
	osc.Render(buf, WaveSquare, 440)

	sawHigh, sawLow := false, false
	for _, s := range buf {
		switch s {
		case 1.0:
			sawHigh = true
		case -1.0:
			sawLow = true
		default:
			t.Fatalf("square sample %f is not +/-1", s)
		}
	}
	if !sawHigh || !sawLow {
		t.Error("square wave never alternated")
	}
}

func TestOscillator_PhaseContinuityAcrossBlocks(t *testing.T) {
	one := NewOscillator(44100)
	two := NewOscillator(44100)

	whole := make([]float64, 256)
	one.Render(whole, WaveSaw, 330)

	halves := make([]float64, 256)
	two.Render(halves[:128], WaveSaw, 330)
	two.Render(halves[128:], WaveSaw, 330)

	for i := range whole {
		if math.Abs(whole[i]-halves[i]) > 1e-9 {
			t.Fatalf("sample %d differs: whole=%f split=%f", i, whole[i], halves[i])
		}
	}
}
