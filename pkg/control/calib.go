package control

// Calibration maps a raw ADC range onto [0, 1]. Real pots never reach
// the converter's full scale, so the endpoints are measured per channel.
type Calibration struct {
	Min int
	Max int
}

// Normalize converts a raw reading to [0, 1], clamped at the measured
// endpoints.
func (c Calibration) Normalize(raw int) float64 {
	if c.Max <= c.Min {
		return 0
	}
	v := float64(raw-c.Min) / float64(c.Max-c.Min)
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// DefaultCalibration covers a full-travel pot on a 15-bit converter
// with the usual bit of slack at both ends.
var DefaultCalibration = Calibration{Min: 15, Max: 26320}

// Calibrator captures per-channel min/max while the user sweeps each
// pot through its travel. Feed it raw readings, then take Result.
type Calibrator struct {
	min map[int]int
	max map[int]int
}

// NewCalibrator creates an empty calibrator
func NewCalibrator() *Calibrator {
	return &Calibrator{min: make(map[int]int), max: make(map[int]int)}
}

// Observe records one raw reading for a channel
func (c *Calibrator) Observe(channel, raw int) {
	if lo, ok := c.min[channel]; !ok || raw < lo {
		c.min[channel] = raw
	}
	if hi, ok := c.max[channel]; !ok || raw > hi {
		c.max[channel] = raw
	}
}

// Result returns the captured range for a channel. Channels that were
// never observed, or never moved, fall back to the default calibration.
func (c *Calibrator) Result(channel int) Calibration {
	lo, okLo := c.min[channel]
	hi, okHi := c.max[channel]
	if !okLo || !okHi || hi <= lo {
		return DefaultCalibration
	}
	return Calibration{Min: lo, Max: hi}
}
