package control

import (
	"context"
	"log/slog"
	"time"
)

// DefaultInterval is how often the pots are sampled
const DefaultInterval = 50 * time.Millisecond

// ParamSetter accepts a normalized control value for a named parameter.
// The synthesis engine satisfies this.
type ParamSetter interface {
	SetParameter(name string, value float64) error
}

// Channel binds one ADC input to a named parameter
type Channel struct {
	Input int
	Param string
	Cal   Calibration
}

// DefaultChannels is the four-pot front panel layout
var DefaultChannels = []Channel{
	{Input: 0, Param: "volume", Cal: Calibration{Min: 3, Max: 26335}},
	{Input: 1, Param: "waveform", Cal: Calibration{Min: 4, Max: 26333}},
	{Input: 2, Param: "filterCutoff", Cal: Calibration{Min: 15, Max: 26323}},
	{Input: 3, Param: "envelope", Cal: Calibration{Min: 15, Max: 26320}},
}

// Poller reads every configured channel on a fixed interval and pushes
// normalized values into the parameter setter. It never touches the
// render path directly; the setter's atomic store keeps the audio
// thread free of this goroutine.
type Poller struct {
	reader   AnalogReader
	setter   ParamSetter
	channels []Channel
	interval time.Duration
	log      *slog.Logger
}

// NewPoller creates a poller over the given channels
func NewPoller(r AnalogReader, s ParamSetter, channels []Channel, interval time.Duration, log *slog.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if log == nil {
		log = slog.Default()
	}
	return &Poller{reader: r, setter: s, channels: channels, interval: interval, log: log}
}

// Run polls until the context is canceled. Read errors are logged and
// the offending sample skipped; a dead pot must not take the synth down.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.poll()
		}
	}
}

func (p *Poller) poll() {
	for _, ch := range p.channels {
		raw, err := p.reader.Read(ch.Input)
		if err != nil {
			p.log.Warn("pot read failed", "input", ch.Input, "err", err)
			continue
		}
		if err := p.setter.SetParameter(ch.Param, ch.Cal.Normalize(raw)); err != nil {
			p.log.Warn("parameter rejected", "param", ch.Param, "err", err)
		}
	}
}
