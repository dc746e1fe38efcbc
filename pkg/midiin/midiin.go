// Package midiin connects a MIDI controller to the synthesis engine
package midiin

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

// Handler receives decoded MIDI events. Calls arrive on the driver's
// listener goroutine.
type Handler interface {
	NoteOn(note, velocity int)
	NoteOff(note int)
	ControlChange(controller, value int)
}

// Ports matching these patterns are preferred when auto-connecting.
var preferredNamePatterns = []string{"MPK mini 3", "MPK mini"}

// Ports matching these are never auto-connected (virtual/system ports).
var excludedNamePatterns = []string{"Midi Through", "Through Port", "Dummy"}

// Source owns the MIDI driver and one input connection. Tick drives a
// hot-plug watcher: it reconnects when the device appears and
// panic-releases through OnDisconnect when it goes away.
type Source struct {
	handler      Handler
	log          *slog.Logger
	OnDisconnect func()

	mu        sync.Mutex
	drv       *rtmididrv.Driver
	in        drivers.In
	stop      func()
	connected bool
	name      string
}

// New initializes the MIDI driver. No port is opened yet; call Connect
// or let Tick auto-connect.
func New(h Handler, log *slog.Logger) (*Source, error) {
	if log == nil {
		log = slog.Default()
	}
	drv, err := rtmididrv.New()
	if err != nil {
		return nil, fmt.Errorf("midi driver init: %w", err)
	}
	return &Source{handler: h, log: log, drv: drv}, nil
}

// Ports lists the connectable MIDI input port names
func (s *Source) Ports() ([]string, error) {
	ins, err := s.drv.Ins()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(ins))
	for _, in := range ins {
		if excluded(in.String()) {
			continue
		}
		names = append(names, in.String())
	}
	return names, nil
}

// Connected returns the open port name, if any
func (s *Source) Connected() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.name, s.connected
}

// Connect opens the named input port and starts listening
func (s *Source) Connect(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connectLocked(name)
}

func (s *Source) connectLocked(name string) error {
	ins, err := s.drv.Ins()
	if err != nil {
		return err
	}
	var found drivers.In
	for _, in := range ins {
		if in.String() == name {
			found = in
			break
		}
	}
	if found == nil {
		return fmt.Errorf("midi input %q not found", name)
	}
	if err := found.Open(); err != nil {
		return fmt.Errorf("open midi port %q: %w", name, err)
	}

	stop, err := midi.ListenTo(found, func(msg midi.Message, timestampms int32) {
		Decode(msg, s.handler)
	}, midi.HandleError(func(listenErr error) {
		s.log.Warn("midi listener error, device likely disconnected", "device", name, "err", listenErr)
		// Must not call stop() from the listener goroutine itself.
		go s.dropConnection(name)
	}))
	if err != nil {
		_ = found.Close()
		return fmt.Errorf("listen on %q: %w", name, err)
	}

	s.in = found
	s.stop = stop
	s.connected = true
	s.name = name
	s.log.Info("midi input connected", "device", name)
	return nil
}

func (s *Source) dropConnection(name string) {
	s.mu.Lock()
	wasConnected := s.connected && s.name == name
	if wasConnected {
		s.closeLocked()
	}
	s.mu.Unlock()
	if wasConnected && s.OnDisconnect != nil {
		s.OnDisconnect()
	}
}

// Tick rescans ports: verifies a live connection still exists, or
// attempts to auto-connect to a preferred device. Call it periodically
// from the owner's ticker.
func (s *Source) Tick() {
	s.mu.Lock()

	ins, err := s.drv.Ins()
	if err != nil {
		s.mu.Unlock()
		s.log.Error("midi port scan failed", "err", err)
		return
	}
	names := make([]string, 0, len(ins))
	for _, in := range ins {
		if !excluded(in.String()) {
			names = append(names, in.String())
		}
	}

	if s.connected {
		still := false
		for _, n := range names {
			if n == s.name {
				still = true
				break
			}
		}
		if still {
			s.mu.Unlock()
			return
		}
		s.log.Warn("midi device disappeared", "device", s.name)
		s.closeLocked()
		s.mu.Unlock()
		if s.OnDisconnect != nil {
			s.OnDisconnect()
		}
		return
	}

	cand, ok := pickPreferred(names)
	if !ok {
		s.mu.Unlock()
		return
	}
	if err := s.connectLocked(cand); err != nil {
		s.log.Error("midi auto-connect failed", "device", cand, "err", err)
	}
	s.mu.Unlock()
}

// Close stops listening and releases the driver
func (s *Source) Close() error {
	s.mu.Lock()
	s.closeLocked()
	drv := s.drv
	s.drv = nil
	s.mu.Unlock()
	if drv != nil {
		return drv.Close()
	}
	return nil
}

func (s *Source) closeLocked() {
	if s.stop != nil {
		s.stop()
		s.stop = nil
	}
	if s.in != nil {
		_ = s.in.Close()
		s.in = nil
	}
	s.connected = false
	s.name = ""
}

func excluded(name string) bool {
	for _, pat := range excludedNamePatterns {
		if containsCI(name, pat) {
			return true
		}
	}
	return false
}

func pickPreferred(names []string) (string, bool) {
	for _, pat := range preferredNamePatterns {
		for _, n := range names {
			if containsCI(n, pat) {
				return n, true
			}
		}
	}
	if len(names) == 1 {
		return names[0], true
	}
	return "", false
}

func containsCI(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}
