// Package tui implements the terminal front panel
package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/oisee/apolysynth/pkg/synth"
)

// keyGate is how long a keyboard note sounds after its last key event.
// Terminals report no key-up, so held keys rely on auto-repeat to keep
// refreshing the deadline.
const keyGate = 350 * time.Millisecond

// adjustable parameters cycled through with left/right
var paramOrder = []string{
	"volume", "waveform", "filterCutoff", "attack", "decay",
	"sustain", "release", "detune", "envelope",
}

// Model is the main TUI model
type Model struct {
	Engine *synth.Engine

	// View state
	Width    int
	Height   int
	ShowHelp bool
	Octave   int

	// Parameter editor state: normalized values mirrored locally so the
	// cursor can step them.
	ParamIdx  int
	ParamVals map[string]float64

	// Keyboard-held notes and their release deadlines
	held map[int]time.Time

	Status    synth.Status
	MidiName  string
	StatusMsg string
}

// NewModel creates a TUI bound to a running engine
func NewModel(engine *synth.Engine) Model {
	vals := map[string]float64{
		"volume": 0.625, "waveform": 0.0, "filterCutoff": 0.1,
		"attack": 0.0, "decay": 0.05, "sustain": 0.7,
		"release": 0.07, "detune": 0.5, "envelope": 0.225,
	}
	return Model{
		Engine:    engine,
		Octave:    4,
		Width:     100,
		Height:    24,
		ParamVals: vals,
		held:      make(map[int]time.Time),
		Status:    engine.Status(),
	}
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		tickCmd(),
	)
}

// tickMsg is sent periodically for status refresh and note release
type tickMsg struct{}

func tickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(_ time.Time) tea.Msg {
		return tickMsg{}
	})
}

// midiStatusMsg updates the displayed controller name
type midiStatusMsg string

// MidiStatus builds a message for the connected-device line
func MidiStatus(name string) tea.Msg {
	return midiStatusMsg(name)
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		return m, nil

	case midiStatusMsg:
		m.MidiName = string(msg)
		return m, nil

	case tickMsg:
		now := time.Now()
		for note, deadline := range m.held {
			if now.After(deadline) {
				m.Engine.OnNoteOff(note)
				delete(m.held, note)
			}
		}
		m.Status = m.Engine.Status()
		return m, tickCmd()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		for note := range m.held {
			m.Engine.OnNoteOff(note)
		}
		return m, tea.Quit

	case "f1":
		m.ShowHelp = !m.ShowHelp

	// Octave
	case "*":
		if m.Octave < 8 {
			m.Octave++
		}
	case "/":
		if m.Octave > 0 {
			m.Octave--
		}

	// Parameter editor
	case "left":
		m.ParamIdx--
		if m.ParamIdx < 0 {
			m.ParamIdx = len(paramOrder) - 1
		}
	case "right":
		m.ParamIdx = (m.ParamIdx + 1) % len(paramOrder)
	case "up":
		m.adjustParam(0.05)
	case "down":
		m.adjustParam(-0.05)

	case ".":
		m.Engine.AllNotesOff()
		for note := range m.held {
			delete(m.held, note)
		}

	default:
		if note := keyToNote(msg.String(), m.Octave); note >= 0 {
			if _, sounding := m.held[note]; !sounding {
				m.Engine.OnNoteOn(note, 100)
			}
			m.held[note] = time.Now().Add(keyGate)
		}
	}

	return m, nil
}

func (m *Model) adjustParam(delta float64) {
	name := paramOrder[m.ParamIdx]
	v := m.ParamVals[name] + delta
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	m.ParamVals[name] = v
	if err := m.Engine.SetParameter(name, v); err != nil {
		m.StatusMsg = err.Error()
	}
}

// keyToNote converts a keyboard key to a MIDI note
func keyToNote(key string, octave int) int {
	// Piano-style keyboard layout:
	// Lower row: Z S X D C V G B H N J M (white + black keys)
	// Upper row: Q 2 W 3 E R 5 T 6 Y 7 U
	notes := map[string]int{
		// Lower octave
		"z": 0, "s": 1, "x": 2, "d": 3, "c": 4, "v": 5,
		"g": 6, "b": 7, "h": 8, "n": 9, "j": 10, "m": 11,
		// Upper octave
		"q": 12, "2": 13, "w": 14, "3": 15, "e": 16, "r": 17,
		"5": 18, "t": 19, "6": 20, "y": 21, "7": 22, "u": 23,
		"i": 24, "9": 25, "o": 26, "0": 27, "p": 28,
	}

	if n, ok := notes[key]; ok {
		note := (octave+1)*12 + n
		if note > 127 {
			return -1
		}
		return note
	}
	return -1
}

// View implements tea.Model
func (m Model) View() string {
	if m.ShowHelp {
		return m.helpView()
	}

	var b strings.Builder
	b.WriteString(m.headerView())
	b.WriteString("\n\n")
	b.WriteString(m.statusView())
	b.WriteString("\n\n")
	b.WriteString(m.paramView())
	b.WriteString("\n\n")
	b.WriteString(m.footerView())
	return b.String()
}

func (m Model) headerView() string {
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("14")).
		Render("APOLYSYNTH")

	midi := "no MIDI device"
	if m.MidiName != "" {
		midi = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10")).
			Render(m.MidiName)
	}

	return fmt.Sprintf("%s │ Oct:%d │ %s", title, m.Octave, midi)
}

func (m Model) statusView() string {
	s := m.Status
	envSpeed := "Med"
	if s.EnvScale < 1.3 {
		envSpeed = "Fast"
	} else if s.EnvScale > 2.9 {
		envSpeed = "Slow"
	}
	line := fmt.Sprintf(" Voices: %2d/%d │ Vol: %3.0f%% │ Wave: %-8s │ Filter: %5.0fHz │ Env: %-4s │ Detune: %+4.0f¢",
		s.Voices, s.MaxVoices, s.MasterVolume*100, s.Waveform,
		s.FilterCutoff, envSpeed, s.Detune)
	return lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Render(line)
}

func (m Model) paramView() string {
	var parts []string
	for i, name := range paramOrder {
		style := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
		if i == m.ParamIdx {
			style = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
		}
		parts = append(parts, style.Render(fmt.Sprintf("%s:%4.2f", name, m.ParamVals[name])))
	}
	return " " + strings.Join(parts, "  ")
}

func (m Model) footerView() string {
	keys := " [ZSXDCV..]Play [*/]Oct [←→]Param [↑↓]Adjust [.]Silence [F1]Help [Esc]Quit"
	if m.StatusMsg != "" {
		keys += "  " + m.StatusMsg
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(keys)
}

func (m Model) helpView() string {
	help := `
╔══════════════════════════════════════════════════════════════════╗
║                      APOLYSYNTH HELP                             ║
╠══════════════════════════════════════════════════════════════════╣
║ PLAYING (piano keyboard)                                         ║
║   Z S X D C V G B H N J M  - Lower octave (C to B)               ║
║   Q 2 W 3 E R 5 T 6 Y 7 U  - Upper octave                        ║
║   * /       Octave up/down                                       ║
║   .         Release all notes                                    ║
║                                                                  ║
║ PARAMETERS                                                       ║
║   ← →       Select parameter                                     ║
║   ↑ ↓       Adjust selected parameter                            ║
║                                                                  ║
║ MIDI                                                             ║
║   A connected controller plays notes directly; knobs CC70-CC77   ║
║   drive volume, waveform, filter, ADSR and detune.               ║
║                                                                  ║
║                              [F1] Close help                     ║
╚══════════════════════════════════════════════════════════════════╝
`
	return lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Render(help)
}
