package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/oisee/apolysynth/pkg/audio"
	"github.com/oisee/apolysynth/pkg/control"
	"github.com/oisee/apolysynth/pkg/midiin"
	"github.com/oisee/apolysynth/pkg/synth"
	"github.com/oisee/apolysynth/pkg/tui"
)

func initLogger(debug bool, path string) (*slog.Logger, func()) {
	var out io.Writer = os.Stderr
	closeFn := func() {}
	if path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err == nil {
			out = f
			closeFn = func() { f.Close() }
		}
	}
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	h := slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})
	logger := slog.New(h)
	slog.SetDefault(logger)
	return logger, closeFn
}

func main() {
	sampleRate := flag.Int("samplerate", 44100, "Sample rate in Hz")
	blockFrames := flag.Int("block", 512, "Render block size in frames")
	voices := flag.Int("voices", synth.DefaultMaxVoices, "Maximum simultaneous voices")
	listPorts := flag.Bool("list", false, "List MIDI input ports and exit")
	midiPort := flag.String("midi", "", "MIDI input port name (default: auto-connect)")
	adcDir := flag.String("adc", "", "IIO ADC device directory for pot control (e.g. /sys/bus/iio/devices/iio:device0)")
	wavPath := flag.String("wav", "", "Render a demo chord to a WAV file and exit")
	wavDur := flag.Float64("dur", 4.0, "Duration in seconds for -wav")
	debug := flag.Bool("debug", false, "Enable debug logging")
	logPath := flag.String("log", "", "Log file (default: stderr)")
	flag.Parse()

	logger, closeLog := initLogger(*debug, *logPath)
	defer closeLog()

	params := synth.NewParams()
	engine := synth.NewEngine(*sampleRate, *blockFrames, *voices, params, logger)

	if *wavPath != "" {
		if err := bounceDemo(engine, *wavPath, *sampleRate, *blockFrames, *wavDur); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing WAV: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %.1fs to %s\n", *wavDur, *wavPath)
		return
	}

	// MIDI ingress with hot-plug watcher.
	source, err := midiin.New(engine, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing MIDI: %v\n", err)
		os.Exit(1)
	}
	defer source.Close()
	source.OnDisconnect = engine.AllNotesOff

	if *listPorts {
		ports, err := source.Ports()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error listing MIDI ports: %v\n", err)
			os.Exit(1)
		}
		for _, p := range ports {
			fmt.Println(p)
		}
		return
	}

	if *midiPort != "" {
		if err := source.Connect(*midiPort); err != nil {
			fmt.Fprintf(os.Stderr, "Error opening MIDI port: %v\n", err)
			os.Exit(1)
		}
	}

	// Optional pot control loop.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if *adcDir != "" {
		reader := &control.IIOReader{Dir: *adcDir}
		poller := control.NewPoller(reader, engine, control.DefaultChannels, control.DefaultInterval, logger)
		go poller.Run(ctx)
		logger.Info("pot control enabled", "dir", *adcDir)
	}

	// Audio egress.
	out, err := audio.NewRealtimeOutput(engine, *sampleRate, *blockFrames)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening audio device: %v\n", err)
		os.Exit(1)
	}
	engine.SetReady(true)

	p := tea.NewProgram(tui.NewModel(engine))

	// Watcher: hot-plug rescan and TUI device-name updates.
	watcherDone := make(chan struct{})
	go func() {
		defer close(watcherDone)
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		lastName := ""
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				source.Tick()
				name, ok := source.Connected()
				if !ok {
					name = ""
				}
				if name != lastName {
					lastName = name
					p.Send(tui.MidiStatus(name))
				}
			}
		}
	}()

	_, runErr := p.Run()

	// Teardown: stop control and MIDI producers, then the sink, so no
	// render call outlives the voice pool's writers.
	cancel()
	<-watcherDone
	source.Close()
	engine.SetReady(false)
	out.Close()

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", runErr)
		os.Exit(1)
	}
}

// bounceDemo renders a short C major chord through the full engine path
// into a WAV file, no audio hardware needed.
func bounceDemo(engine *synth.Engine, path string, sampleRate, blockFrames int, dur float64) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	engine.OnNoteOn(60, 100) // C-4
	engine.OnNoteOn(64, 96)  // E-4
	engine.OnNoteOn(67, 92)  // G-4

	totalFrames := int(dur * float64(sampleRate))
	w := audio.NewWAVWriter(f, sampleRate, 2)
	if err := w.WriteHeader(totalFrames * 4); err != nil {
		return err
	}

	// Hold the chord for the first half, release for the rest.
	buffer := make([]float32, blockFrames*2)
	released := false
	for written := 0; written < totalFrames; {
		if !released && written >= totalFrames/2 {
			engine.AllNotesOff()
			released = true
		}
		block := buffer
		if remaining := totalFrames - written; remaining < blockFrames {
			block = buffer[:remaining*2]
		}
		engine.RenderBlock(block)
		if err := w.WriteSamples(block); err != nil {
			return err
		}
		written += len(block) / 2
	}
	return nil
}
