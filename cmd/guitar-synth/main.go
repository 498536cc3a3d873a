package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"github.com/cwbudde/algo-guitar/dsp"
	"github.com/cwbudde/algo-guitar/guitar"
	"github.com/cwbudde/algo-guitar/internal/audioout"
	"github.com/cwbudde/algo-guitar/internal/link"
	"github.com/cwbudde/algo-guitar/internal/midiin"
	"github.com/cwbudde/algo-guitar/internal/monitor"
	"github.com/cwbudde/algo-guitar/internal/wavio"
	"github.com/cwbudde/algo-guitar/preset"
)

// logger is the process-wide structured logger.
var logger = slog.Default()

func initLogger(w io.Writer, debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	h := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:     level,
		AddSource: debug,
	})
	logger = slog.New(h)
	slog.SetDefault(logger)
}

func main() {
	presetPath := flag.String("preset", "", "Preset JSON file path (defaults when empty)")
	port := flag.String("port", "", "Serial device of the sensor MCU (e.g. /dev/ttyACM0)")
	baud := flag.Int("baud", 115200, "Serial baud rate")
	midiPort := flag.String("midi", "", "MIDI input name pattern; \"auto\" picks the only input")
	bufSamples := flag.Int("buffer", 2048, "Output ring size in samples")
	lowpass := flag.Float64("lowpass", 0, "Output lowpass cutoff in Hz (0 = off)")
	record := flag.String("record", "", "Write the session to this WAV file on exit")
	recordSeconds := flag.Int("record-seconds", 600, "Keep at most this many seconds of -record (0 = no cap)")
	fresh := flag.Bool("fresh-noise", false, "Redraw excitation noise for every note")
	showMonitor := flag.Bool("monitor", false, "Show a live terminal view (logs go to -log-file)")
	logFile := flag.String("log-file", "", "Write logs to this file instead of stderr")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	var logOut io.Writer = os.Stderr
	if *logFile != "" {
		f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "log file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		logOut = f
	} else if *showMonitor {
		logOut = io.Discard
	}
	initLogger(logOut, *debug)

	if err := run(options{
		presetPath: *presetPath,
		port:       *port,
		baud:       *baud,
		midiPort:   *midiPort,
		bufSamples: *bufSamples,
		lowpass:    *lowpass,
		record:     *record,
		recordSecs: *recordSeconds,
		fresh:      *fresh,
		monitor:    *showMonitor,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "guitar-synth: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	presetPath string
	port       string
	baud       int
	midiPort   string
	bufSamples int
	lowpass    float64
	record     string
	recordSecs int
	fresh      bool
	monitor    bool
}

func run(o options) error {
	if o.port == "" && o.midiPort == "" {
		return errors.New("nothing to play from: set -port and/or -midi")
	}

	params := guitar.NewDefaultParams()
	if o.presetPath != "" {
		var err error
		if params, err = preset.LoadJSON(o.presetPath); err != nil {
			return err
		}
	}

	condCfg := dsp.DefaultConditionerConfig(params.SampleRate)
	condCfg.LowpassCutoff = float32(o.lowpass)
	device := audioout.NewDevice(params.SampleRate, o.bufSamples, dsp.NewConditioner(condCfg))

	var out guitar.AudioOutput = device
	var rec *audioout.Recorder
	if o.record != "" {
		rec = audioout.NewRecorder(device, audioout.WithRecordLimit(2*params.SampleRate*o.recordSecs))
		out = rec
	}

	guitarOpts := []guitar.Option{guitar.WithLogger(logger)}
	if o.fresh {
		guitarOpts = append(guitarOpts, guitar.WithFreshExcitation())
	}

	var mcu *link.Link
	if o.port != "" {
		var err error
		if mcu, err = link.Open(o.port, o.baud, logger); err != nil {
			return err
		}
		defer mcu.Close()
		guitarOpts = append(guitarOpts, guitar.WithSelector(mcu))
	}

	g, err := guitar.NewGuitar(params, out, guitarOpts...)
	if err != nil {
		return err
	}
	status := &monitor.Status{}
	g.OnNote(func(ev guitar.NoteEvent) {
		status.Observe(ev)
		switch ev.Kind {
		case guitar.NoteStarted:
			logger.Info("note", "string", ev.StringIndex, "fret_reading", ev.FretReading,
				"note", ev.Selection.Note.String(), "len", ev.Selection.BufferLength, "amp", ev.Selection.Amplitude)
		case guitar.NoteAborted:
			logger.Debug("note aborted", "emitted", ev.Emitted)
		}
	})

	player, err := audioout.NewPlayer(params.SampleRate, device)
	if err != nil {
		return err
	}
	defer player.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if o.midiPort != "" {
		closeMIDI, err := openMIDI(o.midiPort, g)
		if err != nil {
			return err
		}
		defer closeMIDI()
	}

	var wg sync.WaitGroup
	if mcu != nil {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if err := mcu.Run(ctx, g); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("link stopped", "err", err)
				stop()
			}
		}()
		go func() {
			defer wg.Done()
			_ = g.RunScanner(ctx, params.ScanTick)
		}()
	}

	if o.monitor {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := monitor.Run(ctx, monitor.NewModel(g, status, device.Underruns, stop)); err != nil {
				logger.Error("monitor stopped", "err", err)
			}
		}()
	}

	logger.Info("guitar-synth running", "sample_rate", params.SampleRate, "port", o.port, "midi", o.midiPort)
	_ = g.Run(ctx)
	wg.Wait()
	logger.Info("stopped", "underruns", device.Underruns())

	if rec != nil {
		cond := dsp.NewConditioner(condCfg)
		if err := wavio.WriteStereo(o.record, cond.Process(nil, rec.Samples()), params.SampleRate); err != nil {
			return err
		}
		logger.Info("session recorded", "path", o.record, "frames", rec.Len()/2, "dropped_frames", rec.Dropped()/2)
	}
	return nil
}

func openMIDI(pattern string, g *guitar.Guitar) (func(), error) {
	drv, err := rtmididrv.New()
	if err != nil {
		return nil, err
	}
	ins, err := drv.Ins()
	if err != nil {
		drv.Close()
		return nil, err
	}
	if pattern == "auto" {
		pattern = ""
	}
	in, err := midiin.FindInput(ins, pattern)
	if err != nil {
		drv.Close()
		return nil, err
	}
	kb := midiin.NewKeyboard(g, logger)
	stopListen, err := kb.Listen(in)
	if err != nil {
		drv.Close()
		return nil, err
	}
	return func() {
		stopListen()
		drv.Close()
	}, nil
}
