package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/cwbudde/algo-guitar/body"
	"github.com/cwbudde/algo-guitar/dsp"
	"github.com/cwbudde/algo-guitar/guitar"
	"github.com/cwbudde/algo-guitar/internal/wavio"
	"github.com/cwbudde/algo-guitar/preset"
)

func main() {
	presetPath := flag.String("preset", "", "Preset JSON file path (defaults when empty)")
	scriptPath := flag.String("script", "", "Pluck script path (single pluck from -note when empty)")
	note := flag.String("note", "A2", "Note for the single-pluck render")
	velocity := flag.Int("velocity", 127, "Velocity for the single-pluck render (1-127)")
	duration := flag.Float64("duration", 2.0, "Render length in seconds")
	seed := flag.Int64("seed", 1, "Excitation noise seed")
	effect := flag.Bool("effect", false, "Start with the clip effect enabled")
	fresh := flag.Bool("fresh-noise", false, "Redraw excitation noise for every note")
	irPath := flag.String("ir", "", "Body IR WAV path (overrides the preset)")
	synthBody := flag.Bool("body", false, "Apply a synthetic body IR when no IR file is given")
	lowpass := flag.Float64("lowpass", 0, "Output lowpass cutoff in Hz (0 = off)")
	gain := flag.Float64("gain", 0.8, "Output gain after conditioning")
	outRate := flag.Int("out-rate", 0, "Output sample rate (0 = synth rate)")
	output := flag.String("output", "guitar.wav", "Output WAV file path")
	flag.Parse()

	params := guitar.NewDefaultParams()
	if *presetPath != "" {
		var err error
		params, err = preset.LoadJSON(*presetPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading preset %q: %v\n", *presetPath, err)
			os.Exit(1)
		}
	}
	if *irPath != "" {
		params.BodyIRPath = *irPath
	}

	events, err := loadEvents(*scriptPath, *note, *velocity, params)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *effect {
		events = append([]guitar.ScriptEvent{{Frame: 0, Action: guitar.ActionEffectOn}}, events...)
	}

	frames := int(math.Round(*duration * float64(params.SampleRate)))
	fmt.Printf("Rendering %d events for %.2f seconds at %d Hz...\n", len(events), *duration, params.SampleRate)

	var opts []guitar.Option
	if *fresh {
		opts = append(opts, guitar.WithFreshExcitation())
	}
	raw, err := guitar.Render(params, events, frames, *seed, opts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Render error: %v\n", err)
		os.Exit(1)
	}

	cfg := dsp.DefaultConditionerConfig(params.SampleRate)
	cfg.LowpassCutoff = float32(*lowpass)
	cfg.Gain = float32(*gain)
	samples := dsp.NewConditioner(cfg).Process(nil, raw)

	ir, err := loadBodyIR(params, *synthBody)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Body IR error: %v\n", err)
		os.Exit(1)
	}
	if ir != nil {
		samples, err = body.ApplyInterleaved(samples, 2, ir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Body convolution error: %v\n", err)
			os.Exit(1)
		}
	}

	rate := params.SampleRate
	if *outRate > 0 && *outRate != rate {
		samples, err = wavio.ResampleInterleaved(samples, 2, rate, *outRate)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Resample error: %v\n", err)
			os.Exit(1)
		}
		rate = *outRate
	}
	clampUnit(samples)

	if err := wavio.WriteStereo(*output, samples, rate); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing WAV: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %s (%d frames at %d Hz)\n", *output, len(samples)/2, rate)
}

func loadEvents(scriptPath, note string, velocity int, params *guitar.Params) ([]guitar.ScriptEvent, error) {
	if scriptPath != "" {
		f, err := os.Open(scriptPath)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return parseScript(f, params)
	}
	line := fmt.Sprintf("0 key %s %d", note, velocity)
	return parseScript(strings.NewReader(line), params)
}

func loadBodyIR(params *guitar.Params, synth bool) ([]float32, error) {
	if params.BodyIRPath != "" {
		mono, sr, err := wavio.ReadMono(params.BodyIRPath)
		if err != nil {
			return nil, err
		}
		mono, err = wavio.ResampleIfNeeded(mono, sr, params.SampleRate)
		if err != nil {
			return nil, err
		}
		ir := make([]float32, len(mono))
		for i, v := range mono {
			ir[i] = float32(v)
		}
		return ir, nil
	}
	if !synth {
		return nil, nil
	}
	cfg := body.DefaultConfig()
	cfg.SampleRate = params.SampleRate
	return body.Generate(cfg)
}

func clampUnit(x []float32) {
	for i, v := range x {
		if v > 1 {
			x[i] = 1
		} else if v < -1 {
			x[i] = -1
		}
	}
}
