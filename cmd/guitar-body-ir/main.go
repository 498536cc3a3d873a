package main

import (
	"flag"
	"fmt"
	"math"
	"os"

	"github.com/cwbudde/algo-guitar/body"
	"github.com/cwbudde/algo-guitar/internal/wavio"
)

func main() {
	cfg := body.DefaultConfig()

	output := flag.String("output", "assets/ir/body_44k.wav", "Output WAV path")
	flag.IntVar(&cfg.SampleRate, "sample-rate", cfg.SampleRate, "Output sample rate")
	flag.Float64Var(&cfg.DurationS, "duration", cfg.DurationS, "IR length in seconds")
	flag.IntVar(&cfg.Modes, "modes", cfg.Modes, "Number of plate modes")
	flag.Int64Var(&cfg.Seed, "seed", cfg.Seed, "Random seed")
	flag.Float64Var(&cfg.F11, "f11", cfg.F11, "Main top resonance in Hz")
	flag.Float64Var(&cfg.MaxHz, "max-hz", cfg.MaxHz, "Highest mode frequency in Hz")
	flag.IntVar(&cfg.GridPoints, "grid", cfg.GridPoints, "Plate grid points per axis")
	flag.Float64Var(&cfg.PlateRatio, "plate-ratio", cfg.PlateRatio, "Plate length/width ratio")
	flag.Float64Var(&cfg.StiffnessRatio, "stiffness-ratio", cfg.StiffnessRatio, "Along/across grain stiffness ratio")
	flag.Float64Var(&cfg.Brightness, "brightness", cfg.Brightness, "Spectral brightness control (>0)")
	flag.Float64Var(&cfg.DirectLevel, "direct", cfg.DirectLevel, "Direct impulse level")
	flag.Float64Var(&cfg.LowDecayS, "low-decay", cfg.LowDecayS, "Low-frequency decay time (s)")
	flag.Float64Var(&cfg.HighDecayS, "high-decay", cfg.HighDecayS, "High-frequency decay time (s)")
	flag.Float64Var(&cfg.CrossoverHz, "crossover", cfg.CrossoverHz, "Decay crossover frequency in Hz")
	flag.Float64Var(&cfg.NormalizePeak, "normalize", cfg.NormalizePeak, "Peak normalization target")
	flag.Parse()

	ir, err := body.Generate(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "guitar-body-ir error: %v\n", err)
		os.Exit(1)
	}
	if err := wavio.WriteMono(*output, ir, cfg.SampleRate); err != nil {
		fmt.Fprintf(os.Stderr, "wav write error: %v\n", err)
		os.Exit(1)
	}

	peak, rms := stats(ir)
	fmt.Printf("Wrote %s\n", *output)
	fmt.Printf("SampleRate: %d Hz, Duration: %.3f s, Samples: %d\n", cfg.SampleRate, cfg.DurationS, len(ir))
	fmt.Printf("Peak: %.6f, RMS: %.6f\n", peak, rms)
}

func stats(x []float32) (peak float64, rms float64) {
	if len(x) == 0 {
		return 0, 0
	}
	var sum float64
	for _, v := range x {
		a := math.Abs(float64(v))
		if a > peak {
			peak = a
		}
		sum += float64(v) * float64(v)
	}
	return peak, math.Sqrt(sum / float64(len(x)))
}
