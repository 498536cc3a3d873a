package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/cwbudde/algo-guitar/guitar"
	"github.com/cwbudde/algo-guitar/preset"
)

func main() {
	capturesPath := flag.String("captures", "captures.csv", "Labelled captures CSV (string,reading,fret)")
	presetPath := flag.String("preset", "", "Starting preset JSON (defaults when empty)")
	output := flag.String("output", "calibrated.json", "Output preset JSON path")
	variant := flag.String("mayfly-variant", "desma", "Mayfly variant: ma|desma|olce")
	pop := flag.Int("mayfly-pop", 10, "Male and female population size")
	iters := flag.Int("iters", 200, "Mayfly iterations per string")
	seed := flag.Int64("seed", 1, "Random seed")
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
	if *pop < 2 {
		*pop = 2
	}

	f, err := os.Open(*capturesPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "captures: %v\n", err)
		os.Exit(1)
	}
	caps, err := readCaptures(f)
	f.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "captures: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Loaded %d captures from %s\n", len(caps), *capturesPath)

	groups := byString(caps)
	for s := range params.Strings {
		start, ok := cutpointsOf(params.Strings[s])
		if !ok {
			fmt.Printf("string %d: non-standard band table, skipped\n", s)
			continue
		}
		res, err := fitString(start, groups[s], *variant, *pop, *iters, *seed+int64(s)*7919)
		if err != nil {
			fmt.Fprintf(os.Stderr, "string %d: %v\n", s, err)
			os.Exit(1)
		}
		for i := range params.Strings[s].Bands {
			params.Strings[s].Bands[i].Above = res.Cut[i]
		}
		fmt.Printf("string %d: %d labels, errors %d -> %d, cut-points %v (%d evals)\n",
			s, res.NumLabels, res.Initial, res.Errors, res.Cut, res.Evals)
	}

	if err := params.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "calibrated params invalid: %v\n", err)
		os.Exit(1)
	}
	if err := preset.WriteJSON(*output, params); err != nil {
		fmt.Fprintf(os.Stderr, "write preset: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %s\n", *output)
}
