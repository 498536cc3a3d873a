package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"os"

	"github.com/cwbudde/algo-guitar/analysis"
	"github.com/cwbudde/algo-guitar/dsp"
	"github.com/cwbudde/algo-guitar/guitar"
	"github.com/cwbudde/algo-guitar/internal/wavio"
	"github.com/cwbudde/algo-guitar/preset"
)

// bandRow describes one reachable note of the band tables.
type bandRow struct {
	String       int     `json:"string"`
	FretReading  uint16  `json:"fret_reading"`
	Note         string  `json:"note"`
	Pitch        int     `json:"pitch"`
	BufferLength int     `json:"buffer_length"`
	RealizedHz   float64 `json:"realized_hz"`
	CentsOff     float64 `json:"cents_off"`

	Measured *analysis.NoteReport `json:"measured,omitempty"`
}

func main() {
	presetPath := flag.String("preset", "", "Preset JSON file path (defaults when empty)")
	measure := flag.Bool("measure", false, "Render every note and measure pitch and decay")
	seconds := flag.Float64("seconds", 1.0, "Render length per note for -measure")
	seed := flag.Int64("seed", 1, "Excitation noise seed for -measure")
	jsonOut := flag.String("json", "", "Also write the report as JSON to this path")
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

	rows := bandRows(params)
	if *measure {
		for i := range rows {
			rep, err := measureRow(params, rows[i], *seconds, *seed)
			if err != nil {
				fmt.Fprintf(os.Stderr, "measure %s: %v\n", rows[i].Note, err)
				os.Exit(1)
			}
			rows[i].Measured = &rep
		}
	}

	fmt.Printf("%-3s %-8s %-5s %5s %6s %10s %8s", "str", "reading", "note", "midi", "len", "hz", "cents")
	if *measure {
		fmt.Printf(" %10s %10s", "meas_hz", "dB/s")
	}
	fmt.Println()
	for _, r := range rows {
		fmt.Printf("%-3d %-8d %-5s %5d %6d %10.2f %+8.1f", r.String, r.FretReading, r.Note, r.Pitch, r.BufferLength, r.RealizedHz, r.CentsOff)
		if r.Measured != nil {
			fmt.Printf(" %10.2f %10.1f", r.Measured.FundamentalHz, r.Measured.DecayDBPerS)
		}
		fmt.Println()
	}

	if *jsonOut != "" {
		b, err := json.MarshalIndent(rows, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "json: %v\n", err)
			os.Exit(1)
		}
		if err := os.WriteFile(*jsonOut, append(b, '\n'), 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "write %s: %v\n", *jsonOut, err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %s\n", *jsonOut)
	}
}

// bandRows lists one row per band of every string, top band first.
func bandRows(params *guitar.Params) []bandRow {
	resolver := guitar.NewResolver(params)
	var rows []bandRow
	for s, sb := range params.Strings {
		readings := []uint16{}
		for _, b := range sb.Bands {
			if b.Above < 0xFFFF {
				readings = append(readings, b.Above+1)
			}
		}
		readings = append(readings, 0)
		for _, reading := range readings {
			n := resolver.Note(s, reading)
			l := resolver.BufferLength(n)
			row := bandRow{
				String:       s,
				FretReading:  reading,
				Note:         n.String(),
				Pitch:        n.Pitch(),
				BufferLength: l,
				RealizedHz:   float64(params.SampleRate) / float64(l),
				CentsOff:     n.CentsOff(params.SampleRate, l),
			}
			rows = append(rows, row)
		}
	}
	return rows
}

func measureRow(params *guitar.Params, r bandRow, seconds float64, seed int64) (analysis.NoteReport, error) {
	frames := int(seconds * float64(params.SampleRate))
	events := []guitar.ScriptEvent{{
		Action:      guitar.ActionPluck,
		String:      r.String,
		FretReading: r.FretReading,
		Intensity:   uint16(math.Min(params.IntensityFullScale/params.IntensityGain, 0xFFFF)),
	}}
	raw, err := guitar.Render(params, events, frames, seed)
	if err != nil {
		return analysis.NoteReport{}, err
	}
	st := dsp.NewConditioner(dsp.DefaultConditionerConfig(params.SampleRate)).Process(nil, raw)
	mono := wavio.StereoToMono(st)
	return analysis.AnalyzeNote(mono, params.SampleRate, 0.5*r.RealizedHz, 2*r.RealizedHz), nil
}
