package main

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/cwbudde/algo-guitar/guitar"
	"github.com/cwbudde/algo-guitar/internal/midiin"
)

// parseScript reads a pluck script. One event per line, '#' starts a comment:
//
//	<seconds> pluck <string> <fret_reading> <intensity>
//	<seconds> key <note> [velocity]
//	<seconds> release
//	<seconds> effect on|off
func parseScript(r io.Reader, params *guitar.Params) ([]guitar.ScriptEvent, error) {
	resolver := guitar.NewResolver(params)
	var events []guitar.ScriptEvent
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := sc.Text()
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = text[:i]
		}
		fields := strings.Fields(text)
		if len(fields) == 0 {
			continue
		}
		ev, err := parseEvent(fields, params, resolver)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		events = append(events, ev)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

func parseEvent(fields []string, params *guitar.Params, resolver *guitar.Resolver) (guitar.ScriptEvent, error) {
	var ev guitar.ScriptEvent
	if len(fields) < 2 {
		return ev, fmt.Errorf("expected <seconds> <action>")
	}
	at, err := strconv.ParseFloat(fields[0], 64)
	if err != nil || at < 0 || math.IsNaN(at) {
		return ev, fmt.Errorf("invalid time %q", fields[0])
	}
	ev.Frame = int(math.Round(at * float64(params.SampleRate)))
	args := fields[2:]

	switch fields[1] {
	case "pluck":
		if len(args) != 3 {
			return ev, fmt.Errorf("pluck needs <string> <fret_reading> <intensity>")
		}
		str, err := strconv.Atoi(args[0])
		if err != nil {
			return ev, fmt.Errorf("invalid string %q", args[0])
		}
		reading, err := strconv.ParseUint(args[1], 0, 16)
		if err != nil {
			return ev, fmt.Errorf("invalid fret reading %q", args[1])
		}
		intensity, err := strconv.ParseUint(args[2], 0, 16)
		if err != nil {
			return ev, fmt.Errorf("invalid intensity %q", args[2])
		}
		ev.Action = guitar.ActionPluck
		ev.String, ev.FretReading, ev.Intensity = str, uint16(reading), uint16(intensity)
	case "key":
		if len(args) < 1 || len(args) > 2 {
			return ev, fmt.Errorf("key needs <note> [velocity]")
		}
		n, err := guitar.ParseNote(args[0])
		if err != nil {
			return ev, err
		}
		vel := uint64(127)
		if len(args) == 2 {
			if vel, err = strconv.ParseUint(args[1], 10, 7); err != nil {
				return ev, fmt.Errorf("invalid velocity %q", args[1])
			}
		}
		str, reading, ok := resolver.Locate(n.Pitch())
		if !ok {
			return ev, fmt.Errorf("note %s is not playable", n)
		}
		ev.Action = guitar.ActionPluck
		ev.String, ev.FretReading = str, reading
		ev.Intensity = midiin.Intensity(params, uint8(vel))
	case "release":
		ev.Action = guitar.ActionRelease
	case "effect":
		if len(args) != 1 {
			return ev, fmt.Errorf("effect needs on|off")
		}
		switch args[0] {
		case "on":
			ev.Action = guitar.ActionEffectOn
		case "off":
			ev.Action = guitar.ActionEffectOff
		default:
			return ev, fmt.Errorf("effect needs on|off, got %q", args[0])
		}
	default:
		return ev, fmt.Errorf("unknown action %q", fields[1])
	}
	return ev, nil
}
