package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/cwbudde/algo-guitar/guitar"
)

// capture is one labelled fret sensor reading.
type capture struct {
	String  int
	Reading uint16
	Fret    int // 0 = open
}

// maxFret is the highest fret the band tables distinguish.
const maxFret = 4

// readCaptures parses "string,reading,fret" rows. A header row is skipped.
func readCaptures(r io.Reader) ([]capture, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.FieldsPerRecord = 3
	cr.TrimLeadingSpace = true
	var out []capture
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if line == 1 && strings.EqualFold(rec[0], "string") {
			continue
		}
		s, err := strconv.Atoi(rec[0])
		if err != nil || s < 0 || s >= guitar.NumStrings {
			return nil, fmt.Errorf("row %d: invalid string %q", line, rec[0])
		}
		v, err := strconv.ParseUint(rec[1], 0, 16)
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid reading %q", line, rec[1])
		}
		f, err := strconv.Atoi(rec[2])
		if err != nil || f < 0 || f > maxFret {
			return nil, fmt.Errorf("row %d: invalid fret %q", line, rec[2])
		}
		out = append(out, capture{String: s, Reading: uint16(v), Fret: f})
	}
	return out, nil
}

// byString splits captures per scanner channel.
func byString(caps []capture) [guitar.NumStrings][]capture {
	var out [guitar.NumStrings][]capture
	for _, c := range caps {
		out[c.String] = append(out[c.String], c)
	}
	return out
}
