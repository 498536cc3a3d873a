package analysis

import "math"

// NoteReport summarises one rendered note.
type NoteReport struct {
	FundamentalHz float64 `json:"fundamental_hz"`
	PeakRMS       float64 `json:"peak_rms"`
	DecayDBPerS   float64 `json:"decay_db_per_s"`
}

// AnalyzeNote measures pitch, level and decay of a mono note. The pitch is
// searched between minHz and maxHz; fields that cannot be measured are NaN.
func AnalyzeNote(x []float64, sampleRate int, minHz, maxHz float64) NoteReport {
	r := NoteReport{FundamentalHz: math.NaN(), DecayDBPerS: math.NaN()}
	x = TrimLeadingSilence(x, 1e-6)
	if len(x) == 0 || sampleRate <= 0 {
		return r
	}
	centred := RemoveMean(x)

	if f, err := Fundamental(centred, sampleRate, minHz, maxHz); err == nil {
		r.FundamentalHz = f
	}

	const frame, hop = 1024, 512
	env := RMSEnvelope(centred, frame, hop)
	for _, v := range env {
		r.PeakRMS = math.Max(r.PeakRMS, v)
	}
	if slope := DecaySlopeDBPerS(env, float64(hop)/float64(sampleRate)); isFinite(slope) {
		r.DecayDBPerS = slope
	}
	return r
}
