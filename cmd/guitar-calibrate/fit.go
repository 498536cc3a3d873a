package main

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strings"

	"github.com/cwbudde/mayfly"

	"github.com/cwbudde/algo-guitar/guitar"
)

// cutpoints are the band boundaries of one string, in band table order:
// open, fret 4, fret 3, fret 2, fret 1.
type cutpoints [maxFret + 1]uint16

// classify maps a reading to a fret the way the band table does.
func (c cutpoints) classify(reading uint16) int {
	if reading > c[0] {
		return 0
	}
	for i := 1; i < len(c); i++ {
		if reading > c[i] {
			return maxFret + 1 - i
		}
	}
	return 0
}

// cutpointsOf reads the cut-points of a standard band table.
func cutpointsOf(sb guitar.StringBands) (cutpoints, bool) {
	var c cutpoints
	if len(sb.Bands) != len(c) {
		return c, false
	}
	for i, b := range sb.Bands {
		c[i] = b.Above
	}
	return c, true
}

// fromNormalized turns optimizer coordinates into descending cut-points.
func fromNormalized(pos []float64) cutpoints {
	v := append([]float64(nil), pos...)
	sort.Sort(sort.Reverse(sort.Float64Slice(v)))
	var c cutpoints
	for i := range c {
		c[i] = uint16(math.Round(clamp(v[i], 0, 1) * 65534))
	}
	// Keep cut-points strictly descending so the table validates.
	for i := 1; i < len(c); i++ {
		if c[i] >= c[i-1] {
			if c[i-1] == 0 {
				c[i] = 0
			} else {
				c[i] = c[i-1] - 1
			}
		}
	}
	return c
}

// score counts misclassified captures and adds a small penalty for
// readings that sit close to a boundary. Lower is better.
func score(c cutpoints, caps []capture) (float64, int) {
	if len(caps) == 0 {
		return 0, 0
	}
	errs := 0
	closeness := 0.0
	for _, k := range caps {
		if c.classify(k.Reading) != k.Fret {
			errs++
		}
		d := math.Inf(1)
		for _, b := range c {
			d = math.Min(d, math.Abs(float64(k.Reading)-float64(b)))
		}
		closeness += math.Exp(-d / 500)
	}
	return float64(errs) + 0.5*closeness/float64(len(caps)), errs
}

type fitResult struct {
	Cut       cutpoints
	Score     float64
	Errors    int
	Initial   int
	Evals     int
	Improved  bool
	NumLabels int
}

// fitString searches cut-points for one string starting from start. The
// result is never worse than start.
func fitString(start cutpoints, caps []capture, variant string, pop, iters int, seed int64) (fitResult, error) {
	s0, e0 := score(start, caps)
	res := fitResult{Cut: start, Score: s0, Errors: e0, Initial: e0, NumLabels: len(caps)}
	if len(caps) == 0 {
		return res, nil
	}

	cfg, err := newMayflyConfig(variant, pop, len(start), iters)
	if err != nil {
		return res, err
	}
	cfg.Rand = rand.New(rand.NewSource(seed))
	cfg.ObjectiveFunc = func(pos []float64) float64 {
		c := fromNormalized(pos)
		s, e := score(c, caps)
		res.Evals++
		if s < res.Score {
			res.Cut, res.Score, res.Errors, res.Improved = c, s, e, true
		}
		return s
	}
	if _, err := runMayfly(cfg); err != nil {
		return res, err
	}
	return res, nil
}

func newMayflyConfig(variant string, pop int, dims int, iters int) (*mayfly.Config, error) {
	var cfg *mayfly.Config
	switch strings.ToLower(variant) {
	case "ma":
		cfg = mayfly.NewDefaultConfig()
	case "desma":
		cfg = mayfly.NewDESMAConfig()
	case "olce":
		cfg = mayfly.NewOLCEConfig()
	default:
		return nil, fmt.Errorf("unsupported variant %q", variant)
	}
	cfg.ProblemSize = dims
	cfg.LowerBound = 0.0
	cfg.UpperBound = 1.0
	cfg.MaxIterations = iters
	cfg.NPop = pop
	cfg.NPopF = pop
	cfg.NC = 2 * pop
	cfg.NM = max(1, int(math.Round(0.05*float64(pop))))
	return cfg, nil
}

func runMayfly(cfg *mayfly.Config) (_ *mayfly.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("mayfly panic: %v", r)
		}
	}()
	return mayfly.Optimize(cfg)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
