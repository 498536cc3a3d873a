package guitar

import (
	"fmt"
	"sort"
)

// ScriptAction is what a scripted event does to the instrument.
type ScriptAction int

const (
	ActionPluck ScriptAction = iota
	ActionRelease
	ActionEffectOn
	ActionEffectOff
)

// ScriptEvent is one timed action of an offline render. Frame counts stereo
// frames from the start of the render.
type ScriptEvent struct {
	Frame       int
	Action      ScriptAction
	String      int
	FretReading uint16
	Intensity   uint16
}

// bufferOutput is an always-ready device collecting interleaved samples.
type bufferOutput struct {
	data []int16
}

func (b *bufferOutput) Poll() Readiness {
	if len(b.data) < cap(b.data) {
		return Ready
	}
	return NotReady
}

func (b *bufferOutput) SendSample(v int16) { b.data = append(b.data, v) }

// Render simulates the instrument against an always-ready device for frames
// stereo frames and returns the interleaved output. With the same seed and
// script the output is identical.
func Render(params *Params, events []ScriptEvent, frames int, seed int64, opts ...Option) ([]int16, error) {
	if frames < 0 {
		return nil, fmt.Errorf("frames must be >= 0")
	}
	out := &bufferOutput{data: make([]int16, 0, 2*frames)}
	opts = append([]Option{WithRandomSource(NewRandomSource(seed))}, opts...)
	g, err := NewGuitar(params, out, opts...)
	if err != nil {
		return nil, err
	}

	script := append([]ScriptEvent(nil), events...)
	sort.SliceStable(script, func(i, j int) bool { return script[i].Frame < script[j].Frame })

	next := 0
	for len(out.data) < 2*frames {
		frame := len(out.data) / 2
		for next < len(script) && script[next].Frame <= frame {
			g.apply(script[next])
			next++
		}
		g.Tick()
	}
	return out.data, nil
}

func (g *Guitar) apply(ev ScriptEvent) {
	switch ev.Action {
	case ActionPluck:
		g.InjectPluck(ev.String, ev.FretReading, ev.Intensity)
	case ActionRelease:
		g.ReleasePluck()
	case ActionEffectOn:
		g.SetMode(true)
	case ActionEffectOff:
		g.SetMode(false)
	}
}
