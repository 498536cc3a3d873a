package guitar

// CaptureFlags are the pending capture-channel bits delivered with one edge
// interrupt.
type CaptureFlags uint8

const (
	// CaptureFalling is the beam-restored capture channel.
	CaptureFalling CaptureFlags = 1 << iota
	// CaptureRising is the beam-broken capture channel.
	CaptureRising
)

// EdgeKind classifies a beam edge.
type EdgeKind int

const (
	BreakStart EdgeKind = iota
	BreakEnd
)

func (k EdgeKind) String() string {
	switch k {
	case BreakStart:
		return "break-start"
	case BreakEnd:
		return "break-end"
	default:
		return "unknown"
	}
}

// PollEdge classifies the flags of one interrupt. When both channels are
// pending the restore is handled first, so the break is what remains.
func PollEdge(flags CaptureFlags) (EdgeKind, bool) {
	switch {
	case flags&CaptureRising != 0:
		return BreakStart, true
	case flags&CaptureFalling != 0:
		return BreakEnd, true
	default:
		return 0, false
	}
}

// PluckSource turns beam edges into pluck requests. It never blocks and is
// meant to run in the edge interrupt context.
type PluckSource struct {
	ctl              *Control
	inputs           AnalogInputs
	intensityChannel int
}

// NewPluckSource creates a pluck source reading intensity from inputs.
func NewPluckSource(ctl *Control, inputs AnalogInputs, intensityChannel int) *PluckSource {
	return &PluckSource{ctl: ctl, inputs: inputs, intensityChannel: intensityChannel}
}

// OnCapture handles one capture interrupt.
func (p *PluckSource) OnCapture(flags CaptureFlags) {
	if kind, ok := PollEdge(flags); ok {
		p.HandleEdge(kind)
	}
}

// HandleEdge freezes the scanner and raises a pluck on BreakStart, and
// resumes scanning on BreakEnd.
func (p *PluckSource) HandleEdge(kind EdgeKind) {
	switch kind {
	case BreakStart:
		p.ctl.SetScannerEnabled(false)
		p.ctl.Raise(p.ctl.StringIndex(), p.inputs.Reading(p.intensityChannel))
	case BreakEnd:
		p.ctl.SetScannerEnabled(true)
	}
}

// ModeSwitch mirrors the effect toggle input into the control block.
type ModeSwitch struct {
	ctl *Control
}

// NewModeSwitch creates a switch that writes the effect flag of ctl.
func NewModeSwitch(ctl *Control) *ModeSwitch {
	return &ModeSwitch{ctl: ctl}
}

// OnLevel is called on every switch edge with the current input level.
func (m *ModeSwitch) OnLevel(high bool) {
	m.ctl.SetEffectEnabled(high)
}
