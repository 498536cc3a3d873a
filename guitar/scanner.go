package guitar

// Selector drives the multiplexer to one channel.
type Selector interface {
	Select(channel int)
}

// SelectorFunc adapts a function to Selector.
type SelectorFunc func(channel int)

func (f SelectorFunc) Select(channel int) { f(channel) }

// LineDriver sets a digital output line.
type LineDriver interface {
	SetLine(line int, high bool)
}

// BinarySelector drives a multiplexer whose select lines carry the channel
// number in binary, least significant bit on line 0.
type BinarySelector struct {
	Lines  LineDriver
	NLines int
}

// Select writes every select line for channel.
func (b BinarySelector) Select(channel int) {
	n := b.NLines
	if n <= 0 {
		n = 3
	}
	for bit := 0; bit < n; bit++ {
		b.Lines.SetLine(bit, channel&(1<<bit) != 0)
	}
}

// Scanner cycles the multiplexer over the strings while scanning is enabled.
// Tick is meant to run in the periodic timer context.
type Scanner struct {
	ctl      *Control
	selector Selector
	channels int
	counter  int
}

// NewScanner creates a scanner over channels strings.
func NewScanner(ctl *Control, selector Selector, channels int) *Scanner {
	if channels < 1 {
		channels = 1
	}
	return &Scanner{ctl: ctl, selector: selector, channels: channels}
}

// Tick selects the next channel. While scanning is disabled the last
// selected channel is held.
func (s *Scanner) Tick() {
	if !s.ctl.ScannerEnabled() {
		return
	}
	ch := s.counter
	if s.selector != nil {
		s.selector.Select(ch)
	}
	s.ctl.SetStringIndex(ch)
	s.counter++
	if s.counter >= s.channels {
		s.counter = 0
	}
}

// Next returns the channel the next enabled tick selects.
func (s *Scanner) Next() int { return s.counter }
