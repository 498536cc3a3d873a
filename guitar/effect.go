package guitar

// Clipper is the "electric" hard-clip effect: samples below Threshold are
// replaced by Value, everything else passes.
type Clipper struct {
	Threshold uint8
	Value     uint8
}

// NewClipper creates the clipper configured in params.
func NewClipper(p *Params) Clipper {
	return Clipper{Threshold: p.ClipThreshold, Value: p.ClipValue}
}

// Apply transforms one sample. Disabled, it is the identity.
func (c Clipper) Apply(s uint8, enabled bool) uint8 {
	if enabled && s < c.Threshold {
		return c.Value
	}
	return s
}
