package guitar

import "testing"

type lineRecorder map[int]bool

func (l lineRecorder) SetLine(line int, high bool) { l[line] = high }

func TestScannerCyclesChannels(t *testing.T) {
	ctl := NewControl()
	var selected []int
	s := NewScanner(ctl, SelectorFunc(func(ch int) { selected = append(selected, ch) }), NumStrings)

	for i := 0; i < 8; i++ {
		s.Tick()
		if ctl.StringIndex() != selected[len(selected)-1] {
			t.Fatalf("string index %d does not follow selection %d", ctl.StringIndex(), selected[len(selected)-1])
		}
	}
	want := []int{0, 1, 2, 3, 4, 5, 0, 1}
	for i := range want {
		if selected[i] != want[i] {
			t.Fatalf("selected = %v, want %v", selected, want)
		}
	}
}

func TestScannerHoldsWhileDisabled(t *testing.T) {
	ctl := NewControl()
	calls := 0
	s := NewScanner(ctl, SelectorFunc(func(int) { calls++ }), NumStrings)
	s.Tick()
	s.Tick()

	ctl.SetScannerEnabled(false)
	for i := 0; i < 10; i++ {
		s.Tick()
	}
	if calls != 2 || ctl.StringIndex() != 1 {
		t.Fatalf("disabled scanner moved: calls %d index %d", calls, ctl.StringIndex())
	}

	ctl.SetScannerEnabled(true)
	s.Tick()
	if ctl.StringIndex() != 2 {
		t.Fatalf("scanner resumed at %d, want 2", ctl.StringIndex())
	}
}

func TestBinarySelector(t *testing.T) {
	lines := lineRecorder{}
	sel := BinarySelector{Lines: lines}
	tests := []struct {
		ch   int
		want [3]bool
	}{
		{0, [3]bool{false, false, false}},
		{1, [3]bool{true, false, false}},
		{2, [3]bool{false, true, false}},
		{3, [3]bool{true, true, false}},
		{4, [3]bool{false, false, true}},
		{5, [3]bool{true, false, true}},
	}
	for _, tt := range tests {
		sel.Select(tt.ch)
		for bit, w := range tt.want {
			if lines[bit] != w {
				t.Fatalf("channel %d line %d = %v, want %v", tt.ch, bit, lines[bit], w)
			}
		}
	}
}
