package monitor

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/cwbudde/algo-guitar/guitar"
)

type fakeSource struct {
	ctl      *guitar.Control
	readings *guitar.Readings
}

func (f fakeSource) Control() *guitar.Control   { return f.ctl }
func (f fakeSource) Readings() *guitar.Readings { return f.readings }

func newSource() fakeSource {
	return fakeSource{ctl: guitar.NewControl(), readings: &guitar.Readings{}}
}

func TestStatusCountsNotes(t *testing.T) {
	var s Status
	sel := guitar.Selection{Note: guitar.NewNote(9, 2), BufferLength: 400, Amplitude: 1}
	s.Observe(guitar.NoteEvent{Kind: guitar.NoteStarted, StringIndex: 2, Selection: sel})
	s.Observe(guitar.NoteEvent{Kind: guitar.NoteAborted})
	s.Observe(guitar.NoteEvent{Kind: guitar.NoteFinished})
	snap := s.snapshot()
	if snap.started != 1 || snap.aborted != 1 || !snap.seen || snap.last.StringIndex != 2 {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
}

func TestViewShowsState(t *testing.T) {
	src := newSource()
	src.ctl.SetEffectEnabled(true)
	src.readings.Set(3, 0xFFFF)
	status := &Status{}
	status.Observe(guitar.NoteEvent{Kind: guitar.NoteStarted, Selection: guitar.Selection{Note: guitar.NewNote(9, 2), BufferLength: 400}})

	view := NewModel(src, status, func() uint64 { return 7 }, nil).View()
	for _, want := range []string{"A2", "len 400", "underrun 7", "adc3 65535"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q:\n%s", want, view)
		}
	}
}

func TestQuitKeyCallsOnQuit(t *testing.T) {
	called := false
	m := NewModel(newSource(), &Status{}, nil, func() { called = true })
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if !called || cmd == nil {
		t.Fatalf("quit key should call onQuit and return a command")
	}
	if next.(Model).View() != "" {
		t.Fatalf("quitting model should render nothing")
	}
}

func TestBarWidth(t *testing.T) {
	for _, v := range []uint16{0, 1000, 0xFFFF} {
		if got := len([]rune(bar(v, 10))); got != 10 {
			t.Fatalf("bar(%d) has %d cells", v, got)
		}
	}
}
