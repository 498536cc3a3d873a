// Package monitor is a read-only terminal view of a running instrument.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/cwbudde/algo-guitar/guitar"
)

// Source is what the monitor reads on every refresh. Both accessors return
// atomically updated state and are safe to poll from the UI goroutine.
type Source interface {
	Control() *guitar.Control
	Readings() *guitar.Readings
}

// Status accumulates note events. Observe is called from the scheduler
// goroutine; the UI takes snapshots.
type Status struct {
	mu      sync.Mutex
	last    guitar.NoteEvent
	seen    bool
	started int
	aborted int
}

// Observe records one note event.
func (s *Status) Observe(ev guitar.NoteEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch ev.Kind {
	case guitar.NoteStarted:
		s.started++
		s.last, s.seen = ev, true
	case guitar.NoteAborted:
		s.aborted++
	}
}

type snapshot struct {
	last    guitar.NoteEvent
	seen    bool
	started int
	aborted int
}

func (s *Status) snapshot() snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshot{last: s.last, seen: s.seen, started: s.started, aborted: s.aborted}
}

const refresh = 50 * time.Millisecond

type tickMsg time.Time

// Model is the bubbletea model.
type Model struct {
	src       Source
	status    *Status
	underruns func() uint64
	onQuit    func()
	quitting  bool

	header lipgloss.Style
	dim    lipgloss.Style
	on     lipgloss.Style
}

// NewModel creates a monitor. underruns and onQuit may be nil.
func NewModel(src Source, status *Status, underruns func() uint64, onQuit func()) Model {
	return Model{
		src:       src,
		status:    status,
		underruns: underruns,
		onQuit:    onQuit,
		header:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205")),
		dim:       lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		on:        lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
	}
}

func tick() tea.Cmd {
	return tea.Tick(refresh, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) Init() tea.Cmd { return tick() }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			if m.onQuit != nil {
				m.onQuit()
			}
			return m, tea.Quit
		}
	case tickMsg:
		return m, tick()
	}
	return m, nil
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	ctl := m.src.Control()
	snap := m.status.snapshot()

	var b strings.Builder
	b.WriteString(m.header.Render("laser guitar"))
	b.WriteString("\n\n")

	note := m.dim.Render("none yet")
	if snap.seen {
		sel := snap.last.Selection
		note = fmt.Sprintf("%s  string %d  len %d  amp %.2f", sel.Note, snap.last.StringIndex, sel.BufferLength, sel.Amplitude)
	}
	fmt.Fprintf(&b, "note     %s\n", note)
	fmt.Fprintf(&b, "plucks   %d (%d cut short)\n", snap.started, snap.aborted)
	fmt.Fprintf(&b, "effect   %s\n", m.flag(ctl.EffectEnabled()))
	fmt.Fprintf(&b, "scanner  %s  channel %d\n", m.flag(ctl.ScannerEnabled()), ctl.StringIndex())
	if m.underruns != nil {
		fmt.Fprintf(&b, "underrun %d frames\n", m.underruns())
	}
	b.WriteString("\n")

	r := m.src.Readings()
	for ch := 0; ch < guitar.NumAnalogChannels; ch++ {
		v := r.Reading(ch)
		fmt.Fprintf(&b, "adc%d %5d %s\n", ch, v, bar(v, 32))
	}
	b.WriteString("\n")
	b.WriteString(m.dim.Render("q: quit"))
	b.WriteString("\n")
	return b.String()
}

func (m Model) flag(on bool) string {
	if on {
		return m.on.Render("on")
	}
	return m.dim.Render("off")
}

// bar draws v/65535 as a fixed-width gauge.
func bar(v uint16, width int) string {
	n := int(v) * width / 0xFFFF
	return strings.Repeat("█", n) + strings.Repeat("·", width-n)
}

// Run shows the monitor on the terminal until the user quits or ctx is done.
func Run(ctx context.Context, m Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
