// Package tui implements the latencytop dashboard: a terminal table of
// live flows and their most recent RTT estimate, fed by samples read off
// the broadcast socket. Modeled on Spellinfo-sstop's bubbletea Model —
// a root Model holding the latest snapshot, updated by a background
// channel and redrawn on every message, generalized here from a process
// table to a flow table and from a polling collector to a streamed
// socket.
package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mami-project/latencynode/internal/rtt"
)

// SampleMsg delivers one RTT sample read off the broadcast socket.
type SampleMsg rtt.Sample

// ConnErrMsg reports that the broadcast connection failed.
type ConnErrMsg struct{ Err error }

// Row is the latest known state of one flow, keyed by FlowIndex.
type Row struct {
	FlowIndex int
	Kind      string
	Method    string
	RTT       string
	Samples   int
}

// Model is the root bubbletea model for latencytop.
type Model struct {
	width, height int

	rows  map[int]Row
	order []int // flow indices in first-seen order

	filter    string
	filtering bool
	filterBox textinput.Model

	err      error
	sampleCh <-chan rtt.Sample
}

// New returns a Model that will read samples from ch.
func New(ch <-chan rtt.Sample) Model {
	ti := textinput.New()
	ti.Placeholder = "kind"
	ti.CharLimit = 16
	return Model{
		rows:      make(map[int]Row),
		filterBox: ti,
		sampleCh:  ch,
	}
}

// WaitForSample returns a tea.Cmd that waits for the next sample, or
// tea.Quit once ch is closed.
func WaitForSample(ch <-chan rtt.Sample) tea.Cmd {
	return func() tea.Msg {
		s, ok := <-ch
		if !ok {
			return tea.Quit()
		}
		return SampleMsg(s)
	}
}

func (m Model) Init() tea.Cmd {
	return WaitForSample(m.sampleCh)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case SampleMsg:
		m.applySample(rtt.Sample(msg))
		return m, WaitForSample(m.sampleCh)

	case ConnErrMsg:
		m.err = msg.Err
		return m, nil

	case tea.KeyMsg:
		if m.filtering {
			switch msg.String() {
			case "enter":
				m.filtering = false
				m.filter = m.filterBox.Value()
				return m, nil
			case "esc":
				m.filtering = false
				m.filter = ""
				m.filterBox.SetValue("")
				return m, nil
			}
			var cmd tea.Cmd
			m.filterBox, cmd = m.filterBox.Update(msg)
			return m, cmd
		}

		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "/":
			m.filtering = true
			m.filterBox.Focus()
			return m, textinput.Blink
		}
	}
	return m, nil
}

// VisibleRows returns the rows matching the current kind filter, in
// first-seen order. An empty filter matches everything.
func (m Model) VisibleRows() []Row {
	if m.filter == "" {
		rows := make([]Row, 0, len(m.order))
		for _, idx := range m.order {
			rows = append(rows, m.rows[idx])
		}
		return rows
	}

	needle := strings.ToLower(m.filter)
	rows := make([]Row, 0, len(m.order))
	for _, idx := range m.order {
		row := m.rows[idx]
		if strings.Contains(strings.ToLower(row.Kind), needle) {
			rows = append(rows, row)
		}
	}
	return rows
}

func (m *Model) applySample(s rtt.Sample) {
	row, seen := m.rows[s.FlowIndex]
	if !seen {
		m.order = append(m.order, s.FlowIndex)
	}
	row.FlowIndex = s.FlowIndex
	row.Kind = s.Kind
	row.Method = s.Method
	row.RTT = s.RTT.String()
	row.Samples++
	m.rows[s.FlowIndex] = row
}
