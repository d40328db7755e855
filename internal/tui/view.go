package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	styleHeader   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("62"))
	styleRowAlt   = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	styleFooter   = lipgloss.NewStyle().Faint(true)
	styleErr      = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	columnWidths  = []int{10, 6, 12, 10, 8}
	columnHeaders = []string{"FLOW", "KIND", "METHOD", "RTT", "SAMPLES"}
)

func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	var b strings.Builder
	b.WriteString(styleHeader.Render(padRow(columnHeaders, columnWidths, m.width)))
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString(styleErr.Render(fmt.Sprintf("connection error: %s", m.err)))
		b.WriteString("\n")
	}

	if m.filtering {
		b.WriteString(fmt.Sprintf("filter (kind): %s\n", m.filterBox.View()))
	} else if m.filter != "" {
		b.WriteString(styleFooter.Render(fmt.Sprintf("filter: %s (press / to change, esc to clear)", m.filter)))
		b.WriteString("\n")
	}

	for _, row := range m.VisibleRows() {
		cells := []string{
			fmt.Sprintf("%d", row.FlowIndex),
			row.Kind,
			row.Method,
			row.RTT,
			fmt.Sprintf("%d", row.Samples),
		}
		b.WriteString(styleRowAlt.Render(padRow(cells, columnWidths, m.width)))
		b.WriteString("\n")
	}

	b.WriteString(styleFooter.Render("q quit"))
	return b.String()
}

func padRow(cells []string, widths []int, totalWidth int) string {
	var b strings.Builder
	for i, c := range cells {
		w := 12
		if i < len(widths) {
			w = widths[i]
		}
		b.WriteString(fmt.Sprintf("%-*s", w, truncate(c, w)))
	}
	if b.Len() < totalWidth {
		b.WriteString(strings.Repeat(" ", totalWidth-b.Len()))
	}
	return b.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}
