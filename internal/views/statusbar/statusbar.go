package statusbar

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/hivewatch/console/internal/session"
	"github.com/hivewatch/console/internal/theme"
)

// Model holds the status bar state.
type Model struct {
	Status       string // connected, reconnecting, disconnected
	StatusDetail string
	Counts       [4]int // sessions per escalation level
	Announcement string
	Muted        bool
	Width        int
}

// New creates a status bar model.
func New() Model {
	return Model{Status: "reconnecting"}
}

// SetCounts recomputes the per-level session counts.
func (m *Model) SetCounts(nodes []*session.Node) {
	m.Counts = [4]int{}
	for _, n := range nodes {
		m.Counts[session.Clamp(int(n.EscalationLevel))]++
	}
}

// View renders the status bar.
func (m Model) View() string {
	width := m.Width
	if width < 40 {
		width = 40
	}

	glyph := "●"
	if m.Status != "connected" {
		glyph = "○"
	}
	connStr := lipgloss.NewStyle().Foreground(theme.StatusColor(m.Status)).
		Render(fmt.Sprintf("%s %s", glyph, m.Status))
	if m.StatusDetail != "" {
		connStr += " " + theme.StyleDimmed.Render(m.StatusDetail)
	}

	var countParts []string
	for lvl := 3; lvl >= 0; lvl-- {
		style := lipgloss.NewStyle().Foreground(theme.EscalationColor(session.Escalation(lvl)))
		countParts = append(countParts, style.Render(
			fmt.Sprintf("%d %s", m.Counts[lvl], session.Escalation(lvl))))
	}

	sep := lipgloss.NewStyle().Foreground(theme.ColorBorder).Render(" | ")
	content := connStr + sep + strings.Join(countParts, "  ")

	if m.Muted {
		content += sep + theme.StyleDimmed.Render("muted")
	} else if m.Announcement != "" {
		content += sep + theme.StyleAnnounce.Render(m.Announcement)
	}

	return lipgloss.NewStyle().
		Width(width).
		Padding(0, 1).
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(theme.ColorBorder).
		Render(content)
}
