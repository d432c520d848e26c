// Package grid renders the session table: one row per live attacker
// session, hottest first.
package grid

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/hivewatch/console/internal/session"
	"github.com/hivewatch/console/internal/theme"
)

// Model holds the session grid state.
type Model struct {
	Width    int
	Height   int
	Selected string
	sessions []*session.Node
}

// New creates a grid model.
func New() Model {
	return Model{}
}

// SetSessions replaces the rows. The caller passes them pre-sorted.
func (m *Model) SetSessions(nodes []*session.Node) {
	m.sessions = nodes
}

// Sessions returns the current rows in display order.
func (m Model) Sessions() []*session.Node {
	return m.sessions
}

// MoveSelection shifts the selected row by delta, clamped to the table.
// Returns the newly selected session id, or "" when the table is empty.
func (m *Model) MoveSelection(delta int) string {
	if len(m.sessions) == 0 {
		m.Selected = ""
		return ""
	}
	idx := 0
	for i, n := range m.sessions {
		if n.SessionID == m.Selected {
			idx = i + delta
			break
		}
	}
	if idx < 0 {
		idx = 0
	}
	if idx >= len(m.sessions) {
		idx = len(m.sessions) - 1
	}
	m.Selected = m.sessions[idx].SessionID
	return m.Selected
}

// View renders the session table.
func (m Model) View() string {
	width := m.Width
	if width < 40 {
		width = 40
	}

	header := theme.StyleHeader.Render("  Sessions")
	if len(m.sessions) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left,
			header,
			theme.StyleDimmed.Render("  No sessions"),
		)
	}

	colGlyph := 4
	colID := 10
	colClient := 20
	colLevel := 18
	colCount := 7
	colSeen := 10

	dimStyle := lipgloss.NewStyle().Foreground(theme.ColorDimmed)

	tableHeader := fmt.Sprintf("  %-*s %-*s %-*s %-*s %*s %*s",
		colGlyph, "",
		colID, "Session",
		colClient, "Client",
		colLevel, "Escalation",
		colCount, "Calls",
		colSeen, "Seen",
	)
	lines := []string{
		header,
		dimStyle.Render(tableHeader),
		dimStyle.Render("  " + strings.Repeat("─", min(width-4, colGlyph+colID+colClient+colLevel+colCount+colSeen+5))),
	}

	rows := m.sessions
	if m.Height > 0 && len(rows) > m.Height {
		rows = rows[:m.Height]
	}

	for _, n := range rows {
		level := session.Clamp(int(n.EscalationLevel))
		color := theme.EscalationColor(level)

		glyph := lipgloss.NewStyle().Foreground(color).Width(colGlyph).
			Render(theme.EscalationGlyph(level))
		idStr := lipgloss.NewStyle().Foreground(theme.ColorBright).Width(colID).
			Render(shortID(n.SessionID))
		clientStr := dimStyle.Width(colClient).Render(clientName(n))
		levelStr := lipgloss.NewStyle().Foreground(color).Width(colLevel).
			Render(level.String())
		countStr := lipgloss.NewStyle().Foreground(theme.ColorBright).
			Width(colCount).Align(lipgloss.Right).
			Render(fmt.Sprintf("%d", n.InteractionCount))
		seenStr := dimStyle.Width(colSeen).Align(lipgloss.Right).
			Render(relativeTime(n.LastSeen))

		line := fmt.Sprintf("  %s %s %s %s %s %s",
			glyph, idStr, clientStr, levelStr, countStr, seenStr)
		if n.SessionID == m.Selected {
			line = theme.StyleSelected.Render(line)
		}
		lines = append(lines, line)
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func clientName(n *session.Node) string {
	name := n.ClientInfo["name"]
	if name == "" {
		return "unknown"
	}
	if v := n.ClientInfo["version"]; v != "" {
		name += "/" + v
	}
	if len(name) > 19 {
		name = name[:18] + "…"
	}
	return name
}

// relativeTime formats how long ago a timestamp was, compactly.
func relativeTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	d := time.Since(t)
	switch {
	case d < time.Second:
		return "now"
	case d < time.Minute:
		return fmt.Sprintf("%ds ago", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	default:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	}
}
