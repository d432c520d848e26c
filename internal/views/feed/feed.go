// Package feed renders the live interaction feed, newest first.
package feed

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/hivewatch/console/internal/event"
	"github.com/hivewatch/console/internal/session"
	"github.com/hivewatch/console/internal/theme"
)

// Model holds the feed state.
type Model struct {
	Width  int
	Height int
	items  []event.Interaction
}

// New creates a feed model.
func New() Model {
	return Model{}
}

// SetItems replaces the feed contents, newest first.
func (m *Model) SetItems(items []event.Interaction) {
	m.items = items
}

// View renders the feed.
func (m Model) View() string {
	header := theme.StyleHeader.Render("  Feed")
	if len(m.items) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left,
			header,
			theme.StyleDimmed.Render("  Waiting for interactions"),
		)
	}

	items := m.items
	if m.Height > 0 && len(items) > m.Height {
		items = items[:m.Height]
	}

	dimStyle := lipgloss.NewStyle().Foreground(theme.ColorDimmed)
	lines := []string{header}
	for _, it := range items {
		level := session.Clamp(it.EscalationLevel)
		toolStyle := lipgloss.NewStyle().Foreground(theme.EscalationColor(level))

		line := fmt.Sprintf("  %s %s %s",
			dimStyle.Render(clock(it.Timestamp)),
			dimStyle.Render(shortID(it.SessionID)),
			toolStyle.Render(it.ToolName),
		)
		if it.EscalationDelta > 0 {
			line += " " + toolStyle.Render(fmt.Sprintf("+%d", it.EscalationDelta))
		}
		if it.Injection != "" {
			line += " " + theme.StyleToken.Render("⚑")
		}
		if it.PromptSummary != "" {
			line += " " + dimStyle.Render(truncate(it.PromptSummary, m.Width-30))
		}
		lines = append(lines, line)
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// clock renders just the time-of-day portion of a timestamp.
func clock(t time.Time) string {
	if t.IsZero() {
		return "--:--:--"
	}
	return t.Local().Format("15:04:05")
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncate(s string, limit int) string {
	if limit < 10 {
		limit = 10
	}
	if len(s) <= limit {
		return s
	}
	return s[:limit-1] + "…"
}
