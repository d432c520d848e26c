// Package statspane renders the aggregate hive statistics panel.
package statspane

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/hivewatch/console/internal/event"
	"github.com/hivewatch/console/internal/theme"
)

const topTools = 5

// Model holds the stats pane state.
type Model struct {
	Width int
	stats *event.Stats
}

// New creates a stats pane model.
func New() Model {
	return Model{}
}

// SetStats replaces the displayed snapshot. Nil clears the pane.
func (m *Model) SetStats(s *event.Stats) {
	m.stats = s
}

// View renders the stats pane.
func (m Model) View() string {
	header := theme.StyleHeader.Render("  Hive")
	if m.stats == nil {
		return lipgloss.JoinVertical(lipgloss.Left,
			header,
			theme.StyleDimmed.Render("  No stats yet"),
		)
	}

	s := m.stats
	dimStyle := lipgloss.NewStyle().Foreground(theme.ColorDimmed)
	brightStyle := lipgloss.NewStyle().Foreground(theme.ColorBright)

	lines := []string{
		header,
		fmt.Sprintf("  %s %s",
			dimStyle.Render("sessions"),
			brightStyle.Render(fmt.Sprintf("%d (%d active)", s.TotalSessions, s.ActiveSessions))),
		fmt.Sprintf("  %s %s",
			dimStyle.Render("interactions"),
			brightStyle.Render(fmt.Sprintf("%d", s.TotalInteractions))),
		fmt.Sprintf("  %s %s",
			dimStyle.Render("tokens"),
			theme.StyleToken.Render(fmt.Sprintf("%d", s.TotalTokens))),
		fmt.Sprintf("  %s %s",
			dimStyle.Render("avg escalation"),
			brightStyle.Render(fmt.Sprintf("%.2f", s.AvgEscalation))),
	}

	if len(s.ToolUsage) > 0 {
		lines = append(lines, "", dimStyle.Render("  top tools"))
		for _, tc := range topToolCounts(s.ToolUsage) {
			lines = append(lines, fmt.Sprintf("  %s %s",
				brightStyle.Render(fmt.Sprintf("%-16s", tc.name)),
				dimStyle.Render(fmt.Sprintf("%d", tc.count))))
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

type toolCount struct {
	name  string
	count int
}

// topToolCounts returns the most used tools, count descending then name.
func topToolCounts(usage map[string]int) []toolCount {
	out := make([]toolCount, 0, len(usage))
	for name, count := range usage {
		out = append(out, toolCount{name, count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}
		return strings.Compare(out[i].name, out[j].name) < 0
	})
	if len(out) > topTools {
		out = out[:topTools]
	}
	return out
}
