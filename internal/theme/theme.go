// Package theme provides the Lip Gloss color palette and reusable styles
// for the hivewatch TUI. It is a leaf package with no internal imports
// to avoid import cycles.
package theme

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/hivewatch/console/internal/session"
)

// Escalation colors, one per level.
var (
	ColorObserving       = lipgloss.Color("#22c55e")
	ColorRecon           = lipgloss.Color("#eab308")
	ColorCredentialTheft = lipgloss.Color("#f97316")
	ColorLateralMovement = lipgloss.Color("#dc2626")
)

// Connection status colors.
var (
	ColorConnected    = lipgloss.Color("#22c55e")
	ColorReconnecting = lipgloss.Color("#d97706")
	ColorDisconnected = lipgloss.Color("#dc2626")
)

// UI chrome colors.
var (
	ColorBorder  = lipgloss.Color("#4b5563")
	ColorDimmed  = lipgloss.Color("#6b7280")
	ColorBright  = lipgloss.Color("#f9fafb")
	ColorAccent  = lipgloss.Color("#f59e0b")
	ColorToken   = lipgloss.Color("#67e8f9")
	ColorWarning = lipgloss.Color("#d97706")
)

// EscalationColor returns the color for an escalation level.
func EscalationColor(level session.Escalation) lipgloss.Color {
	switch level {
	case session.Observing:
		return ColorObserving
	case session.Recon:
		return ColorRecon
	case session.CredentialTheft:
		return ColorCredentialTheft
	case session.LateralMovement:
		return ColorLateralMovement
	default:
		return ColorDimmed
	}
}

// EscalationGlyph returns a glyph for an escalation level, one bar segment
// per level above observing.
func EscalationGlyph(level session.Escalation) string {
	switch level {
	case session.Observing:
		return "○"
	case session.Recon:
		return "▲"
	case session.CredentialTheft:
		return "▲▲"
	case session.LateralMovement:
		return "▲▲▲"
	default:
		return "·"
	}
}

// StatusColor returns the color for a connection status line.
func StatusColor(status string) lipgloss.Color {
	switch status {
	case "connected":
		return ColorConnected
	case "reconnecting":
		return ColorReconnecting
	case "disconnected":
		return ColorDisconnected
	default:
		return ColorDimmed
	}
}

// Reusable styles.
var (
	StyleBorder = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder)

	StyleHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorBright)

	StyleDimmed = lipgloss.NewStyle().
			Foreground(ColorDimmed)

	StyleSelected = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorBright).
			Background(lipgloss.Color("#1f2937"))

	StyleToken = lipgloss.NewStyle().
			Foreground(ColorToken)

	StyleAnnounce = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorAccent)
)
