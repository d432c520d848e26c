// Package app is the Bubble Tea root model for the hivewatch console. It
// bridges the engine's callback world into Bubble Tea messages and composes
// the sub-views.
package app

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hivewatch/console/internal/announce"
	"github.com/hivewatch/console/internal/engine"
	"github.com/hivewatch/console/internal/event"
	"github.com/hivewatch/console/internal/session"
	"github.com/hivewatch/console/internal/sse"
	"github.com/hivewatch/console/internal/theme"
	"github.com/hivewatch/console/internal/views/feed"
	"github.com/hivewatch/console/internal/views/grid"
	"github.com/hivewatch/console/internal/views/statspane"
	"github.com/hivewatch/console/internal/views/statusbar"
)

// EventMsg carries one decoded stream event into the Bubble Tea loop.
type EventMsg struct {
	Event event.Event
}

// StatusMsg carries a connection state transition.
type StatusMsg struct {
	Status sse.Status
	Detail string
}

// AnnounceMsg carries one throttled announcement line.
type AnnounceMsg struct {
	Text string
}

// Bridge funnels engine callbacks into the Bubble Tea message loop. The
// engine's transport goroutine must never block on a slow UI, so pushes
// into a full bridge are dropped; the next refresh re-reads the engine's
// state anyway.
type Bridge struct {
	ch chan tea.Msg
}

func NewBridge() *Bridge {
	return &Bridge{ch: make(chan tea.Msg, 256)}
}

// PushEvent implements engine.Subscriber.
func (b *Bridge) PushEvent(ev event.Event) {
	b.push(EventMsg{Event: ev})
}

// PushStatus implements engine.StatusFunc.
func (b *Bridge) PushStatus(status sse.Status, message string) {
	b.push(StatusMsg{Status: status, Detail: message})
}

// PushAnnouncement implements announce.EmitFunc.
func (b *Bridge) PushAnnouncement(text string) {
	b.push(AnnounceMsg{Text: text})
}

func (b *Bridge) push(msg tea.Msg) {
	select {
	case b.ch <- msg:
	default:
	}
}

// Wait returns a command that delivers the next bridged message.
func (b *Bridge) Wait() tea.Cmd {
	return func() tea.Msg {
		return <-b.ch
	}
}

// Model is the root Bubble Tea model.
type Model struct {
	engine    *engine.Engine
	announcer *announce.Announcer
	bridge    *Bridge
	ctx       context.Context
	cancel    context.CancelFunc

	keys   KeyMap
	width  int
	height int

	statusBar statusbar.Model
	grid      grid.Model
	feed      feed.Model
	stats     statspane.Model
}

// New creates the root model. The engine should already be seeded; the
// connection is opened from Init.
func New(eng *engine.Engine, ann *announce.Announcer, bridge *Bridge) Model {
	ctx, cancel := context.WithCancel(context.Background())
	return Model{
		engine:    eng,
		announcer: ann,
		bridge:    bridge,
		ctx:       ctx,
		cancel:    cancel,
		keys:      DefaultKeyMap(),
		statusBar: statusbar.New(),
		grid:      grid.New(),
		feed:      feed.New(),
		stats:     statspane.New(),
	}
}

// Init opens the stream connection and starts draining the bridge.
func (m Model) Init() tea.Cmd {
	m.engine.Connect(m.ctx)
	return m.bridge.Wait()
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.statusBar.Width = msg.Width
		m.grid.Width = msg.Width
		m.feed.Width = msg.Width
		m.stats.Width = msg.Width
		m.layout()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case EventMsg:
		if m.announcer != nil {
			m.announcer.Notify(msg.Event)
		}
		m.refresh()
		return m, m.bridge.Wait()

	case StatusMsg:
		m.statusBar.Status = statusLabel(msg.Status)
		m.statusBar.StatusDetail = msg.Detail
		return m, m.bridge.Wait()

	case AnnounceMsg:
		m.statusBar.Announcement = msg.Text
		return m, m.bridge.Wait()
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.cancel()
		m.engine.Close()
		if m.announcer != nil {
			m.announcer.Close()
		}
		return m, tea.Quit

	case key.Matches(msg, m.keys.Down):
		if id := m.grid.MoveSelection(1); id != "" {
			m.engine.Dispatch(session.Select{ID: id})
		}
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if id := m.grid.MoveSelection(-1); id != "" {
			m.engine.Dispatch(session.Select{ID: id})
		}
		return m, nil

	case key.Matches(msg, m.keys.Escape):
		m.grid.Selected = ""
		m.engine.Dispatch(session.Select{ID: ""})
		return m, nil

	case key.Matches(msg, m.keys.Reset):
		m.engine.Dispatch(session.Reset{})
		m.statusBar.Announcement = ""
		m.refresh()
		return m, nil

	case key.Matches(msg, m.keys.Mute):
		if m.announcer == nil {
			return m, nil
		}
		if m.announcer.Muted() {
			m.announcer.Unmute()
		} else {
			m.announcer.Mute()
			m.statusBar.Announcement = ""
		}
		m.statusBar.Muted = m.announcer.Muted()
		return m, nil

	case key.Matches(msg, m.keys.Reconnect):
		m.engine.Reconnect(m.ctx)
		return m, nil
	}

	return m, nil
}

// refresh re-reads the engine's snapshots into the sub-views.
func (m *Model) refresh() {
	nodes := m.engine.Sessions()
	m.grid.SetSessions(nodes)
	m.statusBar.SetCounts(nodes)
	m.feed.SetItems(m.engine.History())
	m.stats.SetStats(m.engine.Stats())
}

// layout divides the vertical space between the grid and the feed.
func (m *Model) layout() {
	// Status bar takes 3 rows, stats pane is fixed, help line takes 1.
	body := m.height - 12
	if body < 8 {
		body = 8
	}
	m.grid.Height = body / 2
	m.feed.Height = body - body/2
}

// View renders the full TUI.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	sections := []string{
		m.statusBar.View(),
		m.grid.View(),
		m.feed.View(),
		m.stats.View(),
		theme.StyleDimmed.Render("  j/k:navigate  esc:clear  R:reset  m:mute  r:reconnect  q:quit"),
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// statusLabel maps transport status to the three user-facing states.
func statusLabel(s sse.Status) string {
	switch s {
	case sse.StatusOpen:
		return "connected"
	case sse.StatusClosed:
		return "disconnected"
	default:
		return "reconnecting"
	}
}
