package app

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hivewatch/console/internal/engine"
	"github.com/hivewatch/console/internal/event"
	"github.com/hivewatch/console/internal/session"
	"github.com/hivewatch/console/internal/sse"
)

func newTestModel() Model {
	eng := engine.New(engine.Config{Endpoint: "http://example.invalid/events"})
	m := New(eng, nil, NewBridge())
	m.width = 100
	m.height = 30
	m.layout()
	return m
}

func TestStatusLabel(t *testing.T) {
	tests := []struct {
		status sse.Status
		want   string
	}{
		{sse.StatusOpen, "connected"},
		{sse.StatusConnecting, "reconnecting"},
		{sse.StatusBackoff, "reconnecting"},
		{sse.StatusIdle, "reconnecting"},
		{sse.StatusClosed, "disconnected"},
	}
	for _, tt := range tests {
		if got := statusLabel(tt.status); got != tt.want {
			t.Errorf("statusLabel(%s) = %s, want %s", tt.status, got, tt.want)
		}
	}
}

func TestEventMsgRefreshesViews(t *testing.T) {
	m := newTestModel()
	m.engine.Seed([]*session.Node{
		{SessionID: "abc12345deadbeef", EscalationLevel: 2, InteractionCount: 4, LastSeen: time.Now()},
	})

	next, cmd := m.Update(EventMsg{Event: event.SessionUpdate{SessionID: "abc12345deadbeef"}})
	if cmd == nil {
		t.Fatal("expected a wait command to keep draining the bridge")
	}
	m = next.(Model)

	v := m.View()
	if !strings.Contains(v, "abc12345") {
		t.Error("view missing session row")
	}
	if !strings.Contains(v, "credential-theft") {
		t.Error("view missing escalation label")
	}
}

func TestStatusMsgUpdatesBar(t *testing.T) {
	m := newTestModel()

	next, _ := m.Update(StatusMsg{Status: sse.StatusBackoff, Detail: "dial tcp: refused"})
	m = next.(Model)
	if !strings.Contains(m.View(), "reconnecting") {
		t.Error("view missing reconnecting status")
	}

	next, _ = m.Update(StatusMsg{Status: sse.StatusOpen})
	m = next.(Model)
	if !strings.Contains(m.View(), "connected") {
		t.Error("view missing connected status")
	}
}

func TestSelectionFollowsKeys(t *testing.T) {
	m := newTestModel()
	now := time.Now()
	m.engine.Seed([]*session.Node{
		{SessionID: "hot", EscalationLevel: 3, LastSeen: now},
		{SessionID: "cold", EscalationLevel: 0, LastSeen: now},
	})
	m.refresh()

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	m = next.(Model)
	if m.grid.Selected != "hot" {
		t.Fatalf("selected = %q, want hot", m.grid.Selected)
	}
	if m.engine.Selected() != "hot" {
		t.Fatalf("engine selected = %q, want hot", m.engine.Selected())
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	m = next.(Model)
	if m.grid.Selected != "cold" {
		t.Fatalf("selected = %q after second j, want cold", m.grid.Selected)
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyEscape})
	m = next.(Model)
	if m.grid.Selected != "" || m.engine.Selected() != "" {
		t.Error("escape did not clear the selection")
	}
}

func TestResetClearsState(t *testing.T) {
	m := newTestModel()
	m.engine.Seed([]*session.Node{{SessionID: "abc", LastSeen: time.Now()}})
	m.refresh()

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'R'}})
	m = next.(Model)
	if got := len(m.engine.Sessions()); got != 0 {
		t.Fatalf("%d sessions after reset, want 0", got)
	}
	if !strings.Contains(m.View(), "No sessions") {
		t.Error("view missing empty-table placeholder")
	}
}

func TestBridgeDropsWhenFull(t *testing.T) {
	b := NewBridge()
	for i := 0; i < cap(b.ch)+10; i++ {
		b.PushEvent(event.SessionUpdate{SessionID: "x"})
	}
	if len(b.ch) != cap(b.ch) {
		t.Fatalf("bridge holds %d messages, want %d", len(b.ch), cap(b.ch))
	}
}
