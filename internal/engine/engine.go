// Package engine turns the raw honeypot event stream into a consistent,
// queryable in-memory model that independent consumers can observe: a
// reducer-owned session map, a bounded interaction history, a publish/
// subscribe bus, and connection status.
package engine

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/hivewatch/console/internal/event"
	"github.com/hivewatch/console/internal/session"
	"github.com/hivewatch/console/internal/sse"
)

// StatusFunc observes connection state changes. Invoked from the transport
// goroutine.
type StatusFunc func(status sse.Status, message string)

// Config holds the engine's tunables. Zero values take the transport and
// history defaults.
type Config struct {
	Endpoint  string
	AuthToken string

	BaseDelay  time.Duration
	MaxDelay   time.Duration
	MaxRetries int

	HistoryCapacity int

	// HTTPClient used for the stream dial. Defaults to http.DefaultClient.
	HTTPClient *http.Client

	// OnStatus, when set, receives every connection state transition.
	OnStatus StatusFunc
}

// Engine owns one live connection at a time and is the sole writer of the
// session map and history ring. All decode/reduce/publish work happens on
// the transport goroutine, so consumers observe events in transport order.
type Engine struct {
	cfg  Config
	dial sse.DialFunc
	bus  *Bus
	hist *session.History

	mu    sync.Mutex
	state session.State
	stats *event.Stats
	conn  *sse.Conn
}

// New creates an engine. No connection is opened until Connect.
func New(cfg Config) *Engine {
	return &Engine{
		cfg:   cfg,
		dial:  sse.HTTPDialer(cfg.HTTPClient, cfg.AuthToken),
		bus:   NewBus(),
		hist:  session.NewHistory(cfg.HistoryCapacity),
		state: session.NewState(),
	}
}

func (e *Engine) connOptions() sse.Options {
	return sse.Options{
		BaseDelay:  e.cfg.BaseDelay,
		MaxDelay:   e.cfg.MaxDelay,
		MaxRetries: e.cfg.MaxRetries,
	}
}

// Connect opens the stream. A previous connection, if any, is fully torn
// down first so events are never delivered twice.
func (e *Engine) Connect(ctx context.Context) {
	conn := sse.NewConn(e.cfg.Endpoint, e.dial, e.connOptions(), sse.Handlers{
		OnFrame:  e.handleFrame,
		OnStatus: e.handleStatus,
	})

	e.mu.Lock()
	prev := e.conn
	e.conn = conn
	e.mu.Unlock()

	if prev != nil {
		prev.Close()
		<-prev.Done()
	}
	conn.Open(ctx)
}

// Reconnect is the explicit re-trigger for the terminal "retries exhausted"
// state: it supersedes the current connection with a fresh one.
func (e *Engine) Reconnect(ctx context.Context) {
	e.Connect(ctx)
}

// Close tears down the current connection. The session map and history stay
// readable.
func (e *Engine) Close() {
	e.mu.Lock()
	conn := e.conn
	e.mu.Unlock()
	if conn != nil {
		conn.Close()
		<-conn.Done()
	}
}

// Subscribe registers a consumer for every decoded event and returns its
// unsubscribe function.
func (e *Engine) Subscribe(fn Subscriber) func() {
	return e.bus.Subscribe(fn)
}

// Seed replaces the session map with the bulk snapshot fetched out-of-band
// at startup.
func (e *Engine) Seed(nodes []*session.Node) {
	e.apply(session.Init{Sessions: nodes})
}

// Dispatch applies an explicit action (Reset, Select). A Reset also clears
// the history ring.
func (e *Engine) Dispatch(a session.Action) {
	if _, ok := a.(session.Reset); ok {
		e.hist.Clear()
	}
	e.apply(a)
}

// Sessions returns a copied snapshot of the session map, sorted by
// escalation level (highest first) then recency. Iteration order matters
// only for presentation.
func (e *Engine) Sessions() []*session.Node {
	e.mu.Lock()
	nodes := make([]*session.Node, 0, len(e.state.Sessions))
	for _, n := range e.state.Sessions {
		nodes = append(nodes, n.Clone())
	}
	e.mu.Unlock()

	sort.Slice(nodes, func(i, j int) bool {
		if nodes[i].EscalationLevel != nodes[j].EscalationLevel {
			return nodes[i].EscalationLevel > nodes[j].EscalationLevel
		}
		if !nodes[i].LastSeen.Equal(nodes[j].LastSeen) {
			return nodes[i].LastSeen.After(nodes[j].LastSeen)
		}
		return nodes[i].SessionID < nodes[j].SessionID
	})
	return nodes
}

// Session returns a copy of one node.
func (e *Engine) Session(id string) (*session.Node, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	n, ok := e.state.Sessions[id]
	if !ok {
		return nil, false
	}
	return n.Clone(), true
}

// Selected returns the currently selected session id, "" when none.
func (e *Engine) Selected() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Selected
}

// History returns the retained interactions, newest first.
func (e *Engine) History() []event.Interaction {
	return e.hist.Snapshot()
}

// Stats returns the most recent aggregate snapshot, or nil before the first
// stats event.
func (e *Engine) Stats() *event.Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stats == nil {
		return nil
	}
	s := *e.stats
	return &s
}

// SetStats stores an aggregate snapshot fetched out-of-band (the REST
// endpoint), used before the first streamed stats event arrives.
func (e *Engine) SetStats(s *event.Stats) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stats == nil && s != nil {
		c := *s
		e.stats = &c
	}
}

// Status reports whether the stream is connected and the last error message,
// "" when healthy.
func (e *Engine) Status() (connected bool, lastErr string) {
	e.mu.Lock()
	conn := e.conn
	e.mu.Unlock()
	if conn == nil {
		return false, ""
	}
	status, msg := conn.Status()
	return status == sse.StatusOpen, msg
}

func (e *Engine) apply(a session.Action) {
	e.mu.Lock()
	e.state = session.Reduce(e.state, a)
	e.mu.Unlock()
}

// handleFrame is the single ingest path: decode, reduce, record, publish,
// in that order, so every consumer sees a session map already updated for
// the event it is handed.
func (e *Engine) handleFrame(f sse.Frame) {
	ev, ok := event.Decode(f.Event, f.Data)
	if !ok {
		return
	}

	switch ev := ev.(type) {
	case event.SessionNew:
		e.apply(session.SessionNew{
			ID:              ev.SessionID,
			ClientInfo:      ev.ClientInfo,
			EscalationLevel: ev.EscalationLevel,
			Timestamp:       ev.Timestamp,
		})
	case event.SessionUpdate:
		e.apply(session.SessionUpdate{
			ID:               ev.SessionID,
			EscalationLevel:  ev.EscalationLevel,
			InteractionCount: ev.InteractionCount,
		})
	case event.Interaction:
		e.apply(session.Interaction{
			ID:              ev.SessionID,
			EscalationLevel: ev.EscalationLevel,
			Timestamp:       ev.Timestamp,
		})
		e.hist.Push(ev)
	case event.Stats:
		e.mu.Lock()
		e.stats = &ev
		e.mu.Unlock()
	}

	e.bus.Publish(ev)
}

func (e *Engine) handleStatus(status sse.Status, msg string) {
	if e.cfg.OnStatus != nil {
		e.cfg.OnStatus(status, msg)
	}
}
