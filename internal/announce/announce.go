// Package announce provides a rate-limited consumer of the live event
// stream: a subset of events is converted into short spoken-style
// notifications, at most one per interval, with a small bounded backlog.
package announce

import (
	"fmt"
	"sync"
	"time"

	"github.com/hivewatch/console/internal/event"
)

const (
	// DefaultMinInterval is the minimum gap between two emissions.
	DefaultMinInterval = 3 * time.Second
	// DefaultQueueSize bounds the pending backlog. Overflow discards the
	// incoming notification, not the queued ones: a backlog of stale alerts
	// must not dominate the output.
	DefaultQueueSize = 5
)

// EmitFunc receives one notification line.
type EmitFunc func(text string)

// Announcer throttles notifications to at most one per minInterval. At most
// one timer is pending at any time; teardown cancels it so nothing emits
// after the consumer is gone.
type Announcer struct {
	minInterval time.Duration
	queueSize   int
	emit        EmitFunc

	// injectable clock for deterministic tests
	now       func() time.Time
	afterFunc func(time.Duration, func()) *time.Timer

	mu       sync.Mutex
	lastEmit time.Time
	queue    []string
	timer    *time.Timer
	muted    bool
	closed   bool
}

// New creates an announcer delivering to emit. Zero minInterval/queueSize
// take the defaults.
func New(minInterval time.Duration, queueSize int, emit EmitFunc) *Announcer {
	if minInterval <= 0 {
		minInterval = DefaultMinInterval
	}
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	return &Announcer{
		minInterval: minInterval,
		queueSize:   queueSize,
		emit:        emit,
		now:         time.Now,
		afterFunc:   time.AfterFunc,
	}
}

// Notify turns ev into a notification if it is announceable: new sessions,
// escalation-raising interactions, and token deployments.
func (a *Announcer) Notify(ev event.Event) {
	if text, ok := Describe(ev); ok {
		a.Announce(text)
	}
}

// Announce emits text now if the interval has elapsed and nothing is queued;
// otherwise the text joins the backlog (or is dropped when the backlog is
// full) and a single timer drains it one item per interval.
func (a *Announcer) Announce(text string) {
	a.mu.Lock()
	if a.closed || a.muted {
		a.mu.Unlock()
		return
	}

	now := a.now()
	elapsed := now.Sub(a.lastEmit)
	if elapsed >= a.minInterval && len(a.queue) == 0 {
		a.lastEmit = now
		a.mu.Unlock()
		a.emit(text)
		return
	}

	if len(a.queue) < a.queueSize {
		a.queue = append(a.queue, text)
	}
	if a.timer == nil {
		delay := a.minInterval - elapsed
		if delay < 0 {
			delay = 0
		}
		a.timer = a.afterFunc(delay, a.drainOne)
	}
	a.mu.Unlock()
}

// drainOne fires on the throttle timer: emit the oldest pending item and
// reschedule while a backlog remains.
func (a *Announcer) drainOne() {
	a.mu.Lock()
	a.timer = nil
	if a.closed || a.muted || len(a.queue) == 0 {
		a.mu.Unlock()
		return
	}
	text := a.queue[0]
	a.queue = a.queue[1:]
	a.lastEmit = a.now()
	if len(a.queue) > 0 {
		a.timer = a.afterFunc(a.minInterval, a.drainOne)
	}
	a.mu.Unlock()

	a.emit(text)
}

// Mute is a hard cutover: the backlog is discarded and the pending timer
// cancelled immediately, no graceful drain.
func (a *Announcer) Mute() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.muted = true
	a.queue = nil
	a.stopTimerLocked()
}

// Unmute resumes announcements for events arriving from now on.
func (a *Announcer) Unmute() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.muted = false
}

// Muted reports the mute state.
func (a *Announcer) Muted() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.muted
}

// Close tears the announcer down; no emission happens afterwards.
// Idempotent.
func (a *Announcer) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closed = true
	a.queue = nil
	a.stopTimerLocked()
}

func (a *Announcer) stopTimerLocked() {
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
}

// Describe renders an event as a one-line notification. The bool reports
// whether the event is announceable at all.
func Describe(ev event.Event) (string, bool) {
	switch ev := ev.(type) {
	case event.SessionNew:
		name := ev.ClientInfo["name"]
		if name == "" {
			name = "unknown client"
		}
		return fmt.Sprintf("new session from %s", name), true
	case event.Interaction:
		if ev.EscalationDelta <= 0 {
			return "", false
		}
		return fmt.Sprintf("session %s escalated to %d via %s", shortID(ev.SessionID), ev.EscalationLevel, ev.ToolName), true
	case event.TokenDeployed:
		return fmt.Sprintf("%d honey token(s) deployed against %s", ev.Count, shortID(ev.SessionID)), true
	}
	return "", false
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
