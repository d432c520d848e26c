package sse

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"
)

// Status names the connection lifecycle states.
type Status string

const (
	StatusIdle       Status = "idle"
	StatusConnecting Status = "connecting"
	StatusOpen       Status = "open"
	StatusBackoff    Status = "backoff"
	StatusClosed     Status = "closed"
)

const (
	// DefaultBaseDelay is the first reconnect delay after a transport error.
	DefaultBaseDelay = 1 * time.Second
	// DefaultMaxDelay caps the doubling backoff.
	DefaultMaxDelay = 30 * time.Second
	// DefaultMaxRetries bounds consecutive failed attempts before the
	// connection goes terminal.
	DefaultMaxRetries = 8
)

// reconnectEvent is the control frame name the server sends when it is about
// to close the stream after its maximum lifetime. It triggers an immediate
// re-dial and does not count against the retry budget.
const reconnectEvent = "reconnect"

// Options configures a Conn. Zero fields take the defaults above.
type Options struct {
	BaseDelay  time.Duration
	MaxDelay   time.Duration
	MaxRetries int
}

func (o Options) withDefaults() Options {
	if o.BaseDelay <= 0 {
		o.BaseDelay = DefaultBaseDelay
	}
	if o.MaxDelay <= 0 {
		o.MaxDelay = DefaultMaxDelay
	}
	if o.MaxRetries <= 0 {
		o.MaxRetries = DefaultMaxRetries
	}
	return o
}

// Handlers are the connection's upward-facing callbacks. Both are invoked
// from the connection's single goroutine, so frame order is dial order.
type Handlers struct {
	// OnFrame receives every non-control frame, in arrival order.
	OnFrame func(Frame)
	// OnStatus is invoked on every state transition with a human-readable
	// message ("" outside error states). Optional.
	OnStatus func(Status, string)
}

// Conn owns one live event-stream connection and its reconnect policy.
// Transport errors are retried with deterministic doubling backoff,
// min(maxDelay, baseDelay * 2^k) for attempt k; after MaxRetries consecutive
// failures the connection parks in StatusClosed with a persistent error
// message and issues no further attempts. Faults surface only through
// OnStatus, never as panics or errors out of the read path.
type Conn struct {
	endpoint string
	opts     Options
	handlers Handlers
	dial     DialFunc

	// wait sleeps for the backoff delay; returns false when interrupted by
	// teardown. Replaced in tests to observe scheduled delays.
	wait func(ctx context.Context, d time.Duration) bool

	mu          sync.Mutex
	status      Status
	lastErr     string
	lastEventID string
	opened      bool
	cancel      context.CancelFunc
	reader      FrameReader // current transport handle, nil between dials
	done        chan struct{}
	closeOnce   sync.Once
}

// NewConn creates a connection in StatusIdle. Nothing happens until Open.
func NewConn(endpoint string, dial DialFunc, opts Options, handlers Handlers) *Conn {
	return &Conn{
		endpoint: endpoint,
		opts:     opts.withDefaults(),
		handlers: handlers,
		dial:     dial,
		wait:     sleepCtx,
		status:   StatusIdle,
		done:     make(chan struct{}),
	}
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// Open starts the connection loop. Calling Open more than once is a no-op;
// a superseded Conn is closed and replaced, never reopened.
func (c *Conn) Open(ctx context.Context) {
	c.mu.Lock()
	if c.opened || c.status == StatusClosed {
		c.mu.Unlock()
		return
	}
	c.opened = true
	ctx, c.cancel = context.WithCancel(ctx)
	c.mu.Unlock()

	go c.run(ctx)
}

// Close tears the connection down: any in-flight dial or backoff wait is
// cancelled and the transport handle released. Idempotent.
func (c *Conn) Close() {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		cancel := c.cancel
		reader := c.reader
		opened := c.opened
		if c.status != StatusClosed {
			c.setStatusLocked(StatusClosed, "")
		}
		c.mu.Unlock()

		if cancel != nil {
			cancel()
		}
		if reader != nil {
			// Unblocks a read in flight; the loop then observes the
			// cancelled context and exits.
			reader.Close()
		}
		if !opened {
			close(c.done)
		}
	})
}

// Done is closed once the connection loop has fully stopped.
func (c *Conn) Done() <-chan struct{} {
	return c.done
}

// Status reports the current state and, in error states, a human-readable
// message.
func (c *Conn) Status() (Status, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status, c.lastErr
}

// LastEventID returns the most recent frame id, usable as a resumption hint.
func (c *Conn) LastEventID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastEventID
}

func (c *Conn) run(ctx context.Context) {
	defer close(c.done)

	retries := 0
	for {
		if !c.transition(StatusConnecting, "") {
			return
		}

		reader, err := c.dial(ctx, c.endpoint, c.LastEventID())
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if !c.backoff(ctx, &retries, err) {
				return
			}
			continue
		}

		c.mu.Lock()
		c.reader = reader
		c.mu.Unlock()

		if !c.transition(StatusOpen, "") {
			reader.Close()
			return
		}
		retries = 0

		rollover, err := c.consume(reader)

		c.mu.Lock()
		c.reader = nil
		c.mu.Unlock()
		reader.Close()

		if ctx.Err() != nil {
			return
		}
		if rollover {
			// Planned stream rotation, not a fault.
			retries = 0
			continue
		}
		if !c.backoff(ctx, &retries, err) {
			return
		}
	}
}

// consume reads frames until the stream ends. Returns rollover=true when the
// server asked for an immediate reconnect.
func (c *Conn) consume(reader FrameReader) (rollover bool, err error) {
	for {
		frame, err := reader.Next()
		if err != nil {
			if err == io.EOF {
				err = fmt.Errorf("stream closed by server")
			}
			return false, err
		}

		if frame.ID != "" {
			c.mu.Lock()
			c.lastEventID = frame.ID
			c.mu.Unlock()
		}
		if frame.Event == reconnectEvent {
			return true, nil
		}
		if c.handlers.OnFrame != nil {
			c.handlers.OnFrame(frame)
		}
	}
}

// backoff schedules the next attempt. Returns false when the retry budget is
// exhausted or the wait was interrupted by teardown.
func (c *Conn) backoff(ctx context.Context, retries *int, cause error) bool {
	if *retries >= c.opts.MaxRetries {
		c.transition(StatusClosed, fmt.Sprintf("disconnected, retries exhausted: %v", cause))
		return false
	}

	delay := c.opts.BaseDelay << *retries
	if delay > c.opts.MaxDelay || delay <= 0 {
		delay = c.opts.MaxDelay
	}
	*retries++

	if !c.transition(StatusBackoff, cause.Error()) {
		return false
	}
	return c.wait(ctx, delay)
}

// transition moves to the given state unless the connection was closed
// underneath us; returns false in that case so the loop can exit.
func (c *Conn) transition(s Status, msg string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status == StatusClosed {
		return false
	}
	c.setStatusLocked(s, msg)
	return true
}

func (c *Conn) setStatusLocked(s Status, msg string) {
	c.status = s
	c.lastErr = msg
	if c.handlers.OnStatus != nil {
		// Callback runs without the lock held.
		fn := c.handlers.OnStatus
		c.mu.Unlock()
		fn(s, msg)
		c.mu.Lock()
	}
}
