package mock

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"
)

const (
	// logSize bounds the replay log; reconnecting clients that fall further
	// behind than this resync over REST instead.
	logSize = 200

	clientBuffer = 64
	pingInterval = 15 * time.Second
)

// Record is one event as it sits in the replay log: a monotonically
// increasing id plus the already-encoded frame body.
type Record struct {
	ID    uint64
	Event string
	Data  []byte
}

// Hub fans generated events out to connected stream clients and keeps the
// bounded replay log that backs Last-Event-ID resumption. Clients that stop
// draining their buffer are disconnected rather than allowed to stall the
// generator.
type Hub struct {
	// StreamMaxAge, when positive, bounds how long a single stream
	// connection lives before the hub asks the client to roll over.
	StreamMaxAge time.Duration

	mu      sync.Mutex
	nextID  uint64
	logBuf  []Record
	clients map[chan Record]bool
	closed  bool
}

func NewHub() *Hub {
	return &Hub{
		nextID:  1,
		clients: make(map[chan Record]bool),
	}
}

// Publish encodes the payload, appends it to the replay log and hands it to
// every connected client. Slow clients are dropped.
func (h *Hub) Publish(eventName string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("hub: encode %s: %v", eventName, err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}

	rec := Record{ID: h.nextID, Event: eventName, Data: data}
	h.nextID++
	h.logBuf = append(h.logBuf, rec)
	if len(h.logBuf) > logSize {
		h.logBuf = h.logBuf[len(h.logBuf)-logSize:]
	}

	for ch := range h.clients {
		select {
		case ch <- rec:
		default:
			delete(h.clients, ch)
			close(ch)
			log.Printf("hub: dropped slow stream client")
		}
	}
}

// Since returns the records published after the given id, oldest first.
func (h *Hub) Since(id uint64) []Record {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i, rec := range h.logBuf {
		if rec.ID > id {
			out := make([]Record, len(h.logBuf)-i)
			copy(out, h.logBuf[i:])
			return out
		}
	}
	return nil
}

// LastID returns the id of the most recently published record, 0 when the
// log is empty.
func (h *Hub) LastID() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.nextID - 1
}

func (h *Hub) subscribe() chan Record {
	ch := make(chan Record, clientBuffer)
	h.mu.Lock()
	if h.closed {
		close(ch)
	} else {
		h.clients[ch] = true
	}
	h.mu.Unlock()
	return ch
}

func (h *Hub) unsubscribe(ch chan Record) {
	h.mu.Lock()
	if _, ok := h.clients[ch]; ok {
		delete(h.clients, ch)
		close(ch)
	}
	h.mu.Unlock()
}

// ClientCount reports the number of connected stream clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client and stops accepting new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for ch := range h.clients {
		delete(h.clients, ch)
		close(ch)
	}
}

// ServeHTTP implements the event stream endpoint. Replay starts after the
// client's Last-Event-ID header when one is present.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	var lastID uint64
	if raw := r.Header.Get("Last-Event-ID"); raw != "" {
		if v, err := strconv.ParseUint(raw, 10, 64); err == nil {
			lastID = v
		}
	}

	// Subscribe before replaying so a record published mid-replay cannot
	// fall between the log read and the live channel. Records that arrive
	// on the channel but were already replayed are filtered by id.
	ch := h.subscribe()
	defer h.unsubscribe(ch)

	replayed := lastID
	for _, rec := range h.Since(lastID) {
		if err := writeRecord(w, rec); err != nil {
			return
		}
		replayed = rec.ID
	}
	flusher.Flush()

	ping := time.NewTicker(pingInterval)
	defer ping.Stop()

	var rollover <-chan time.Time
	if h.StreamMaxAge > 0 {
		timer := time.NewTimer(h.StreamMaxAge)
		defer timer.Stop()
		rollover = timer.C
	}

	for {
		select {
		case rec, open := <-ch:
			if !open {
				return
			}
			if rec.ID <= replayed {
				continue
			}
			if err := writeRecord(w, rec); err != nil {
				return
			}
			flusher.Flush()
		case <-ping.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case <-rollover:
			// Planned rollover: tell the client to reconnect, then end the
			// response so it actually does.
			fmt.Fprintf(w, "id: %d\nevent: reconnect\ndata: {}\n\n", h.LastID())
			flusher.Flush()
			return
		case <-r.Context().Done():
			return
		}
	}
}

func writeRecord(w http.ResponseWriter, rec Record) error {
	_, err := fmt.Fprintf(w, "id: %d\nevent: %s\ndata: %s\n\n", rec.ID, rec.Event, rec.Data)
	return err
}
