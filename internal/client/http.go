// Package client provides the REST client for the honeypot dashboard API,
// used for the one-off bulk snapshot that seeds the engine and for aggregate
// refreshes. Types mirror the backend response envelopes.
package client

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/hivewatch/console/internal/event"
	"github.com/hivewatch/console/internal/session"
)

// SessionRow is one row of the GET /api/sessions envelope.
type SessionRow struct {
	ID               string            `json:"id"`
	ClientInfo       map[string]string `json:"client_info"`
	StartedAt        time.Time         `json:"started_at"`
	LastSeenAt       time.Time         `json:"last_seen_at"`
	EscalationLevel  int               `json:"escalation_level"`
	InteractionCount int               `json:"interaction_count"`
	TokenCount       int               `json:"token_count"`
}

// Node converts the REST row into the engine's session node.
func (r SessionRow) Node() *session.Node {
	return &session.Node{
		SessionID:        r.ID,
		ClientInfo:       r.ClientInfo,
		EscalationLevel:  session.Clamp(r.EscalationLevel),
		InteractionCount: r.InteractionCount,
		LastSeen:         r.LastSeenAt,
	}
}

// SessionsPage is the paginated sessions envelope.
type SessionsPage struct {
	Sessions []SessionRow `json:"sessions"`
	Total    int          `json:"total"`
	Limit    int          `json:"limit"`
	Offset   int          `json:"offset"`
}

// HTTPClient makes REST calls to the honeypot dashboard API.
type HTTPClient struct {
	baseURL string
	token   string
	client  *http.Client
}

// New creates a client targeting the given base URL (e.g.
// "http://127.0.0.1:5050").
func New(baseURL, token string) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		token:   token,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// GetStats fetches /api/stats.
func (c *HTTPClient) GetStats() (*event.Stats, error) {
	var s event.Stats
	if err := c.get("/api/stats", &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// GetSessions fetches one page of /api/sessions.
func (c *HTTPClient) GetSessions(limit, offset int) (*SessionsPage, error) {
	path := fmt.Sprintf("/api/sessions?limit=%d&offset=%d", limit, offset)
	var page SessionsPage
	if err := c.get(path, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// FetchAllSessions pages through /api/sessions and returns every known
// session as engine nodes, ready for seeding.
func (c *HTTPClient) FetchAllSessions() ([]*session.Node, error) {
	const pageSize = 100

	var nodes []*session.Node
	offset := 0
	for {
		page, err := c.GetSessions(pageSize, offset)
		if err != nil {
			return nil, err
		}
		for _, row := range page.Sessions {
			nodes = append(nodes, row.Node())
		}
		offset += len(page.Sessions)
		if len(page.Sessions) == 0 || offset >= page.Total {
			return nodes, nil
		}
	}
}

func (c *HTTPClient) get(path string, out any) error {
	req, err := http.NewRequest(http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("GET %s: %s: %s", path, resp.Status, body)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// StreamURL derives the SSE endpoint from the REST base URL.
func StreamURL(baseURL string) string {
	u, err := url.Parse(baseURL)
	if err != nil {
		return baseURL + "/events"
	}
	u.Path = "/events"
	u.RawQuery = ""
	return u.String()
}
