package mock

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestServer(t *testing.T, token string) (*Store, *httptest.Server) {
	t.Helper()
	store := NewStore()
	hub := NewHub()
	t.Cleanup(hub.Close)
	srv := NewServer(store, hub, token)
	mux := http.NewServeMux()
	srv.SetupRoutes(mux)
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return store, ts
}

func TestSessionsEndpointPaginates(t *testing.T) {
	store, ts := newTestServer(t, "")
	base := time.Now()
	for i := 0; i < 7; i++ {
		store.Create(string(rune('a'+i)), nil, base.Add(time.Duration(i)*time.Second))
	}

	resp, err := ts.Client().Get(ts.URL + "/api/sessions?limit=3&offset=3")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var page struct {
		Sessions []*SessionRecord `json:"sessions"`
		Total    int              `json:"total"`
		Limit    int              `json:"limit"`
		Offset   int              `json:"offset"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if page.Total != 7 || page.Limit != 3 || page.Offset != 3 {
		t.Fatalf("envelope = total %d limit %d offset %d", page.Total, page.Limit, page.Offset)
	}
	if len(page.Sessions) != 3 {
		t.Fatalf("page size = %d, want 3", len(page.Sessions))
	}
	// Newest first: offset 3 of g..a is d.
	if page.Sessions[0].ID != "d" {
		t.Errorf("page starts at %s, want d", page.Sessions[0].ID)
	}
}

func TestSessionsEndpointOffsetPastEnd(t *testing.T) {
	store, ts := newTestServer(t, "")
	store.Create("only", nil, time.Now())

	resp, err := ts.Client().Get(ts.URL + "/api/sessions?offset=10")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()

	var page struct {
		Sessions []*SessionRecord `json:"sessions"`
		Total    int              `json:"total"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if page.Total != 1 || len(page.Sessions) != 0 {
		t.Fatalf("total %d with %d rows, want 1 and 0", page.Total, len(page.Sessions))
	}
}

func TestSessionDetailEndpoint(t *testing.T) {
	store, ts := newTestServer(t, "")
	store.Create("abc123", map[string]string{"name": "curl"}, time.Now())

	resp, err := ts.Client().Get(ts.URL + "/api/sessions/abc123")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var rec SessionRecord
	if err := json.NewDecoder(resp.Body).Decode(&rec); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rec.ID != "abc123" || rec.ClientInfo["name"] != "curl" {
		t.Fatalf("record = %+v", rec)
	}

	missing, err := ts.Client().Get(ts.URL + "/api/sessions/nope")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	missing.Body.Close()
	if missing.StatusCode != http.StatusNotFound {
		t.Fatalf("missing session status = %d, want 404", missing.StatusCode)
	}
}

func TestStatsEndpoint(t *testing.T) {
	store, ts := newTestServer(t, "")
	now := time.Now()
	store.Create("abc", nil, now)
	store.Touch("abc", "nmap", 1, now)

	resp, err := ts.Client().Get(ts.URL + "/api/stats")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()

	var stats struct {
		TotalSessions     int            `json:"total_sessions"`
		TotalInteractions int            `json:"total_interactions"`
		ToolUsage         map[string]int `json:"tool_usage"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if stats.TotalSessions != 1 || stats.TotalInteractions != 1 {
		t.Fatalf("stats = %+v", stats)
	}
	if stats.ToolUsage["nmap"] != 1 {
		t.Fatalf("tool usage = %v", stats.ToolUsage)
	}
}

func TestAuthTokenAccepted(t *testing.T) {
	_, ts := newTestServer(t, "sekrit")

	for name, build := range map[string]func() *http.Request{
		"query": func() *http.Request {
			req, _ := http.NewRequest(http.MethodGet, ts.URL+"/api/stats?token=sekrit", nil)
			return req
		},
		"bearer": func() *http.Request {
			req, _ := http.NewRequest(http.MethodGet, ts.URL+"/api/stats", nil)
			req.Header.Set("Authorization", "Bearer sekrit")
			return req
		},
	} {
		resp, err := ts.Client().Do(build())
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("%s auth rejected with %d", name, resp.StatusCode)
		}
	}

	resp, err := ts.Client().Get(ts.URL + "/api/stats")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("unauthenticated status = %d, want 401", resp.StatusCode)
	}
}

func TestHealthEndpointSkipsAuth(t *testing.T) {
	_, ts := newTestServer(t, "sekrit")
	resp, err := ts.Client().Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("health status = %d", resp.StatusCode)
	}
}
