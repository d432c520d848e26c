package client

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/hivewatch/console/internal/session"
)

func TestGetStats(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/stats" {
			t.Errorf("path = %s", r.URL.Path)
		}
		fmt.Fprint(w, `{"total_sessions":4,"active_sessions":2,"avg_escalation":1.5,"tool_usage":{"nmap":7}}`)
	}))
	defer srv.Close()

	stats, err := New(srv.URL, "").GetStats()
	if err != nil {
		t.Fatalf("GetStats: %v", err)
	}
	if stats.TotalSessions != 4 || stats.ToolUsage["nmap"] != 7 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestGetStatsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	if _, err := New(srv.URL, "").GetStats(); err == nil {
		t.Error("GetStats did not surface the non-200 response")
	}
}

func TestAuthHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer sekrit" {
			t.Errorf("Authorization = %q", got)
		}
		fmt.Fprint(w, `{}`)
	}))
	defer srv.Close()

	if _, err := New(srv.URL, "sekrit").GetStats(); err != nil {
		t.Fatalf("GetStats: %v", err)
	}
}

func TestFetchAllSessionsPaginates(t *testing.T) {
	const total = 150
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

		fmt.Fprintf(w, `{"total":%d,"limit":%d,"offset":%d,"sessions":[`, total, limit, offset)
		first := true
		for i := offset; i < offset+limit && i < total; i++ {
			if !first {
				fmt.Fprint(w, ",")
			}
			first = false
			fmt.Fprintf(w, `{"id":"s%d","client_info":{"name":"c"},"escalation_level":%d,"interaction_count":%d,"started_at":"2026-08-30T12:00:00Z","last_seen_at":"2026-08-30T12:30:00Z"}`, i, i%4, i)
		}
		fmt.Fprint(w, "]}")
	}))
	defer srv.Close()

	nodes, err := New(srv.URL, "").FetchAllSessions()
	if err != nil {
		t.Fatalf("FetchAllSessions: %v", err)
	}
	if len(nodes) != total {
		t.Fatalf("got %d nodes, want %d", len(nodes), total)
	}
	if nodes[0].SessionID != "s0" || nodes[149].SessionID != "s149" {
		t.Errorf("unexpected node ids at the page boundaries")
	}
	if nodes[3].EscalationLevel != session.LateralMovement {
		t.Errorf("escalation not carried over: %+v", nodes[3])
	}
	if nodes[10].InteractionCount != 10 {
		t.Errorf("interaction_count not carried over: %+v", nodes[10])
	}
}

func TestStreamURL(t *testing.T) {
	tests := []struct {
		base string
		want string
	}{
		{"http://127.0.0.1:5050", "http://127.0.0.1:5050/events"},
		{"http://hive.internal:5050/api", "http://hive.internal:5050/events"},
		{"https://hive.example.com", "https://hive.example.com/events"},
	}
	for _, tt := range tests {
		if got := StreamURL(tt.base); got != tt.want {
			t.Errorf("StreamURL(%q) = %q, want %q", tt.base, got, tt.want)
		}
	}
}
