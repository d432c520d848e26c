// Package mock implements the mockhive development backend: a generated
// honeypot event stream plus the REST snapshot endpoints, so the console can
// be exercised end to end without a live honeypot.
package mock

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/hivewatch/console/internal/event"
)

// SessionRecord is the server-side view of one generated attacker session.
// JSON tags match the dashboard API rows.
type SessionRecord struct {
	ID               string            `json:"id"`
	ClientInfo       map[string]string `json:"client_info"`
	StartedAt        time.Time         `json:"started_at"`
	LastSeenAt       time.Time         `json:"last_seen_at"`
	EscalationLevel  int               `json:"escalation_level"`
	InteractionCount int               `json:"interaction_count"`
	TokenCount       int               `json:"token_count"`
}

// Store keeps the generated sessions and the aggregate counters behind the
// REST endpoints and the periodic stats events.
type Store struct {
	mu           sync.RWMutex
	sessions     map[string]*SessionRecord
	toolUsage    map[string]int
	tokenTypes   map[string]int
	interactions int
	tokens       int
}

func NewStore() *Store {
	return &Store{
		sessions:   make(map[string]*SessionRecord),
		toolUsage:  make(map[string]int),
		tokenTypes: make(map[string]int),
	}
}

func (s *Store) Create(id string, clientInfo map[string]string, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = &SessionRecord{
		ID:         id,
		ClientInfo: clientInfo,
		StartedAt:  now,
		LastSeenAt: now,
	}
}

// Touch records one interaction: counter bump, tool histogram, escalation.
func (s *Store) Touch(id, tool string, level int, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.sessions[id]
	if !ok {
		return
	}
	rec.InteractionCount++
	rec.EscalationLevel = level
	rec.LastSeenAt = now
	s.interactions++
	if tool != "" {
		s.toolUsage[tool]++
	}
}

// AddTokens records honey tokens deployed against a session and returns the
// session's new token total.
func (s *Store) AddTokens(id, tokenType string, n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.sessions[id]
	if !ok {
		return 0
	}
	rec.TokenCount += n
	s.tokens += n
	s.tokenTypes[tokenType] += n
	return rec.TokenCount
}

func (s *Store) Get(id string) (*SessionRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	c := *rec
	return &c, true
}

// Snapshot returns copies of all sessions, newest first.
func (s *Store) Snapshot() []*SessionRecord {
	s.mu.RLock()
	result := make([]*SessionRecord, 0, len(s.sessions))
	for _, rec := range s.sessions {
		c := *rec
		result = append(result, &c)
	}
	s.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		if !result[i].StartedAt.Equal(result[j].StartedAt) {
			return result[i].StartedAt.After(result[j].StartedAt)
		}
		return result[i].ID < result[j].ID
	})
	return result
}

// Stats computes the aggregate snapshot in the dashboard API shape.
func (s *Store) Stats(now time.Time) event.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := event.Stats{
		TotalSessions:          len(s.sessions),
		TotalInteractions:      s.interactions,
		TotalTokens:            s.tokens,
		ToolUsage:              make(map[string]int, len(s.toolUsage)),
		TokenTypeBreakdown:     make(map[string]int, len(s.tokenTypes)),
		EscalationDistribution: make(map[string]int),
	}
	for k, v := range s.toolUsage {
		stats.ToolUsage[k] = v
	}
	for k, v := range s.tokenTypes {
		stats.TokenTypeBreakdown[k] = v
	}

	var levelSum int
	cutoff := now.Add(-time.Hour)
	for _, rec := range s.sessions {
		levelSum += rec.EscalationLevel
		stats.EscalationDistribution[fmt.Sprint(rec.EscalationLevel)]++
		if rec.LastSeenAt.After(cutoff) {
			stats.ActiveSessions++
		}
	}
	if len(s.sessions) > 0 {
		stats.AvgEscalation = float64(levelSum) / float64(len(s.sessions))
	}
	return stats
}
