// Package event defines the typed live events pushed by a honeypot backend
// and the decoder that turns raw SSE frames into them. Types mirror the
// backend wire protocol without importing backend packages.
package event

import (
	"encoding/json"
	"time"
)

// Type identifies the kind of live event.
type Type string

const (
	TypeInteraction   Type = "interaction"
	TypeSessionNew    Type = "session_new"
	TypeSessionUpdate Type = "session_update"
	TypeTokenDeployed Type = "token_deployed"
	TypeStats         Type = "stats"
)

// Event is the closed union of live events. Exactly the five concrete types
// in this package implement it.
type Event interface {
	EventType() Type
}

// Interaction records a single tool call by an attacker session.
type Interaction struct {
	SessionID       string         `json:"session_id"`
	ToolName        string         `json:"tool_name"`
	Arguments       map[string]any `json:"arguments,omitempty"`
	EscalationDelta int            `json:"escalation_delta"`
	EscalationLevel int            `json:"escalation_level"`
	Timestamp       time.Time      `json:"timestamp"`
	PromptSummary   string         `json:"prompt_summary,omitempty"`
	Injection       string         `json:"injection,omitempty"`
}

func (Interaction) EventType() Type { return TypeInteraction }

// SessionNew announces an attacker session the backend has not seen before.
type SessionNew struct {
	SessionID       string            `json:"session_id"`
	ClientInfo      map[string]string `json:"client_info"`
	EscalationLevel int               `json:"escalation_level"`
	Timestamp       time.Time         `json:"timestamp"`
}

func (SessionNew) EventType() Type { return TypeSessionNew }

// SessionUpdate carries the authoritative escalation level and interaction
// count for an existing session.
type SessionUpdate struct {
	SessionID        string `json:"session_id"`
	EscalationLevel  int    `json:"escalation_level"`
	InteractionCount int    `json:"interaction_count"`
}

func (SessionUpdate) EventType() Type { return TypeSessionUpdate }

// TokenDeployed reports honey tokens planted in response to a tool call.
type TokenDeployed struct {
	SessionID   string    `json:"session_id"`
	ToolName    string    `json:"tool_name"`
	Count       int       `json:"count"`
	TotalTokens int       `json:"total_tokens"`
	Timestamp   time.Time `json:"timestamp"`
}

func (TokenDeployed) EventType() Type { return TypeTokenDeployed }

// Stats is a full aggregate snapshot published periodically by the backend.
type Stats struct {
	TotalSessions          int            `json:"total_sessions"`
	ActiveSessions         int            `json:"active_sessions"`
	AvgEscalation          float64        `json:"avg_escalation"`
	TotalInteractions      int            `json:"total_interactions"`
	TotalTokens            int            `json:"total_tokens"`
	ToolUsage              map[string]int `json:"tool_usage"`
	TokenTypeBreakdown     map[string]int `json:"token_type_breakdown"`
	EscalationDistribution map[string]int `json:"escalation_distribution"`
}

func (Stats) EventType() Type { return TypeStats }

// Decode parses one raw frame into a typed event. It returns false for
// unknown event names, malformed JSON, and payloads missing their session_id
// tag: those are heartbeats or corrupted frames and are expected noise, so
// they are dropped rather than surfaced as errors.
func Decode(name string, data []byte) (Event, bool) {
	switch Type(name) {
	case TypeInteraction:
		var ev Interaction
		if json.Unmarshal(data, &ev) != nil || ev.SessionID == "" {
			return nil, false
		}
		return ev, true
	case TypeSessionNew:
		var ev SessionNew
		if json.Unmarshal(data, &ev) != nil || ev.SessionID == "" {
			return nil, false
		}
		return ev, true
	case TypeSessionUpdate:
		var ev SessionUpdate
		if json.Unmarshal(data, &ev) != nil || ev.SessionID == "" {
			return nil, false
		}
		return ev, true
	case TypeTokenDeployed:
		var ev TokenDeployed
		if json.Unmarshal(data, &ev) != nil || ev.SessionID == "" {
			return nil, false
		}
		return ev, true
	case TypeStats:
		var ev Stats
		if json.Unmarshal(data, &ev) != nil {
			return nil, false
		}
		return ev, true
	}
	return nil, false
}
