package session

import (
	"time"
)

// Escalation classifies how far an attacker session has progressed.
// The wire carries it as a plain integer 0-3.
type Escalation int

const (
	Observing Escalation = iota // connected, nothing notable yet
	Recon                       // network and file discovery
	CredentialTheft             // secrets and keys touched
	LateralMovement             // pivoting with harvested credentials
)

var escalationNames = map[Escalation]string{
	Observing:       "observing",
	Recon:           "recon",
	CredentialTheft: "credential-theft",
	LateralMovement: "lateral-movement",
}

func (e Escalation) String() string {
	if s, ok := escalationNames[e]; ok {
		return s
	}
	return "unknown"
}

// Clamp bounds an arbitrary wire value into the 0-3 range.
func Clamp(level int) Escalation {
	if level < 0 {
		return Observing
	}
	if level > int(LateralMovement) {
		return LateralMovement
	}
	return Escalation(level)
}

// Node is the reconstructed view of one attacker session. Nodes are owned by
// the reducer; consumers only ever see copies.
type Node struct {
	SessionID        string            `json:"session_id"`
	ClientInfo       map[string]string `json:"client_info,omitempty"`
	EscalationLevel  Escalation        `json:"escalation_level"`
	InteractionCount int               `json:"interaction_count"`
	LastSeen         time.Time         `json:"last_seen_at"`
}

// Clone returns a deep copy of the Node so the copy can be mutated
// independently of the original.
func (n *Node) Clone() *Node {
	c := *n
	if len(n.ClientInfo) > 0 {
		c.ClientInfo = make(map[string]string, len(n.ClientInfo))
		for k, v := range n.ClientInfo {
			c.ClientInfo[k] = v
		}
	}
	return &c
}

// State is the full reducer-owned state: the session map plus the
// UI-selection pointer. Treat it as immutable; Reduce returns a new State
// and never modifies the one it was given.
type State struct {
	Sessions map[string]*Node
	Selected string // session id, or "" when nothing is selected
}

// NewState returns an empty state.
func NewState() State {
	return State{Sessions: make(map[string]*Node)}
}

// cloneSessions copies the map one level deep. Node values are shared until
// an action needs to mutate one, at which point the action clones that node.
func (s State) cloneSessions() map[string]*Node {
	m := make(map[string]*Node, len(s.Sessions))
	for k, v := range s.Sessions {
		m[k] = v
	}
	return m
}
