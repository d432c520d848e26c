package session

import (
	"time"
)

// Action is the closed union of state transitions the reducer understands.
type Action interface {
	isAction()
}

// Init replaces the whole session map with the supplied nodes. Used once at
// startup, seeded from the bulk REST snapshot.
type Init struct {
	Sessions []*Node
}

// Reset empties the map and clears the selection.
type Reset struct{}

// SessionNew inserts a session, overwriting any existing entry with the same
// id. Duplicate delivery after a reconnect replay is expected, so
// re-creation is idempotent rather than an error.
type SessionNew struct {
	ID              string
	ClientInfo      map[string]string
	EscalationLevel int
	Timestamp       time.Time
}

// SessionUpdate overwrites the escalation level and interaction count of an
// existing session. Unknown ids are ignored.
type SessionUpdate struct {
	ID               string
	EscalationLevel  int
	InteractionCount int
}

// Interaction bumps the interaction counter of an existing session by one
// and overwrites its escalation level with the value carried on the event.
// Unknown ids are ignored.
type Interaction struct {
	ID              string
	EscalationLevel int
	Timestamp       time.Time
}

// Select changes the UI-selection pointer. An empty id clears it. Selection
// is independent of whether the session exists in the map.
type Select struct {
	ID string
}

func (Init) isAction()          {}
func (Reset) isAction()         {}
func (SessionNew) isAction()    {}
func (SessionUpdate) isAction() {}
func (Interaction) isAction()   {}
func (Select) isAction()        {}

// Reduce computes the next state from the current one and an action. It is a
// pure function: the input state is never mutated, and the same (state,
// action) pair always yields the same result. Actions referencing a session
// this client has not observed are no-ops and return the input state
// unchanged; the session_new for that id is assumed to be in flight or
// recoverable by the next bulk refresh.
func Reduce(st State, a Action) State {
	switch a := a.(type) {
	case Init:
		m := make(map[string]*Node, len(a.Sessions))
		for _, n := range a.Sessions {
			m[n.SessionID] = n.Clone()
		}
		return State{Sessions: m, Selected: st.Selected}

	case Reset:
		return NewState()

	case SessionNew:
		m := st.cloneSessions()
		m[a.ID] = &Node{
			SessionID:       a.ID,
			ClientInfo:      a.ClientInfo,
			EscalationLevel: Clamp(a.EscalationLevel),
			LastSeen:        a.Timestamp,
		}
		return State{Sessions: m, Selected: st.Selected}

	case SessionUpdate:
		prev, ok := st.Sessions[a.ID]
		if !ok {
			return st
		}
		n := prev.Clone()
		n.EscalationLevel = Clamp(a.EscalationLevel)
		n.InteractionCount = a.InteractionCount
		m := st.cloneSessions()
		m[a.ID] = n
		return State{Sessions: m, Selected: st.Selected}

	case Interaction:
		prev, ok := st.Sessions[a.ID]
		if !ok {
			return st
		}
		n := prev.Clone()
		n.InteractionCount++
		n.EscalationLevel = Clamp(a.EscalationLevel)
		if !a.Timestamp.IsZero() {
			n.LastSeen = a.Timestamp
		}
		m := st.cloneSessions()
		m[a.ID] = n
		return State{Sessions: m, Selected: st.Selected}

	case Select:
		if st.Selected == a.ID {
			return st
		}
		return State{Sessions: st.Sessions, Selected: a.ID}
	}
	return st
}
