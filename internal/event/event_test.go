package event

import (
	"testing"
)

func TestDecodeInteraction(t *testing.T) {
	data := []byte(`{
		"session_id": "abc123",
		"tool_name": "nmap",
		"arguments": {"target": "10.0.0.0/24"},
		"escalation_delta": 1,
		"escalation_level": 2,
		"timestamp": "2026-08-30T12:00:00+00:00",
		"prompt_summary": "scan 10.0.0.0/24",
		"injection": "credentials found in /etc/backup"
	}`)

	ev, ok := Decode("interaction", data)
	if !ok {
		t.Fatal("Decode returned ok=false for valid interaction")
	}
	in, ok := ev.(Interaction)
	if !ok {
		t.Fatalf("Decode returned %T, want Interaction", ev)
	}
	if in.SessionID != "abc123" || in.ToolName != "nmap" {
		t.Errorf("unexpected fields: %+v", in)
	}
	if in.EscalationDelta != 1 || in.EscalationLevel != 2 {
		t.Errorf("escalation fields wrong: %+v", in)
	}
	if in.Arguments["target"] != "10.0.0.0/24" {
		t.Errorf("arguments not decoded: %+v", in.Arguments)
	}
	if in.Timestamp.IsZero() {
		t.Error("timestamp not parsed")
	}
	if ev.EventType() != TypeInteraction {
		t.Errorf("EventType() = %q, want %q", ev.EventType(), TypeInteraction)
	}
}

func TestDecodeSessionNew(t *testing.T) {
	data := []byte(`{
		"session_id": "s1",
		"client_info": {"name": "curl", "version": "8.0"},
		"escalation_level": 0,
		"timestamp": "2026-08-30T12:00:00Z"
	}`)

	ev, ok := Decode("session_new", data)
	if !ok {
		t.Fatal("Decode returned ok=false for valid session_new")
	}
	sn := ev.(SessionNew)
	if sn.SessionID != "s1" || sn.ClientInfo["name"] != "curl" {
		t.Errorf("unexpected fields: %+v", sn)
	}
}

func TestDecodeSessionUpdate(t *testing.T) {
	ev, ok := Decode("session_update", []byte(`{"session_id":"s1","escalation_level":3,"interaction_count":14}`))
	if !ok {
		t.Fatal("Decode returned ok=false for valid session_update")
	}
	up := ev.(SessionUpdate)
	if up.EscalationLevel != 3 || up.InteractionCount != 14 {
		t.Errorf("unexpected fields: %+v", up)
	}
}

func TestDecodeTokenDeployed(t *testing.T) {
	ev, ok := Decode("token_deployed", []byte(`{"session_id":"s1","tool_name":"aws_cli","count":2,"total_tokens":5,"timestamp":"2026-08-30T12:00:00Z"}`))
	if !ok {
		t.Fatal("Decode returned ok=false for valid token_deployed")
	}
	td := ev.(TokenDeployed)
	if td.Count != 2 || td.TotalTokens != 5 {
		t.Errorf("unexpected fields: %+v", td)
	}
}

func TestDecodeStats(t *testing.T) {
	data := []byte(`{
		"total_sessions": 10,
		"active_sessions": 3,
		"avg_escalation": 1.4,
		"total_interactions": 120,
		"total_tokens": 17,
		"tool_usage": {"nmap": 40, "shell_exec": 30},
		"token_type_breakdown": {"aws_key": 9, "ssh_key": 8},
		"escalation_distribution": {"0": 4, "1": 3, "2": 2, "3": 1}
	}`)

	ev, ok := Decode("stats", data)
	if !ok {
		t.Fatal("Decode returned ok=false for valid stats")
	}
	st := ev.(Stats)
	if st.TotalSessions != 10 || st.ToolUsage["nmap"] != 40 {
		t.Errorf("unexpected fields: %+v", st)
	}
	if st.EscalationDistribution["3"] != 1 {
		t.Errorf("escalation_distribution not decoded: %+v", st.EscalationDistribution)
	}
}

func TestDecodeDropsMalformed(t *testing.T) {
	tests := []struct {
		name  string
		event string
		data  string
	}{
		{"NotJSON", "interaction", `this is not json`},
		{"EmptyFrame", "interaction", ``},
		{"MissingSessionID", "interaction", `{"tool_name":"nmap"}`},
		{"MissingSessionIDUpdate", "session_update", `{"escalation_level":1}`},
		{"MissingSessionIDNew", "session_new", `{"client_info":{}}`},
		{"MissingSessionIDToken", "token_deployed", `{"count":1}`},
		{"UnknownEventName", "heartbeat", `{"session_id":"s1"}`},
		{"EmptyEventName", "", `{"session_id":"s1"}`},
		{"WrongShape", "session_update", `[1,2,3]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, ok := Decode(tt.event, []byte(tt.data))
			if ok {
				t.Errorf("Decode(%q, %q) = %+v, want dropped", tt.event, tt.data, ev)
			}
			if ev != nil {
				t.Errorf("dropped frame returned non-nil event %+v", ev)
			}
		})
	}
}
