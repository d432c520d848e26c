package session

import (
	"fmt"
	"testing"

	"github.com/hivewatch/console/internal/event"
)

func pushN(h *History, n int) {
	for i := 1; i <= n; i++ {
		h.Push(event.Interaction{SessionID: "s1", ToolName: fmt.Sprintf("tool-%d", i)})
	}
}

func TestHistoryNewestFirst(t *testing.T) {
	h := NewHistory(5)
	pushN(h, 3)

	snap := h.Snapshot()
	want := []string{"tool-3", "tool-2", "tool-1"}
	if len(snap) != len(want) {
		t.Fatalf("snapshot length = %d, want %d", len(snap), len(want))
	}
	for i, name := range want {
		if snap[i].ToolName != name {
			t.Errorf("snapshot[%d] = %s, want %s", i, snap[i].ToolName, name)
		}
	}
}

func TestHistoryEvictsOldest(t *testing.T) {
	h := NewHistory(5)
	pushN(h, 12)

	snap := h.Snapshot()
	if len(snap) != 5 {
		t.Fatalf("snapshot length = %d, want capacity 5", len(snap))
	}
	// Items 12, 11, 10, 9, 8 remain, newest first.
	for i := 0; i < 5; i++ {
		want := fmt.Sprintf("tool-%d", 12-i)
		if snap[i].ToolName != want {
			t.Errorf("snapshot[%d] = %s, want %s", i, snap[i].ToolName, want)
		}
	}
}

func TestHistoryClear(t *testing.T) {
	h := NewHistory(5)
	pushN(h, 4)

	h.Clear()
	if h.Len() != 0 {
		t.Errorf("Len() = %d after Clear, want 0", h.Len())
	}
	if len(h.Snapshot()) != 0 {
		t.Error("Snapshot() not empty after Clear")
	}

	// Ring is usable again after a clear.
	pushN(h, 2)
	snap := h.Snapshot()
	if len(snap) != 2 || snap[0].ToolName != "tool-2" {
		t.Errorf("unexpected snapshot after clear+push: %+v", snap)
	}
}

func TestHistoryDefaultCapacity(t *testing.T) {
	h := NewHistory(0)
	if h.Cap() != DefaultHistoryCapacity {
		t.Errorf("Cap() = %d, want %d", h.Cap(), DefaultHistoryCapacity)
	}
	pushN(h, DefaultHistoryCapacity+10)
	if h.Len() != DefaultHistoryCapacity {
		t.Errorf("Len() = %d, want %d", h.Len(), DefaultHistoryCapacity)
	}
}

func TestHistorySnapshotIsCopy(t *testing.T) {
	h := NewHistory(3)
	pushN(h, 2)

	snap := h.Snapshot()
	snap[0].ToolName = "mutated"

	if h.Snapshot()[0].ToolName != "tool-2" {
		t.Error("mutating a snapshot leaked into the ring")
	}
}
