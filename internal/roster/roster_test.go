package roster

import (
	"context"
	"fmt"
	"testing"
)

func TestSnapshot_Present(t *testing.T) {
	snap := Snapshot{
		CallID: "call-1",
		Participants: []Participant{
			{UserID: "u1"}, {UserID: "u2"}, {UserID: "u1"},
		},
	}
	got := snap.Present()
	if len(got) != 2 || !got["u1"] || !got["u2"] {
		t.Errorf("Present() = %v, want set of u1, u2", got)
	}

	if got := (Snapshot{}).Present(); len(got) != 0 {
		t.Errorf("empty snapshot Present() = %v, want empty", got)
	}
}

func TestMockSource_Lifecycle(t *testing.T) {
	m := NewMockSource()
	ctx := context.Background()

	if _, err := m.Snapshot(ctx); err == nil {
		t.Error("snapshot before Connect should fail")
	}
	if err := m.Connect(ctx); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	m.SetSnapshot(Snapshot{CallID: "c1", Participants: []Participant{{UserID: "u1"}}})
	snap, err := m.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if snap.CallID != "c1" {
		t.Errorf("call id = %q, want c1", snap.CallID)
	}

	m.SetError(fmt.Errorf("boom"))
	if _, err := m.Snapshot(ctx); err == nil {
		t.Error("injected error not returned")
	}

	if err := m.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := m.Connect(ctx); err == nil {
		t.Error("Connect after Close should fail")
	}
}

func TestMockSource_ChangesCoalesce(t *testing.T) {
	m := NewMockSource()
	m.SimulateChange()
	m.SimulateChange()

	select {
	case <-m.Changes():
	default:
		t.Fatal("no tick after SimulateChange")
	}
	select {
	case <-m.Changes():
		t.Fatal("ticks not coalesced")
	default:
	}
}
