package presence

import (
	"context"
	"testing"
	"time"

	"github.com/example/roomchat/events"
)

func TestCountersTrackActivity(t *testing.T) {
	m := NewModule()
	ctx := context.Background()
	now := time.Now()

	if err := m.handleRoomCreated(ctx, events.RoomCreatedEvent{Room: "lobby", CreatedBy: "alice", Timestamp: now}, nil); err != nil {
		t.Fatalf("handleRoomCreated: %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := m.handleMemberJoined(ctx, events.MemberJoinedEvent{Room: "lobby", Username: "bob", Timestamp: now}, nil); err != nil {
			t.Fatalf("handleMemberJoined: %v", err)
		}
	}
	if err := m.handleMemberLeft(ctx, events.MemberLeftEvent{Room: "lobby", Username: "bob", Timestamp: now}, nil); err != nil {
		t.Fatalf("handleMemberLeft: %v", err)
	}
	for i := 0; i < 3; i++ {
		if err := m.handleMessageBroadcast(ctx, events.MessageBroadcastEvent{Room: "lobby", Username: "bob", Chars: 2, Timestamp: now}, nil); err != nil {
			t.Fatalf("handleMessageBroadcast: %v", err)
		}
	}

	s := m.Stats()
	if s.RoomsCreated != 1 || s.Joins != 2 || s.Leaves != 1 || s.Messages != 3 {
		t.Errorf("Unexpected counters: %+v", s)
	}
	if s.LastActivity.IsZero() {
		t.Error("Expected LastActivity to be set")
	}
}

func TestHealthReportsCounters(t *testing.T) {
	m := NewModule()
	_ = m.handleMemberJoined(context.Background(), events.MemberJoinedEvent{Room: "lobby", Username: "alice"}, nil)

	status := m.Health(context.Background())
	if !status.Healthy {
		t.Error("Expected healthy status")
	}
	if got := status.Details["joins"]; got != uint64(1) {
		t.Errorf("Expected joins detail 1, got %v", got)
	}
}
