package presence

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"

	"github.com/example/roomchat/events"
)

// Stats is a snapshot of observed chat activity.
type Stats struct {
	RoomsCreated uint64    `json:"rooms_created"`
	Joins        uint64    `json:"joins"`
	Leaves       uint64    `json:"leaves"`
	Messages     uint64    `json:"messages"`
	LastActivity time.Time `json:"last_activity"`
}

// PresenceModule consumes chat domain events and keeps activity counters.
// It is a pure observer: nothing in the core depends on it.
type PresenceModule struct {
	mu    sync.RWMutex
	stats Stats
}

// Compile-time interface checks.
var (
	_ mono.Module                = (*PresenceModule)(nil)
	_ mono.EventConsumerModule   = (*PresenceModule)(nil)
	_ mono.HealthCheckableModule = (*PresenceModule)(nil)
)

// NewModule creates the presence module.
func NewModule() *PresenceModule {
	return &PresenceModule{}
}

// Name returns the module name.
func (m *PresenceModule) Name() string {
	return "presence"
}

// RegisterEventConsumers registers event handlers.
func (m *PresenceModule) RegisterEventConsumers(registry mono.EventRegistry) error {
	if err := helper.RegisterTypedEventConsumer(registry, events.RoomCreatedV1, m.handleRoomCreated, m); err != nil {
		return fmt.Errorf("failed to register RoomCreated consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.MemberJoinedV1, m.handleMemberJoined, m); err != nil {
		return fmt.Errorf("failed to register MemberJoined consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.MemberLeftV1, m.handleMemberLeft, m); err != nil {
		return fmt.Errorf("failed to register MemberLeft consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.MessageBroadcastV1, m.handleMessageBroadcast, m); err != nil {
		return fmt.Errorf("failed to register MessageBroadcast consumer: %w", err)
	}

	log.Println("[presence] Registered event consumers: RoomCreated, MemberJoined, MemberLeft, MessageBroadcast")
	return nil
}

func (m *PresenceModule) handleRoomCreated(_ context.Context, event events.RoomCreatedEvent, _ *mono.Msg) error {
	log.Printf("[presence] room %q created by %s", event.Room, event.CreatedBy)
	m.record(func(s *Stats) { s.RoomsCreated++ })
	return nil
}

func (m *PresenceModule) handleMemberJoined(_ context.Context, event events.MemberJoinedEvent, _ *mono.Msg) error {
	log.Printf("[presence] %s joined %q", event.Username, event.Room)
	m.record(func(s *Stats) { s.Joins++ })
	return nil
}

func (m *PresenceModule) handleMemberLeft(_ context.Context, event events.MemberLeftEvent, _ *mono.Msg) error {
	log.Printf("[presence] %s left %q", event.Username, event.Room)
	m.record(func(s *Stats) { s.Leaves++ })
	return nil
}

func (m *PresenceModule) handleMessageBroadcast(_ context.Context, event events.MessageBroadcastEvent, _ *mono.Msg) error {
	m.record(func(s *Stats) { s.Messages++ })
	return nil
}

func (m *PresenceModule) record(update func(*Stats)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	update(&m.stats)
	m.stats.LastActivity = time.Now()
}

// Stats returns a snapshot of the counters.
func (m *PresenceModule) Stats() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.stats
}

// Start initializes the module.
func (m *PresenceModule) Start(_ context.Context) error {
	log.Println("[presence] Module started - listening for chat events")
	return nil
}

// Stop shuts down the module.
func (m *PresenceModule) Stop(_ context.Context) error {
	s := m.Stats()
	log.Printf("[presence] Module stopped - %d joins, %d leaves, %d messages", s.Joins, s.Leaves, s.Messages)
	return nil
}

// Health returns the health status.
func (m *PresenceModule) Health(_ context.Context) mono.HealthStatus {
	s := m.Stats()
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"rooms_created": s.RoomsCreated,
			"joins":         s.Joins,
			"leaves":        s.Leaves,
			"messages":      s.Messages,
		},
	}
}
