package chat

import (
	"context"
	"fmt"
	"log"

	"github.com/go-monolith/mono"

	"github.com/example/roomchat/events"
)

// Module owns the chat core: connection registry, room directory, and the
// protocol router.
type Module struct {
	registry  *Registry
	directory *Directory
	router    *Router
	eventBus  mono.EventBus
}

// Compile-time interface checks.
var (
	_ mono.Module                = (*Module)(nil)
	_ mono.EventBusAwareModule   = (*Module)(nil)
	_ mono.EventEmitterModule    = (*Module)(nil)
	_ mono.HealthCheckableModule = (*Module)(nil)
)

// NewModule creates the chat module.
func NewModule() *Module {
	registry := NewRegistry()
	directory := NewDirectory()
	return &Module{
		registry:  registry,
		directory: directory,
		router:    NewRouter(registry, directory),
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "chat"
}

// SetEventBus receives the EventBus from the framework.
func (m *Module) SetEventBus(bus mono.EventBus) {
	m.eventBus = bus
	m.router.SetEventBus(bus)
}

// EmitEvents declares the events this module can emit.
func (m *Module) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.RoomCreatedV1.ToBase(),
		events.MemberJoinedV1.ToBase(),
		events.MemberLeftV1.ToBase(),
		events.MessageBroadcastV1.ToBase(),
	}
}

// SetDispatcher wires the broadcast hub into the router (called from main.go).
func (m *Module) SetDispatcher(d Dispatcher) {
	m.router.SetDispatcher(d)
}

// Router returns the protocol router for the broadcast hub to drive.
func (m *Module) Router() *Router {
	return m.router
}

// Registry returns the connection registry.
func (m *Module) Registry() *Registry {
	return m.registry
}

// Directory returns the room directory.
func (m *Module) Directory() *Directory {
	return m.directory
}

// Start verifies wiring.
func (m *Module) Start(_ context.Context) error {
	if m.router.dispatcher == nil {
		return fmt.Errorf("broadcast dispatcher not set")
	}
	if m.eventBus == nil {
		log.Println("[chat] Warning: eventBus not set, events will not be published")
	}
	log.Println("[chat] Module started")
	return nil
}

// Stop shuts down the module.
func (m *Module) Stop(_ context.Context) error {
	log.Printf("[chat] Module stopped - %d sessions, %d rooms", m.registry.Count(), len(m.directory.List()))
	return nil
}

// Health returns the health status.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"sessions": m.registry.Count(),
			"rooms":    len(m.directory.List()),
		},
	}
}
