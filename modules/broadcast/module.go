package broadcast

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/go-monolith/mono"
)

// defaultHeartbeat is the liveness probe cadence when HEARTBEAT_INTERVAL is
// not set.
const defaultHeartbeat = 30 * time.Second

// Module runs the broadcast hub: connection fan-out plus the liveness
// monitor.
type Module struct {
	hub       *Hub
	cancelHub context.CancelFunc
}

// Compile-time interface checks.
var (
	_ mono.Module                = (*Module)(nil)
	_ mono.HealthCheckableModule = (*Module)(nil)
)

// NewModule creates the broadcast module. The heartbeat interval comes from
// HEARTBEAT_INTERVAL (seconds).
func NewModule(members MemberLister) *Module {
	return &Module{
		hub: NewHub(members, heartbeatInterval()),
	}
}

func heartbeatInterval() time.Duration {
	if v := os.Getenv("HEARTBEAT_INTERVAL"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
		log.Printf("[broadcast] invalid HEARTBEAT_INTERVAL %q, using default", v)
	}
	return defaultHeartbeat
}

// Name returns the module name.
func (m *Module) Name() string {
	return "broadcast"
}

// Hub returns the hub for wiring into the router and the API module.
func (m *Module) Hub() *Hub {
	return m.hub
}

// Start launches the hub event loop.
func (m *Module) Start(_ context.Context) error {
	if m.hub.handler == nil {
		return fmt.Errorf("protocol handler not set")
	}
	ctx, cancel := context.WithCancel(context.Background())
	m.cancelHub = cancel
	go m.hub.Run(ctx)
	log.Printf("[broadcast] Module started - hub running, heartbeat every %s", m.hub.interval)
	return nil
}

// Stop shuts down the hub and waits for it to finish.
func (m *Module) Stop(_ context.Context) error {
	clientCount := m.hub.ClientCount()
	if m.cancelHub != nil {
		m.cancelHub()
		m.hub.Wait()
	}
	log.Printf("[broadcast] Module stopped - %d clients were connected", clientCount)
	return nil
}

// Health returns the health status.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"connected_clients":  m.hub.ClientCount(),
			"heartbeat_interval": m.hub.interval.String(),
		},
	}
}
