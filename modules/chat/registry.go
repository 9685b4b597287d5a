package chat

import (
	"sync"

	domain "github.com/example/roomchat/domain/chat"
)

// Registry is the connection registry: it maps each live connection id to its
// session state. Entries exist only while the transport is open; all
// mutations arrive one at a time from the broadcast hub's event loop. The
// lock exists so read-only surfaces (REST, health checks) can snapshot
// concurrently.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*domain.Session
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]*domain.Session),
	}
}

// Register creates a session for a newly accepted connection with the
// placeholder name and no room.
func (r *Registry) Register(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[connID] = &domain.Session{
		ConnID:   connID,
		Username: DefaultUsername,
	}
}

// SetIdentity updates the display name for a connection.
func (r *Registry) SetIdentity(connID, username string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if sess, ok := r.sessions[connID]; ok {
		sess.Username = username
	}
}

// SetRoom records the connection's current room ("" = none).
func (r *Registry) SetRoom(connID, room string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if sess, ok := r.sessions[connID]; ok {
		sess.Room = room
	}
}

// Get returns a copy of the session for a connection.
func (r *Registry) Get(connID string) (domain.Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sess, ok := r.sessions[connID]
	if !ok {
		return domain.Session{}, false
	}
	return *sess, true
}

// Remove deletes the session. Removing an unknown id is a no-op, so the
// close path stays idempotent.
func (r *Registry) Remove(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, connID)
}

// Count returns the number of registered connections.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
