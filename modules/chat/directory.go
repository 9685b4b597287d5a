package chat

import (
	"sort"
	"sync"

	domain "github.com/example/roomchat/domain/chat"
)

// Directory is the room directory: room name -> member set plus the optional
// room password. Rooms are created on first use and deleted the moment their
// member set empties; deletion happens under the same lock as the removal
// that caused it, so an empty room is never observable.
type Directory struct {
	mu        sync.RWMutex
	members   map[string]map[string]bool
	passwords map[string]string
}

// NewDirectory creates an empty directory.
func NewDirectory() *Directory {
	return &Directory{
		members:   make(map[string]map[string]bool),
		passwords: make(map[string]string),
	}
}

// Ensure creates an empty member set for the room if absent. It reports
// whether the room was newly created.
func (d *Directory) Ensure(room string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.members[room]; ok {
		return false
	}
	d.members[room] = make(map[string]bool)
	return true
}

// SetPassword stores the room password. Callers set it only at creation
// time; it is immutable afterwards.
func (d *Directory) SetPassword(room, password string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.passwords[room] = password
}

// RequiredPassword returns the room's password, or "" if the room has none.
func (d *Directory) RequiredPassword(room string) string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.passwords[room]
}

// AddMember adds a connection to the room, creating the room first if needed.
func (d *Directory) AddMember(room, connID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.members[room] == nil {
		d.members[room] = make(map[string]bool)
	}
	d.members[room][connID] = true
}

// RemoveMember removes a connection from the room. When the member set
// empties, the room and its password are deleted in the same critical
// section.
func (d *Directory) RemoveMember(room, connID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	set, ok := d.members[room]
	if !ok {
		return
	}
	delete(set, connID)
	if len(set) == 0 {
		delete(d.members, room)
		delete(d.passwords, room)
	}
}

// Members returns the connection ids currently in the room. Absent rooms
// yield an empty slice.
func (d *Directory) Members(room string) []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	set := d.members[room]
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	return ids
}

// MemberCount returns the size of the room's member set.
func (d *Directory) MemberCount(room string) int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.members[room])
}

// List returns all room names sorted ascending.
func (d *Directory) List() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	names := make([]string, 0, len(d.members))
	for name := range d.members {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Snapshot returns all rooms with member counts, sorted by name. Used by the
// read-only REST surface.
func (d *Directory) Snapshot() []domain.Room {
	d.mu.RLock()
	defer d.mu.RUnlock()
	rooms := make([]domain.Room, 0, len(d.members))
	for name, set := range d.members {
		rooms = append(rooms, domain.Room{
			Name:    name,
			Members: len(set),
			Private: d.passwords[name] != "",
		})
	}
	sort.Slice(rooms, func(i, j int) bool { return rooms[i].Name < rooms[j].Name })
	return rooms
}
