package server

import (
	"sync"

	"github.com/google/uuid"
)

// ConnectionRegistry tracks live signaling connections and the room each
// one currently occupies (at most one). It has its own lock so read-only
// endpoints can query it without going through the hub loop.
type ConnectionRegistry struct {
	mu    sync.Mutex
	conns map[string]string // connection id → room name ("" while not in a room)
}

// NewConnectionRegistry creates an empty registry.
func NewConnectionRegistry() *ConnectionRegistry {
	return &ConnectionRegistry{conns: make(map[string]string)}
}

// Register assigns a fresh connection id and records the connection.
func (r *ConnectionRegistry) Register() string {
	id := uuid.NewString()
	r.mu.Lock()
	r.conns[id] = ""
	r.mu.Unlock()
	return id
}

// Unregister forgets the connection. Unknown ids are ignored.
func (r *ConnectionRegistry) Unregister(id string) {
	r.mu.Lock()
	delete(r.conns, id)
	r.mu.Unlock()
}

// SetRoom records the room the connection has joined.
func (r *ConnectionRegistry) SetRoom(id, room string) {
	r.mu.Lock()
	if _, ok := r.conns[id]; ok {
		r.conns[id] = room
	}
	r.mu.Unlock()
}

// RoomOf reports the room the connection is currently a member of.
// The second return is false when the connection is unknown or roomless.
func (r *ConnectionRegistry) RoomOf(id string) (string, bool) {
	r.mu.Lock()
	room, ok := r.conns[id]
	r.mu.Unlock()
	return room, ok && room != ""
}

// Len reports the number of live connections.
func (r *ConnectionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.conns)
}
