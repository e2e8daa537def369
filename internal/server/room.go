package server

import "sync"

// Capacity is the hard member cap per room. A third create-or-join request
// is rejected, never queued.
const Capacity = 2

// RoomEvent is the outcome of a create-or-join request.
type RoomEvent int

const (
	RoomCreated RoomEvent = iota // requester admitted as the first member (Initiator)
	RoomJoined                   // requester admitted as the second member (Joiner)
	RoomFull                     // room already at capacity; no state change
)

// Room is a named rendezvous slot holding at most two connections.
// Members are ordered: the first is the creator, the second the joiner.
// Roles are fixed by admission order and never renegotiated.
type Room struct {
	Name    string
	Members []string
}

// RoomRegistry owns the name → Room mapping. A single mutex serializes
// every mutation, so two simultaneous "second joiner" requests can never
// both observe one member and both be admitted.
type RoomRegistry struct {
	mu    sync.Mutex
	rooms map[string]*Room
}

// NewRoomRegistry creates an empty registry.
func NewRoomRegistry() *RoomRegistry {
	return &RoomRegistry{rooms: make(map[string]*Room)}
}

// CreateOrJoin admits the connection into the named room, creating the
// room lazily on first sight. Re-requesting a room the connection is
// already a member of reports the role it holds, without mutation.
func (r *RoomRegistry) CreateOrJoin(name, connID string) RoomEvent {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[name]
	if !ok {
		r.rooms[name] = &Room{Name: name, Members: []string{connID}}
		return RoomCreated
	}

	for i, id := range room.Members {
		if id == connID {
			if i == 0 {
				return RoomCreated
			}
			return RoomJoined
		}
	}

	if len(room.Members) >= Capacity {
		return RoomFull
	}

	room.Members = append(room.Members, connID)
	return RoomJoined
}

// OtherMember returns the member of the room that is not connID.
// ok is false when the connection is alone or not a member at all.
func (r *RoomRegistry) OtherMember(name, connID string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[name]
	if !ok {
		return "", false
	}

	var other string
	member := false
	for _, id := range room.Members {
		if id == connID {
			member = true
		} else {
			other = id
		}
	}
	if !member || other == "" {
		return "", false
	}
	return other, true
}

// Leave removes the connection from the named room, deleting the room once
// its member count returns to zero. It returns the remaining member, if
// any, so the caller can notify it of the departure.
func (r *RoomRegistry) Leave(name, connID string) (other string, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, exists := r.rooms[name]
	if !exists {
		return "", false
	}

	members := room.Members[:0]
	for _, id := range room.Members {
		if id != connID {
			members = append(members, id)
		}
	}
	room.Members = members

	if len(room.Members) == 0 {
		delete(r.rooms, name)
		return "", false
	}
	return room.Members[0], true
}

// MemberCount reports the current member count of the named room.
func (r *RoomRegistry) MemberCount(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if room, ok := r.rooms[name]; ok {
		return len(room.Members)
	}
	return 0
}

// Snapshot returns room name → member count for the stats endpoint.
func (r *RoomRegistry) Snapshot() map[string]int {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]int, len(r.rooms))
	for name, room := range r.rooms {
		out[name] = len(room.Members)
	}
	return out
}
