// Package signal defines the wire protocol spoken between peers and the
// rendezvous server: the outer Envelope frame carried over the WebSocket,
// and the Message payloads relayed verbatim between the two members of a
// room.
package signal

import "encoding/json"

// Event identifies the kind of envelope.
type Event string

const (
	// Client → server.
	EventCreateOrJoin Event = "create-or-join"

	// Server → client.
	EventCreated Event = "created" // requester is the sole member
	EventJoin    Event = "join"    // a second member has arrived (sent to the creator)
	EventJoined  Event = "joined"  // requester is the second member
	EventFull    Event = "full"    // room already has two members

	// Bidirectional relay of a Message payload.
	EventMessage Event = "message"
)

// Envelope is the JSON frame exchanged over the signaling WebSocket.
// Room accompanies outgoing message frames so the server never has to
// duplicate per-connection session state; the relayed copy delivered to
// the other member carries the payload only — the server routes by the
// sender's current room membership, not by payload content.
type Envelope struct {
	Event   Event           `json:"event"`
	Room    string          `json:"room,omitempty"`
	ConnID  string          `json:"connId,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// CreateOrJoin builds the rendezvous request for the given room name.
func CreateOrJoin(room string) Envelope {
	return Envelope{Event: EventCreateOrJoin, Room: room}
}
