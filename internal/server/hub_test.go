package server

import (
	"testing"

	"github.com/rondo-dev/rondo/internal/signal"
)

// The hub handlers are exercised directly — the Run loop only serializes
// them, so driving them synchronously tests the same code paths without
// goroutine choreography.

func newTestHub() *Hub {
	return NewHub()
}

func newTestClient(h *Hub) *Client {
	c := &Client{
		id:   h.conns.Register(),
		hub:  h,
		send: make(chan signal.Envelope, sendBufferSize),
	}
	h.handleRegister(c)
	return c
}

// recv pops the next delivered envelope or fails the test.
func recv(t *testing.T, c *Client) signal.Envelope {
	t.Helper()
	select {
	case env := <-c.send:
		return env
	default:
		t.Fatalf("no envelope delivered to %s", c.id)
		return signal.Envelope{}
	}
}

func assertEmpty(t *testing.T, c *Client) {
	t.Helper()
	select {
	case env := <-c.send:
		t.Fatalf("unexpected %q envelope delivered to %s", env.Event, c.id)
	default:
	}
}

func join(t *testing.T, h *Hub, c *Client, room string) {
	t.Helper()
	h.handleCreateOrJoin(c, room)
}

// TestRendezvousFlow replays the canonical scenario: A creates, B joins
// (A notified), C is rejected.
func TestRendezvousFlow(t *testing.T) {
	h := newTestHub()
	a := newTestClient(h)
	b := newTestClient(h)
	c := newTestClient(h)

	join(t, h, a, "r1")
	env := recv(t, a)
	if env.Event != signal.EventCreated || env.Room != "r1" || env.ConnID != a.id {
		t.Fatalf("creator reply: got %+v", env)
	}

	join(t, h, b, "r1")
	if env := recv(t, a); env.Event != signal.EventJoin || env.Room != "r1" {
		t.Fatalf("creator notification: got %+v", env)
	}
	if env := recv(t, b); env.Event != signal.EventJoined || env.Room != "r1" || env.ConnID != b.id {
		t.Fatalf("joiner reply: got %+v", env)
	}

	join(t, h, c, "r1")
	if env := recv(t, c); env.Event != signal.EventFull || env.Room != "r1" {
		t.Fatalf("rejection reply: got %+v", env)
	}
	assertEmpty(t, a)
	assertEmpty(t, b)

	if n := h.rooms.MemberCount("r1"); n != 2 {
		t.Fatalf("member count after rejection: got %d, want 2", n)
	}
}

// TestRelayReachesOnlyTheOtherMember verifies exclude-sender relay.
func TestRelayReachesOnlyTheOtherMember(t *testing.T) {
	h := newTestHub()
	a := newTestClient(h)
	b := newTestClient(h)
	join(t, h, a, "r1")
	join(t, h, b, "r1")
	for len(a.send) > 0 {
		<-a.send
	}
	for len(b.send) > 0 {
		<-b.send
	}

	h.handleInbound(a, signal.Offer("sdp-offer").Wrap("r1"))

	env := recv(t, b)
	if env.Event != signal.EventMessage {
		t.Fatalf("relayed envelope: got %q, want message", env.Event)
	}
	msg, err := signal.DecodeMessage(env.Payload)
	if err != nil {
		t.Fatalf("decode relayed payload: %v", err)
	}
	if msg.Type != signal.MsgTypeOffer || msg.SDP != "sdp-offer" {
		t.Fatalf("relayed message: got %+v", msg)
	}

	assertEmpty(t, a) // the sender never hears its own message
}

// TestRelayAloneIsNoop verifies messages from a lone member go nowhere.
func TestRelayAloneIsNoop(t *testing.T) {
	h := newTestHub()
	a := newTestClient(h)
	join(t, h, a, "r1")
	for len(a.send) > 0 {
		<-a.send
	}

	h.handleInbound(a, signal.GotMedia().Wrap("r1"))
	assertEmpty(t, a)
}

// TestRelayFromRoomlessConnectionDropped verifies that a message from a
// connection that never joined a room is silently dropped.
func TestRelayFromRoomlessConnectionDropped(t *testing.T) {
	h := newTestHub()
	a := newTestClient(h)
	b := newTestClient(h)
	join(t, h, b, "r1")
	for len(b.send) > 0 {
		<-b.send
	}

	h.handleInbound(a, signal.Offer("x").Wrap("r1"))
	assertEmpty(t, b)
}

// TestDisconnectReleasesSlotAndNotifiesPeer verifies the disconnect path
// behaves exactly like an explicit bye: the peer is notified and the slot
// becomes available again.
func TestDisconnectReleasesSlotAndNotifiesPeer(t *testing.T) {
	h := newTestHub()
	a := newTestClient(h)
	b := newTestClient(h)
	join(t, h, a, "r1")
	join(t, h, b, "r1")
	for len(a.send) > 0 {
		<-a.send
	}
	for len(b.send) > 0 {
		<-b.send
	}

	h.handleUnregister(a)

	env := recv(t, b)
	if env.Event != signal.EventMessage {
		t.Fatalf("peer notification: got %q, want message", env.Event)
	}
	msg, err := signal.DecodeMessage(env.Payload)
	if err != nil {
		t.Fatalf("decode notification: %v", err)
	}
	if msg.Type != signal.MsgTypeBye {
		t.Fatalf("notification type: got %q, want bye", msg.Type)
	}

	// The slot is free again.
	c := newTestClient(h)
	join(t, h, c, "r1")
	if env := recv(t, c); env.Event != signal.EventJoined {
		t.Fatalf("rejoin after disconnect: got %q, want joined", env.Event)
	}

	// A repeated unregister for the same client is ignored.
	h.handleUnregister(a)
}

// TestSwitchingRoomsReleasesTheOldSlot verifies that a second
// create-or-join for a different room behaves like leaving the first:
// the old peer is notified with a bye and the old slot is reclaimed.
func TestSwitchingRoomsReleasesTheOldSlot(t *testing.T) {
	h := newTestHub()
	a := newTestClient(h)
	b := newTestClient(h)
	join(t, h, a, "r1")
	join(t, h, b, "r1")
	for len(a.send) > 0 {
		<-a.send
	}
	for len(b.send) > 0 {
		<-b.send
	}

	join(t, h, a, "r2")

	if env := recv(t, a); env.Event != signal.EventCreated || env.Room != "r2" {
		t.Fatalf("switch reply: got %+v, want created r2", env)
	}

	env := recv(t, b)
	if env.Event != signal.EventMessage {
		t.Fatalf("old-peer notification: got %q, want message", env.Event)
	}
	msg, err := signal.DecodeMessage(env.Payload)
	if err != nil {
		t.Fatalf("decode notification: %v", err)
	}
	if msg.Type != signal.MsgTypeBye {
		t.Fatalf("notification type: got %q, want bye", msg.Type)
	}

	if n := h.rooms.MemberCount("r1"); n != 1 {
		t.Fatalf("r1 member count after switch: got %d, want 1", n)
	}

	// b is alone now; its messages no longer reach a.
	h.handleInbound(b, signal.Offer("x").Wrap("r1"))
	assertEmpty(t, a)

	// The freed slot admits a new joiner who pairs with b.
	c := newTestClient(h)
	join(t, h, c, "r1")
	if env := recv(t, c); env.Event != signal.EventJoined {
		t.Fatalf("rejoin after switch: got %q, want joined", env.Event)
	}
}

// TestSwitchThenDisconnectLeavesNothingBehind verifies a lone member who
// switches rooms and then disconnects holds no slot in either room.
func TestSwitchThenDisconnectLeavesNothingBehind(t *testing.T) {
	h := newTestHub()
	a := newTestClient(h)
	join(t, h, a, "r1")
	join(t, h, a, "r2")

	if n := h.rooms.MemberCount("r1"); n != 0 {
		t.Fatalf("r1 member count after a moved to r2: got %d, want 0", n)
	}

	h.handleUnregister(a)

	if n := h.rooms.MemberCount("r2"); n != 0 {
		t.Fatalf("r2 member count after disconnect: got %d, want 0", n)
	}

	// Both names are reusable from scratch.
	b := newTestClient(h)
	join(t, h, b, "r1")
	if env := recv(t, b); env.Event != signal.EventCreated {
		t.Fatalf("recreate r1: got %q, want created", env.Event)
	}
}

// TestLastDisconnectDeletesRoom verifies the name is reusable once both
// members are gone.
func TestLastDisconnectDeletesRoom(t *testing.T) {
	h := newTestHub()
	a := newTestClient(h)
	b := newTestClient(h)
	join(t, h, a, "r1")
	join(t, h, b, "r1")

	h.handleUnregister(a)
	h.handleUnregister(b)

	if n := h.rooms.MemberCount("r1"); n != 0 {
		t.Fatalf("member count after both left: got %d, want 0", n)
	}

	c := newTestClient(h)
	join(t, h, c, "r1")
	if env := recv(t, c); env.Event != signal.EventCreated {
		t.Fatalf("recreate after empty: got %q, want created", env.Event)
	}
}
