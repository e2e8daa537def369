// Package server implements the rendezvous side of the protocol: the
// connection registry, the two-member room registry, and the relay router
// that brokers discovery and ferries signaling messages between the two
// members of a room.
package server

import (
	"context"

	"github.com/rondo-dev/rondo/internal/signal"
	"github.com/rondo-dev/rondo/internal/util"
)

// inbound pairs a decoded envelope with the client that sent it.
type inbound struct {
	client *Client
	env    signal.Envelope
}

// Hub is the single goroutine that owns all room mutations. Clients are
// registered, unregistered, and relayed through its channels, so every
// create-or-join / message / disconnect is applied atomically with respect
// to room membership.
type Hub struct {
	conns *ConnectionRegistry
	rooms *RoomRegistry

	register   chan *Client
	unregister chan *Client
	inbound    chan inbound

	clients map[string]*Client // connection id → client
}

// NewHub creates a hub with empty registries. Call Run to start it.
func NewHub() *Hub {
	return &Hub{
		conns:      NewConnectionRegistry(),
		rooms:      NewRoomRegistry(),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		inbound:    make(chan inbound, 64),
		clients:    make(map[string]*Client),
	}
}

// Rooms exposes the room registry for read-only endpoints.
func (h *Hub) Rooms() *RoomRegistry { return h.rooms }

// Run processes hub events until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case c := <-h.register:
			h.handleRegister(c)
		case c := <-h.unregister:
			h.handleUnregister(c)
		case in := <-h.inbound:
			h.handleInbound(in.client, in.env)
		case <-ctx.Done():
			return
		}
	}
}

func (h *Hub) handleRegister(c *Client) {
	h.clients[c.id] = c
	util.Stats.AddConnection()
	util.LogDebug("connection registered: %s", c.id)
}

// handleUnregister releases the connection's room slot and notifies the
// remaining member exactly as an explicit bye would, so an abrupt
// disconnect never leaves a half-occupied room behind.
func (h *Hub) handleUnregister(c *Client) {
	if _, ok := h.clients[c.id]; !ok {
		return // already unregistered
	}

	if room, ok := h.conns.RoomOf(c.id); ok {
		h.leaveRoom(c.id, room)
	}

	h.conns.Unregister(c.id)
	delete(h.clients, c.id)
	close(c.send)
	util.Stats.AddDisconnect()
	util.LogDebug("connection unregistered: %s", c.id)
}

func (h *Hub) handleInbound(c *Client, env signal.Envelope) {
	switch env.Event {
	case signal.EventCreateOrJoin:
		h.handleCreateOrJoin(c, env.Room)
	case signal.EventMessage:
		h.relayMessage(c, env)
	default:
		util.LogWarning("dropping unexpected %q envelope from %s", env.Event, c.id)
	}
}

// handleCreateOrJoin applies the rendezvous rules: the first member gets
// created, the second gets joined while the waiting creator gets join, and
// anyone else gets full.
func (h *Hub) handleCreateOrJoin(c *Client, room string) {
	if room == "" {
		util.LogWarning("create-or-join with empty room name from %s", c.id)
		return
	}

	// A connection holds at most one room. Requesting a different one
	// releases the old slot first, notifying its peer like a disconnect
	// would, so no room keeps a ghost member.
	if current, ok := h.conns.RoomOf(c.id); ok && current != room {
		h.leaveRoom(c.id, current)
		util.LogInfo("%s left room %q to request %q", c.id, current, room)
	}

	switch h.rooms.CreateOrJoin(room, c.id) {
	case RoomCreated:
		h.conns.SetRoom(c.id, room)
		h.unicast(c, signal.Envelope{Event: signal.EventCreated, Room: room, ConnID: c.id})
		util.Stats.AddRoomCreated()
		util.LogInfo("room %q created by %s", room, c.id)

	case RoomJoined:
		h.conns.SetRoom(c.id, room)
		h.sendToOther(c.id, signal.Envelope{Event: signal.EventJoin, Room: room})
		h.unicast(c, signal.Envelope{Event: signal.EventJoined, Room: room, ConnID: c.id})
		util.Stats.AddJoinGranted()
		util.LogInfo("room %q joined by %s", room, c.id)

	case RoomFull:
		h.unicast(c, signal.Envelope{Event: signal.EventFull, Room: room})
		util.Stats.AddJoinDenied()
		util.LogInfo("room %q full, rejecting %s", room, c.id)
	}
}

// relayMessage forwards a message envelope to the other member of the
// sender's room. Routing is by the sender's current membership, never by
// the room name the payload claims.
func (h *Hub) relayMessage(c *Client, env signal.Envelope) {
	room, ok := h.conns.RoomOf(c.id)
	if !ok {
		util.LogDebug("message from roomless connection %s dropped", c.id)
		return
	}

	other, ok := h.rooms.OtherMember(room, c.id)
	if !ok {
		return // alone in the room; nothing to relay
	}

	h.sendTo(other, signal.Envelope{Event: signal.EventMessage, Payload: env.Payload})
	util.Stats.AddRelayed()
}

// leaveRoom releases the connection's slot in room and notifies the
// remaining member with a synthesized bye. Shared by disconnects and
// room switches.
func (h *Hub) leaveRoom(connID, room string) {
	if other, remains := h.rooms.Leave(room, connID); remains {
		h.sendTo(other, signal.Bye().Wrap(""))
	}
	h.conns.SetRoom(connID, "")
}

// sendToOther delivers to the other member of the sender's room, if any.
func (h *Hub) sendToOther(senderID string, env signal.Envelope) {
	room, ok := h.conns.RoomOf(senderID)
	if !ok {
		return
	}
	if other, ok := h.rooms.OtherMember(room, senderID); ok {
		h.sendTo(other, env)
	}
}

// sendTo looks up a connection id and unicasts to it. Vanished targets
// drop silently — delivery is fire-and-forget.
func (h *Hub) sendTo(connID string, env signal.Envelope) {
	if c, ok := h.clients[connID]; ok {
		h.unicast(c, env)
	}
}

// unicast enqueues the envelope on the client's send channel without
// blocking the hub loop. A full buffer means the client has stalled; the
// envelope is dropped and the write pump will eventually tear it down.
func (h *Hub) unicast(c *Client, env signal.Envelope) {
	select {
	case c.send <- env:
	default:
		util.LogWarning("send buffer full for %s, dropping %q", c.id, env.Event)
	}
}
