package server

import (
	"time"

	"github.com/gorilla/websocket"

	"github.com/rondo-dev/rondo/internal/signal"
	"github.com/rondo-dev/rondo/internal/util"
)

const (
	// Time allowed to write an envelope to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum envelope size allowed from a peer. 64 KB comfortably holds
	// the largest SDP blobs seen in the wild.
	maxMessageSize = 64 * 1024

	// Outbound envelope buffer per connection.
	sendBufferSize = 32
)

// Client wraps one signaling WebSocket connection on the server side.
// The hub owns its registration; the two pumps own the socket.
type Client struct {
	id   string
	hub  *Hub
	conn *websocket.Conn
	send chan signal.Envelope
}

// readPump reads envelopes from the socket into the hub. It runs in a
// per-connection goroutine; all reads happen here so there is at most one
// reader per connection.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var env signal.Envelope
		if err := c.conn.ReadJSON(&env); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				util.LogDebug("read error from %s: %v", c.id, err)
			}
			return
		}
		c.hub.inbound <- inbound{client: c, env: env}
	}
}

// writePump drains the send channel onto the socket and keeps the
// connection alive with pings. All writes happen here so there is at most
// one writer per connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case env, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel during unregister.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(env); err != nil {
				util.LogDebug("write error to %s: %v", c.id, err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
