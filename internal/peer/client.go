package peer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rondo-dev/rondo/internal/signal"
	"github.com/rondo-dev/rondo/internal/util"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
	queueSize      = 32
)

// Client manages the WebSocket connection to the rendezvous server. A
// read pump feeds Incoming; a write pump serializes Send calls and keeps
// the connection alive with pings.
type Client struct {
	conn     *websocket.Conn
	incoming chan signal.Envelope
	outgoing chan signal.Envelope
	done     chan struct{}
	once     sync.Once
}

// Dial connects to the server's /ws endpoint and starts the pumps.
func Dial(ctx context.Context, url string) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to signaling server: %w", err)
	}

	c := &Client{
		conn:     conn,
		incoming: make(chan signal.Envelope, queueSize),
		outgoing: make(chan signal.Envelope, queueSize),
		done:     make(chan struct{}),
	}

	conn.SetReadLimit(maxMessageSize)
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	go c.readPump()
	go c.writePump()

	return c, nil
}

// Send queues an envelope for delivery. It fails once the client closes.
func (c *Client) Send(env signal.Envelope) error {
	select {
	case c.outgoing <- env:
		return nil
	case <-c.done:
		return fmt.Errorf("signaling connection closed")
	}
}

// Incoming returns the channel of envelopes from the server. It is closed
// when the connection drops.
func (c *Client) Incoming() <-chan signal.Envelope {
	return c.incoming
}

// Close shuts the connection down. Safe to call more than once.
func (c *Client) Close() {
	c.once.Do(func() {
		close(c.done)
	})
}

func (c *Client) readPump() {
	defer func() {
		c.conn.Close()
		close(c.incoming)
	}()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))

	for {
		var env signal.Envelope
		if err := c.conn.ReadJSON(&env); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				util.LogDebug("signaling read error: %v", err)
			}
			return
		}

		select {
		case c.incoming <- env:
		case <-c.done:
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case env := <-c.outgoing:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(env); err != nil {
				util.LogDebug("signaling write error: %v", err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			// Flush queued envelopes (a trailing bye, typically) before
			// the close handshake.
			for {
				select {
				case env := <-c.outgoing:
					c.conn.SetWriteDeadline(time.Now().Add(writeWait))
					if err := c.conn.WriteJSON(env); err != nil {
						return
					}
				default:
					c.conn.SetWriteDeadline(time.Now().Add(writeWait))
					c.conn.WriteMessage(websocket.CloseMessage,
						websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
					return
				}
			}
		}
	}
}
