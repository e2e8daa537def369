package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/rondo-dev/rondo/internal/signal"
	"github.com/rondo-dev/rondo/internal/util"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// NewRouter builds the HTTP surface: the signaling WebSocket endpoint plus
// health and room-stats endpoints.
func NewRouter(hub *Hub) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	r.GET("/rooms", func(c *gin.Context) {
		c.JSON(http.StatusOK, hub.Rooms().Snapshot())
	})

	r.GET("/ws", func(c *gin.Context) {
		serveWS(hub, c.Writer, c.Request)
	})

	return r
}

// serveWS upgrades the request, registers the connection with the hub, and
// starts its pumps.
func serveWS(hub *Hub, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		util.LogWarning("failed to upgrade connection: %v", err)
		return
	}

	client := &Client{
		id:   hub.conns.Register(),
		hub:  hub,
		conn: conn,
		send: make(chan signal.Envelope, sendBufferSize),
	}

	hub.register <- client

	go client.writePump()
	go client.readPump()
}
