package ws

import (
	"anongram/relay"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Clients connect from file:// and arbitrary origins; there is no
	// cookie-based session to protect.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handler upgrades HTTP requests to websocket connections and plugs the
// resulting client into the registry and the relay.
type Handler struct {
	log        *slog.Logger
	relay      *relay.Relay
	registry   *relay.Registry
	bufferSize int
	timeouts   Timeouts
}

func NewHandler(log *slog.Logger, r *relay.Relay, registry *relay.Registry, bufferSize int, timeouts Timeouts) *Handler {
	return &Handler{
		log:        log,
		relay:      r,
		registry:   registry,
		bufferSize: bufferSize,
		timeouts:   timeouts,
	}
}

// Serve is the gin endpoint for /ws. The upgrade failure path is handled by
// the upgrader itself (it writes the HTTP error); everything after the
// upgrade runs on the connection's own goroutines.
func (h *Handler) Serve(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("Websocket upgrade failed", "remote", c.Request.RemoteAddr, "error", err)
		return
	}

	client := NewClient(conn, h.relay, h.log, h.bufferSize, h.timeouts)
	client.id = h.registry.Register(client)

	go client.writePump()
	go client.readPump()
}
