// Package ws binds gorilla websocket connections to the relay: one client per
// connection, a read pump feeding inbound frames to the relay and a write pump
// draining the buffered outbound queue.
package ws

import (
	"anongram/errors"
	"anongram/relay"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

const (
	maxInboundFrameSize = 64 * 1024
)

// Timeouts groups the per-connection deadlines. PingPeriod must stay below
// PongWait or the server pings too late to keep the read deadline alive.
type Timeouts struct {
	WriteWait time.Duration
	PongWait  time.Duration
}

func (t Timeouts) pingPeriod() time.Duration {
	return t.PongWait * 9 / 10
}

// Client wraps one websocket connection. It implements contract.OutboundSink:
// Deliver enqueues without blocking and reports ErrSlowConsumer when the
// buffer is full, leaving it to the read pump teardown to reap the connection.
type Client struct {
	conn     *websocket.Conn
	relay    *relay.Relay
	log      *slog.Logger
	timeouts Timeouts

	id     relay.ConnID
	send   chan []byte
	done   chan struct{}
	closed atomic.Bool
}

func NewClient(conn *websocket.Conn, r *relay.Relay, log *slog.Logger, bufferSize int, timeouts Timeouts) *Client {
	return &Client{
		conn:     conn,
		relay:    r,
		log:      log,
		timeouts: timeouts,
		send:     make(chan []byte, bufferSize),
		done:     make(chan struct{}),
	}
}

// Deliver queues a payload for the write pump. It never blocks: a full buffer
// means the consumer is not keeping up, and the payload is dropped for this
// client only. The send channel is never closed, so a delivery racing the
// teardown at worst enqueues a payload nobody will drain.
func (c *Client) Deliver(payload []byte) error {
	if c.closed.Load() {
		return errors.ErrSinkClosed
	}
	select {
	case c.send <- payload:
		return nil
	default:
		return errors.ErrSlowConsumer
	}
}

func (c *Client) Open() bool {
	return !c.closed.Load()
}

// readPump consumes frames until the peer goes away, handing each one to the
// relay. It owns connection teardown: whatever ends the loop, the connection
// is unregistered exactly once and the write pump is released.
func (c *Client) readPump() {
	defer func() {
		c.closed.Store(true)
		c.relay.HandleDisconnect(c.id)
		close(c.done)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxInboundFrameSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(c.timeouts.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.timeouts.PongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Debug("Read pump ended", "conn_id", c.id, "error", err)
			}
			return
		}
		c.relay.HandleInbound(c.id, raw)
	}
}

// writePump drains the send buffer and keeps the connection alive with
// periodic pings. It exits when the send channel closes or a write fails.
func (c *Client) writePump() {
	ticker := time.NewTicker(c.timeouts.pingPeriod())
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case payload := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.timeouts.WriteWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.timeouts.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.timeouts.WriteWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}
