package signaling

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"github.com/serenityapp/signaling/internal/metrics"
	"github.com/serenityapp/signaling/internal/ratelimit"
)

const (
	writeWait     = 10 * time.Second
	sendQueueSize = 256
)

// client is one WebSocket connection. The read pump feeds parsed messages to
// the hub; the write pump drains the send queue and keeps the connection
// alive with pings. Only the hub touches any room state.
type client struct {
	id         string
	remoteAddr string

	hub  *Hub
	conn *websocket.Conn
	log  *slog.Logger

	send    chan *serverMessage
	limiter *ratelimit.TokenBucket

	idleTimeout  time.Duration
	pingInterval time.Duration
	maxMsgBytes  int64
}

func newClient(id string, hub *Hub, conn *websocket.Conn, log *slog.Logger, limiter *ratelimit.TokenBucket, idleTimeout, pingInterval time.Duration, maxMsgBytes int64) *client {
	return &client{
		id:           id,
		remoteAddr:   conn.RemoteAddr().String(),
		hub:          hub,
		conn:         conn,
		log:          log.With("conn_id", id),
		send:         make(chan *serverMessage, sendQueueSize),
		limiter:      limiter,
		idleTimeout:  idleTimeout,
		pingInterval: pingInterval,
		maxMsgBytes:  maxMsgBytes,
	}
}

// readPump reads frames until the connection dies or misbehaves, then
// unregisters the client. Exactly one unregister reaches the hub no matter
// how the two pumps exit.
func (c *client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(c.maxMsgBytes)
	_ = c.conn.SetReadDeadline(time.Now().Add(c.idleTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.idleTimeout))
	})

	for {
		msgType, data, err := c.conn.ReadMessage()
		if err != nil {
			if errors.Is(err, websocket.ErrReadLimit) {
				c.hub.stats.Inc(metrics.ProtocolErrors)
				c.log.Warn("message exceeds size limit")
			} else if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.log.Debug("read failed", "err", err)
			}
			return
		}
		if msgType != websocket.TextMessage {
			c.hub.stats.Inc(metrics.ProtocolErrors)
			writeClose(c.conn, websocket.CloseUnsupportedData, "expected text message")
			return
		}

		if !c.limiter.Allow() {
			c.hub.stats.Inc(metrics.MessagesRateLimited)
			c.log.Warn("message rate limit exceeded")
			writeClose(c.conn, websocket.ClosePolicyViolation, "rate limit exceeded")
			return
		}

		msg, err := parseClientMessage(data)
		if err != nil {
			c.hub.stats.Inc(metrics.ProtocolErrors)
			c.log.Warn("invalid message", "err", err)
			writeClose(c.conn, websocket.CloseUnsupportedData, "invalid message")
			return
		}

		select {
		case c.hub.inbound <- inboundMessage{from: c, msg: msg}:
		case <-c.hub.done:
			return
		}
	}
}

// writePump serializes queued messages onto the socket and pings on an
// interval. It exits when the hub closes the send queue or a write fails.
func (c *client) writePump() {
	ticker := time.NewTicker(c.pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				writeClose(c.conn, websocket.CloseNormalClosure, "")
				return
			}
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(msg); err != nil {
				c.log.Debug("write failed", "err", err)
				return
			}

		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

func writeClose(conn *websocket.Conn, code int, reason string) {
	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), time.Now().Add(writeWait))
}
