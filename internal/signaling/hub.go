package signaling

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/gorilla/websocket"

	"github.com/serenityapp/signaling/internal/metrics"
)

// Hub is the single goroutine that owns every room and connection. All state
// transitions happen inside Run's loop, so the registry needs no locking and
// events within one connection are handled in order.
type Hub struct {
	log   *slog.Logger
	stats *metrics.Metrics

	registry *registry
	clients  map[string]*client

	register   chan *client
	unregister chan *client
	inbound    chan inboundMessage

	running atomic.Bool
	done    chan struct{}
}

type inboundMessage struct {
	from *client
	msg  clientMessage
}

func NewHub(log *slog.Logger, stats *metrics.Metrics) *Hub {
	h := &Hub{
		log:        log,
		stats:      stats,
		clients:    make(map[string]*client),
		register:   make(chan *client),
		unregister: make(chan *client),
		inbound:    make(chan inboundMessage),
		done:       make(chan struct{}),
	}
	h.registry = newRegistry(log, h, stats)
	return h
}

// Run processes hub events until ctx is cancelled, then disconnects every
// client. It must be called exactly once.
func (h *Hub) Run(ctx context.Context) {
	h.running.Store(true)
	defer func() {
		h.running.Store(false)
		h.closeAll()
		close(h.done)
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case c := <-h.register:
			h.clients[c.id] = c
			h.stats.Inc(metrics.ConnectionsOpened)
			h.log.Info("connection opened", "conn_id", c.id, "remote_addr", c.remoteAddr)

		case c := <-h.unregister:
			if h.clients[c.id] != c {
				// Already unregistered; both pumps report the same exit.
				continue
			}
			delete(h.clients, c.id)
			h.registry.leave(c.id)
			close(c.send)
			h.stats.Inc(metrics.ConnectionsClosed)
			h.log.Info("connection closed", "conn_id", c.id)

		case in := <-h.inbound:
			h.dispatch(in.from, in.msg)
		}
	}
}

// Ready reports whether the hub loop is processing events; the HTTP server
// wires it into /readyz.
func (h *Hub) Ready() error {
	if !h.running.Load() {
		return errors.New("signaling hub not running")
	}
	return nil
}

func (h *Hub) dispatch(from *client, msg clientMessage) {
	switch msg.Event {
	case eventJoinRoom:
		h.registry.join(msg.Room, from.id)
	case eventOffer, eventAnswer, eventICECandidate:
		h.registry.relay(msg.Room, from.id, msg.Event, msg.Payload)
	}
}

// emit queues msg for connID without blocking. A client whose send queue is
// full loses the message; a slow reader must never stall the hub loop.
func (h *Hub) emit(connID string, msg *serverMessage) {
	c := h.clients[connID]
	if c == nil {
		return
	}
	select {
	case c.send <- msg:
	default:
		h.stats.Inc(metrics.SendsDropped)
		h.log.Warn("send queue full, dropping message", "conn_id", connID, "event", msg.Event)
	}
}

func (h *Hub) closeAll() {
	for id, c := range h.clients {
		writeClose(c.conn, websocket.CloseGoingAway, "server shutting down")
		close(c.send)
		delete(h.clients, id)
	}
}
