package signaling

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/serenityapp/signaling/internal/config"
	"github.com/serenityapp/signaling/internal/origin"
	"github.com/serenityapp/signaling/internal/ratelimit"
)

// WebSocketServer upgrades browser connections and hands them to the hub.
//
// The origin allow-list is enforced before the upgrade, so a disallowed
// browser sees a plain 403 rather than a failed WebSocket handshake mid-
// protocol.
type WebSocketServer struct {
	cfg      config.Config
	hub      *Hub
	log      *slog.Logger
	clock    ratelimit.Clock
	upgrader websocket.Upgrader
}

func NewWebSocketServer(cfg config.Config, hub *Hub, log *slog.Logger) *WebSocketServer {
	s := &WebSocketServer{
		cfg:   cfg,
		hub:   hub,
		log:   log,
		clock: ratelimit.RealClock{},
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     s.checkOrigin,
	}
	return s
}

func (s *WebSocketServer) checkOrigin(r *http.Request) bool {
	originHeader := strings.TrimSpace(r.Header.Get("Origin"))
	if originHeader == "" {
		// Non-browser clients.
		return true
	}
	normalizedOrigin, originHost, ok := origin.NormalizeHeader(originHeader)
	if !ok {
		return false
	}
	return origin.IsAllowed(normalizedOrigin, originHost, r.Host, s.cfg.AllowedOrigins)
}

func (s *WebSocketServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error (403 on origin rejection).
		s.log.Debug("upgrade failed", "err", err, "remote_addr", r.RemoteAddr)
		return
	}

	limiter := ratelimit.NewTokenBucket(s.clock,
		int64(s.cfg.MaxMessagesPerSecond), int64(s.cfg.MaxMessagesPerSecond))

	c := newClient(uuid.NewString(), s.hub, conn, s.log, limiter,
		s.cfg.WSIdleTimeout, s.cfg.WSPingInterval, s.cfg.MaxMessageBytes)

	select {
	case s.hub.register <- c:
	case <-s.hub.done:
		writeClose(conn, websocket.CloseGoingAway, "server shutting down")
		conn.Close()
		return
	}

	go c.writePump()
	c.readPump()
}
