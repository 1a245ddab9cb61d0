package signaling

import (
	"encoding/json"
	"log/slog"

	"github.com/serenityapp/signaling/internal/metrics"
)

const roomCapacity = 2

// emitter delivers a server message to a connection. Delivery is best-effort;
// the registry never learns whether a message arrived.
type emitter interface {
	emit(connID string, msg *serverMessage)
}

type joinResult int

const (
	joinRejected joinResult = iota
	joinWaiting
	joinPaired
)

type room struct {
	// members keeps join order; the first joiner initiates the call when the
	// second arrives.
	members []string
}

func (r *room) contains(connID string) bool {
	for _, id := range r.members {
		if id == connID {
			return true
		}
	}
	return false
}

// registry owns every room. It is not safe for concurrent use; the hub
// goroutine is its only caller.
type registry struct {
	log   *slog.Logger
	emit  emitter
	stats *metrics.Metrics

	rooms map[string]*room
}

func newRegistry(log *slog.Logger, emit emitter, stats *metrics.Metrics) *registry {
	return &registry{
		log:   log,
		emit:  emit,
		stats: stats,
		rooms: make(map[string]*room),
	}
}

// join adds connID to the room, creating it on first use. At capacity the
// joiner gets room-full and the room is untouched. A connection already in
// the room is left where it is.
func (g *registry) join(roomID, connID string) joinResult {
	r := g.rooms[roomID]
	if r == nil {
		r = &room{}
		g.rooms[roomID] = r
		g.stats.Inc(metrics.RoomsCreated)
	}

	if r.contains(connID) {
		if len(r.members) == 1 {
			return joinWaiting
		}
		return joinPaired
	}

	if len(r.members) >= roomCapacity {
		g.emit.emit(connID, &serverMessage{Event: eventRoomFull})
		g.stats.Inc(metrics.JoinsRejectedFull)
		g.log.Debug("join rejected, room full", "room_id", roomID, "conn_id", connID)
		return joinRejected
	}

	r.members = append(r.members, connID)
	g.log.Info("joined room", "room_id", roomID, "conn_id", connID, "members", len(r.members))

	if len(r.members) == 1 {
		g.emit.emit(connID, &serverMessage{Event: eventWaitingForPeer})
		g.stats.Inc(metrics.JoinsWaiting)
		return joinWaiting
	}

	// Second member: the earlier joiner creates the offer, the newcomer
	// learns a peer was already waiting.
	g.emit.emit(r.members[0], &serverMessage{Event: eventInitiateCall})
	g.emit.emit(connID, &serverMessage{Event: eventPeerJoined})
	g.stats.Inc(metrics.JoinsPaired)
	return joinPaired
}

// leave removes connID from every room that contains it, notifying the
// remaining member and deleting rooms left empty. Calling it for an unknown
// connection is a no-op.
func (g *registry) leave(connID string) {
	for roomID, r := range g.rooms {
		if !r.contains(connID) {
			continue
		}

		kept := r.members[:0]
		for _, id := range r.members {
			if id != connID {
				kept = append(kept, id)
			}
		}
		r.members = kept

		for _, id := range r.members {
			g.emit.emit(id, &serverMessage{Event: eventPeerDisconnected})
		}
		g.log.Info("left room", "room_id", roomID, "conn_id", connID, "members", len(r.members))

		if len(r.members) == 0 {
			delete(g.rooms, roomID)
			g.stats.Inc(metrics.RoomsDeleted)
		}
	}
}

// relay forwards a signaling payload to every room member except the sender.
// Missing rooms and rooms without another member drop the message silently;
// the sender receives no feedback either way.
func (g *registry) relay(roomID, from, event string, payload json.RawMessage) {
	r := g.rooms[roomID]
	if r == nil {
		g.stats.Inc(metrics.RelaysDropped)
		g.log.Debug("relay dropped, no such room", "room_id", roomID, "event", event, "conn_id", from)
		return
	}

	forwarded := 0
	for _, id := range r.members {
		if id == from {
			continue
		}
		g.emit.emit(id, &serverMessage{Event: event, Payload: payload})
		forwarded++
	}

	if forwarded == 0 {
		g.stats.Inc(metrics.RelaysDropped)
		return
	}
	g.stats.Add(metrics.MessagesRelayed, uint64(forwarded))
}

// roomCount reports the number of live rooms.
func (g *registry) roomCount() int {
	return len(g.rooms)
}
