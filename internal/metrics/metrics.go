package metrics

import "sync"

// Counter names recorded by the signaling hub.
const (
	ConnectionsOpened   = "connections_opened"
	ConnectionsClosed   = "connections_closed"
	RoomsCreated        = "rooms_created"
	RoomsDeleted        = "rooms_deleted"
	JoinsWaiting        = "joins_waiting"
	JoinsPaired         = "joins_paired"
	JoinsRejectedFull   = "joins_rejected_full"
	MessagesRelayed     = "messages_relayed"
	RelaysDropped       = "relays_dropped"
	SendsDropped        = "sends_dropped"
	MessagesRateLimited = "messages_rate_limited"
	ProtocolErrors      = "protocol_errors"
)

// Metrics is a minimal, concurrency-safe counter registry.
//
// The signaling server is small enough that a full metrics backend would be
// overkill; these counters keep the hub observable and testable, and the
// /metrics route exposes them for scraping.
type Metrics struct {
	mu sync.Mutex
	m  map[string]uint64
}

func New() *Metrics {
	return &Metrics{
		m: make(map[string]uint64),
	}
}

func (m *Metrics) Inc(name string) {
	m.Add(name, 1)
}

func (m *Metrics) Add(name string, delta uint64) {
	m.mu.Lock()
	m.m[name] += delta
	m.mu.Unlock()
}

func (m *Metrics) Get(name string) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.m[name]
}

// Snapshot returns a copy of all counters.
func (m *Metrics) Snapshot() map[string]uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]uint64, len(m.m))
	for k, v := range m.m {
		out[k] = v
	}
	return out
}
