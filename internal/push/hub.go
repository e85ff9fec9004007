// Package push implements the server half of the availability
// synchronization channel: a hub that fans versioned inventory snapshots out
// to every connected observer.
//
// Delivery is fire-and-forget per observer. Each session owns a bounded
// queue drained by its transport goroutine; when the queue overflows, the
// oldest queued snapshot is dropped, because the newer full snapshot
// supersedes it. The snapshot an observer finds once it drains its queue is
// therefore always the latest published state, and per-session delivery is
// monotonic by version.
package push

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/Priyansh-9021/Bike-Rental-System/internal/api/metrics"
	"github.com/Priyansh-9021/Bike-Rental-System/internal/core/domain"
)

const sessionQueueSize = 8

// Session is one registered observer. Its transport goroutine consumes
// Updates until the channel is closed by Hub.Deregister.
type Session struct {
	id    uint64
	queue chan domain.Snapshot
}

// Updates returns the stream of snapshots queued for this observer.
func (s *Session) Updates() <-chan domain.Snapshot {
	return s.queue
}

// Hub is the change notifier. It owns the observer set and the snapshot
// version counter. Publish never performs network I/O and never blocks on a
// slow observer, so the mutation path cannot be stalled by the fan-out.
type Hub struct {
	mu       sync.Mutex
	sessions map[uint64]*Session
	nextID   uint64
	version  uint64
	last     domain.Snapshot
	log      zerolog.Logger
}

func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		sessions: make(map[uint64]*Session),
		last:     domain.Snapshot{Bikes: []domain.Bike{}},
		log:      log,
	}
}

// Register adds an observer and immediately queues the current snapshot, so
// a newly connected client sees state without waiting for the next mutation.
func (h *Hub) Register() *Session {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	s := &Session{
		id:    h.nextID,
		queue: make(chan domain.Snapshot, sessionQueueSize),
	}
	h.sessions[s.id] = s
	s.queue <- h.last

	metrics.ObserversConnected.Inc()
	h.log.Debug().Uint64("session_id", s.id).Uint64("version", h.last.Version).Msg("observer registered")
	return s
}

// Deregister removes an observer and closes its queue. Safe to call once per
// session; the transport layer calls it when the connection drops.
func (h *Hub) Deregister(s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.sessions[s.id]; !ok {
		return
	}
	delete(h.sessions, s.id)
	close(s.queue)

	metrics.ObserversConnected.Dec()
	h.log.Debug().Uint64("session_id", s.id).Msg("observer deregistered")
}

// Publish stamps the next version onto bikes and queues the snapshot for
// every observer. The caller passes a copy of registry state; the hub never
// touches the registry.
func (h *Hub) Publish(bikes []domain.Bike) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.version++
	snap := domain.Snapshot{Version: h.version, Bikes: bikes}
	h.last = snap

	for _, s := range h.sessions {
		s.offer(snap)
	}

	metrics.SnapshotsPublishedTotal.Inc()
	h.log.Debug().Uint64("version", snap.Version).Int("observers", len(h.sessions)).Msg("snapshot published")
}

// Observers returns the number of currently registered sessions.
func (h *Hub) Observers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}

// offer enqueues without blocking. On a full queue the oldest entry is
// discarded; its state is contained in the newer snapshot.
func (s *Session) offer(snap domain.Snapshot) {
	for {
		select {
		case s.queue <- snap:
			return
		default:
		}
		select {
		case <-s.queue:
			metrics.SnapshotDropsTotal.Inc()
		default:
		}
	}
}
