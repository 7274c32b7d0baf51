// Package broadcast fans session and appliance events out to every
// connected observer.
package broadcast

import (
	"sync"

	"github.com/hammamikhairi/hearth/internal/domain"
	"github.com/hammamikhairi/hearth/internal/logger"
)

// Compile-time interface check.
var _ domain.Publisher = (*Hub)(nil)

// subscriberBuffer is how many undelivered events a subscriber may lag
// behind before it is evicted.
const subscriberBuffer = 32

// Subscriber is one registered observer. Events arrive on C in publish
// order; the channel is closed when the subscriber is evicted or the hub
// shuts down.
type Subscriber struct {
	ch chan domain.Event
}

// C returns the subscriber's event channel.
func (s *Subscriber) C() <-chan domain.Event {
	return s.ch
}

// Hub is the fan-out registry. Delivery is fire-and-forget: each
// subscriber has its own buffered channel, and a subscriber whose buffer
// is full is dropped so it can never stall the others.
type Hub struct {
	log *logger.Logger

	mu     sync.Mutex
	subs   map[*Subscriber]struct{}
	closed bool
}

// NewHub creates an empty hub.
func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		log:  log,
		subs: make(map[*Subscriber]struct{}),
	}
}

// Subscribe registers a new observer. Returns a drained, closed
// subscriber if the hub has already shut down.
func (h *Hub) Subscribe() *Subscriber {
	sub := &Subscriber{ch: make(chan domain.Event, subscriberBuffer)}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		close(sub.ch)
		return sub
	}
	h.subs[sub] = struct{}{}
	h.log.Debug("observer subscribed (total=%d)", len(h.subs))
	return sub
}

// Unsubscribe removes an observer and closes its channel. Idempotent.
func (h *Hub) Unsubscribe(sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.subs[sub]; !ok {
		return
	}
	delete(h.subs, sub)
	close(sub.ch)
	h.log.Debug("observer unsubscribed (total=%d)", len(h.subs))
}

// Publish delivers an event to every current subscriber. Never blocks: a
// subscriber that cannot keep up is evicted on the spot.
func (h *Hub) Publish(ev domain.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}

	for sub := range h.subs {
		select {
		case sub.ch <- ev:
		default:
			delete(h.subs, sub)
			close(sub.ch)
			h.log.Warn("evicted slow observer (total=%d)", len(h.subs))
		}
	}
}

// Subscribers returns the current observer count.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Close evicts every subscriber and makes further publishes no-ops.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	for sub := range h.subs {
		delete(h.subs, sub)
		close(sub.ch)
	}
	h.log.Debug("hub closed")
}
