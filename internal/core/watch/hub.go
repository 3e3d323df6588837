package watch

import "sync"

// Collection names known to the hub
const (
	CollectionPNMs      = "pnms"
	CollectionReferrals = "referrals"
)

// Hub fans collection-change notifications out to standing subscribers.
// A subscriber holds a signal channel: every successful write to the
// collection raises the signal, and the subscriber re-reads the full
// collection in response. Signals are coalesced (buffer of one), so a slow
// subscriber that missed pushes A and B still wakes up exactly once and
// loads the latest state.
type Hub struct {
	mu     sync.Mutex
	subs   map[string]map[uint64]chan struct{}
	nextID uint64
}

// NewHub creates a new subscription hub
func NewHub() *Hub {
	return &Hub{
		subs: make(map[string]map[uint64]chan struct{}),
	}
}

// Subscribe registers a listener on a collection. The returned channel
// receives a signal after every change until the unsubscribe func is
// called. Failing to unsubscribe leaks the listener.
func (h *Hub) Subscribe(collection string) (<-chan struct{}, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.subs[collection] == nil {
		h.subs[collection] = make(map[uint64]chan struct{})
	}

	id := h.nextID
	h.nextID++

	ch := make(chan struct{}, 1)
	h.subs[collection][id] = ch

	unsubscribe := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if listeners, ok := h.subs[collection]; ok {
			if _, ok := listeners[id]; ok {
				delete(listeners, id)
				close(ch)
			}
			if len(listeners) == 0 {
				delete(h.subs, collection)
			}
		}
	}

	return ch, unsubscribe
}

// Notify signals every subscriber of a collection. Non-blocking: a
// subscriber that already has a pending signal is not signalled again.
func (h *Hub) Notify(collection string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, ch := range h.subs[collection] {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// SubscriberCount returns the number of active listeners on a collection
func (h *Hub) SubscriberCount(collection string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[collection])
}
