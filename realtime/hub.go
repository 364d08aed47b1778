package realtime

import (
	"sync"

	"github.com/quickbid/quickbid/auction"
)

// Hub fans engine events out to websocket subscribers, keyed by auction id.
// Delivery is best-effort: a subscriber that cannot keep up has the event
// dropped and is expected to re-fetch state. Events for one auction are
// published in the order their state changes were committed.
type Hub struct {
	mu     sync.Mutex
	subs   map[uint]map[int]chan auction.Event
	nextID int
}

func NewHub() *Hub {
	return &Hub{subs: make(map[uint]map[int]chan auction.Event)}
}

func (h *Hub) Publish(auctionID uint, event auction.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs[auctionID] {
		select {
		case ch <- event:
		default:
			// slow subscriber, drop; the next state fetch catches it up
		}
	}
}

func (h *Hub) Subscribe(auctionID uint) (int, <-chan auction.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs[auctionID] == nil {
		h.subs[auctionID] = make(map[int]chan auction.Event)
	}
	h.nextID++
	ch := make(chan auction.Event, 64)
	h.subs[auctionID][h.nextID] = ch
	return h.nextID, ch
}

func (h *Hub) Unsubscribe(auctionID uint, id int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if ch, ok := h.subs[auctionID][id]; ok {
		delete(h.subs[auctionID], id)
		close(ch)
	}
}
