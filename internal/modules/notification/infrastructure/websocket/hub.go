package websocket

import (
	"log"
	"sync"

	"github.com/google/uuid"
)

// Hub owns the registry of connected clients keyed by recipient. A user may
// hold several connections at once (multiple devices/tabs), so each key maps
// to a set of clients.
//
// Delivery is best-effort: the durable record lives in the notification
// store, the hub only shortcuts latency for recipients that happen to be
// online. A send never blocks and never fails the caller.
type Hub struct {
	mu      sync.RWMutex
	clients map[uuid.UUID]map[*Client]struct{}
	closed  bool
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[uuid.UUID]map[*Client]struct{}),
	}
}

// Register adds a client to its recipient's connection set.
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(client.send)
		return
	}
	set, ok := h.clients[client.userID]
	if !ok {
		set = make(map[*Client]struct{})
		h.clients[client.userID] = set
	}
	set[client] = struct{}{}
	log.Printf("[WebSocket Hub] client registered (user: %s, connections: %d)", client.userID, len(set))
}

// Unregister removes a client and drops the recipient's entry once its set
// is empty, so the registry does not accumulate dead keys.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[client.userID]
	if !ok {
		return
	}
	if _, ok := set[client]; !ok {
		return
	}
	delete(set, client)
	close(client.send)
	if len(set) == 0 {
		delete(h.clients, client.userID)
	}
	log.Printf("[WebSocket Hub] client unregistered (user: %s)", client.userID)
}

// SendToUser pushes a payload to every connection the recipient currently
// has. With no connections it is a silent no-op. A connection whose send
// buffer is full is dropped from the registry rather than allowed to stall
// delivery to the recipient's other connections.
func (h *Hub) SendToUser(userID uuid.UUID, message []byte) {
	// Sends happen under the read lock: Unregister closes the send channel
	// under the write lock, so a close can never race a queued send. The
	// sends are non-blocking, so the lock is held only briefly and pushes
	// to different recipients do not serialize against each other.
	h.mu.RLock()
	var stalled []*Client
	for client := range h.clients[userID] {
		select {
		case client.send <- message:
		default:
			stalled = append(stalled, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range stalled {
		log.Printf("[WebSocket Hub] dropping stalled connection (user: %s)", client.userID)
		h.Unregister(client)
	}
}

// Broadcast pushes a payload to every connected client, e.g. system-wide
// announcements.
func (h *Hub) Broadcast(message []byte) {
	h.mu.RLock()
	var stalled []*Client
	for _, set := range h.clients {
		for client := range set {
			select {
			case client.send <- message:
			default:
				stalled = append(stalled, client)
			}
		}
	}
	h.mu.RUnlock()

	for _, client := range stalled {
		h.Unregister(client)
	}
}

// ConnectionCount reports how many connections a recipient currently has.
func (h *Hub) ConnectionCount(userID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// Stop disconnects every client and refuses further registrations.
func (h *Hub) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for userID, set := range h.clients {
		for client := range set {
			close(client.send)
		}
		delete(h.clients, userID)
	}
	log.Println("[WebSocket Hub] stopped")
}
