package relay

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"farmstand/internal/dbmysql"
)

// envelope is the one notification shape the relay ever emits.
type envelope struct {
	Type    string           `json:"type"`
	Message *dbmysql.Message `json:"message"`
}

// delivery targets specific users. Notifications go only to the two
// participants of a message, never to unrelated connections.
type delivery struct {
	targets []uint64
	payload []byte
}

// Hub maintains the set of live connections keyed by user id and
// routes new-message notifications to them. Delivery is at-most-once:
// a client that is offline, or whose send buffer is full, misses the
// frame and reconciles on its next HTTP fetch.
type Hub struct {
	// clients maps a user id to that user's open connections. A user
	// may have several tabs open at once.
	clients map[uint64]map[*Client]struct{}

	register   chan *Client
	unregister chan *Client
	deliver    chan delivery

	mu sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[uint64]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		deliver:    make(chan delivery, 64),
	}
}

// Run processes connection lifecycle events and deliveries until the
// process exits. Start it once, in its own goroutine.
func (h *Hub) Run() {
	log.Println("relay hub started")
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if _, ok := h.clients[client.userID]; !ok {
				h.clients[client.userID] = make(map[*Client]struct{})
			}
			h.clients[client.userID][client] = struct{}{}
			h.mu.Unlock()
			log.Printf("relay: user %d connected", client.userID)

		case client := <-h.unregister:
			h.mu.Lock()
			if conns, ok := h.clients[client.userID]; ok {
				if _, ok := conns[client]; ok {
					delete(conns, client)
					close(client.send)
					if len(conns) == 0 {
						delete(h.clients, client.userID)
					}
				}
			}
			h.mu.Unlock()
			log.Printf("relay: user %d disconnected", client.userID)

		case d := <-h.deliver:
			h.mu.RLock()
			for _, userID := range d.targets {
				for client := range h.clients[userID] {
					select {
					case client.send <- d.payload:
					default:
						// Slow consumer; drop rather than block the hub
						log.Printf("relay: send buffer full for user %d, frame dropped", userID)
					}
				}
			}
			h.mu.RUnlock()
		}
	}
}

// NotifyNewMessage queues a notification for the message's sender and
// recipient. Fire-and-forget: if the hub is saturated the frame is
// dropped and clients catch up over HTTP.
func (h *Hub) NotifyNewMessage(msg *dbmysql.Message) {
	payload, err := json.Marshal(envelope{Type: "message", Message: msg})
	if err != nil {
		log.Printf("relay: failed to encode notification: %v", err)
		return
	}

	targets := []uint64{msg.RecipientID}
	if msg.SenderID != msg.RecipientID {
		targets = append(targets, msg.SenderID)
	}

	select {
	case h.deliver <- delivery{targets: targets, payload: payload}:
	case <-time.After(time.Second):
		log.Printf("relay: hub busy, notification for message %d dropped", msg.MessageID)
	}
}

// ConnectionCount reports how many connections a user currently holds.
func (h *Hub) ConnectionCount(userID uint64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}
