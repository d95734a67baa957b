// Package relay is the server half of the event relay: a hub of live
// websocket connections, per-connection read/write pumps and the dispatcher
// that turns query events into aggregation calls. The relay keeps no state
// about a connection once it drops; identity is re-established on every
// connect from the auth payload.
package relay

import (
	"log"
	"sync"
)

type Hub struct {
	clients map[*Client]bool
	// rooms groups connections by user id so notifications and messages can
	// be delivered to every device of one user.
	rooms      map[string]map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	mutex      sync.RWMutex
	logger     *log.Logger
}

func NewHub(logger *log.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		rooms:      make(map[string]map[*Client]bool),
		broadcast:  make(chan []byte, 1024),
		register:   make(chan *Client, 128),
		unregister: make(chan *Client, 128),
		logger:     logger,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			if client == nil {
				continue
			}
			h.mutex.Lock()
			h.clients[client] = true
			if client.userID != "" {
				room := h.rooms[client.userID]
				if room == nil {
					room = make(map[*Client]bool)
					h.rooms[client.userID] = room
				}
				room[client] = true
			}
			total := len(h.clients)
			h.mutex.Unlock()
			if h.logger != nil {
				h.logger.Printf("relay: connected | user=%q total_clients=%d", client.userID, total)
			}

		case client := <-h.unregister:
			if client == nil {
				continue
			}
			h.remove(client)

		case message := <-h.broadcast:
			// Dead clients are removed inline; queueing them on the
			// unregister channel from the hub's own loop could block it.
			for _, client := range h.snapshot() {
				if !client.enqueue(message) {
					h.remove(client)
				}
			}
		}
	}
}

// remove drops a client from the set and its user room and closes its send
// queue. Removing an unknown client is a no-op.
func (h *Hub) remove(client *Client) {
	h.mutex.Lock()
	if _, ok := h.clients[client]; !ok {
		h.mutex.Unlock()
		return
	}
	delete(h.clients, client)
	if client.userID != "" {
		if room := h.rooms[client.userID]; room != nil {
			delete(room, client)
			if len(room) == 0 {
				delete(h.rooms, client.userID)
			}
		}
	}
	client.closeSend()
	total := len(h.clients)
	h.mutex.Unlock()
	if h.logger != nil {
		h.logger.Printf("relay: disconnected | user=%q total_clients=%d", client.userID, total)
	}
}

// snapshot copies the client set so delivery never iterates the live map.
func (h *Hub) snapshot() []*Client {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	out := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		out = append(out, c)
	}
	return out
}

func (h *Hub) roomSnapshot(userID string) []*Client {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	room := h.rooms[userID]
	out := make([]*Client, 0, len(room))
	for c := range room {
		out = append(out, c)
	}
	return out
}

func (h *Hub) Register(client *Client) {
	if h == nil {
		return
	}
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	if h == nil {
		return
	}
	h.unregister <- client
}

// Broadcast queues a frame for every connection; dropped when the buffer is
// full rather than blocking the caller.
func (h *Hub) Broadcast(message []byte) {
	if h == nil {
		return
	}
	select {
	case h.broadcast <- message:
	default:
		if h.logger != nil {
			h.logger.Printf("relay: broadcast dropped | reason=buffer_full")
		}
	}
}

// SendToUser delivers a frame to every connection of one user.
func (h *Hub) SendToUser(userID string, message []byte) {
	if h == nil || userID == "" {
		return
	}
	for _, client := range h.roomSnapshot(userID) {
		if !client.enqueue(message) {
			h.Unregister(client)
		}
	}
}

func (h *Hub) ClientCount() int {
	if h == nil {
		return 0
	}
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}
