// Package ws pushes store change notifications to connected dashboard
// clients. Clients refetch detail over the REST surface; the push payload
// only carries enough for a cheap refresh decision.
package ws

import (
	"encoding/json"
	"sync"
)

// StoreUpdate is the message broadcast after every store notification.
type StoreUpdate struct {
	RecordCount int    `json:"record_count"`
	ViewCount   int    `json:"view_count"`
	Reason      string `json:"reason"`
}

type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*Client]struct{})}
}

func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client] = struct{}{}
}

func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, client)
}

// Broadcast sends the update to every connected client, dropping the
// message for clients whose send buffer is full.
func (h *Hub) Broadcast(update StoreUpdate) {
	payload, _ := json.Marshal(update)

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		select {
		case client.send <- payload:
		default:
		}
	}
}
