package hub

import (
	"encoding/json"
	"log"
	"sync"
	"sync/atomic"

	"github.com/lxzan/gws"
)

// Hub tracks connected WebSocket clients and broadcasts messages to them.
type Hub struct {
	mu      sync.RWMutex
	clients map[*gws.Conn]struct{}
	seq     atomic.Int64
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[*gws.Conn]struct{}),
	}
}

func (h *Hub) register(c *gws.Conn) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	log.Printf("hub: client connected (total: %d)", n)
}

func (h *Hub) unregister(c *gws.Conn) {
	h.mu.Lock()
	if _, ok := h.clients[c]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c)
	n := len(h.clients)
	h.mu.Unlock()
	log.Printf("hub: client disconnected (total: %d)", n)
}

// Len returns the number of connected clients.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) nextSeq() int64 {
	return h.seq.Add(1)
}

// Broadcast queues msg for every client. Writes are asynchronous; a slow
// client does not hold up the others.
func (h *Hub) Broadcast(msg *Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("hub: marshal %s: %v", msg.Type, err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	if len(h.clients) == 0 {
		return
	}
	b := gws.NewBroadcaster(gws.OpcodeText, data)
	defer b.Close()
	for c := range h.clients {
		_ = b.Broadcast(c)
	}
}

// Send writes msg to a single client.
func (h *Hub) Send(c *gws.Conn, msg *Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("hub: marshal %s: %v", msg.Type, err)
		return
	}
	if err := c.WriteMessage(gws.OpcodeText, data); err != nil {
		log.Printf("hub: write %s: %v", msg.Type, err)
	}
}
