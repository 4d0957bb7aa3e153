package websocket

import (
	"context"
	"log"
	"slices"
	"sync"

	"github.com/anjiri1684/timetable/timetable"
	"github.com/google/uuid"
)

// Conn is the part of a websocket connection the hub writes to.
type Conn interface {
	WriteJSON(v interface{}) error
	Close() error
}

// Client is one change-feed subscriber. A zero Year receives every change.
type Client struct {
	ID   uuid.UUID
	Year int
	Conn Conn
}

func (c *Client) wants(e timetable.Event) bool {
	return c.Year == 0 || slices.Contains(e.Years, c.Year)
}

// Hub fans accepted timetable changes out to websocket subscribers.
type Hub struct {
	clients    map[uuid.UUID]*Client
	clientsMu  sync.RWMutex
	register   chan *Client
	unregister chan *Client
	broadcast  chan timetable.Event
	done       chan struct{}
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan timetable.Event, 64),
		done:       make(chan struct{}),
	}
}

// Subscribe adds c to the feed. It reports false once the hub has stopped.
func (h *Hub) Subscribe(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

// Unsubscribe removes c from the feed. It returns at once after the hub
// has stopped.
func (h *Hub) Unsubscribe(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Done is closed when Run returns.
func (h *Hub) Done() <-chan struct{} {
	return h.done
}

// Notify queues e for delivery. It never blocks the store; when the queue
// is full the event is dropped.
func (h *Hub) Notify(e timetable.Event) {
	select {
	case h.broadcast <- e:
	default:
		log.Printf("⚠️ Change feed queue full, dropping %s event for entry %s", e.Action, e.Entry.ID)
	}
}

// Run serves registrations and broadcasts until ctx is done, then closes
// every subscriber. Run must be called at most once.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case client := <-h.register:
			log.Printf("Client registered: %s", client.ID)
			h.clientsMu.Lock()
			h.clients[client.ID] = client
			h.clientsMu.Unlock()
		case client := <-h.unregister:
			log.Printf("Client unregistered: %s", client.ID)
			h.clientsMu.Lock()
			if c, ok := h.clients[client.ID]; ok && c == client {
				delete(h.clients, client.ID)
			}
			h.clientsMu.Unlock()
		case e := <-h.broadcast:
			h.deliver(e)
		}
	}
}

func (h *Hub) deliver(e timetable.Event) {
	var failed []*Client

	h.clientsMu.RLock()
	for _, c := range h.clients {
		if !c.wants(e) {
			continue
		}
		if err := c.Conn.WriteJSON(e); err != nil {
			log.Printf("Error sending change to client %s: %v", c.ID, err)
			failed = append(failed, c)
		}
	}
	h.clientsMu.RUnlock()

	if len(failed) == 0 {
		return
	}
	h.clientsMu.Lock()
	for _, c := range failed {
		c.Conn.Close()
		delete(h.clients, c.ID)
	}
	h.clientsMu.Unlock()
}

func (h *Hub) closeAll() {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()
	for id, c := range h.clients {
		c.Conn.Close()
		delete(h.clients, id)
	}
}

// Len reports the number of connected subscribers.
func (h *Hub) Len() int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients)
}
