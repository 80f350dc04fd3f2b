package websocket

import (
	"log"
	"sync"

	"github.com/anjiri1684/driving_school/scheduling"
	"github.com/google/uuid"
)

// Conn is the part of a websocket connection the hub writes to.
type Conn interface {
	WriteJSON(v interface{}) error
	Close() error
}

type Client struct {
	UserID uuid.UUID
	Conn   Conn
}

// Hub pushes lesson lifecycle events to every connected staff dashboard.
type Hub struct {
	clients    map[*Client]struct{}
	clientsMu  sync.RWMutex
	register   chan *Client
	unregister chan *Client
	broadcast  chan scheduling.LessonEvent
	done       chan struct{}
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan scheduling.LessonEvent, 64),
		done:       make(chan struct{}),
	}
}

// Publish queues the event for broadcast and drops it when the queue is full;
// dashboards resync on their next fetch.
func (h *Hub) Publish(event scheduling.LessonEvent) {
	select {
	case h.broadcast <- event:
	default:
		log.Printf("Lesson feed queue full, dropping %s for lesson %s", event.EventType, event.Lesson.ID)
	}
}

// Register adds a client. It returns without registering once the hub stopped.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
	}
}

// Unregister removes a client. After Stop there is no loop left to remove it
// from, so the call returns immediately.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) Stop() {
	close(h.done)
}

func (h *Hub) ClientCount() int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients)
}

func (h *Hub) Run() {
	for {
		select {
		case <-h.done:
			return
		case client := <-h.register:
			log.Printf("Lesson feed client registered: %s", client.UserID)
			h.clientsMu.Lock()
			h.clients[client] = struct{}{}
			h.clientsMu.Unlock()
		case client := <-h.unregister:
			log.Printf("Lesson feed client unregistered: %s", client.UserID)
			h.clientsMu.Lock()
			delete(h.clients, client)
			h.clientsMu.Unlock()
		case event := <-h.broadcast:
			h.send(event)
		}
	}
}

func (h *Hub) send(event scheduling.LessonEvent) {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()
	for client := range h.clients {
		if err := client.Conn.WriteJSON(event); err != nil {
			log.Printf("Error sending lesson event to client %s: %v", client.UserID, err)
			client.Conn.Close()
			delete(h.clients, client)
		}
	}
}

var _ scheduling.Publisher = (*Hub)(nil)
