package websocket

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"juaconnect-server/events"
)

// Message types sent to dashboards.
const (
	MessageDataUpdate = "data_update"
	MessagePing       = "ping"
	MessagePong       = "pong"
)

// Client represents a connected dashboard
type Client struct {
	Hub  *Hub
	ID   string
	Role string
	Conn *websocket.Conn
	Send chan []byte

	// closed is set by the hub, under its mutex, when Send is closed
	closed bool
}

// Hub fans change signals out to every connected dashboard so they can
// re-fetch their views instead of waiting for the next poll.
type Hub struct {
	// Registered clients
	Clients map[string]*Client

	// Broadcast channel for messages to all clients
	Broadcast chan *Message

	// Register requests from clients
	Register chan *Client

	// Unregister requests from clients
	Unregister chan *Client

	// Message handlers keyed by message type
	MessageHandlers map[string]MessageHandler

	done chan struct{}
	once sync.Once
	mu   sync.RWMutex
}

// Message is the JSON frame exchanged with dashboards
type Message struct {
	Type      string      `json:"type"`
	Topic     string      `json:"topic,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data,omitempty"`
}

// MessageHandler handles a message received from a client
type MessageHandler func(*Client, *Message) error

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	hub := &Hub{
		Clients:         make(map[string]*Client),
		Broadcast:       make(chan *Message, 16),
		Register:        make(chan *Client),
		Unregister:      make(chan *Client),
		MessageHandlers: make(map[string]MessageHandler),
		done:            make(chan struct{}),
	}
	hub.MessageHandlers[MessagePing] = hub.handlePing
	return hub
}

// Run starts the hub's main loop. It returns after Stop.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			h.Clients[client.ID] = client
			h.mu.Unlock()
			log.Printf("🔌 Client registered: ID=%s, Role=%s", client.ID, client.Role)

		case client := <-h.Unregister:
			h.mu.Lock()
			if _, ok := h.Clients[client.ID]; ok {
				h.dropLocked(client)
			}
			h.mu.Unlock()
			log.Printf("🔌 Client unregistered: ID=%s, Role=%s", client.ID, client.Role)

		case message := <-h.Broadcast:
			h.broadcastMessage(message)

		case <-h.done:
			h.mu.Lock()
			for _, client := range h.Clients {
				h.dropLocked(client)
			}
			h.mu.Unlock()
			return
		}
	}
}

// Stop ends Run and disconnects every client.
func (h *Hub) Stop() {
	h.once.Do(func() { close(h.done) })
}

// Relay forwards bus signals on topic to every client. The returned func
// stops relaying.
func (h *Hub) Relay(bus events.Bus, topic string) func() {
	return bus.Subscribe(topic, func(topic string) {
		h.Publish(&Message{Type: MessageDataUpdate, Topic: topic, Timestamp: time.Now().UTC()})
	})
}

// Publish queues message for broadcast. It gives up once the hub is stopped.
func (h *Hub) Publish(message *Message) {
	select {
	case h.Broadcast <- message:
	case <-h.done:
	}
}

// broadcastMessage sends a message to all connected clients, dropping
// clients whose send buffer is full
func (h *Hub) broadcastMessage(message *Message) {
	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("❌ Error marshaling message: %v", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for id, client := range h.Clients {
		select {
		case client.Send <- data:
		default:
			log.Printf("⚠️ Client %s send buffer is full, disconnecting", id)
			h.dropLocked(client)
		}
	}
}

// dropLocked removes client and closes its send channel. h.mu must be held.
func (h *Hub) dropLocked(client *Client) {
	delete(h.Clients, client.ID)
	if !client.closed {
		client.closed = true
		close(client.Send)
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.Clients)
}

// handlePing answers a client ping so dashboards can check liveness
func (h *Hub) handlePing(client *Client, message *Message) error {
	return client.SendMessage(&Message{Type: MessagePong, Timestamp: time.Now().UTC()})
}
