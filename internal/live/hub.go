package live

import (
	"log/slog"
	"sync"
	"time"

	"github.com/zkarcade/arena/internal/model"
)

// Hub fans events out to the subscribers of a single room. A slow or
// disconnected subscriber never blocks a publisher: sends are
// non-blocking and drop when the subscriber's buffer is full. Within
// one room, events from one publisher arrive in publish order.
type Hub struct {
	room    model.Room
	clients map[*Client]bool
	mu      sync.RWMutex
	logger  *slog.Logger

	// Channels for managing clients
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	done       chan struct{}
}

// NewHub creates a new Hub for a room
func NewHub(room model.Room, logger *slog.Logger) *Hub {
	return &Hub{
		room:       room,
		clients:    make(map[*Client]bool),
		logger:     logger.With(slog.String("room", string(room))),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 256),
		done:       make(chan struct{}),
	}
}

// Run starts the hub's event loop
func (h *Hub) Run() {
	h.logger.Debug("hub started")
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			clientCount := len(h.clients)
			h.mu.Unlock()
			h.logger.Info("subscriber joined",
				slog.String("user_id", string(client.userID)),
				slog.Int("total_subscribers", clientCount))

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				// The send channel stays open: a client may be
				// subscribed to other rooms through the same connection
				delete(h.clients, client)
				clientCount := len(h.clients)
				h.mu.Unlock()
				h.logger.Info("subscriber left",
					slog.String("user_id", string(client.userID)),
					slog.Duration("connected_for", time.Since(client.connectedAt)),
					slog.Int("total_subscribers", clientCount))
			} else {
				h.mu.Unlock()
			}

		case message := <-h.broadcast:
			h.mu.RLock()
			dropped := 0
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					dropped++
				}
			}
			h.mu.RUnlock()
			if dropped > 0 {
				h.logger.Warn("events dropped for slow subscribers",
					slog.Int("dropped", dropped))
			}

		case <-h.done:
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
			}
			h.mu.Unlock()
			h.logger.Debug("hub stopped")
			return
		}
	}
}

// Register adds a client to the hub. A no-op on a closed hub.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
	}
}

// Unregister removes a client from the hub. A no-op on a closed hub.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Broadcast sends a message to all subscribers. Drops the message if
// the hub's own buffer is full rather than blocking the publisher.
func (h *Hub) Broadcast(message []byte) {
	select {
	case h.broadcast <- message:
	default:
		h.logger.Warn("broadcast dropped, hub buffer full")
	}
}

// Close shuts down the hub
func (h *Hub) Close() {
	close(h.done)
}

// ClientCount returns the number of connected subscribers
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// RoomManager tracks the hub for every room with live subscribers
type RoomManager struct {
	hubs   map[model.Room]*Hub
	mu     sync.RWMutex
	logger *slog.Logger
}

// NewRoomManager creates a new RoomManager
func NewRoomManager(logger *slog.Logger) *RoomManager {
	return &RoomManager{
		hubs:   make(map[model.Room]*Hub),
		logger: logger.With(slog.String("component", "live")),
	}
}

// GetOrCreateHub returns the hub for a room, creating one if it doesn't exist
func (m *RoomManager) GetOrCreateHub(room model.Room) *Hub {
	m.mu.Lock()
	defer m.mu.Unlock()

	if hub, ok := m.hubs[room]; ok {
		return hub
	}

	hub := NewHub(room, m.logger)
	m.hubs[room] = hub
	go hub.Run()
	return hub
}

// GetHub returns the hub for a room, or nil if nobody subscribed to it
func (m *RoomManager) GetHub(room model.Room) *Hub {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.hubs[room]
}

// CleanupEmptyHubs removes hubs with no subscribers
func (m *RoomManager) CleanupEmptyHubs() {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for room, hub := range m.hubs {
		if hub.ClientCount() == 0 {
			hub.Close()
			delete(m.hubs, room)
			removed++
		}
	}
	if removed > 0 {
		m.logger.Info("empty hubs cleaned up", slog.Int("removed", removed))
	}
}
