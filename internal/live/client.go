package live

import (
	"net/http"
	"time"

	"github.com/zkarcade/arena/internal/model"
)

const (
	// Time between keepalive pings
	pingPeriod = 30 * time.Second

	// Buffer size for outgoing messages
	sendBufferSize = 256
)

// Client represents one connected subscriber. A single client may be
// registered in several rooms; all of them share one send channel, so
// within the connection events keep each publisher's room order.
type Client struct {
	userID      model.UserID
	send        chan []byte
	connectedAt time.Time
}

// NewClient creates a new subscriber client
func NewClient(userID model.UserID) *Client {
	return &Client{
		userID:      userID,
		send:        make(chan []byte, sendBufferSize),
		connectedAt: time.Now(),
	}
}

// ServeSSE streams room events to the client over Server-Sent Events
// until the request context ends. The client is registered in every
// requested room and unregistered on disconnect.
func ServeSSE(w http.ResponseWriter, r *http.Request, rooms *RoomManager, userID model.UserID, joined []model.Room) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	// Set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering

	client := NewClient(userID)
	hubs := make([]*Hub, 0, len(joined))
	for _, room := range joined {
		hub := rooms.GetOrCreateHub(room)
		hub.Register(client)
		hubs = append(hubs, hub)
	}
	defer func() {
		for _, hub := range hubs {
			hub.Unregister(client)
		}
	}()

	// Send initial connection event
	_, _ = w.Write([]byte("event: connected\ndata: {\"status\":\"connected\"}\n\n"))
	flusher.Flush()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case message := <-client.send:
			if _, err := w.Write(message); err != nil {
				return
			}
			flusher.Flush()

		case <-ticker.C:
			// Keepalive comment
			if _, err := w.Write([]byte(": keepalive\n\n")); err != nil {
				return
			}
			flusher.Flush()

		case <-r.Context().Done():
			// Client disconnected
			return
		}
	}
}
