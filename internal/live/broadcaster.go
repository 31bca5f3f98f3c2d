package live

import (
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/zkarcade/arena/internal/model"
)

// Broadcaster publishes typed events into rooms. It is a latency
// optimization, never a correctness dependency: publishing to a room
// nobody subscribed to is a no-op, and clients that miss an event
// recover through the query path.
type Broadcaster struct {
	rooms  *RoomManager
	logger *slog.Logger
}

// NewBroadcaster creates a new Broadcaster
func NewBroadcaster(rooms *RoomManager, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		rooms:  rooms,
		logger: logger.With(slog.String("component", "live-broadcaster")),
	}
}

// Publish sends an event to every subscriber of a room, fire-and-forget
func (b *Broadcaster) Publish(room model.Room, event model.Event) {
	hub := b.rooms.GetHub(room)
	if hub == nil {
		return
	}

	payload, err := json.Marshal(event)
	if err != nil {
		b.logger.Error("failed to encode event",
			slog.String("room", string(room)),
			slog.String("type", string(event.Type)),
			slog.String("error", err.Error()))
		return
	}

	hub.Broadcast(formatSSEMessage(string(event.Type), string(payload)))
}

// formatSSEMessage formats an SSE message with event name and data.
// Multi-line data is properly formatted with "data: " prefix on each line.
func formatSSEMessage(eventName, data string) []byte {
	var sb strings.Builder
	sb.WriteString("event: ")
	sb.WriteString(eventName)
	sb.WriteString("\n")
	for _, line := range strings.Split(strings.ReplaceAll(data, "\r\n", "\n"), "\n") {
		sb.WriteString("data: ")
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	return []byte(sb.String())
}
