package live

import (
	"testing"
	"time"

	"github.com/zkarcade/arena/internal/model"
	"github.com/zkarcade/arena/internal/testutil"
)

func TestFormatSSEMessage(t *testing.T) {
	tests := []struct {
		name      string
		eventName string
		data      string
		expected  string
	}{
		{
			name:      "single line data",
			eventName: "score-submitted",
			data:      `{"user_id":"user-1"}`,
			expected:  "event: score-submitted\ndata: {\"user_id\":\"user-1\"}\n\n",
		},
		{
			name:      "multi-line data",
			eventName: "rank-changed",
			data:      "line1\nline2",
			expected:  "event: rank-changed\ndata: line1\ndata: line2\n\n",
		},
		{
			name:      "empty data",
			eventName: "ping",
			data:      "",
			expected:  "event: ping\ndata: \n\n",
		},
		{
			name:      "data with carriage returns",
			eventName: "test",
			data:      "line1\r\nline2",
			expected:  "event: test\ndata: line1\ndata: line2\n\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := formatSSEMessage(tt.eventName, tt.data)
			if string(result) != tt.expected {
				t.Errorf("formatSSEMessage(%q, %q)\ngot:  %q\nwant: %q",
					tt.eventName, tt.data, string(result), tt.expected)
			}
		})
	}
}

func TestHub_RegisterAndBroadcast(t *testing.T) {
	hub := NewHub(model.GameRoom("proof-puzzle"), testutil.NopLogger())
	go hub.Run()
	defer hub.Close()

	client := NewClient("user-1")
	hub.Register(client)

	// Give the hub time to process registration
	time.Sleep(10 * time.Millisecond)

	if hub.ClientCount() != 1 {
		t.Errorf("ClientCount() = %d, want 1", hub.ClientCount())
	}

	message := formatSSEMessage("score-submitted", "test data")
	hub.Broadcast(message)

	select {
	case msg := <-client.send:
		if string(msg) != string(message) {
			t.Errorf("client received %q, want %q", string(msg), string(message))
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("client did not receive message")
	}
}

func TestHub_Unregister(t *testing.T) {
	hub := NewHub(model.GameRoom("proof-puzzle"), testutil.NopLogger())
	go hub.Run()
	defer hub.Close()

	client := NewClient("user-1")
	hub.Register(client)

	time.Sleep(10 * time.Millisecond)

	if hub.ClientCount() != 1 {
		t.Errorf("ClientCount() = %d, want 1", hub.ClientCount())
	}

	hub.Unregister(client)
	time.Sleep(10 * time.Millisecond)

	if hub.ClientCount() != 0 {
		t.Errorf("ClientCount() = %d after unregister, want 0", hub.ClientCount())
	}
}

func TestHub_UnregisterKeepsSendOpen(t *testing.T) {
	// One client subscribed to two rooms: leaving one room must not
	// close the channel the other room still sends on
	hubA := NewHub(model.GameRoom("proof-puzzle"), testutil.NopLogger())
	hubB := NewHub(model.UserRoom("user-1"), testutil.NopLogger())
	go hubA.Run()
	go hubB.Run()
	defer hubA.Close()
	defer hubB.Close()

	client := NewClient("user-1")
	hubA.Register(client)
	hubB.Register(client)
	time.Sleep(10 * time.Millisecond)

	hubA.Unregister(client)
	time.Sleep(10 * time.Millisecond)

	hubB.Broadcast(formatSSEMessage("rank-changed", "data"))

	select {
	case _, ok := <-client.send:
		if !ok {
			t.Error("send channel was closed by the other room's unregister")
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("client did not receive message from remaining room")
	}
}

func TestHub_BroadcastToMultipleClients(t *testing.T) {
	hub := NewHub(model.GameRoom("proof-puzzle"), testutil.NopLogger())
	go hub.Run()
	defer hub.Close()

	client1 := NewClient("user-1")
	client2 := NewClient("user-2")
	client3 := NewClient("user-3")

	hub.Register(client1)
	hub.Register(client2)
	hub.Register(client3)

	time.Sleep(10 * time.Millisecond)

	if hub.ClientCount() != 3 {
		t.Errorf("ClientCount() = %d, want 3", hub.ClientCount())
	}

	message := formatSSEMessage("score-submitted", "data")
	hub.Broadcast(message)

	for i, client := range []*Client{client1, client2, client3} {
		select {
		case msg := <-client.send:
			if string(msg) != string(message) {
				t.Errorf("client %d received %q, want %q", i+1, string(msg), string(message))
			}
		case <-time.After(100 * time.Millisecond):
			t.Errorf("client %d did not receive message", i+1)
		}
	}
}

func TestRoomManager_GetOrCreateHub(t *testing.T) {
	manager := NewRoomManager(testutil.NopLogger())

	hub1 := manager.GetOrCreateHub(model.GameRoom("proof-puzzle"))
	if hub1 == nil {
		t.Fatal("GetOrCreateHub returned nil")
	}

	// Getting again should return the same hub
	hub2 := manager.GetOrCreateHub(model.GameRoom("proof-puzzle"))
	if hub1 != hub2 {
		t.Error("GetOrCreateHub returned different hub for same room")
	}

	// Different room should return different hub
	hub3 := manager.GetOrCreateHub(model.UserRoom("user-1"))
	if hub3 == hub1 {
		t.Error("GetOrCreateHub returned same hub for different room")
	}
}

func TestRoomManager_GetHubUnknownRoom(t *testing.T) {
	manager := NewRoomManager(testutil.NopLogger())

	if hub := manager.GetHub(model.GameRoom("proof-puzzle")); hub != nil {
		t.Error("GetHub returned a hub for a room nobody subscribed to")
	}
}

func TestRoomManager_CleanupEmptyHubs(t *testing.T) {
	manager := NewRoomManager(testutil.NopLogger())

	hub := manager.GetOrCreateHub(model.GameRoom("proof-puzzle"))
	client := NewClient("user-1")
	hub.Register(client)
	time.Sleep(10 * time.Millisecond)

	// Hub with a subscriber survives cleanup
	manager.CleanupEmptyHubs()
	if manager.GetHub(model.GameRoom("proof-puzzle")) == nil {
		t.Error("cleanup removed a hub with subscribers")
	}

	hub.Unregister(client)
	time.Sleep(10 * time.Millisecond)

	manager.CleanupEmptyHubs()
	if manager.GetHub(model.GameRoom("proof-puzzle")) != nil {
		t.Error("cleanup kept an empty hub")
	}
}

func TestHub_RegisterAfterCloseDoesNotBlock(t *testing.T) {
	hub := NewHub(model.GameRoom("proof-puzzle"), testutil.NopLogger())
	go hub.Run()
	time.Sleep(10 * time.Millisecond)

	hub.Close()
	time.Sleep(10 * time.Millisecond)

	// Once the run loop has exited nothing drains the register and
	// unregister channels; both calls must still return.
	client := NewClient("user-1")
	returned := make(chan struct{})
	go func() {
		hub.Register(client)
		hub.Unregister(client)
		close(returned)
	}()

	select {
	case <-returned:
	case <-time.After(100 * time.Millisecond):
		t.Fatal("register on a closed hub blocked")
	}
}
