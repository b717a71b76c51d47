package ws

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
)

// mockClient creates a client for testing without a real WebSocket connection
func mockClient(hub *Hub, sessionID uuid.UUID) *Client {
	return &Client{
		hub:       hub,
		sessionID: sessionID,
		send:      make(chan []byte, 256),
	}
}

func TestHubRegistration(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	sessionID := uuid.New()
	client := mockClient(hub, sessionID)

	// Register client
	hub.register <- client

	// Give hub time to process
	time.Sleep(10 * time.Millisecond)

	hub.mu.RLock()
	defer hub.mu.RUnlock()

	if hub.rooms[sessionID] == nil {
		t.Fatal("session room not created")
	}
	if !hub.rooms[sessionID][client] {
		t.Fatal("client not registered in session room")
	}
}

func TestHubUnregistration(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	sessionID := uuid.New()
	client := mockClient(hub, sessionID)

	// Register client
	hub.register <- client
	time.Sleep(10 * time.Millisecond)

	// Unregister client
	hub.unregister <- client
	time.Sleep(10 * time.Millisecond)

	hub.mu.RLock()
	defer hub.mu.RUnlock()

	// Room should be cleaned up when empty
	if hub.rooms[sessionID] != nil {
		t.Fatal("session room not cleaned up after last client unregistered")
	}
}

func TestBroadcastToSingleSession(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	session1 := uuid.New()
	session2 := uuid.New()

	client1 := mockClient(hub, session1)
	client2 := mockClient(hub, session2)

	// Register both clients
	hub.register <- client1
	hub.register <- client2
	time.Sleep(10 * time.Millisecond)

	// Broadcast to session1 only
	testPayload := json.RawMessage(`{"size_id":"400ml","total":"16.00"}`)
	event := Event{
		Type:    "order.updated",
		Payload: testPayload,
	}
	hub.BroadcastToSession(session1, event)

	// Check client1 receives the message
	select {
	case msg := <-client1.send:
		var received Event
		if err := json.Unmarshal(msg, &received); err != nil {
			t.Fatalf("failed to unmarshal message: %v", err)
		}
		if received.Type != "order.updated" {
			t.Errorf("expected type 'order.updated', got '%s'", received.Type)
		}
		if string(received.Payload) != string(testPayload) {
			t.Errorf("expected payload '%s', got '%s'", testPayload, received.Payload)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("client1 did not receive message")
	}

	// Check client2 does NOT receive the message
	select {
	case <-client2.send:
		t.Fatal("client2 should not have received message for different session")
	case <-time.After(50 * time.Millisecond):
		// Expected - no message received
	}
}

func TestBroadcastToMultipleClientsInSameSession(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	sessionID := uuid.New()
	client1 := mockClient(hub, sessionID)
	client2 := mockClient(hub, sessionID)
	client3 := mockClient(hub, sessionID)

	// Register all clients to same session
	hub.register <- client1
	hub.register <- client2
	hub.register <- client3
	time.Sleep(10 * time.Millisecond)

	// Broadcast event
	testPayload := json.RawMessage(`{"state":"RESETTING"}`)
	event := Event{
		Type:    "session.resetting",
		Payload: testPayload,
	}
	hub.BroadcastToSession(sessionID, event)

	// All three clients should receive the message
	clients := []*Client{client1, client2, client3}
	for i, client := range clients {
		select {
		case msg := <-client.send:
			var received Event
			if err := json.Unmarshal(msg, &received); err != nil {
				t.Fatalf("client%d: failed to unmarshal: %v", i+1, err)
			}
			if received.Type != "session.resetting" {
				t.Errorf("client%d: expected type 'session.resetting', got '%s'", i+1, received.Type)
			}
		case <-time.After(100 * time.Millisecond):
			t.Fatalf("client%d did not receive message", i+1)
		}
	}
}

func TestHubMultipleSessionsIsolation(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	session1 := uuid.New()
	session2 := uuid.New()
	session3 := uuid.New()

	// Create 2 clients per session
	clients := map[uuid.UUID][]*Client{
		session1: {mockClient(hub, session1), mockClient(hub, session1)},
		session2: {mockClient(hub, session2), mockClient(hub, session2)},
		session3: {mockClient(hub, session3), mockClient(hub, session3)},
	}

	// Register all clients
	for _, clientList := range clients {
		for _, client := range clientList {
			hub.register <- client
		}
	}
	time.Sleep(10 * time.Millisecond)

	// Broadcast to session2 only
	event := Event{
		Type:    "session.reset",
		Payload: json.RawMessage(`{"state":"AWAITING_NAME"}`),
	}
	hub.BroadcastToSession(session2, event)

	// Only session2 clients should receive
	for sessionID, clientList := range clients {
		for i, client := range clientList {
			select {
			case msg := <-client.send:
				if sessionID != session2 {
					t.Fatalf("session %s client %d should not receive message", sessionID, i)
				}
				var received Event
				if err := json.Unmarshal(msg, &received); err != nil {
					t.Fatalf("unmarshal error: %v", err)
				}
				if received.Type != "session.reset" {
					t.Errorf("wrong event type: %s", received.Type)
				}
			case <-time.After(50 * time.Millisecond):
				if sessionID == session2 {
					t.Fatalf("session2 client %d should have received message", i)
				}
				// Expected for other sessions
			}
		}
	}
}

func TestHubCleanupEmptyRoom(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	sessionID := uuid.New()
	client1 := mockClient(hub, sessionID)
	client2 := mockClient(hub, sessionID)

	// Register both clients
	hub.register <- client1
	hub.register <- client2
	time.Sleep(10 * time.Millisecond)

	hub.mu.RLock()
	if len(hub.rooms[sessionID]) != 2 {
		t.Fatalf("expected 2 clients, got %d", len(hub.rooms[sessionID]))
	}
	hub.mu.RUnlock()

	// Unregister first client
	hub.unregister <- client1
	time.Sleep(10 * time.Millisecond)

	hub.mu.RLock()
	if len(hub.rooms[sessionID]) != 1 {
		t.Fatalf("expected 1 client after first unregister, got %d", len(hub.rooms[sessionID]))
	}
	hub.mu.RUnlock()

	// Unregister second client
	hub.unregister <- client2
	time.Sleep(10 * time.Millisecond)

	hub.mu.RLock()
	if hub.rooms[sessionID] != nil {
		t.Fatal("room should be deleted when last client unregisters")
	}
	hub.mu.RUnlock()
}

func TestSubscribeReplaysSessionState(t *testing.T) {
	hub := NewHub()

	sessionID := uuid.New()
	orderState := json.RawMessage(`{"size_id":"400ml","total":"16.00"}`)
	kioskState := json.RawMessage(`{"state":"READY","customer_name":"Ana"}`)
	hub.OnSubscribe(func(id uuid.UUID) []Event {
		if id != sessionID {
			return nil
		}
		return []Event{
			{Type: "order.updated", Payload: orderState},
			{Type: "session.name_captured", Payload: kioskState},
		}
	})
	go hub.Run()

	// a reconnecting screen must render without waiting for the next mutation
	client := mockClient(hub, sessionID)
	hub.register <- client

	wantTypes := []string{"order.updated", "session.name_captured"}
	for _, want := range wantTypes {
		select {
		case msg := <-client.send:
			var received Event
			if err := json.Unmarshal(msg, &received); err != nil {
				t.Fatalf("failed to unmarshal replay: %v", err)
			}
			if received.Type != want {
				t.Errorf("expected type '%s', got '%s'", want, received.Type)
			}
		case <-time.After(100 * time.Millisecond):
			t.Fatalf("client did not receive replayed '%s'", want)
		}
	}

	// unknown sessions replay nothing
	other := mockClient(hub, uuid.New())
	hub.register <- other
	select {
	case <-other.send:
		t.Fatal("client should not receive another session's replay")
	case <-time.After(50 * time.Millisecond):
		// Expected - no message
	}
}

func TestBroadcastToNonExistentSession(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	// Create a client for session1
	session1 := uuid.New()
	client1 := mockClient(hub, session1)
	hub.register <- client1
	time.Sleep(10 * time.Millisecond)

	// Broadcast to session2 (doesn't exist)
	session2 := uuid.New()
	event := Event{
		Type:    "order.updated",
		Payload: json.RawMessage(`{"total":"14.00"}`),
	}
	hub.BroadcastToSession(session2, event)

	// client1 should NOT receive anything
	select {
	case <-client1.send:
		t.Fatal("client should not receive message for different session")
	case <-time.After(50 * time.Millisecond):
		// Expected - no message
	}
}
