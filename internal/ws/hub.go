package ws

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/google/uuid"
)

// Event represents a WebSocket message pushed to a kiosk screen
type Event struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// sessionEvent is an internal struct for routing events to one session's room
type sessionEvent struct {
	SessionID uuid.UUID
	Event     Event
}

// ReplayFunc produces the events describing a session's current state. The
// hub calls it whenever a screen (re)connects, so a kiosk that dropped its
// connection renders the live order and kiosk state immediately instead of
// waiting for the next mutation.
type ReplayFunc func(sessionID uuid.UUID) []Event

// Hub maintains the set of connected kiosk screens, grouped by session, and
// pushes session events (state transitions, recomputed totals) to them
type Hub struct {
	// Connected screens by session ID
	rooms map[uuid.UUID]map[*Client]bool

	// Inbound registration traffic from screens
	register   chan *Client
	unregister chan *Client

	// Outbound events to route
	broadcast chan *sessionEvent

	// Replays current session state to a new subscriber; nil disables replay
	replay ReplayFunc

	// Mutex for thread-safe room access
	mu sync.RWMutex
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[uuid.UUID]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *sessionEvent, 256),
	}
}

// OnSubscribe installs the state replay for newly connected screens.
// Must be called before Run.
func (h *Hub) OnSubscribe(fn ReplayFunc) {
	h.replay = fn
}

// Run starts the hub's main loop
// This should be called as a goroutine: go hub.Run()
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.subscribe(client)

		case client := <-h.unregister:
			h.mu.Lock()
			h.drop(client)
			h.mu.Unlock()

		case event := <-h.broadcast:
			h.deliver(event)
		}
	}
}

// BroadcastToSession sends an event to all screens subscribed to a session
// This is the public API for the session service to push events
func (h *Hub) BroadcastToSession(sessionID uuid.UUID, event Event) {
	h.broadcast <- &sessionEvent{
		SessionID: sessionID,
		Event:     event,
	}
}

// subscribe adds a screen to its session's room and catches it up on the
// session's current state
func (h *Hub) subscribe(client *Client) {
	h.mu.Lock()
	if h.rooms[client.sessionID] == nil {
		h.rooms[client.sessionID] = make(map[*Client]bool)
	}
	h.rooms[client.sessionID][client] = true
	h.mu.Unlock()

	if h.replay == nil {
		return
	}
	for _, event := range h.replay(client.sessionID) {
		message, err := json.Marshal(event)
		if err != nil {
			log.Printf("ERROR: marshal replay event %s: %v", event.Type, err)
			continue
		}
		select {
		case client.send <- message:
		default:
			// A subscriber that can't take its own replay is already dead
			h.mu.Lock()
			h.drop(client)
			h.mu.Unlock()
			return
		}
	}
}

// deliver fans an event out to every screen in the session's room. Screens
// with a full send buffer are dropped; the kiosk reconnects and is caught up
// by the replay
func (h *Hub) deliver(event *sessionEvent) {
	message, err := json.Marshal(event.Event)
	if err != nil {
		log.Printf("ERROR: marshal event %s: %v", event.Event.Type, err)
		return
	}

	h.mu.Lock()
	for client := range h.rooms[event.SessionID] {
		select {
		case client.send <- message:
		default:
			h.drop(client)
		}
	}
	h.mu.Unlock()
}

// drop removes a screen from its room, closing its send channel and cleaning
// up the room when it empties. Caller must hold h.mu
func (h *Hub) drop(client *Client) {
	clients, ok := h.rooms[client.sessionID]
	if !ok {
		return
	}
	if _, exists := clients[client]; !exists {
		return
	}
	delete(clients, client)
	close(client.send)
	if len(clients) == 0 {
		delete(h.rooms, client.sessionID)
	}
}
