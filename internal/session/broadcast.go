package session

import (
	"log/slog"
	"sync"
	"time"
)

// ProgressEvent represents a progress update for one session
type ProgressEvent struct {
	SessionID string    `json:"sessionId"`
	State     State     `json:"state"`
	BestCost  float64   `json:"bestCost"`
	Consumed  int64     `json:"consumed"`
	Timestamp time.Time `json:"timestamp"`
}

// EventBroadcaster fans progress events out to subscribers of a session
type EventBroadcaster struct {
	mu        sync.RWMutex
	clients   map[string]map[chan ProgressEvent]bool // sessionID -> set of client channels
	lastEvent map[string]ProgressEvent               // sessionID -> last event for new clients
}

// NewEventBroadcaster creates a new event broadcaster
func NewEventBroadcaster() *EventBroadcaster {
	return &EventBroadcaster{
		clients:   make(map[string]map[chan ProgressEvent]bool),
		lastEvent: make(map[string]ProgressEvent),
	}
}

// Subscribe adds a client to receive events for a session
func (eb *EventBroadcaster) Subscribe(sessionID string) chan ProgressEvent {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	ch := make(chan ProgressEvent, 10) // Buffered to prevent blocking

	if eb.clients[sessionID] == nil {
		eb.clients[sessionID] = make(map[chan ProgressEvent]bool)
	}
	eb.clients[sessionID][ch] = true

	// Hand late subscribers the most recent event
	if lastEvent, ok := eb.lastEvent[sessionID]; ok {
		select {
		case ch <- lastEvent:
		default:
		}
	}

	slog.Debug("Progress client subscribed", "session_id", sessionID, "total_clients", len(eb.clients[sessionID]))
	return ch
}

// Unsubscribe removes a client from receiving events
func (eb *EventBroadcaster) Unsubscribe(sessionID string, ch chan ProgressEvent) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if clients, ok := eb.clients[sessionID]; ok {
		delete(clients, ch)
		close(ch)

		if len(clients) == 0 {
			delete(eb.clients, sessionID)
		}
	}

	slog.Debug("Progress client unsubscribed", "session_id", sessionID)
}

// Broadcast sends an event to all subscribed clients for a session
func (eb *EventBroadcaster) Broadcast(event ProgressEvent) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	eb.lastEvent[event.SessionID] = event

	clients, ok := eb.clients[event.SessionID]
	if !ok || len(clients) == 0 {
		return
	}

	for ch := range clients {
		select {
		case ch <- event:
		default:
			// Channel full, skip this client (prevents blocking)
			slog.Warn("Progress channel full, skipping event", "session_id", event.SessionID)
		}
	}
}

// Cleanup removes all clients and cached events for a session
func (eb *EventBroadcaster) Cleanup(sessionID string) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if clients, ok := eb.clients[sessionID]; ok {
		for ch := range clients {
			close(ch)
		}
		delete(eb.clients, sessionID)
	}

	delete(eb.lastEvent, sessionID)
}
