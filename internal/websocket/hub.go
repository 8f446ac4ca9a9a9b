package websocket

import (
	"encoding/json"
	"sync"

	"github.com/mitbhavsaar/smart-crm-solutions/pkg/logger"
)

// Client is one websocket connection watching a configuration session.
type Client struct {
	Hub       *Hub
	Conn      *Conn
	UserID    uint
	SessionID string
	Send      chan []byte
}

// Hub fans configuration-session events out to the clients watching each
// session. Multiple clients may watch the same session (multi device, or a
// sales rep and a manager on the same quote).
type Hub struct {
	sessions map[string]map[*Client]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan *sessionEvent

	mu sync.RWMutex
}

type sessionEvent struct {
	SessionID string
	Message   []byte
}

// Event is the wire shape of one session notification.
type Event struct {
	Type    string      `json:"type"`
	Session interface{} `json:"session,omitempty"`
}

func NewHub() *Hub {
	return &Hub{
		sessions:   make(map[string]map[*Client]bool),
		register:   make(chan *Client, 256),
		unregister: make(chan *Client, 256),
		broadcast:  make(chan *sessionEvent, 1024),
	}
}

// Run processes registrations and broadcasts. Call in its own goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			watchers, ok := h.sessions[client.SessionID]
			if !ok {
				watchers = make(map[*Client]bool)
				h.sessions[client.SessionID] = watchers
			}
			watchers[client] = true
			h.mu.Unlock()
			logger.Debug("Session watcher registered", map[string]interface{}{
				"session_id": client.SessionID,
				"user_id":    client.UserID,
			})

		case client := <-h.unregister:
			h.mu.Lock()
			if watchers, ok := h.sessions[client.SessionID]; ok {
				if watchers[client] {
					delete(watchers, client)
					close(client.Send)
				}
				if len(watchers) == 0 {
					delete(h.sessions, client.SessionID)
				}
			}
			h.mu.Unlock()

		case event := <-h.broadcast:
			h.mu.RLock()
			for client := range h.sessions[event.SessionID] {
				select {
				case client.Send <- event.Message:
				default:
					// Slow consumer; drop the event rather than block
					// every other watcher.
					logger.Warn("Dropping session event for slow client", map[string]interface{}{
						"session_id": event.SessionID,
						"user_id":    client.UserID,
					})
				}
			}
			h.mu.RUnlock()
		}
	}
}

// NotifySession satisfies the session service's notifier interface.
func (h *Hub) NotifySession(sessionID string, eventType string, payload interface{}) {
	message, err := json.Marshal(Event{Type: eventType, Session: payload})
	if err != nil {
		logger.Error("Failed to encode session event", err, map[string]interface{}{
			"session_id": sessionID,
			"event":      eventType,
		})
		return
	}
	h.broadcast <- &sessionEvent{SessionID: sessionID, Message: message}
}

// Register adds a client to the hub.
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister removes a client from the hub.
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}
