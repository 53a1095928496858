package services

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// WSMessage represents a WebSocket message
type WSMessage struct {
	Type    string `json:"type"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// wsConn is the part of *websocket.Conn the hub writes to
type wsConn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

type wsClient struct {
	session *Session
	conn    wsConn
	sub     *Subscription
	writeMu sync.Mutex
	done    chan struct{}
}

func (c *wsClient) write(message WSMessage) error {
	data, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

// WSHub forwards broker events to WebSocket connections
type WSHub struct {
	mu          sync.RWMutex
	connections map[string]*wsClient
	broker      *Broker
}

// NewWSHub creates a new WebSocket hub
func NewWSHub(broker *Broker) *WSHub {
	return &WSHub{
		connections: make(map[string]*wsClient),
		broker:      broker,
	}
}

// Register binds a connection to a change subscription for its session
func (h *WSHub) Register(session *Session, conn wsConn) {
	client := &wsClient{
		session: session,
		conn:    conn,
		sub:     h.broker.Subscribe(VisibleTo(session)),
		done:    make(chan struct{}),
	}

	h.mu.Lock()
	existing, exists := h.connections[session.ID]
	h.connections[session.ID] = client
	h.mu.Unlock()

	// Close existing connection if any
	if exists {
		h.release(existing)
	}

	go h.pump(client)

	log.Info().
		Str("profile_id", session.ProfileID).
		Str("session_id", session.ID).
		Msg("WebSocket connection registered")
}

// Unregister removes a connection unless it was already replaced
func (h *WSHub) Unregister(sessionID string, conn wsConn) {
	h.mu.Lock()
	client, exists := h.connections[sessionID]
	if exists && client.conn == conn {
		delete(h.connections, sessionID)
	} else {
		exists = false
	}
	h.mu.Unlock()

	if exists {
		h.release(client)
		log.Info().Str("session_id", sessionID).Msg("WebSocket connection unregistered")
	}
}

// DisconnectSession closes the connection of a session that has ended.
// It is registered with SessionStore.OnDelete.
func (h *WSHub) DisconnectSession(sessionID string) {
	h.mu.Lock()
	client, exists := h.connections[sessionID]
	delete(h.connections, sessionID)
	h.mu.Unlock()

	if exists {
		h.release(client)
		log.Info().Str("session_id", sessionID).Msg("WebSocket connection closed for ended session")
	}
}

func (h *WSHub) release(client *wsClient) {
	h.broker.Unsubscribe(client.sub)
	<-client.done
	client.conn.Close()
}

// pump forwards subscription events until the subscription closes
func (h *WSHub) pump(client *wsClient) {
	defer close(client.done)

	for event := range client.sub.C {
		if err := client.write(WSMessage{Type: string(event.Type), Data: event}); err != nil {
			log.Error().
				Err(err).
				Str("session_id", client.session.ID).
				Msg("Failed to forward event")
		}
	}
}

// SendToSession sends a message to the connection of a session
func (h *WSHub) SendToSession(sessionID string, message WSMessage) error {
	h.mu.RLock()
	client, exists := h.connections[sessionID]
	h.mu.RUnlock()

	if !exists {
		return fmt.Errorf("session %s is not connected", sessionID)
	}
	return client.write(message)
}

// IsOnline checks if a session has a live connection
func (h *WSHub) IsOnline(sessionID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, exists := h.connections[sessionID]
	return exists
}

// Len returns the number of live connections
func (h *WSHub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections)
}
