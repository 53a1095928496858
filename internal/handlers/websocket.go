package handlers

import (
	"encoding/json"
	"net/http"

	"shootdesk-backend/internal/services"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WebSocketHandler streams shoot and availability changes to signed-in clients
type WebSocketHandler struct {
	hub         *services.WSHub
	authService *services.AuthService
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(hub *services.WSHub, authService *services.AuthService) *WebSocketHandler {
	return &WebSocketHandler{
		hub:         hub,
		authService: authService,
	}
}

// HandleWebSocket handles GET /ws?token=
func (h *WebSocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		respondError(w, "token required", http.StatusUnauthorized)
		return
	}

	session, err := h.authService.Authenticate(token)
	if err != nil {
		respondError(w, "invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade WebSocket connection")
		return
	}

	h.hub.Register(session, conn)
	defer h.hub.Unregister(session.ID, conn)

	connected := services.WSMessage{
		Type: "connected",
		Data: map[string]any{
			"profile_id": session.ProfileID,
			"role":       session.Role,
		},
	}
	if err := h.hub.SendToSession(session.ID, connected); err != nil {
		log.Error().Err(err).Str("session_id", session.ID).Msg("Failed to send connected message")
	}

	log.Info().Str("profile_id", session.ProfileID).Msg("WebSocket connection established")

	for {
		_, messageBytes, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Error().Err(err).Str("session_id", session.ID).Msg("WebSocket error")
			}
			break
		}

		var msg services.WSMessage
		if err := json.Unmarshal(messageBytes, &msg); err != nil {
			h.reply(session.ID, services.WSMessage{Type: "error", Message: "Invalid message format"})
			continue
		}

		switch msg.Type {
		case "ping":
			h.reply(session.ID, services.WSMessage{Type: "pong"})
		default:
			h.reply(session.ID, services.WSMessage{Type: "error", Message: "Unknown message type"})
		}
	}
}

func (h *WebSocketHandler) reply(sessionID string, msg services.WSMessage) {
	if err := h.hub.SendToSession(sessionID, msg); err != nil {
		log.Error().Err(err).Str("session_id", sessionID).Str("type", msg.Type).Msg("Failed to send message")
	}
}
