package handlers

import (
	"github.com/gofiber/websocket/v2"

	"github.com/allinone/backend/internal/broadcast"
)

// WebSocketHandler serves the live incident feed. Observers are read-only;
// every mutation shows up as a full-record event.
type WebSocketHandler struct {
	hub *broadcast.Hub
}

func NewWebSocketHandler(hub *broadcast.Hub) *WebSocketHandler {
	return &WebSocketHandler{
		hub: hub,
	}
}

func (h *WebSocketHandler) HandleConnection(c *websocket.Conn) {
	h.hub.HandleConnection(c)
}
