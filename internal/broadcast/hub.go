package broadcast

import (
	"encoding/json"
	"sync"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/allinone/backend/internal/metrics"
	"github.com/allinone/backend/internal/storage/models"
	"github.com/allinone/backend/pkg/logger"
)

type EventKind string

const (
	EventCreated EventKind = "created"
	EventUpdated EventKind = "updated"
)

// Event is the single message shape observers receive. Every create or
// update carries the full current record; there are no diff broadcasts.
type Event struct {
	Type     EventKind             `json:"type"`
	Incident models.IncidentRecord `json:"incident"`
}

const clientSendBuffer = 16

type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
	once sync.Once
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.send)
	})
}

// Hub fans events out to every connected observer.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*client
}

func NewHub() *Hub {
	return &Hub{clients: make(map[string]*client)}
}

// HandleConnection serves one observer for the lifetime of its websocket.
// It blocks until the peer disconnects.
func (h *Hub) HandleConnection(conn *websocket.Conn) {
	c := &client{
		id:   uuid.New().String(),
		conn: conn,
		send: make(chan []byte, clientSendBuffer),
	}

	h.mu.Lock()
	h.clients[c.id] = c
	count := len(h.clients)
	h.mu.Unlock()

	metrics.ObserversConnected.Set(float64(count))
	logger.Info("Observer connected",
		zap.String("client_id", c.id),
		zap.Int("observers", count),
	)

	go c.writeLoop()

	// The read loop only exists to notice disconnects; observers never
	// send anything the engine acts on.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.remove(c.id)
	logger.Info("Observer disconnected", zap.String("client_id", c.id))
}

func (c *client) writeLoop() {
	for payload := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			logger.Warn("Observer write failed",
				zap.String("client_id", c.id),
				zap.Error(err),
			)
			return
		}
	}
}

func (h *Hub) remove(id string) {
	h.mu.Lock()
	c, ok := h.clients[id]
	if ok {
		delete(h.clients, id)
	}
	count := len(h.clients)
	h.mu.Unlock()

	metrics.ObserversConnected.Set(float64(count))

	if ok {
		c.close()
		c.conn.Close()
	}
}

// Broadcast delivers one event to every observer. Slow observers are skipped
// rather than blocking the engine.
func (h *Hub) Broadcast(event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		logger.Error("Failed to encode broadcast event", zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, c := range h.clients {
		select {
		case c.send <- payload:
		default:
			logger.Warn("Observer send buffer full, dropping event",
				zap.String("client_id", c.id),
				zap.String("incident_id", event.Incident.ID),
			)
		}
	}
}

func (h *Hub) Observers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
