package realtime

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

// EventPublisher mirrors broadcast events to an external channel (Redis) so
// consumers without a WebSocket, like a projector dashboard, can follow the
// session. May be nil.
type EventPublisher interface {
	PublishSessionEvent(event string, payload []byte) error
}

// Hub tracks every connected client in the classroom and delivers events to
// one connection or to all of them. It implements session.Sender.
type Hub struct {
	clients map[string]*Client
	mu      sync.RWMutex
	logger  *zap.Logger
	mirror  EventPublisher
}

// NewHub creates a hub. mirror may be nil to disable external event mirroring.
func NewHub(logger *zap.Logger, mirror EventPublisher) *Hub {
	return &Hub{
		clients: make(map[string]*Client),
		logger:  logger,
		mirror:  mirror,
	}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	h.clients[c.ID] = c
	count := len(h.clients)
	h.mu.Unlock()
	h.logger.Debug("client connected", zap.String("conn_id", c.ID), zap.Int("clients", count))
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	delete(h.clients, c.ID)
	count := len(h.clients)
	h.mu.Unlock()
	h.logger.Debug("client disconnected", zap.String("conn_id", c.ID), zap.Int("clients", count))
}

// Broadcast sends an event to every connected client and mirrors it to the
// external publisher when one is configured. Clients with a full send buffer
// are skipped rather than blocked on.
func (h *Hub) Broadcast(event string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	msg := WSMessage{Event: event, Data: data}

	h.mu.RLock()
	for _, c := range h.clients {
		select {
		case c.send <- msg:
		default:
			// buffer full, skip
		}
	}
	h.mu.RUnlock()

	if h.mirror != nil {
		_ = h.mirror.PublishSessionEvent(event, data)
	}
}

// SendTo sends an event to a single connection. Unknown ids are ignored.
func (h *Hub) SendTo(connID, event string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	msg := WSMessage{Event: event, Data: data}

	h.mu.RLock()
	c, ok := h.clients[connID]
	h.mu.RUnlock()
	if !ok {
		return
	}
	select {
	case c.send <- msg:
	default:
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
