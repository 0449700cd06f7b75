package ws

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Envelope is the frame written to subscribed websocket clients.
type Envelope struct {
	Channel string          `json:"channel"`
	Event   string          `json:"event"`
	Data    json.RawMessage `json:"data"`
}

// Hub maintains websocket subscriptions keyed by channel name.
type Hub struct {
	rooms    map[string]map[*websocket.Conn]bool
	connInfo map[string]map[*websocket.Conn]ConnInfo
	mu       sync.RWMutex
	logger   *zap.Logger
}

// NewHub creates an empty hub.
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		rooms:    make(map[string]map[*websocket.Conn]bool),
		connInfo: make(map[string]map[*websocket.Conn]ConnInfo),
		logger:   logger,
	}
}

// Subscribe registers a websocket connection on a channel.
func (h *Hub) Subscribe(channel string, conn *websocket.Conn, info ConnInfo) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.rooms[channel]; !ok {
		h.rooms[channel] = make(map[*websocket.Conn]bool)
	}
	h.rooms[channel][conn] = true
	if _, ok := h.connInfo[channel]; !ok {
		h.connInfo[channel] = make(map[*websocket.Conn]ConnInfo)
	}
	h.connInfo[channel][conn] = info
}

// Unsubscribe removes a websocket connection from a channel.
func (h *Hub) Unsubscribe(channel string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.rooms[channel]; ok {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(h.rooms, channel)
		}
	}
	if infos, ok := h.connInfo[channel]; ok {
		delete(infos, conn)
		if len(infos) == 0 {
			delete(h.connInfo, channel)
		}
	}
}

// Broadcast writes an event to every connection subscribed to the channel.
// Write failures evict the connection; delivery is best-effort.
func (h *Hub) Broadcast(channel string, event string, data json.RawMessage) {
	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.rooms[channel]))
	for conn := range h.rooms[channel] {
		conns = append(conns, conn)
	}
	h.mu.RUnlock()

	payload, err := json.Marshal(Envelope{Channel: channel, Event: event, Data: data})
	if err != nil {
		h.logger.Error("marshal broadcast envelope", zap.Error(err))
		return
	}
	for _, conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			h.logger.Warn("websocket write failed", zap.String("channel", channel), zap.Error(err))
			conn.Close()
			h.Unsubscribe(channel, conn)
		}
	}
}

// SubscriberCount reports how many connections are on a channel.
func (h *Hub) SubscriberCount(channel string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[channel])
}
