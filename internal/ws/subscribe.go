package ws

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"messaging-service/internal/channels"
	"messaging-service/internal/middleware"
	"messaging-service/internal/observability"
	"messaging-service/internal/presence"
	"messaging-service/internal/rabbitmq"
)

// SubscribeHandler upgrades clients and attaches them to realtime channels.
type SubscribeHandler struct {
	hub       *Hub
	presence  *presence.Store
	events    rabbitmq.Publisher
	jwtSecret string
	logger    *zap.Logger
}

// NewSubscribeHandler constructs a SubscribeHandler.
func NewSubscribeHandler(hub *Hub, store *presence.Store, events rabbitmq.Publisher, jwtSecret string, logger *zap.Logger) *SubscribeHandler {
	return &SubscribeHandler{hub: hub, presence: store, events: events, jwtSecret: jwtSecret, logger: logger}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type lifecycleEvent struct {
	Event      string   `json:"event"`
	ConnID     string   `json:"conn_id"`
	UserID     int      `json:"user_id"`
	Channels   []string `json:"channels"`
	IP         string   `json:"ip"`
	RequestID  string   `json:"request_id"`
	DurationMS int64    `json:"duration_ms"`
	Reason     string   `json:"reason,omitempty"`
}

// Handle authorizes every requested channel, upgrades the connection and
// keeps it registered until the client goes away. A single unauthorized
// channel rejects the whole subscription; there is no partial delivery.
func (h *SubscribeHandler) Handle(c *gin.Context) {
	ctx, span := otel.Tracer("messaging-service/ws").Start(c.Request.Context(), "ws.handshake")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	token := c.GetHeader("Authorization")
	if parts := strings.SplitN(token, " ", 2); len(parts) == 2 {
		token = parts[1]
	} else {
		token = c.Query("token")
	}
	userID, err := middleware.ValidateToken(h.jwtSecret, token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	requested := strings.Split(c.Query("channels"), ",")
	subscribed := make([]string, 0, len(requested))
	for _, channel := range requested {
		channel = strings.TrimSpace(channel)
		if channel == "" {
			continue
		}
		if !channels.Authorize(userID, channel) {
			observability.IncSubscriptionDenied()
			c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		subscribed = append(subscribed, channel)
	}
	if len(subscribed) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no channels requested"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	info := ConnInfo{
		ConnID:      newConnID(),
		UserID:      userID,
		IP:          observability.IPFromRequest(c.Request),
		RequestID:   observability.RequestIDFromRequest(c.Request),
		ConnectedAt: time.Now(),
	}
	for _, channel := range subscribed {
		h.hub.Subscribe(channel, conn, info)
	}
	if err := h.presence.Connected(ctx, userID); err != nil {
		h.logger.Warn("presence connect failed", zap.Int("user_id", userID), zap.Error(err))
	}

	observability.IncWSActive()
	observability.IncWSEvent("ws_connect")
	h.publishLifecycle(ctx, "ws.connect", lifecycleEvent{
		Event:     "ws_connect",
		ConnID:    info.ConnID,
		UserID:    userID,
		Channels:  subscribed,
		IP:        info.IP,
		RequestID: info.RequestID,
	})

	go h.readLoop(ctx, conn, info, subscribed)
}

// readLoop drains the connection until it closes, then tears everything down.
func (h *SubscribeHandler) readLoop(ctx context.Context, conn *websocket.Conn, info ConnInfo, subscribed []string) {
	var closeReason string
	defer func() {
		for _, channel := range subscribed {
			h.hub.Unsubscribe(channel, conn)
		}
		if err := h.presence.Disconnected(context.Background(), info.UserID); err != nil {
			h.logger.Warn("presence disconnect failed", zap.Int("user_id", info.UserID), zap.Error(err))
		}
		observability.DecWSActive()
		observability.IncWSEvent("ws_disconnect")
		h.publishLifecycle(ctx, "ws.disconnect", lifecycleEvent{
			Event:      "ws_disconnect",
			ConnID:     info.ConnID,
			UserID:     info.UserID,
			Channels:   subscribed,
			IP:         info.IP,
			RequestID:  info.RequestID,
			DurationMS: time.Since(info.ConnectedAt).Milliseconds(),
			Reason:     closeReason,
		})
		conn.Close()
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			closeReason = err.Error()
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				observability.IncWSEvent("ws_error")
			}
			return
		}
		// Any inbound frame doubles as a keepalive for presence.
		if err := h.presence.Touch(context.Background(), info.UserID); err != nil {
			h.logger.Debug("presence touch failed", zap.Int("user_id", info.UserID), zap.Error(err))
		}
	}
}

func (h *SubscribeHandler) publishLifecycle(ctx context.Context, routingKey string, event lifecycleEvent) {
	if h.events == nil {
		return
	}
	if err := h.events.Publish(ctx, routingKey, event); err != nil {
		observability.IncPublishError("amqp")
	}
}
