package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"messaging-service/internal/models"
	"messaging-service/internal/repositories"
	"messaging-service/internal/telemetry"
)

// Notifier is the realtime side-effect surface used after persistence.
type Notifier interface {
	MessageSent(ctx context.Context, msg models.Message)
	MessageRead(ctx context.Context, senderID, readerID int)
	UserTyping(ctx context.Context, senderID, receiverID int)
	Announce(ctx context.Context, userID int, message, url string) error
}

// MessageHandler manages direct-message endpoints.
type MessageHandler struct {
	messageRepo repositories.MessageRepository
	userRepo    repositories.UserRepository
	notifier    Notifier
	audit       *telemetry.AuditEmitter
}

// NewMessageHandler builds a MessageHandler.
func NewMessageHandler(messageRepo repositories.MessageRepository, userRepo repositories.UserRepository, notifier Notifier, audit *telemetry.AuditEmitter) *MessageHandler {
	return &MessageHandler{
		messageRepo: messageRepo,
		userRepo:    userRepo,
		notifier:    notifier,
		audit:       audit,
	}
}

// ListContacts returns every counterpart of the authenticated user with
// unread counts, the source for client badge seeding.
func (h *MessageHandler) ListContacts(c *gin.Context) {
	userID := c.GetInt("userID")

	contacts, err := h.messageRepo.ListContacts(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load contacts"})
		return
	}
	if contacts == nil {
		contacts = []models.Contact{}
	}

	c.JSON(http.StatusOK, gin.H{"contacts": contacts})
}

// ListConversation returns the message history with a counterpart, ordered by
// creation time. Clients refetch here after reconnecting.
func (h *MessageHandler) ListConversation(c *gin.Context) {
	counterpartID, ok := counterpartParam(c)
	if !ok {
		return
	}
	userID := c.GetInt("userID")

	msgs, err := h.messageRepo.ListConversation(c.Request.Context(), userID, counterpartID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
		return
	}

	senderIDs := make([]int, 0, 2)
	seen := map[int]struct{}{}
	for _, m := range msgs {
		if _, ok := seen[m.SenderID]; !ok {
			seen[m.SenderID] = struct{}{}
			senderIDs = append(senderIDs, m.SenderID)
		}
	}

	users, err := h.userRepo.BulkUsers(c.Request.Context(), senderIDs)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load senders"})
		return
	}
	names := map[int]string{}
	for _, u := range users {
		names[u.ID] = u.Name
	}

	resp := make([]models.Message, 0, len(msgs))
	for _, m := range msgs {
		m.Sender = &models.UserInfo{ID: m.SenderID, Name: names[m.SenderID]}
		resp = append(resp, m)
	}

	c.JSON(http.StatusOK, gin.H{"messages": resp})
}

// SendMessage stores a direct message and fans the MessageSent event out to
// the conversation channel and the receiver's personal channel.
func (h *MessageHandler) SendMessage(c *gin.Context) {
	receiverID, ok := counterpartParam(c)
	if !ok {
		return
	}
	userID := c.GetInt("userID")

	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sender, err := h.userRepo.GetUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load sender"})
		return
	}
	if _, err := h.userRepo.GetUser(c.Request.Context(), receiverID); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrUserNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "receiver not found"})
		return
	}

	msg, err := h.messageRepo.CreateMessage(c.Request.Context(), userID, receiverID, req.Content)
	if err != nil {
		if errors.Is(err, repositories.ErrEmptyContent) || errors.Is(err, repositories.ErrSelfMessage) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store message"})
		return
	}
	msg.Sender = &models.UserInfo{ID: sender.ID, Name: sender.Name}

	h.notifier.MessageSent(c.Request.Context(), msg)
	h.audit.Emit(c.Request.Context(), "message_sent", userID, receiverID, "", requestIDFromContext(c))

	c.JSON(http.StatusCreated, msg)
}

// MarkRead stamps every unread message from the counterpart and, only when
// rows were actually updated, emits the read receipt.
func (h *MessageHandler) MarkRead(c *gin.Context) {
	counterpartID, ok := counterpartParam(c)
	if !ok {
		return
	}
	userID := c.GetInt("userID")

	updated, err := h.messageRepo.MarkRead(c.Request.Context(), userID, counterpartID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to mark messages read"})
		return
	}

	if updated > 0 {
		h.notifier.MessageRead(c.Request.Context(), counterpartID, userID)
		h.audit.Emit(c.Request.Context(), "messages_read", userID, counterpartID, "", requestIDFromContext(c))
	}

	c.JSON(http.StatusOK, gin.H{"updated": updated})
}

// UnreadCount returns how many messages from the counterpart the
// authenticated user has not read yet.
func (h *MessageHandler) UnreadCount(c *gin.Context) {
	counterpartID, ok := counterpartParam(c)
	if !ok {
		return
	}
	userID := c.GetInt("userID")

	count, err := h.messageRepo.UnreadCount(c.Request.Context(), userID, counterpartID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to count unread messages"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"unread": count})
}

// Typing emits the ephemeral typing hint for the open conversation.
func (h *MessageHandler) Typing(c *gin.Context) {
	receiverID, ok := counterpartParam(c)
	if !ok {
		return
	}
	userID := c.GetInt("userID")
	if userID == receiverID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot type at yourself"})
		return
	}

	h.notifier.UserTyping(c.Request.Context(), userID, receiverID)
	c.Status(http.StatusNoContent)
}

func counterpartParam(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return 0, false
	}
	return id, true
}
