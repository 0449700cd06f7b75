package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"messaging-service/internal/models"
	"messaging-service/internal/repositories"
)

// NotificationHandler manages persisted panel notifications.
type NotificationHandler struct {
	notificationRepo repositories.NotificationRepository
	notifier         Notifier
}

// NewNotificationHandler builds a NotificationHandler.
func NewNotificationHandler(notificationRepo repositories.NotificationRepository, notifier Notifier) *NotificationHandler {
	return &NotificationHandler{notificationRepo: notificationRepo, notifier: notifier}
}

// ListNotifications returns the user's stored notifications, newest first.
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	userID := c.GetInt("userID")

	records, err := h.notificationRepo.ListNotifications(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load notifications"})
		return
	}
	if records == nil {
		records = []models.NotificationRecord{}
	}

	c.JSON(http.StatusOK, gin.H{"notifications": records})
}

// MarkNotificationsRead stamps every unread notification for the user.
func (h *NotificationHandler) MarkNotificationsRead(c *gin.Context) {
	userID := c.GetInt("userID")

	updated, err := h.notificationRepo.MarkNotificationsRead(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to mark notifications read"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"updated": updated})
}

// Announce stores and broadcasts a panel notification to a single user. Used
// by the administration screens for fee reminders and board announcements.
func (h *NotificationHandler) Announce(c *gin.Context) {
	var req struct {
		UserID  int    `json:"user_id" binding:"required"`
		Message string `json:"message" binding:"required"`
		URL     string `json:"url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.notifier.Announce(c.Request.Context(), req.UserID, req.Message, req.URL); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store notification"})
		return
	}

	c.Status(http.StatusCreated)
}
