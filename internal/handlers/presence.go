package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"messaging-service/internal/presence"
)

// PresenceHandler exposes the realtime presence view.
type PresenceHandler struct {
	store *presence.Store
}

// NewPresenceHandler builds a PresenceHandler.
func NewPresenceHandler(store *presence.Store) *PresenceHandler {
	return &PresenceHandler{store: store}
}

// GetPresence reports whether a user currently has a realtime connection.
func (h *PresenceHandler) GetPresence(c *gin.Context) {
	userID, err := strconv.Atoi(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	online, err := h.store.IsOnline(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load presence"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user_id": userID, "online": online})
}
