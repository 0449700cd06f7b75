package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"messaging-service/internal/channels"
	"messaging-service/internal/observability"
)

// BroadcastingAuth is the subscription gate invoked by the realtime transport
// before granting a private-channel subscription. A denial carries no reason,
// so a prober learns nothing about who participates in a channel.
func BroadcastingAuth(c *gin.Context) {
	var req struct {
		ChannelName string `json:"channel_name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetInt("userID")
	if !channels.Authorize(userID, req.ChannelName) {
		observability.IncSubscriptionDenied()
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"authorized": true})
}
