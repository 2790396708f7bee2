package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cybervision/siem/backend/internal/services"
)

type SystemHandler struct {
	feed *services.FeedService
	live *services.LiveFeed
}

func NewSystemHandler(feed *services.FeedService, live *services.LiveFeed) *SystemHandler {
	return &SystemHandler{feed: feed, live: live}
}

// Reset wipes events and analyses, then reloads the demo seed. The live
// simulator is stopped first so no tick races the wipe.
func (h *SystemHandler) Reset(c *gin.Context) {
	h.live.Stop()

	if err := h.feed.Reset(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Reset failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":    "System reset to demo state",
		"syncStatus": h.feed.Status(),
	})
}
