package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cybervision/siem/backend/internal/services"
)

type LiveFeedHandler struct {
	live *services.LiveFeed
	feed *services.FeedService
}

func NewLiveFeedHandler(live *services.LiveFeed, feed *services.FeedService) *LiveFeedHandler {
	return &LiveFeedHandler{live: live, feed: feed}
}

func (h *LiveFeedHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"running":    h.live.Running(),
		"syncStatus": h.feed.Status(),
	})
}

func (h *LiveFeedHandler) Start(c *gin.Context) {
	h.live.Start()
	c.JSON(http.StatusOK, gin.H{"running": true})
}

func (h *LiveFeedHandler) Stop(c *gin.Context) {
	h.live.Stop()
	c.JSON(http.StatusOK, gin.H{"running": false})
}
