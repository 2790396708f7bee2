package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cybervision/siem/backend/internal/services"
	"github.com/cybervision/siem/backend/internal/stats"
)

type StatsHandler struct {
	feed *services.FeedService
}

func NewStatsHandler(feed *services.FeedService) *StatsHandler {
	return &StatsHandler{feed: feed}
}

// Get computes aggregates over the current window on every request.
func (h *StatsHandler) Get(c *gin.Context) {
	c.JSON(http.StatusOK, stats.Compute(h.feed.Snapshot()))
}
