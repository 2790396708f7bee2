package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cybervision/siem/backend/internal/llm"
	"github.com/cybervision/siem/backend/internal/services"
)

type AnalysisHandler struct {
	analyses *services.AnalysisService
	feed     *services.FeedService
}

func NewAnalysisHandler(analyses *services.AnalysisService, feed *services.FeedService) *AnalysisHandler {
	return &AnalysisHandler{analyses: analyses, feed: feed}
}

// Run triggers an assessment of the current window. Concurrent runs are
// rejected; transport and schema failures map to distinct status codes.
func (h *AnalysisHandler) Run(c *gin.Context) {
	stored, err := h.analyses.Run(c.Request.Context(), h.feed.Snapshot())
	switch {
	case err == nil:
		h.feed.SetLatestAnalysis(stored)
		c.JSON(http.StatusOK, stored)
	case errors.Is(err, services.ErrAnalysisRunning):
		c.JSON(http.StatusConflict, gin.H{"error": "Analysis already running"})
	case errors.Is(err, services.ErrUnprocessable):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Analysis response unusable"})
	case llm.IsTransport(err):
		c.JSON(http.StatusBadGateway, gin.H{"error": "Analysis backend unreachable"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Analysis failed"})
	}
}

// Latest serves the most recent stored assessment.
func (h *AnalysisHandler) Latest(c *gin.Context) {
	latest, err := h.analyses.Latest()
	if err != nil {
		if h.analyses.IsNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "No analysis yet"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load analysis"})
		return
	}
	c.JSON(http.StatusOK, latest)
}
