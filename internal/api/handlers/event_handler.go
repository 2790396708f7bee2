package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/cybervision/siem/backend/internal/models"
	"github.com/cybervision/siem/backend/internal/services"
)

type EventHandler struct {
	feed   *services.FeedService
	events *services.EventService
}

func NewEventHandler(feed *services.FeedService, events *services.EventService) *EventHandler {
	return &EventHandler{feed: feed, events: events}
}

// List serves the in-memory window by default. `all=true` reads the full
// durable collection instead; `limit` truncates either view.
func (h *EventHandler) List(c *gin.Context) {
	var events []models.SecurityEvent
	if c.Query("all") == "true" {
		stored, err := h.events.ListAll()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list events"})
			return
		}
		events = stored
	} else {
		events = h.feed.Snapshot()
	}

	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
			return
		}
		if limit < len(events) {
			events = events[:limit]
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"events":     events,
		"syncStatus": h.feed.Status(),
	})
}

// Ingest accepts a batch of collector events. The batch is atomic: one
// malformed record rejects the whole request.
func (h *EventHandler) Ingest(c *gin.Context) {
	var batch []models.SecurityEvent
	if err := c.ShouldBindJSON(&batch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event payload"})
		return
	}
	if len(batch) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Empty event batch"})
		return
	}

	accepted, err := h.feed.Ingest(batch)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"accepted": len(accepted), "events": accepted})
}
