package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cybervision/siem/backend/internal/integration"
)

type IntegrationHandler struct {
	endpoint string
}

// NewIntegrationHandler takes the public ingestion endpoint baked into the
// served collector script.
func NewIntegrationHandler(endpoint string) *IntegrationHandler {
	return &IntegrationHandler{endpoint: endpoint}
}

func (h *IntegrationHandler) CollectorGuide(c *gin.Context) {
	c.JSON(http.StatusOK, integration.CollectorGuide(h.endpoint))
}
