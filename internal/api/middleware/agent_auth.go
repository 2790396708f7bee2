package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cybervision/siem/backend/internal/services"
)

// AgentAuth guards collector ingestion with X-API-Key tokens. While no
// tokens exist the endpoint stays open so a fresh install can receive
// events before any key is minted.
func AgentAuth(tokens *services.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		count, err := tokens.Count()
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to check agent tokens"})
			return
		}
		if count == 0 {
			c.Next()
			return
		}

		key := c.GetHeader("X-API-Key")
		if key == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing X-API-Key header"})
			return
		}

		token, err := tokens.Authenticate(key)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid agent token"})
			return
		}

		c.Set("agentToken", token)
		c.Next()
	}
}
