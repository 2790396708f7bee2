package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cybervision/siem/backend/internal/services"
)

type TokenHandler struct {
	tokens *services.TokenService
}

func NewTokenHandler(tokens *services.TokenService) *TokenHandler {
	return &TokenHandler{tokens: tokens}
}

func (h *TokenHandler) List(c *gin.Context) {
	tokens, err := h.tokens.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list tokens"})
		return
	}
	c.JSON(http.StatusOK, tokens)
}

// Create mints a token. The plaintext key appears in this response only.
func (h *TokenHandler) Create(c *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Token name is required"})
		return
	}

	token, key, err := h.tokens.Create(req.Name)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create token"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"token": token, "key": key})
}

func (h *TokenHandler) Delete(c *gin.Context) {
	if err := h.tokens.Delete(c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Token deleted"})
}
