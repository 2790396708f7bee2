package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cybervision/siem/backend/internal/api/handlers"
	"github.com/cybervision/siem/backend/internal/models"
	"github.com/cybervision/siem/backend/internal/services"
)

func newTokenRouter(t *testing.T) (*gin.Engine, *services.TokenService) {
	gin.SetMode(gin.TestMode)
	db := handlers.OpenTestDB(t)
	tokens := services.NewTokenService(db)

	handler := handlers.NewTokenHandler(tokens)
	router := gin.New()
	router.GET("/tokens", handler.List)
	router.POST("/tokens", handler.Create)
	router.DELETE("/tokens/:id", handler.Delete)
	return router, tokens
}

func TestTokenHandler_CreateAndList(t *testing.T) {
	router, _ := newTokenRouter(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/tokens", bytes.NewBufferString(`{"name":"wazuh-collector"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	var created struct {
		Token models.AgentToken `json:"token"`
		Key   string            `json:"key"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.True(t, strings.HasPrefix(created.Key, "cva_"))
	assert.Equal(t, "wazuh-collector", created.Token.Name)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/tokens", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var tokens []models.AgentToken
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tokens))
	require.Len(t, tokens, 1)
	// Hash never leaves the server
	assert.NotContains(t, w.Body.String(), "keyHash")
	assert.NotContains(t, w.Body.String(), "key_hash")
}

func TestTokenHandler_CreateRequiresName(t *testing.T) {
	router, _ := newTokenRouter(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/tokens", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTokenHandler_Delete(t *testing.T) {
	router, tokens := newTokenRouter(t)

	token, _, err := tokens.Create("stale")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("DELETE", "/tokens/"+token.ID, nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	count, err := tokens.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}
