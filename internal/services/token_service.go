package services

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/cybervision/siem/backend/internal/models"
)

const (
	tokenKeyPrefix = "cva_"
	tokenLookupLen = 8
)

// ErrInvalidToken is returned when a presented key matches no agent token.
var ErrInvalidToken = errors.New("invalid agent token")

// TokenService manages API keys for external collectors. Keys are shown
// once at creation; only the bcrypt hash and a lookup prefix persist.
type TokenService struct {
	DB *gorm.DB
}

func NewTokenService(db *gorm.DB) *TokenService {
	return &TokenService{DB: db}
}

// Create mints a token and returns it with the plaintext key.
func (s *TokenService) Create(name string) (*models.AgentToken, string, error) {
	raw := make([]byte, 24)
	if _, err := rand.Read(raw); err != nil {
		return nil, "", fmt.Errorf("generate token: %w", err)
	}
	secret := hex.EncodeToString(raw)
	key := tokenKeyPrefix + secret

	token := &models.AgentToken{
		Name:   name,
		Prefix: secret[:tokenLookupLen],
	}
	if err := token.SetKey(key); err != nil {
		return nil, "", fmt.Errorf("hash token: %w", err)
	}
	if err := s.DB.Create(token).Error; err != nil {
		return nil, "", fmt.Errorf("store token: %w", err)
	}
	return token, key, nil
}

func (s *TokenService) List() ([]models.AgentToken, error) {
	var tokens []models.AgentToken
	result := s.DB.Order("created_at desc").Find(&tokens)
	return tokens, result.Error
}

func (s *TokenService) Delete(id string) error {
	return s.DB.Delete(&models.AgentToken{}, "id = ?", id).Error
}

func (s *TokenService) Count() (int64, error) {
	var count int64
	result := s.DB.Model(&models.AgentToken{}).Count(&count)
	return count, result.Error
}

// Authenticate resolves a presented key to its token, updating last-used.
// The stored prefix narrows the candidate set before bcrypt comparison.
func (s *TokenService) Authenticate(key string) (*models.AgentToken, error) {
	if !strings.HasPrefix(key, tokenKeyPrefix) || len(key) < len(tokenKeyPrefix)+tokenLookupLen {
		return nil, ErrInvalidToken
	}
	prefix := key[len(tokenKeyPrefix) : len(tokenKeyPrefix)+tokenLookupLen]

	var candidates []models.AgentToken
	if err := s.DB.Where("prefix = ?", prefix).Find(&candidates).Error; err != nil {
		return nil, fmt.Errorf("look up token: %w", err)
	}

	for i := range candidates {
		if candidates[i].CheckKey(key) {
			now := time.Now().UTC()
			s.DB.Model(&candidates[i]).Update("last_used_at", now)
			return &candidates[i], nil
		}
	}
	return nil, ErrInvalidToken
}
