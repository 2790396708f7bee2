package models

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AgentToken authenticates an external collector against the ingestion
// endpoint. The plaintext key is shown once at creation; only its bcrypt
// hash is stored, with a short prefix kept for lookup.
type AgentToken struct {
	ID         string     `json:"id" gorm:"primaryKey"`
	Name       string     `json:"name"`
	Prefix     string     `json:"prefix" gorm:"index"`
	KeyHash    string     `json:"-"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

func (t *AgentToken) BeforeCreate(tx *gorm.DB) (err error) {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	return
}

// SetKey hashes and stores the plaintext key.
func (t *AgentToken) SetKey(key string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	t.KeyHash = string(hash)
	return nil
}

// CheckKey reports whether the plaintext key matches the stored hash.
func (t *AgentToken) CheckKey(key string) bool {
	return bcrypt.CompareHashAndPassword([]byte(t.KeyHash), []byte(key)) == nil
}
