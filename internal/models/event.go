package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EventOrigin tags how an event entered the system.
type EventOrigin string

const (
	// OriginSeed marks records from the built-in demo set.
	OriginSeed EventOrigin = "seed"
	// OriginSynthetic marks records produced by the live feed simulator.
	OriginSynthetic EventOrigin = "synthetic"
	// OriginExternalHook marks records submitted by a deployed collector.
	OriginExternalHook EventOrigin = "external-hook"
)

// SecurityEvent is one observed log or alert. Records are immutable once
// created; the id is the upsert key, so resubmitting an id replaces the
// record wholesale (last write wins).
//
// JSON field names follow the collector wire contract, which is why they
// are camelCase rather than the snake_case used elsewhere.
type SecurityEvent struct {
	ID            string      `json:"id" gorm:"primaryKey"`
	Timestamp     time.Time   `json:"timestamp" gorm:"index"`
	AgentName     string      `json:"agentName" gorm:"index"`
	RuleID        string      `json:"ruleId"`
	Description   string      `json:"description"`
	Severity      Severity    `json:"severity"`
	SourceIP      string      `json:"sourceIp"`
	Location      string      `json:"location"`
	FullLog       string      `json:"fullLog" gorm:"type:text"`
	AIPreAnalysis string      `json:"aiPreAnalysis,omitempty" gorm:"type:text"`
	Origin        EventOrigin `json:"origin,omitempty"`
	CreatedAt     time.Time   `json:"-"`
}

func (e *SecurityEvent) BeforeCreate(tx *gorm.DB) (err error) {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	return
}

// Normalize fills defaults for records arriving over the ingestion
// boundary and rejects invalid severities.
func (e *SecurityEvent) Normalize(now time.Time) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = now
	}
	if e.Origin == "" {
		e.Origin = OriginExternalHook
	}
	if _, err := ParseSeverity(string(e.Severity)); err != nil {
		return err
	}
	return nil
}
