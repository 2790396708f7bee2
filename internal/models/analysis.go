package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Detection is one finding inside an analysis.
type Detection struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Risk        string `json:"risk"`
}

// AnalysisResult is the structured assessment returned by the external
// analysis boundary over a batch of events.
type AnalysisResult struct {
	ThreatLevel     Severity    `json:"threatLevel"`
	Summary         string      `json:"summary"`
	Detections      []Detection `json:"detections" gorm:"serializer:json"`
	Recommendations []string    `json:"recommendations" gorm:"serializer:json"`
	IsAnomalous     bool        `json:"isAnomalous"`
}

// Validate enforces the response schema: a known threat level, a summary,
// and fully populated detections. Nil slices are normalized to empty so
// "may be empty but never absent" holds for stored and serialized copies.
func (r *AnalysisResult) Validate() error {
	if _, err := ParseSeverity(string(r.ThreatLevel)); err != nil {
		return fmt.Errorf("threatLevel: %w", err)
	}
	if r.Summary == "" {
		return fmt.Errorf("summary is required")
	}
	for i, d := range r.Detections {
		if d.Type == "" || d.Description == "" || d.Risk == "" {
			return fmt.Errorf("detection %d is missing required fields", i)
		}
	}
	if r.Detections == nil {
		r.Detections = []Detection{}
	}
	if r.Recommendations == nil {
		r.Recommendations = []string{}
	}
	return nil
}

// StoredAnalysis is an AnalysisResult persisted with identity and time.
// Multiple records accumulate; only the newest by timestamp is surfaced.
type StoredAnalysis struct {
	ID             string    `json:"id" gorm:"primaryKey"`
	Timestamp      time.Time `json:"timestamp" gorm:"index"`
	AnalysisResult `gorm:"embedded"`
	CreatedAt      time.Time `json:"-"`
}

func (a *StoredAnalysis) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	return
}
