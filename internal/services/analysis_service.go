package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"gorm.io/gorm"

	"github.com/cybervision/siem/backend/internal/llm"
	"github.com/cybervision/siem/backend/internal/metrics"
	"github.com/cybervision/siem/backend/internal/models"
)

var (
	// ErrAnalysisRunning is returned when a run is requested while one
	// is already in flight; the operation is not reentrant.
	ErrAnalysisRunning = errors.New("analysis already in progress")
	// ErrUnprocessable marks a response that came back but does not
	// match the analysis schema. Never retried.
	ErrUnprocessable = errors.New("analysis response could not be processed")
)

const analysisSystemPrompt = `You are a professional SOC L1 analyst. Analyze the following security events and identify incidents.
Respond with exactly one JSON object and no other text. Required fields:
"threatLevel" (one of "low", "medium", "high", "critical"), "summary" (string),
"detections" (array of objects with required "type", "description" and "risk" strings),
"recommendations" (array of strings), "isAnomalous" (boolean).`

// AnalysisService orchestrates the external analysis boundary: it
// serializes an event window, invokes the model, validates the result
// and persists it. Failures never touch previously stored analyses.
type AnalysisService struct {
	DB     *gorm.DB
	client llm.Client

	notifications *NotificationService
	window        int
	running       atomic.Bool
	now           func() time.Time
}

func NewAnalysisService(db *gorm.DB, client llm.Client, notifications *NotificationService, window int) *AnalysisService {
	return &AnalysisService{
		DB:            db,
		client:        client,
		notifications: notifications,
		window:        window,
		now:           time.Now,
	}
}

// Busy reports whether a run is currently in flight.
func (s *AnalysisService) Busy() bool {
	return s.running.Load()
}

// Run analyzes the given snapshot. The snapshot is fixed at invocation;
// events arriving afterwards do not affect the in-flight run. Only the
// newest window-sized prefix is sent to bound the request payload.
func (s *AnalysisService) Run(ctx context.Context, events []models.SecurityEvent) (*models.StoredAnalysis, error) {
	if !s.running.CompareAndSwap(false, true) {
		metrics.IncAnalysisRun("busy")
		return nil, ErrAnalysisRunning
	}
	defer s.running.Store(false)

	if len(events) > s.window {
		events = events[:s.window]
	}

	raw, err := s.client.Generate(ctx, analysisSystemPrompt, eventContext(events))
	if err != nil {
		metrics.IncAnalysisRun("transport_error")
		return nil, fmt.Errorf("invoke analysis boundary: %w", err)
	}

	var result models.AnalysisResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		metrics.IncAnalysisRun("unprocessable")
		return nil, fmt.Errorf("%w: %v", ErrUnprocessable, err)
	}
	if err := result.Validate(); err != nil {
		metrics.IncAnalysisRun("unprocessable")
		return nil, fmt.Errorf("%w: %v", ErrUnprocessable, err)
	}

	stored := &models.StoredAnalysis{
		Timestamp:      s.now().UTC(),
		AnalysisResult: result,
	}
	if err := s.DB.Create(stored).Error; err != nil {
		metrics.IncAnalysisRun("persist_error")
		return nil, fmt.Errorf("persist analysis: %w", err)
	}
	metrics.IncAnalysisRun("success")

	if s.notifications != nil && result.ThreatLevel.Rank() >= models.SeverityHigh.Rank() {
		s.notifications.AlertAnalysis(stored)
	}
	return stored, nil
}

// Latest returns the stored analysis with the greatest timestamp, or
// gorm.ErrRecordNotFound when none exist.
func (s *AnalysisService) Latest() (*models.StoredAnalysis, error) {
	var rec models.StoredAnalysis
	if err := s.DB.Order("timestamp desc").First(&rec).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

// IsNotFound reports whether err means no analysis exists yet.
func (s *AnalysisService) IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// Clear empties the analysis collection.
func (s *AnalysisService) Clear() error {
	return s.DB.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.StoredAnalysis{}).Error
}

// eventContext serializes events into the line format the prompt refers
// to: one event per line, newest first.
func eventContext(events []models.SecurityEvent) string {
	var b strings.Builder
	b.WriteString("Events:\n")
	for _, ev := range events {
		fmt.Fprintf(&b, "[%s] Agent: %s, Rule: %s, Desc: %s, Severity: %s, Source: %s, Log: %s\n",
			ev.Timestamp.UTC().Format(time.RFC3339), ev.AgentName, ev.RuleID,
			ev.Description, ev.Severity, ev.SourceIP, ev.FullLog)
	}
	return b.String()
}
