package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cybervision/siem/backend/internal/llm"
	"github.com/cybervision/siem/backend/internal/models"
)

// fakeLLM returns a canned response or error; an optional gate blocks
// Generate until released so tests can hold a run in flight.
type fakeLLM struct {
	resp string
	err  error
	gate chan struct{}
}

func (f *fakeLLM) Generate(ctx context.Context, system, user string) (string, error) {
	if f.gate != nil {
		<-f.gate
	}
	return f.resp, f.err
}

const validAnalysisJSON = `{
	"threatLevel": "high",
	"summary": "Brute force attack in progress",
	"detections": [{"type": "brute-force", "description": "Repeated SSH failures from one source", "risk": "high"}],
	"recommendations": ["Block the offending address"],
	"isAnomalous": true
}`

func TestAnalysisServiceRun(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAnalysisService(db, &fakeLLM{resp: validAnalysisJSON}, nil, 20)

	events := []models.SecurityEvent{makeEvent("a", "web-01", models.SeverityHigh, time.Now().UTC())}
	stored, err := svc.Run(context.Background(), events)
	require.NoError(t, err)
	assert.NotEmpty(t, stored.ID)
	assert.False(t, stored.Timestamp.IsZero())
	assert.Equal(t, models.SeverityHigh, stored.ThreatLevel)
	assert.True(t, stored.IsAnomalous)

	latest, err := svc.Latest()
	require.NoError(t, err)
	assert.Equal(t, stored.ID, latest.ID)
	assert.False(t, svc.Busy())
}

func TestAnalysisServiceBoundsWindow(t *testing.T) {
	db := setupTestDB(t)

	var gotPrompt string
	client := &promptCapturingLLM{resp: validAnalysisJSON, captured: &gotPrompt}
	svc := NewAnalysisService(db, client, nil, 2)

	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	events := []models.SecurityEvent{
		makeEvent("new", "web-01", models.SeverityLow, base.Add(2*time.Minute)),
		makeEvent("mid", "web-01", models.SeverityLow, base.Add(time.Minute)),
		makeEvent("old", "web-01", models.SeverityLow, base),
	}

	_, err := svc.Run(context.Background(), events)
	require.NoError(t, err)

	// Only the two newest events are serialized
	assert.Contains(t, gotPrompt, "new")
	assert.Contains(t, gotPrompt, "mid")
	assert.NotContains(t, gotPrompt, "old")
}

type promptCapturingLLM struct {
	resp     string
	captured *string
}

func (f *promptCapturingLLM) Generate(ctx context.Context, system, user string) (string, error) {
	*f.captured = user
	return f.resp, nil
}

func TestAnalysisServiceUnprocessableLeavesStateUntouched(t *testing.T) {
	db := setupTestDB(t)

	good := NewAnalysisService(db, &fakeLLM{resp: validAnalysisJSON}, nil, 20)
	prior, err := good.Run(context.Background(), nil)
	require.NoError(t, err)

	for _, raw := range []string{
		"not json at all",
		`{"threatLevel": "severe", "summary": "x"}`,
		`{"threatLevel": "low"}`,
		`{"threatLevel": "low", "summary": "x", "detections": [{"type": "scan"}]}`,
	} {
		bad := NewAnalysisService(db, &fakeLLM{resp: raw}, nil, 20)
		_, err := bad.Run(context.Background(), nil)
		require.Error(t, err, "raw %q", raw)
		assert.ErrorIs(t, err, ErrUnprocessable)

		latest, err := bad.Latest()
		require.NoError(t, err)
		assert.Equal(t, prior.ID, latest.ID, "previous analysis must remain surfaced")
		assert.Equal(t, models.SeverityHigh, latest.ThreatLevel)
	}
}

func TestAnalysisServiceTransportFailureIsDistinct(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAnalysisService(db, &fakeLLM{err: &llm.TransportError{Status: 503}}, nil, 20)

	_, err := svc.Run(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, llm.IsTransport(err))
	assert.NotErrorIs(t, err, ErrUnprocessable)

	// Nothing persisted
	_, err = svc.Latest()
	assert.True(t, svc.IsNotFound(err))
}

func TestAnalysisServiceNotReentrant(t *testing.T) {
	db := setupTestDB(t)
	gate := make(chan struct{})
	svc := NewAnalysisService(db, &fakeLLM{resp: validAnalysisJSON, gate: gate}, nil, 20)

	done := make(chan error, 1)
	go func() {
		_, err := svc.Run(context.Background(), nil)
		done <- err
	}()

	// Wait until the first run holds the busy flag
	require.Eventually(t, svc.Busy, time.Second, time.Millisecond)

	_, err := svc.Run(context.Background(), nil)
	assert.ErrorIs(t, err, ErrAnalysisRunning)

	close(gate)
	require.NoError(t, <-done)
	assert.False(t, svc.Busy())
}

func TestAnalysisServiceLatestSelection(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAnalysisService(db, nil, nil, 20)

	t1 := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)
	t3 := t2.Add(time.Hour)

	// Insert out of order; selection is by timestamp, not insertion
	for _, rec := range []models.StoredAnalysis{
		{ID: "ana-2", Timestamp: t2, AnalysisResult: models.AnalysisResult{ThreatLevel: models.SeverityLow, Summary: "t2"}},
		{ID: "ana-3", Timestamp: t3, AnalysisResult: models.AnalysisResult{ThreatLevel: models.SeverityLow, Summary: "t3"}},
		{ID: "ana-1", Timestamp: t1, AnalysisResult: models.AnalysisResult{ThreatLevel: models.SeverityLow, Summary: "t1"}},
	} {
		require.NoError(t, db.Create(&rec).Error)
	}

	latest, err := svc.Latest()
	require.NoError(t, err)
	assert.Equal(t, "ana-3", latest.ID)
}

func TestAnalysisServiceAlertsOnHighThreat(t *testing.T) {
	db := setupTestDB(t)
	notifications := NewNotificationService(db, nil)
	svc := NewAnalysisService(db, &fakeLLM{resp: validAnalysisJSON}, notifications, 20)

	_, err := svc.Run(context.Background(), nil)
	require.NoError(t, err)

	feed, err := notifications.List(false)
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Contains(t, feed[0].Title, "high")
}
