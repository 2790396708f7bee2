package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/cybervision/siem/backend/internal/models"
)

func newFeedFixture(t *testing.T, windowCap int) (*FeedService, *EventService, *AnalysisService) {
	t.Helper()
	db := setupTestDB(t)
	events := NewEventService(db)
	analyses := NewAnalysisService(db, nil, nil, 20)
	feed := NewFeedService(events, analyses, nil, windowCap)
	return feed, events, analyses
}

func TestFeedStartupSeedsEmptyStore(t *testing.T) {
	feed, events, _ := newFeedFixture(t, 100)

	require.NoError(t, feed.Startup())

	count, err := events.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(len(models.DemoEvents())), count)

	window := feed.Snapshot()
	assert.Len(t, window, len(models.DemoEvents()))
	assert.Equal(t, SyncConnected, feed.Status())
	assert.Nil(t, feed.LatestAnalysis())

	// Window matches the store, newest first
	assert.Equal(t, "5", window[0].ID)
	assert.Equal(t, "1", window[len(window)-1].ID)
}

func TestFeedStartupKeepsExistingStore(t *testing.T) {
	feed, events, _ := newFeedFixture(t, 100)
	ts := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, events.Upsert([]models.SecurityEvent{makeEvent("x", "web-01", models.SeverityLow, ts)}))

	require.NoError(t, feed.Startup())

	window := feed.Snapshot()
	require.Len(t, window, 1)
	assert.Equal(t, "x", window[0].ID)
}

func TestFeedStartupAdoptsLatestAnalysis(t *testing.T) {
	feed, _, analyses := newFeedFixture(t, 100)
	rec := models.StoredAnalysis{
		ID:             "ana-1",
		Timestamp:      time.Now().UTC(),
		AnalysisResult: models.AnalysisResult{ThreatLevel: models.SeverityHigh, Summary: "prior"},
	}
	require.NoError(t, analyses.DB.Create(&rec).Error)

	require.NoError(t, feed.Startup())

	latest := feed.LatestAnalysis()
	require.NotNil(t, latest)
	assert.Equal(t, "ana-1", latest.ID)
}

func TestFeedStartupDegradesOnFailure(t *testing.T) {
	feed, events, _ := newFeedFixture(t, 100)
	sqlDB, err := events.DB.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	assert.Error(t, feed.Startup())
	assert.Equal(t, SyncError, feed.Status())
	assert.Empty(t, feed.Snapshot())
}

func TestFeedAppendMaintainsNewestFirstAndCap(t *testing.T) {
	feed, _, _ := newFeedFixture(t, 5)
	require.NoError(t, feed.Startup()) // seeds 5 demo events, filling the cap

	base := time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 8; i++ {
		feed.Append(makeEvent(string(rune('a'+i)), "live-01", models.SeverityLow, base.Add(time.Duration(i)*time.Second)))
	}

	window := feed.Snapshot()
	require.Len(t, window, 5)
	for i := 1; i < len(window); i++ {
		assert.False(t, window[i].Timestamp.After(window[i-1].Timestamp),
			"window must stay sorted newest first")
	}
	assert.Equal(t, "h", window[0].ID)
	assert.Equal(t, SyncConnected, feed.Status())
}

func TestFeedAppendPersists(t *testing.T) {
	feed, events, _ := newFeedFixture(t, 100)

	feed.Append(makeEvent("live-1", "live-01", models.SeverityLow, time.Now().UTC()))

	stored, err := events.ListAll()
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "live-1", stored[0].ID)
}

func TestFeedAppendSurvivesPersistenceFailure(t *testing.T) {
	feed, events, _ := newFeedFixture(t, 100)
	sqlDB, err := events.DB.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	feed.Append(makeEvent("live-1", "live-01", models.SeverityLow, time.Now().UTC()))

	// In-memory state retained, status degraded
	assert.Len(t, feed.Snapshot(), 1)
	assert.Equal(t, SyncError, feed.Status())
}

func TestFeedIngest(t *testing.T) {
	feed, events, _ := newFeedFixture(t, 100)
	require.NoError(t, feed.Startup())

	accepted, err := feed.Ingest([]models.SecurityEvent{
		{AgentName: "agent-9", RuleID: "5710", Severity: models.SeverityMedium, SourceIP: "192.0.2.1"},
	})
	require.NoError(t, err)
	require.Len(t, accepted, 1)
	assert.NotEmpty(t, accepted[0].ID)
	assert.Equal(t, models.OriginExternalHook, accepted[0].Origin)

	count, err := events.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(len(models.DemoEvents())+1), count)
}

func TestFeedIngestRejectsInvalidSeverity(t *testing.T) {
	feed, events, _ := newFeedFixture(t, 100)

	_, err := feed.Ingest([]models.SecurityEvent{
		{AgentName: "ok", Severity: models.SeverityLow},
		{AgentName: "bad", Severity: "apocalyptic"},
	})
	require.Error(t, err)

	// Whole batch rejected
	count, err := events.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
	assert.Empty(t, feed.Snapshot())
}

func TestFeedIngestAlertsOnCritical(t *testing.T) {
	db := setupTestDB(t)
	events := NewEventService(db)
	analyses := NewAnalysisService(db, nil, nil, 20)
	notifications := NewNotificationService(db, nil)
	feed := NewFeedService(events, analyses, notifications, 100)

	_, err := feed.Ingest([]models.SecurityEvent{
		{AgentName: "fw-edge", RuleID: "87105", Severity: models.SeverityCritical, SourceIP: "10.0.0.15"},
	})
	require.NoError(t, err)

	alerts, err := notifications.List(false)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, models.NotificationTypeError, alerts[0].Type)
	assert.Contains(t, alerts[0].Title, "fw-edge")
}

func TestFeedReset(t *testing.T) {
	feed, events, analyses := newFeedFixture(t, 100)
	require.NoError(t, feed.Startup())

	// Accumulate extra state beyond the seed
	feed.Append(makeEvent("extra", "live-01", models.SeverityLow, time.Now().UTC()))
	rec := models.StoredAnalysis{
		ID:             "ana-1",
		Timestamp:      time.Now().UTC(),
		AnalysisResult: models.AnalysisResult{ThreatLevel: models.SeverityLow, Summary: "s"},
	}
	require.NoError(t, analyses.DB.Create(&rec).Error)
	feed.SetLatestAnalysis(&rec)

	require.NoError(t, feed.Reset())

	// Store holds exactly the demo set again; analysis gone
	count, err := events.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(len(models.DemoEvents())), count)
	assert.Len(t, feed.Snapshot(), len(models.DemoEvents()))
	assert.Nil(t, feed.LatestAnalysis())

	_, err = analyses.Latest()
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
