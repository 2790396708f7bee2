package services

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/cybervision/siem/backend/internal/logger"
	"github.com/cybervision/siem/backend/internal/metrics"
	"github.com/cybervision/siem/backend/internal/models"
	"github.com/cybervision/siem/backend/internal/util"
)

// SyncStatus is the coarse indicator of whether the last persistence
// attempt succeeded.
type SyncStatus string

const (
	SyncConnected SyncStatus = "connected"
	SyncSyncing   SyncStatus = "syncing"
	SyncError     SyncStatus = "error"
)

// FeedService is the application state controller. It exclusively owns
// the bounded in-memory event window and the latest-analysis pointer;
// the live feed and the ingestion handler mutate state only through it.
type FeedService struct {
	mu     sync.RWMutex
	window []models.SecurityEvent
	cap    int
	status SyncStatus
	latest *models.StoredAnalysis

	events        *EventService
	analyses      *AnalysisService
	notifications *NotificationService
}

func NewFeedService(events *EventService, analyses *AnalysisService, notifications *NotificationService, windowCap int) *FeedService {
	return &FeedService{
		cap:           windowCap,
		status:        SyncConnected,
		events:        events,
		analyses:      analyses,
		notifications: notifications,
	}
}

// Startup loads persisted state: events (seeding the demo set into an
// empty store), then the most recent stored analysis. Failures degrade
// the sync status instead of aborting; the dashboard renders empty.
func (f *FeedService) Startup() error {
	f.setStatus(SyncSyncing)

	if _, err := f.events.SeedIfEmpty(); err != nil {
		return f.degrade(fmt.Errorf("seed events: %w", err))
	}

	recent, err := f.events.ListRecent(f.cap)
	if err != nil {
		return f.degrade(fmt.Errorf("load events: %w", err))
	}

	latest, err := f.analyses.Latest()
	if err != nil && !f.analyses.IsNotFound(err) {
		return f.degrade(fmt.Errorf("load latest analysis: %w", err))
	}

	f.mu.Lock()
	f.window = recent
	f.latest = latest
	f.status = SyncConnected
	f.mu.Unlock()
	return nil
}

func (f *FeedService) degrade(err error) error {
	f.mu.Lock()
	f.window = nil
	f.status = SyncError
	f.mu.Unlock()
	return err
}

func (f *FeedService) setStatus(status SyncStatus) {
	f.mu.Lock()
	f.status = status
	f.mu.Unlock()
}

// Append prepends one event to the window and persists it. The window
// mutation happens first so the UI sees the event even when persistence
// fails; the sync status records the outcome.
func (f *FeedService) Append(ev models.SecurityEvent) {
	f.mu.Lock()
	f.status = SyncSyncing
	f.window = append([]models.SecurityEvent{ev}, f.window...)
	if len(f.window) > f.cap {
		f.window = f.window[:f.cap]
	}
	f.mu.Unlock()

	if err := f.events.Upsert([]models.SecurityEvent{ev}); err != nil {
		logger.Log().WithError(err).Error("Failed to persist event")
		f.setStatus(SyncError)
		return
	}
	f.setStatus(SyncConnected)
	metrics.AddEventsIngested(string(ev.Origin), 1)
}

// Ingest accepts a batch from an external collector: records are
// normalized (defaults filled, severity validated), persisted atomically
// as a group, and merged into the window newest-first. A single invalid
// record rejects the whole batch.
func (f *FeedService) Ingest(batch []models.SecurityEvent) ([]models.SecurityEvent, error) {
	now := time.Now().UTC()
	for i := range batch {
		if err := batch[i].Normalize(now); err != nil {
			metrics.IncEventsRejected()
			logger.WithFields(map[string]interface{}{
				"record": i,
				"agent":  util.SanitizeForLog(batch[i].AgentName),
			}).Warn("Rejected collector batch")
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
	}
	if len(batch) == 0 {
		return []models.SecurityEvent{}, nil
	}

	f.setStatus(SyncSyncing)
	if err := f.events.Upsert(batch); err != nil {
		f.setStatus(SyncError)
		return nil, err
	}

	f.mu.Lock()
	f.window = append(append([]models.SecurityEvent{}, batch...), f.window...)
	sort.SliceStable(f.window, func(i, j int) bool {
		return f.window[i].Timestamp.After(f.window[j].Timestamp)
	})
	if len(f.window) > f.cap {
		f.window = f.window[:f.cap]
	}
	f.status = SyncConnected
	f.mu.Unlock()

	for _, ev := range batch {
		metrics.AddEventsIngested(string(ev.Origin), 1)
		if ev.Severity == models.SeverityCritical {
			logger.WithFields(map[string]interface{}{
				"agent": util.SanitizeForLog(ev.AgentName),
				"rule":  util.SanitizeForLog(ev.RuleID),
			}).Warn("Critical event ingested")
			if f.notifications != nil {
				f.notifications.AlertCriticalEvent(ev)
			}
		}
	}
	return batch, nil
}

// Snapshot returns a copy of the current window, newest first.
func (f *FeedService) Snapshot() []models.SecurityEvent {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]models.SecurityEvent, len(f.window))
	copy(out, f.window)
	return out
}

func (f *FeedService) Status() SyncStatus {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.status
}

// LatestAnalysis returns the currently surfaced analysis, or nil.
func (f *FeedService) LatestAnalysis() *models.StoredAnalysis {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.latest
}

// SetLatestAnalysis republishes a freshly persisted analysis.
func (f *FeedService) SetLatestAnalysis(rec *models.StoredAnalysis) {
	f.mu.Lock()
	f.latest = rec
	f.mu.Unlock()
}

// Reset destroys all persisted state and reruns the startup sequence,
// which re-seeds the demo set. Each collection clears in its own
// transaction; this is intentionally destructive and irreversible.
func (f *FeedService) Reset() error {
	if err := f.events.Clear(); err != nil {
		return f.degrade(fmt.Errorf("clear events: %w", err))
	}
	if err := f.analyses.Clear(); err != nil {
		return f.degrade(fmt.Errorf("clear analyses: %w", err))
	}

	f.mu.Lock()
	f.window = nil
	f.latest = nil
	f.mu.Unlock()

	return f.Startup()
}
