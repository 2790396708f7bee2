package services

import (
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/cybervision/siem/backend/internal/logger"
)

// RetentionService bounds the durable event collection on a schedule.
// The in-memory window is capped independently by FeedService.
type RetentionService struct {
	events   *EventService
	keep     int
	schedule string
	cron     *cron.Cron
}

func NewRetentionService(events *EventService, keep int, schedule string) *RetentionService {
	return &RetentionService{
		events:   events,
		keep:     keep,
		schedule: schedule,
	}
}

// Start schedules the prune job. Invalid schedules fail fast.
func (s *RetentionService) Start() error {
	c := cron.New()
	if _, err := c.AddFunc(s.schedule, s.RunOnce); err != nil {
		return fmt.Errorf("schedule retention job: %w", err)
	}
	c.Start()
	s.cron = c
	return nil
}

// Stop halts the scheduler; a prune in flight completes.
func (s *RetentionService) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

// RunOnce prunes immediately.
func (s *RetentionService) RunOnce() {
	removed, err := s.events.PruneToNewest(s.keep)
	if err != nil {
		logger.Log().WithError(err).Error("Retention prune failed")
		return
	}
	if removed > 0 {
		logger.WithFields(map[string]interface{}{"removed": removed, "keep": s.keep}).
			Info("Pruned stored events")
	}
}
