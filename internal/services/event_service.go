package services

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cybervision/siem/backend/internal/models"
)

// EventService owns durable storage for security events. The in-memory
// working copy lives in FeedService; everything here goes through the
// shared gorm handle.
type EventService struct {
	DB *gorm.DB
}

func NewEventService(db *gorm.DB) *EventService {
	return &EventService{DB: db}
}

// Upsert inserts or replaces events by id. The batch succeeds or fails
// as a whole.
func (s *EventService) Upsert(events []models.SecurityEvent) error {
	if len(events) == 0 {
		return nil
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&events).Error
	})
	if err != nil {
		return fmt.Errorf("upsert events: %w", err)
	}
	return nil
}

// ListAll returns every stored event, newest first.
func (s *EventService) ListAll() ([]models.SecurityEvent, error) {
	var events []models.SecurityEvent
	result := s.DB.Order("timestamp desc").Find(&events)
	return events, result.Error
}

// ListRecent returns the newest limit events.
func (s *EventService) ListRecent(limit int) ([]models.SecurityEvent, error) {
	var events []models.SecurityEvent
	result := s.DB.Order("timestamp desc").Limit(limit).Find(&events)
	return events, result.Error
}

func (s *EventService) Count() (int64, error) {
	var count int64
	result := s.DB.Model(&models.SecurityEvent{}).Count(&count)
	return count, result.Error
}

// Clear empties the event collection only; analyses are a separate
// collection with their own clear.
func (s *EventService) Clear() error {
	return s.DB.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.SecurityEvent{}).Error
}

// SeedIfEmpty writes the demo set into an empty store and reports
// whether it did.
func (s *EventService) SeedIfEmpty() (bool, error) {
	count, err := s.Count()
	if err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}
	if err := s.Upsert(models.DemoEvents()); err != nil {
		return false, err
	}
	return true, nil
}

// PruneToNewest deletes all but the newest keep events and returns how
// many rows were removed.
func (s *EventService) PruneToNewest(keep int) (int64, error) {
	if keep < 0 {
		keep = 0
	}

	newest := s.DB.Model(&models.SecurityEvent{}).
		Select("id").
		Order("timestamp desc").
		Limit(keep)

	result := s.DB.Where("id NOT IN (?)", newest).Delete(&models.SecurityEvent{})
	if result.Error != nil {
		return 0, fmt.Errorf("prune events: %w", result.Error)
	}
	return result.RowsAffected, nil
}
