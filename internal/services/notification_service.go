package services

import (
	"fmt"

	"github.com/containrrr/shoutrrr"
	"gorm.io/gorm"

	"github.com/cybervision/siem/backend/internal/logger"
	"github.com/cybervision/siem/backend/internal/models"
)

// NotificationService keeps the dashboard alert feed and fans important
// events out to external channels via shoutrrr URLs.
type NotificationService struct {
	DB        *gorm.DB
	alertURLs []string

	// send is swappable in tests; defaults to shoutrrr.Send.
	send func(url, message string) error
}

func NewNotificationService(db *gorm.DB, alertURLs []string) *NotificationService {
	return &NotificationService{
		DB:        db,
		alertURLs: alertURLs,
		send:      shoutrrr.Send,
	}
}

// Internal notifications (DB)

func (s *NotificationService) Create(nType models.NotificationType, title, message string) (*models.Notification, error) {
	notification := &models.Notification{
		Type:    nType,
		Title:   title,
		Message: message,
		Read:    false,
	}
	result := s.DB.Create(notification)
	return notification, result.Error
}

func (s *NotificationService) List(unreadOnly bool) ([]models.Notification, error) {
	var notifications []models.Notification
	query := s.DB.Order("created_at desc")
	if unreadOnly {
		query = query.Where("read = ?", false)
	}
	result := query.Find(&notifications)
	return notifications, result.Error
}

func (s *NotificationService) MarkAsRead(id string) error {
	return s.DB.Model(&models.Notification{}).Where("id = ?", id).Update("read", true).Error
}

func (s *NotificationService) MarkAllAsRead() error {
	return s.DB.Model(&models.Notification{}).Where("read = ?", false).Update("read", true).Error
}

// External notifications (shoutrrr)

// SendExternal pushes the message to every configured alert URL.
// Delivery is fire-and-forget; failures are logged, never surfaced.
func (s *NotificationService) SendExternal(title, message string) {
	for _, url := range s.alertURLs {
		go func(url string) {
			msg := fmt.Sprintf("%s\n\n%s", title, message)
			if err := s.send(url, msg); err != nil {
				logger.Log().WithError(err).Warn("Failed to send external alert")
			}
		}(url)
	}
}

// AlertCriticalEvent records and fans out an alert for one critical event.
func (s *NotificationService) AlertCriticalEvent(ev models.SecurityEvent) {
	title := fmt.Sprintf("Critical event on %s", ev.AgentName)
	message := fmt.Sprintf("Rule %s: %s (source %s)", ev.RuleID, ev.Description, ev.SourceIP)

	if _, err := s.Create(models.NotificationTypeError, title, message); err != nil {
		logger.Log().WithError(err).Warn("Failed to record critical event notification")
	}
	s.SendExternal(title, message)
}

// AlertAnalysis records and fans out an alert for a high or critical
// threat assessment.
func (s *NotificationService) AlertAnalysis(rec *models.StoredAnalysis) {
	title := fmt.Sprintf("AI analysis reports %s threat level", rec.ThreatLevel)

	nType := models.NotificationTypeWarning
	if rec.ThreatLevel == models.SeverityCritical {
		nType = models.NotificationTypeError
	}

	if _, err := s.Create(nType, title, rec.Summary); err != nil {
		logger.Log().WithError(err).Warn("Failed to record analysis notification")
	}
	s.SendExternal(title, rec.Summary)
}
