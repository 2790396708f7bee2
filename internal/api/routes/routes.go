package routes

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/cybervision/siem/backend/internal/api/handlers"
	"github.com/cybervision/siem/backend/internal/api/middleware"
	"github.com/cybervision/siem/backend/internal/config"
	"github.com/cybervision/siem/backend/internal/llm"
	"github.com/cybervision/siem/backend/internal/logger"
	"github.com/cybervision/siem/backend/internal/metrics"
	"github.com/cybervision/siem/backend/internal/models"
	"github.com/cybervision/siem/backend/internal/services"
)

// Services bundles the long-lived components the server owns so callers
// (lifecycle hooks, tests) can reach them after registration.
type Services struct {
	Feed      *services.FeedService
	Live      *services.LiveFeed
	Events    *services.EventService
	Analyses  *services.AnalysisService
	Retention *services.RetentionService
}

// Register wires up API routes and performs automatic migrations.
func Register(router *gin.Engine, db *gorm.DB, cfg config.Config) (*Services, error) {
	if err := db.AutoMigrate(
		&models.SecurityEvent{},
		&models.StoredAnalysis{},
		&models.Notification{},
		&models.AgentToken{},
	); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}

	registry := prometheus.NewRegistry()
	metrics.Register(registry)

	notificationService := services.NewNotificationService(db, cfg.AlertURLs)
	eventService := services.NewEventService(db)

	analysisClient := llm.New(llm.Config{
		URL:     cfg.AnalysisAPIURL,
		APIKey:  cfg.AnalysisAPIKey,
		Model:   cfg.AnalysisModel,
		Timeout: cfg.AnalysisTimeout,
		Retries: cfg.AnalysisRetries,
	})
	analysisService := services.NewAnalysisService(db, analysisClient, notificationService, cfg.AnalysisWindow)

	feedService := services.NewFeedService(eventService, analysisService, notificationService, cfg.FeedWindow)
	if err := feedService.Startup(); err != nil {
		// Degraded but serving: the dashboard reports the sync error.
		logger.Log().WithError(err).Error("Event store unavailable at startup")
	}

	liveFeed := services.NewLiveFeed(feedService, cfg.LiveInterval, cfg.LiveCriticalProb)
	tokenService := services.NewTokenService(db)
	retentionService := services.NewRetentionService(eventService, cfg.RetentionMaxEvents, cfg.RetentionSchedule)

	collectorEndpoint := ""
	if cfg.PublicURL != "" {
		collectorEndpoint = cfg.PublicURL + "/api/v1/events"
	}

	eventHandler := handlers.NewEventHandler(feedService, eventService)
	statsHandler := handlers.NewStatsHandler(feedService)
	analysisHandler := handlers.NewAnalysisHandler(analysisService, feedService)
	liveHandler := handlers.NewLiveFeedHandler(liveFeed, feedService)
	systemHandler := handlers.NewSystemHandler(feedService, liveFeed)
	integrationHandler := handlers.NewIntegrationHandler(collectorEndpoint)
	tokenHandler := handlers.NewTokenHandler(tokenService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)

	router.GET("/api/v1/health", handlers.HealthHandler)
	router.GET("/api/v1/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	api := router.Group("/api/v1")

	api.GET("/events", eventHandler.List)
	api.POST("/events", middleware.AgentAuth(tokenService), eventHandler.Ingest)

	api.GET("/stats", statsHandler.Get)

	api.POST("/analysis/run", analysisHandler.Run)
	api.GET("/analysis/latest", analysisHandler.Latest)

	api.GET("/live", liveHandler.Status)
	api.POST("/live/start", liveHandler.Start)
	api.POST("/live/stop", liveHandler.Stop)

	api.POST("/system/reset", systemHandler.Reset)

	api.GET("/integrations/collector", integrationHandler.CollectorGuide)

	api.GET("/tokens", tokenHandler.List)
	api.POST("/tokens", tokenHandler.Create)
	api.DELETE("/tokens/:id", tokenHandler.Delete)

	api.GET("/notifications", notificationHandler.List)
	api.POST("/notifications/:id/read", notificationHandler.MarkAsRead)
	api.POST("/notifications/read-all", notificationHandler.MarkAllAsRead)

	return &Services{
		Feed:      feedService,
		Live:      liveFeed,
		Events:    eventService,
		Analyses:  analysisService,
		Retention: retentionService,
	}, nil
}
