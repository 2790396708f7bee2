package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/cybervision/siem/backend/internal/config"
	"github.com/cybervision/siem/backend/internal/database"
	"github.com/cybervision/siem/backend/internal/logger"
	"github.com/cybervision/siem/backend/internal/server"
	"github.com/cybervision/siem/backend/internal/version"
)

func main() {
	// Setup logging with rotation
	logDir := "/app/data/logs"
	if err := os.MkdirAll(logDir, 0755); err != nil {
		// Fallback to local directory if /app/data fails (e.g. local dev)
		logDir = filepath.Join("data", "logs")
		_ = os.MkdirAll(logDir, 0755)
	}

	rotator := &lumberjack.Logger{
		Filename:   filepath.Join(logDir, "cybervision.log"),
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Init(false, os.Stderr)
		logger.Log().WithError(err).Fatal("Failed to load configuration")
	}

	// Log to both stdout and file
	logger.Init(cfg.Environment == "development", io.MultiWriter(os.Stdout, rotator))

	logger.WithFields(map[string]interface{}{
		"version": version.Full(),
		"port":    cfg.HTTPPort,
	}).Infof("Starting %s backend", version.Name)

	db, err := database.Open(cfg.DatabasePath)
	if err != nil {
		logger.Log().WithError(err).Fatal("Failed to open database")
	}

	srv, err := server.New(db, cfg)
	if err != nil {
		logger.Log().WithError(err).Fatal("Failed to build server")
	}

	if err := srv.Services.Retention.Start(); err != nil {
		logger.Log().WithError(err).Fatal("Failed to start retention scheduler")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx); err != nil {
		logger.Log().WithError(err).Fatal("Server error")
	}
	logger.Log().Info("Shutdown complete")
}
