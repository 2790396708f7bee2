package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config captures runtime configuration sourced from environment variables.
type Config struct {
	Environment  string
	HTTPPort     string
	DatabasePath string
	FrontendDir  string

	// Public base URL baked into the served collector script. Empty
	// leaves the script's placeholder for operators to fill in.
	PublicURL string

	// External analysis boundary (OpenAI-compatible chat completions).
	AnalysisAPIURL  string
	AnalysisAPIKey  string
	AnalysisModel   string
	AnalysisWindow  int
	AnalysisTimeout time.Duration
	AnalysisRetries int

	// Live feed simulator.
	LiveInterval     time.Duration
	LiveCriticalProb float64

	// In-memory event window and durable retention.
	FeedWindow         int
	RetentionMaxEvents int
	RetentionSchedule  string

	// Comma-separated shoutrrr URLs for external alerting.
	AlertURLs []string
}

// Load reads env vars and falls back to defaults so the server can boot with zero configuration.
func Load() (Config, error) {
	cfg := Config{
		Environment:  getEnv("CV_ENV", "development"),
		HTTPPort:     getEnv("CV_HTTP_PORT", "3000"),
		DatabasePath: getEnv("CV_DB_PATH", filepath.Join("data", "cybervision.db")),
		FrontendDir:  getEnv("CV_FRONTEND_DIR", filepath.Clean(filepath.Join("..", "frontend", "dist"))),
		PublicURL:    strings.TrimRight(getEnv("CV_PUBLIC_URL", ""), "/"),

		AnalysisAPIURL:  getEnv("CV_ANALYSIS_API_URL", "https://api.openai.com/v1/chat/completions"),
		AnalysisAPIKey:  getEnv("CV_ANALYSIS_API_KEY", ""),
		AnalysisModel:   getEnv("CV_ANALYSIS_MODEL", "gpt-4o-mini"),
		AnalysisWindow:  getEnvInt("CV_ANALYSIS_WINDOW", 20),
		AnalysisTimeout: getEnvDuration("CV_ANALYSIS_TIMEOUT", 30*time.Second),
		AnalysisRetries: getEnvInt("CV_ANALYSIS_RETRIES", 2),

		LiveInterval:     getEnvDuration("CV_LIVE_INTERVAL", 4*time.Second),
		LiveCriticalProb: getEnvFloat("CV_LIVE_CRITICAL_PROB", 0.15),

		FeedWindow:         getEnvInt("CV_FEED_WINDOW", 100),
		RetentionMaxEvents: getEnvInt("CV_RETENTION_MAX_EVENTS", 10000),
		RetentionSchedule:  getEnv("CV_RETENTION_SCHEDULE", "@hourly"),

		AlertURLs: splitList(getEnv("CV_ALERT_URLS", "")),
	}

	if cfg.FeedWindow < 1 {
		return Config{}, fmt.Errorf("CV_FEED_WINDOW must be positive, got %d", cfg.FeedWindow)
	}
	if cfg.LiveCriticalProb < 0 || cfg.LiveCriticalProb > 1 {
		return Config{}, fmt.Errorf("CV_LIVE_CRITICAL_PROB must be within [0,1], got %v", cfg.LiveCriticalProb)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DatabasePath), 0o755); err != nil {
		return Config{}, fmt.Errorf("ensure data directory: %w", err)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}

	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}

	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}

	return fallback
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}

	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
