package app

import (
	"os"
	"time"
)

// Config holds the application configuration.
type Config struct {
	// APIBaseURL is the learning service root, e.g. https://api.example.com.
	APIBaseURL string

	// AnalyticsURL is the telemetry collector endpoint. Empty disables
	// remote analytics.
	AnalyticsURL string

	// DBPath overrides the local database location.
	DBPath string

	// LogPath overrides the log file location.
	LogPath string

	// LogLevel is a zerolog level name: debug, info, warn, error.
	LogLevel string

	// RequestTimeout caps individual API requests.
	RequestTimeout time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		APIBaseURL:     "http://localhost:8080",
		LogLevel:       "info",
		RequestTimeout: 15 * time.Second,
	}
}

// ConfigFromEnv builds a Config from environment variables, falling back
// to defaults for unset values.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	if u := os.Getenv("VIDYA_API_URL"); u != "" {
		cfg.APIBaseURL = u
	}
	if u := os.Getenv("VIDYA_ANALYTICS_URL"); u != "" {
		cfg.AnalyticsURL = u
	}
	if p := os.Getenv("VIDYA_DB"); p != "" {
		cfg.DBPath = p
	}
	if p := os.Getenv("VIDYA_LOG"); p != "" {
		cfg.LogPath = p
	}
	if l := os.Getenv("VIDYA_LOG_LEVEL"); l != "" {
		cfg.LogLevel = l
	}

	return cfg
}
