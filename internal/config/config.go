// Package config loads configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all explorer client configuration.
type Config struct {
	// Server
	ServerURL string
	AuthToken string

	// Logging
	LogLevel  string
	LogFormat string

	// Scope defaults
	UserID   string
	DeviceID string

	// Listing
	PageLimit   int
	SearchLimit int

	// Transport
	RequestTimeout time.Duration

	// Global read-only mode: blocks all mutating calls client-side.
	ReadOnly bool

	// Optional metrics endpoint ("" = disabled)
	MetricsAddr string
}

// Load reads configuration from environment variables with defaults.
func Load() (*Config, error) {
	cfg := &Config{
		ServerURL:      envOr("WZX_SERVER_URL", ""),
		AuthToken:      envOr("WZX_AUTH_TOKEN", ""),
		LogLevel:       envOr("WZX_LOG_LEVEL", "info"),
		LogFormat:      envOr("WZX_LOG_FORMAT", "console"),
		UserID:         envOr("WZX_USER_ID", ""),
		DeviceID:       envOr("WZX_DEVICE_ID", ""),
		PageLimit:      envInt("WZX_PAGE_LIMIT", 50),
		SearchLimit:    envInt("WZX_SEARCH_LIMIT", 50),
		RequestTimeout: time.Duration(envInt("WZX_REQUEST_TIMEOUT_SEC", 30)) * time.Second,
		ReadOnly:       envBool("WZX_READ_ONLY", false),
		MetricsAddr:    envOr("WZX_METRICS_ADDR", ""),
	}

	if cfg.ServerURL == "" {
		return nil, fmt.Errorf("WZX_SERVER_URL is required")
	}
	if cfg.PageLimit <= 0 {
		return nil, fmt.Errorf("WZX_PAGE_LIMIT must be positive")
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return i
}
