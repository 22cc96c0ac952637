package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// LoggingConfig holds logging-related configuration.
type LoggingConfig struct {
	Level      string
	Pretty     bool
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// Env holds defaults read from the environment. Flags override every field.
type Env struct {
	Logging     LoggingConfig
	Format      string
	Direction   string
	SplitMode   string
	ToolTimeout time.Duration
	JPEGQuality int
	Workers     int
	MetricsFile string
}

// FromEnv loads configuration from the environment, after merging an optional
// .env file from the working directory.
func FromEnv() Env {
	_ = godotenv.Load()

	return Env{
		Logging: LoggingConfig{
			Level:      getEnv("MANGASPLIT_LOG_LEVEL", "info"),
			Pretty:     parseBool(getEnv("MANGASPLIT_LOG_PRETTY", "true")),
			File:       getEnv("MANGASPLIT_LOG_FILE", ""),
			MaxSizeMB:  parseInt(getEnv("MANGASPLIT_LOG_MAX_SIZE_MB", "20"), 20),
			MaxBackups: parseInt(getEnv("MANGASPLIT_LOG_MAX_BACKUPS", "3"), 3),
			MaxAgeDays: parseInt(getEnv("MANGASPLIT_LOG_MAX_AGE_DAYS", "30"), 30),
			Compress:   parseBool(getEnv("MANGASPLIT_LOG_COMPRESS", "false")),
		},
		Format:      getEnv("MANGASPLIT_FORMAT", "cbz"),
		Direction:   getEnv("MANGASPLIT_DIRECTION", "rtl"),
		SplitMode:   getEnv("MANGASPLIT_SPLIT_MODE", "auto"),
		ToolTimeout: parseDuration(getEnv("MANGASPLIT_TOOL_TIMEOUT", "5m"), 5*time.Minute),
		JPEGQuality: parseInt(getEnv("MANGASPLIT_JPEG_QUALITY", "92"), 92),
		Workers:     parseInt(getEnv("MANGASPLIT_WORKERS", "1"), 1),
		MetricsFile: getEnv("MANGASPLIT_METRICS_FILE", ""),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseInt(s string, def int) int {
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}

func parseBool(s string) bool {
	v := strings.ToLower(strings.TrimSpace(s))
	return v == "1" || v == "true" || v == "yes" || v == "on"
}

func parseDuration(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	if d, err := time.ParseDuration(s); err == nil {
		return d
	}
	return def
}
