package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP Server
	Port string

	// Fee calendar override. Empty means the built-in calendar.
	SchedulePath string

	// Uploads
	MaxUploadBytes int64

	// Completed runs kept for download
	RunCacheSize int
	RunCacheTTL  time.Duration
}

func Load() *Config {
	cfg := &Config{
		Port:         getEnv("PORT", "8081"),
		SchedulePath: getEnv("SCHEDULE_PATH", ""),

		MaxUploadBytes: getEnvInt64("MAX_UPLOAD_BYTES", 32<<20),

		RunCacheSize: getEnvInt("RUN_CACHE_SIZE", 16),
		RunCacheTTL:  getEnvDuration("RUN_CACHE_TTL", time.Hour),
	}

	return cfg
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	// Validate port
	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	// Validate schedule override if provided
	if c.SchedulePath != "" {
		if _, err := os.Stat(c.SchedulePath); os.IsNotExist(err) {
			errors = append(errors, fmt.Sprintf("fee schedule file does not exist: %s", c.SchedulePath))
		}
	}

	// Validate upload limit
	if c.MaxUploadBytes < 1<<20 {
		errors = append(errors, fmt.Sprintf("invalid max upload size %d: must be at least 1 MiB", c.MaxUploadBytes))
	} else if c.MaxUploadBytes > 256<<20 {
		errors = append(errors, fmt.Sprintf("invalid max upload size %d: must be at most 256 MiB", c.MaxUploadBytes))
	}

	// Validate run cache
	if c.RunCacheSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid run cache size %d: must be at least 1", c.RunCacheSize))
	} else if c.RunCacheSize > 1024 {
		errors = append(errors, fmt.Sprintf("invalid run cache size %d: must be at most 1024", c.RunCacheSize))
	}

	if c.RunCacheTTL < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid run cache TTL %v: must be at least 1 minute", c.RunCacheTTL))
	} else if c.RunCacheTTL > 24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid run cache TTL %v: must be at most 24 hours", c.RunCacheTTL))
	}

	// Return combined errors
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.ParseInt(value, 10, 64); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
