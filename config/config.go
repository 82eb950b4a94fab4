package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds service configuration, loaded from the environment.
type Config struct {
	Host string
	Port string

	DatabaseURL string

	ChangeDetectionURL    string
	ChangeDetectionAPIKey string
	HTTPTimeout           time.Duration

	// HistoryDepth is how many history entries are fed to the extraction
	// engine per watch.
	HistoryDepth int

	// CheckSchedule is the cron expression for the periodic snapshot pass.
	CheckSchedule string

	// ServiceAPIKey protects the /api/v1 surface. Empty disables the check.
	ServiceAPIKey string

	RateLimitPerSecond float64
	MaxWorkers         int
	AllowedOrigins     string
}

// Load reads configuration from environment variables, applying defaults
// suitable for local development.
func Load() *Config {
	return &Config{
		Host: getEnv("HOST", "0.0.0.0"),
		Port: getEnv("PORT", "8080"),

		DatabaseURL: os.Getenv("DATABASE_URL"),

		ChangeDetectionURL:    getEnv("CHANGEDETECTION_URL", "http://localhost:5000"),
		ChangeDetectionAPIKey: os.Getenv("CHANGEDETECTION_API_KEY"),
		HTTPTimeout:           getEnvDuration("HTTP_TIMEOUT", 30*time.Second),

		HistoryDepth:  getEnvInt("HISTORY_DEPTH", 10),
		CheckSchedule: getEnv("CHECK_SCHEDULE", "0 0 */12 * * *"),

		ServiceAPIKey: os.Getenv("SERVICE_API_KEY"),

		RateLimitPerSecond: getEnvFloat("RATE_LIMIT_PER_SECOND", 5),
		MaxWorkers:         getEnvInt("MAX_WORKERS", 5),
		AllowedOrigins:     getEnv("ALLOWED_ORIGINS", "http://localhost:3000"),
	}
}

// Helper functions for environment variables
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
