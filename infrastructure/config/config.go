// Package config loads gateway configuration from environment variables,
// with an optional YAML overrides file for runtime-tunable settings.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"
)

// Config holds all gateway configuration
type Config struct {
	// Server configuration
	ServerAddress string
	Environment   string
	LogLevel      string

	// Downstream service base URLs
	LibraryBaseURL     string
	ReservationBaseURL string
	RatingBaseURL      string
	// RequestTimeout bounds every downstream attempt
	RequestTimeout time.Duration

	// Circuit breaker tuning
	BreakerFailureThreshold int
	BreakerBreakDuration    time.Duration

	// Retry queue tuning
	QueueTaskTimeout    time.Duration
	QueueAttemptTimeout time.Duration
	QueueRetryBackoff   time.Duration
	QueueDrainGrace     time.Duration

	// OverridesFile is an optional YAML file with hot-reloadable tuning
	OverridesFile string

	// Feature flags
	EnableMetrics        bool
	EnableCORS           bool
	EnableInboundBreaker bool
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		ServerAddress: getEnv("SERVER_ADDRESS", ":8080"),
		Environment:   getEnv("ENVIRONMENT", "development"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),

		LibraryBaseURL:     getEnv("LIBRARY_SERVICE_URL", "http://library:8080"),
		ReservationBaseURL: getEnv("RESERVATION_SERVICE_URL", "http://reservation:8080"),
		RatingBaseURL:      getEnv("RATING_SERVICE_URL", "http://rating:8080"),
		RequestTimeout:     getEnvDuration("REQUEST_TIMEOUT", 10*time.Second),

		BreakerFailureThreshold: getEnvInt("BREAKER_FAILURE_THRESHOLD", 5),
		BreakerBreakDuration:    getEnvDuration("BREAKER_BREAK_DURATION", 10*time.Second),

		QueueTaskTimeout:    getEnvDuration("QUEUE_TASK_TIMEOUT", 10*time.Second),
		QueueAttemptTimeout: getEnvDuration("QUEUE_ATTEMPT_TIMEOUT", 10*time.Second),
		QueueRetryBackoff:   getEnvDuration("QUEUE_RETRY_BACKOFF", 2*time.Second),
		QueueDrainGrace:     getEnvDuration("QUEUE_DRAIN_GRACE", 5*time.Second),

		OverridesFile: getEnv("OVERRIDES_FILE", ""),

		EnableMetrics:        getEnvBool("ENABLE_METRICS", true),
		EnableCORS:           getEnvBool("ENABLE_CORS", true),
		EnableInboundBreaker: getEnvBool("ENABLE_INBOUND_BREAKER", false),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	for name, raw := range map[string]string{
		"LIBRARY_SERVICE_URL":     c.LibraryBaseURL,
		"RESERVATION_SERVICE_URL": c.ReservationBaseURL,
		"RATING_SERVICE_URL":      c.RatingBaseURL,
	} {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%s must be an absolute URL, got %q", name, raw)
		}
	}
	if c.BreakerFailureThreshold <= 0 {
		return fmt.Errorf("BREAKER_FAILURE_THRESHOLD must be positive")
	}
	if c.BreakerBreakDuration <= 0 {
		return fmt.Errorf("BREAKER_BREAK_DURATION must be positive")
	}
	return nil
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration gets a duration environment variable with a default value
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
