package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// JWTConfig holds token issuance and verification settings. The signing key
// and the issuer/audience pair are deployment configuration, never request
// input.
type JWTConfig struct {
	Secret          string
	Issuer          string
	Audience        string
	ExpirationHours float64
}

// RateLimitConfig holds the admission controller settings: a fixed window
// with an immediate permit budget and a bounded FIFO wait queue.
type RateLimitConfig struct {
	Window      time.Duration
	PermitLimit int
	QueueLimit  int
}

// Config holds the application configuration.
type Config struct {
	ServerPort   int
	DatabasePath string
	JWT          JWTConfig
	RateLimit    RateLimitConfig
	// ListEmptyAsNotFound makes GET /tasks answer 404 instead of an empty
	// array when nothing matches. Both behaviors exist in deployments of the
	// predecessor of this service, so the choice stays configurable.
	ListEmptyAsNotFound bool
	// SweepSchedule is the cron spec for the background sweeper.
	SweepSchedule string
}

// Load loads configuration from the environment, reading a .env file first
// when one is present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	port, err := strconv.Atoi(getEnv("PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET must be set")
	}

	expHours, err := strconv.ParseFloat(getEnv("JWT_EXPIRATION_HOURS", "24"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_EXPIRATION_HOURS: %w", err)
	}

	windowSecs, err := strconv.Atoi(getEnv("RATE_LIMIT_WINDOW_SECONDS", "8"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_WINDOW_SECONDS: %w", err)
	}
	permits, err := strconv.Atoi(getEnv("RATE_LIMIT_PERMITS", "4"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_PERMITS: %w", err)
	}
	queue, err := strconv.Atoi(getEnv("RATE_LIMIT_QUEUE", "2"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_QUEUE: %w", err)
	}

	return &Config{
		ServerPort:   port,
		DatabasePath: getEnv("DATABASE_PATH", "./taskdeck.db"),
		JWT: JWTConfig{
			Secret:          secret,
			Issuer:          getEnv("JWT_ISSUER", "taskdeck"),
			Audience:        getEnv("JWT_AUDIENCE", "taskdeck-clients"),
			ExpirationHours: expHours,
		},
		RateLimit: RateLimitConfig{
			Window:      time.Duration(windowSecs) * time.Second,
			PermitLimit: permits,
			QueueLimit:  queue,
		},
		ListEmptyAsNotFound: getEnv("LIST_EMPTY_AS_NOT_FOUND", "false") == "true",
		SweepSchedule:       getEnv("SWEEP_SCHEDULE", "@every 1m"),
	}, nil
}

// Helper to get an environment variable with a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
