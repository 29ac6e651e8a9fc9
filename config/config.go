package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all app configuration.
type Config struct {
	// Server
	Port string

	// Downstream processors
	DefaultProcessorURL  string
	FallbackProcessorURL string

	// Record store
	RedisURL string

	// Optional payment audit trail; disabled when empty
	PostgresDSN string

	// Worker pool and ingress queue. QueueCapacity 0 keeps the queue
	// unbounded: enqueue never fails, but memory grows without limit under
	// sustained overload. A positive capacity bounds the queue and the
	// gateway answers 503 when it is full.
	MaxInFlight   int
	QueueCapacity int

	// Routing
	RequestTimeout   time.Duration
	RetryBudget      int
	BackoffBase      time.Duration
	BackoffCap       time.Duration
	BreakerThreshold uint32

	// Background health probing of the processors
	HealthCheckInterval time.Duration

	// Grace period for in-flight attempts on shutdown
	ShutdownGrace time.Duration
}

// Load reads configuration from environment variables, with an optional .env
// file. The processor URLs and the Redis URL are required; missing values are
// a fatal startup error.
func Load() *Config {
	// .env is a dev convenience; absence is fine.
	_ = godotenv.Load()

	cfg := &Config{
		Port: getEnv("PORT", "9999"),

		DefaultProcessorURL:  os.Getenv("DEFAULT_PROCESSOR_URL"),
		FallbackProcessorURL: os.Getenv("FALLBACK_PROCESSOR_URL"),
		RedisURL:             os.Getenv("REDIS_URL"),
		PostgresDSN:          os.Getenv("POSTGRES_DSN"),

		MaxInFlight:   getEnvAsInt("MAX_IN_FLIGHT", 100),
		QueueCapacity: getEnvAsInt("QUEUE_CAPACITY", 0),

		RequestTimeout:   getEnvAsDuration("REQUEST_TIMEOUT", 50*time.Millisecond),
		RetryBudget:      getEnvAsInt("RETRY_BUDGET", 5),
		BackoffBase:      getEnvAsDuration("BACKOFF_BASE", 20*time.Millisecond),
		BackoffCap:       getEnvAsDuration("BACKOFF_CAP", time.Second),
		BreakerThreshold: uint32(getEnvAsInt("BREAKER_THRESHOLD", 10)),

		HealthCheckInterval: getEnvAsDuration("HEALTH_CHECK_INTERVAL", 5*time.Second),
		ShutdownGrace:       getEnvAsDuration("SHUTDOWN_GRACE", 10*time.Second),
	}

	if cfg.DefaultProcessorURL == "" {
		log.Fatal("DEFAULT_PROCESSOR_URL is required")
	}
	if cfg.FallbackProcessorURL == "" {
		log.Fatal("FALLBACK_PROCESSOR_URL is required")
	}
	if cfg.RedisURL == "" {
		log.Fatal("REDIS_URL is required")
	}

	return cfg
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return value
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if value, err := time.ParseDuration(getEnv(key, "")); err == nil {
		return value
	}
	return defaultVal
}
