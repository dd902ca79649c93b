package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Addr                      string
	DatabaseURL               string
	JWTSecret                 string
	Environment               string
	RunMigrations             bool
	MigrationsDir             string
	MaxBodyBytes              int64
	MaxUploadBytes            int64
	RateLimitPerMinute        int
	MetricsEnabled            bool
	ShutdownTimeout           time.Duration
	ReconcileWorkers          int
	NightWorkerCheckInShare   float64
	NightWorkerEarlyCheckOuts int
}

func Load() Config {
	return Config{
		Addr:                      getEnv("APP_ADDR", ":8080"),
		DatabaseURL:               getEnv("DATABASE_URL", ""),
		JWTSecret:                 getEnv("JWT_SECRET", ""),
		Environment:               getEnv("APP_ENV", "development"),
		RunMigrations:             getEnvBool("RUN_MIGRATIONS", true),
		MigrationsDir:             getEnv("MIGRATIONS_DIR", "migrations"),
		MaxBodyBytes:              int64(getEnvInt("MAX_BODY_BYTES", 1048576)),
		MaxUploadBytes:            int64(getEnvInt("MAX_UPLOAD_BYTES", 20<<20)),
		RateLimitPerMinute:        getEnvInt("RATE_LIMIT_PER_MINUTE", 60),
		MetricsEnabled:            getEnvBool("METRICS_ENABLED", true),
		ShutdownTimeout:           getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		ReconcileWorkers:          getEnvInt("RECONCILE_WORKERS", 4),
		NightWorkerCheckInShare:   getEnvFloat("NIGHT_WORKER_CHECKIN_SHARE", 0.30),
		NightWorkerEarlyCheckOuts: getEnvInt("NIGHT_WORKER_EARLY_CHECKOUTS", 2),
	}
}

func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvFloat(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.IsProduction() && len(strings.TrimSpace(c.JWTSecret)) < 32 {
		return fmt.Errorf("JWT_SECRET must be set to a strong value in production")
	}
	if c.MaxBodyBytes < 1024 {
		return fmt.Errorf("MAX_BODY_BYTES must be at least 1024")
	}
	if c.MaxUploadBytes < c.MaxBodyBytes {
		return fmt.Errorf("MAX_UPLOAD_BYTES must not be smaller than MAX_BODY_BYTES")
	}
	if c.RateLimitPerMinute <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive")
	}
	if c.ReconcileWorkers <= 0 {
		return fmt.Errorf("RECONCILE_WORKERS must be positive")
	}
	if c.NightWorkerCheckInShare <= 0 || c.NightWorkerCheckInShare > 1 {
		return fmt.Errorf("NIGHT_WORKER_CHECKIN_SHARE must be in (0, 1]")
	}
	if c.NightWorkerEarlyCheckOuts < 0 {
		return fmt.Errorf("NIGHT_WORKER_EARLY_CHECKOUTS must not be negative")
	}
	return nil
}
