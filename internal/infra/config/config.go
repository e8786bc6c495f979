package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig holds all configuration for the application
type AppConfig struct {
	DatabaseURL         string
	JWTSecret           string
	Port                string
	CORSOrigins         []string
	LogLevel            string
	Environment         string
	ReminderInterval    time.Duration
	ReminderRunTimeout  time.Duration
	ReminderRunOnStart  bool
	AutoMigrate         bool
	HTTPShutdownTimeout time.Duration
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// godotenv.Load does not override variables already set in the environment.
	_ = godotenv.Load()

	cfg := &AppConfig{}
	var err error

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}

	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is not set")
	}

	cfg.Port = getEnv("PORT", "3000")
	cfg.CORSOrigins = splitList(getEnv("CORS_ORIGINS", "*"))

	cfg.LogLevel = strings.ToLower(getEnv("LOG_LEVEL", "info"))
	cfg.Environment = strings.ToLower(getEnv("ENVIRONMENT", "development"))

	intervalMinutes, err := positiveInt("REMINDER_INTERVAL_MINUTES", 10)
	if err != nil {
		return nil, err
	}
	cfg.ReminderInterval = time.Duration(intervalMinutes) * time.Minute

	timeoutSeconds, err := positiveInt("REMINDER_RUN_TIMEOUT_SECONDS", 60)
	if err != nil {
		return nil, err
	}
	cfg.ReminderRunTimeout = time.Duration(timeoutSeconds) * time.Second

	cfg.ReminderRunOnStart, err = boolEnv("REMINDER_RUN_ON_STARTUP", false)
	if err != nil {
		return nil, err
	}

	cfg.AutoMigrate, err = boolEnv("AUTO_MIGRATE", false)
	if err != nil {
		return nil, err
	}

	shutdownSeconds, err := positiveInt("HTTP_SHUTDOWN_TIMEOUT_SECONDS", 10)
	if err != nil {
		return nil, err
	}
	cfg.HTTPShutdownTimeout = time.Duration(shutdownSeconds) * time.Second

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	return value
}

func positiveInt(key string, defaultValue int) (int, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if v <= 0 {
		return 0, fmt.Errorf("invalid %s: must be positive, got %d", key, v)
	}
	return v, nil
}

func boolEnv(key string, defaultValue bool) (bool, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
