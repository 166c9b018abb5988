package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port        string
	Environment string
	DatabaseURL string
	CORSOrigins string
	TablePrefix string
	// AuthSecret verifies optional HS256 bearer tokens carrying the
	// actor name. Empty = anonymous mode.
	AuthSecret string
	// JobToken guards the manual sweep trigger endpoint.
	JobToken string
	// Bottleneck sweep tuning
	BottleneckThreshold time.Duration
	BottleneckSchedule  string
	SweepTimeout        time.Duration
	// LogDir enables file logging alongside stdout when set.
	LogDir      string
	LogMaxFiles int
	// Debug flags
	Debug bool
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")

	return &Config{
		Port:                getEnv("PORT", "8080"),
		Environment:         env,
		DatabaseURL:         getEnv("DATABASE_URL", ""),
		CORSOrigins:         getEnv("CORS_ORIGINS", "http://localhost:3000"),
		TablePrefix:         getTablePrefix(env),
		AuthSecret:          getEnv("AUTH_SECRET", ""),
		JobToken:            getEnv("JOB_TOKEN", ""),
		BottleneckThreshold: time.Duration(getEnvInt("BOTTLENECK_THRESHOLD_HOURS", 24)) * time.Hour,
		BottleneckSchedule:  getEnv("BOTTLENECK_SCHEDULE", "0 * * * *"),
		SweepTimeout:        time.Duration(getEnvInt("SWEEP_TIMEOUT_SECONDS", 300)) * time.Second,
		LogDir:              getEnv("LOG_DIR", ""),
		LogMaxFiles:         getEnvInt("LOG_MAX_FILES", 10),
		Debug:               getEnv("DEBUG", getDefaultDebug(env)) == "true",
	}
}

// getDefaultDebug returns the default debug setting based on environment
func getDefaultDebug(env string) string {
	if env == "prod" {
		return "false"
	}
	return "true"
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
	// Allow manual override via TABLE_PREFIX env var
	if prefix := os.Getenv("TABLE_PREFIX"); prefix != "" {
		return prefix
	}

	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	default:
		return "dev_"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return defaultValue
	}
	return n
}
