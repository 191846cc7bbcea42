package config

import (
	"log/slog"
	"os"
	"strings"
	"time"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    slog.Level

	RedisURL         string
	EncounterTTL     time.Duration // 0 keeps encounters forever
	SaveDebounce     time.Duration
	EncounterIdle    time.Duration // API closes encounters unused this long; 0 never
	ShowcaseDuration time.Duration
	DataDir          string
	EncounterID      string // default encounter for the console
}

func Load() *Config {
	return &Config{
		Port:             getEnv("PORT", "8080"),
		Environment:      getEnv("ENVIRONMENT", "development"),
		LogLevel:         parseLogLevel(getEnv("LOG_LEVEL", "info")),
		RedisURL:         getEnv("REDIS_URL", "localhost:6379"),
		EncounterTTL:     getDuration("ENCOUNTER_TTL", 0),
		SaveDebounce:     getDuration("SAVE_DEBOUNCE", 250*time.Millisecond),
		EncounterIdle:    getDuration("ENCOUNTER_IDLE", 10*time.Minute),
		ShowcaseDuration: getDuration("SHOWCASE_DURATION", 4*time.Second),
		DataDir:          getEnv("DATA_DIR", "./data"),
		EncounterID:      getEnv("ENCOUNTER_ID", "default"),
	}
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getDuration accepts Go duration strings ("250ms", "2h"). Bad or negative
// values fall back to the default.
func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil || d < 0 {
		slog.Warn("Invalid duration, using default", "key", key, "value", value, "default", defaultValue)
		return defaultValue
	}
	return d
}
