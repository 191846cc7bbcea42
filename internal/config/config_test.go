package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "ENVIRONMENT", "LOG_LEVEL", "REDIS_URL", "ENCOUNTER_TTL",
		"SAVE_DEBOUNCE", "ENCOUNTER_IDLE", "SHOWCASE_DURATION", "DATA_DIR", "ENCOUNTER_ID"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, "localhost:6379", cfg.RedisURL)
	assert.Equal(t, time.Duration(0), cfg.EncounterTTL)
	assert.Equal(t, 250*time.Millisecond, cfg.SaveDebounce)
	assert.Equal(t, 10*time.Minute, cfg.EncounterIdle)
	assert.Equal(t, 4*time.Second, cfg.ShowcaseDuration)
	assert.Equal(t, "./data", cfg.DataDir)
	assert.Equal(t, "default", cfg.EncounterID)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("LOG_LEVEL", "WARNING")
	t.Setenv("REDIS_URL", "redis://cache:6379/2")
	t.Setenv("ENCOUNTER_TTL", "24h")
	t.Setenv("SAVE_DEBOUNCE", "1s")
	t.Setenv("ENCOUNTER_IDLE", "30m")
	t.Setenv("SHOWCASE_DURATION", "1500ms")
	t.Setenv("DATA_DIR", "/srv/data")
	t.Setenv("ENCOUNTER_ID", "crypt")

	cfg := Load()
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, slog.LevelWarn, cfg.LogLevel)
	assert.Equal(t, "redis://cache:6379/2", cfg.RedisURL)
	assert.Equal(t, 24*time.Hour, cfg.EncounterTTL)
	assert.Equal(t, time.Second, cfg.SaveDebounce)
	assert.Equal(t, 30*time.Minute, cfg.EncounterIdle)
	assert.Equal(t, 1500*time.Millisecond, cfg.ShowcaseDuration)
	assert.Equal(t, "/srv/data", cfg.DataDir)
	assert.Equal(t, "crypt", cfg.EncounterID)
}

func TestGetDuration_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"garbage", "soon"},
		{"negative", "-5s"},
		{"bare number", "250"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("SAVE_DEBOUNCE", tt.value)
			assert.Equal(t, 250*time.Millisecond, getDuration("SAVE_DEBOUNCE", 250*time.Millisecond))
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLogLevel("debug"))
	assert.Equal(t, slog.LevelError, parseLogLevel("ERROR"))
	assert.Equal(t, slog.LevelInfo, parseLogLevel("chatty"))
}
