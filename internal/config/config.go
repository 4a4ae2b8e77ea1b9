package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/hray3182/DoseLine/internal/clock"
	"github.com/hray3182/DoseLine/internal/localstore"
	"github.com/joho/godotenv"
)

type Config struct {
	LocalDBPath   string
	DatabaseURI   string
	TelegramToken string
	AIAPIKey      string
	AIBaseURL     string
	AIModel       string

	RefreshInterval time.Duration
	NotifyLead      time.Duration
	SnoozeMinutes   int

	DefaultSleepStart string
	DefaultSleepEnd   string
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		// .env file is optional in production
	}

	dbPath := os.Getenv("LOCAL_DB_PATH")
	if dbPath == "" {
		p, err := localstore.DefaultDBPath()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve LOCAL_DB_PATH: %w", err)
		}
		dbPath = p
	}

	cfg := &Config{
		LocalDBPath:       dbPath,
		DatabaseURI:       os.Getenv("DATABASE_URI"),
		TelegramToken:     os.Getenv("TELEGRAM_TOKEN"),
		AIAPIKey:          os.Getenv("AI_API_KEY"),
		AIBaseURL:         getEnvOrDefault("AI_BASE_URL", "https://openrouter.ai/api/v1"),
		AIModel:           getEnvOrDefault("AI_MODEL", "openai/gpt-4o-mini"),
		DefaultSleepStart: getEnvOrDefault("DEFAULT_SLEEP_START", "22:00"),
		DefaultSleepEnd:   getEnvOrDefault("DEFAULT_SLEEP_END", "08:00"),
	}

	var err error
	if cfg.RefreshInterval, err = durationEnv("REFRESH_INTERVAL", 15*time.Second); err != nil {
		return nil, err
	}
	if cfg.RefreshInterval <= 0 {
		return nil, fmt.Errorf("REFRESH_INTERVAL must be positive, got %s", cfg.RefreshInterval)
	}
	if cfg.NotifyLead, err = durationEnv("NOTIFY_LEAD", 0); err != nil {
		return nil, err
	}
	if cfg.SnoozeMinutes, err = intEnv("SNOOZE_MINUTES", 15); err != nil {
		return nil, err
	}
	if cfg.SnoozeMinutes <= 0 {
		return nil, fmt.Errorf("SNOOZE_MINUTES must be positive, got %d", cfg.SnoozeMinutes)
	}
	for key, v := range map[string]string{
		"DEFAULT_SLEEP_START": cfg.DefaultSleepStart,
		"DEFAULT_SLEEP_END":   cfg.DefaultSleepEnd,
	} {
		if _, ok := clock.ParseClock(v); !ok {
			return nil, fmt.Errorf("invalid %s %q: want HH:MM", key, v)
		}
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func durationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func intEnv(key string, defaultValue int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}
