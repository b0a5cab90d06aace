// Package config loads service configuration from environment variables.
package config

import (
	"os"
	"strconv"
)

// Config holds all runtime configuration for GreenPrompt.
type Config struct {
	Port   string
	DBPath string

	APIKeySalt    string
	DefaultRegion string

	RetentionDays int
	RateLimit     int

	TelegramToken  string
	TelegramChatID int64
}

// Load reads environment variables and returns a Config.
// Uses sensible defaults for optional fields.
func Load() *Config {
	chatID, _ := strconv.ParseInt(os.Getenv("TELEGRAM_CHAT_ID"), 10, 64)

	return &Config{
		Port:   getEnv("PORT", "8080"),
		DBPath: getEnv("DB_PATH", "greenprompt.db"),

		APIKeySalt:    getEnv("API_KEY_SALT", "change-me-in-production"),
		DefaultRegion: getEnv("DEFAULT_REGION", "us-west"),

		RetentionDays: getEnvInt("RETENTION_DAYS", 365),
		RateLimit:     getEnvInt("RATE_LIMIT_PER_MINUTE", 60),

		TelegramToken:  os.Getenv("TELEGRAM_TOKEN"),
		TelegramChatID: chatID,
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
