package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// CasdoorConfig holds the identity platform connection settings.
type CasdoorConfig struct {
	Endpoint     string
	ClientID     string
	ClientSecret string
	Cert         string
	Organization string
	Application  string
}

// GenAIConfig holds the generative-AI boundary settings.
type GenAIConfig struct {
	BaseURL    string
	APIKey     string
	TextModel  string
	ImageModel string
	MaxRetries int
	RetryBase  time.Duration
}

// SyncConfig tunes the profile synchronization core.
type SyncConfig struct {
	DebounceInterval   time.Duration // quiescence window for cloud sync
	NotificationTTL    time.Duration // toast lifetime
	NotificationLimit  int           // queue cap
	MentorResponseWait time.Duration // simulated external-actor delay
	XPGainDisplay      time.Duration // transient last-XP-gain window
}

type Config struct {
	Environment string
	Port        string
	LogLevel    slog.Level

	DatabaseURL string
	RedisURL    string

	KafkaBrokers []string

	Casdoor CasdoorConfig
	GenAI   GenAIConfig
	Sync    SyncConfig
}

// LoadConfig reads configuration from the environment, loading .env first
// when present.
func LoadConfig() (*Config, error) {
	// .env is optional; ignore a missing file
	_ = godotenv.Load()

	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Port:        getEnv("PORT", "8080"),
		LogLevel:    parseLogLevel(getEnv("LOG_LEVEL", "info")),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisURL:    os.Getenv("REDIS_URL"),

		KafkaBrokers: splitList(getEnv("KAFKA_BROKERS", "")),

		Casdoor: CasdoorConfig{
			Endpoint:     os.Getenv("CASDOOR_ENDPOINT"),
			ClientID:     os.Getenv("CASDOOR_CLIENT_ID"),
			ClientSecret: os.Getenv("CASDOOR_CLIENT_SECRET"),
			Cert:         os.Getenv("CASDOOR_CERT"),
			Organization: getEnv("CASDOOR_ORGANIZATION", "smartedu"),
			Application:  getEnv("CASDOOR_APPLICATION", "network-service"),
		},

		GenAI: GenAIConfig{
			BaseURL:    getEnv("GENAI_BASE_URL", "https://generativelanguage.googleapis.com"),
			APIKey:     os.Getenv("GENAI_API_KEY"),
			TextModel:  getEnv("GENAI_TEXT_MODEL", "gemini-3-flash-preview"),
			ImageModel: getEnv("GENAI_IMAGE_MODEL", "gemini-2.5-flash-image"),
			MaxRetries: getEnvInt("GENAI_MAX_RETRIES", 3),
			RetryBase:  time.Duration(getEnvInt("GENAI_RETRY_BASE_MS", 1000)) * time.Millisecond,
		},

		Sync: SyncConfig{
			DebounceInterval:   time.Duration(getEnvInt("SYNC_DEBOUNCE_MS", 2000)) * time.Millisecond,
			NotificationTTL:    time.Duration(getEnvInt("NOTIFICATION_TTL_MS", 5000)) * time.Millisecond,
			NotificationLimit:  getEnvInt("NOTIFICATION_LIMIT", 3),
			MentorResponseWait: time.Duration(getEnvInt("MENTOR_RESPONSE_WAIT_MS", 5000)) * time.Millisecond,
			XPGainDisplay:      time.Duration(getEnvInt("XP_GAIN_DISPLAY_MS", 2000)) * time.Millisecond,
		},
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
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

func splitList(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func parseLogLevel(value string) slog.Level {
	switch strings.ToLower(value) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
