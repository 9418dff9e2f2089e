package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	IMAPHost        string
	IMAPPort        string
	IMAPUser        string
	IMAPPassword    string
	IMAPTLS         bool
	IMAPConnTimeout time.Duration
	IMAPAuthTimeout time.Duration

	// SearchWindowMonths bounds the mailbox search: only messages
	// received within the last N months are ingested.
	SearchWindowMonths int

	// RetainOther keeps messages that are neither a request nor a
	// reply as generic records instead of dropping them.
	RetainOther bool

	// RefreshOnStart runs one ingestion cycle at boot.
	RefreshOnStart bool
}

func Load() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()

	return &Config{
		Port: getEnv("PORT", "8080"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "reservations"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		IMAPHost:        getEnv("IMAP_HOST", ""),
		IMAPPort:        getEnv("IMAP_PORT", "993"),
		IMAPUser:        getEnv("IMAP_USER", ""),
		IMAPPassword:    getEnv("IMAP_PASSWORD", ""),
		IMAPTLS:         getBool("IMAP_TLS", true),
		IMAPConnTimeout: getDuration("IMAP_CONN_TIMEOUT", 30*time.Second),
		IMAPAuthTimeout: getDuration("IMAP_AUTH_TIMEOUT", 30*time.Second),

		SearchWindowMonths: getInt("SEARCH_WINDOW_MONTHS", 3),
		RetainOther:        getBool("RETAIN_OTHER", false),
		RefreshOnStart:     getBool("REFRESH_ON_START", true),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getBool recognises only "true" or "false" (case-insensitive); any
// other value falls back to the default.
func getBool(key string, defaultValue bool) bool {
	switch strings.TrimSpace(strings.ToLower(os.Getenv(key))) {
	case "true":
		return true
	case "false":
		return false
	default:
		return defaultValue
	}
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultValue
}
