package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all service settings, loaded once at startup and passed
// by reference into each component. There is no global settings object.
type Config struct {
	// Database
	DBPath string

	// HTTP
	Port        string
	CORSOrigins []string

	// Admin
	AdminPassword string
	// AdminPasswordHash, when set, is a bcrypt hash that takes
	// precedence over the plaintext AdminPassword comparison.
	AdminPasswordHash string

	// Security
	SecretKey       string
	SessionLifetime time.Duration

	// Rate limiting (fixed window per IP)
	RateLimitRequests    int
	RateLimitWindow      time.Duration
	RateLimitBlockPeriod time.Duration

	// Quota (per-user model generation ceiling)
	ModelLimit int

	// Legacy JSON import, run once at startup if the file exists
	LegacyUsersFile string
}

// Load builds a Config from environment variables with defaults that
// match the production deployment.
func Load() Config {
	return Config{
		DBPath:               getEnv("ANALYTICS_DB_PATH", "./analytics.db"),
		Port:                 getEnv("ANALYTICS_PORT", "8001"),
		CORSOrigins:          splitList(getEnv("CORS_ORIGINS", "*")),
		AdminPassword:        getEnv("ADMIN_PASSWORD", "change_me_in_production"),
		AdminPasswordHash:    os.Getenv("ADMIN_PASSWORD_HASH"),
		SecretKey:            getEnv("SECRET_KEY", "your-secret-key-here-change-in-production"),
		SessionLifetime:      time.Duration(getEnvInt("SESSION_EXPIRE_HOURS", 24*7)) * time.Hour,
		RateLimitRequests:    getEnvInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow:      time.Duration(getEnvInt("RATE_LIMIT_WINDOW_MINUTES", 60)) * time.Minute,
		RateLimitBlockPeriod: time.Duration(getEnvInt("RATE_LIMIT_BLOCK_MINUTES", 60)) * time.Minute,
		ModelLimit:           getEnvInt("MODEL_LIMIT", 10),
		LegacyUsersFile:      getEnv("LEGACY_USERS_FILE", "./collected_user_emails.json"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
