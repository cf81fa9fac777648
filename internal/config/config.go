package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration values for the application
type Config struct {
	Port                  string
	AllowedOrigins        []string
	LogLevel              string
	DatabaseURL           string
	RedisURL              string
	JWTSecret             string
	JWTExpiryHours        int
	ClientURL             string
	AdminAdmissionNumbers []string
	SMTPHost              string
	SMTPPort              int
	SMTPUsername          string
	SMTPPassword          string
	SMTPFrom              string
	Environment           string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	return &Config{
		Port:                  getEnv("PORT", "8080"),
		AllowedOrigins:        parseList(getEnv("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000")),
		LogLevel:              getEnv("LOG_LEVEL", "info"),
		DatabaseURL:           getEnv("DATABASE_URL", ""),
		RedisURL:              getEnv("REDIS_URL", ""),
		JWTSecret:             getEnv("JWT_SECRET", ""),
		JWTExpiryHours:        getIntEnv("JWT_EXPIRES_HOURS", 1),
		ClientURL:             getEnv("CLIENT_URL", "http://localhost:5173"),
		AdminAdmissionNumbers: parseList(getEnv("ADMIN_ADMISSION_NUMBERS", "")),
		SMTPHost:              getEnv("SMTP_HOST", ""),
		SMTPPort:              getIntEnv("SMTP_PORT", 587),
		SMTPUsername:          getEnv("SMTP_USERNAME", ""),
		SMTPPassword:          getEnv("SMTP_PASSWORD", ""),
		SMTPFrom:              getEnv("SMTP_FROM", "no-reply@evote.local"),
		Environment:           getEnv("ENVIRONMENT", "production"),
	}, nil
}

// IsAdmin reports whether the admission number belongs to a configured
// election administrator.
func (c *Config) IsAdmin(admissionNumber string) bool {
	for _, n := range c.AdminAdmissionNumbers {
		if n == admissionNumber {
			return true
		}
	}
	return false
}

// getEnv gets an environment variable with a fallback value
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// getIntEnv gets an integer environment variable with a fallback value
func getIntEnv(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

// parseList parses a comma-separated value into a slice
func parseList(raw string) []string {
	if raw == "" {
		return []string{}
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))

	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
