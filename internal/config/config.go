// Package config loads runtime configuration from the environment.
// A .env file is read first when present; real environment variables win.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration for the API server.
type Config struct {
	Env      string
	Port     string
	LogLevel string

	DatabaseURL string
	RedisURL    string

	GeminiAPIKey string
	GeminiModel  string

	GmailCredentialsFile string
	GmailTokenFile       string
	GmailSyncSchedule    string

	ResearchCacheTTL        time.Duration
	AnalysisMaxAge          time.Duration
	AnalysisRefreshSchedule string
	AnalysisHistoryLimit    int

	CORSAllowedOrigins []string
}

// Load reads .env (if any) and the environment and returns a validated Config.
func Load() (*Config, error) {
	// missing .env is fine outside local development
	_ = godotenv.Load()

	cfg := &Config{
		Env:                     getEnvString("APP_ENV", "development"),
		Port:                    getEnvString("PORT", "8080"),
		LogLevel:                getEnvString("LOG_LEVEL", "info"),
		DatabaseURL:             os.Getenv("DATABASE_URL"),
		RedisURL:                os.Getenv("REDIS_URL"),
		GeminiAPIKey:            os.Getenv("GEMINI_API_KEY"),
		GeminiModel:             getEnvString("GEMINI_MODEL", "gemini-2.5-flash"),
		GmailCredentialsFile:    getEnvString("GMAIL_CREDENTIALS_FILE", "credential.json"),
		GmailTokenFile:          getEnvString("GMAIL_TOKEN_FILE", "token.json"),
		GmailSyncSchedule:       getEnvString("GMAIL_SYNC_SCHEDULE", "@every 15m"),
		ResearchCacheTTL:        getEnvDuration("RESEARCH_CACHE_TTL", 24*time.Hour),
		AnalysisMaxAge:          getEnvDuration("ANALYSIS_MAX_AGE", 7*24*time.Hour),
		AnalysisRefreshSchedule: getEnvString("ANALYSIS_REFRESH_SCHEDULE", "@daily"),
		AnalysisHistoryLimit:    getEnvInt("ANALYSIS_HISTORY_LIMIT", 5),
		CORSAllowedOrigins:      getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}
	return cfg, nil
}

// IsDevelopment reports whether the server runs with development defaults.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func getEnvString(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(value) == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
