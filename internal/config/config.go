package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	ServerPort   string
	DatabaseType string // sqlite (default), postgres, mysql
	DatabasePath string // sqlite file path
	DatabaseURL  string // postgres/mysql DSN

	MigrationsPath  string
	StaticFilesPath string

	// Gemini word oracle; empty key means fallback word lists only
	GeminiAPIKey string
	GeminiModel  string

	// Signing secret for the game session cookie
	SessionSecret string
	// Idle game sessions older than this are swept
	SessionIdleTimeout time.Duration

	// Optional bcrypt hash gating POST /clear-scores/{type}
	ClearPasscodeHash string

	// Oracle endpoint rate limit (requests per window per client IP)
	OracleRateLimit  int
	OracleRateWindow time.Duration
}

// Load reads configuration from environment variables with sensible defaults
func Load() *Config {
	// Best-effort; a missing .env file is not an error
	_ = godotenv.Load()

	return &Config{
		ServerPort:         getEnv("PORT", "8080"),
		DatabaseType:       getEnv("DB_TYPE", "sqlite"),
		DatabasePath:       getEnv("DB_PATH", "./shiritori.db"),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		MigrationsPath:     getEnv("MIGRATIONS_PATH", "./migrations"),
		StaticFilesPath:    getEnv("STATIC_PATH", "./static"),
		GeminiAPIKey:       getEnv("GEMINI_API_KEY", ""),
		GeminiModel:        getEnv("GEMINI_MODEL", "gemini-pro"),
		SessionSecret:      getEnv("SESSION_SECRET", "dev-only-insecure-secret"),
		SessionIdleTimeout: getEnvDuration("SESSION_IDLE_TIMEOUT", 30*time.Minute),
		ClearPasscodeHash:  getEnv("CLEAR_PASSCODE_HASH", ""),
		OracleRateLimit:    getEnvInt("ORACLE_RATE_LIMIT", 30),
		OracleRateWindow:   getEnvDuration("ORACLE_RATE_WINDOW", time.Minute),
	}
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
