// Package config resolves the process configuration from .env files and the
// environment.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/RichardoC/humaniza/internal/remote"
)

// Config holds the application configuration.
type Config struct {
	HTTPAddr string

	DatabaseDriver string
	DatabasePath   string

	LLMProvider   string
	GeminiAPIKey  string
	GeminiModel   string
	OpenAIBaseURL string
	OpenAIAPIKey  string
	OpenAIModel   string

	SupabaseURL     string
	SupabaseAnonKey string
	SupabaseTable   string

	PromptsPath    string
	MaxUploadBytes int64
	RequestTimeout time.Duration
	LogLevel       string
}

// Default values
const (
	defaultHTTPAddr       = ":8100"
	defaultDriver         = "sqlite3"
	defaultProvider       = "gemini"
	defaultOpenAIModel    = "llama3.1:8b"
	defaultMaxUploadBytes = 20 << 20
	defaultRequestTimeout = 2 * time.Minute
)

// Load reads configuration from the first .env file found and then the
// environment. Variables already set in the environment win over the file.
func Load() *Config {
	for _, path := range getEnvPaths() {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			break
		}
	}

	return &Config{
		HTTPAddr:        getEnvString("HTTP_ADDR", defaultHTTPAddr),
		DatabaseDriver:  getEnvString("DATABASE_DRIVER", defaultDriver),
		DatabasePath:    getEnvString("DATABASE_PATH", getDefaultDatabasePath()),
		LLMProvider:     strings.ToLower(getEnvString("LLM_PROVIDER", defaultProvider)),
		GeminiAPIKey:    getEnvString("GEMINI_API_KEY", os.Getenv("API_KEY")),
		GeminiModel:     getEnvString("GEMINI_MODEL", ""),
		OpenAIBaseURL:   getEnvString("OPENAI_BASE_URL", ""),
		OpenAIAPIKey:    getEnvString("OPENAI_API_KEY", ""),
		OpenAIModel:     getEnvString("OPENAI_MODEL", defaultOpenAIModel),
		SupabaseURL:     getEnvString("SUPABASE_URL", ""),
		SupabaseAnonKey: getEnvString("SUPABASE_ANON_KEY", ""),
		SupabaseTable:   getEnvString("SUPABASE_TABLE", remote.DefaultTable),
		PromptsPath:     getEnvString("PROMPTS_PATH", ""),
		MaxUploadBytes:  getEnvInt64("MAX_UPLOAD_BYTES", defaultMaxUploadBytes),
		RequestTimeout:  getEnvDuration("REQUEST_TIMEOUT", defaultRequestTimeout),
		LogLevel:        strings.ToLower(getEnvString("LOG_LEVEL", "info")),
	}
}

// RemoteConfigured reports whether both Supabase settings look real.
func (c *Config) RemoteConfigured() bool {
	return remote.IsValidConfig(c.SupabaseURL) && remote.IsValidConfig(c.SupabaseAnonKey)
}

// getEnvPaths returns the .env locations to try, in order.
func getEnvPaths() []string {
	var paths []string
	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, ".env"))
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "humaniza", ".env"))
	}
	return paths
}

func getDefaultDatabasePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "humaniza.db"
	}
	return filepath.Join(home, ".config", "humaniza", "humaniza.db")
}

func getEnvString(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.ParseInt(value, 10, 64); err == nil && n > 0 {
			return n
		}
	}
	return defaultValue
}

// getEnvDuration accepts values like "30s" or a bare number of seconds.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		if secs, err := strconv.Atoi(value); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultValue
}
