// internal/config/config.go
package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Port        string
	Environment string

	// Engine credentials
	PerplexityAPIKey string
	OpenAIAPIKey     string
	GeminiAPIKey     string
	AnthropicAPIKey  string

	// Which engines the fan-out should dispatch to
	EnabledEngines []string

	// History persistence
	DatabaseURL  string // Postgres store when set, JSON file store otherwise
	DataDir      string
	HistoryLimit int
}

func Load() *Config {
	return &Config{
		Port:             getEnv("PORT", "3000"),
		Environment:      getEnv("ENVIRONMENT", "development"),
		PerplexityAPIKey: os.Getenv("PERPLEXITY_API_KEY"),
		OpenAIAPIKey:     firstEnv("OPENAI_API_KEY", "OPEN_AI_KEY", "OPEN_API_KEY"),
		GeminiAPIKey:     firstEnv("GOOGLE_GEMINI_API_KEY", "GEMINI_API_KEY"),
		AnthropicAPIKey:  os.Getenv("ANTHROPIC_API_KEY"),
		EnabledEngines:   getEnvList("ENABLED_ENGINES", []string{"perplexity", "google", "bing"}),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		DataDir:          getEnv("DATA_DIR", "data"),
		HistoryLimit:     getEnvInt("HISTORY_LIMIT", 1000),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, strings.ToLower(part))
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

// firstEnv returns the first non-empty value in a fallback chain of env vars.
func firstEnv(keys ...string) string {
	for _, key := range keys {
		if value := os.Getenv(key); value != "" {
			return value
		}
	}
	return ""
}
