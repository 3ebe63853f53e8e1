package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"meal-lens/internal/logger"
)

// Config carries everything the server needs from its environment. Flags in
// main override the env-derived values.
type Config struct {
	Host    string
	Port    int
	DBPath  string
	BaseURL string // externally visible base URL, embedded in the widget markup

	Upstream Upstream
}

// Upstream configures the LLM completion endpoint. The API is
// OpenAI-compatible; the key may legitimately be absent, in which case every
// analysis request fails with a credential error.
type Upstream struct {
	APIKey  string
	BaseURL string
	Model   string
}

// Load reads .env if present, then the process environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		logger.Debug("no .env file found, using system env vars")
	}

	cfg := &Config{
		Host:   GetEnv("MEAL_LENS_HOST", "0.0.0.0"),
		Port:   8012,
		DBPath: GetEnv("MEAL_LENS_DB_PATH", "meal-lens.db"),
		Upstream: Upstream{
			APIKey:  GetEnv("LLM_API_KEY", ""),
			BaseURL: GetEnv("LLM_BASE_URL", "https://api.openai.com/v1"),
			Model:   GetEnv("LLM_MODEL", "gpt-4o-mini"),
		},
	}
	cfg.BaseURL = GetEnv("MEAL_LENS_BASE_URL", fmt.Sprintf("http://localhost:%d", cfg.Port))
	return cfg
}

// GetEnv returns the value of key, or fallback when unset or empty.
func GetEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
