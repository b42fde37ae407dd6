package infra

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config represents application configuration loaded from environment
// variables. Generation settings (API key, base prompt, model) are not
// here: they live in the app_config table so they can change at runtime.
type Config struct {
	AppEnv            string
	Port              string
	DatabaseURL       string
	DataDir           string
	OpenAIBaseURL     string
	GenerationTimeout time.Duration
	WorkerPoll        time.Duration
	HTTPReadTimeout   time.Duration
	HTTPIdleTimeout   time.Duration
	CORSOrigins       []string
}

// LoadConfig loads configuration from environment variables and applies
// defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:            getEnv("APP_ENV", "development"),
		Port:              getEnv("PORT", "8080"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		DataDir:           getEnv("DATA_DIR", "./data"),
		OpenAIBaseURL:     getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		GenerationTimeout: time.Second * time.Duration(getEnvInt("GENERATION_TIMEOUT_SECONDS", 120)),
		WorkerPoll:        time.Second * time.Duration(getEnvInt("WORKER_POLL_SECONDS", 2)),
		HTTPReadTimeout:   time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPIdleTimeout:   time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		CORSOrigins:       []string{getEnv("CORS_ORIGIN", "*")},
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if !filepath.IsAbs(cfg.DataDir) {
		if abs, err := filepath.Abs(cfg.DataDir); err == nil {
			cfg.DataDir = abs
		}
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
