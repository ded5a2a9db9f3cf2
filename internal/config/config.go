package config

import (
	"fmt"
	"os"
	"strconv"

	"khmerspeech/internal/model"
)

type Config struct {
	Port          string
	Env           string
	ProjectID     string
	Bucket        string
	GoogleKeyFile string
	OpenAIKey     string
	MaxAttempts   int
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("APP_ENV", "production"),
		ProjectID:     getEnv("GOOGLE_PROJECT_ID", "khmer-speech-to-text"),
		Bucket:        getEnv("STORAGE_BUCKET", "khmer-speech-to-text.appspot.com"),
		GoogleKeyFile: getEnv("ADMIN_KEY_LOCATION", os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")),
		OpenAIKey:     os.Getenv("OPENAI_API_KEY"),
		MaxAttempts:   model.DefaultMaxAttempts,
	}

	if v := os.Getenv("TRANSCRIBE_MAX_ATTEMPTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("TRANSCRIBE_MAX_ATTEMPTS must be a positive integer, got %q", v)
		}
		cfg.MaxAttempts = n
	}

	if cfg.ProjectID == "" {
		return nil, fmt.Errorf("GOOGLE_PROJECT_ID is required")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("STORAGE_BUCKET is required")
	}

	// OpenAI key is optional (only needed for transcript cleanup)

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
