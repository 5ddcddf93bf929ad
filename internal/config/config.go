package config

import (
	"errors"
	"os"
	"strings"
)

// Config holds the runtime configuration of the catalog service.
type Config struct {
	DatabaseURL string
	Port        string
}

// Load reads the configuration from the environment. DATABASE_URL has no
// default: the service refuses to start without it.
func Load() (*Config, error) {
	dbURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if dbURL == "" {
		return nil, errors.New("DATABASE_URL is not set")
	}

	return &Config{
		DatabaseURL: dbURL,
		Port:        getEnv("PORT", "5000"),
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
