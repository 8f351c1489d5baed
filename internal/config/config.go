// Package config loads application configuration from the environment, with
// optional .env file support for local development.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Backend names for the agent client.
const (
	BackendHTTP   = "http"
	BackendGemini = "gemini"
)

// Config holds all runtime settings for the canvas binaries.
type Config struct {
	Port        int
	LogLevel    string
	HistoryFile string

	AgentBackend  string
	AgentEndpoint string
	AgentAPIKey   string
	AgentTimeout  time.Duration

	GeminiAPIKey string
	GeminiModel  string
}

// Load reads configuration from a .env file (if present) and the environment.
// A missing .env is fine; explicit environment variables win over file values.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Port:          getEnvInt("CANVAS_PORT", 8080),
		LogLevel:      strings.ToLower(getEnv("CANVAS_LOG_LEVEL", "info")),
		HistoryFile:   getEnv("CANVAS_HISTORY_FILE", ""),
		AgentBackend:  strings.ToLower(getEnv("AGENT_BACKEND", BackendHTTP)),
		AgentEndpoint: getEnv("AGENT_ENDPOINT", ""),
		AgentAPIKey:   strings.TrimSpace(os.Getenv("AGENT_API_KEY")),
		AgentTimeout:  time.Duration(getEnvInt("AGENT_TIMEOUT_SECONDS", 120)) * time.Second,
		GeminiAPIKey:  strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
		GeminiModel:   getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
	}

	if cfg.HistoryFile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Config{}, fmt.Errorf("resolve history file location: %w", err)
		}
		cfg.HistoryFile = filepath.Join(home, ".promptcanvas", "history.json")
	}

	switch cfg.AgentBackend {
	case BackendHTTP:
		if cfg.AgentEndpoint == "" {
			return Config{}, errors.New("AGENT_ENDPOINT is required when AGENT_BACKEND is http")
		}
	case BackendGemini:
		// The Gemini key may also come from the credentials file; the auth
		// package resolves that at client construction time.
	default:
		return Config{}, fmt.Errorf("unknown AGENT_BACKEND %q (want http or gemini)", cfg.AgentBackend)
	}

	if cfg.Port < 1 || cfg.Port > 65535 {
		cfg.Port = 8080
	}
	if cfg.AgentTimeout <= 0 {
		cfg.AgentTimeout = 120 * time.Second
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
