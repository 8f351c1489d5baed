package config

import (
	"path/filepath"
	"testing"
	"time"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("AGENT_BACKEND", "http")
	t.Setenv("AGENT_ENDPOINT", "https://agent.example.com/v1/chat")
	t.Setenv("CANVAS_HISTORY_FILE", filepath.Join(t.TempDir(), "history.json"))
	t.Setenv("CANVAS_PORT", "")
	t.Setenv("AGENT_TIMEOUT_SECONDS", "")
	t.Setenv("GEMINI_MODEL", "")
}

func TestLoadDefaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
	if cfg.AgentTimeout != 120*time.Second {
		t.Errorf("AgentTimeout = %v, want 120s", cfg.AgentTimeout)
	}
	if cfg.GeminiModel != "gemini-2.5-flash" {
		t.Errorf("GeminiModel = %q", cfg.GeminiModel)
	}
}

func TestLoadOverrides(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("CANVAS_PORT", "9191")
	t.Setenv("AGENT_TIMEOUT_SECONDS", "30")
	t.Setenv("CANVAS_LOG_LEVEL", "DEBUG")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != 9191 {
		t.Errorf("Port = %d", cfg.Port)
	}
	if cfg.AgentTimeout != 30*time.Second {
		t.Errorf("AgentTimeout = %v", cfg.AgentTimeout)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want lowercased", cfg.LogLevel)
	}
}

func TestLoadHTTPBackendRequiresEndpoint(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("AGENT_ENDPOINT", "")

	if _, err := Load(); err == nil {
		t.Error("expected error when AGENT_ENDPOINT is missing for http backend")
	}
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("AGENT_BACKEND", "carrier-pigeon")

	if _, err := Load(); err == nil {
		t.Error("expected error for unknown backend")
	}
}

func TestLoadInvalidNumbersFallBack(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("CANVAS_PORT", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want default on parse failure", cfg.Port)
	}
}
