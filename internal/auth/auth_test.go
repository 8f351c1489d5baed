package auth

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGetAPIKeyFromEnv(t *testing.T) {
	const testKey = "test-api-key-12345"
	t.Setenv("GEMINI_API_KEY", testKey)

	key, err := GetAPIKey()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if key != testKey {
		t.Errorf("expected key %q, got %q", testKey, key)
	}
}

func TestGetAPIKeyFromFile(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")

	tmpHome := t.TempDir()
	t.Setenv("HOME", tmpHome)

	credDir := filepath.Join(tmpHome, credentialDir)
	if err := os.MkdirAll(credDir, 0o700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(credDir, credentialFile), []byte("file-key-6789\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	key, err := GetAPIKey()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if key != "file-key-6789" {
		t.Errorf("expected trimmed file key, got %q", key)
	}
}

func TestGetAPIKeyNoSource(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("HOME", t.TempDir())

	if _, err := GetAPIKey(); err == nil {
		t.Error("expected error when no API key source available")
	}
}

func TestCredentialPath(t *testing.T) {
	path, err := credentialPath()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	home, _ := os.UserHomeDir()
	expected := filepath.Join(home, credentialDir, credentialFile)
	if path != expected {
		t.Errorf("expected path %q, got %q", expected, path)
	}
}
