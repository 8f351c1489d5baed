// Package auth resolves and validates the Gemini API key used when the agent
// backend is Gemini-hosted.
package auth

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

const (
	credentialDir  = ".promptcanvas"
	credentialFile = "credentials"
)

// GetAPIKey retrieves the Gemini API key from available sources.
// Priority order:
//  1. GEMINI_API_KEY environment variable
//  2. Plain-text file at ~/.promptcanvas/credentials
func GetAPIKey() (string, error) {
	if key := strings.TrimSpace(os.Getenv("GEMINI_API_KEY")); key != "" {
		log.Debug().Msg("Using API key from environment variable")
		return key, nil
	}

	key, err := getFromFile()
	if err == nil && key != "" {
		log.Debug().Msg("Using API key from credentials file")
		return key, nil
	}

	return "", fmt.Errorf("API key not found: set GEMINI_API_KEY or write it to ~/%s/%s", credentialDir, credentialFile)
}

func getFromFile() (string, error) {
	credPath, err := credentialPath()
	if err != nil {
		return "", err
	}

	data, err := os.ReadFile(credPath)
	if err != nil {
		return "", fmt.Errorf("read credentials file: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func credentialPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, credentialDir, credentialFile), nil
}
