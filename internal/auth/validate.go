package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"
)

// ValidationError represents a specific type of API key validation failure.
type ValidationError struct {
	Type    ValidationErrorType
	Message string
	Err     error
}

// ValidationErrorType categorizes validation failures.
type ValidationErrorType int

const (
	// ErrTypeNoKey indicates no API key was found.
	ErrTypeNoKey ValidationErrorType = iota
	// ErrTypeInvalidKey indicates the API key is invalid or revoked.
	ErrTypeInvalidKey
	// ErrTypeNetworkError indicates a network connectivity issue.
	ErrTypeNetworkError
	// ErrTypeQuotaExceeded indicates the API quota has been exceeded.
	ErrTypeQuotaExceeded
	// ErrTypeUnknown indicates an unknown error occurred.
	ErrTypeUnknown
)

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// ValidateAPIKey verifies the key by making a minimal generation call. It
// returns nil when the key works, or a ValidationError describing why not.
func ValidateAPIKey(ctx context.Context, client *genai.Client, model string) error {
	log.Debug().Str("model", model).Msg("Validating API key")

	resp, err := client.Models.GenerateContent(ctx, model, genai.Text("hi"), nil)
	if err != nil {
		return classifyError(err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		log.Warn().Msg("API key validation returned empty response")
		return &ValidationError{Type: ErrTypeUnknown, Message: "API returned empty response"}
	}

	log.Info().Msg("API key validated")
	return nil
}

// classifyError maps an API error onto a ValidationError type.
func classifyError(err error) *ValidationError {
	var apiErr *genai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case 400, 401, 403:
			return &ValidationError{Type: ErrTypeInvalidKey, Message: "API key is invalid, expired, or lacks permissions", Err: err}
		case 429:
			return &ValidationError{Type: ErrTypeQuotaExceeded, Message: "API rate limit exceeded", Err: err}
		case 500, 502, 503, 504:
			return &ValidationError{Type: ErrTypeNetworkError, Message: "API server error", Err: err}
		}
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "api key not valid") ||
		strings.Contains(msg, "invalid api key") ||
		strings.Contains(msg, "permission denied"):
		return &ValidationError{Type: ErrTypeInvalidKey, Message: "API key is invalid or has been revoked", Err: err}

	case strings.Contains(msg, "quota") ||
		strings.Contains(msg, "resource exhausted") ||
		strings.Contains(msg, "rate limit"):
		return &ValidationError{Type: ErrTypeQuotaExceeded, Message: "API quota exceeded or rate limited", Err: err}

	case strings.Contains(msg, "connection") ||
		strings.Contains(msg, "network") ||
		strings.Contains(msg, "timeout") ||
		strings.Contains(msg, "dial") ||
		strings.Contains(msg, "no such host"):
		return &ValidationError{Type: ErrTypeNetworkError, Message: "network error - check your internet connection", Err: err}

	default:
		return &ValidationError{Type: ErrTypeUnknown, Message: "failed to validate API key", Err: err}
	}
}
