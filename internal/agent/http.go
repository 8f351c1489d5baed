package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultTimeout bounds a single agent call. Image generation routinely takes
// tens of seconds, so this is generous; there is no retry on top of it.
const DefaultTimeout = 120 * time.Second

// maxResponseBytes caps how much of an agent reply is read into memory.
const maxResponseBytes = 4 << 20

// HTTPBackend calls a remote agent endpoint over plain HTTP JSON.
type HTTPBackend struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
}

// NewHTTPBackend creates a backend for the given endpoint. apiKey may be
// empty for unauthenticated agents. A non-positive timeout falls back to
// DefaultTimeout.
func NewHTTPBackend(endpoint, apiKey string, timeout time.Duration) *HTTPBackend {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPBackend{
		endpoint:   endpoint,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type agentRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

// Call posts the instruction and session identifier to the agent and decodes
// the envelope. Transport errors, non-2xx statuses, and undecodable bodies
// all come back as errors; agent-reported failures come back as a decoded
// envelope with Failed() true.
func (b *HTTPBackend) Call(ctx context.Context, instruction, sessionID string) (*Envelope, error) {
	start := time.Now()
	log.Debug().
		Str("endpoint", b.endpoint).
		Str("session_id", sessionID).
		Int("instruction_length", len(instruction)).
		Msg("Sending instruction to agent")

	body, err := json.Marshal(agentRequest{Message: instruction, SessionID: sessionID})
	if err != nil {
		return nil, fmt.Errorf("encode agent request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build agent request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if b.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+b.apiKey)
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("agent request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read agent response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Some agents return a proper envelope alongside an error status;
		// prefer its message over a bare status code.
		var env Envelope
		if json.Unmarshal(respBody, &env) == nil && (env.Error != "" || env.Response != nil) {
			return &env, nil
		}
		return nil, fmt.Errorf("agent returned HTTP %d", resp.StatusCode)
	}

	var env Envelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		return nil, fmt.Errorf("decode agent response: %w", err)
	}

	log.Info().
		Bool("success", env.Success).
		Dur("duration", time.Since(start)).
		Int("response_bytes", len(respBody)).
		Msg("Agent call complete")

	return &env, nil
}
