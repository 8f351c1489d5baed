package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"

	"promptcanvas/internal/jsonutil"
)

// GeminiBackend runs the agent role on a Gemini model instead of a dedicated
// agent service. The model's text reply is folded into the same envelope
// shape the HTTP backend produces, so the rest of the pipeline is agnostic to
// which backend answered.
type GeminiBackend struct {
	client *genai.Client
	model  string
}

// NewGeminiBackend creates a Gemini-hosted agent backend.
func NewGeminiBackend(ctx context.Context, apiKey, model string) (*GeminiBackend, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create Gemini client: %w", err)
	}
	return &GeminiBackend{client: client, model: model}, nil
}

// Client exposes the underlying genai client for startup key validation.
func (b *GeminiBackend) Client() *genai.Client {
	return b.client
}

// Call sends the instruction to the model and wraps its reply in an Envelope.
// A reply containing a JSON object becomes the structured result; anything
// else rides along as the message text, with the raw reply preserved for the
// caller's fallback parsing.
func (b *GeminiBackend) Call(ctx context.Context, instruction, sessionID string) (*Envelope, error) {
	start := time.Now()
	log.Debug().
		Str("model", b.model).
		Str("session_id", sessionID).
		Int("instruction_length", len(instruction)).
		Msg("Sending instruction to Gemini")

	resp, err := b.client.Models.GenerateContent(ctx, b.model, genai.Text(instruction), nil)
	if err != nil {
		return nil, fmt.Errorf("gemini call failed: %w", err)
	}

	text := collectText(resp)
	if text == "" {
		return &Envelope{Success: false, Error: "model returned an empty reply"}, nil
	}

	log.Info().
		Dur("duration", time.Since(start)).
		Int("reply_length", len(text)).
		Msg("Gemini call complete")

	env := &Envelope{
		Success:     true,
		Response:    &Payload{Status: StatusSuccess},
		RawResponse: text,
	}
	if obj, err := jsonutil.ExtractObject(jsonutil.StripFences(text)); err == nil && json.Valid([]byte(obj)) {
		env.Response.Result = json.RawMessage(obj)
	} else {
		env.Response.Message = text
	}
	return env, nil
}

// collectText concatenates the text parts of every candidate.
func collectText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var b strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part != nil && part.Text != "" {
				b.WriteString(part.Text)
			}
		}
	}
	return b.String()
}
