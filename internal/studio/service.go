// Package studio orchestrates a generation round trip: compose the
// instruction, call the agent, normalize whatever came back, and record the
// outcome in history.
package studio

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"promptcanvas/internal/agent"
	"promptcanvas/internal/history"
	"promptcanvas/internal/normalize"
)

// ErrBusy is returned when a generation is already in flight. Exactly one
// request may run at a time; the UI disables its trigger while loading and
// this gate enforces the same rule server-side.
var ErrBusy = errors.New("a generation is already in progress")

// ErrEmptyPrompt is returned when the prompt is empty after trimming.
var ErrEmptyPrompt = errors.New("prompt must not be empty")

// AgentError is an agent-reported failure: the call itself worked, but the
// agent declined or errored. The message is the agent's own wording.
type AgentError struct {
	Message string
}

func (e *AgentError) Error() string {
	return e.Message
}

// Service wires the agent backend to the history store. One Service serves
// the whole process; its session identifier spans all calls of a run.
type Service struct {
	backend agent.Backend
	store   *history.Store
	sem     *semaphore.Weighted
	session string
}

// New creates a Service around the given backend and history store.
func New(backend agent.Backend, store *history.Store) *Service {
	return &Service{
		backend: backend,
		store:   store,
		sem:     semaphore.NewWeighted(1),
		session: uuid.NewString(),
	}
}

// SessionID returns the session identifier sent with every agent call.
func (s *Service) SessionID() string {
	return s.session
}

// Generate runs the image-generation flow and appends the outcome to history.
// Returns ErrBusy while another request is in flight, ErrEmptyPrompt or a
// parameter error for bad input, an *AgentError for agent-reported failures,
// and a wrapped transport error otherwise.
func (s *Service) Generate(ctx context.Context, prompt string, p agent.Params) (normalize.ImageResult, error) {
	if !s.sem.TryAcquire(1) {
		return normalize.ImageResult{}, ErrBusy
	}
	defer s.sem.Release(1)

	prompt = agent.TrimPrompt(prompt)
	if prompt == "" {
		return normalize.ImageResult{}, ErrEmptyPrompt
	}
	if err := p.Validate(); err != nil {
		return normalize.ImageResult{}, err
	}

	instruction, err := agent.ComposeGenerate(prompt, p)
	if err != nil {
		return normalize.ImageResult{}, err
	}

	env, err := s.backend.Call(ctx, instruction, s.session)
	if err != nil {
		return normalize.ImageResult{}, fmt.Errorf("agent call: %w", err)
	}
	if env.Failed() {
		return normalize.ImageResult{}, &AgentError{Message: env.FailureMessage()}
	}

	res := normalize.ExtractImageResult(env.DecodeResult())

	// Two further parse locations when the primary chain found no URL.
	// These only fill, never overwrite.
	if res.ImageURL == "" && env.Response.Message != "" {
		res = normalize.MergeFallback(res, normalize.ParseKeyValueText(env.Response.Message))
	}
	if res.ImageURL == "" && env.RawResponse != "" {
		res = normalize.MergeFallback(res, normalize.ParseKeyValueText(env.RawResponse))
	}
	if res.OriginalPrompt == "" {
		res.OriginalPrompt = prompt
	}

	if res.ImageURL == "" {
		log.Warn().Str("prompt", prompt).Msg("No image URL in agent response")
	}

	s.store.Append(history.Entry{
		ID:        history.NewID(),
		Prompt:    prompt,
		Style:     p.Style,
		Size:      p.Size,
		Quality:   p.Quality,
		Result:    &res,
		Timestamp: time.Now().UTC(),
	})

	return res, nil
}

// Enhance runs the prompt-enhancement flow. Enhancement results carry their
// own summary and are not added to the image history.
func (s *Service) Enhance(ctx context.Context, prompt string, p agent.Params) (normalize.EnhancementResult, string, error) {
	if !s.sem.TryAcquire(1) {
		return normalize.EnhancementResult{}, "", ErrBusy
	}
	defer s.sem.Release(1)

	prompt = agent.TrimPrompt(prompt)
	if prompt == "" {
		return normalize.EnhancementResult{}, "", ErrEmptyPrompt
	}
	if err := p.Validate(); err != nil {
		return normalize.EnhancementResult{}, "", err
	}

	instruction, err := agent.ComposeEnhance(prompt, p)
	if err != nil {
		return normalize.EnhancementResult{}, "", err
	}

	env, err := s.backend.Call(ctx, instruction, s.session)
	if err != nil {
		return normalize.EnhancementResult{}, "", fmt.Errorf("agent call: %w", err)
	}
	if env.Failed() {
		return normalize.EnhancementResult{}, "", &AgentError{Message: env.FailureMessage()}
	}

	res, summary := normalize.ExtractEnhancement(env.DecodeResult())
	if res.OriginalPrompt == "" {
		res.OriginalPrompt = prompt
	}
	return res, summary, nil
}
