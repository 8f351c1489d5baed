package studio

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"promptcanvas/internal/agent"
	"promptcanvas/internal/history"
)

// fakeBackend returns canned envelopes and optionally blocks until released,
// to hold the in-flight gate open.
type fakeBackend struct {
	mu      sync.Mutex
	env     *agent.Envelope
	err     error
	block   chan struct{}
	calls   int
	lastMsg string
}

func (f *fakeBackend) Call(ctx context.Context, instruction, sessionID string) (*agent.Envelope, error) {
	f.mu.Lock()
	f.calls++
	f.lastMsg = instruction
	block := f.block
	f.mu.Unlock()

	if block != nil {
		<-block
	}
	return f.env, f.err
}

func newService(t *testing.T, backend agent.Backend) *Service {
	t.Helper()
	store := history.NewStore(filepath.Join(t.TempDir(), "history.json"))
	return New(backend, store)
}

func successEnvelope(result string) *agent.Envelope {
	return &agent.Envelope{
		Success: true,
		Response: &agent.Payload{
			Status: agent.StatusSuccess,
			Result: json.RawMessage(result),
		},
	}
}

func TestGenerateHappyPath(t *testing.T) {
	backend := &fakeBackend{env: successEnvelope(`{"data": {"image_url": "https://a.com/i.png", "style": "anime"}}`)}
	svc := newService(t, backend)

	res, err := svc.Generate(context.Background(), "  a cat  ", agent.Params{Style: "anime"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.ImageURL != "https://a.com/i.png" {
		t.Errorf("ImageURL = %q", res.ImageURL)
	}
	if res.OriginalPrompt != "a cat" {
		t.Errorf("OriginalPrompt = %q, want trimmed user prompt", res.OriginalPrompt)
	}
	if !strings.Contains(backend.lastMsg, "a cat") {
		t.Errorf("instruction missing prompt: %q", backend.lastMsg)
	}
}

func TestGenerateAppendsHistory(t *testing.T) {
	backend := &fakeBackend{env: successEnvelope(`{"data": {"image_url": "https://a.com/i.png"}}`)}
	store := history.NewStore(filepath.Join(t.TempDir(), "history.json"))
	svc := New(backend, store)

	if _, err := svc.Generate(context.Background(), "a fox", agent.DefaultParams()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entries := store.Entries()
	if len(entries) != 1 {
		t.Fatalf("history length = %d, want 1", len(entries))
	}
	e := entries[0]
	if e.Prompt != "a fox" || e.Result == nil || e.Result.ImageURL != "https://a.com/i.png" {
		t.Errorf("history entry = %+v", e)
	}
	if e.ID == "" || e.Timestamp.IsZero() {
		t.Errorf("entry missing ID or timestamp: %+v", e)
	}
}

func TestGenerateBusy(t *testing.T) {
	block := make(chan struct{})
	backend := &fakeBackend{
		env:   successEnvelope(`{"data": {"image_url": "https://a.com/i.png"}}`),
		block: block,
	}
	svc := newService(t, backend)

	started := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		close(started)
		_, err := svc.Generate(context.Background(), "slow one", agent.DefaultParams())
		done <- err
	}()

	<-started
	// Wait until the first call is inside the backend, then try a second.
	for {
		backend.mu.Lock()
		inFlight := backend.calls == 1
		backend.mu.Unlock()
		if inFlight {
			break
		}
	}

	if _, err := svc.Generate(context.Background(), "second", agent.DefaultParams()); !errors.Is(err, ErrBusy) {
		t.Errorf("err = %v, want ErrBusy", err)
	}

	close(block)
	if err := <-done; err != nil {
		t.Errorf("first generation failed: %v", err)
	}

	// Gate released: a new generation goes through.
	if _, err := svc.Generate(context.Background(), "third", agent.DefaultParams()); err != nil {
		t.Errorf("generation after release failed: %v", err)
	}
}

func TestGenerateEmptyPrompt(t *testing.T) {
	svc := newService(t, &fakeBackend{env: successEnvelope(`{}`)})
	if _, err := svc.Generate(context.Background(), "   ", agent.DefaultParams()); !errors.Is(err, ErrEmptyPrompt) {
		t.Errorf("err = %v, want ErrEmptyPrompt", err)
	}
}

func TestGenerateInvalidParams(t *testing.T) {
	svc := newService(t, &fakeBackend{env: successEnvelope(`{}`)})
	_, err := svc.Generate(context.Background(), "a cat", agent.Params{Style: "nope"})
	if err == nil {
		t.Error("expected parameter validation error")
	}
}

func TestGenerateAgentReportedFailure(t *testing.T) {
	backend := &fakeBackend{env: &agent.Envelope{
		Success:  false,
		Response: &agent.Payload{Status: "error", Error: "content policy"},
	}}
	svc := newService(t, backend)

	_, err := svc.Generate(context.Background(), "a cat", agent.DefaultParams())
	var agentErr *AgentError
	if !errors.As(err, &agentErr) {
		t.Fatalf("err = %v, want *AgentError", err)
	}
	if agentErr.Message != "content policy" {
		t.Errorf("Message = %q", agentErr.Message)
	}
}

func TestGenerateNonSuccessStatusIsFailure(t *testing.T) {
	backend := &fakeBackend{env: &agent.Envelope{
		Success:  true,
		Response: &agent.Payload{Status: "pending", Message: "still working"},
	}}
	svc := newService(t, backend)

	_, err := svc.Generate(context.Background(), "a cat", agent.DefaultParams())
	var agentErr *AgentError
	if !errors.As(err, &agentErr) {
		t.Fatalf("err = %v, want *AgentError for non-success status", err)
	}
}

func TestGenerateTransportError(t *testing.T) {
	backend := &fakeBackend{err: errors.New("connection refused")}
	svc := newService(t, backend)

	_, err := svc.Generate(context.Background(), "a cat", agent.DefaultParams())
	if err == nil {
		t.Fatal("expected error")
	}
	var agentErr *AgentError
	if errors.As(err, &agentErr) {
		t.Error("transport errors must not masquerade as agent-reported failures")
	}
}

func TestGenerateMessageFallbackFillsURL(t *testing.T) {
	backend := &fakeBackend{env: &agent.Envelope{
		Success: true,
		Response: &agent.Payload{
			Status:  agent.StatusSuccess,
			Result:  json.RawMessage(`{"data": {"enhanced_prompt": "already set"}}`),
			Message: "image_url: https://a.com/late.png\nenhanced_prompt: should not overwrite\nstyle: noir",
		},
	}}
	svc := newService(t, backend)

	res, err := svc.Generate(context.Background(), "a cat", agent.DefaultParams())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.ImageURL != "https://a.com/late.png" {
		t.Errorf("ImageURL = %q, want fallback fill", res.ImageURL)
	}
	if res.EnhancedPrompt != "already set" {
		t.Errorf("EnhancedPrompt = %q, must keep primary value", res.EnhancedPrompt)
	}
	if res.Style != "noir" {
		t.Errorf("Style = %q, want fallback fill of empty field", res.Style)
	}
}

func TestGenerateRawResponseFallback(t *testing.T) {
	backend := &fakeBackend{env: &agent.Envelope{
		Success:     true,
		Response:    &agent.Payload{Status: agent.StatusSuccess},
		RawResponse: "image_url: https://a.com/raw.png",
	}}
	svc := newService(t, backend)

	res, err := svc.Generate(context.Background(), "a cat", agent.DefaultParams())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.ImageURL != "https://a.com/raw.png" {
		t.Errorf("ImageURL = %q, want raw_response fallback", res.ImageURL)
	}
}

func TestGenerateEmptyResultStillSucceeds(t *testing.T) {
	backend := &fakeBackend{env: successEnvelope(`{"data": {}}`)}
	store := history.NewStore(filepath.Join(t.TempDir(), "history.json"))
	svc := New(backend, store)

	res, err := svc.Generate(context.Background(), "a cat", agent.DefaultParams())
	if err != nil {
		t.Fatalf("shape surprises must not error: %v", err)
	}
	if res.ImageURL != "" {
		t.Errorf("ImageURL = %q, want empty", res.ImageURL)
	}
	if res.OriginalPrompt != "a cat" {
		t.Errorf("OriginalPrompt = %q", res.OriginalPrompt)
	}
	if len(store.Entries()) != 1 {
		t.Error("empty results are still recorded in history")
	}
}

func TestEnhanceHappyPath(t *testing.T) {
	backend := &fakeBackend{env: successEnvelope(`{
		"summary": "tightened wording",
		"data": {
			"enhanced_prompt": "a ginger cat stretching in morning light",
			"style_suggestion": "photographic",
			"size_recommendation": "1024x1024",
			"quality_notes": "hd recommended"
		}
	}`)}
	svc := newService(t, backend)

	res, summary, err := svc.Enhance(context.Background(), "a cat", agent.DefaultParams())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary != "tightened wording" {
		t.Errorf("summary = %q", summary)
	}
	if res.EnhancedPrompt != "a ginger cat stretching in morning light" {
		t.Errorf("EnhancedPrompt = %q", res.EnhancedPrompt)
	}
	if res.OriginalPrompt != "a cat" {
		t.Errorf("OriginalPrompt = %q", res.OriginalPrompt)
	}
}

func TestEnhanceDoesNotTouchHistory(t *testing.T) {
	backend := &fakeBackend{env: successEnvelope(`{"data": {"enhanced_prompt": "better"}}`)}
	store := history.NewStore(filepath.Join(t.TempDir(), "history.json"))
	svc := New(backend, store)

	if _, _, err := svc.Enhance(context.Background(), "a cat", agent.DefaultParams()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(store.Entries()) != 0 {
		t.Error("enhancement must not append to image history")
	}
}
