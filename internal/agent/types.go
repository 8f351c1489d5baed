// Package agent talks to the remote generation agent. The agent is a loosely
// specified third-party endpoint: the envelope carries a success flag and a
// response object with a status plus either a structured result, a message
// string, or both. Anything past that is the normalizer's problem.
package agent

import (
	"context"
	"encoding/json"
)

// StatusSuccess is the only response status treated as a successful call.
const StatusSuccess = "success"

// Payload is the response object inside a successful envelope.
type Payload struct {
	Status  string          `json:"status"`
	Result  json.RawMessage `json:"result,omitempty"`
	Message string          `json:"message,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// Envelope is the agent's top-level reply.
type Envelope struct {
	Success     bool     `json:"success"`
	Response    *Payload `json:"response,omitempty"`
	Error       string   `json:"error,omitempty"`
	RawResponse string   `json:"raw_response,omitempty"`
}

// Failed reports whether the envelope describes an agent-side failure:
// success false, a missing response object, or a non-success status.
func (e *Envelope) Failed() bool {
	return !e.Success || e.Response == nil || e.Response.Status != StatusSuccess
}

// FailureMessage returns the agent's own description of a failure, falling
// back to a generic message when the envelope carries none.
func (e *Envelope) FailureMessage() string {
	if e.Response != nil {
		if e.Response.Error != "" {
			return e.Response.Error
		}
		if e.Response.Message != "" {
			return e.Response.Message
		}
	}
	if e.Error != "" {
		return e.Error
	}
	return "the agent could not process this request"
}

// DecodeResult unwraps the structured result into a dynamically-typed value
// for the normalizer. An absent result yields nil; a result that is not valid
// JSON is handed over as its raw text so URL sniffing still gets a chance.
func (e *Envelope) DecodeResult() any {
	if e.Response == nil || len(e.Response.Result) == 0 {
		return nil
	}
	var raw any
	if err := json.Unmarshal(e.Response.Result, &raw); err != nil {
		return string(e.Response.Result)
	}
	return raw
}

// Backend sends one composed instruction to the agent and returns its
// envelope. Implementations must not retry; a failed call surfaces as-is.
type Backend interface {
	Call(ctx context.Context, instruction, sessionID string) (*Envelope, error)
}
