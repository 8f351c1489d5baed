package main

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"promptcanvas/internal/agent"
	"promptcanvas/internal/studio"
)

type generateRequest struct {
	Prompt  string `json:"prompt"`
	Style   string `json:"style"`
	Size    string `json:"size"`
	Quality string `json:"quality"`
}

func (r generateRequest) params() agent.Params {
	return agent.Params{Style: r.Style, Size: r.Size, Quality: r.Quality}
}

// handleGenerate runs an image generation round trip.
func (s *server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := s.svc.Generate(r.Context(), req.Prompt, req.params())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

// handleEnhance runs a prompt enhancement round trip.
func (s *server) handleEnhance(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, summary, err := s.svc.Enhance(r.Context(), req.Prompt, req.params())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"data":    res,
		"summary": summary,
	})
}

// handleParams returns the accepted values for each generation parameter so
// the frontend can build its selectors from the server's enums.
func (s *server) handleParams(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httpError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"styles":    agent.Styles,
		"sizes":     agent.Sizes,
		"qualities": agent.Qualities,
		"defaults":  agent.DefaultParams(),
	})
}

// writeServiceError maps service errors to HTTP statuses. Agent-reported
// failures surface the agent's own message; transport and internal failures
// get a generic message so backend details never reach the browser.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, studio.ErrBusy):
		httpError(w, http.StatusConflict, err.Error())
	case errors.Is(err, studio.ErrEmptyPrompt):
		httpError(w, http.StatusBadRequest, err.Error())
	default:
		var agentErr *studio.AgentError
		if errors.As(err, &agentErr) {
			httpError(w, http.StatusBadGateway, agentErr.Message)
			return
		}
		var paramErr *agent.ParamError
		if errors.As(err, &paramErr) {
			httpError(w, http.StatusBadRequest, paramErr.Error())
			return
		}
		log.Error().Err(err).Msg("Generation failed")
		httpError(w, http.StatusInternalServerError, "Sorry, something went wrong while generating your image. Please try again.")
	}
}
