package main

import (
	"encoding/json"
	"net/http"
)

// handleHistory serves the generation history (GET) and clears it (DELETE).
func (s *server) handleHistory(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		entries := s.store.Entries()
		respondJSON(w, http.StatusOK, map[string]any{
			"entries":     entries,
			"sample_mode": s.store.SampleMode(),
		})

	case http.MethodDelete:
		if s.store.SampleMode() {
			httpError(w, http.StatusConflict, "cannot clear history while sample mode is on")
			return
		}
		s.store.Clear()
		respondJSON(w, http.StatusOK, map[string]any{"entries": []any{}})

	default:
		httpError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleSampleMode toggles the demo view. Turning it on swaps in the bundled
// sample entries; turning it off restores the persisted history untouched.
func (s *server) handleSampleMode(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req struct {
		Enabled bool `json:"enabled"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.store.SetSampleMode(req.Enabled)
	respondJSON(w, http.StatusOK, map[string]any{
		"entries":     s.store.Entries(),
		"sample_mode": s.store.SampleMode(),
	})
}
