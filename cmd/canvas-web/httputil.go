package main

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"promptcanvas/internal/history"
	"promptcanvas/internal/studio"
)

// server carries the handler dependencies. One instance serves the process.
type server struct {
	svc   *studio.Service
	store *history.Store
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func httpError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
