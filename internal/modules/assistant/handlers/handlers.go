// Package handlers provides HTTP handlers for the AI assistant endpoint.
package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"cryptodash/internal/modules/assistant"
)

// askRequest is the POST /api/ai-assistant body.
type askRequest struct {
	Question   string `json:"question"`
	CryptoName string `json:"cryptoName"`
}

// Handler handles AI assistant HTTP requests
type Handler struct {
	service *assistant.Service
	log     zerolog.Logger
}

// NewHandler creates a new assistant handler
func NewHandler(service *assistant.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "assistant").Logger(),
	}
}

// HandleAsk handles POST /api/ai-assistant
// Provider failures inside the result are returned with status 200; only
// client input errors map to 400. Existing clients inspect the body's
// error field, so the status code stays 200 for compatibility.
func (h *Handler) HandleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid JSON"})
		return
	}

	if strings.TrimSpace(req.Question) == "" {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Missing question parameter"})
		return
	}

	coinHint := req.CryptoName
	if coinHint == "" {
		coinHint = "general"
	}

	result := h.service.Answer(req.Question, coinHint)
	h.writeJSON(w, http.StatusOK, result)
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
