package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"shiritori/internal/oracle"
)

// AIHandler exposes the word oracle directly, for clients that drive the
// word game themselves instead of going through the session endpoints
type AIHandler struct {
	oracle *oracle.Service
}

// NewAIHandler creates a new AI handler
func NewAIHandler(o *oracle.Service) *AIHandler {
	return &AIHandler{oracle: o}
}

// GetRandomTopic handles GET /get-random-topic
func (h *AIHandler) GetRandomTopic(w http.ResponseWriter, r *http.Request) {
	topic, err := h.oracle.RandomTopic(r.Context())
	if err != nil {
		respondWithError(w, http.StatusServiceUnavailable, "No topic available", "Error generating topic", err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"topic":     topic,
		"aiEnabled": h.oracle.AIEnabled(),
	})
}

type aiWordRequest struct {
	Topic     string   `json:"topic"`
	LastWord  string   `json:"lastWord"`
	UsedWords []string `json:"usedWords"`
}

// GetAIWord handles POST /get-ai-word
func (h *AIHandler) GetAIWord(w http.ResponseWriter, r *http.Request) {
	var req aiWordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidRequest, "Failed to decode AI word request", err)
		return
	}
	if strings.TrimSpace(req.Topic) == "" {
		respondWithError(w, http.StatusBadRequest, "Topic is required", "", nil)
		return
	}

	word, err := h.oracle.GenerateWord(r.Context(), req.Topic, req.LastWord, req.UsedWords)
	if err != nil {
		if errors.Is(err, oracle.ErrNoWord) {
			// Both Gemini and the fallback are out of candidates; the
			// chain cannot continue
			respondWithJSON(w, http.StatusOK, map[string]interface{}{
				"success": false,
				"error":   "No word available",
			})
			return
		}
		respondWithError(w, http.StatusServiceUnavailable, "Word oracle unavailable", "Error generating word", err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"word":    word,
	})
}

type validateWordRequest struct {
	Word  string `json:"word"`
	Topic string `json:"topic"`
}

// ValidateWord handles POST /validate-word
func (h *AIHandler) ValidateWord(w http.ResponseWriter, r *http.Request) {
	var req validateWordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidRequest, "Failed to decode validation request", err)
		return
	}
	if strings.TrimSpace(req.Word) == "" || strings.TrimSpace(req.Topic) == "" {
		respondWithError(w, http.StatusBadRequest, "Word and topic are required", "", nil)
		return
	}

	result, err := h.oracle.ValidateWord(r.Context(), req.Word, req.Topic)
	if err != nil {
		respondWithError(w, http.StatusServiceUnavailable, "Word oracle unavailable", "Error validating word", err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"valid":   result.Valid,
		"reason":  result.Reason,
	})
}
