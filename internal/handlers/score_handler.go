package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"shiritori/internal/models"
	"shiritori/internal/repository"
	"shiritori/internal/utils"
)

// DefaultScoreLimit is how many leaderboard rows are returned when the
// client does not ask for a specific count
const DefaultScoreLimit = 10

// MaxScoreLimit caps the limit query parameter
const MaxScoreLimit = 100

// ScoreHandler handles the score persistence HTTP requests
type ScoreHandler struct {
	repo *repository.ScoreRepository
	// bcrypt hash gating clear-scores; empty disables the check
	clearPasscodeHash string
}

// NewScoreHandler creates a new score handler
func NewScoreHandler(repo *repository.ScoreRepository, clearPasscodeHash string) *ScoreHandler {
	return &ScoreHandler{repo: repo, clearPasscodeHash: clearPasscodeHash}
}

// SaveScore handles POST /save-score
func (h *ScoreHandler) SaveScore(w http.ResponseWriter, r *http.Request) {
	var score models.GameScore
	if err := json.NewDecoder(r.Body).Decode(&score); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidRequest, "Failed to decode score", err)
		return
	}

	if err := score.Validate(); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error(), "", nil)
		return
	}

	id, err := h.repo.Save(&score)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to save score", "Error saving score", err)
		return
	}

	respondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"id":      id,
	})
}

// GetScores handles GET /get-scores/{type}
func (h *ScoreHandler) GetScores(w http.ResponseWriter, r *http.Request) {
	gameType := r.PathValue("type")
	if !models.ValidGameType(gameType) {
		respondWithError(w, http.StatusBadRequest, ErrInvalidGameType, "", nil)
		return
	}

	limit := DefaultScoreLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			respondWithError(w, http.StatusBadRequest, "Invalid limit", "", nil)
			return
		}
		if n > MaxScoreLimit {
			n = MaxScoreLimit
		}
		limit = n
	}

	scores, err := h.repo.TopScores(models.GameType(gameType), limit)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load scores", "Error loading scores", err)
		return
	}
	if scores == nil {
		// An empty leaderboard is [], never null
		scores = []models.GameScore{}
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"scores":  scores,
	})
}

type clearScoresRequest struct {
	Passcode string `json:"passcode"`
}

// ClearScores handles POST /clear-scores/{type}
func (h *ScoreHandler) ClearScores(w http.ResponseWriter, r *http.Request) {
	gameType := r.PathValue("type")
	if !models.ValidGameType(gameType) {
		respondWithError(w, http.StatusBadRequest, ErrInvalidGameType, "", nil)
		return
	}

	if h.clearPasscodeHash != "" {
		var req clearScoresRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Passcode == "" {
			respondWithError(w, http.StatusUnauthorized, "Passcode required", "", nil)
			return
		}
		if !utils.CheckPassword(req.Passcode, h.clearPasscodeHash) {
			respondWithError(w, http.StatusUnauthorized, "Invalid passcode", "", nil)
			return
		}
	}

	deleted, err := h.repo.Clear(models.GameType(gameType))
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to clear scores", "Error clearing scores", err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"deleted": deleted,
	})
}
