package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"shiritori/internal/game"
	"shiritori/internal/oracle"
	"shiritori/internal/security"
	"shiritori/internal/utils"
)

// GameHandler runs the server-side game sessions. The session is addressed
// by a signed cookie; a missing or invalid cookie silently mints a fresh
// session rather than failing the request.
type GameHandler struct {
	manager       *game.Manager
	oracle        oracle.WordOracle
	sessionSecret string
	sessionTTL    time.Duration
}

// NewGameHandler creates a new game handler
func NewGameHandler(manager *game.Manager, o oracle.WordOracle, sessionSecret string, sessionTTL time.Duration) *GameHandler {
	return &GameHandler{
		manager:       manager,
		oracle:        o,
		sessionSecret: sessionSecret,
		sessionTTL:    sessionTTL,
	}
}

// session resolves the request to a game session, setting a fresh signed
// cookie when one had to be created
func (h *GameHandler) session(w http.ResponseWriter, r *http.Request) (*game.Session, error) {
	var id string
	if cookie, err := r.Cookie(security.GameSessionCookie); err == nil {
		if sid, err := security.ParseSessionToken(cookie.Value, h.sessionSecret); err == nil {
			id = sid
		}
	}

	s, created := h.manager.GetOrCreate(id)
	if created {
		token, err := security.SignSessionToken(s.ID, h.sessionSecret, h.sessionTTL)
		if err != nil {
			return nil, err
		}
		http.SetCookie(w, security.CreateSessionCookie(r, security.GameSessionCookie, token, time.Now().Add(h.sessionTTL)))
	}
	return s, nil
}

// respondGameError maps game package errors onto HTTP statuses
func respondGameError(w http.ResponseWriter, err error) {
	var verr utils.ValidationError
	switch {
	case errors.Is(err, game.ErrWrongPhase):
		respondWithError(w, http.StatusConflict, err.Error(), "", nil)
	case errors.As(err, &verr):
		respondWithError(w, http.StatusBadRequest, err.Error(), "", nil)
	default:
		respondWithError(w, http.StatusInternalServerError, ErrInternal, "Game session error", err)
	}
}

// StartNumber handles POST /game/number/start
func (h *GameHandler) StartNumber(w http.ResponseWriter, r *http.Request) {
	s, err := h.session(w, r)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternal, "Failed to establish session", err)
		return
	}

	var cfg game.NumberConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidRequest, "Failed to decode number config", err)
		return
	}

	snap, err := s.StartNumber(cfg)
	if err != nil {
		respondGameError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"state":   snap,
	})
}

type numberAnswerRequest struct {
	Answer string `json:"answer"`
}

// SubmitNumber handles POST /game/number/answer
func (h *GameHandler) SubmitNumber(w http.ResponseWriter, r *http.Request) {
	s, err := h.session(w, r)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternal, "Failed to establish session", err)
		return
	}

	var req numberAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidRequest, "Failed to decode answer", err)
		return
	}

	outcome, err := s.SubmitNumber(req.Answer)
	if err != nil {
		respondGameError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"accepted": outcome.Accepted,
		"reason":   outcome.Reason,
		"state":    outcome.State,
	})
}

type wordStartRequest struct {
	Topic string `json:"topic"`
}

// StartWord handles POST /game/word/start
func (h *GameHandler) StartWord(w http.ResponseWriter, r *http.Request) {
	s, err := h.session(w, r)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternal, "Failed to establish session", err)
		return
	}

	var req wordStartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidRequest, "Failed to decode word game config", err)
		return
	}

	snap, err := s.StartWord(r.Context(), req.Topic, h.oracle)
	if err != nil {
		respondGameError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"state":   snap,
	})
}

type wordSubmitRequest struct {
	Word string `json:"word"`
}

// SubmitWord handles POST /game/word/submit
func (h *GameHandler) SubmitWord(w http.ResponseWriter, r *http.Request) {
	s, err := h.session(w, r)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternal, "Failed to establish session", err)
		return
	}

	var req wordSubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidRequest, "Failed to decode word", err)
		return
	}

	outcome, err := s.SubmitWord(r.Context(), req.Word, h.oracle)
	if err != nil {
		respondGameError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"accepted": outcome.Accepted,
		"reason":   outcome.Reason,
		"state":    outcome.State,
	})
}

type arrangementRequest struct {
	Order []string `json:"order"`
}

// SubmitArrangement handles POST /game/word/arrange
func (h *GameHandler) SubmitArrangement(w http.ResponseWriter, r *http.Request) {
	s, err := h.session(w, r)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternal, "Failed to establish session", err)
		return
	}

	var req arrangementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidRequest, "Failed to decode arrangement", err)
		return
	}

	outcome, err := s.SubmitArrangement(req.Order)
	if err != nil {
		respondGameError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"accepted": outcome.Accepted,
		"reason":   outcome.Reason,
		"state":    outcome.State,
	})
}

// State handles GET /game/state
func (h *GameHandler) State(w http.ResponseWriter, r *http.Request) {
	s, err := h.session(w, r)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternal, "Failed to establish session", err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"state":   s.Snapshot(),
	})
}

// Quit handles POST /game/quit
func (h *GameHandler) Quit(w http.ResponseWriter, r *http.Request) {
	s, err := h.session(w, r)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternal, "Failed to establish session", err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"state":   s.Quit(),
	})
}

// Menu handles POST /game/menu, the full return-to-menu reset
func (h *GameHandler) Menu(w http.ResponseWriter, r *http.Request) {
	s, err := h.session(w, r)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternal, "Failed to establish session", err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"state":   s.Menu(),
	})
}
