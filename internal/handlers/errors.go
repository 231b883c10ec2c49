package handlers

import (
	"encoding/json"
	"log"
	"net/http"
)

const (
	ErrInvalidRequest  = "Invalid request body"
	ErrInvalidGameType = "Invalid game type"
	ErrInternal        = "Internal server error"
)

// respondWithJSON writes payload as the response body. Encoding failures
// are logged; the status line has already gone out by then.
func respondWithJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

// respondWithError sends the client-facing error envelope and logs the
// underlying cause when there is one
func respondWithError(w http.ResponseWriter, status int, userMsg, logMsg string, err error) {
	if err != nil {
		if logMsg == "" {
			logMsg = userMsg
		}
		log.Printf("%s: %v", logMsg, err)
	}

	respondWithJSON(w, status, map[string]interface{}{
		"success": false,
		"error":   userMsg,
	})
}
