package utils

import (
	"github.com/google/uuid"
)

// GenerateSessionID creates a new UUID for game session identification
func GenerateSessionID() string {
	return uuid.New().String()
}
