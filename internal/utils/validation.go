package utils

import (
	"fmt"
)

// ValidationError represents a rejected input. It is surfaced to the user
// and never changes game state.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}
