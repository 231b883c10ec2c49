package oracle

import (
	"context"
	"errors"
)

// ErrNoWord is returned when no candidate word can be produced for the
// requested constraints. The game core treats this as round-ending.
var ErrNoWord = errors.New("oracle: no candidate word available")

// ValidationResult is the oracle's verdict on a submitted word
type ValidationResult struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
}

// WordOracle generates and validates words for the chain game.
// Implementations must signal unavailability through errors rather than
// blocking; callers decide whether a failure ends the round.
type WordOracle interface {
	// RandomTopic picks a topic with enough related words to play on
	RandomTopic(ctx context.Context) (string, error)

	// GenerateWord produces the next chain word: related to topic, starting
	// with the last letter of lastWord (if lastWord is non-empty), and not
	// contained in usedWords
	GenerateWord(ctx context.Context, topic, lastWord string, usedWords []string) (string, error)

	// ValidateWord checks whether word is a real word that fits the topic
	ValidateWord(ctx context.Context, word, topic string) (ValidationResult, error)
}
