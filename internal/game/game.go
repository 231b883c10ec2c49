package game

import (
	"errors"
	"time"
)

// Mode identifies which game a session is playing
type Mode string

const (
	ModeNone   Mode = "none"
	ModeNumber Mode = "number"
	ModeWord   Mode = "word"
)

// Phase is the current state of the active round's state machine
type Phase string

const (
	// No game in progress
	PhaseIdle Phase = "idle"

	// Number game: the sequence is visible, the memory timer is running
	PhaseDisplaying Phase = "displaying"
	// Number game: input enabled, the answer timer is running
	PhaseAwaitingAnswer Phase = "awaiting_answer"

	// Word game: the next AI word is being fetched
	PhaseAwaitingAIWord Phase = "awaiting_ai_word"
	// Word game: waiting for the player's word, the response timer is running
	PhaseAwaitingUserWord Phase = "awaiting_user_word"
	// Word game: the shuffled chain must be reordered; no timer runs here
	PhaseArrangement Phase = "arrangement_check"

	// Terminal for the round; the score record has been persisted
	PhaseRoundEnd Phase = "round_end"
)

const (
	// AnswerWindow is the fixed time to reproduce the number sequence
	AnswerWindow = 15 * time.Second
	// ResponseWindow is the fixed time to submit the next chain word
	ResponseWindow = 15 * time.Second
)

// ErrWrongPhase is returned when an event arrives in a phase that does not
// accept it. The state machine itself enforces at-most-one in-flight
// submission per phase: a second submission finds the phase already
// advanced and gets this error.
var ErrWrongPhase = errors.New("submission not accepted in the current phase")

// RuleViolation is a recoverable, round-local rejection: the phase does not
// change and the player may retry without losing the round.
type RuleViolation struct {
	Reason string
}

func (e RuleViolation) Error() string {
	return e.Reason
}
