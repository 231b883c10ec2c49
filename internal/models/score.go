package models

import (
	"fmt"
	"time"
)

// GameType selects the leaderboard partition and which field group is used
type GameType string

const (
	GameTypeNumber GameType = "number"
	GameTypeWord   GameType = "word"
)

// ValidGameType reports whether s names a known game type
func ValidGameType(s string) bool {
	return s == string(GameTypeNumber) || s == string(GameTypeWord)
}

// GameScore is one persisted game result. Exactly the field group matching
// GameType is populated; the other group stays nil. JSON names follow the
// wire format consumed by the game client.
type GameScore struct {
	ID         int64     `json:"id"`
	GameType   GameType  `json:"gameType"`
	Score      int       `json:"score"`
	TimePlayed int       `json:"timePlayed"` // seconds
	CreatedAt  time.Time `json:"createdAt"`

	// Number game
	Level      *int `json:"level,omitempty"`
	MinRange   *int `json:"minRange,omitempty"`
	MaxRange   *int `json:"maxRange,omitempty"`
	MemoryTime *int `json:"memoryTime,omitempty"`

	// Word game
	Topic       *string `json:"topic,omitempty"`
	WordsCount  *int    `json:"wordsCount,omitempty"`
	ChainLength *int    `json:"chainLength,omitempty"`
}

// NewNumberScore builds a number-game score record
func NewNumberScore(score, timePlayed, level, minRange, maxRange, memoryTime int) *GameScore {
	return &GameScore{
		GameType:   GameTypeNumber,
		Score:      score,
		TimePlayed: timePlayed,
		Level:      &level,
		MinRange:   &minRange,
		MaxRange:   &maxRange,
		MemoryTime: &memoryTime,
	}
}

// NewWordScore builds a word-game score record
func NewWordScore(score, timePlayed int, topic string, wordsCount, chainLength int) *GameScore {
	return &GameScore{
		GameType:    GameTypeWord,
		Score:       score,
		TimePlayed:  timePlayed,
		Topic:       &topic,
		WordsCount:  &wordsCount,
		ChainLength: &chainLength,
	}
}

// Validate checks the record invariants before it reaches the store
func (s *GameScore) Validate() error {
	if !ValidGameType(string(s.GameType)) {
		return fmt.Errorf("invalid game type: %q", s.GameType)
	}
	if s.Score < 0 {
		return fmt.Errorf("score must be non-negative, got %d", s.Score)
	}
	if s.TimePlayed < 0 {
		return fmt.Errorf("timePlayed must be non-negative, got %d", s.TimePlayed)
	}

	hasNumberFields := s.Level != nil || s.MinRange != nil || s.MaxRange != nil || s.MemoryTime != nil
	hasWordFields := s.Topic != nil || s.WordsCount != nil || s.ChainLength != nil

	switch s.GameType {
	case GameTypeNumber:
		if hasWordFields {
			return fmt.Errorf("number score must not carry word-game fields")
		}
	case GameTypeWord:
		if hasNumberFields {
			return fmt.Errorf("word score must not carry number-game fields")
		}
	}

	return nil
}
