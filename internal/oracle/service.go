package oracle

import (
	"context"
	"log"
	"strings"
)

// Service is the oracle used by the running server: Gemini when an API key
// is configured, with the curated fallback covering Gemini errors. It
// satisfies WordOracle itself.
type Service struct {
	gemini   *Gemini
	fallback *Fallback
}

// NewService builds the composite oracle. apiKey may be empty, in which
// case every call is served by the fallback lists.
func NewService(apiKey, model string) *Service {
	s := &Service{
		fallback: NewFallback(),
	}
	if apiKey != "" {
		s.gemini = NewGemini(apiKey, model)
	}
	return s
}

// AIEnabled reports whether the Gemini backend is configured
func (s *Service) AIEnabled() bool {
	return s.gemini != nil
}

func (s *Service) RandomTopic(ctx context.Context) (string, error) {
	if s.gemini != nil {
		topic, err := s.gemini.RandomTopic(ctx)
		if err == nil {
			return topic, nil
		}
		log.Printf("gemini topic generation failed, using fallback: %v", err)
	}
	return s.fallback.RandomTopic(ctx)
}

func (s *Service) GenerateWord(ctx context.Context, topic, lastWord string, usedWords []string) (string, error) {
	if s.gemini != nil {
		word, err := s.gemini.GenerateWord(ctx, topic, lastWord, usedWords)
		if err == nil {
			return word, nil
		}
		log.Printf("gemini word generation failed, using fallback: %v", err)
	}
	return s.fallback.GenerateWord(ctx, topic, lastWord, usedWords)
}

// ValidateWord prefers the Gemini verdict. A Gemini transport error accepts
// the word rather than punishing the player for an outage; the offline
// heuristics apply only when no API key is configured.
func (s *Service) ValidateWord(ctx context.Context, word, topic string) (ValidationResult, error) {
	if basic := basicWordCheck(word); !basic.Valid {
		return basic, nil
	}

	if s.gemini != nil {
		result, err := s.gemini.ValidateWord(ctx, word, topic)
		if err == nil {
			return result, nil
		}
		log.Printf("gemini validation failed, accepting word: %v", err)
		return ValidationResult{Valid: true}, nil
	}

	return s.fallback.ValidateWord(ctx, word, topic)
}

func basicWordCheck(word string) ValidationResult {
	word = strings.ToLower(strings.TrimSpace(word))
	if word == "" || len(word) < 2 || !isAlpha(word) {
		return ValidationResult{Valid: false, Reason: "Invalid word format"}
	}
	return ValidationResult{Valid: true}
}
