package oracle

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"unicode"
)

// topics available for random selection when no AI backend is configured
var topics = []string{
	"fruits", "vegetables", "animals", "colors", "countries", "cities",
	"programming languages", "movies", "books", "sports", "cars", "flowers",
	"musical instruments", "planets", "professions", "food", "drinks",
	"games", "electronics", "clothes", "emotions", "weather", "seasons",
}

// curated word lists per topic, used when the AI backend is unavailable
var topicWords = map[string][]string{
	"fruits":                {"apple", "banana", "cherry", "elderberry", "fig", "grape", "honeydew", "ice apple"},
	"animals":               {"ant", "bear", "cat", "dog", "elephant", "fox", "giraffe", "horse", "iguana", "jackal"},
	"colors":                {"red", "orange", "yellow", "blue", "green", "purple", "pink", "khaki", "indigo", "olive"},
	"countries":             {"australia", "brazil", "canada", "denmark", "egypt", "france", "germany", "hungary", "india", "japan"},
	"programming languages": {"python", "java", "javascript", "kotlin", "lua", "ruby", "swift", "typescript", "erlang", "go"},
	"vegetables":            {"asparagus", "broccoli", "carrot", "daikon", "eggplant", "fennel", "garlic", "herbs", "iceberg lettuce", "jalapeno"},
	"movies":                {"avatar", "batman", "casablanca", "dune", "elf", "frozen", "gladiator", "hulk", "inception", "jaws"},
	"sports":                {"archery", "baseball", "cricket", "diving", "equestrian", "football", "golf", "hockey", "ice skating", "judo"},
	"cars":                  {"audi", "bmw", "chevrolet", "dodge", "ferrari", "ford", "honda", "infiniti", "jaguar", "kia"},
	"default":               {"apple", "elephant", "tiger", "rainbow", "ocean", "mountain", "star", "tree", "eagle", "earth"},
}

// last-resort words per starting letter
var letterWords = map[byte]string{
	'a': "apple", 'b': "ball", 'c': "cat", 'd': "dog", 'e': "egg",
	'f': "fish", 'g': "game", 'h': "house", 'i': "ice", 'j': "jump",
	'k': "kite", 'l': "lion", 'm': "moon", 'n': "nest", 'o': "ocean",
	'p': "pen", 'q': "queen", 'r': "red", 's': "sun", 't': "tree",
	'u': "umbrella", 'v': "van", 'w': "water", 'x': "box", 'y': "yes", 'z': "zoo",
}

// Fallback serves topics and words from curated lists without any network
// dependency. It backs the Gemini oracle when the API is unreachable and is
// the sole oracle when no API key is configured. One instance is shared by
// all requests, so it draws from the global rand source, which is safe for
// concurrent use.
type Fallback struct{}

// NewFallback creates a fallback oracle
func NewFallback() *Fallback {
	return &Fallback{}
}

func (f *Fallback) RandomTopic(ctx context.Context) (string, error) {
	return topics[rand.Intn(len(topics))], nil
}

func (f *Fallback) GenerateWord(ctx context.Context, topic, lastWord string, usedWords []string) (string, error) {
	used := make(map[string]bool, len(usedWords))
	for _, w := range usedWords {
		used[strings.ToLower(w)] = true
	}

	lastWord = strings.ToLower(strings.TrimSpace(lastWord))
	var startChar byte
	if lastWord != "" {
		startChar = lastWord[len(lastWord)-1]
	}

	words, ok := topicWords[strings.ToLower(topic)]
	if !ok {
		words = topicWords["default"]
	}

	var candidates []string
	for _, w := range words {
		if used[w] {
			continue
		}
		if startChar != 0 && w[0] != startChar {
			continue
		}
		candidates = append(candidates, w)
	}

	if len(candidates) > 0 {
		return candidates[rand.Intn(len(candidates))], nil
	}

	// Topic list exhausted; fall back to the per-letter word
	if startChar != 0 {
		if w, ok := letterWords[startChar]; ok && !used[w] {
			return w, nil
		}
		return "", fmt.Errorf("%w: no unused word starting with %q", ErrNoWord, string(startChar))
	}

	return "", ErrNoWord
}

// ValidateWord applies cheap heuristics: it rejects obvious gibberish and
// accepts everything else. Offline play is deliberately lenient.
func (f *Fallback) ValidateWord(ctx context.Context, word, topic string) (ValidationResult, error) {
	word = strings.ToLower(strings.TrimSpace(word))

	if len(word) < 2 || !isAlpha(word) {
		return ValidationResult{Valid: false, Reason: "Invalid word format"}, nil
	}

	distinct := make(map[rune]bool)
	for _, r := range word {
		distinct[r] = true
	}
	if len(distinct)*3 < len(word) {
		return ValidationResult{Valid: false, Reason: fmt.Sprintf("'%s' is not a recognized English word", word)}, nil
	}

	// y counts as a vowel here so words like "rhythm" survive
	consonantRun := 0
	for _, r := range word {
		if strings.ContainsRune("aeiouy", r) {
			consonantRun = 0
			continue
		}
		consonantRun++
		if consonantRun > 4 {
			return ValidationResult{Valid: false, Reason: fmt.Sprintf("'%s' is not a recognized English word", word)}, nil
		}
	}

	return ValidationResult{Valid: true}, nil
}

func isAlpha(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return len(s) > 0
}
