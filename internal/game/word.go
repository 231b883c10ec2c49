package game

import (
	"math/rand"
	"strings"

	"shiritori/internal/utils"
)

// wordChain holds one word game's chain. Words are stored lowercase in
// insertion order; that order is itself the answer to the arrangement
// puzzle. usedWords membership is implied by the chain (case-insensitive).
type wordChain struct {
	topic     string
	chain     []string
	used      map[string]struct{}
	userWords int
}

func newWordChain(topic string) *wordChain {
	return &wordChain{
		topic: topic,
		used:  make(map[string]struct{}),
	}
}

func (w *wordChain) lastWord() string {
	if len(w.chain) == 0 {
		return ""
	}
	return w.chain[len(w.chain)-1]
}

// usedList returns the chain as the oracle's used-words input
func (w *wordChain) usedList() []string {
	out := make([]string, len(w.chain))
	copy(out, w.chain)
	return out
}

// localCheck applies the validations that need no oracle round-trip:
// shiritori first-letter rule and duplicate rejection, both
// case-insensitive. The candidate must already be trimmed.
func (w *wordChain) localCheck(candidate string) error {
	if candidate == "" {
		return utils.ValidationError{Field: "word", Message: "word must not be empty"}
	}

	lower := strings.ToLower(candidate)
	if _, dup := w.used[lower]; dup {
		return RuleViolation{Reason: "'" + lower + "' has already been used"}
	}

	if prev := w.lastWord(); prev != "" {
		want := prev[len(prev)-1]
		if lower[0] != want {
			return RuleViolation{
				Reason: "word must start with '" + string(want) + "' (last letter of '" + prev + "')",
			}
		}
	}

	return nil
}

// append adds a word to the chain. Callers must have validated it.
func (w *wordChain) append(word string, byUser bool) {
	lower := strings.ToLower(strings.TrimSpace(word))
	w.chain = append(w.chain, lower)
	w.used[lower] = struct{}{}
	if byUser {
		w.userWords++
	}
}

// shufflePuzzle returns a uniformly random permutation of the chain that is
// guaranteed to differ from the true order whenever the chain has more than
// one word.
func (w *wordChain) shufflePuzzle(rng *rand.Rand) []string {
	puzzle := make([]string, len(w.chain))
	copy(puzzle, w.chain)
	if len(puzzle) < 2 {
		return puzzle
	}

	for {
		rng.Shuffle(len(puzzle), func(i, j int) {
			puzzle[i], puzzle[j] = puzzle[j], puzzle[i]
		})
		if !equalOrder(puzzle, w.chain) {
			return puzzle
		}
	}
}

// matchesOrder reports whether the submitted arrangement equals the true
// chain order element-wise
func (w *wordChain) matchesOrder(order []string) bool {
	return equalOrder(normalizeWords(order), w.chain)
}

func equalOrder(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func normalizeWords(words []string) []string {
	out := make([]string, len(words))
	for i, w := range words {
		out[i] = strings.ToLower(strings.TrimSpace(w))
	}
	return out
}
