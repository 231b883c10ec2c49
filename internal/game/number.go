package game

import (
	"math/rand"
	"strconv"
	"strings"

	"shiritori/internal/utils"
)

// NumberConfig are the player-chosen settings for a number memory game
type NumberConfig struct {
	MinRange   int `json:"minRange"`
	MaxRange   int `json:"maxRange"`
	MemoryTime int `json:"memoryTime"` // seconds the sequence stays visible
}

// Validate rejects configurations before any game state is created
func (c NumberConfig) Validate() error {
	if c.MinRange >= c.MaxRange {
		return utils.ValidationError{Field: "minRange", Message: "minRange must be strictly less than maxRange"}
	}
	if c.MemoryTime < 1 {
		return utils.ValidationError{Field: "memoryTime", Message: "memoryTime must be at least 1 second"}
	}
	return nil
}

// numberRound holds the growing sequence for one number game. One integer
// is appended per round; the concatenation of the whole sequence is the
// ground truth the player must reproduce verbatim.
type numberRound struct {
	cfg      NumberConfig
	sequence []int
	round    int // 1-based
}

func newNumberRound(cfg NumberConfig) *numberRound {
	return &numberRound{cfg: cfg, round: 1}
}

// draw appends one integer drawn uniformly from [MinRange, MaxRange]
func (n *numberRound) draw(rng *rand.Rand) int {
	v := n.cfg.MinRange + rng.Intn(n.cfg.MaxRange-n.cfg.MinRange+1)
	n.sequence = append(n.sequence, v)
	return v
}

// concatenation renders the full sequence as the string to memorize
func (n *numberRound) concatenation() string {
	var b strings.Builder
	for _, v := range n.sequence {
		b.WriteString(strconv.Itoa(v))
	}
	return b.String()
}

// check grades an answer: exact string equality against the concatenation,
// with only surrounding whitespace forgiven
func (n *numberRound) check(answer string) bool {
	return strings.TrimSpace(answer) == n.concatenation()
}
