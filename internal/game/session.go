package game

import (
	"context"
	"log"
	"math/rand"
	"sync"
	"time"

	"shiritori/internal/models"
	"shiritori/internal/oracle"
	"shiritori/internal/utils"
)

// Saver persists a finished round's score record. A failing saver is logged
// and surfaced as a warning on the snapshot; it never blocks gameplay.
type Saver func(*models.GameScore) error

// timerHandle lets tests substitute manually-fired timers
type timerHandle interface {
	Stop() bool
}

type timerFactory func(d time.Duration, fn func()) timerHandle

func afterFunc(d time.Duration, fn func()) timerHandle {
	return time.AfterFunc(d, fn)
}

// Session owns all mutable state for one player's game: the active mode,
// the round state machine, timers, score and streaks. Every event method
// serializes on the session mutex and runs to completion, so transitions
// never interleave.
//
// Timer discipline: each phase transition increments phaseGen and stops the
// previous timer. A timer callback re-checks phaseGen under the lock before
// acting, so an expiry that lost the race against a transition is a no-op.
type Session struct {
	ID string

	mu         sync.Mutex
	mode       Mode
	phase      Phase
	startedAt  time.Time
	lastAccess time.Time

	score         int
	currentStreak int
	bestStreak    int

	number *numberRound
	word   *wordChain
	puzzle []string // shuffled chain shown during PhaseArrangement

	// round-end details
	correctAnswer string // number game: disclosed concatenation
	saveWarning   string
	saved         bool

	phaseGen uint64
	timer    timerHandle
	newTimer timerFactory

	rng   *rand.Rand
	saver Saver
}

// NewSession creates an idle session. saver may be nil (scores are then
// discarded), which the tests use.
func NewSession(id string, saver Saver) *Session {
	return &Session{
		ID:         id,
		mode:       ModeNone,
		phase:      PhaseIdle,
		lastAccess: time.Now(),
		newTimer:   afterFunc,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
		saver:      saver,
	}
}

// Snapshot is the phase-dependent view handed to the presentation layer
type Snapshot struct {
	Mode           Mode   `json:"mode"`
	Phase          Phase  `json:"phase"`
	Score          int    `json:"score"`
	CurrentStreak  int    `json:"currentStreak"`
	BestStreak     int    `json:"bestStreak"`
	ElapsedSeconds int    `json:"elapsedSeconds"`

	// Number game
	Round   int    `json:"round,omitempty"`
	Display string `json:"display,omitempty"` // only while PhaseDisplaying

	// Word game
	Topic  string   `json:"topic,omitempty"`
	Chain  []string `json:"chain,omitempty"`  // hidden during PhaseArrangement
	Puzzle []string `json:"puzzle,omitempty"` // only during PhaseArrangement

	// Round end
	CorrectAnswer string `json:"correctAnswer,omitempty"`
	Warning       string `json:"warning,omitempty"`
}

// SubmitOutcome reports how a submission was graded along with the
// resulting state
type SubmitOutcome struct {
	Accepted bool     `json:"accepted"`
	Reason   string   `json:"reason,omitempty"`
	State    Snapshot `json:"state"`
}

// Snapshot returns the current state for rendering
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	return s.snapshotLocked()
}

// LastAccess is used by the manager's idle sweep
func (s *Session) LastAccess() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastAccess
}

// StartNumber begins a number memory game, replacing any game in progress.
// Streak history survives; everything round-local is reset.
func (s *Session) StartNumber(cfg NumberConfig) (Snapshot, error) {
	if err := cfg.Validate(); err != nil {
		return Snapshot{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	s.resetRoundLocked()
	s.mode = ModeNumber
	s.number = newNumberRound(cfg)
	s.startedAt = time.Now()

	s.enterDisplayingLocked()
	return s.snapshotLocked(), nil
}

// SubmitNumber grades the player's reproduction of the sequence. Only
// accepted while the answer window is open.
func (s *Session) SubmitNumber(answer string) (SubmitOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if s.mode != ModeNumber || s.phase != PhaseAwaitingAnswer {
		return SubmitOutcome{}, ErrWrongPhase
	}

	if s.number.check(answer) {
		s.score++
		s.advanceStreakLocked()
		s.number.round++
		s.enterDisplayingLocked()
		return SubmitOutcome{Accepted: true, State: s.snapshotLocked()}, nil
	}

	s.breakStreakLocked()
	s.endNumberRoundLocked()
	return SubmitOutcome{
		Accepted: false,
		Reason:   "incorrect sequence",
		State:    s.snapshotLocked(),
	}, nil
}

// StartWord begins a word chain game. An empty topic asks the oracle for a
// random one. The first AI word is fetched before this returns; oracle
// failure at this point ends the round immediately.
func (s *Session) StartWord(ctx context.Context, topic string, o oracle.WordOracle) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if topic == "" {
		var err error
		topic, err = o.RandomTopic(ctx)
		if err != nil {
			return Snapshot{}, utils.ValidationError{Field: "topic", Message: "no topic available"}
		}
	}

	s.resetRoundLocked()
	s.mode = ModeWord
	s.word = newWordChain(topic)
	s.startedAt = time.Now()
	s.setPhaseLocked(PhaseAwaitingAIWord)

	word, err := o.GenerateWord(ctx, topic, "", nil)
	if err != nil {
		log.Printf("session %s: oracle failed on opening word: %v", s.ID, err)
		s.endWordRoundLocked()
		return s.snapshotLocked(), nil
	}

	s.word.append(word, false)

	// First AI word: no arrangement puzzle yet, straight to the player
	s.setPhaseLocked(PhaseAwaitingUserWord)
	s.armTimerLocked(ResponseWindow, s.responseExpired)

	return s.snapshotLocked(), nil
}

// SubmitWord handles one player word. Local rule violations and oracle
// rejections keep the phase (and the running response timer) unchanged; an
// accepted word scores, fetches the next AI word and opens the arrangement
// puzzle. Oracle unavailability ends the round.
func (s *Session) SubmitWord(ctx context.Context, candidate string, o oracle.WordOracle) (SubmitOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if s.mode != ModeWord || s.phase != PhaseAwaitingUserWord {
		return SubmitOutcome{}, ErrWrongPhase
	}

	candidate = normalizeWords([]string{candidate})[0]

	// Cheap checks first, before spending an oracle round-trip
	if err := s.word.localCheck(candidate); err != nil {
		return SubmitOutcome{Accepted: false, Reason: err.Error(), State: s.snapshotLocked()}, nil
	}

	verdict, err := o.ValidateWord(ctx, candidate, s.word.topic)
	if err != nil {
		log.Printf("session %s: oracle validation unavailable: %v", s.ID, err)
		s.endWordRoundLocked()
		return SubmitOutcome{Accepted: false, Reason: "word oracle unavailable", State: s.snapshotLocked()}, nil
	}
	if !verdict.Valid {
		reason := verdict.Reason
		if reason == "" {
			reason = "word rejected"
		}
		return SubmitOutcome{Accepted: false, Reason: reason, State: s.snapshotLocked()}, nil
	}

	// Accepted: score, stop the response timer, hand the turn to the AI
	s.word.append(candidate, true)
	s.score++
	s.advanceStreakLocked()
	s.setPhaseLocked(PhaseAwaitingAIWord)

	aiWord, err := o.GenerateWord(ctx, s.word.topic, candidate, s.word.usedList())
	if err != nil {
		log.Printf("session %s: oracle failed to produce a word: %v", s.ID, err)
		s.endWordRoundLocked()
		return SubmitOutcome{Accepted: true, State: s.snapshotLocked()}, nil
	}

	s.word.append(aiWord, false)
	s.puzzle = s.word.shufflePuzzle(s.rng)
	s.setPhaseLocked(PhaseArrangement)

	return SubmitOutcome{Accepted: true, State: s.snapshotLocked()}, nil
}

// SubmitArrangement checks the player's reconstruction of the chain order.
// A wrong order is retryable indefinitely with no score penalty; the
// response timer only starts once the order is correct.
func (s *Session) SubmitArrangement(order []string) (SubmitOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if s.mode != ModeWord || s.phase != PhaseArrangement {
		return SubmitOutcome{}, ErrWrongPhase
	}

	if len(order) != len(s.word.chain) {
		return SubmitOutcome{
			Accepted: false,
			Reason:   "assign a position to every word",
			State:    s.snapshotLocked(),
		}, nil
	}

	if !s.word.matchesOrder(order) {
		return SubmitOutcome{
			Accepted: false,
			Reason:   "that is not the original order",
			State:    s.snapshotLocked(),
		}, nil
	}

	s.puzzle = nil
	s.setPhaseLocked(PhaseAwaitingUserWord)
	s.armTimerLocked(ResponseWindow, s.responseExpired)

	return SubmitOutcome{Accepted: true, State: s.snapshotLocked()}, nil
}

// Quit ends the game in progress, persisting its score, and returns the
// terminal snapshot. Quitting with no active game is a no-op.
func (s *Session) Quit() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	switch {
	case s.mode == ModeNumber && s.phase != PhaseRoundEnd && s.phase != PhaseIdle:
		s.endNumberRoundLocked()
	case s.mode == ModeWord && s.phase != PhaseRoundEnd && s.phase != PhaseIdle:
		s.endWordRoundLocked()
	}

	return s.snapshotLocked()
}

// Menu is the full return-to-menu reset: everything goes back to initial
// values, including the best streak. Nothing is persisted.
func (s *Session) Menu() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	s.resetRoundLocked()
	s.bestStreak = 0
	s.mode = ModeNone
	s.setPhaseLocked(PhaseIdle)

	return s.snapshotLocked()
}

// --- internals; all require s.mu held ---

func (s *Session) touch() {
	s.lastAccess = time.Now()
}

// resetRoundLocked clears round-local state for a restart. The best streak
// deliberately survives; only Menu clears it.
func (s *Session) resetRoundLocked() {
	s.setPhaseLocked(PhaseIdle)
	s.score = 0
	s.currentStreak = 0
	s.number = nil
	s.word = nil
	s.puzzle = nil
	s.correctAnswer = ""
	s.saveWarning = ""
	s.saved = false
}

// setPhaseLocked is the single transition point: it invalidates timers
// armed for the previous phase before the new phase is entered.
func (s *Session) setPhaseLocked(p Phase) {
	s.phaseGen++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.phase = p
}

func (s *Session) armTimerLocked(d time.Duration, expired func()) {
	gen := s.phaseGen
	s.timer = s.newTimer(d, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.phaseGen != gen {
			// A transition beat this expiry; stale timer, ignore
			return
		}
		expired()
	})
}

func (s *Session) enterDisplayingLocked() {
	s.number.draw(s.rng)
	s.setPhaseLocked(PhaseDisplaying)
	s.armTimerLocked(time.Duration(s.number.cfg.MemoryTime)*time.Second, s.memoryExpired)
}

func (s *Session) memoryExpired() {
	s.setPhaseLocked(PhaseAwaitingAnswer)
	s.armTimerLocked(AnswerWindow, s.answerExpired)
}

// answerExpired grades a timeout exactly like a wrong answer
func (s *Session) answerExpired() {
	s.breakStreakLocked()
	s.endNumberRoundLocked()
}

func (s *Session) responseExpired() {
	s.breakStreakLocked()
	s.endWordRoundLocked()
}

func (s *Session) advanceStreakLocked() {
	s.currentStreak++
	if s.currentStreak > s.bestStreak {
		s.bestStreak = s.currentStreak
	}
}

func (s *Session) breakStreakLocked() {
	s.currentStreak = 0
}

func (s *Session) endNumberRoundLocked() {
	s.correctAnswer = s.number.concatenation()
	s.setPhaseLocked(PhaseRoundEnd)

	cfg := s.number.cfg
	s.persistLocked(models.NewNumberScore(
		s.score,
		s.elapsedSecondsLocked(),
		s.score, // level: rounds completed before the failing round
		cfg.MinRange,
		cfg.MaxRange,
		cfg.MemoryTime,
	))
}

func (s *Session) endWordRoundLocked() {
	s.puzzle = nil
	s.setPhaseLocked(PhaseRoundEnd)

	s.persistLocked(models.NewWordScore(
		s.word.userWords,
		s.elapsedSecondsLocked(),
		s.word.topic,
		s.word.userWords,
		len(s.word.chain),
	))
}

// persistLocked saves the score record at most once per round. Persistence
// is best-effort: a store failure becomes a snapshot warning, nothing more.
func (s *Session) persistLocked(record *models.GameScore) {
	if s.saved {
		return
	}
	s.saved = true

	if s.saver == nil {
		return
	}
	if err := s.saver(record); err != nil {
		log.Printf("session %s: failed to save score: %v", s.ID, err)
		s.saveWarning = "score could not be saved"
	}
}

func (s *Session) elapsedSecondsLocked() int {
	if s.startedAt.IsZero() {
		return 0
	}
	return int(time.Since(s.startedAt).Seconds())
}

func (s *Session) snapshotLocked() Snapshot {
	snap := Snapshot{
		Mode:           s.mode,
		Phase:          s.phase,
		Score:          s.score,
		CurrentStreak:  s.currentStreak,
		BestStreak:     s.bestStreak,
		ElapsedSeconds: s.elapsedSecondsLocked(),
		Warning:        s.saveWarning,
	}

	if s.mode == ModeNumber && s.number != nil {
		snap.Round = s.number.round
		if s.phase == PhaseDisplaying {
			snap.Display = s.number.concatenation()
		}
		if s.phase == PhaseRoundEnd {
			snap.CorrectAnswer = s.correctAnswer
		}
	}

	if s.mode == ModeWord && s.word != nil {
		snap.Topic = s.word.topic
		if s.phase == PhaseArrangement {
			// The true order is the puzzle answer; only the shuffle is shown
			snap.Puzzle = append([]string(nil), s.puzzle...)
		} else {
			snap.Chain = append([]string(nil), s.word.chain...)
		}
	}

	return snap
}
