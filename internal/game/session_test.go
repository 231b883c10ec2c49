package game

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"shiritori/internal/models"
	"shiritori/internal/oracle"
)

// manualTimer lets tests fire and inspect timers deterministically
type manualTimer struct {
	fired   bool
	stopped bool
	fn      func()
}

func (m *manualTimer) Stop() bool {
	m.stopped = true
	return !m.fired
}

type timerRig struct {
	timers []*manualTimer
}

func (r *timerRig) factory(d time.Duration, fn func()) timerHandle {
	mt := &manualTimer{fn: fn}
	r.timers = append(r.timers, mt)
	return mt
}

func (r *timerRig) fire(i int) {
	mt := r.timers[i]
	mt.fired = true
	mt.fn()
}

func (r *timerRig) fireLast() {
	r.fire(len(r.timers) - 1)
}

// fakeOracle plays scripted words and verdicts
type fakeOracle struct {
	topic   string
	words   []string
	next    int
	verdict oracle.ValidationResult
	valErr  error
}

func (f *fakeOracle) RandomTopic(ctx context.Context) (string, error) {
	return f.topic, nil
}

func (f *fakeOracle) GenerateWord(ctx context.Context, topic, lastWord string, usedWords []string) (string, error) {
	if f.next >= len(f.words) {
		return "", fmt.Errorf("%w: script exhausted", oracle.ErrNoWord)
	}
	w := f.words[f.next]
	f.next++
	return w, nil
}

func (f *fakeOracle) ValidateWord(ctx context.Context, word, topic string) (oracle.ValidationResult, error) {
	if f.valErr != nil {
		return oracle.ValidationResult{}, f.valErr
	}
	return f.verdict, nil
}

// recordingSaver captures persisted scores
type recordingSaver struct {
	scores []*models.GameScore
	err    error
}

func (rs *recordingSaver) save(score *models.GameScore) error {
	if rs.err != nil {
		return rs.err
	}
	rs.scores = append(rs.scores, score)
	return nil
}

func newTestSession(saver *recordingSaver) (*Session, *timerRig) {
	rig := &timerRig{}
	s := NewSession("test-session", saver.save)
	s.newTimer = rig.factory
	s.rng = rand.New(rand.NewSource(1))
	return s, rig
}

var numberCfg = NumberConfig{MinRange: 1, MaxRange: 9, MemoryTime: 3}

func TestNumberGameFullRound(t *testing.T) {
	saver := &recordingSaver{}
	s, rig := newTestSession(saver)

	snap, err := s.StartNumber(numberCfg)
	if err != nil {
		t.Fatalf("StartNumber: %v", err)
	}
	if snap.Phase != PhaseDisplaying || snap.Mode != ModeNumber {
		t.Fatalf("after start: phase=%s mode=%s", snap.Phase, snap.Mode)
	}
	if snap.Display == "" {
		t.Fatal("displaying phase must expose the sequence")
	}
	if snap.Round != 1 {
		t.Fatalf("round = %d, want 1", snap.Round)
	}

	// Memory timer expires: input opens, sequence goes hidden
	rig.fireLast()
	snap = s.Snapshot()
	if snap.Phase != PhaseAwaitingAnswer {
		t.Fatalf("after memory expiry: phase=%s", snap.Phase)
	}
	if snap.Display != "" {
		t.Fatal("sequence must not be visible while awaiting the answer")
	}

	// Correct answer advances to the next round with a longer sequence
	outcome, err := s.SubmitNumber(s.number.concatenation())
	if err != nil {
		t.Fatalf("SubmitNumber: %v", err)
	}
	if !outcome.Accepted {
		t.Fatalf("correct answer rejected: %s", outcome.Reason)
	}
	if outcome.State.Score != 1 || outcome.State.Round != 2 {
		t.Fatalf("score=%d round=%d, want 1 and 2", outcome.State.Score, outcome.State.Round)
	}
	if len(s.number.sequence) != 2 {
		t.Fatalf("sequence length = %d, want 2", len(s.number.sequence))
	}

	// Wrong answer ends the round and discloses the correct concatenation
	rig.fireLast()
	outcome, err = s.SubmitNumber("definitely wrong")
	if err != nil {
		t.Fatalf("SubmitNumber: %v", err)
	}
	if outcome.Accepted {
		t.Fatal("wrong answer was accepted")
	}
	if outcome.State.Phase != PhaseRoundEnd {
		t.Fatalf("after wrong answer: phase=%s", outcome.State.Phase)
	}
	if outcome.State.CorrectAnswer == "" {
		t.Fatal("round end must disclose the correct answer")
	}

	if len(saver.scores) != 1 {
		t.Fatalf("saved %d scores, want 1", len(saver.scores))
	}
	score := saver.scores[0]
	if score.GameType != models.GameTypeNumber || score.Score != 1 {
		t.Fatalf("saved score = %+v", score)
	}
	if score.MinRange == nil || *score.MinRange != 1 || score.MemoryTime == nil || *score.MemoryTime != 3 {
		t.Fatalf("saved config fields = %+v", score)
	}
	if score.Topic != nil || score.WordsCount != nil {
		t.Fatal("number score must not carry word-game fields")
	}
}

func TestNumberAnswerTimeoutScoredLikeWrongAnswer(t *testing.T) {
	saver := &recordingSaver{}
	s, rig := newTestSession(saver)

	if _, err := s.StartNumber(numberCfg); err != nil {
		t.Fatalf("StartNumber: %v", err)
	}
	rig.fireLast() // memory window
	rig.fireLast() // answer window

	snap := s.Snapshot()
	if snap.Phase != PhaseRoundEnd {
		t.Fatalf("after timeout: phase=%s", snap.Phase)
	}
	if len(saver.scores) != 1 {
		t.Fatalf("saved %d scores, want 1", len(saver.scores))
	}
}

func TestStaleTimerExpiryIsIgnored(t *testing.T) {
	saver := &recordingSaver{}
	s, rig := newTestSession(saver)

	if _, err := s.StartNumber(numberCfg); err != nil {
		t.Fatalf("StartNumber: %v", err)
	}

	memoryTimer := rig.timers[0]
	rig.fireLast() // legitimate memory expiry

	// The same callback firing again must not double-transition
	memoryTimer.fn()
	if got := s.Snapshot().Phase; got != PhaseAwaitingAnswer {
		t.Fatalf("stale expiry changed phase to %s", got)
	}

	// Answer submitted, then the now-stale answer timer fires
	answerTimer := rig.timers[len(rig.timers)-1]
	if _, err := s.SubmitNumber(s.number.concatenation()); err != nil {
		t.Fatalf("SubmitNumber: %v", err)
	}
	answerTimer.fn()

	snap := s.Snapshot()
	if snap.Phase != PhaseDisplaying {
		t.Fatalf("stale answer expiry changed phase to %s", snap.Phase)
	}
	if len(saver.scores) != 0 {
		t.Fatal("stale expiry must not persist a score")
	}
}

func TestSubmitNumberOutsideAnswerPhase(t *testing.T) {
	s, _ := newTestSession(&recordingSaver{})

	if _, err := s.SubmitNumber("1"); !errors.Is(err, ErrWrongPhase) {
		t.Fatalf("idle submit: err = %v, want ErrWrongPhase", err)
	}

	if _, err := s.StartNumber(numberCfg); err != nil {
		t.Fatalf("StartNumber: %v", err)
	}
	// Still displaying; input not open yet
	if _, err := s.SubmitNumber("1"); !errors.Is(err, ErrWrongPhase) {
		t.Fatalf("displaying submit: err = %v, want ErrWrongPhase", err)
	}
}

func TestWordGameFullExchange(t *testing.T) {
	saver := &recordingSaver{}
	s, rig := newTestSession(saver)
	o := &fakeOracle{
		topic:   "animals",
		words:   []string{"elephant", "rabbit"},
		verdict: oracle.ValidationResult{Valid: true},
	}

	snap, err := s.StartWord(context.Background(), "", o)
	if err != nil {
		t.Fatalf("StartWord: %v", err)
	}
	if snap.Topic != "animals" {
		t.Fatalf("topic = %q, want animals", snap.Topic)
	}
	if snap.Phase != PhaseAwaitingUserWord {
		t.Fatalf("after start: phase=%s", snap.Phase)
	}
	if len(snap.Chain) != 1 || snap.Chain[0] != "elephant" {
		t.Fatalf("chain = %v, want [elephant]", snap.Chain)
	}

	// Accepted word: scored, AI answers, arrangement puzzle opens
	outcome, err := s.SubmitWord(context.Background(), "Tiger", o)
	if err != nil {
		t.Fatalf("SubmitWord: %v", err)
	}
	if !outcome.Accepted {
		t.Fatalf("valid word rejected: %s", outcome.Reason)
	}
	if outcome.State.Phase != PhaseArrangement {
		t.Fatalf("after accepted word: phase=%s", outcome.State.Phase)
	}
	if outcome.State.Score != 1 {
		t.Fatalf("score = %d, want 1", outcome.State.Score)
	}
	if len(outcome.State.Puzzle) != 3 {
		t.Fatalf("puzzle = %v, want 3 words", outcome.State.Puzzle)
	}
	if outcome.State.Chain != nil {
		t.Fatal("true chain order must be hidden during the puzzle")
	}

	// Wrong order is retryable with no penalty
	outcome, err = s.SubmitArrangement([]string{"tiger", "elephant", "rabbit"})
	if err != nil {
		t.Fatalf("SubmitArrangement: %v", err)
	}
	if outcome.Accepted || outcome.State.Phase != PhaseArrangement {
		t.Fatalf("wrong order: accepted=%v phase=%s", outcome.Accepted, outcome.State.Phase)
	}

	// Incomplete arrangements are rejected too
	outcome, _ = s.SubmitArrangement([]string{"tiger"})
	if outcome.Accepted {
		t.Fatal("short arrangement was accepted")
	}

	// Correct order resumes the chain and restarts the response timer
	timersBefore := len(rig.timers)
	outcome, err = s.SubmitArrangement([]string{"elephant", "tiger", "rabbit"})
	if err != nil {
		t.Fatalf("SubmitArrangement: %v", err)
	}
	if !outcome.Accepted || outcome.State.Phase != PhaseAwaitingUserWord {
		t.Fatalf("correct order: accepted=%v phase=%s", outcome.Accepted, outcome.State.Phase)
	}
	if len(rig.timers) != timersBefore+1 {
		t.Fatal("solving the puzzle must arm a fresh response timer")
	}
}

func TestWordRejectionsKeepPhaseAndTimer(t *testing.T) {
	s, rig := newTestSession(&recordingSaver{})
	o := &fakeOracle{
		words:   []string{"apple"},
		verdict: oracle.ValidationResult{Valid: false, Reason: "not a real word"},
	}

	if _, err := s.StartWord(context.Background(), "fruits", o); err != nil {
		t.Fatalf("StartWord: %v", err)
	}
	timersBefore := len(rig.timers)

	// Shiritori rule violation: wrong first letter
	outcome, err := s.SubmitWord(context.Background(), "banana", o)
	if err != nil {
		t.Fatalf("SubmitWord: %v", err)
	}
	if outcome.Accepted || outcome.Reason == "" {
		t.Fatalf("rule violation: accepted=%v reason=%q", outcome.Accepted, outcome.Reason)
	}
	if outcome.State.Phase != PhaseAwaitingUserWord {
		t.Fatalf("rejection changed phase to %s", outcome.State.Phase)
	}

	// Oracle verdict rejection behaves the same
	outcome, err = s.SubmitWord(context.Background(), "elephant", o)
	if err != nil {
		t.Fatalf("SubmitWord: %v", err)
	}
	if outcome.Accepted || outcome.Reason != "not a real word" {
		t.Fatalf("verdict rejection: accepted=%v reason=%q", outcome.Accepted, outcome.Reason)
	}

	if len(rig.timers) != timersBefore {
		t.Fatal("rejections must not re-arm the response timer")
	}
	if outcome.State.Score != 0 {
		t.Fatalf("score = %d, want 0", outcome.State.Score)
	}
}

func TestWordOracleExhaustionEndsRound(t *testing.T) {
	saver := &recordingSaver{}
	s, _ := newTestSession(saver)
	o := &fakeOracle{
		words:   []string{"apple"}, // nothing left for the AI's reply
		verdict: oracle.ValidationResult{Valid: true},
	}

	if _, err := s.StartWord(context.Background(), "fruits", o); err != nil {
		t.Fatalf("StartWord: %v", err)
	}

	outcome, err := s.SubmitWord(context.Background(), "elephant", o)
	if err != nil {
		t.Fatalf("SubmitWord: %v", err)
	}
	if !outcome.Accepted {
		t.Fatal("the user's word was valid and must count")
	}
	if outcome.State.Phase != PhaseRoundEnd {
		t.Fatalf("after oracle exhaustion: phase=%s", outcome.State.Phase)
	}

	if len(saver.scores) != 1 {
		t.Fatalf("saved %d scores, want 1", len(saver.scores))
	}
	score := saver.scores[0]
	if score.GameType != models.GameTypeWord || score.Score != 1 {
		t.Fatalf("saved score = %+v", score)
	}
	if score.Topic == nil || *score.Topic != "fruits" {
		t.Fatalf("saved topic = %v", score.Topic)
	}
	if score.ChainLength == nil || *score.ChainLength != 2 {
		t.Fatalf("saved chain length = %v", score.ChainLength)
	}
	if score.Level != nil || score.MinRange != nil {
		t.Fatal("word score must not carry number-game fields")
	}
}

func TestWordResponseTimeout(t *testing.T) {
	saver := &recordingSaver{}
	s, rig := newTestSession(saver)
	o := &fakeOracle{words: []string{"apple"}, verdict: oracle.ValidationResult{Valid: true}}

	if _, err := s.StartWord(context.Background(), "fruits", o); err != nil {
		t.Fatalf("StartWord: %v", err)
	}
	rig.fireLast()

	snap := s.Snapshot()
	if snap.Phase != PhaseRoundEnd {
		t.Fatalf("after response timeout: phase=%s", snap.Phase)
	}
	if len(saver.scores) != 1 || saver.scores[0].Score != 0 {
		t.Fatalf("saved scores = %+v", saver.scores)
	}
}

func TestScorePersistedAtMostOncePerRound(t *testing.T) {
	saver := &recordingSaver{}
	s, rig := newTestSession(saver)

	if _, err := s.StartNumber(numberCfg); err != nil {
		t.Fatalf("StartNumber: %v", err)
	}
	rig.fireLast()
	rig.fireLast() // timeout ends the round

	s.Quit() // quitting an already-ended round must not save again

	if len(saver.scores) != 1 {
		t.Fatalf("saved %d scores, want 1", len(saver.scores))
	}
}

func TestQuitMidRoundPersists(t *testing.T) {
	saver := &recordingSaver{}
	s, rig := newTestSession(saver)

	if _, err := s.StartNumber(numberCfg); err != nil {
		t.Fatalf("StartNumber: %v", err)
	}
	rig.fireLast()
	if _, err := s.SubmitNumber(s.number.concatenation()); err != nil {
		t.Fatalf("SubmitNumber: %v", err)
	}

	snap := s.Quit()
	if snap.Phase != PhaseRoundEnd {
		t.Fatalf("after quit: phase=%s", snap.Phase)
	}
	if len(saver.scores) != 1 || saver.scores[0].Score != 1 {
		t.Fatalf("saved scores = %+v", saver.scores)
	}
}

func TestStreaksAcrossRestartAndMenu(t *testing.T) {
	saver := &recordingSaver{}
	s, rig := newTestSession(saver)

	if _, err := s.StartNumber(numberCfg); err != nil {
		t.Fatalf("StartNumber: %v", err)
	}
	for i := 0; i < 3; i++ {
		rig.fireLast()
		if _, err := s.SubmitNumber(s.number.concatenation()); err != nil {
			t.Fatalf("SubmitNumber round %d: %v", i+1, err)
		}
	}

	snap := s.Snapshot()
	if snap.CurrentStreak != 3 || snap.BestStreak != 3 {
		t.Fatalf("streaks = %d/%d, want 3/3", snap.CurrentStreak, snap.BestStreak)
	}

	rig.fireLast()
	if _, err := s.SubmitNumber("wrong"); err != nil {
		t.Fatalf("SubmitNumber: %v", err)
	}
	snap = s.Snapshot()
	if snap.CurrentStreak != 0 || snap.BestStreak != 3 {
		t.Fatalf("after miss: streaks = %d/%d, want 0/3", snap.CurrentStreak, snap.BestStreak)
	}

	// Restart keeps the best streak, resets everything round-local
	snap, err := s.StartNumber(numberCfg)
	if err != nil {
		t.Fatalf("restart: %v", err)
	}
	if snap.BestStreak != 3 || snap.Score != 0 || snap.CurrentStreak != 0 {
		t.Fatalf("after restart: %+v", snap)
	}

	// Menu clears everything, best streak included
	snap = s.Menu()
	if snap.BestStreak != 0 || snap.Mode != ModeNone || snap.Phase != PhaseIdle {
		t.Fatalf("after menu: %+v", snap)
	}
}

func TestSaverFailureBecomesWarning(t *testing.T) {
	saver := &recordingSaver{err: errors.New("store down")}
	s, rig := newTestSession(saver)

	if _, err := s.StartNumber(numberCfg); err != nil {
		t.Fatalf("StartNumber: %v", err)
	}
	rig.fireLast()
	rig.fireLast()

	snap := s.Snapshot()
	if snap.Phase != PhaseRoundEnd {
		t.Fatalf("phase = %s, want round_end", snap.Phase)
	}
	if snap.Warning == "" {
		t.Fatal("failed save must surface a warning")
	}
}

func TestWordValidationTransportErrorEndsRound(t *testing.T) {
	saver := &recordingSaver{}
	s, _ := newTestSession(saver)
	o := &fakeOracle{
		words:  []string{"apple", "nectarine"},
		valErr: errors.New("oracle unreachable"),
	}

	if _, err := s.StartWord(context.Background(), "fruits", o); err != nil {
		t.Fatalf("StartWord: %v", err)
	}

	outcome, err := s.SubmitWord(context.Background(), "elderberry", o)
	if err != nil {
		t.Fatalf("SubmitWord: %v", err)
	}
	if outcome.Accepted {
		t.Fatal("word must not count when the verdict is unavailable")
	}
	if outcome.State.Phase != PhaseRoundEnd {
		t.Fatalf("phase = %s, want round_end", outcome.State.Phase)
	}
	if len(saver.scores) != 1 {
		t.Fatalf("saved %d scores, want 1", len(saver.scores))
	}
}
