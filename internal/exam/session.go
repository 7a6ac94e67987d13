package exam

import (
	"fmt"
	"time"

	"github.com/blueskyzii/Latihan-PPKN/internal/model"
	"github.com/blueskyzii/Latihan-PPKN/internal/scoring"
)

// LowTimeThreshold is the remaining time below which ticks carry the
// low-time flag, so the presentation layer can show urgency.
const LowTimeThreshold = time.Minute

// Session owns all mutable state of one exam attempt: the question pointer,
// recorded answers, the absolute deadline, the violation counter and the
// active flag. All mutation goes through the operations below; the caller
// persists Snapshot() after every mutating call and is responsible for
// clearing persisted state on terminal transitions.
//
// Session is not safe for concurrent use; the owning controller serializes
// access.
type Session struct {
	quiz      model.QuizMeta
	questions model.QuestionSet

	current    int
	answers    map[int]string
	violations int
	deadline   time.Time
	active     bool

	expireFired bool
}

// Start creates a fresh session. The deadline is fixed here, at creation
// time plus the quiz duration (defaultDuration when the quiz declares none),
// and is never recomputed afterwards.
func Start(quiz model.QuizMeta, questions model.QuestionSet, now time.Time, defaultDuration time.Duration) (*Session, error) {
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}

	duration := defaultDuration
	if quiz.DurationMinutes > 0 {
		duration = time.Duration(quiz.DurationMinutes) * time.Minute
	}

	return &Session{
		quiz:      quiz,
		questions: questions,
		current:   0,
		answers:   make(map[int]string),
		deadline:  now.Add(duration),
		active:    true,
	}, nil
}

// Resume restores a session from a persisted snapshot. The deadline is taken
// verbatim: wall-clock time that passed while the client was away still
// counts against the exam. Fields that no longer satisfy the session
// invariants (a pointer outside the set, answers that match no option after
// a content change) are sanitized rather than rejected.
func Resume(snap *model.ExamSnapshot, quiz model.QuizMeta, questions model.QuestionSet) (*Session, error) {
	if snap.QuizID != quiz.ID {
		return nil, ErrQuizMismatch
	}
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}

	s := &Session{
		quiz:       quiz,
		questions:  questions,
		current:    snap.CurrentQuestionIndex,
		answers:    make(map[int]string, len(snap.UserAnswers)),
		violations: snap.ViolationCount,
		deadline:   time.UnixMilli(snap.ExamEndTime),
		active:     true,
	}

	if s.current < 0 || s.current >= len(questions) {
		s.current = 0
	}
	if s.violations < 0 {
		s.violations = 0
	}
	for idx, option := range snap.UserAnswers {
		if idx < 0 || idx >= len(questions) {
			continue
		}
		if hasOption(questions[idx].Options, option) {
			s.answers[idx] = option
		}
	}

	return s, nil
}

// ─── Queries ────────────────────────────────────────────────────────

// Active reports whether the attempt is still in progress.
func (s *Session) Active() bool { return s.active }

// Quiz returns the metadata of the quiz being attempted.
func (s *Session) Quiz() model.QuizMeta { return s.quiz }

// Total returns the number of questions in the attempt.
func (s *Session) Total() int { return len(s.questions) }

// CurrentIndex returns the 0-based question pointer.
func (s *Session) CurrentIndex() int { return s.current }

// Deadline returns the absolute end time of the attempt.
func (s *Session) Deadline() time.Time { return s.deadline }

// ViolationCount returns the number of recorded focus-loss violations.
func (s *Session) ViolationCount() int { return s.violations }

// AnsweredCount returns how many questions have a recorded answer.
func (s *Session) AnsweredCount() int { return len(s.answers) }

// CurrentQuestion returns the client-facing view of the question under the
// pointer.
func (s *Session) CurrentQuestion() model.QuestionView {
	return s.questions.View(s.current)
}

// Palette returns the answered/current overview of every question.
func (s *Session) Palette() []model.PaletteItem {
	palette := make([]model.PaletteItem, len(s.questions))
	for i := range s.questions {
		_, answered := s.answers[i]
		palette[i] = model.PaletteItem{
			Number:   i + 1,
			Answered: answered,
			Current:  i == s.current,
		}
	}
	return palette
}

// Snapshot returns the persistable form of the session. The answers map is
// copied so later mutations do not leak into the snapshot.
func (s *Session) Snapshot() *model.ExamSnapshot {
	answers := make(map[int]string, len(s.answers))
	for k, v := range s.answers {
		answers[k] = v
	}
	return &model.ExamSnapshot{
		QuizID:               s.quiz.ID,
		CurrentQuestionIndex: s.current,
		UserAnswers:          answers,
		ViolationCount:       s.violations,
		ExamEndTime:          s.deadline.UnixMilli(),
	}
}

// ─── Commands ───────────────────────────────────────────────────────

// SelectAnswer records the chosen option for a question. The option must be
// one of the question's option strings; correctness is not checked here,
// scoring is deferred to Finish.
func (s *Session) SelectAnswer(index int, option string) error {
	if !s.active {
		return ErrNotActive
	}
	if index < 0 || index >= len(s.questions) {
		return ErrIndexOutOfRange
	}
	if !hasOption(s.questions[index].Options, option) {
		return ErrUnknownOption
	}
	s.answers[index] = option
	return nil
}

// Navigate moves the question pointer. Navigation is free: any direction,
// answered or not.
func (s *Session) Navigate(to int) error {
	if !s.active {
		return ErrNotActive
	}
	if to < 0 || to >= len(s.questions) {
		return ErrIndexOutOfRange
	}
	s.current = to
	return nil
}

// TickResult reports the outcome of one clock tick.
type TickResult struct {
	Remaining time.Duration
	Display   string // HH:MM:SS
	LowTime   bool
	// Expired is set exactly once, on the tick that crosses the deadline.
	// The caller must respond with a forced Finish.
	Expired bool
}

// Tick computes the remaining time at now. Driving time through an explicit
// tick keeps deadline transitions deterministic and testable without
// wall-clock waits.
func (s *Session) Tick(now time.Time) TickResult {
	remaining := s.deadline.Sub(now)
	if remaining < 0 {
		remaining = 0
	}

	res := TickResult{
		Remaining: remaining,
		Display:   FormatRemaining(remaining),
		LowTime:   remaining < LowTimeThreshold,
	}

	if remaining <= 0 && s.active && !s.expireFired {
		s.expireFired = true
		res.Expired = true
	}
	return res
}

// ViolationResult reports the outcome of one recorded violation.
type ViolationResult struct {
	Count int
	Max   int
	// ThresholdReached is set when the count reaches the maximum. The
	// caller must respond with a hard reset, after which the session is no
	// longer active and cannot fire again.
	ThresholdReached bool
}

// RecordViolation counts one discrete focus-loss signal. Rapid repeated
// signals each count; no debouncing is applied.
func (s *Session) RecordViolation(max int) (ViolationResult, error) {
	if !s.active {
		return ViolationResult{}, ErrNotActive
	}
	s.violations++
	return ViolationResult{
		Count:            s.violations,
		Max:              max,
		ThresholdReached: s.violations >= max,
	}, nil
}

// Finish ends the attempt and returns the scored result. A voluntary finish
// (forced=false) is rejected with IncompleteError while questions remain
// unanswered and the deadline has not passed; a forced finish always
// proceeds. On success the session becomes inactive.
func (s *Session) Finish(forced bool, now time.Time) (*model.Result, error) {
	if !s.active {
		return nil, ErrNotActive
	}

	if unanswered := len(s.questions) - len(s.answers); !forced && unanswered > 0 && now.Before(s.deadline) {
		return nil, &IncompleteError{Unanswered: unanswered}
	}

	s.active = false
	result := scoring.Score(s.answers, s.questions)
	return &result, nil
}

// HardReset deactivates the session after the violation limit is reached.
// The caller discards the session and clears persisted state; no result is
// produced and progress is not recoverable.
func (s *Session) HardReset() {
	s.active = false
}

// FormatRemaining renders a duration as the HH:MM:SS timer display.
func FormatRemaining(d time.Duration) string {
	totalSeconds := int(d.Seconds())
	if totalSeconds < 0 {
		totalSeconds = 0
	}
	return fmt.Sprintf("%02d:%02d:%02d",
		totalSeconds/3600, (totalSeconds%3600)/60, totalSeconds%60)
}

func hasOption(options []string, option string) bool {
	for _, opt := range options {
		if opt == option {
			return true
		}
	}
	return false
}
