package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/blueskyzii/Latihan-PPKN/internal/catalog"
	"github.com/blueskyzii/Latihan-PPKN/internal/config"
	"github.com/blueskyzii/Latihan-PPKN/internal/exam"
	"github.com/blueskyzii/Latihan-PPKN/internal/model"
	"github.com/blueskyzii/Latihan-PPKN/internal/storage"
)

// ExamSessionService is the controller that owns every in-memory exam
// session. All mutation is routed through it: each command hits the state
// machine, then rewrites the persisted snapshot, so a page reload can always
// resume from the store. Commands serialize on one mutex; mutations are
// discrete and short, matching the event-driven model of the exam runner.
type ExamSessionService struct {
	cfg    *config.Config
	store  storage.Store
	loader *catalog.Loader
	rdb    *redis.Client // nil disables result archiving
	log    zerolog.Logger

	mu       sync.Mutex
	sessions map[string]*exam.Session
}

// NewExamSessionService creates the controller. rdb may be nil; results are
// then not queued for archiving.
func NewExamSessionService(
	cfg *config.Config,
	store storage.Store,
	loader *catalog.Loader,
	rdb *redis.Client,
	log zerolog.Logger,
) *ExamSessionService {
	return &ExamSessionService{
		cfg:      cfg,
		store:    store,
		loader:   loader,
		rdb:      rdb,
		log:      log.With().Str("component", "exam_session_service").Logger(),
		sessions: make(map[string]*exam.Session),
	}
}

// ─── Dashboard side ─────────────────────────────────────────────────

// SelectQuiz validates the entry token of a token-gated quiz and marks it as
// the client's current target. Any previous attempt, persisted or in
// memory, is discarded so the exam runner starts fresh.
func (s *ExamSessionService) SelectQuiz(ctx context.Context, clientID, quizID, token string) (*model.QuizMeta, error) {
	quiz, err := s.loader.FindQuiz(quizID)
	if err != nil {
		return nil, err
	}

	if quiz.EntryToken != "" && quiz.EntryToken != token {
		return nil, ErrInvalidEntryToken
	}

	s.mu.Lock()
	delete(s.sessions, clientID)
	s.mu.Unlock()

	if err := s.store.ClearState(ctx, clientID); err != nil {
		return nil, fmt.Errorf("clear stale snapshot: %w", err)
	}
	if err := s.store.SetCurrentQuiz(ctx, clientID, quiz.ID); err != nil {
		return nil, fmt.Errorf("set current quiz: %w", err)
	}

	return quiz, nil
}

// ─── Exam runner side ───────────────────────────────────────────────

// ExamPaper is everything the runner needs to render an opened exam.
type ExamPaper struct {
	Quiz      model.QuizCard       `json:"quiz"`
	Questions []model.QuestionView `json:"questions"`
	State     *ExamStateView       `json:"state"`
}

// ExamStateView is the read-only projection of a session for rendering.
type ExamStateView struct {
	QuizID           string              `json:"quiz_id"`
	Title            string              `json:"title"`
	Active           bool                `json:"active"`
	CurrentIndex     int                 `json:"current_index"`
	Question         model.QuestionView  `json:"question"`
	Palette          []model.PaletteItem `json:"palette"`
	AnsweredCount    int                 `json:"answered_count"`
	Total            int                 `json:"total"`
	ViolationCount   int                 `json:"violation_count"`
	MaxViolations    int                 `json:"max_violations"`
	RemainingSeconds int                 `json:"remaining_seconds"`
	RemainingDisplay string              `json:"remaining_display"`
	LowTime          bool                `json:"low_time"`
}

// OpenExam resumes the client's persisted attempt at the currently selected
// quiz, or starts a fresh one. A snapshot that belongs to a different quiz is
// discarded and the attempt starts over; fresh=true forces that regardless.
func (s *ExamSessionService) OpenExam(ctx context.Context, clientID string, fresh bool) (*ExamPaper, error) {
	quizID, err := s.store.GetCurrentQuiz(ctx, clientID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrNoQuizSelected
	}
	if err != nil {
		return nil, err
	}

	quiz, err := s.loader.FindQuiz(quizID)
	if err != nil {
		return nil, err
	}
	questions, err := s.loader.QuestionSet(quiz)
	if err != nil {
		return nil, err
	}

	if fresh {
		if err := s.store.ClearState(ctx, clientID); err != nil {
			return nil, fmt.Errorf("clear snapshot: %w", err)
		}
	}

	now := time.Now()
	sess, err := s.restoreOrStart(ctx, clientID, *quiz, questions, now)
	if err != nil {
		return nil, err
	}

	// Persist immediately: a fresh start writes its first snapshot, a
	// resume rewrites the sanitized one.
	if err := s.store.SaveState(ctx, clientID, sess.Snapshot()); err != nil {
		return nil, fmt.Errorf("save snapshot: %w", err)
	}

	s.mu.Lock()
	s.sessions[clientID] = sess
	s.mu.Unlock()

	views := make([]model.QuestionView, len(questions))
	for i := range questions {
		views[i] = questions.View(i)
	}

	return &ExamPaper{
		Quiz:      quiz.Card(),
		Questions: views,
		State:     s.stateView(sess, now),
	}, nil
}

func (s *ExamSessionService) restoreOrStart(ctx context.Context, clientID string, quiz model.QuizMeta, questions model.QuestionSet, now time.Time) (*exam.Session, error) {
	snap, err := s.store.LoadState(ctx, clientID)
	if err == nil {
		sess, resumeErr := exam.Resume(snap, quiz, questions)
		if resumeErr == nil {
			s.log.Info().
				Str("client_id", clientID).
				Str("quiz_id", quiz.ID).
				Int("answered", sess.AnsweredCount()).
				Msg("Session resumed")
			return sess, nil
		}
		if !errors.Is(resumeErr, exam.ErrQuizMismatch) {
			return nil, resumeErr
		}
		// Stale snapshot from another quiz: recover locally by dropping it.
		s.log.Warn().
			Str("client_id", clientID).
			Str("snapshot_quiz", snap.QuizID).
			Str("requested_quiz", quiz.ID).
			Msg("Quiz mismatch, discarding snapshot")
		if err := s.store.ClearState(ctx, clientID); err != nil {
			return nil, fmt.Errorf("clear mismatched snapshot: %w", err)
		}
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	sess, err := exam.Start(quiz, questions, now, s.cfg.DefaultDuration)
	if err != nil {
		return nil, err
	}
	s.log.Info().
		Str("client_id", clientID).
		Str("quiz_id", quiz.ID).
		Time("deadline", sess.Deadline()).
		Msg("Session started")
	return sess, nil
}

// State returns the rendering projection for the client's session.
func (s *ExamSessionService) State(clientID string, now time.Time) (*ExamStateView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[clientID]
	if !ok {
		return nil, ErrNoActiveSession
	}
	return s.stateView(sess, now), nil
}

// Active reports whether the client has an in-progress attempt. The runner
// uses this to decide whether to warn before navigating away.
func (s *ExamSessionService) Active(clientID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[clientID]
	return ok && sess.Active()
}

// SelectAnswer records an answer and persists the snapshot.
func (s *ExamSessionService) SelectAnswer(ctx context.Context, clientID string, index int, option string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[clientID]
	if !ok {
		return ErrNoActiveSession
	}
	if err := sess.SelectAnswer(index, option); err != nil {
		return err
	}
	return s.persist(ctx, clientID, sess)
}

// Navigate moves the question pointer and persists the snapshot.
func (s *ExamSessionService) Navigate(ctx context.Context, clientID string, to int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[clientID]
	if !ok {
		return ErrNoActiveSession
	}
	if err := sess.Navigate(to); err != nil {
		return err
	}
	return s.persist(ctx, clientID, sess)
}

// Tick advances session time. When the deadline has passed it performs the
// forced finish exactly once and returns the terminal result alongside the
// tick info.
func (s *ExamSessionService) Tick(ctx context.Context, clientID string, now time.Time) (exam.TickResult, *model.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[clientID]
	if !ok {
		return exam.TickResult{}, nil, ErrNoActiveSession
	}

	res := sess.Tick(now)
	if !res.Expired {
		return res, nil, nil
	}

	result, err := s.finishLocked(ctx, clientID, sess, true, now)
	if err != nil {
		return res, nil, err
	}
	return res, result, nil
}

// RecordViolation counts one focus-loss signal and persists it. Reaching the
// configured maximum hard-resets the attempt: progress is discarded and the
// persisted snapshot deleted.
func (s *ExamSessionService) RecordViolation(ctx context.Context, clientID string) (exam.ViolationResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[clientID]
	if !ok {
		return exam.ViolationResult{}, ErrNoActiveSession
	}

	res, err := sess.RecordViolation(s.cfg.MaxViolations)
	if err != nil {
		return exam.ViolationResult{}, err
	}

	if res.ThresholdReached {
		s.log.Warn().
			Str("client_id", clientID).
			Str("quiz_id", sess.Quiz().ID).
			Int("violations", res.Count).
			Msg("Violation limit reached, hard reset")
		s.hardResetLocked(ctx, clientID, sess)
		return res, nil
	}

	if err := s.persist(ctx, clientID, sess); err != nil {
		return exam.ViolationResult{}, err
	}
	return res, nil
}

// Finish submits the attempt voluntarily (forced=false) or on expiry
// (forced=true). On success the snapshot is deleted and the result queued
// for archiving.
func (s *ExamSessionService) Finish(ctx context.Context, clientID string, forced bool) (*model.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[clientID]
	if !ok {
		return nil, ErrNoActiveSession
	}
	return s.finishLocked(ctx, clientID, sess, forced, time.Now())
}

// HardReset discards the client's attempt unconditionally.
func (s *ExamSessionService) HardReset(ctx context.Context, clientID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[clientID]
	if !ok {
		return ErrNoActiveSession
	}
	s.hardResetLocked(ctx, clientID, sess)
	return nil
}

// ─── Internals (callers hold s.mu) ──────────────────────────────────

func (s *ExamSessionService) persist(ctx context.Context, clientID string, sess *exam.Session) error {
	if err := s.store.SaveState(ctx, clientID, sess.Snapshot()); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

func (s *ExamSessionService) finishLocked(ctx context.Context, clientID string, sess *exam.Session, forced bool, now time.Time) (*model.Result, error) {
	result, err := sess.Finish(forced, now)
	if err != nil {
		return nil, err
	}

	// Session is inactive now; drop it before touching the store so a
	// failed delete can never revive a finished attempt.
	delete(s.sessions, clientID)
	if err := s.store.ClearState(ctx, clientID); err != nil {
		s.log.Error().Err(err).Str("client_id", clientID).Msg("Failed to clear snapshot after finish")
	}

	s.queueArchive(ctx, clientID, sess.Quiz().ID, result, forced)

	s.log.Info().
		Str("client_id", clientID).
		Str("quiz_id", sess.Quiz().ID).
		Bool("forced", forced).
		Int("score", result.ScorePercent).
		Msg("Session finished")

	return result, nil
}

func (s *ExamSessionService) hardResetLocked(ctx context.Context, clientID string, sess *exam.Session) {
	sess.HardReset()
	delete(s.sessions, clientID)
	if err := s.store.ClearState(ctx, clientID); err != nil {
		s.log.Error().Err(err).Str("client_id", clientID).Msg("Failed to clear snapshot after hard reset")
	}
}

// queueArchive pushes the finished result onto the archive queue. Best
// effort: archiving failures never fail the finish itself.
func (s *ExamSessionService) queueArchive(ctx context.Context, clientID, quizID string, result *model.Result, forced bool) {
	if s.rdb == nil {
		return
	}

	payload, _ := json.Marshal(map[string]interface{}{
		"client_id":   clientID,
		"quiz_id":     quizID,
		"correct":     result.Correct,
		"wrong":       result.Wrong,
		"total":       result.Total,
		"score":       result.ScorePercent,
		"forced":      forced,
		"finished_at": time.Now().Unix(),
	})
	if err := s.rdb.RPush(ctx, config.WorkerKey.ArchiveResultsQueue, payload).Err(); err != nil {
		s.log.Error().Err(err).Str("client_id", clientID).Msg("Failed to queue result for archiving")
	}
}

func (s *ExamSessionService) stateView(sess *exam.Session, now time.Time) *ExamStateView {
	remaining := sess.Deadline().Sub(now)
	if remaining < 0 {
		remaining = 0
	}

	return &ExamStateView{
		QuizID:           sess.Quiz().ID,
		Title:            sess.Quiz().Title,
		Active:           sess.Active(),
		CurrentIndex:     sess.CurrentIndex(),
		Question:         sess.CurrentQuestion(),
		Palette:          sess.Palette(),
		AnsweredCount:    sess.AnsweredCount(),
		Total:            sess.Total(),
		ViolationCount:   sess.ViolationCount(),
		MaxViolations:    s.cfg.MaxViolations,
		RemainingSeconds: int(remaining.Seconds()),
		RemainingDisplay: exam.FormatRemaining(remaining),
		LowTime:          remaining < exam.LowTimeThreshold,
	}
}
