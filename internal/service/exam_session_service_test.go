package service

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blueskyzii/Latihan-PPKN/internal/catalog"
	"github.com/blueskyzii/Latihan-PPKN/internal/config"
	"github.com/blueskyzii/Latihan-PPKN/internal/exam"
	"github.com/blueskyzii/Latihan-PPKN/internal/storage"
)

const svcCatalogJSON = `[
	{"id": "ppkn-bab-1", "title": "Latihan Bab 1", "description": "Pancasila", "duration": 30, "file": "ppkn-bab-1.json"},
	{"id": "ppkn-bab-2", "title": "Latihan Bab 2", "description": "UUD 1945", "file": "ppkn-bab-2.json", "token": "RAHASIA"}
]`

const svcQuestionsJSON = `[
	{"question": "Q1", "options": ["A", "B", "C"], "answer": "A"},
	{"question": "Q2", "options": ["A", "B", "C"], "answer": "B"},
	{"question": "Q3", "options": ["A", "B", "C"], "answer": "C"}
]`

func testConfig(dir string) *config.Config {
	return &config.Config{
		ContentDir:      dir,
		DefaultDuration: time.Hour,
		MaxViolations:   5,
	}
}

func newTestService(t *testing.T) (*ExamSessionService, storage.Store) {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "quizzes.json"), []byte(svcCatalogJSON), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ppkn-bab-1.json"), []byte(svcQuestionsJSON), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ppkn-bab-2.json"), []byte(svcQuestionsJSON), 0o644))

	store := storage.NewMemoryStore()
	loader := catalog.NewLoader(dir, zerolog.Nop())
	svc := NewExamSessionService(testConfig(dir), store, loader, nil, zerolog.Nop())
	return svc, store
}

func selectAndOpen(t *testing.T, svc *ExamSessionService, clientID string) *ExamPaper {
	t.Helper()
	ctx := context.Background()
	_, err := svc.SelectQuiz(ctx, clientID, "ppkn-bab-1", "")
	require.NoError(t, err)
	paper, err := svc.OpenExam(ctx, clientID, false)
	require.NoError(t, err)
	return paper
}

// ─── Selection ──────────────────────────────────────────────────────

func TestSelectQuiz(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	quiz, err := svc.SelectQuiz(ctx, "c1", "ppkn-bab-1", "")
	require.NoError(t, err)
	assert.Equal(t, "ppkn-bab-1", quiz.ID)

	quizID, err := store.GetCurrentQuiz(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "ppkn-bab-1", quizID)
}

func TestSelectQuiz_UnknownID(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.SelectQuiz(context.Background(), "c1", "nope", "")
	assert.ErrorIs(t, err, catalog.ErrQuizNotFound)
}

func TestSelectQuiz_TokenGate(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.SelectQuiz(ctx, "c1", "ppkn-bab-2", "")
	assert.ErrorIs(t, err, ErrInvalidEntryToken)

	_, err = svc.SelectQuiz(ctx, "c1", "ppkn-bab-2", "salah")
	assert.ErrorIs(t, err, ErrInvalidEntryToken)

	_, err = svc.SelectQuiz(ctx, "c1", "ppkn-bab-2", "RAHASIA")
	assert.NoError(t, err)
}

func TestSelectQuiz_DiscardsPreviousAttempt(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	selectAndOpen(t, svc, "c1")
	require.NoError(t, svc.SelectAnswer(ctx, "c1", 0, "A"))

	_, err := svc.SelectQuiz(ctx, "c1", "ppkn-bab-2", "RAHASIA")
	require.NoError(t, err)

	assert.False(t, svc.Active("c1"))
	_, err = store.LoadState(ctx, "c1")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

// ─── Open / resume ──────────────────────────────────────────────────

func TestOpenExam_WithoutSelection(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.OpenExam(context.Background(), "c1", false)
	assert.ErrorIs(t, err, ErrNoQuizSelected)
}

func TestOpenExam_StartsFreshAndPersists(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	paper := selectAndOpen(t, svc, "c1")

	assert.Equal(t, "ppkn-bab-1", paper.Quiz.ID)
	assert.Len(t, paper.Questions, 3)
	assert.True(t, paper.State.Active)
	assert.Equal(t, 0, paper.State.CurrentIndex)
	assert.Equal(t, 3, paper.State.Total)

	snap, err := store.LoadState(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "ppkn-bab-1", snap.QuizID)
}

func TestOpenExam_ResumesPersistedState(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	selectAndOpen(t, svc, "c1")
	require.NoError(t, svc.SelectAnswer(ctx, "c1", 1, "B"))
	require.NoError(t, svc.Navigate(ctx, "c1", 2))

	// A reload re-opens from the persisted snapshot.
	paper, err := svc.OpenExam(ctx, "c1", false)
	require.NoError(t, err)

	assert.Equal(t, 2, paper.State.CurrentIndex)
	assert.Equal(t, 1, paper.State.AnsweredCount)
}

func TestOpenExam_FreshDiscardsSnapshot(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	selectAndOpen(t, svc, "c1")
	require.NoError(t, svc.SelectAnswer(ctx, "c1", 0, "A"))

	paper, err := svc.OpenExam(ctx, "c1", true)
	require.NoError(t, err)
	assert.Equal(t, 0, paper.State.AnsweredCount)
}

func TestOpenExam_QuizMismatchStartsOver(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	selectAndOpen(t, svc, "c1")
	require.NoError(t, svc.SelectAnswer(ctx, "c1", 0, "A"))

	// Point the client at another quiz while the old snapshot survives,
	// as happens when selection and snapshot fall out of sync.
	require.NoError(t, store.SetCurrentQuiz(ctx, "c1", "ppkn-bab-2"))

	paper, err := svc.OpenExam(ctx, "c1", false)
	require.NoError(t, err)
	assert.Equal(t, "ppkn-bab-2", paper.Quiz.ID)
	assert.Equal(t, 0, paper.State.AnsweredCount)
}

// ─── Commands ───────────────────────────────────────────────────────

func TestCommands_RequireOpenSession(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	assert.ErrorIs(t, svc.SelectAnswer(ctx, "ghost", 0, "A"), ErrNoActiveSession)
	assert.ErrorIs(t, svc.Navigate(ctx, "ghost", 1), ErrNoActiveSession)
	_, err := svc.RecordViolation(ctx, "ghost")
	assert.ErrorIs(t, err, ErrNoActiveSession)
	_, err = svc.Finish(ctx, "ghost", false)
	assert.ErrorIs(t, err, ErrNoActiveSession)
	_, _, err = svc.Tick(ctx, "ghost", time.Now())
	assert.ErrorIs(t, err, ErrNoActiveSession)
	_, err = svc.State("ghost", time.Now())
	assert.ErrorIs(t, err, ErrNoActiveSession)
}

func TestSelectAnswer_PersistsSnapshot(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	selectAndOpen(t, svc, "c1")
	require.NoError(t, svc.SelectAnswer(ctx, "c1", 2, "C"))

	snap, err := store.LoadState(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "C", snap.UserAnswers[2])
}

func TestSelectAnswer_InvalidInputs(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	selectAndOpen(t, svc, "c1")
	assert.ErrorIs(t, svc.SelectAnswer(ctx, "c1", 7, "A"), exam.ErrIndexOutOfRange)
	assert.ErrorIs(t, svc.SelectAnswer(ctx, "c1", 0, "X"), exam.ErrUnknownOption)
}

// ─── Violations ─────────────────────────────────────────────────────

func TestRecordViolation_HardResetAtLimit(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	selectAndOpen(t, svc, "c1")

	for i := 1; i <= 4; i++ {
		res, err := svc.RecordViolation(ctx, "c1")
		require.NoError(t, err)
		assert.False(t, res.ThresholdReached)
	}

	res, err := svc.RecordViolation(ctx, "c1")
	require.NoError(t, err)
	assert.True(t, res.ThresholdReached)
	assert.Equal(t, 5, res.Count)

	assert.False(t, svc.Active("c1"))
	_, err = store.LoadState(ctx, "c1")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

// ─── Timer ──────────────────────────────────────────────────────────

func TestTick_ForcedFinishOnExpiry(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	selectAndOpen(t, svc, "c1")
	require.NoError(t, svc.SelectAnswer(ctx, "c1", 0, "A"))

	tick, result, err := svc.Tick(ctx, "c1", time.Now())
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.False(t, tick.LowTime)

	// Past the 30 minute quiz deadline.
	_, result, err = svc.Tick(ctx, "c1", time.Now().Add(31*time.Minute))
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, 1, result.Correct)
	assert.Equal(t, 33, result.ScorePercent)

	// Terminal: the session and its snapshot are gone.
	assert.False(t, svc.Active("c1"))
	_, err = store.LoadState(ctx, "c1")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, _, err = svc.Tick(ctx, "c1", time.Now())
	assert.ErrorIs(t, err, ErrNoActiveSession)
}

// ─── Finish ─────────────────────────────────────────────────────────

func TestFinish_IncompleteKeepsSession(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	selectAndOpen(t, svc, "c1")
	require.NoError(t, svc.SelectAnswer(ctx, "c1", 0, "A"))

	_, err := svc.Finish(ctx, "c1", false)
	var incomplete *exam.IncompleteError
	require.ErrorAs(t, err, &incomplete)
	assert.Equal(t, 2, incomplete.Unanswered)
	assert.True(t, svc.Active("c1"))
}

func TestFinish_Voluntary(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	selectAndOpen(t, svc, "c1")
	require.NoError(t, svc.SelectAnswer(ctx, "c1", 0, "A"))
	require.NoError(t, svc.SelectAnswer(ctx, "c1", 1, "B"))
	require.NoError(t, svc.SelectAnswer(ctx, "c1", 2, "A"))

	result, err := svc.Finish(ctx, "c1", false)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Correct)
	assert.Equal(t, 67, result.ScorePercent)

	assert.False(t, svc.Active("c1"))
	_, err = store.LoadState(ctx, "c1")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestFinish_QueuesResultForArchiving(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "quizzes.json"), []byte(svcCatalogJSON), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ppkn-bab-1.json"), []byte(svcQuestionsJSON), 0o644))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	loader := catalog.NewLoader(dir, zerolog.Nop())
	svc := NewExamSessionService(testConfig(dir), storage.NewMemoryStore(), loader, rdb, zerolog.Nop())

	ctx := context.Background()
	selectAndOpen(t, svc, "c1")
	_, err := svc.Finish(ctx, "c1", true)
	require.NoError(t, err)

	raw, err := rdb.LPop(ctx, config.WorkerKey.ArchiveResultsQueue).Result()
	require.NoError(t, err)

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(raw), &payload))
	assert.Equal(t, "c1", payload["client_id"])
	assert.Equal(t, "ppkn-bab-1", payload["quiz_id"])
	assert.Equal(t, true, payload["forced"])
}

// ─── Clients are independent ────────────────────────────────────────

func TestClientsAreIndependent(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	selectAndOpen(t, svc, "c1")
	selectAndOpen(t, svc, "c2")

	require.NoError(t, svc.SelectAnswer(ctx, "c1", 0, "A"))
	require.NoError(t, svc.Navigate(ctx, "c2", 2))

	s1, err := svc.State("c1", time.Now())
	require.NoError(t, err)
	s2, err := svc.State("c2", time.Now())
	require.NoError(t, err)

	assert.Equal(t, 1, s1.AnsweredCount)
	assert.Equal(t, 0, s1.CurrentIndex)
	assert.Equal(t, 0, s2.AnsweredCount)
	assert.Equal(t, 2, s2.CurrentIndex)
}
