package storage

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blueskyzii/Latihan-PPKN/internal/model"
)

func newTestRedisStore(t *testing.T) *RedisStore {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewRedisStore(rdb)
}

func sampleSnapshot() *model.ExamSnapshot {
	return &model.ExamSnapshot{
		QuizID:               "ppkn-bab-1",
		CurrentQuestionIndex: 2,
		UserAnswers:          map[int]string{0: "A", 2: "C"},
		ViolationCount:       1,
		ExamEndTime:          1700000000000,
	}
}

func TestRedisStore_StateRoundTrip(t *testing.T) {
	store := newTestRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveState(ctx, "client-1", sampleSnapshot()))

	loaded, err := store.LoadState(ctx, "client-1")
	require.NoError(t, err)
	assert.Equal(t, sampleSnapshot(), loaded)
}

func TestRedisStore_LoadMissingState(t *testing.T) {
	store := newTestRedisStore(t)

	_, err := store.LoadState(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStore_ClearState(t *testing.T) {
	store := newTestRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveState(ctx, "client-1", sampleSnapshot()))
	require.NoError(t, store.ClearState(ctx, "client-1"))

	_, err := store.LoadState(ctx, "client-1")
	assert.ErrorIs(t, err, ErrNotFound)

	// Clearing an absent slot is not an error.
	assert.NoError(t, store.ClearState(ctx, "client-1"))
}

func TestRedisStore_CurrentQuiz(t *testing.T) {
	store := newTestRedisStore(t)
	ctx := context.Background()

	_, err := store.GetCurrentQuiz(ctx, "client-1")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.SetCurrentQuiz(ctx, "client-1", "ppkn-bab-2"))
	quizID, err := store.GetCurrentQuiz(ctx, "client-1")
	require.NoError(t, err)
	assert.Equal(t, "ppkn-bab-2", quizID)

	require.NoError(t, store.ClearCurrentQuiz(ctx, "client-1"))
	_, err = store.GetCurrentQuiz(ctx, "client-1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStore_ClientsAreIsolated(t *testing.T) {
	store := newTestRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveState(ctx, "client-1", sampleSnapshot()))

	_, err := store.LoadState(ctx, "client-2")
	assert.ErrorIs(t, err, ErrNotFound)
}
