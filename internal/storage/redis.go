package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/blueskyzii/Latihan-PPKN/internal/config"
	"github.com/blueskyzii/Latihan-PPKN/internal/model"
)

// RedisStore persists exam state in Redis. Snapshots are stored as a single
// JSON value per client, rewritten in full on every mutation, so there is no
// partial-write hazard.
type RedisStore struct {
	rdb *redis.Client
}

// NewRedisStore creates a RedisStore on an established client.
func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func (s *RedisStore) SaveState(ctx context.Context, clientID string, snap *model.ExamSnapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	return s.rdb.Set(ctx, config.StoreKey.ExamStateKey(clientID), raw, 0).Err()
}

func (s *RedisStore) LoadState(ctx context.Context, clientID string) (*model.ExamSnapshot, error) {
	raw, err := s.rdb.Get(ctx, config.StoreKey.ExamStateKey(clientID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get snapshot: %w", err)
	}

	var snap model.ExamSnapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return &snap, nil
}

func (s *RedisStore) ClearState(ctx context.Context, clientID string) error {
	return s.rdb.Del(ctx, config.StoreKey.ExamStateKey(clientID)).Err()
}

func (s *RedisStore) SetCurrentQuiz(ctx context.Context, clientID, quizID string) error {
	return s.rdb.Set(ctx, config.StoreKey.CurrentQuizKey(clientID), quizID, 0).Err()
}

func (s *RedisStore) GetCurrentQuiz(ctx context.Context, clientID string) (string, error) {
	quizID, err := s.rdb.Get(ctx, config.StoreKey.CurrentQuizKey(clientID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get current quiz: %w", err)
	}
	return quizID, nil
}

func (s *RedisStore) ClearCurrentQuiz(ctx context.Context, clientID string) error {
	return s.rdb.Del(ctx, config.StoreKey.CurrentQuizKey(clientID)).Err()
}
