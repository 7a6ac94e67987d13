package storage

import (
	"context"
	"sync"

	"github.com/blueskyzii/Latihan-PPKN/internal/model"
)

// MemoryStore is an in-memory implementation of Store. It backs tests and
// single-instance dev runs without Redis; state does not survive a restart.
type MemoryStore struct {
	mu        sync.RWMutex
	snapshots map[string]model.ExamSnapshot
	quizzes   map[string]string
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		snapshots: make(map[string]model.ExamSnapshot),
		quizzes:   make(map[string]string),
	}
}

func (s *MemoryStore) SaveState(_ context.Context, clientID string, snap *model.ExamSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots[clientID] = *cloneSnapshot(snap)
	return nil
}

func (s *MemoryStore) LoadState(_ context.Context, clientID string) (*model.ExamSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.snapshots[clientID]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneSnapshot(&snap), nil
}

func (s *MemoryStore) ClearState(_ context.Context, clientID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.snapshots, clientID)
	return nil
}

func (s *MemoryStore) SetCurrentQuiz(_ context.Context, clientID, quizID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quizzes[clientID] = quizID
	return nil
}

func (s *MemoryStore) GetCurrentQuiz(_ context.Context, clientID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	quizID, ok := s.quizzes[clientID]
	if !ok {
		return "", ErrNotFound
	}
	return quizID, nil
}

func (s *MemoryStore) ClearCurrentQuiz(_ context.Context, clientID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.quizzes, clientID)
	return nil
}

// cloneSnapshot copies the snapshot so callers cannot mutate stored state.
func cloneSnapshot(snap *model.ExamSnapshot) *model.ExamSnapshot {
	out := *snap
	out.UserAnswers = make(map[int]string, len(snap.UserAnswers))
	for k, v := range snap.UserAnswers {
		out.UserAnswers[k] = v
	}
	return &out
}
