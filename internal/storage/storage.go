package storage

import (
	"context"
	"errors"

	"github.com/blueskyzii/Latihan-PPKN/internal/model"
)

// ErrNotFound is returned when the requested slot holds no value.
var ErrNotFound = errors.New("storage: not found")

// Store is the durable key-value contract the exam controller relies on.
// Per client there are exactly two logical slots: the selected quiz id and
// the exam session snapshot. Writes are last-write-wins; the controller never
// assumes multi-key atomicity because the two slots are consumed
// independently (quiz id at open time, snapshot at resume and on mutation).
type Store interface {
	SaveState(ctx context.Context, clientID string, snap *model.ExamSnapshot) error
	LoadState(ctx context.Context, clientID string) (*model.ExamSnapshot, error)
	ClearState(ctx context.Context, clientID string) error

	SetCurrentQuiz(ctx context.Context, clientID, quizID string) error
	GetCurrentQuiz(ctx context.Context, clientID string) (string, error)
	ClearCurrentQuiz(ctx context.Context, clientID string) error
}
