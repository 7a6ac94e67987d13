package exam

import (
	"errors"
	"fmt"
)

var (
	// ErrNotActive is returned by mutations on a finished or reset session.
	ErrNotActive = errors.New("exam: session is not active")
	// ErrIndexOutOfRange is returned for a question index outside the set.
	ErrIndexOutOfRange = errors.New("exam: question index out of range")
	// ErrUnknownOption is returned when the selected option is not one of
	// the question's option strings. This indicates a caller bug, not a
	// user-facing condition.
	ErrUnknownOption = errors.New("exam: option does not belong to the question")
	// ErrQuizMismatch is returned when a snapshot belongs to a different
	// quiz than the one being opened. The caller recovers by discarding the
	// snapshot and starting fresh.
	ErrQuizMismatch = errors.New("exam: snapshot belongs to a different quiz")
	// ErrNoQuestions is returned when starting a session over an empty set.
	ErrNoQuestions = errors.New("exam: question set is empty")
)

// IncompleteError rejects a voluntary finish while questions remain
// unanswered and time remains. It is a signal for user confirmation, not a
// corrupted state.
type IncompleteError struct {
	Unanswered int
}

func (e *IncompleteError) Error() string {
	return fmt.Sprintf("exam: %d questions unanswered", e.Unanswered)
}
