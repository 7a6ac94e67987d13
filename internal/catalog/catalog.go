package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/blueskyzii/Latihan-PPKN/internal/model"
)

const catalogFile = "quizzes.json"

var (
	// ErrQuizNotFound is returned when no catalog entry carries the id.
	ErrQuizNotFound = errors.New("catalog: quiz not found")
	// ErrUnavailable wraps any read or parse failure of the content files.
	// It is fatal to starting a session; there is no built-in retry.
	ErrUnavailable = errors.New("catalog: quiz data unavailable")
)

// Loader reads quiz content (the catalog and per-quiz question files) from a
// content directory. Files are read on every call so content updates do not
// require a restart.
type Loader struct {
	dir string
	log zerolog.Logger
}

// NewLoader creates a Loader over the given content directory.
func NewLoader(dir string, log zerolog.Logger) *Loader {
	return &Loader{
		dir: dir,
		log: log.With().Str("component", "catalog").Logger(),
	}
}

// Catalog returns all quiz entries from quizzes.json in file order.
func (l *Loader) Catalog() ([]model.QuizMeta, error) {
	raw, err := os.ReadFile(filepath.Join(l.dir, catalogFile))
	if err != nil {
		return nil, fmt.Errorf("%w: read catalog: %v", ErrUnavailable, err)
	}

	var quizzes []model.QuizMeta
	if err := json.Unmarshal(raw, &quizzes); err != nil {
		return nil, fmt.Errorf("%w: parse catalog: %v", ErrUnavailable, err)
	}
	return quizzes, nil
}

// FindQuiz returns the first catalog entry with the given id. Duplicate ids
// are tolerated; the first match wins.
func (l *Loader) FindQuiz(id string) (*model.QuizMeta, error) {
	quizzes, err := l.Catalog()
	if err != nil {
		return nil, err
	}
	for i := range quizzes {
		if quizzes[i].ID == id {
			return &quizzes[i], nil
		}
	}
	return nil, ErrQuizNotFound
}

// QuestionSet loads and validates the question file of a quiz. Every
// question's options are shuffled here, once per load; the shuffled order is
// not persisted, so a reload may present a different order while stored
// answers stay valid by value.
func (l *Loader) QuestionSet(quiz *model.QuizMeta) (model.QuestionSet, error) {
	// The file reference comes from content we control, but keep it inside
	// the content directory anyway.
	if strings.Contains(quiz.File, "..") || filepath.IsAbs(quiz.File) {
		return nil, fmt.Errorf("%w: invalid question file reference %q", ErrUnavailable, quiz.File)
	}

	raw, err := os.ReadFile(filepath.Join(l.dir, quiz.File))
	if err != nil {
		return nil, fmt.Errorf("%w: read questions: %v", ErrUnavailable, err)
	}

	var questions model.QuestionSet
	if err := json.Unmarshal(raw, &questions); err != nil {
		return nil, fmt.Errorf("%w: parse questions: %v", ErrUnavailable, err)
	}

	for i := range questions {
		if err := validateQuestion(&questions[i]); err != nil {
			return nil, fmt.Errorf("%w: question %d: %v", ErrUnavailable, i, err)
		}
		shuffleOptions(questions[i].Options)
	}

	l.log.Debug().
		Str("quiz_id", quiz.ID).
		Int("questions", len(questions)).
		Msg("Question set loaded")

	return questions, nil
}

// validateQuestion enforces the loaded schema: non-empty text, at least two
// options, and an answer that equals one option verbatim.
func validateQuestion(q *model.Question) error {
	if q.Text == "" {
		return errors.New("empty question text")
	}
	if len(q.Options) < 2 {
		return errors.New("fewer than two options")
	}
	for _, opt := range q.Options {
		if opt == q.Answer {
			return nil
		}
	}
	return fmt.Errorf("answer %q is not among the options", q.Answer)
}

// shuffleOptions randomizes option order in place (Fisher-Yates).
func shuffleOptions(options []string) {
	rand.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})
}
