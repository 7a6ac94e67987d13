package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blueskyzii/Latihan-PPKN/internal/model"
)

const testCatalogJSON = `[
	{"id": "ppkn-bab-1", "title": "Latihan Bab 1", "description": "Pancasila", "duration": 30, "file": "ppkn-bab-1.json"},
	{"id": "ppkn-bab-2", "title": "Latihan Bab 2", "description": "UUD 1945", "file": "ppkn-bab-2.json", "token": "RAHASIA"},
	{"id": "ppkn-bab-1", "title": "Duplicate", "description": "ignored", "file": "dup.json"}
]`

const testQuestionsJSON = `[
	{"question": "Sila pertama?", "options": ["Ketuhanan", "Kemanusiaan", "Persatuan"], "answer": "Ketuhanan", "hint": "ingat lambangnya"},
	{"question": "Sila kedua?", "options": ["Ketuhanan", "Kemanusiaan"], "answer": "Kemanusiaan"}
]`

func newTestLoader(t *testing.T) (*Loader, string) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "quizzes.json"), []byte(testCatalogJSON), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ppkn-bab-1.json"), []byte(testQuestionsJSON), 0o644))
	return NewLoader(dir, zerolog.Nop()), dir
}

func TestCatalog(t *testing.T) {
	loader, _ := newTestLoader(t)

	quizzes, err := loader.Catalog()
	require.NoError(t, err)
	require.Len(t, quizzes, 3)
	assert.Equal(t, "ppkn-bab-1", quizzes[0].ID)
	assert.Equal(t, 30, quizzes[0].DurationMinutes)
	assert.Equal(t, "RAHASIA", quizzes[1].EntryToken)
}

func TestCatalog_MissingFile(t *testing.T) {
	loader := NewLoader(t.TempDir(), zerolog.Nop())

	_, err := loader.Catalog()
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestCatalog_MalformedJSON(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "quizzes.json"), []byte("{not json"), 0o644))
	loader := NewLoader(dir, zerolog.Nop())

	_, err := loader.Catalog()
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestFindQuiz(t *testing.T) {
	loader, _ := newTestLoader(t)

	quiz, err := loader.FindQuiz("ppkn-bab-2")
	require.NoError(t, err)
	assert.Equal(t, "Latihan Bab 2", quiz.Title)

	_, err = loader.FindQuiz("nope")
	assert.ErrorIs(t, err, ErrQuizNotFound)
}

func TestFindQuiz_FirstMatchWins(t *testing.T) {
	loader, _ := newTestLoader(t)

	quiz, err := loader.FindQuiz("ppkn-bab-1")
	require.NoError(t, err)
	assert.Equal(t, "Latihan Bab 1", quiz.Title)
}

func TestQuestionSet(t *testing.T) {
	loader, _ := newTestLoader(t)
	quiz := &model.QuizMeta{ID: "ppkn-bab-1", File: "ppkn-bab-1.json"}

	questions, err := loader.QuestionSet(quiz)
	require.NoError(t, err)
	require.Len(t, questions, 2)

	// Shuffling may reorder options but never change the set or the answer.
	assert.ElementsMatch(t, []string{"Ketuhanan", "Kemanusiaan", "Persatuan"}, questions[0].Options)
	assert.Equal(t, "Ketuhanan", questions[0].Answer)
	assert.Contains(t, questions[0].Options, questions[0].Answer)
	assert.Equal(t, "ingat lambangnya", questions[0].Hint)
}

func TestQuestionSet_MissingFile(t *testing.T) {
	loader, _ := newTestLoader(t)
	quiz := &model.QuizMeta{ID: "ppkn-bab-2", File: "ppkn-bab-2.json"}

	_, err := loader.QuestionSet(quiz)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestQuestionSet_RejectsTraversal(t *testing.T) {
	loader, _ := newTestLoader(t)

	_, err := loader.QuestionSet(&model.QuizMeta{ID: "x", File: "../etc/passwd"})
	assert.ErrorIs(t, err, ErrUnavailable)

	_, err = loader.QuestionSet(&model.QuizMeta{ID: "x", File: "/etc/passwd"})
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestQuestionSet_ValidatesSchema(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "quizzes.json"), []byte("[]"), 0o644))
	loader := NewLoader(dir, zerolog.Nop())

	cases := map[string]string{
		"empty text":        `[{"question": "", "options": ["A", "B"], "answer": "A"}]`,
		"one option":        `[{"question": "Q", "options": ["A"], "answer": "A"}]`,
		"answer not option": `[{"question": "Q", "options": ["A", "B"], "answer": "C"}]`,
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.json"), []byte(content), 0o644))
			_, err := loader.QuestionSet(&model.QuizMeta{ID: "bad", File: "bad.json"})
			assert.ErrorIs(t, err, ErrUnavailable)
		})
	}
}
