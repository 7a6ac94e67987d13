package model

// QuizMeta is one entry of the quiz catalog (quizzes.json). Immutable once
// loaded; the first entry with a given ID is authoritative.
type QuizMeta struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	Description     string `json:"description"`
	Icon            string `json:"icon,omitempty"`
	DurationMinutes int    `json:"duration,omitempty"`
	File            string `json:"file"`
	EntryToken      string `json:"token,omitempty"`
}

// QuizCard is a catalog entry as exposed to clients. The entry token and the
// question file reference are never sent out.
type QuizCard struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	Description     string `json:"description"`
	Icon            string `json:"icon,omitempty"`
	DurationMinutes int    `json:"duration_minutes"`
	RequiresToken   bool   `json:"requires_token"`
}

// Card converts a catalog entry to its client-facing form.
func (q *QuizMeta) Card() QuizCard {
	return QuizCard{
		ID:              q.ID,
		Title:           q.Title,
		Description:     q.Description,
		Icon:            q.Icon,
		DurationMinutes: q.DurationMinutes,
		RequiresToken:   q.EntryToken != "",
	}
}

// Question is a single multiple-choice question. Option order is significant:
// it is randomized once, when the question set is loaded. Answer always
// equals one of Options verbatim.
type Question struct {
	Text    string   `json:"question"`
	Options []string `json:"options"`
	Answer  string   `json:"answer"`
	Hint    string   `json:"hint,omitempty"`
}

// QuestionSet is an ordered question list. The 0-based position of a question
// is its identity for the duration of a session.
type QuestionSet []Question

// QuestionView is a question as sent to clients: no correct answer.
type QuestionView struct {
	Number  int      `json:"number"` // 1-based display number
	Text    string   `json:"question"`
	Options []string `json:"options"`
	Hint    string   `json:"hint,omitempty"`
}

// View builds the client-facing form of the question at the given 0-based index.
func (qs QuestionSet) View(index int) QuestionView {
	q := qs[index]
	return QuestionView{
		Number:  index + 1,
		Text:    q.Text,
		Options: q.Options,
		Hint:    q.Hint,
	}
}

// ─── Request payloads ───────────────────────────────────────────────

// SelectQuizRequest is the payload for choosing a quiz on the dashboard.
// Token is required only for token-gated quizzes.
type SelectQuizRequest struct {
	Token string `json:"token" binding:"omitempty,max=64"`
}

// OpenExamRequest is the payload for opening the exam runner.
// Fresh discards a persisted attempt and starts over.
type OpenExamRequest struct {
	Fresh bool `json:"fresh"`
}

// AnswerRequest is the payload for recording an answer.
// Index is a pointer so that question 0 passes the required check.
type AnswerRequest struct {
	Index  *int   `json:"index" binding:"required,gte=0"`
	Option string `json:"option" binding:"required"`
}

// NavigateRequest is the payload for moving the question pointer.
type NavigateRequest struct {
	Index *int `json:"index" binding:"required,gte=0"`
}

// FinishRequest is the payload for submitting the exam.
type FinishRequest struct {
	Forced bool `json:"forced"`
}
