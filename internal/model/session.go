package model

// ExamSnapshot is the persisted form of an exam session. Field names match
// the exam_state payload the original web client wrote to localStorage, so
// snapshots survive a client migration.
type ExamSnapshot struct {
	QuizID               string         `json:"quizId"`
	CurrentQuestionIndex int            `json:"currentQuestionIndex"`
	UserAnswers          map[int]string `json:"userAnswers"`
	ViolationCount       int            `json:"violationCount"`
	ExamEndTime          int64          `json:"examEndTime"` // unix milliseconds, absolute deadline
}

// Result is the outcome of a finished attempt. Derived from the session and
// its question set; never persisted by the session itself.
type Result struct {
	Correct      int `json:"correct"`
	Wrong        int `json:"wrong"`
	Total        int `json:"total"`
	ScorePercent int `json:"score"`
}

// PaletteItem is one cell of the question palette overview.
type PaletteItem struct {
	Number   int  `json:"number"`
	Answered bool `json:"answered"`
	Current  bool `json:"current"`
}
