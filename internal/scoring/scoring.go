package scoring

import (
	"math"

	"github.com/blueskyzii/Latihan-PPKN/internal/model"
)

// Score grades recorded answers against a question set. Comparison is exact,
// case-sensitive string equality with no normalization. Pure: neither input
// is mutated.
//
// An empty question set scores zero percent rather than dividing by zero.
func Score(answers map[int]string, questions model.QuestionSet) model.Result {
	correct := 0
	for i := range questions {
		if ans, ok := answers[i]; ok && ans == questions[i].Answer {
			correct++
		}
	}

	total := len(questions)
	percent := 0
	if total > 0 {
		percent = int(math.Round(float64(correct) / float64(total) * 100))
	}

	return model.Result{
		Correct:      correct,
		Wrong:        total - correct,
		Total:        total,
		ScorePercent: percent,
	}
}
