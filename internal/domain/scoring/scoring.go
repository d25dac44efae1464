// Package scoring computes a submission's score against a contest's
// resolved answer keys. Scoring is deterministic; re-running it over
// the same inputs yields the same result.
package scoring

import (
	"strings"

	"github.com/okian/crease/internal/domain/model"
)

// QuestionResult is the per-question outcome inside a scored result.
type QuestionResult struct {
	QuestionID  string
	SelectedKey string
	Correct     bool
	Points      int
}

// Result is the immutable output of scoring one submission.
type Result struct {
	TotalScore  int
	MaxScore    int
	PerQuestion []QuestionResult
}

// Score evaluates a submission against the contest's questions.
//
// A missing question scores zero and counts toward neither total. A
// question whose answer key is still unresolved contributes to neither
// TotalScore nor MaxScore. Otherwise the question's points enter
// MaxScore, and TotalScore too when the keys match after trimming and
// case normalization.
func Score(sub model.Submission, questions map[string]model.Question) Result {
	res := Result{PerQuestion: make([]QuestionResult, 0, len(sub.Answers))}

	for _, ans := range sub.Answers {
		qr := QuestionResult{QuestionID: ans.QuestionID, SelectedKey: ans.SelectedKey}

		q, ok := questions[ans.QuestionID]
		if !ok || q.AnswerKey == nil {
			res.PerQuestion = append(res.PerQuestion, qr)
			continue
		}

		points := q.PointsOrDefault()
		res.MaxScore += points
		if keysEqual(ans.SelectedKey, *q.AnswerKey) {
			qr.Correct = true
			qr.Points = points
			res.TotalScore += points
		}
		res.PerQuestion = append(res.PerQuestion, qr)
	}
	return res
}

func keysEqual(selected, key string) bool {
	return strings.EqualFold(strings.TrimSpace(selected), strings.TrimSpace(key))
}
