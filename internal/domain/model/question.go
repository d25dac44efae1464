package model

// Question belongs to a contest. AnswerKey stays nil until settlement
// resolves it; DataPath is a dotted path into the raw match snapshot
// used for automatic resolution.
type Question struct {
	ID        string
	ContestID string
	Text      string
	Options   []string
	AnswerKey *string
	Points    int // zero means the default of one point
	DataPath  string
}

// PointsOrDefault returns the question's point value, defaulting to 1.
func (q Question) PointsOrDefault() int {
	if q.Points > 0 {
		return q.Points
	}
	return 1
}

// Answer is one (question, selected key) pair inside a submission.
type Answer struct {
	QuestionID  string `json:"question_id"`
	SelectedKey string `json:"selected_key"`
}

// Submission is a user's one-per-contest answer sheet. TotalScore and
// MaxScore are written exactly once by the scoring engine after
// answer-key resolution; Rank is written by settlement.
type Submission struct {
	ID               string
	ContestID        string
	UserID           string
	Answers          []Answer
	TotalScore       int
	MaxScore         int
	SubmittedAtEpoch int64
	Rank             int // zero until settlement assigns it
}
