// Package repository provides access to contest, question, and
// submission records. Contests and their content are created by an
// external authoring path; this package only reads them and writes the
// narrow set of fields the engine owns.
package repository

import (
	"context"

	"github.com/okian/crease/internal/domain/model"
)

// ContestStore reads contests and advances their status.
type ContestStore interface {
	// Contest returns one contest by id. Returns ErrNotFound when the
	// id is unknown.
	Contest(ctx context.Context, id string) (model.Contest, error)

	// ContestsByMatch returns every contest attached to a match.
	ContestsByMatch(ctx context.Context, matchID string) ([]model.Contest, error)

	// ContestsByStatus returns every contest currently in a status.
	// Used by the rescan loop to find contests stuck in calculating.
	ContestsByStatus(ctx context.Context, status model.Status) ([]model.Contest, error)

	// CompareAndSetStatus writes to only if the contest's status still
	// equals from. It reports false when the optimistic check lost,
	// which the caller treats as "someone else already advanced it".
	CompareAndSetStatus(ctx context.Context, id string, from, to model.Status) (bool, error)
}

// QuestionStore reads a contest's questions and persists resolved keys.
type QuestionStore interface {
	QuestionsByContest(ctx context.Context, contestID string) ([]model.Question, error)

	// SetAnswerKey persists a resolved key. Resolution is idempotent
	// upstream; a key is only ever written to a question without one.
	SetAnswerKey(ctx context.Context, questionID, key string) error
}

// SubmissionStore reads submissions and persists scores and ranks.
type SubmissionStore interface {
	SubmissionsByContest(ctx context.Context, contestID string) ([]model.Submission, error)

	// SubmissionByUser returns the user's one submission for a contest.
	// Returns ErrNotFound when the user never submitted.
	SubmissionByUser(ctx context.Context, contestID, userID string) (model.Submission, error)

	SetScore(ctx context.Context, submissionID string, total, max int) error
	SetRank(ctx context.Context, submissionID string, rank int) error
}

// Store is the full persistence surface the engine depends on.
type Store interface {
	ContestStore
	QuestionStore
	SubmissionStore
}
