package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/okian/crease/internal/domain/model"
)

// MemoryStore is an in-memory Store used by tests, the simulator, and
// single-process deployments. Records are copied on the way in and out
// so no caller ever shares a mutable reference with the store.
type MemoryStore struct {
	mu          sync.RWMutex
	contests    map[string]model.Contest
	questions   map[string]model.Question
	submissions map[string]model.Submission
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		contests:    make(map[string]model.Contest),
		questions:   make(map[string]model.Question),
		submissions: make(map[string]model.Submission),
	}
}

// PutContest inserts or replaces a contest. The parsed category is
// derived here so the engine never re-parses the raw tag.
func (s *MemoryStore) PutContest(c model.Contest) {
	c.Category = model.ParseCategory(c.RawCategory)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contests[c.ID] = c
}

// PutQuestion inserts or replaces a question.
func (s *MemoryStore) PutQuestion(q model.Question) {
	if q.AnswerKey != nil {
		key := *q.AnswerKey
		q.AnswerKey = &key
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.questions[q.ID] = q
}

// PutSubmission inserts or replaces a submission.
func (s *MemoryStore) PutSubmission(sub model.Submission) {
	sub.Answers = append([]model.Answer(nil), sub.Answers...)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.submissions[sub.ID] = sub
}

func (s *MemoryStore) Contest(_ context.Context, id string) (model.Contest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.contests[id]
	if !ok {
		return model.Contest{}, fmt.Errorf("contest %s: %w", id, ErrNotFound)
	}
	return c, nil
}

func (s *MemoryStore) ContestsByMatch(_ context.Context, matchID string) ([]model.Contest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.Contest
	for _, c := range s.contests {
		if c.MatchID == matchID {
			out = append(out, c)
		}
	}
	sortContests(out)
	return out, nil
}

func (s *MemoryStore) ContestsByStatus(_ context.Context, status model.Status) ([]model.Contest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.Contest
	for _, c := range s.contests {
		if c.Status == status {
			out = append(out, c)
		}
	}
	sortContests(out)
	return out, nil
}

func (s *MemoryStore) CompareAndSetStatus(_ context.Context, id string, from, to model.Status) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.contests[id]
	if !ok {
		return false, fmt.Errorf("contest %s: %w", id, ErrNotFound)
	}
	if c.Status != from {
		return false, nil
	}
	c.Status = to
	s.contests[id] = c
	return true, nil
}

func (s *MemoryStore) QuestionsByContest(_ context.Context, contestID string) ([]model.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.Question
	for _, q := range s.questions {
		if q.ContestID != contestID {
			continue
		}
		if q.AnswerKey != nil {
			key := *q.AnswerKey
			q.AnswerKey = &key
		}
		out = append(out, q)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) SetAnswerKey(_ context.Context, questionID, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	q, ok := s.questions[questionID]
	if !ok {
		return fmt.Errorf("question %s: %w", questionID, ErrNotFound)
	}
	q.AnswerKey = &key
	s.questions[questionID] = q
	return nil
}

func (s *MemoryStore) SubmissionsByContest(_ context.Context, contestID string) ([]model.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.Submission
	for _, sub := range s.submissions {
		if sub.ContestID != contestID {
			continue
		}
		sub.Answers = append([]model.Answer(nil), sub.Answers...)
		out = append(out, sub)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) SubmissionByUser(_ context.Context, contestID, userID string) (model.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, sub := range s.submissions {
		if sub.ContestID == contestID && sub.UserID == userID {
			sub.Answers = append([]model.Answer(nil), sub.Answers...)
			return sub, nil
		}
	}
	return model.Submission{}, fmt.Errorf("submission for user %s in contest %s: %w", userID, contestID, ErrNotFound)
}

func (s *MemoryStore) SetScore(_ context.Context, submissionID string, total, max int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub, ok := s.submissions[submissionID]
	if !ok {
		return fmt.Errorf("submission %s: %w", submissionID, ErrNotFound)
	}
	sub.TotalScore = total
	sub.MaxScore = max
	s.submissions[submissionID] = sub
	return nil
}

func (s *MemoryStore) SetRank(_ context.Context, submissionID string, rank int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub, ok := s.submissions[submissionID]
	if !ok {
		return fmt.Errorf("submission %s: %w", submissionID, ErrNotFound)
	}
	sub.Rank = rank
	s.submissions[submissionID] = sub
	return nil
}

func sortContests(cs []model.Contest) {
	sort.Slice(cs, func(i, j int) bool { return cs[i].ID < cs[j].ID })
}
