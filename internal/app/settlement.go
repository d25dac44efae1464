package service

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/crease/internal/domain/model"
	"github.com/okian/crease/internal/domain/ranking"
	"github.com/okian/crease/internal/domain/scoring"
	"github.com/okian/crease/pkg/logger"
	"github.com/okian/crease/pkg/metrics"
)

const settleReason = "Results calculated - contest completed"

// triggerSettlement starts settlement for a contest that just entered
// calculation. The guard keeps concurrent triggers from double-running;
// a failed run releases its claim so the rescan loop can retry.
func (s *Service) triggerSettlement(ctx context.Context, c model.Contest, snap model.MatchSnapshot) {
	if !s.guard.Claim(ctx, c.ID) {
		s.logger.Debug(ctx, "settlement already in flight",
			logger.String("contest_id", c.ID),
		)
		return
	}

	go func() {
		// Detached from the telemetry update's lifetime; settlement
		// finishes even when the triggering request has gone away.
		runCtx := context.WithoutCancel(ctx)
		if err := s.settle(runCtx, c, snap); err != nil {
			s.guard.Release(runCtx, c.ID)
			s.logger.Error(runCtx, "settlement failed, contest stays in calculating",
				logger.String("contest_id", c.ID),
				logger.Error(err),
			)
		}
	}()
}

// settle resolves answer keys, scores every submission, writes ranks,
// and completes the contest. Every step is idempotent: resolved keys
// are skipped, scores are deterministic overwrites, and completing an
// already-completed contest is a no-op.
func (s *Service) settle(ctx context.Context, c model.Contest, snap model.MatchSnapshot) error {
	start := time.Now()
	defer func() {
		metrics.RecordSettlementDuration(time.Since(start).Seconds())
	}()

	if s.lock != nil {
		token, err := s.lock.Acquire(ctx, c.ID)
		if err != nil {
			metrics.RecordSettlementRun("error")
			return fmt.Errorf("settlement lock for contest %s: %w", c.ID, err)
		}
		if token == "" {
			// Another instance is settling this contest right now.
			metrics.RecordSettlementRun("skipped")
			return nil
		}
		defer func() {
			if err := s.lock.Release(ctx, c.ID, token); err != nil {
				s.logger.Warn(ctx, "releasing settlement lock", logger.Error(err))
			}
		}()
	}

	questions, err := s.resolveAnswerKeys(ctx, c, snap)
	if err != nil {
		metrics.RecordSettlementRun("error")
		return err
	}

	subs, err := s.scoreSubmissions(ctx, c, questions)
	if err != nil {
		metrics.RecordSettlementRun("error")
		return err
	}

	s.writeRanks(ctx, c, subs)

	if err := s.complete(ctx, c); err != nil {
		metrics.RecordSettlementRun("error")
		return err
	}

	metrics.RecordSettlementRun("success")
	s.logger.Info(ctx, "contest settled",
		logger.String("contest_id", c.ID),
		logger.Int("questions", len(questions)),
		logger.Int("submissions", len(subs)),
	)
	return nil
}

// resolveAnswerKeys fills every still-null key it can. One question
// failing to resolve is logged and skipped; it scores as unresolved.
func (s *Service) resolveAnswerKeys(ctx context.Context, c model.Contest, snap model.MatchSnapshot) (map[string]model.Question, error) {
	questions, err := s.store.QuestionsByContest(ctx, c.ID)
	if err != nil {
		return nil, fmt.Errorf("loading questions for contest %s: %w", c.ID, err)
	}

	byID := make(map[string]model.Question, len(questions))
	for _, q := range questions {
		if q.AnswerKey == nil {
			key, resolveErr := s.resolver.Resolve(ctx, q, snap)
			switch {
			case resolveErr != nil:
				metrics.RecordAnswerKeyFailure()
				s.logger.Warn(ctx, "answer resolution failed",
					logger.String("contest_id", c.ID),
					logger.String("question_id", q.ID),
					logger.Error(resolveErr),
				)
			case key != nil:
				if err := s.store.SetAnswerKey(ctx, q.ID, *key); err != nil {
					metrics.RecordAnswerKeyFailure()
					s.logger.Warn(ctx, "persisting answer key failed",
						logger.String("question_id", q.ID),
						logger.Error(err),
					)
				} else {
					metrics.RecordAnswerKeyResolved()
					q.AnswerKey = key
				}
			}
		}
		byID[q.ID] = q
	}
	return byID, nil
}

// scoreSubmissions scores and persists every submission. One failing
// write is logged and skipped; the rest of the batch proceeds.
func (s *Service) scoreSubmissions(ctx context.Context, c model.Contest, questions map[string]model.Question) ([]model.Submission, error) {
	subs, err := s.store.SubmissionsByContest(ctx, c.ID)
	if err != nil {
		return nil, fmt.Errorf("loading submissions for contest %s: %w", c.ID, err)
	}

	for i := range subs {
		res := scoring.Score(subs[i], questions)
		if err := s.store.SetScore(ctx, subs[i].ID, res.TotalScore, res.MaxScore); err != nil {
			metrics.RecordScoringFailure()
			s.logger.Warn(ctx, "persisting score failed",
				logger.String("submission_id", subs[i].ID),
				logger.Error(err),
			)
			continue
		}
		metrics.RecordSubmissionScored()
		subs[i].TotalScore = res.TotalScore
		subs[i].MaxScore = res.MaxScore
	}
	return subs, nil
}

func (s *Service) writeRanks(ctx context.Context, c model.Contest, subs []model.Submission) {
	byUser := make(map[string]string, len(subs))
	for _, sub := range subs {
		byUser[sub.UserID] = sub.ID
	}
	for _, entry := range ranking.Rank(subs) {
		if err := s.store.SetRank(ctx, byUser[entry.UserID], entry.Rank); err != nil {
			s.logger.Warn(ctx, "persisting rank failed",
				logger.String("contest_id", c.ID),
				logger.String("user_id", entry.UserID),
				logger.Error(err),
			)
		}
	}
}

// complete moves the contest out of calculating. Losing the optimistic
// check means a duplicate run already completed it, which is fine.
func (s *Service) complete(ctx context.Context, c model.Contest) error {
	won, err := s.store.CompareAndSetStatus(ctx, c.ID, model.StatusCalculating, model.StatusCompleted)
	if err != nil {
		return fmt.Errorf("completing contest %s: %w", c.ID, err)
	}
	if !won {
		current, loadErr := s.store.Contest(ctx, c.ID)
		if loadErr == nil && current.Status == model.StatusCompleted {
			return nil
		}
		metrics.RecordTransitionConflict()
		return nil
	}

	metrics.RecordTransition(string(model.StatusCalculating), string(model.StatusCompleted))
	s.publish(ctx, c, model.StatusCalculating, model.StatusCompleted, settleReason)
	return nil
}

// rescanLoop retries contests stuck in calculating, covering crashes
// between the status write and the settlement run.
func (s *Service) rescanLoop(ctx context.Context) {
	ticker := time.NewTicker(s.rescanInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.rescan(ctx)
		}
	}
}

func (s *Service) rescan(ctx context.Context) {
	stuck, err := s.store.ContestsByStatus(ctx, model.StatusCalculating)
	if err != nil {
		s.logger.Error(ctx, "rescanning calculating contests", logger.Error(err))
		return
	}

	for _, c := range stuck {
		s.logger.Info(ctx, "re-triggering settlement",
			logger.String("contest_id", c.ID),
		)
		s.triggerSettlement(ctx, c, s.lastSnapshot(c.MatchID))
	}
}
