// Package service drives contests through their lifecycle. It consumes
// normalized telemetry, evaluates every affected contest against the
// status machine, persists transitions with an optimistic check, and
// hands contests entering calculation to the settlement orchestrator.
package service

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/okian/crease/internal/adapters/events"
	"github.com/okian/crease/internal/adapters/mq/queue"
	"github.com/okian/crease/internal/adapters/mq/worker"
	"github.com/okian/crease/internal/adapters/repository"
	"github.com/okian/crease/internal/domain/answerkey"
	"github.com/okian/crease/internal/domain/lifecycle"
	"github.com/okian/crease/internal/domain/model"
	"github.com/okian/crease/internal/domain/ranking"
	"github.com/okian/crease/internal/domain/trigger"
	"github.com/okian/crease/pkg/logger"
	"github.com/okian/crease/pkg/metrics"
)

// Service implements the engine behind the HTTP API.
type Service struct {
	mu sync.RWMutex

	// Core components
	store     repository.Store
	publisher events.Publisher
	resolver  *answerkey.Resolver
	guard     trigger.Guard
	lock      *events.SettlementLock
	queue     *queue.InMemoryQueue
	pool      *worker.Pool

	// Configuration
	workerCount    int
	queueSize      int
	guardSize      int
	prematchLead   time.Duration
	rescanInterval time.Duration

	// Last snapshot per match, kept for rescan-triggered settlement.
	snapMu    sync.RWMutex
	snapshots map[string]model.MatchSnapshot

	// State
	started bool
	stopCh  chan struct{}

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the persistence backend.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithPublisher sets the status-change event sink.
func WithPublisher(p events.Publisher) Option {
	return func(s *Service) {
		if p != nil {
			s.publisher = p
		}
	}
}

// WithResolver sets the answer-key resolver.
func WithResolver(r *answerkey.Resolver) Option {
	return func(s *Service) {
		if r != nil {
			s.resolver = r
		}
	}
}

// WithSettlementLock enables the distributed settlement lock for
// deployments running more than one engine instance.
func WithSettlementLock(l *events.SettlementLock) Option {
	return func(s *Service) {
		s.lock = l
	}
}

// WithWorkerCount sets the number of match shards.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the telemetry queue capacity.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithGuardSize bounds the settlement trigger guard.
func WithGuardSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.guardSize = size
		}
	}
}

// WithPrematchLead sets how long before the match start a prematch
// contest opens.
func WithPrematchLead(lead time.Duration) Option {
	return func(s *Service) {
		if lead > 0 {
			s.prematchLead = lead
		}
	}
}

// WithRescanInterval sets how often contests stuck in calculating are
// re-checked. Zero disables the loop.
func WithRescanInterval(interval time.Duration) Option {
	return func(s *Service) {
		s.rescanInterval = interval
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:    runtime.NumCPU() * 4,
		queueSize:      50_000,
		guardSize:      10_000,
		prematchLead:   3 * time.Hour,
		rescanInterval: time.Minute,
		snapshots:      make(map[string]model.MatchSnapshot),
		stopCh:         make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start wires the missing defaults and launches the workers.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	if s.store == nil {
		s.store = repository.NewMemoryStore()
		s.logger.Info(ctx, "using in-memory store")
	}
	if s.publisher == nil {
		s.publisher = events.NewMemoryPublisher()
	}
	if s.resolver == nil {
		s.resolver = answerkey.New()
	}
	s.guard = trigger.NewMemoryGuard(trigger.WithBound(s.guardSize))
	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.pool = worker.NewPool(s.workerCount, s.queue, s, worker.WithLogger(s.logger.Named("workers")))
	s.pool.Start(ctx)

	if s.rescanInterval > 0 {
		go s.rescanLoop(ctx)
	}

	s.started = true
	s.logger.Info(ctx, "contest engine started",
		logger.Int("workers", s.workerCount),
		logger.Int("queue_size", s.queueSize),
		logger.Duration("prematch_lead", s.prematchLead),
	)
	return nil
}

// Stop drains the workers and shuts the service down.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping contest engine...")

	if err := s.pool.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "worker pool shutdown incomplete", logger.Error(err))
	}

	select {
	case <-s.stopCh:
	default:
		close(s.stopCh)
	}

	s.started = false
	s.logger.Info(ctx, "contest engine stopped")
}

// Ingest queues one telemetry update for asynchronous application.
// Returns false when the queue refused it.
func (s *Service) Ingest(ctx context.Context, u queue.Update) bool {
	metrics.RecordTelemetryUpdate()
	for _, a := range u.Anomalies {
		metrics.RecordTelemetryAnomaly(a.Kind)
		s.logger.Warn(ctx, "telemetry anomaly",
			logger.String("match_id", u.MatchID),
			logger.String("kind", a.Kind),
			logger.String("detail", a.Detail),
		)
	}
	return s.queue.Enqueue(ctx, u)
}

// Apply evaluates every contest of a match against one snapshot. It
// runs on a match shard, so calls for one match never overlap.
func (s *Service) Apply(ctx context.Context, u queue.Update) error {
	s.rememberSnapshot(u.MatchID, u.Snapshot)

	contests, err := s.store.ContestsByMatch(ctx, u.MatchID)
	if err != nil {
		return fmt.Errorf("loading contests for match %s: %w", u.MatchID, err)
	}

	for i := range contests {
		s.evaluateContest(ctx, &contests[i], u.Snapshot)
	}
	return nil
}

// evaluateContest runs the status machine for one contest and applies
// the decision. A lost optimistic write means another update already
// advanced the contest; the decision is discarded without retrying so
// settlement cannot double-fire for one transition.
func (s *Service) evaluateContest(ctx context.Context, c *model.Contest, snap model.MatchSnapshot) {
	decision, ok := lifecycle.Evaluate(c.Status, c.Category, snap, time.Now(), s.prematchLead)
	if !ok {
		return
	}

	won, err := s.store.CompareAndSetStatus(ctx, c.ID, c.Status, decision.Next)
	if err != nil {
		s.logger.Error(ctx, "persisting contest transition",
			logger.String("contest_id", c.ID),
			logger.String("to", string(decision.Next)),
			logger.Error(err),
		)
		return
	}
	if !won {
		metrics.RecordTransitionConflict()
		s.logger.Debug(ctx, "transition lost optimistic check",
			logger.String("contest_id", c.ID),
			logger.String("from", string(c.Status)),
		)
		return
	}

	metrics.RecordTransition(string(c.Status), string(decision.Next))
	s.logger.Info(ctx, "contest transitioned",
		logger.String("contest_id", c.ID),
		logger.String("from", string(c.Status)),
		logger.String("to", string(decision.Next)),
		logger.String("reason", decision.Reason),
	)
	s.publish(ctx, *c, c.Status, decision.Next, decision.Reason)

	c.Status = decision.Next

	if decision.Next == model.StatusCalculating {
		s.triggerSettlement(ctx, *c, snap)
	}
}

func (s *Service) publish(ctx context.Context, c model.Contest, from, to model.Status, reason string) {
	change := model.StatusChange{
		ContestID: c.ID,
		MatchID:   c.MatchID,
		Category:  c.RawCategory,
		OldStatus: from,
		NewStatus: to,
		Reason:    reason,
		At:        time.Now(),
	}
	if err := s.publisher.Publish(ctx, change); err != nil {
		s.logger.Error(ctx, "publishing status change",
			logger.String("contest_id", c.ID),
			logger.Error(err),
		)
	}
}

func (s *Service) rememberSnapshot(matchID string, snap model.MatchSnapshot) {
	s.snapMu.Lock()
	defer s.snapMu.Unlock()
	s.snapshots[matchID] = snap
}

func (s *Service) lastSnapshot(matchID string) model.MatchSnapshot {
	s.snapMu.RLock()
	defer s.snapMu.RUnlock()
	return s.snapshots[matchID]
}

// Leaderboard returns a page of the contest's standings plus the total
// participant count. Ranking is recomputed from committed submissions
// on every call; nothing here can go stale.
func (s *Service) Leaderboard(ctx context.Context, contestID string, limit, offset int) ([]ranking.Entry, int, error) {
	metrics.RecordLeaderboardQuery()

	subs, err := s.store.SubmissionsByContest(ctx, contestID)
	if err != nil {
		return nil, 0, fmt.Errorf("loading submissions for contest %s: %w", contestID, err)
	}

	entries := ranking.Rank(subs)
	total := len(entries)
	if offset >= total {
		return []ranking.Entry{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return entries[offset:end], total, nil
}

// UserRank returns one user's standing in a contest.
func (s *Service) UserRank(ctx context.Context, contestID, userID string) (ranking.Entry, error) {
	metrics.RecordLeaderboardQuery()

	subs, err := s.store.SubmissionsByContest(ctx, contestID)
	if err != nil {
		return ranking.Entry{}, fmt.Errorf("loading submissions for contest %s: %w", contestID, err)
	}

	entry, ok := ranking.UserRank(subs, userID)
	if !ok {
		return ranking.Entry{}, fmt.Errorf("user %s in contest %s: %w", userID, contestID, repository.ErrNotFound)
	}
	return entry, nil
}

// Stats returns service counters for the operational endpoint.
func (s *Service) Stats(ctx context.Context) map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]any{
		"started":      s.started,
		"worker_count": s.workerCount,
		"queue_size":   s.queueSize,
	}
	if s.started {
		stats["queue_length"] = s.queue.Len(ctx)
		stats["pending_settlements"] = s.guard.Size()
	}
	return stats
}
