// Package worker applies telemetry updates to contests. Updates for
// one match must be applied in arrival order, so the pool shards by
// match id: every update for a match lands on the same worker, while
// distinct matches proceed in parallel.
package worker

import (
	"context"
	"fmt"
	"hash/fnv"
	"runtime"
	"strconv"
	"time"

	"github.com/okian/crease/internal/adapters/mq/queue"
	"github.com/okian/crease/pkg/logger"
	"github.com/okian/crease/pkg/metrics"
)

const (
	defaultWorkerMultiplier = 4
	poolShutdownTimeout     = 30 * time.Second
	shardBuffer             = 256
)

// Applier evaluates every contest of a match against one snapshot.
type Applier interface {
	Apply(ctx context.Context, u queue.Update) error
}

// Queue defines how the pool receives updates.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Update
	Close() error
}

// Pool runs a fixed set of shard workers over the telemetry queue.
type Pool struct {
	queue   Queue
	applier Applier
	shards  []chan queue.Update
	done    []chan struct{}

	logger logger.Logger
}

// Option applies a configuration option to the Pool.
type Option func(*Pool)

// WithLogger sets a custom logger for the pool.
func WithLogger(l logger.Logger) Option {
	return func(p *Pool) {
		if l != nil {
			p.logger = l
		}
	}
}

// NewPool creates a pool with the given shard count. A count below one
// defaults to a multiple of the CPU count.
func NewPool(shardCount int, q Queue, applier Applier, opts ...Option) *Pool {
	if shardCount < 1 {
		shardCount = runtime.NumCPU() * defaultWorkerMultiplier
	}

	p := &Pool{
		queue:   q,
		applier: applier,
		shards:  make([]chan queue.Update, shardCount),
		done:    make([]chan struct{}, shardCount),
		logger:  logger.Get().Named("worker-pool"),
	}
	for _, opt := range opts {
		opt(p)
	}

	for i := range p.shards {
		p.shards[i] = make(chan queue.Update, shardBuffer)
		p.done[i] = make(chan struct{})
	}

	metrics.UpdateWorkerCount(shardCount)
	return p
}

// Start launches the dispatcher and one goroutine per shard. It returns
// immediately; workers run until the queue closes or ctx is canceled.
func (p *Pool) Start(ctx context.Context) {
	for i := range p.shards {
		go p.runShard(ctx, i)
	}
	go p.dispatch(ctx)
}

// dispatch routes each update to the shard owning its match.
func (p *Pool) dispatch(ctx context.Context) {
	defer func() {
		for _, shard := range p.shards {
			close(shard)
		}
	}()

	for u := range p.queue.Dequeue(ctx) {
		select {
		case p.shards[p.shardFor(u.MatchID)] <- u:
		case <-ctx.Done():
			return
		}
	}
}

func (p *Pool) runShard(ctx context.Context, id int) {
	defer close(p.done[id])

	log := p.logger.Named("shard-" + strconv.Itoa(id))
	for u := range p.shards[id] {
		start := time.Now()
		if err := p.applier.Apply(ctx, u); err != nil {
			log.Error(ctx, "applying telemetry update",
				logger.String("match_id", u.MatchID),
				logger.Error(err),
			)
		}
		metrics.RecordWorkerApplyDuration(time.Since(start).Seconds())
	}
}

// shardFor hashes a match id onto a shard. FNV keeps the mapping stable
// for the life of the pool, which is what serializes per-match order.
func (p *Pool) shardFor(matchID string) int {
	h := fnv.New32a()
	h.Write([]byte(matchID))
	return int(h.Sum32() % uint32(len(p.shards)))
}

// Shutdown closes the queue and waits for the shards to drain.
func (p *Pool) Shutdown(ctx context.Context) error {
	if err := p.queue.Close(); err != nil {
		p.logger.Error(ctx, "closing telemetry queue", logger.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for i, done := range p.done {
		select {
		case <-done:
		case <-shutdownCtx.Done():
			p.logger.Warn(ctx, "shard shutdown timed out", logger.Int("shard", i))
			return fmt.Errorf("shard %d shutdown: %w", i, shutdownCtx.Err())
		}
	}
	return nil
}
