// Package queue buffers inbound telemetry updates between the HTTP
// intake and the match workers. Enqueue never blocks; when the buffer
// is full the update is dropped and counted, because a fresher snapshot
// for the same match is always on its way.
package queue

import (
	"context"
	"sync"

	"github.com/okian/crease/internal/domain/model"
	"github.com/okian/crease/pkg/metrics"
)

const defaultCapacity = 50_000

// Update is one normalized telemetry observation for a match.
type Update struct {
	MatchID   string
	Snapshot  model.MatchSnapshot
	Anomalies []model.Anomaly
}

// Queue provides non-blocking enqueue and channel-based dequeue of
// telemetry updates.
type Queue interface {
	// Enqueue adds an update. Returns false when the queue is full or
	// closed and the update was dropped.
	Enqueue(ctx context.Context, u Update) bool

	// Dequeue returns a channel receiving updates until the queue
	// closes.
	Dequeue(ctx context.Context) <-chan Update

	// Len returns the number of buffered updates.
	Len(ctx context.Context) int

	// Close stops the queue; buffered updates still drain.
	Close() error
}

// InMemoryQueue implements Queue over a buffered channel.
type InMemoryQueue struct {
	updates  chan Update
	capacity int

	mu     sync.RWMutex
	closed bool
}

// Option applies a configuration option to the InMemoryQueue.
type Option func(*InMemoryQueue)

// WithCapacity sets the queue's buffer capacity.
func WithCapacity(capacity int) Option {
	return func(q *InMemoryQueue) {
		if capacity > 0 {
			q.capacity = capacity
		}
	}
}

// NewInMemoryQueue creates an in-memory telemetry queue.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{capacity: defaultCapacity}
	for _, opt := range opts {
		opt(q)
	}
	q.updates = make(chan Update, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)
	return q
}

func (q *InMemoryQueue) Enqueue(ctx context.Context, u Update) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueDrop()
		return false
	}

	select {
	case q.updates <- u:
		metrics.UpdateQueueSize(len(q.updates))
		return true
	case <-ctx.Done():
		metrics.RecordQueueDrop()
		return false
	default:
		metrics.RecordQueueDrop()
		return false
	}
}

func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan Update {
	out := make(chan Update)
	go func() {
		defer close(out)
		for u := range q.updates {
			select {
			case out <- u:
				metrics.UpdateQueueSize(len(q.updates))
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

func (q *InMemoryQueue) Len(_ context.Context) int {
	return len(q.updates)
}

// Close stops new enqueues and lets consumers drain the buffer.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.updates)
	q.closed = true
	return nil
}
