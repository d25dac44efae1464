// Package trigger guards settlement against duplicate invocation. The
// state machine can fire the same transition twice under concurrent
// telemetry or at-least-once delivery; the guard makes sure only one
// settlement run per contest starts, while still allowing a retry after
// a failed run.
package trigger

import (
	"context"
	"sync"
	"sync/atomic"
)

// Guard tracks in-flight and completed settlement triggers.
type Guard interface {
	// Claim atomically records a settlement trigger for the contest.
	// It returns true when the claim is new and the caller should run
	// settlement, false when another trigger already holds it.
	Claim(ctx context.Context, contestID string) bool

	// Release withdraws a claim so the contest can be settled again.
	// Used when a claimed run failed before completing.
	Release(ctx context.Context, contestID string)

	Size() int64
}

// memoryGuard is a bounded in-memory Guard. When the bound is reached
// the oldest claim is evicted; settlement stays safe because the
// orchestrator itself is idempotent.
type memoryGuard struct {
	mu      sync.Mutex
	claimed map[string]struct{}
	order   []string
	bound   int
	size    atomic.Int64
}

// Option configures the in-memory guard.
type Option func(*memoryGuard)

// WithBound caps the number of remembered claims. A bound of zero or
// less keeps every claim for the process lifetime.
func WithBound(n int) Option {
	return func(g *memoryGuard) {
		g.bound = n
	}
}

// NewMemoryGuard creates an in-memory Guard.
func NewMemoryGuard(opts ...Option) Guard {
	g := &memoryGuard{
		claimed: make(map[string]struct{}),
		bound:   10_000,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *memoryGuard) Claim(_ context.Context, contestID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, held := g.claimed[contestID]; held {
		return false
	}

	if g.bound > 0 && len(g.claimed) >= g.bound {
		oldest := g.order[0]
		g.order = g.order[1:]
		delete(g.claimed, oldest)
		g.size.Add(-1)
	}

	g.claimed[contestID] = struct{}{}
	g.order = append(g.order, contestID)
	g.size.Add(1)
	return true
}

func (g *memoryGuard) Release(_ context.Context, contestID string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, held := g.claimed[contestID]; !held {
		return
	}
	delete(g.claimed, contestID)
	for i, id := range g.order {
		if id == contestID {
			g.order = append(g.order[:i], g.order[i+1:]...)
			break
		}
	}
	g.size.Add(-1)
}

func (g *memoryGuard) Size() int64 {
	return g.size.Load()
}
