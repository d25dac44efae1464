// Package events fans contest status changes out to external consumers
// such as notification dispatch and prize distribution.
package events

import (
	"context"
	"sync"

	"github.com/okian/crease/internal/domain/model"
)

// Publisher emits contest status-change payloads.
type Publisher interface {
	Publish(ctx context.Context, change model.StatusChange) error
}

// MemoryPublisher collects changes in memory. Used by tests, the
// simulator, and deployments without a broker.
type MemoryPublisher struct {
	mu      sync.Mutex
	changes []model.StatusChange
}

// NewMemoryPublisher creates an empty in-memory publisher.
func NewMemoryPublisher() *MemoryPublisher {
	return &MemoryPublisher{}
}

func (p *MemoryPublisher) Publish(_ context.Context, change model.StatusChange) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.changes = append(p.changes, change)
	return nil
}

// Changes returns a copy of everything published so far.
func (p *MemoryPublisher) Changes() []model.StatusChange {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]model.StatusChange(nil), p.changes...)
}
