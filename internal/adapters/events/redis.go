package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/okian/crease/internal/domain/model"
)

const defaultChannel = "contest_events"

// RedisPublisher fans status changes out over a Redis pub/sub channel.
type RedisPublisher struct {
	client  *redis.Client
	channel string
}

// PublisherOption applies a configuration option to the RedisPublisher.
type PublisherOption func(*RedisPublisher)

// WithChannel overrides the pub/sub channel name.
func WithChannel(name string) PublisherOption {
	return func(p *RedisPublisher) {
		if name != "" {
			p.channel = name
		}
	}
}

// NewRedisPublisher creates a publisher over an existing client.
func NewRedisPublisher(client *redis.Client, opts ...PublisherOption) *RedisPublisher {
	p := &RedisPublisher{client: client, channel: defaultChannel}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *RedisPublisher) Publish(ctx context.Context, change model.StatusChange) error {
	payload, err := json.Marshal(change)
	if err != nil {
		return fmt.Errorf("encoding status change for contest %s: %w", change.ContestID, err)
	}
	if err := p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
		return fmt.Errorf("publishing status change for contest %s: %w", change.ContestID, err)
	}
	return nil
}

// releaseScript deletes a lock only when the stored token still matches
// the holder's, so an expired lock taken over by another settlement run
// is never released from under it.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
    return redis.call("del", KEYS[1])
else
    return 0
end
`)

// SettlementLock is a distributed per-contest lock backing settlement
// when multiple engine instances share a database. The TTL bounds how
// long a crashed holder can block a retry.
type SettlementLock struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSettlementLock creates a lock manager over an existing client.
func NewSettlementLock(client *redis.Client, ttl time.Duration) *SettlementLock {
	return &SettlementLock{client: client, ttl: ttl}
}

// Acquire tries to take the contest's lock. The returned token must be
// passed to Release; an empty token with a nil error means another
// holder owns the lock.
func (l *SettlementLock) Acquire(ctx context.Context, contestID string) (string, error) {
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, lockKey(contestID), token, l.ttl).Result()
	if err != nil {
		return "", fmt.Errorf("acquiring settlement lock for contest %s: %w", contestID, err)
	}
	if !ok {
		return "", nil
	}
	return token, nil
}

// Release frees the lock if the token still holds it.
func (l *SettlementLock) Release(ctx context.Context, contestID, token string) error {
	if err := releaseScript.Run(ctx, l.client, []string{lockKey(contestID)}, token).Err(); err != nil {
		return fmt.Errorf("releasing settlement lock for contest %s: %w", contestID, err)
	}
	return nil
}

func lockKey(contestID string) string {
	return "crease:settlement:" + contestID
}
