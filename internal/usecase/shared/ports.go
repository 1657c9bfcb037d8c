package shared

import (
	"context"
	"time"

	"cinema-reservation/internal/domain/event"
	"cinema-reservation/internal/infra/lock"
)

type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (*lock.Lock, error)
	AcquireAll(ctx context.Context, keys []string, ttl time.Duration) ([]*lock.Lock, error)
	ReleaseAll(ctx context.Context, locks []*lock.Lock)
}

// EventPublisher never reports delivery failures to the caller.
type EventPublisher interface {
	Publish(ctx context.Context, e event.Event)
}
