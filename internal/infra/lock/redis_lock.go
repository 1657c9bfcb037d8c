package lock

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"cinema-reservation/internal/infra/metrics"
	"cinema-reservation/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var (
	ErrLockBusy        = errs.New("lock is held by another owner")
	ErrLockUnavailable = errs.New("lock store unavailable")
	ErrInvalidTTL      = errs.New("lock ttl must be positive")
)

// Deletes the key only while it still holds the caller's token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Lock is proof of ownership of one key until it is released or its TTL lapses.
type Lock struct {
	Key   string
	Token string
}

type RedisLockManager struct {
	client  redis.UniversalClient
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewRedisLockManager(client redis.UniversalClient, logger *slog.Logger, m *metrics.Metrics) *RedisLockManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisLockManager{
		client:  client,
		logger:  logger,
		metrics: m,
	}
}

func (m *RedisLockManager) Acquire(ctx context.Context, key string, ttl time.Duration) (*Lock, error) {
	if ttl <= 0 {
		return nil, ErrInvalidTTL
	}

	token := uuid.NewString()
	ok, err := m.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		m.metrics.LockAcquire("error")
		return nil, errs.Mark(errs.Wrapf(err, "acquire %s", key), ErrLockUnavailable)
	}
	if !ok {
		m.metrics.LockAcquire("busy")
		m.logger.Debug("lock busy", "key", key)
		return nil, ErrLockBusy
	}

	m.metrics.LockAcquire("acquired")
	m.logger.Debug("lock acquired", "key", key, "ttl", ttl)
	return &Lock{Key: key, Token: token}, nil
}

// Release reports false when the lock had already expired or been taken over;
// that is not an error.
func (m *RedisLockManager) Release(ctx context.Context, l *Lock) (bool, error) {
	if l == nil {
		return false, nil
	}

	res, err := releaseScript.Run(ctx, m.client, []string{l.Key}, l.Token).Int()
	if err != nil {
		return false, errs.Mark(errs.Wrapf(err, "release %s", l.Key), ErrLockUnavailable)
	}

	released := res == 1
	if !released {
		m.logger.Warn("lock not released: not owner or expired", "key", l.Key)
	}
	return released, nil
}

// AcquireAll takes every key in sorted order. On the first failure it gives
// back everything acquired so far and returns that failure.
func (m *RedisLockManager) AcquireAll(ctx context.Context, keys []string, ttl time.Duration) ([]*Lock, error) {
	sorted := CanonicalKeys(keys)
	acquired := make([]*Lock, 0, len(sorted))

	for _, key := range sorted {
		l, err := m.Acquire(ctx, key, ttl)
		if err != nil {
			if len(acquired) > 0 {
				m.logger.Warn("multi-key acquire failed, rolling back",
					"failed_key", key,
					"rolled_back", len(acquired))
			}
			// The caller's ctx may be the reason we failed.
			m.ReleaseAll(context.WithoutCancel(ctx), acquired)
			return nil, err
		}
		acquired = append(acquired, l)
	}

	return acquired, nil
}

func (m *RedisLockManager) ReleaseAll(ctx context.Context, locks []*Lock) {
	for _, l := range locks {
		if _, err := m.Release(ctx, l); err != nil {
			m.logger.Error("failed to release lock", "key", l.Key, "error", err.Error())
		}
	}
}

// CanonicalKeys returns keys de-duplicated and sorted. Every caller acquiring
// more than one key must use this order.
func CanonicalKeys(keys []string) []string {
	out := slices.Clone(keys)
	slices.Sort(out)
	return slices.Compact(out)
}

func UnitKey(unitID uuid.UUID) string {
	return "lock:unit:" + unitID.String()
}

func DebounceKey(fingerprint string) string {
	return "debounce:" + fingerprint
}
