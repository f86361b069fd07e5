package redis

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/turtacn/lexclock/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/lexclock/pkg/errors"
)

// ErrLockNotHeld is returned by Unlock when the lease expired or another
// owner holds the lock.
var ErrLockNotHeld = errors.New(errors.ErrCodeValidation, "lock not held by this owner")

// DefaultLockLease is the lease of a lock built without WithLockTTL.
const DefaultLockLease = 30 * time.Second

// DistributedLock is a single-owner, non-blocking lock with a lease. The
// lease is not renewed; work under the lock must finish within it.
type DistributedLock interface {
	TryLock(ctx context.Context) (bool, error)
	Unlock(ctx context.Context) error
}

type LockOption func(*mutex)

// WithLockTTL sets the lease. Non-positive values keep DefaultLockLease.
func WithLockTTL(ttl time.Duration) LockOption {
	return func(m *mutex) {
		if ttl > 0 {
			m.lease = ttl
		}
	}
}

type mutex struct {
	client *Client
	key    string
	owner  string
	lease  time.Duration
	logger logging.Logger
}

// releaseScript deletes the key only while it still holds our owner token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// NewMutex returns a lock named name, stored at "lexclock:lock:<name>".
func NewMutex(client *Client, name string, logger logging.Logger, opts ...LockOption) DistributedLock {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	m := &mutex{
		client: client,
		key:    "lexclock:lock:" + name,
		owner:  uuid.NewString(),
		lease:  DefaultLockLease,
		logger: logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// TryLock takes the lock if it is free. It never waits.
func (m *mutex) TryLock(ctx context.Context) (bool, error) {
	rdb, err := m.client.conn()
	if err != nil {
		return false, err
	}
	ok, err := rdb.SetNX(ctx, m.key, m.owner, m.lease).Result()
	if err != nil {
		return false, errors.Wrap(err, errors.ErrCodeCacheError, "failed to set lock").WithDetail(m.key)
	}
	if ok {
		m.logger.Debug("Acquired lock", logging.String("key", m.key), logging.Duration("lease", m.lease))
	}
	return ok, nil
}

func (m *mutex) Unlock(ctx context.Context) error {
	rdb, err := m.client.conn()
	if err != nil {
		return err
	}
	n, err := releaseScript.Run(ctx, rdb, []string{m.key}, m.owner).Int64()
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "failed to release lock").WithDetail(m.key)
	}
	if n == 0 {
		return ErrLockNotHeld.WithDetail(m.key)
	}
	m.logger.Debug("Released lock", logging.String("key", m.key))
	return nil
}
