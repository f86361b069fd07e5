package redis

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/turtacn/lexclock/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/lexclock/pkg/errors"
)

var (
	ErrCacheMiss           = errors.New(errors.ErrCodeNotFound, "cache miss")
	ErrSerializationFailed = errors.New(errors.ErrCodeSerialization, "serialization failed")
)

// Cache stores JSON values under a key prefix.
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	// GetOrSet reads key into dest. On a miss it runs loader once per key
	// across concurrent callers and stores the result; loaded reports whether
	// this call's value came from loader.
	GetOrSet(ctx context.Context, key string, dest interface{}, ttl time.Duration, loader func(ctx context.Context) (interface{}, error)) (loaded bool, err error)
	DeleteByPrefix(ctx context.Context, prefix string) (int64, error)
}

type jsonCache struct {
	client     *Client
	logger     logging.Logger
	prefix     string
	defaultTTL time.Duration
	group      singleflight.Group
}

type CacheOption func(*jsonCache)

func WithPrefix(prefix string) CacheOption {
	return func(c *jsonCache) { c.prefix = prefix }
}

func WithDefaultTTL(ttl time.Duration) CacheOption {
	return func(c *jsonCache) { c.defaultTTL = ttl }
}

// NewRedisCache returns a Cache over client. Keys default to the "lexclock:"
// prefix and a 24h TTL.
func NewRedisCache(client *Client, log logging.Logger, opts ...CacheOption) Cache {
	if log == nil {
		log = logging.NewNopLogger()
	}
	c := &jsonCache{
		client:     client,
		logger:     log.Named("cache"),
		prefix:     "lexclock:",
		defaultTTL: 24 * time.Hour,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *jsonCache) Get(ctx context.Context, key string, dest interface{}) error {
	rdb, err := c.client.conn()
	if err != nil {
		return err
	}
	raw, err := rdb.Get(ctx, c.prefix+key).Bytes()
	switch {
	case stderrors.Is(err, redis.Nil):
		return ErrCacheMiss
	case err != nil:
		return errors.Wrap(err, errors.ErrCodeCacheError, "failed to get from cache").WithDetail(key)
	}
	return decode(raw, dest)
}

func (c *jsonCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return ErrSerializationFailed.WithCause(err)
	}
	rdb, err := c.client.conn()
	if err != nil {
		return err
	}
	if ttl == 0 {
		ttl = c.defaultTTL
	}
	if err := rdb.Set(ctx, c.prefix+key, raw, spread(ttl)).Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "failed to set cache").WithDetail(key)
	}
	return nil
}

func (c *jsonCache) GetOrSet(ctx context.Context, key string, dest interface{}, ttl time.Duration, loader func(ctx context.Context) (interface{}, error)) (bool, error) {
	err := c.Get(ctx, key, dest)
	if !stderrors.Is(err, ErrCacheMiss) {
		return false, err
	}

	// Callers that join an in-flight load receive the leader's encoded value.
	ran := false
	raw, err, _ := c.group.Do(key, func() (interface{}, error) {
		v, err := loader(ctx)
		if err != nil {
			return nil, err
		}
		ran = true
		if err := c.Set(ctx, key, v, ttl); err != nil {
			c.logger.Warn("Failed to store loaded value", logging.String("key", key), logging.Err(err))
		}
		b, err := json.Marshal(v)
		if err != nil {
			return nil, ErrSerializationFailed.WithCause(err)
		}
		return b, nil
	})
	if err != nil {
		return false, err
	}
	return ran, decode(raw.([]byte), dest)
}

func (c *jsonCache) DeleteByPrefix(ctx context.Context, prefix string) (int64, error) {
	rdb, err := c.client.conn()
	if err != nil {
		return 0, err
	}
	var deleted int64
	iter := rdb.Scan(ctx, 0, c.prefix+prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		n, err := rdb.Del(ctx, iter.Val()).Result()
		if err != nil {
			return deleted, errors.Wrap(err, errors.ErrCodeCacheError, "failed to delete cache key")
		}
		deleted += n
	}
	if err := iter.Err(); err != nil {
		return deleted, errors.Wrap(err, errors.ErrCodeCacheError, "failed to scan cache keys")
	}
	return deleted, nil
}

func decode(raw []byte, dest interface{}) error {
	if err := json.Unmarshal(raw, dest); err != nil {
		return ErrSerializationFailed.WithCause(err)
	}
	return nil
}

// spread moves ttl by up to 10% either way so keys written together do not
// expire together.
func spread(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return 0
	}
	return ttl + time.Duration(float64(ttl)*0.1*(rand.Float64()*2-1))
}
