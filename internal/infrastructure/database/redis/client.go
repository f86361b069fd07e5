// Package redis shares resolved holiday sets and warm-up locks between
// lexclock replicas.
package redis

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/turtacn/lexclock/internal/config"
	"github.com/turtacn/lexclock/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/lexclock/pkg/errors"
)

var ErrClientClosed = errors.New(errors.ErrCodeServiceUnavailable, "redis client is closed")

// Client owns a redis.UniversalClient. A single address yields a standalone
// client; a comma-separated list yields a cluster client.
type Client struct {
	rdb    redis.UniversalClient
	opts   redis.UniversalOptions
	logger logging.Logger
	closed atomic.Bool
}

// NewClient connects and pings once within the dial timeout.
func NewClient(cfg config.RedisConfig, logger logging.Logger) (*Client, error) {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	opts := universalOptions(cfg)
	rdb := redis.NewUniversalClient(&opts)

	ctx, cancel := context.WithTimeout(context.Background(), opts.DialTimeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, errors.Wrap(err, errors.ErrCodeServiceUnavailable, "failed to connect to redis").
			WithDetail(cfg.Addr)
	}

	logger.Info("Connected to Redis",
		logging.String("addr", cfg.Addr),
		logging.Int("db", opts.DB),
		logging.Int("pool_size", opts.PoolSize))
	return &Client{rdb: rdb, opts: opts, logger: logger}, nil
}

// NewClientFromUniversal wraps an existing client without pinging it.
func NewClientFromUniversal(rdb redis.UniversalClient, logger logging.Logger) *Client {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Client{rdb: rdb, logger: logger}
}

func universalOptions(cfg config.RedisConfig) redis.UniversalOptions {
	orDefault := func(v, def int) int {
		if v == 0 {
			return def
		}
		return v
	}
	opts := redis.UniversalOptions{
		Addrs:        splitAddrs(cfg.Addr),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     orDefault(cfg.PoolSize, config.DefaultRedisPoolSize),
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	for _, d := range []*time.Duration{&opts.DialTimeout, &opts.ReadTimeout, &opts.WriteTimeout} {
		if *d == 0 {
			*d = config.DefaultRedisTimeout
		}
	}
	return opts
}

func splitAddrs(addr string) []string {
	var addrs []string
	for _, a := range strings.Split(addr, ",") {
		if a = strings.TrimSpace(a); a != "" {
			addrs = append(addrs, a)
		}
	}
	return addrs
}

// conn returns the live connection, or ErrClientClosed after Close.
func (c *Client) conn() (redis.UniversalClient, error) {
	if c.closed.Load() {
		return nil, ErrClientClosed
	}
	return c.rdb, nil
}

func (c *Client) Ping(ctx context.Context) error {
	rdb, err := c.conn()
	if err != nil {
		return err
	}
	return rdb.Ping(ctx).Err()
}

// Close is idempotent.
func (c *Client) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	if err := c.rdb.Close(); err != nil {
		c.logger.Error("Failed to close Redis client", logging.Err(err))
		return err
	}
	c.logger.Info("Closed Redis client")
	return nil
}

func (c *Client) IsCluster() bool {
	_, ok := c.rdb.(*redis.ClusterClient)
	return ok
}
