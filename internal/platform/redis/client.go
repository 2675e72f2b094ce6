// Package redis connects the verdict cache to its backing store.
package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"credval/internal/platform/config"
)

// Client wraps go-redis so the transport layer can use it as a readiness
// probe while the cache uses the embedded client directly.
type Client struct {
	*redis.Client
}

// New dials Redis and verifies the connection before returning. A blank URL
// means caching is disabled; both return values are nil and the service runs
// without a cache.
func New(ctx context.Context, cfg config.Redis) (*Client, error) {
	if cfg.URL == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns
	opts.DialTimeout = cfg.DialTimeout
	opts.ReadTimeout = cfg.ReadTimeout
	opts.WriteTimeout = cfg.WriteTimeout

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &Client{Client: client}, nil
}

// Health reports whether the cache store is reachable. Wired into /healthz.
func (c *Client) Health(ctx context.Context) error {
	return c.Ping(ctx).Err()
}

// Close releases the connection pool.
func (c *Client) Close() error {
	return c.Client.Close()
}
