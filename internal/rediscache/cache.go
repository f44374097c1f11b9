// Package rediscache is the shared Redis layer behind the reference store.
// Documents are stored zstd-compressed under a namespaced key.
package rediscache

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/garyellow/programme-matcher/internal/r2client"
)

// KeyPrefix namespaces every key written by this package.
const KeyPrefix = "pm:refdata:"

// Options configures a Cache.
type Options struct {
	Addr     string
	Password string
	DB       int
	// TTL overrides the per-call TTL when positive.
	TTL time.Duration
}

// Cache stores reference documents in Redis. A nil *Cache is a permanent miss.
type Cache struct {
	client redis.UniversalClient
	ttl    time.Duration

	warnedUnavailable atomic.Bool
}

// New connects to Redis and verifies the connection with PING.
func New(ctx context.Context, opts Options) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("rediscache: ping %s: %w", opts.Addr, err)
	}
	return NewFromClient(client, opts.TTL), nil
}

// NewFromClient wraps an existing client.
func NewFromClient(client redis.UniversalClient, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// Key returns the namespaced Redis key of a document key.
func Key(key string) string {
	return KeyPrefix + key
}

// Get returns the document stored under key.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if c == nil || c.client == nil {
		return nil, false, nil
	}
	b, err := c.client.Get(ctx, Key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		c.warnUnavailableOnce(ctx, err)
		return nil, false, fmt.Errorf("rediscache: get %q: %w", key, err)
	}
	if len(b) == 0 {
		return nil, false, nil
	}

	data, err := r2client.Decompress(bytes.NewReader(b))
	if err != nil {
		return nil, false, fmt.Errorf("rediscache: decode %q: %w", key, err)
	}
	c.warnedUnavailable.Store(false)
	return data, true, nil
}

// Set stores data under key.
func (c *Cache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if c == nil || c.client == nil {
		return nil
	}
	if c.ttl > 0 {
		ttl = c.ttl
	}
	compressed, err := r2client.Compress(data)
	if err != nil {
		return fmt.Errorf("rediscache: encode %q: %w", key, err)
	}
	if err := c.client.Set(ctx, Key(key), compressed, ttl).Err(); err != nil {
		c.warnUnavailableOnce(ctx, err)
		return fmt.Errorf("rediscache: set %q: %w", key, err)
	}
	return nil
}

// Delete removes every document key given.
func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	if c == nil || c.client == nil || len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = Key(k)
	}
	if err := c.client.Del(ctx, full...).Err(); err != nil {
		return fmt.Errorf("rediscache: delete: %w", err)
	}
	return nil
}

// Ping checks connectivity.
func (c *Cache) Ping(ctx context.Context) error {
	if c == nil || c.client == nil {
		return errors.New("rediscache: not configured")
	}
	return c.client.Ping(ctx).Err()
}

// Close releases the underlying connection pool.
func (c *Cache) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

func (c *Cache) warnUnavailableOnce(ctx context.Context, err error) {
	if c.warnedUnavailable.CompareAndSwap(false, true) {
		slog.WarnContext(ctx, "Redis unavailable, falling back to source", "error", err)
	}
}
