// Package redis provides a Redis-backed scan result cache.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ochairo/golicense/internal/domain/entities"
	"github.com/ochairo/golicense/internal/domain/interfaces/gateways"
)

const keyPrefix = "golicense:scan:"

// DefaultTTL bounds how long cached results live
const DefaultTTL = 24 * time.Hour

// ResultCache implements gateways.ResultCache on a Redis client.
// Entries are keyed by content hash, corpus digest and threshold, so
// a hit is valid for any file with the same bytes.
type ResultCache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// Ensure ResultCache implements ResultCache interface
var _ gateways.ResultCache = (*ResultCache)(nil)

// NewResultCache wraps client; ttl <= 0 selects DefaultTTL
func NewResultCache(client redis.UniversalClient, ttl time.Duration) *ResultCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &ResultCache{client: client, ttl: ttl}
}

// Dial connects to the Redis server at url (redis://host:port/db) and checks it responds
func Dial(ctx context.Context, url string, ttl time.Duration) (*ResultCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewResultCache(client, ttl), nil
}

// Get returns the cached result for key. A miss is (nil, false, nil).
func (c *ResultCache) Get(ctx context.Context, key string) (*entities.FileScanResult, bool, error) {
	val, err := c.client.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}

	var result entities.FileScanResult
	if err := json.Unmarshal(val, &result); err != nil {
		return nil, false, fmt.Errorf("decode cached result: %w", err)
	}
	return &result, true, nil
}

// Set stores result under key with the cache TTL
func (c *ResultCache) Set(ctx context.Context, key string, result *entities.FileScanResult) error {
	if key == "" || result == nil {
		return nil
	}

	val, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	if err := c.client.Set(ctx, keyPrefix+key, val, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Close releases the client connection
func (c *ResultCache) Close() error {
	return c.client.Close()
}
