// Package store provides the persistence backends for the verdict pipeline:
// a Redis-backed cache and keyword set, and a Postgres alternative for
// deployments without Redis.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/keyublog/gaepan-core/internal/ports"
)

const (
	// keywordSetKey holds the learned single-word search terms.
	keywordSetKey = "gaepan:keywords"

	// cacheKeyPrefix namespaces precedent cache entries.
	cacheKeyPrefix = "gaepan:precedent:"
)

// RedisStore implements the precedent cache and keyword store on Redis.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

var (
	_ ports.CacheStore   = (*RedisStore)(nil)
	_ ports.KeywordStore = (*RedisStore)(nil)
)

// NewRedisStore creates a Redis client from a URL and verifies connectivity.
// Cache entries expire after ttl; zero means no expiry.
func NewRedisStore(url string, ttl time.Duration) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	rdb := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &RedisStore{rdb: rdb, ttl: ttl}, nil
}

// Get returns the cached value for key and whether it was present.
func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := s.rdb.Get(ctx, cacheKeyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get: %w", err)
	}
	return val, true, nil
}

// Set stores value under key with the configured TTL.
func (s *RedisStore) Set(ctx context.Context, key, value string) error {
	if err := s.rdb.Set(ctx, cacheKeyPrefix+key, value, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// List returns all learned keywords.
func (s *RedisStore) List(ctx context.Context) ([]string, error) {
	words, err := s.rdb.SMembers(ctx, keywordSetKey).Result()
	if err != nil {
		return nil, fmt.Errorf("redis smembers: %w", err)
	}
	return words, nil
}

// Append adds word to the keyword set. Duplicates are a no-op.
func (s *RedisStore) Append(ctx context.Context, word string) error {
	if err := s.rdb.SAdd(ctx, keywordSetKey, word).Err(); err != nil {
		return fmt.Errorf("redis sadd: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (s *RedisStore) Close() error { return s.rdb.Close() }
