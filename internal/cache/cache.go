// Package cache is a read-through Redis cache for immutable upstream
// payloads (test definitions and question batches). It is strictly an
// optimization: every method degrades to a miss on Redis errors, and a
// nil *Cache is valid and always misses, so the gateway runs unchanged
// without Redis configured.
package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Cache wraps a Redis client with JSON get/set helpers.
type Cache struct {
	rdb *redis.Client
	ttl time.Duration
	log zerolog.Logger
}

// Connect creates and validates a Redis-backed cache.
func Connect(ctx context.Context, redisURL string, ttl time.Duration, log zerolog.Logger) (*Cache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}

	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	log.Info().
		Str("addr", opt.Addr).
		Int("db", opt.DB).
		Dur("ttl", ttl).
		Msg("Redis cache connected")

	return &Cache{
		rdb: rdb,
		ttl: ttl,
		log: log.With().Str("component", "cache").Logger(),
	}, nil
}

// Close releases the underlying Redis connection.
func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.rdb.Close()
}

// TestKey returns the cache key for a test definition.
func TestKey(testID string) string {
	return fmt.Sprintf("test:%s:definition", testID)
}

// QuestionsKey returns the cache key for a batch of question ids. The
// joined id list is hashed to keep keys bounded for large tests.
func QuestionsKey(ids []string) string {
	sum := sha1.Sum([]byte(strings.Join(ids, ",")))
	return fmt.Sprintf("questions:%s:batch", hex.EncodeToString(sum[:]))
}

// GetJSON loads key into dst. Returns false on miss or any Redis/decode
// failure; callers always fall through to the upstream fetch.
func (c *Cache) GetJSON(ctx context.Context, key string, dst interface{}) bool {
	if c == nil {
		return false
	}

	raw, err := c.rdb.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			c.log.Warn().Err(err).Str("key", key).Msg("Cache read failed")
		}
		return false
	}

	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("Cache payload corrupt, evicting")
		c.rdb.Del(ctx, key)
		return false
	}
	return true
}

// SetJSON stores v under key with the configured TTL. Failures are
// logged and swallowed.
func (c *Cache) SetJSON(ctx context.Context, key string, v interface{}) {
	if c == nil {
		return
	}

	raw, err := json.Marshal(v)
	if err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("Cache encode failed")
		return
	}

	if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("Cache write failed")
	}
}
