// Package cache stores assembled records keyed by the fingerprint of their
// normalized label text.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/joseph-ayodele/awb-extractor/constants"
	"github.com/joseph-ayodele/awb-extractor/internal/entity"
)

const keyPrefix = "awb:record:"

// Entry is a cached assembly result.
type Entry struct {
	Record    entity.AWBRecord  `json:"record"`
	Defaulted []constants.Field `json:"defaulted,omitempty"`
}

// RecordCache is the lookup the pipeline consults before running the rule engine.
type RecordCache interface {
	Get(ctx context.Context, fingerprint string) (Entry, bool, error)
	Set(ctx context.Context, fingerprint string, entry Entry) error
	Close() error
}

// RedisCache is a RecordCache backed by Redis string keys with a TTL.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewRedisCache wraps an existing client. A zero ttl keeps entries forever.
func NewRedisCache(client *redis.Client, ttl time.Duration, logger *slog.Logger) *RedisCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisCache{client: client, ttl: ttl, logger: logger}
}

// Dial connects to addr and verifies the connection with PING.
func Dial(ctx context.Context, addr, password string, db int, ttl time.Duration, logger *slog.Logger) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return NewRedisCache(client, ttl, logger), nil
}

func key(fingerprint string) string { return keyPrefix + fingerprint }

func (c *RedisCache) Get(ctx context.Context, fingerprint string) (Entry, bool, error) {
	b, err := c.client.Get(ctx, key(fingerprint)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("cache get: %w", err)
	}
	var entry Entry
	if err := json.Unmarshal(b, &entry); err != nil {
		// corrupt entry: treat as a miss and let the caller overwrite it
		c.logger.Warn("cache.entry.corrupt", "fingerprint", fingerprint, "error", err)
		return Entry{}, false, nil
	}
	return entry, true, nil
}

func (c *RedisCache) Set(ctx context.Context, fingerprint string, entry Entry) error {
	b, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("cache marshal: %w", err)
	}
	if err := c.client.Set(ctx, key(fingerprint), b, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

func (c *RedisCache) Close() error { return c.client.Close() }

// Noop never hits. It is used when no cache address is configured.
type Noop struct{}

func (Noop) Get(context.Context, string) (Entry, bool, error) { return Entry{}, false, nil }

func (Noop) Set(context.Context, string, Entry) error { return nil }

func (Noop) Close() error { return nil }
