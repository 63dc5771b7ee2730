package catalogue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// SharedCache publishes a parsed catalogue to Redis so sibling replay-engine
// processes behind a load balancer can skip re-parsing it. A Redis outage
// must never fail startup: every method degrades to a cache miss on error.
type SharedCache struct {
	client *redis.Client
	log    zerolog.Logger
	ttl    time.Duration
}

// NewSharedCache connects to Redis at addr/db. Returns an error only if the
// initial ping fails, so callers can choose to fall back to the warm cache.
func NewSharedCache(addr string, db int, ttl time.Duration, log zerolog.Logger) (*SharedCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SharedCache{client: client, log: log, ttl: ttl}, nil
}

func redisKey(key string) string { return "mdreplay:catalogue:" + key }

// Get returns the cached events for key, if present and still valid.
func (c *SharedCache) Get(ctx context.Context, key string) ([]Event, bool) {
	val, err := c.client.Get(ctx, redisKey(key)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.Warn().Err(err).Str("key", key).Msg("shared catalogue cache get failed")
		}
		return nil, false
	}
	var events []Event
	if err := json.Unmarshal(val, &events); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("shared catalogue cache decode failed")
		return nil, false
	}
	return events, true
}

// Put stores events under key with the configured TTL.
func (c *SharedCache) Put(ctx context.Context, key string, events []Event) {
	data, err := json.Marshal(events)
	if err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("shared catalogue cache encode failed")
		return
	}
	if err := c.client.Set(ctx, redisKey(key), data, c.ttl).Err(); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("shared catalogue cache put failed")
	}
}

// Close releases the underlying Redis connection pool.
func (c *SharedCache) Close() error { return c.client.Close() }
