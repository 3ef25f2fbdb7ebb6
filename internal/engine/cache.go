package engine

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultCacheTTL is how long a fetched page body stays fresh.
const DefaultCacheTTL = 5 * time.Minute

const cacheKeyPrefix = "yt:"

// Cache holds fetched page bodies keyed by exact request URL.
// L1 is an in-process sync.Map; L2 is an optional Redis that survives restarts.
// Entries are evicted lazily: a lookup at or past fetchedAt+ttl deletes the
// entry and reports a miss.
type Cache struct {
	l1  sync.Map      // url → *cacheEntry
	rdb *redis.Client // nil = L1 only
	ttl time.Duration
	now func() time.Time

	hits   atomic.Int64
	misses atomic.Int64
}

// cacheEntry is an immutable snapshot; overwrites replace the pointer.
type cacheEntry struct {
	URL       string    `json:"url"`
	Body      string    `json:"body"`
	FetchedAt time.Time `json:"fetched_at"`
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) CacheOption {
	return func(c *Cache) { c.now = now }
}

// WithTTL overrides DefaultCacheTTL.
func WithTTL(ttl time.Duration) CacheOption {
	return func(c *Cache) { c.ttl = ttl }
}

// WithRedis enables the L2 tier.
func WithRedis(rdb *redis.Client) CacheOption {
	return func(c *Cache) { c.rdb = rdb }
}

// NewCache returns an empty cache with DefaultCacheTTL.
func NewCache(opts ...CacheOption) *Cache {
	c := &Cache{ttl: DefaultCacheTTL, now: time.Now}
	for _, o := range opts {
		o(c)
	}
	return c
}

// ConnectRedis parses redisURL and pings the server.
// Returns nil without error when redisURL is empty.
func ConnectRedis(ctx context.Context, redisURL string) (*redis.Client, error) {
	if redisURL == "" {
		return nil, nil
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("cache: invalid redis URL: %w", err)
	}
	rdb := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("cache: redis unreachable: %w", err)
	}
	slog.Info("cache: L2 redis connected", slog.String("addr", opts.Addr))
	return rdb, nil
}

// CacheKey builds a deterministic L2 key from parts.
func CacheKey(parts ...string) string {
	joined := strings.Join(parts, "|")
	hash := sha256.Sum256([]byte(joined))
	return fmt.Sprintf("%s%x", cacheKeyPrefix, hash[:12])
}

func (c *Cache) fresh(e *cacheEntry) bool {
	return c.now().Sub(e.FetchedAt) < c.ttl
}

// Get returns the cached body for url. L2 hits are copied into L1 with their
// original fetch time, so the TTL is measured from the first fetch.
func (c *Cache) Get(ctx context.Context, url string) (string, bool) {
	if val, ok := c.l1.Load(url); ok {
		e := val.(*cacheEntry)
		if c.fresh(e) {
			c.hits.Add(1)
			slog.Debug("cache: L1 hit", slog.String("url", url))
			return e.Body, true
		}
		c.l1.CompareAndDelete(url, val)
	}

	if c.rdb != nil {
		data, err := c.rdb.Get(ctx, CacheKey(url)).Bytes()
		if err == nil {
			var e cacheEntry
			if json.Unmarshal(data, &e) == nil && e.URL == url && c.fresh(&e) {
				c.l1.Store(url, &e)
				c.hits.Add(1)
				slog.Debug("cache: L2 hit", slog.String("url", url))
				return e.Body, true
			}
		}
	}

	c.misses.Add(1)
	return "", false
}

// Set stores body for url, replacing any previous entry.
func (c *Cache) Set(ctx context.Context, url, body string) {
	e := &cacheEntry{URL: url, Body: body, FetchedAt: c.now()}
	c.l1.Store(url, e)

	if c.rdb != nil {
		data, err := json.Marshal(e)
		if err != nil {
			return
		}
		if err := c.rdb.Set(ctx, CacheKey(url), data, c.ttl).Err(); err != nil {
			slog.Debug("cache: L2 set failed", slog.Any("error", err))
		}
	}
}

// Clear discards every entry in both tiers and returns the number of L1
// entries removed.
func (c *Cache) Clear(ctx context.Context) int {
	n := 0
	c.l1.Range(func(key, _ any) bool {
		c.l1.Delete(key)
		n++
		return true
	})

	if c.rdb != nil {
		var cursor uint64
		for {
			keys, next, err := c.rdb.Scan(ctx, cursor, cacheKeyPrefix+"*", 200).Result()
			if err != nil {
				slog.Warn("cache: L2 scan failed", slog.Any("error", err))
				break
			}
			if len(keys) > 0 {
				if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
					slog.Warn("cache: L2 delete failed", slog.Any("error", err))
				}
			}
			cursor = next
			if cursor == 0 {
				break
			}
		}
	}
	return n
}

// Len counts L1 entries, including stale ones not yet evicted.
func (c *Cache) Len() int {
	n := 0
	c.l1.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// Stats returns hit/miss counters.
func (c *Cache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}
