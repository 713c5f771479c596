package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// TagSource lists the distinct tags in the feed. *backend.Client satisfies it.
type TagSource interface {
	ListTags(ctx context.Context, credential string) ([]string, error)
}

// TagCache stores the last tag list fetched. Get reports ok=false on a miss.
type TagCache interface {
	Get(ctx context.Context) (tags []string, ok bool, err error)
	Set(ctx context.Context, tags []string) error
}

// ── Redis cache ───────────────────────────────────────────────────────────

const tagCacheKey = "nextfit:feed:tags"

// tagFetchTimeout bounds a shared backend load, which outlives the request
// that started it.
const tagFetchTimeout = 10 * time.Second

// RedisTagCache keeps the tag list as a JSON string with an expiry.
type RedisTagCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisTagCache returns a cache whose entries live for ttl.
func NewRedisTagCache(rdb *redis.Client, ttl time.Duration) *RedisTagCache {
	return &RedisTagCache{rdb: rdb, ttl: ttl}
}

func (c *RedisTagCache) Get(ctx context.Context) ([]string, bool, error) {
	raw, err := c.rdb.Get(ctx, tagCacheKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("tag cache get: %w", err)
	}
	var tags []string
	if err := json.Unmarshal(raw, &tags); err != nil {
		return nil, false, fmt.Errorf("tag cache decode: %w", err)
	}
	return tags, true, nil
}

func (c *RedisTagCache) Set(ctx context.Context, tags []string) error {
	raw, err := json.Marshal(tags)
	if err != nil {
		return fmt.Errorf("tag cache encode: %w", err)
	}
	if err := c.rdb.Set(ctx, tagCacheKey, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("tag cache set: %w", err)
	}
	return nil
}

// ── Loader ────────────────────────────────────────────────────────────────

// TagLoader serves the tag facet list from cache, falling back to the
// backend. Concurrent misses share one backend call.
type TagLoader struct {
	src   TagSource
	cache TagCache
	group singleflight.Group
	log   *slog.Logger
}

// NewTagLoader returns a loader; cache may be nil to always hit the backend.
func NewTagLoader(src TagSource, cache TagCache) *TagLoader {
	return &TagLoader{
		src:   src,
		cache: cache,
		log:   slog.Default().With("component", "feed.tags"),
	}
}

// Load returns the tag list. Failures are logged and yield an empty list so
// the feed still renders without chips.
func (l *TagLoader) Load(ctx context.Context, credential string) []string {
	if l.cache != nil {
		tags, ok, err := l.cache.Get(ctx)
		if err != nil {
			l.log.Warn("tag cache read failed", "error", err)
		}
		if ok {
			return tags
		}
	}

	v, err, _ := l.group.Do(tagCacheKey, func() (any, error) {
		return l.fetch(ctx, credential)
	})
	if err != nil {
		l.log.Warn("loading tags failed", "error", err)
		return []string{}
	}
	return v.([]string)
}

// Refresh fetches the tag list and replaces the cached copy.
func (l *TagLoader) Refresh(ctx context.Context) error {
	_, err, _ := l.group.Do(tagCacheKey, func() (any, error) {
		return l.fetch(ctx, "")
	})
	return err
}

func (l *TagLoader) fetch(ctx context.Context, credential string) ([]string, error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), tagFetchTimeout)
	defer cancel()

	tags, err := l.src.ListTags(ctx, credential)
	if err != nil {
		return nil, err
	}
	if tags == nil {
		tags = []string{}
	}
	if l.cache != nil {
		if err := l.cache.Set(ctx, tags); err != nil {
			l.log.Warn("tag cache write failed", "error", err)
		}
	}
	return tags, nil
}
