// Package cache keeps assembled retrieval pages in Redis.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"github.com/MikeSquared-Agency/voxarchive/internal/metrics"
	"github.com/MikeSquared-Agency/voxarchive/internal/tracer"
)

const (
	keyPrefix = "voxarchive:dialogues:"

	// generationKey counts purges. Page keys embed the generation they were
	// loaded under, so a purge retires every page written before or during it.
	generationKey = "voxarchive:dialogues-generation"

	// loadTimeout bounds a shared load, which outlives the caller that started it.
	loadTimeout = 30 * time.Second
)

// Loader produces the value to cache on a miss. It is marshalled to JSON.
type Loader func(ctx context.Context) (any, error)

// Cache is a read-through page cache. Redis failures never fail a request: the
// loader is called directly and the failure is logged.
type Cache struct {
	rdb    *redis.Client
	ttl    time.Duration
	group  singleflight.Group
	logger *slog.Logger
}

// Connect parses a redis:// URL and verifies the server answers.
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return rdb, nil
}

func New(rdb *redis.Client, ttl time.Duration, logger *slog.Logger) *Cache {
	return &Cache{rdb: rdb, ttl: ttl, logger: logger}
}

// Key maps a canonical request encoding to a page id.
func Key(request string) string {
	sum := sha256.Sum256([]byte(request))
	return hex.EncodeToString(sum[:])
}

func pageKey(generation int64, id string) string {
	return keyPrefix + strconv.FormatInt(generation, 10) + ":" + id
}

func (c *Cache) generation(ctx context.Context) (int64, error) {
	gen, err := c.rdb.Get(ctx, generationKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

// GetOrLoad returns the cached JSON for the page id, or runs load, caches its JSON
// and returns it. Concurrent misses for one page share a single load.
func (c *Cache) GetOrLoad(ctx context.Context, id string, load Loader) ([]byte, error) {
	ctx, span := tracer.Start(ctx, "cache.GetOrLoad",
		trace.WithAttributes(attribute.String("cache.page", id)))
	defer span.End()

	gen, err := c.generation(ctx)
	var val []byte
	if err == nil {
		val, err = c.rdb.Get(ctx, pageKey(gen, id)).Bytes()
	}
	switch {
	case err == nil:
		metrics.CacheLookupsTotal.WithLabelValues("hit").Inc()
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return val, nil
	case !errors.Is(err, redis.Nil):
		metrics.CacheLookupsTotal.WithLabelValues("error").Inc()
		span.RecordError(err)
		c.logger.Warn("page cache unavailable, loading directly", "error", err)
		return marshal(ctx, load)
	}

	metrics.CacheLookupsTotal.WithLabelValues("miss").Inc()
	span.SetAttributes(attribute.Bool("cache.hit", false), attribute.Int64("cache.generation", gen))

	key := pageKey(gen, id)
	data, shared, err := c.share(ctx, key, func(ctx context.Context) ([]byte, error) {
		if val, err := c.rdb.Get(ctx, key).Bytes(); err == nil {
			return val, nil
		}
		data, err := marshal(ctx, load)
		if err != nil {
			return nil, err
		}
		if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
			c.logger.Warn("page cache write failed", "error", err, "key", key)
		}
		return data, nil
	})
	span.SetAttributes(attribute.Bool("cache.shared", shared))
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return data, nil
}

// share runs fn once for all concurrent callers of key. fn gets a context that
// keeps ctx's values but not its cancellation, bounded by loadTimeout, so one
// caller going away does not fail the others. Each caller still stops waiting
// when its own ctx is done.
func (c *Cache) share(ctx context.Context, key string, fn func(context.Context) ([]byte, error)) ([]byte, bool, error) {
	ch := c.group.DoChan(key, func() (any, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), loadTimeout)
		defer cancel()
		return fn(loadCtx)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Shared, res.Err
		}
		return res.Val.([]byte), res.Shared, nil
	case <-ctx.Done():
		return nil, false, ctx.Err()
	}
}

func marshal(ctx context.Context, load Loader) ([]byte, error) {
	v, err := load(ctx)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal cached page: %w", err)
	}
	return data, nil
}

// Purge retires every cached page by moving to a new generation, then deletes the
// page keys and returns how many were removed. A load still running against the
// old generation writes a key no reader will look up again.
func (c *Cache) Purge(ctx context.Context) (int, error) {
	ctx, span := tracer.Start(ctx, "cache.Purge")
	defer span.End()

	gen, err := c.rdb.Incr(ctx, generationKey).Result()
	if err != nil {
		span.RecordError(err)
		return 0, fmt.Errorf("advance page cache generation: %w", err)
	}
	span.SetAttributes(attribute.Int64("cache.generation", gen))

	var removed int
	iter := c.rdb.Scan(ctx, 0, keyPrefix+"*", 500).Iterator()
	batch := make([]string, 0, 500)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := c.rdb.Del(ctx, batch...).Result()
		if err != nil {
			return err
		}
		removed += int(n)
		batch = batch[:0]
		return nil
	}

	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == cap(batch) {
			if err := flush(); err != nil {
				span.RecordError(err)
				return removed, fmt.Errorf("purge page cache: %w", err)
			}
		}
	}
	if err := iter.Err(); err != nil {
		span.RecordError(err)
		return removed, fmt.Errorf("scan page cache: %w", err)
	}
	if err := flush(); err != nil {
		span.RecordError(err)
		return removed, fmt.Errorf("purge page cache: %w", err)
	}

	span.SetAttributes(attribute.Int("cache.purged", removed))
	return removed, nil
}

func (c *Cache) Close() error {
	return c.rdb.Close()
}
