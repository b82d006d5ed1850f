package recipes

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"recipebook/logging"
	"recipebook/models"

	lru "github.com/hashicorp/golang-lru"
	"github.com/redis/go-redis/v9"
)

// ListCache holds rendered listings. Implementations treat every failure as a
// miss; the store stays the source of truth.
type ListCache interface {
	Get(ctx context.Context, key string) ([]models.RecipeView, bool)
	Set(ctx context.Context, key string, views []models.RecipeView)
	// Invalidate drops every cached listing.
	Invalidate(ctx context.Context)
}

type NopCache struct{}

func (NopCache) Get(context.Context, string) ([]models.RecipeView, bool) { return nil, false }
func (NopCache) Set(context.Context, string, []models.RecipeView)        {}
func (NopCache) Invalidate(context.Context)                               {}

const (
	listKeyPrefix = "recipes:list:"
	listGenKey    = "recipes:list:gen"
)

// RedisListCache versions its keys with a generation counter: Invalidate bumps
// the counter and stale entries age out through their TTL.
type RedisListCache struct {
	rdb *redis.Client
	ttl time.Duration
	log logging.Logger
}

func NewRedisListCache(rdb *redis.Client, ttl time.Duration, log logging.Logger) *RedisListCache {
	return &RedisListCache{rdb: rdb, ttl: ttl, log: logging.OrNop(log)}
}

func (c *RedisListCache) key(ctx context.Context, query string) (string, error) {
	gen, err := c.rdb.Get(ctx, listGenKey).Result()
	if errors.Is(err, redis.Nil) {
		gen = "0"
	} else if err != nil {
		return "", err
	}
	return listKeyPrefix + gen + ":" + query, nil
}

func (c *RedisListCache) Get(ctx context.Context, query string) ([]models.RecipeView, bool) {
	key, err := c.key(ctx, query)
	if err != nil {
		c.log.Warn(ctx, "list cache unavailable", "error", err)
		return nil, false
	}
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn(ctx, "list cache get failed", "error", err)
		}
		return nil, false
	}
	var views []models.RecipeView
	if err := json.Unmarshal(raw, &views); err != nil {
		c.log.Warn(ctx, "list cache entry corrupt", "key", key, "error", err)
		return nil, false
	}
	return views, true
}

func (c *RedisListCache) Set(ctx context.Context, query string, views []models.RecipeView) {
	key, err := c.key(ctx, query)
	if err != nil {
		c.log.Warn(ctx, "list cache unavailable", "error", err)
		return
	}
	raw, err := json.Marshal(views)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.log.Warn(ctx, "list cache set failed", "error", err)
	}
}

func (c *RedisListCache) Invalidate(ctx context.Context) {
	if err := c.rdb.Incr(ctx, listGenKey).Err(); err != nil {
		c.log.Warn(ctx, "list cache invalidate failed", "error", err)
	}
}

// LRUListCache keeps listings in process memory. It serves single-instance
// deployments without Redis.
type LRUListCache struct {
	cache *lru.Cache
}

func NewLRUListCache(size int) (*LRUListCache, error) {
	cache, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &LRUListCache{cache: cache}, nil
}

func (c *LRUListCache) Get(_ context.Context, key string) ([]models.RecipeView, bool) {
	v, ok := c.cache.Get(key)
	if !ok {
		return nil, false
	}
	views, ok := v.([]models.RecipeView)
	return views, ok
}

func (c *LRUListCache) Set(_ context.Context, key string, views []models.RecipeView) {
	c.cache.Add(key, views)
}

func (c *LRUListCache) Invalidate(context.Context) {
	c.cache.Purge()
}
