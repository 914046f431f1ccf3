package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"inkwell/internal/config"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/redis/go-redis/v9"
)

// Cache stores JSON encoded values, so readers always receive their own copy.
type Cache interface {
	// Get decodes the value under key into dest and reports whether it was found.
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeletePrefix(ctx context.Context, prefix string) error
	// Generation returns the current generation of a key namespace. Bump moves it forward,
	// which orphans every key built from an older generation.
	Generation(ctx context.Context, namespace string) (int64, error)
	Bump(ctx context.Context, namespace string) error
}

// New builds the backend named by cfg.Backend. client is only used by the redis backend.
func New(cfg config.CacheConfig, client *redis.Client) (Cache, error) {
	switch cfg.Backend {
	case "lru":
		return NewLocalCache(cfg.Size)
	case "redis":
		if client == nil {
			return nil, fmt.Errorf("redis cache needs a redis client")
		}
		return NewRedisCache(client), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}

// item wraps an encoded value with its expiry.
type item struct {
	Data      []byte
	ExpiresAt time.Time
}

// LocalCache is an in-process LRU cache.
type LocalCache struct {
	mu          sync.Mutex
	lruCache    *lru.Cache[string, item]
	generations map[string]int64
}

func NewLocalCache(size int) (*LocalCache, error) {
	if size <= 0 {
		size = 500
	}
	l, err := lru.New[string, item](size)
	if err != nil {
		return nil, fmt.Errorf("create lru cache: %w", err)
	}
	return &LocalCache{lruCache: l, generations: make(map[string]int64)}, nil
}

func (c *LocalCache) Get(_ context.Context, key string, dest interface{}) (bool, error) {
	val, ok := c.lruCache.Get(key)
	if !ok {
		return false, nil
	}
	if time.Now().After(val.ExpiresAt) {
		c.lruCache.Remove(key)
		return false, nil
	}
	if err := json.Unmarshal(val.Data, dest); err != nil {
		return false, fmt.Errorf("decode cached %s: %w", key, err)
	}
	return true, nil
}

func (c *LocalCache) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	c.lruCache.Add(key, item{Data: data, ExpiresAt: time.Now().Add(ttl)})
	return nil
}

func (c *LocalCache) DeletePrefix(_ context.Context, prefix string) error {
	// Keys() snapshots the cache; the lock keeps two invalidations from interleaving.
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range c.lruCache.Keys() {
		if strings.HasPrefix(key, prefix) {
			c.lruCache.Remove(key)
		}
	}
	return nil
}

func (c *LocalCache) Generation(_ context.Context, namespace string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generations[namespace], nil
}

func (c *LocalCache) Bump(_ context.Context, namespace string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generations[namespace]++
	return nil
}

// RedisCache shares cached values between server replicas.
type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (c *RedisCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get %s: %w", key, err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("decode cached %s: %w", key, err)
	}
	return true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (c *RedisCache) DeletePrefix(ctx context.Context, prefix string) error {
	iter := c.client.Scan(ctx, 0, prefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan %s*: %w", prefix, err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

func generationKey(namespace string) string {
	return "gen:" + namespace
}

func (c *RedisCache) Generation(ctx context.Context, namespace string) (int64, error) {
	gen, err := c.client.Get(ctx, generationKey(namespace)).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis get generation %s: %w", namespace, err)
	}
	return gen, nil
}

func (c *RedisCache) Bump(ctx context.Context, namespace string) error {
	if err := c.client.Incr(ctx, generationKey(namespace)).Err(); err != nil {
		return fmt.Errorf("redis bump generation %s: %w", namespace, err)
	}
	return nil
}
