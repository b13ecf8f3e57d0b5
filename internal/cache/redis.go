package cache

import (
	"context"
	"errors"
	"time"

	"todo-api/internal/config"
	"todo-api/pkg/logger"

	"github.com/redis/go-redis/v9"
)

const (
	todosCacheKey = "todos:all"
	// bumped on every invalidation; a list read only fills the cache if it is unchanged
	todosGenKey   = "todos:gen"
)

// UnknownGeneration is returned by Generation when the counter cannot be read.
// SetRawTodos never stores under it.
const UnknownGeneration int64 = -1

var errStaleGeneration = errors.New("todos generation changed")

// Cache holds the serialized todo list in Redis. A nil *Cache is a disabled cache:
// reads miss and writes are dropped.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// New connects to REDIS_URL. It returns nil when the URL is empty or Redis is unreachable,
// so the API keeps serving straight from the database.
func New(ctx context.Context, cfg *config.Config) *Cache {
	if cfg.RedisURL == "" {
		logger.Info(ctx, "Redis cache disabled (REDIS_URL not set)")
		return nil
	}
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Error(ctx, "Invalid REDIS_URL", "error", err)
		return nil
	}
	opts.PoolSize = cfg.RedisPoolSize
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Error(ctx, "Redis ping failed", "error", err)
		_ = client.Close()
		return nil
	}
	logger.Info(ctx, "Redis client initialized", "pool_size", cfg.RedisPoolSize)
	return &Cache{client: client, ttl: time.Duration(cfg.CacheTTL) * time.Second}
}

// Ping reports whether Redis answers. A disabled cache is always healthy.
func (c *Cache) Ping(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.client.Ping(ctx).Err()
}

// GetRawTodos returns the cached JSON list. Returns (nil, false) on miss or error.
func (c *Cache) GetRawTodos(ctx context.Context) ([]byte, bool) {
	if c == nil {
		return nil, false
	}
	b, err := c.client.Get(ctx, todosCacheKey).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		logger.Debug(ctx, "Redis get todos failed", "error", err)
		return nil, false
	}
	return b, true
}

// Generation returns the current invalidation counter. Take it before reading the
// database and hand it to SetRawTodos.
func (c *Cache) Generation(ctx context.Context) int64 {
	if c == nil {
		return UnknownGeneration
	}
	gen, err := c.client.Get(ctx, todosGenKey).Int64()
	if err == redis.Nil {
		return 0
	}
	if err != nil {
		logger.Debug(ctx, "Redis get todos generation failed", "error", err)
		return UnknownGeneration
	}
	return gen
}

// SetRawTodos stores the JSON list with the configured TTL, but only if no invalidation
// happened since gen was taken. A list read before a write never overwrites the
// invalidation that write made.
func (c *Cache) SetRawTodos(ctx context.Context, b []byte, gen int64) {
	if c == nil || gen == UnknownGeneration {
		return
	}
	err := c.client.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, todosGenKey).Int64()
		if err != nil && err != redis.Nil {
			return err
		}
		if cur != gen {
			return errStaleGeneration
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, todosCacheKey, b, c.ttl)
			return nil
		})
		return err
	}, todosGenKey)
	switch {
	case err == nil:
	case errors.Is(err, errStaleGeneration), errors.Is(err, redis.TxFailedErr):
		logger.Debug(ctx, "Skipped caching stale todos list", "generation", gen)
	default:
		logger.Debug(ctx, "Redis set todos failed", "error", err)
	}
}

// InvalidateTodos deletes the todos cache key and bumps the generation so that
// in-flight list reads do not repopulate it with older data.
func (c *Cache) InvalidateTodos(ctx context.Context) {
	if c == nil {
		return
	}
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, todosCacheKey)
		pipe.Incr(ctx, todosGenKey)
		return nil
	})
	if err != nil {
		logger.Warn(ctx, "Redis invalidate todos failed", "error", err)
	}
}

// Close releases the Redis connection pool.
func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}
