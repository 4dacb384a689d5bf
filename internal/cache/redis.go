package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/KevDevLee/namens-tinder/internal/config"
)

// StatsTTL bounds how long a cached statistics snapshot is served.
const StatsTTL = time.Hour

const statsKey = "stats:counts"

type RedisCache struct {
	Client *redis.Client
}

// NewRedisCache initializes Redis client from config.
// Only Addr is mandatory, Password/DB are optional.
func NewRedisCache(cfg *config.Config) *RedisCache {
	opts := &redis.Options{
		Addr: cfg.Redis.Addr,
	}
	if cfg.Redis.Password != "" {
		opts.Password = cfg.Redis.Password
	}
	if cfg.Redis.DB != 0 {
		opts.DB = cfg.Redis.DB
	}
	return &RedisCache{Client: redis.NewClient(opts)}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.Client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.Client.Close()
}

func (c *RedisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return c.Client.Set(ctx, key, value, ttl).Err()
}

// Get returns "" and no error on a cache miss.
func (c *RedisCache) Get(ctx context.Context, key string) (string, error) {
	val, err := c.Client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return val, err
}

// GetDel reads and removes key atomically; "" on a miss.
func (c *RedisCache) GetDel(ctx context.Context, key string) (string, error) {
	val, err := c.Client.GetDel(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return val, err
}

func (c *RedisCache) Del(ctx context.Context, key string) error {
	return c.Client.Del(ctx, key).Err()
}

// KeyForPreference generates the Redis key of one user preference.
func (c *RedisCache) KeyForPreference(userID uint64, name string) string {
	return fmt.Sprintf("prefs:%d:%s", userID, name)
}

// GetStats decodes the cached statistics snapshot into dst.
// ok is false on a miss or an undecodable entry.
func (c *RedisCache) GetStats(ctx context.Context, dst any) (ok bool, err error) {
	val, err := c.Get(ctx, statsKey)
	if err != nil || val == "" {
		return false, err
	}
	if err := json.Unmarshal([]byte(val), dst); err != nil {
		return false, nil
	}
	// refresh TTL on access
	_ = c.Client.Expire(ctx, statsKey, StatsTTL).Err()
	return true, nil
}

func (c *RedisCache) SetStats(ctx context.Context, stats any) error {
	b, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	return c.Set(ctx, statsKey, b, StatsTTL)
}

// InvalidateStats drops the snapshot after any decision write.
func (c *RedisCache) InvalidateStats(ctx context.Context) error {
	return c.Del(ctx, statsKey)
}
