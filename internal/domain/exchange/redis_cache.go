package exchange

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const redisKeyPrefix = "exchange:rate:"

// RedisCache shares quotes between API instances.
type RedisCache struct {
	rdb redis.Cmdable
}

func NewRedisCache(rdb redis.Cmdable) *RedisCache {
	return &RedisCache{rdb: rdb}
}

// NewRedisClient connects and pings, failing fast on a bad address.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return rdb, nil
}

func (c *RedisCache) Get(ctx context.Context, currency string) (Quote, bool, error) {
	raw, err := c.rdb.Get(ctx, redisKeyPrefix+currency).Bytes()
	if errors.Is(err, redis.Nil) {
		return Quote{}, false, nil
	}
	if err != nil {
		return Quote{}, false, fmt.Errorf("redis get %s: %w", currency, err)
	}
	var q Quote
	if err := json.Unmarshal(raw, &q); err != nil {
		return Quote{}, false, fmt.Errorf("decode cached quote %s: %w", currency, err)
	}
	return q, true, nil
}

func (c *RedisCache) Set(ctx context.Context, currency string, q Quote, ttl time.Duration) error {
	raw, err := json.Marshal(q)
	if err != nil {
		return err
	}
	if err := c.rdb.Set(ctx, redisKeyPrefix+currency, raw, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", currency, err)
	}
	return nil
}
