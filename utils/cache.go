package utils

import (
	"context"
	"fmt"
	"time"

	"hustlr/config"

	"github.com/go-redis/redis/v8"
)

// RedisClients holds the optional redis connections. Both are nil when
// REDIS_ADDR is empty.
type RedisClients struct {
	// Cache backs the service-type catalog.
	Cache *redis.Client
	// Lock backs the per-phone turn lock.
	Lock *redis.Client
}

// newRedisClient connects to one logical redis database and pings it.
func newRedisClient(cfg config.Config, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       db,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis db %d: %w", db, err)
	}
	return client, nil
}

// InitRedis opens the cache and lock clients.
func InitRedis(cfg config.Config) (*RedisClients, error) {
	if cfg.RedisAddr == "" {
		return &RedisClients{}, nil
	}
	cache, err := newRedisClient(cfg, cfg.RedisCacheDB)
	if err != nil {
		return nil, err
	}
	lock, err := newRedisClient(cfg, cfg.RedisLockDB)
	if err != nil {
		cache.Close()
		return nil, err
	}
	return &RedisClients{Cache: cache, Lock: lock}, nil
}

// All returns the non-nil clients.
func (r *RedisClients) All() []*redis.Client {
	var out []*redis.Client
	for _, c := range []*redis.Client{r.Cache, r.Lock} {
		if c != nil {
			out = append(out, c)
		}
	}
	return out
}

func (r *RedisClients) Close() {
	for _, c := range r.All() {
		c.Close()
	}
}
