package service

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisGuard implements IdempotencyGuard with SET NX.
type RedisGuard struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisGuard(rdb *redis.Client, ttl time.Duration) *RedisGuard {
	return &RedisGuard{rdb: rdb, ttl: ttl}
}

func guardKey(key string) string {
	return "idempotency:project_submission:" + key
}

func (g *RedisGuard) Acquire(ctx context.Context, key string) (bool, error) {
	return g.rdb.SetNX(ctx, guardKey(key), time.Now().UTC().Format(time.RFC3339), g.ttl).Result()
}

func (g *RedisGuard) Release(ctx context.Context, key string) error {
	return g.rdb.Del(ctx, guardKey(key)).Err()
}
